// internal/api/handler/api/symbols.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/newthinker/tickervista/internal/api/response"
	"github.com/newthinker/tickervista/internal/core"
	"github.com/newthinker/tickervista/internal/storage/archive"
	"go.uber.org/zap"
)

// DefaultSymbolsLimit caps /symbols results when no limit is given
const DefaultSymbolsLimit = 20

// Symbols handles GET /api/v1/symbols?query=&exchange=&limit=
func (h *MarketHandler) Symbols(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := DefaultSymbolsLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(w, http.StatusBadRequest,
				core.WrapError(core.ErrInvalidRequest, fmt.Errorf("limit must be an integer")))
			return
		}
		limit = n
	}

	data, err := h.read(r, "symbols", "index.json")
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			response.Error(w, http.StatusNotFound, core.WrapError(core.ErrNoData, nil))
			return
		}
		h.logger.Error("failed to read symbols index", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, core.WrapError(core.ErrStorageFailed, nil))
		return
	}

	var items []map[string]any
	if err := json.Unmarshal(data, &items); err != nil {
		// not a list: hand it back untouched
		response.Raw(w, http.StatusOK, data)
		return
	}

	response.JSON(w, http.StatusOK, FilterSymbols(items, q.Get("query"), q.Get("exchange"), limit))
}

// FilterSymbols keeps entries whose symbol or name contains query and whose
// exchange contains exchange, case-insensitively. limit > 0 truncates.
func FilterSymbols(items []map[string]any, query, exchange string, limit int) []map[string]any {
	query = strings.ToLower(strings.TrimSpace(query))
	exchange = strings.ToLower(strings.TrimSpace(exchange))

	result := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if query != "" {
			symbol := strings.ToLower(text(item, "symbol"))
			name := strings.ToLower(text(item, "name"))
			if !strings.Contains(symbol, query) && !strings.Contains(name, query) {
				continue
			}
		}
		if exchange != "" && !strings.Contains(strings.ToLower(text(item, "exchange")), exchange) {
			continue
		}
		result = append(result, item)
	}

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

func text(item map[string]any, key string) string {
	s, _ := item[key].(string)
	return s
}
