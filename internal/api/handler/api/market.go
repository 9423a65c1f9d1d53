// internal/api/handler/api/market.go
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/newthinker/tickervista/internal/api/response"
	"github.com/newthinker/tickervista/internal/core"
	"github.com/newthinker/tickervista/internal/storage/archive"
	"go.uber.org/zap"
)

// MarketHandler serves the published documents read-only
type MarketHandler struct {
	store  archive.Storage
	logger *zap.Logger
}

// NewMarketHandler creates a handler over the published output
func NewMarketHandler(store archive.Storage, logger *zap.Logger) *MarketHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarketHandler{store: store, logger: logger}
}

// MarketOverview handles GET /api/v1/markets/overview
func (h *MarketHandler) MarketOverview(w http.ResponseWriter, r *http.Request) {
	h.serveDocument(w, r, core.ErrNoData, "markets", "overview.json")
}

// SectorsOverview handles GET /api/v1/sectors/overview
func (h *MarketHandler) SectorsOverview(w http.ResponseWriter, r *http.Request) {
	h.serveDocument(w, r, core.ErrNoData, "sectors", "overview.json")
}

// TopMovers handles GET /api/v1/rankings/top-movers
func (h *MarketHandler) TopMovers(w http.ResponseWriter, r *http.Request) {
	h.serveDocument(w, r, core.ErrNoData, "rankings", "top_movers.json")
}

// Dividends handles GET /api/v1/rankings/dividends
func (h *MarketHandler) Dividends(w http.ResponseWriter, r *http.Request) {
	h.serveDocument(w, r, core.ErrNoData, "rankings", "dividends.json")
}

// OHLCV handles GET /api/v1/ohlcv?symbol=
func (h *MarketHandler) OHLCV(w http.ResponseWriter, r *http.Request) {
	h.serveSymbolDocument(w, r, "ohlcv.json")
}

// Indicators handles GET /api/v1/indicators?symbol=
func (h *MarketHandler) Indicators(w http.ResponseWriter, r *http.Request) {
	h.serveSymbolDocument(w, r, "indicators.json")
}

// Forecast handles GET /api/v1/forecast?symbol=
func (h *MarketHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	h.serveSymbolDocument(w, r, "forecast.json")
}

// Insights handles GET /api/v1/insights/summary?symbol=
func (h *MarketHandler) Insights(w http.ResponseWriter, r *http.Request) {
	h.serveSymbolDocument(w, r, "insights.json")
}

func (h *MarketHandler) serveSymbolDocument(w http.ResponseWriter, r *http.Request, file string) {
	symbol, err := core.NormalizeSymbol(r.URL.Query().Get("symbol"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}
	h.serveDocument(w, r, core.ErrSymbolNotFound, "symbols", symbol, file)
}

// serveDocument streams a stored document, mapping a missing one to 404 with notFound
func (h *MarketHandler) serveDocument(w http.ResponseWriter, r *http.Request, notFound *core.Error, segments ...string) {
	data, err := h.read(r, segments...)
	switch {
	case err == nil:
		response.Raw(w, http.StatusOK, data)
	case errors.Is(err, core.ErrInvalidSymbol):
		response.Error(w, http.StatusBadRequest, err)
	case errors.Is(err, archive.ErrNotFound):
		response.Error(w, http.StatusNotFound, core.WrapError(notFound, nil))
	default:
		h.logger.Error("failed to read document", zap.Strings("path", segments), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, core.WrapError(core.ErrStorageFailed, nil))
	}
}

func (h *MarketHandler) read(r *http.Request, segments ...string) ([]byte, error) {
	path, err := archive.Join(segments...)
	if err != nil {
		return nil, core.WrapError(core.ErrInvalidSymbol, err)
	}
	data, err := h.store.Read(r.Context(), path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
