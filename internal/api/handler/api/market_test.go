// internal/api/handler/api/market_test.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/newthinker/tickervista/internal/api/response"
	"github.com/newthinker/tickervista/internal/storage/archive"
)

func newTestHandler(t *testing.T, docs map[string]string) *MarketHandler {
	t.Helper()
	store, err := archive.NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalFS: %v", err)
	}
	for path, body := range docs {
		if err := store.Write(context.Background(), path, []byte(body)); err != nil {
			t.Fatalf("Write %s: %v", path, err)
		}
	}
	return NewMarketHandler(store, nil)
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp response.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding error body %q: %v", w.Body.String(), err)
	}
	return resp.Error.Code
}

func TestMarketHandler_Aggregates(t *testing.T) {
	h := newTestHandler(t, map[string]string{
		"markets/overview.json":    `{"lastUpdated":"2026-03-02T00:00:00Z","indices":[]}`,
		"sectors/overview.json":    `{"data":[]}`,
		"rankings/top_movers.json": `{"items":[]}`,
		"rankings/dividends.json":  `{"items":[1]}`,
	})

	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{"markets", h.MarketOverview, `{"lastUpdated":"2026-03-02T00:00:00Z","indices":[]}`},
		{"sectors", h.SectorsOverview, `{"data":[]}`},
		{"movers", h.TopMovers, `{"items":[]}`},
		{"dividends", h.Dividends, `{"items":[1]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.handler(w, httptest.NewRequest("GET", "/", nil))

			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			if w.Body.String() != tt.want {
				t.Errorf("got %s, want %s", w.Body.String(), tt.want)
			}
		})
	}
}

func TestMarketHandler_AggregateMissing(t *testing.T) {
	h := newTestHandler(t, nil)

	w := httptest.NewRecorder()
	h.MarketOverview(w, httptest.NewRequest("GET", "/api/v1/markets/overview", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "NO_DATA" {
		t.Errorf("expected NO_DATA, got %s", code)
	}
}

func TestMarketHandler_SymbolDocuments(t *testing.T) {
	h := newTestHandler(t, map[string]string{
		"symbols/BRK.B/ohlcv.json":     `{"symbol":"BRK.B"}`,
		"symbols/AAPL/indicators.json": `{"rsi14":55}`,
		"symbols/AAPL/forecast.json":   `{"bands":[]}`,
		"symbols/7203.T/insights.json": `{"trafficLight":"GREEN"}`,
	})

	tests := []struct {
		name    string
		handler http.HandlerFunc
		target  string
		status  int
	}{
		{"ohlcv", h.OHLCV, "/api/v1/ohlcv?symbol=BRK.B", http.StatusOK},
		{"trimmed", h.OHLCV, "/api/v1/ohlcv?symbol=%20BRK.B%20", http.StatusOK},
		{"indicators", h.Indicators, "/api/v1/indicators?symbol=AAPL", http.StatusOK},
		{"forecast", h.Forecast, "/api/v1/forecast?symbol=AAPL", http.StatusOK},
		{"insights", h.Insights, "/api/v1/insights/summary?symbol=7203.T", http.StatusOK},
		{"unknown symbol", h.Forecast, "/api/v1/forecast?symbol=MSFT", http.StatusNotFound},
		{"missing symbol", h.Forecast, "/api/v1/forecast", http.StatusBadRequest},
		{"traversal", h.OHLCV, "/api/v1/ohlcv?symbol=../markets", http.StatusBadRequest},
		{"dot dot", h.OHLCV, "/api/v1/ohlcv?symbol=..", http.StatusBadRequest},
		{"slash", h.OHLCV, "/api/v1/ohlcv?symbol=..", http.StatusBadRequest},
		{"too long", h.OHLCV, "/api/v1/ohlcv?symbol=ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.handler(w, httptest.NewRequest("GET", tt.target, nil))
			if w.Code != tt.status {
				t.Errorf("expected %d, got %d (%s)", tt.status, w.Code, w.Body.String())
			}
		})
	}
}

func TestMarketHandler_SymbolNotFoundCode(t *testing.T) {
	h := newTestHandler(t, nil)

	w := httptest.NewRecorder()
	h.Insights(w, httptest.NewRequest("GET", "/api/v1/insights/summary?symbol=AAPL", nil))

	if code := errorCode(t, w); code != "SYMBOL_NOT_FOUND" {
		t.Errorf("expected SYMBOL_NOT_FOUND, got %s", code)
	}
}

func TestMarketHandler_InvalidSymbolCode(t *testing.T) {
	h := newTestHandler(t, nil)

	w := httptest.NewRecorder()
	h.OHLCV(w, httptest.NewRequest("GET", "/api/v1/ohlcv?symbol=-AAPL", nil))

	if code := errorCode(t, w); code != "INVALID_SYMBOL" {
		t.Errorf("expected INVALID_SYMBOL, got %s", code)
	}
}
