package collector

import (
	"context"
	"time"

	"github.com/newthinker/tickervista/internal/core"
)

// Config holds source configuration
type Config struct {
	Enabled bool
	BaseURL string
	APIKey  string
	Extra   map[string]any
}

// Source fetches daily candles for one instrument.
// Implementations return candles as delivered; ordering and
// deduplication happen in the Chain.
type Source interface {
	Name() string
	FetchHistory(ctx context.Context, meta core.SymbolMeta, start, end time.Time) ([]core.Candle, error)
}
