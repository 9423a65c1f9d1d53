// Package synthetic generates a deterministic random walk per symbol so the
// pipeline always has something to analyze when every real feed is down.
package synthetic

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"time"

	"github.com/newthinker/tickervista/internal/collector"
	"github.com/newthinker/tickervista/internal/core"
)

const DefaultDays = 730

// Synthetic implements the last-resort source
type Synthetic struct {
	days int
}

// New creates a synthetic source; cfg.Extra["days"] overrides the series length
func New(cfg collector.Config) *Synthetic {
	days := DefaultDays
	if d, ok := cfg.Extra["days"].(int); ok && d > 0 {
		days = d
	}
	return &Synthetic{days: days}
}

func (s *Synthetic) Name() string {
	return "synthetic"
}

// FetchHistory returns s.days candles ending the day before end. It never fails.
func (s *Synthetic) FetchHistory(ctx context.Context, meta core.SymbolMeta, start, end time.Time) ([]core.Candle, error) {
	return Generate(meta.Symbol, s.days, end), nil
}

// Generate builds the series; the same symbol always yields the same prices
func Generate(symbol string, days int, asOf time.Time) []core.Candle {
	rng := rand.New(rand.NewPCG(seed(symbol), 0))

	price := uniform(rng, 20, 250)
	candles := make([]core.Candle, 0, days)
	for i := 0; i < days; i++ {
		ts := asOf.Add(-time.Duration(days-i) * 24 * time.Hour).UTC()
		change := uniform(rng, -0.035, 0.035)

		open := price
		closePx := math.Max(1.0, price*(1+change))
		high := math.Max(open, closePx) * (1 + uniform(rng, 0, 0.01))
		low := math.Min(open, closePx) * (1 - uniform(rng, 0, 0.01))
		volume := 500_000 + rng.IntN(15_000_000-500_000+1)

		candles = append(candles, core.Candle{
			Symbol:    symbol,
			Timeframe: core.TimeframeDaily,
			Time:      ts,
			Open:      round2(open),
			High:      round2(high),
			Low:       round2(low),
			Close:     round2(closePx),
			Volume:    float64(volume),
			AdjClose:  round2(closePx),
		})
		price = closePx
	}
	return candles
}

func seed(symbol string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	return h.Sum64()
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
