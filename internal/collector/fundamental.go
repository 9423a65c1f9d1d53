package collector

import (
	"context"
)

// DividendSource looks up a trailing dividend yield (fraction, e.g. 0.027)
type DividendSource interface {
	Name() string
	FetchDividendYield(ctx context.Context, symbol string) (float64, error)
}

// DividendYield asks the source when one is configured and falls back to the
// static yield from the universe on any failure.
func DividendYield(ctx context.Context, src DividendSource, symbol string, static float64) float64 {
	if src == nil {
		return static
	}
	y, err := src.FetchDividendYield(ctx, symbol)
	if err != nil {
		return static
	}
	return y
}
