package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/newthinker/tickervista/internal/core"
	"go.uber.org/zap"
)

// DefaultMinCandles is the history a non-final source must deliver to be accepted
const DefaultMinCandles = 30

// Fetched is the outcome of a chain lookup
type Fetched struct {
	Candles   []core.Candle
	Source    string
	Fallbacks int // sources tried before the one that served
}

// Chain tries sources in priority order until one delivers enough history
type Chain struct {
	sources    []Source
	minCandles int
	maxCandles int
	logger     *zap.Logger
}

// NewChain creates a fallback chain. maxCandles <= 0 keeps the full history.
func NewChain(sources []Source, minCandles, maxCandles int, logger *zap.Logger) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	if minCandles <= 0 {
		minCandles = DefaultMinCandles
	}
	return &Chain{
		sources:    sources,
		minCandles: minCandles,
		maxCandles: maxCandles,
		logger:     logger,
	}
}

// Sources returns the chain's sources in priority order
func (c *Chain) Sources() []Source {
	return c.sources
}

// Fetch returns normalized candles from the first acceptable source.
// Rows with non-positive or non-finite values are dropped before the
// history length is checked.
// The last source is accepted with any non-empty history.
func (c *Chain) Fetch(ctx context.Context, meta core.SymbolMeta, start, end time.Time) (*Fetched, error) {
	var lastErr error

	for i, s := range c.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		candles, err := s.FetchHistory(ctx, meta, start, end)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", s.Name(), err)
			c.logger.Warn("source failed, trying next",
				zap.String("symbol", meta.Symbol),
				zap.String("source", s.Name()),
				zap.Error(err),
			)
			continue
		}

		valid := core.Valid(candles)
		if dropped := len(candles) - len(valid); dropped > 0 {
			c.logger.Debug("dropped invalid candles",
				zap.String("symbol", meta.Symbol),
				zap.String("source", s.Name()),
				zap.Int("dropped", dropped),
			)
		}
		candles = core.Normalize(valid, c.maxCandles)
		final := i == len(c.sources)-1
		if len(candles) >= c.minCandles || (final && len(candles) > 0) {
			return &Fetched{Candles: candles, Source: s.Name(), Fallbacks: i}, nil
		}

		lastErr = fmt.Errorf("%s: %w", s.Name(),
			core.WrapError(core.ErrInsufficientData, fmt.Errorf("got %d candles", len(candles))))
		c.logger.Warn("source returned too little history, trying next",
			zap.String("symbol", meta.Symbol),
			zap.String("source", s.Name()),
			zap.Int("candles", len(candles)),
		)
	}

	if lastErr == nil {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no sources configured"))
	}
	return nil, core.WrapError(core.ErrNoData, fmt.Errorf("all sources failed for %s: %w", meta.Symbol, lastErr))
}
