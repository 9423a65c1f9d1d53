package universe

import (
	"context"
	"strings"

	"github.com/newthinker/tickervista/internal/core"
	"go.uber.org/zap"
)

// Config selects the instruments for a run
type Config struct {
	Symbols    []core.SymbolMeta
	SP500      bool
	SP500Limit int
	SP500URL   string
}

// Resolver builds the universe from configuration
type Resolver struct {
	cfg    Config
	loader *SP500Loader
	logger *zap.Logger
}

// NewResolver creates a resolver
func NewResolver(cfg Config, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SP500Limit <= 0 {
		cfg.SP500Limit = DefaultSP500Limit
	}
	return &Resolver{
		cfg:    cfg,
		loader: NewSP500Loader(cfg.SP500URL),
		logger: logger,
	}
}

// Resolve returns the configured symbols (or Base when none are set),
// extended with S&P 500 constituents when enabled. A constituents
// download failure only shrinks the universe.
func (r *Resolver) Resolve(ctx context.Context) []core.SymbolMeta {
	metas := r.cfg.Symbols
	if len(metas) == 0 {
		metas = Base()
	}

	seen := make(map[string]struct{}, len(metas))
	result := make([]core.SymbolMeta, 0, len(metas))
	for _, m := range metas {
		if _, dup := seen[m.Symbol]; dup || m.Symbol == "" {
			continue
		}
		seen[m.Symbol] = struct{}{}
		result = append(result, withDefaults(m))
	}

	if r.cfg.SP500 {
		extra, err := r.loader.Load(ctx, seen, r.cfg.SP500Limit)
		if err != nil {
			r.logger.Warn("failed to load S&P 500 universe", zap.Error(err))
		} else {
			result = append(result, extra...)
		}
	}

	r.logger.Info("symbol universe resolved", zap.Int("size", len(result)))
	return result
}

// Lookup returns the configured (or base) metadata for symbol. Unknown
// symbols are treated as US listings.
func (r *Resolver) Lookup(symbol string) core.SymbolMeta {
	metas := r.cfg.Symbols
	if len(metas) == 0 {
		metas = Base()
	}
	for _, m := range metas {
		if strings.EqualFold(m.Symbol, symbol) {
			return withDefaults(m)
		}
	}
	return withDefaults(core.SymbolMeta{Symbol: symbol})
}

func withDefaults(m core.SymbolMeta) core.SymbolMeta {
	if m.Stooq == "" {
		m.Stooq = core.StooqUS(m.Symbol)
	}
	if m.Name == "" {
		m.Name = m.Symbol
	}
	if m.Sector == "" {
		m.Sector = "Unknown"
	}
	return m
}
