package report

import (
	"context"
	"fmt"

	"github.com/newthinker/tickervista/internal/core"
	"github.com/newthinker/tickervista/internal/indicator"
	"github.com/newthinker/tickervista/internal/storage/archive"
	"go.uber.org/zap"
)

// Published document names
const (
	FileOHLCV           = "ohlcv.json"
	FileIndicators      = "indicators.json"
	FileForecast        = "forecast.json"
	FileInsights        = "insights.json"
	FileMeta            = "meta.json"
	FileAvailableRanges = "availableRanges.json"
)

// OHLCV is symbols/<SYM>/ohlcv.json
type OHLCV struct {
	Symbol    string        `json:"symbol"`
	Timeframe string        `json:"timeframe"`
	TZ        string        `json:"tz"`
	Candles   []core.Candle `json:"candles"`
}

// Indicators is symbols/<SYM>/indicators.json
type Indicators struct {
	Symbol    string              `json:"symbol"`
	Timeframe string              `json:"timeframe"`
	RSI14     float64             `json:"rsi14"`
	SMA       indicator.SMA       `json:"sma"`
	Bollinger indicator.Bollinger `json:"bollinger"`
	MACD      indicator.MACD      `json:"macd"`
}

// Meta is symbols/<SYM>/meta.json
type Meta struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Currency string `json:"currency"`
	TZ       string `json:"tz"`
	Sector   string `json:"sector"`
	Country  string `json:"country"`
}

// Publisher writes run output to storage
type Publisher struct {
	store  archive.Storage
	logger *zap.Logger
}

// NewPublisher creates a publisher over store
func NewPublisher(store archive.Storage, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{store: store, logger: logger}
}

// SymbolDocuments returns the per-symbol documents keyed by file name
func SymbolDocuments(s *Snapshot) map[string]any {
	m := s.Meta
	return map[string]any{
		FileOHLCV: OHLCV{Symbol: m.Symbol, Timeframe: core.TimeframeDaily, TZ: m.TZ, Candles: s.Candles},
		FileIndicators: Indicators{
			Symbol:    m.Symbol,
			Timeframe: core.TimeframeDaily,
			RSI14:     s.Indicators.RSI14,
			SMA:       s.Indicators.SMA,
			Bollinger: s.Indicators.Bollinger,
			MACD:      s.Indicators.MACD,
		},
		FileForecast: s.Forecast,
		FileInsights: s.Insight,
		FileMeta: Meta{
			Symbol:   m.Symbol,
			Name:     m.Name,
			Exchange: m.Exchange,
			Currency: m.Currency,
			TZ:       m.TZ,
			Sector:   m.Sector,
			Country:  m.Country,
		},
		FileAvailableRanges: AvailableRanges(len(s.Candles)),
	}
}

var symbolFiles = []string{FileOHLCV, FileIndicators, FileForecast, FileInsights, FileMeta, FileAvailableRanges}

// PublishSymbol writes the six documents under symbols/<SYM>/
func (p *Publisher) PublishSymbol(ctx context.Context, s *Snapshot) error {
	docs := SymbolDocuments(s)
	for _, name := range symbolFiles {
		path, err := archive.Join("symbols", s.Meta.Symbol, name)
		if err != nil {
			return core.WrapError(core.ErrInvalidSymbol, fmt.Errorf("%s: %w", s.Meta.Symbol, err))
		}
		if err := archive.WriteJSON(ctx, p.store, path, docs[name]); err != nil {
			return core.WrapError(core.ErrStorageFailed, err)
		}
	}
	p.logger.Debug("published symbol", zap.String("symbol", s.Meta.Symbol))
	return nil
}

// PublishAggregates writes the cross-symbol documents
func (p *Publisher) PublishAggregates(ctx context.Context, agg *Aggregates) error {
	docs := []struct {
		path string
		v    any
	}{
		{"markets/overview.json", agg.Market},
		{"sectors/overview.json", agg.Sectors},
		{"rankings/top_lists.json", agg.Rankings},
		{"rankings/top_movers.json", agg.TopMovers},
		{"rankings/dividends.json", agg.Dividends},
		{"symbols/index.json", agg.SymbolsIndex},
	}
	for _, d := range docs {
		if err := archive.WriteJSON(ctx, p.store, d.path, d.v); err != nil {
			return core.WrapError(core.ErrStorageFailed, err)
		}
	}
	p.logger.Info("published aggregates",
		zap.String("run_id", agg.Rankings.RunID),
		zap.Int("symbols", len(agg.SymbolsIndex)),
	)
	return nil
}
