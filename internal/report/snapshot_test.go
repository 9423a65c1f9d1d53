package report

import (
	"testing"
	"time"

	"github.com/newthinker/tickervista/internal/core"
	"github.com/newthinker/tickervista/internal/forecast"
	"github.com/newthinker/tickervista/internal/insight"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asOf = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func series(symbol string, closes ...float64) []core.Candle {
	candles := make([]core.Candle, len(closes))
	start := asOf.AddDate(0, 0, -len(closes))
	for i, c := range closes {
		candles[i] = core.Candle{
			Symbol:    symbol,
			Timeframe: core.TimeframeDaily,
			Time:      start.AddDate(0, 0, i),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    1_000_000,
			AdjClose:  c,
		}
	}
	return candles
}

func rising(symbol string, n int, from float64) []core.Candle {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = from + float64(i)
	}
	return series(symbol, closes...)
}

func TestPercentChange(t *testing.T) {
	assert.InDelta(t, 10.0, PercentChange(110, 100), 1e-9)
	assert.InDelta(t, -50.0, PercentChange(50, 100), 1e-9)
	assert.Equal(t, 0.0, PercentChange(10, 0))
}

func TestAvailableRanges(t *testing.T) {
	assert.Equal(t, []string{}, AvailableRanges(0))
	assert.Equal(t, []string{}, AvailableRanges(21))
	assert.Equal(t, []string{"1M"}, AvailableRanges(22))
	assert.Equal(t, []string{"1M", "3M", "6M"}, AvailableRanges(200))
	assert.Equal(t, []string{"1M", "3M", "6M", "1Y", "2Y"}, AvailableRanges(730))
}

func TestAnalyze(t *testing.T) {
	meta := core.SymbolMeta{Symbol: "AAPL", Name: "Apple", Sector: "Technology"}
	candles := rising("AAPL", 60, 100)

	snap, err := Analyze(meta, candles, 0.005, asOf)
	require.NoError(t, err)

	assert.Equal(t, 159.0, snap.Latest.Close)
	assert.InDelta(t, PercentChange(159, 158), snap.ChangePct, 1e-9)
	// one month back is candles[60-21] = 139
	assert.InDelta(t, PercentChange(159, 139), snap.Change1M, 1e-9)
	assert.Equal(t, 159.0, snap.Indicators.LastClose)
	assert.Equal(t, forecast.Horizon, len(snap.Forecast.Bands))
	assert.Equal(t, insight.Green, snap.Insight.TrafficLight)
	assert.Equal(t, 0.005, snap.DividendYield)
	assert.Equal(t, "AAPL", snap.Insight.Symbol)
}

func TestAnalyze_SingleCandle(t *testing.T) {
	snap, err := Analyze(core.SymbolMeta{Symbol: "X"}, series("X", 42), 0, asOf)
	require.NoError(t, err)
	assert.Equal(t, 0.0, snap.ChangePct)
	assert.Equal(t, 0.0, snap.Change1M)
}

func TestAnalyze_Empty(t *testing.T) {
	_, err := Analyze(core.SymbolMeta{Symbol: "X"}, nil, 0, asOf)
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestQuoteFromCandles(t *testing.T) {
	q, ok := QuoteFromCandles("SPX", "S&P 500", series("^spx", 100, 102), IndexWindow)
	require.True(t, ok)
	assert.Equal(t, "SPX", q.Symbol)
	assert.Equal(t, 102.0, q.LastClose)
	assert.InDelta(t, 2.0, q.ChangePct, 1e-9)

	q, ok = QuoteFromCandles("USDJPY", "", series("usdjpy", 150), FXWindow)
	require.True(t, ok)
	assert.Equal(t, 0.0, q.ChangePct)

	_, ok = QuoteFromCandles("EURUSD", "", nil, FXWindow)
	assert.False(t, ok)
}
