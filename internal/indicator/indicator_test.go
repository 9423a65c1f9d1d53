package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/newthinker/tickervista/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candlesFromCloses(closes ...float64) []core.Candle {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]core.Candle, len(closes))
	for i, c := range closes {
		candles[i] = core.Candle{
			Symbol:    "TEST",
			Timeframe: core.TimeframeDaily,
			Time:      start.AddDate(0, 0, i),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			AdjClose:  c,
			Volume:    1000,
		}
	}
	return candles
}

func TestCalculate_ShortHistory(t *testing.T) {
	set := Calculate(candlesFromCloses(100, 102, 101, 105, 103))

	assert.InDelta(t, 102.2, set.SMA.SMA20, 1e-9)
	assert.InDelta(t, 102.2, set.SMA.SMA50, 1e-9)
	assert.InDelta(t, 102.2, set.Bollinger.Middle, 1e-9)
	assert.Equal(t, 103.0, set.LastClose)

	assert.False(t, math.IsNaN(set.MACD.Histogram))
	assert.False(t, math.IsInf(set.MACD.Histogram, 0))
	assert.InDelta(t, set.MACD.MACD-set.MACD.Signal, set.MACD.Histogram, 1e-12)
}

func TestCalculate_RSIRange(t *testing.T) {
	set := Calculate(candlesFromCloses(100, 102, 101, 105, 103))

	// gains 2,0,4,0 losses 0,1,0,2 -> avg 1.5 / 0.75 -> rs 2 -> 66.67
	assert.InDelta(t, 100-100/3.0, set.RSI14, 1e-9)
	assert.GreaterOrEqual(t, set.RSI14, 0.0)
	assert.LessOrEqual(t, set.RSI14, 100.0)
}

func TestRSI_StrictlyRising(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 10 + float64(i)*0.5
	}
	assert.Equal(t, 100.0, RSI(closes, RSIPeriod))
}

func TestRSI_StrictlyFalling(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 - float64(i)
	}
	assert.Equal(t, 0.0, RSI(closes, RSIPeriod))
}

func TestRSI_SingleCandle(t *testing.T) {
	set := Calculate(candlesFromCloses(42))
	assert.Equal(t, 100.0, set.RSI14)
	assert.Equal(t, 42.0, set.LastClose)
	assert.Equal(t, 0.0, set.MACD.MACD)
	assert.Equal(t, 0.0, set.MACD.Histogram)
}

func TestRSI_OnlyTrailingWindowCounts(t *testing.T) {
	// early losses fall out of the 14-delta window
	closes := []float64{100, 90, 80}
	for i := 0; i < 14; i++ {
		closes = append(closes, 80+float64(i+1))
	}
	assert.Equal(t, 100.0, RSI(closes, RSIPeriod))
}

func TestBollinger_Invariant(t *testing.T) {
	series := [][]float64{
		{100},
		{100, 100, 100},
		{100, 102, 101, 105, 103, 99, 97, 110, 108, 101, 95, 120},
	}
	for _, closes := range series {
		b := BollingerBands(closes, BollingerPeriod, BollingerWidth)
		assert.LessOrEqual(t, b.Lower, b.Middle)
		assert.LessOrEqual(t, b.Middle, b.Upper)
	}
}

func TestBollinger_UsesTrailingWindow(t *testing.T) {
	closes := make([]float64, 0, 30)
	for i := 0; i < 10; i++ {
		closes = append(closes, 1000)
	}
	for i := 0; i < 20; i++ {
		closes = append(closes, 50)
	}
	b := BollingerBands(closes, 20, 2)
	assert.Equal(t, Bollinger{Upper: 50, Middle: 50, Lower: 50}, b)
}

func TestMACD_Empty(t *testing.T) {
	assert.Equal(t, MACD{}, MACDLatest(nil, 12, 26, 9))
}

func TestMACD_MatchesManualComputation(t *testing.T) {
	closes := []float64{10, 11, 12, 11, 13, 14, 13, 15}
	fast := EMA(closes, 12)
	slow := EMA(closes, 26)
	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}
	signal := EMA(line, 9)

	m := MACDLatest(closes, 12, 26, 9)
	assert.Equal(t, line[len(line)-1], m.MACD)
	assert.Equal(t, signal[len(signal)-1], m.Signal)
	assert.Equal(t, m.MACD-m.Signal, m.Histogram)
}

func TestMACD_RisingSeriesIsPositive(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 * math.Pow(1.01, float64(i))
	}
	m := MACDLatest(closes, 12, 26, 9)
	assert.Greater(t, m.MACD, 0.0)
	assert.Greater(t, m.Histogram, 0.0)
}

func TestCalculate_Empty(t *testing.T) {
	set := Calculate(nil)
	assert.Equal(t, 0.0, set.LastClose)
	assert.Equal(t, 100.0, set.RSI14)
	assert.Equal(t, MACD{}, set.MACD)
}

func TestCalculate_Idempotent(t *testing.T) {
	closes := make([]float64, 120)
	for i := range closes {
		closes[i] = 50 + 10*math.Sin(float64(i)/7) + float64(i)*0.1
	}
	candles := candlesFromCloses(closes...)

	first := Calculate(candles)
	second := Calculate(candles)
	require.Equal(t, first, second)
	assert.True(t, almostEqual(first.SMA.SMA20, Mean(closes[100:]), 1e-9))
	assert.True(t, almostEqual(first.SMA.SMA50, Mean(closes[70:]), 1e-9))
}

func TestCalculate_DoesNotMutateInput(t *testing.T) {
	candles := candlesFromCloses(5, 4, 3, 2, 1)
	snapshot := make([]core.Candle, len(candles))
	copy(snapshot, candles)

	Calculate(candles)
	assert.Equal(t, snapshot, candles)
}
