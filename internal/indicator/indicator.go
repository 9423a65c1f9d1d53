package indicator

import "github.com/newthinker/tickervista/internal/core"

const (
	SMAFastPeriod   = 20
	SMASlowPeriod   = 50
	BollingerPeriod = 20
	BollingerWidth  = 2.0
	RSIPeriod       = 14
	MACDFastPeriod  = 12
	MACDSlowPeriod  = 26
	MACDSignal      = 9
)

// SMA holds the trailing simple moving averages
type SMA struct {
	SMA20 float64 `json:"sma20"`
	SMA50 float64 `json:"sma50"`
}

// Bollinger holds the volatility bands
type Bollinger struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// MACD holds the latest MACD line, signal and histogram
type MACD struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// Set is the full indicator snapshot for one candle series
type Set struct {
	RSI14     float64   `json:"rsi14"`
	SMA       SMA       `json:"sma"`
	Bollinger Bollinger `json:"bollinger"`
	MACD      MACD      `json:"macd"`
	LastClose float64   `json:"lastClose"`
}

// Calculate derives the indicator set from candles ordered oldest first.
// Short histories degrade to the values available instead of failing.
func Calculate(candles []core.Candle) Set {
	closes := core.Closes(candles)

	set := Set{
		RSI14: RSI(closes, RSIPeriod),
		SMA: SMA{
			SMA20: Mean(TakeLast(closes, SMAFastPeriod)),
			SMA50: Mean(TakeLast(closes, SMASlowPeriod)),
		},
		Bollinger: BollingerBands(closes, BollingerPeriod, BollingerWidth),
		MACD:      MACDLatest(closes, MACDFastPeriod, MACDSlowPeriod, MACDSignal),
	}
	if len(closes) > 0 {
		set.LastClose = closes[len(closes)-1]
	}
	return set
}

// BollingerBands uses the population deviation of the trailing window
func BollingerBands(closes []float64, period int, width float64) Bollinger {
	window := TakeLast(closes, period)
	middle := Mean(window)
	std := StdDev(window)
	return Bollinger{
		Upper:  middle + std*width,
		Middle: middle,
		Lower:  middle - std*width,
	}
}

// RSI averages the trailing period gains and losses.
// A zero average loss yields 100, including when there are no deltas at all.
func RSI(closes []float64, period int) float64 {
	var gains, losses []float64
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gains = append(gains, max(delta, 0))
		losses = append(losses, max(-delta, 0))
	}

	avgGain := Mean(TakeLast(gains, period))
	avgLoss := Mean(TakeLast(losses, period))
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACDLatest computes the MACD line over the index range both EMAs cover,
// then the signal EMA of that line. Empty input yields zeros.
func MACDLatest(closes []float64, fast, slow, signal int) MACD {
	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)

	n := min(len(fastEMA), len(slowEMA))
	line := make([]float64, n)
	for i := 0; i < n; i++ {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	signalLine := EMA(line, signal)

	var m MACD
	if len(line) > 0 {
		m.MACD = line[len(line)-1]
	}
	if len(signalLine) > 0 {
		m.Signal = signalLine[len(signalLine)-1]
	}
	m.Histogram = m.MACD - m.Signal
	return m
}
