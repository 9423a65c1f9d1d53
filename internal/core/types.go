package core

import (
	"math"
	"sort"
	"time"
)

// Timeframe of a candle series
const TimeframeDaily = "1d"

// Candle represents one daily OHLCV bar
type Candle struct {
	Symbol    string    `json:"symbol"`
	Timeframe string    `json:"timeframe"`
	Time      time.Time `json:"ts"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	AdjClose  float64   `json:"adjClose"`
}

// IsValid checks if the candle has the fields the engine relies on:
// positive finite prices and a finite, non-negative volume.
func (c Candle) IsValid() bool {
	if c.Time.IsZero() {
		return false
	}
	for _, px := range [...]float64{c.Open, c.High, c.Low, c.Close} {
		if !finite(px) || px <= 0 {
			return false
		}
	}
	return finite(c.Volume) && c.Volume >= 0
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Valid returns the candles that pass IsValid, in their original order.
func Valid(candles []Candle) []Candle {
	out := make([]Candle, 0, len(candles))
	for _, c := range candles {
		if c.IsValid() {
			out = append(out, c)
		}
	}
	return out
}

// Closes extracts closing prices in order
func Closes(candles []Candle) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return closes
}

// Normalize sorts candles ascending by time, drops duplicate timestamps
// (the later row wins) and keeps at most the trailing limit candles.
// limit <= 0 keeps everything. The input slice is not modified.
func Normalize(candles []Candle, limit int) []Candle {
	sorted := make([]Candle, len(candles))
	copy(sorted, candles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	result := make([]Candle, 0, len(sorted))
	for _, c := range sorted {
		if n := len(result); n > 0 && result[n-1].Time.Equal(c.Time) {
			result[n-1] = c
			continue
		}
		result = append(result, c)
	}

	if limit > 0 && len(result) > limit {
		result = result[len(result)-limit:]
	}
	return result
}

// SymbolMeta describes an instrument in the universe
type SymbolMeta struct {
	Symbol        string  `json:"symbol" mapstructure:"symbol"`
	Stooq         string  `json:"stooq" mapstructure:"stooq"`
	Name          string  `json:"name" mapstructure:"name"`
	Exchange      string  `json:"exchange" mapstructure:"exchange"`
	Currency      string  `json:"currency" mapstructure:"currency"`
	TZ            string  `json:"tz" mapstructure:"tz"`
	Sector        string  `json:"sector" mapstructure:"sector"`
	Country       string  `json:"country" mapstructure:"country"`
	DividendYield float64 `json:"dividendYield" mapstructure:"dividend_yield"`
}

// StooqSymbol returns the stooq ticker, deriving a US listing when unset
func (m SymbolMeta) StooqSymbol() string {
	if m.Stooq != "" {
		return m.Stooq
	}
	return StooqUS(m.Symbol)
}
