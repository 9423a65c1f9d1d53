// Package report turns per-symbol engine results into the published JSON documents.
package report

import (
	"fmt"
	"time"

	"github.com/newthinker/tickervista/internal/core"
	"github.com/newthinker/tickervista/internal/forecast"
	"github.com/newthinker/tickervista/internal/indicator"
	"github.com/newthinker/tickervista/internal/insight"
)

// monthLookback is the number of sessions used for one-month performance.
const monthLookback = 21

// Snapshot is everything known about one symbol after a run
type Snapshot struct {
	Meta          core.SymbolMeta
	Candles       []core.Candle
	Indicators    indicator.Set
	Forecast      forecast.Result
	Insight       insight.Insight
	DividendYield float64
	ChangePct     float64
	Change1M      float64
	Latest        core.Candle
	Source        string
}

// Analyze runs the engine over normalized candles. candles must be sorted
// ascending; an empty series is rejected.
func Analyze(meta core.SymbolMeta, candles []core.Candle, dividendYield float64, asOf time.Time) (*Snapshot, error) {
	if len(candles) == 0 {
		return nil, core.WrapError(core.ErrInsufficientData, fmt.Errorf("%s: no candles", meta.Symbol))
	}

	set := indicator.Calculate(candles)
	latest := candles[len(candles)-1]
	previous := latest
	if len(candles) > 1 {
		previous = candles[len(candles)-2]
	}
	changePct := PercentChange(latest.Close, previous.Close)
	monthAgo := candles[max(len(candles)-monthLookback, 0)]

	return &Snapshot{
		Meta:          meta,
		Candles:       candles,
		Indicators:    set,
		Forecast:      forecast.Generate(meta.Symbol, candles, asOf),
		Insight:       insight.Compose(meta.Symbol, set, changePct),
		DividendYield: dividendYield,
		ChangePct:     changePct,
		Change1M:      PercentChange(latest.Close, monthAgo.Close),
		Latest:        latest,
	}, nil
}

// PercentChange returns the change from prev to cur in percent, 0 when prev is 0
func PercentChange(cur, prev float64) float64 {
	if prev == 0 {
		return 0
	}
	return (cur - prev) / prev * 100
}

var rangeThresholds = []struct {
	label string
	days  int
}{
	{"1M", 22},
	{"3M", 66},
	{"6M", 132},
	{"1Y", 264},
	{"2Y", 528},
}

// AvailableRanges lists the chart ranges a history of n candles can fill
func AvailableRanges(n int) []string {
	ranges := []string{}
	for _, r := range rangeThresholds {
		if n >= r.days {
			ranges = append(ranges, r.label)
		}
	}
	return ranges
}

// Quote is the latest level of an index or currency pair
type Quote struct {
	Symbol    string
	Name      string
	LastClose float64
	ChangePct float64
}

// Trailing windows applied before quoting
const (
	IndexWindow = 120
	FXWindow    = 60
)

// QuoteFromCandles quotes the last close over the trailing window.
// It reports false for an empty series.
func QuoteFromCandles(symbol, name string, candles []core.Candle, window int) (Quote, bool) {
	candles = indicator.TakeLast(candles, window)
	if len(candles) == 0 {
		return Quote{}, false
	}
	latest := candles[len(candles)-1]
	previous := latest
	if len(candles) > 1 {
		previous = candles[len(candles)-2]
	}
	return Quote{
		Symbol:    symbol,
		Name:      name,
		LastClose: latest.Close,
		ChangePct: PercentChange(latest.Close, previous.Close),
	}, true
}
