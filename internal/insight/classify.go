// Package insight scores an indicator snapshot into a traffic light and
// composes the rule-based summary shown next to it.
package insight

import (
	"math"

	"github.com/newthinker/tickervista/internal/indicator"
)

// TrafficLight is the three-level sentiment classification
type TrafficLight string

const (
	Green  TrafficLight = "GREEN"
	Yellow TrafficLight = "YELLOW"
	Red    TrafficLight = "RED"
)

const (
	trendWeight = 0.4
	rsiWeight   = 0.4
	widthWeight = 0.2

	greenThreshold = 0.2
	redThreshold   = -0.2
)

// Score blends trend, RSI distance from 50 and Bollinger width into one number
func Score(set indicator.Set) float64 {
	sma50 := set.SMA.SMA50
	if sma50 == 0 {
		sma50 = 1
	}
	trend := math.Tanh((set.SMA.SMA20 - set.SMA.SMA50) / sma50)

	rsiComponent := 1 - math.Min(math.Abs(50-set.RSI14)/50, 1)

	middle := set.Bollinger.Middle
	if middle == 0 {
		middle = 1
	}
	widthComponent := 1 - math.Min((set.Bollinger.Upper-set.Bollinger.Lower)/middle, 1)

	return trendWeight*trend + rsiWeight*rsiComponent + widthWeight*widthComponent
}

// Classify maps the score onto a traffic light
func Classify(set indicator.Set) TrafficLight {
	score := Score(set)
	switch {
	case score >= greenThreshold:
		return Green
	case score <= redThreshold:
		return Red
	default:
		return Yellow
	}
}

// State returns the human label for a light
func (l TrafficLight) State() string {
	switch l {
	case Green:
		return "Bullish momentum"
	case Red:
		return "Caution zone"
	default:
		return "Neutral / rangebound"
	}
}
