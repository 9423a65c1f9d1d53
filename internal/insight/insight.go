package insight

import "github.com/newthinker/tickervista/internal/indicator"

const (
	changeThreshold = 0.5
	rsiOverbought   = 70
	rsiOversold     = 30

	Disclaimer = "Auto-generated summary based on end-of-day data. Educational use only."

	fallbackHighlight = "Momentum indicators are mixed; await confirmation."
	fallbackWatchout  = "Monitor macro headlines and earnings updates."
)

// Checklist is the static follow-up list attached to every insight
var Checklist = []string{
	"Review latest earnings release.",
	"Check sector peers for confirmation.",
	"Ensure position sizing fits risk plan.",
}

// Insight is the qualitative summary for a symbol
type Insight struct {
	Symbol       string       `json:"symbol"`
	TrafficLight TrafficLight `json:"trafficLight"`
	State        string       `json:"state"`
	Highlights   []string     `json:"highlights"`
	Watchouts    []string     `json:"watchouts"`
	Checklist    []string     `json:"checklist"`
	Disclaimer   string       `json:"disclaimer"`
}

// Compose evaluates the highlight and watchout rules in a fixed order.
// changePct is the latest session change in percent.
func Compose(symbol string, set indicator.Set, changePct float64) Insight {
	light := Classify(set)

	var highlights []string
	if changePct > changeThreshold {
		highlights = append(highlights, "Price gained over 0.5% on the latest session.")
	}
	if set.SMA.SMA20 > set.SMA.SMA50 {
		highlights = append(highlights, "20-day SMA is above the 50-day trend.")
	}
	if set.MACD.Histogram > 0 {
		highlights = append(highlights, "MACD histogram is positive.")
	}

	var watchouts []string
	if changePct < -changeThreshold {
		watchouts = append(watchouts, "Recent session closed more than 0.5% lower.")
	}
	if set.RSI14 > rsiOverbought {
		watchouts = append(watchouts, "RSI is above 70 (overbought territory).")
	}
	if set.RSI14 < rsiOversold {
		watchouts = append(watchouts, "RSI is below 30 (oversold territory).")
	}

	if len(highlights) == 0 {
		highlights = append(highlights, fallbackHighlight)
	}
	if len(watchouts) == 0 {
		watchouts = append(watchouts, fallbackWatchout)
	}

	checklist := make([]string, len(Checklist))
	copy(checklist, Checklist)

	return Insight{
		Symbol:       symbol,
		TrafficLight: light,
		State:        light.State(),
		Highlights:   highlights,
		Watchouts:    watchouts,
		Checklist:    checklist,
		Disclaimer:   Disclaimer,
	}
}
