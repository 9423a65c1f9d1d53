// Package forecast projects a drift + volatility cone from daily closes.
package forecast

import (
	"math"
	"time"

	"github.com/newthinker/tickervista/internal/core"
	"github.com/newthinker/tickervista/internal/indicator"
)

const (
	ModelName     = "Drift + Volatility Cone"
	Horizon       = 30
	ReturnWindow  = 60
	VolatilityMin = 0.02

	Methodology             = "Simple drift using recent daily returns with volatility-based confidence bands."
	MethodologyInsufficient = "Insufficient data"

	day = 24 * time.Hour
)

// Band is one projected step
type Band struct {
	Step  int       `json:"step"`
	Time  time.Time `json:"ts"`
	Mid   float64   `json:"mid"`
	Lower float64   `json:"lower"`
	Upper float64   `json:"upper"`
}

// Result is the full projection for a symbol
type Result struct {
	Symbol      string `json:"symbol"`
	Model       string `json:"model"`
	HorizonDays int    `json:"horizonDays"`
	Methodology string `json:"methodology"`
	Bands       []Band `json:"bands"`
}

// Generate projects Horizon calendar days past asOf.
// Empty input returns a result with no bands.
func Generate(symbol string, candles []core.Candle, asOf time.Time) Result {
	result := Result{
		Symbol:      symbol,
		Model:       ModelName,
		HorizonDays: Horizon,
		Methodology: MethodologyInsufficient,
		Bands:       []Band{},
	}

	closes := core.Closes(candles)
	if len(closes) == 0 {
		return result
	}

	recent := indicator.TakeLast(Returns(closes), ReturnWindow)
	meanReturn := indicator.Mean(recent)
	volatility := indicator.StdDev(recent)
	if volatility == 0 {
		volatility = VolatilityMin
	}
	lastClose := closes[len(closes)-1]

	bands := make([]Band, 0, Horizon)
	for step := 1; step <= Horizon; step++ {
		mid := lastClose * math.Pow(1+meanReturn, float64(step))
		spread := mid * volatility * math.Sqrt(float64(step))
		bands = append(bands, Band{
			Step:  step,
			Time:  asOf.Add(time.Duration(step) * day),
			Mid:   mid,
			Lower: mid - spread,
			Upper: mid + spread,
		})
	}

	result.Methodology = Methodology
	result.Bands = bands
	return result
}

// Returns computes simple step returns, skipping steps whose previous close is 0
func Returns(closes []float64) []float64 {
	returns := make([]float64, 0, len(closes))
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev == 0 {
			continue
		}
		returns = append(returns, (closes[i]-prev)/prev)
	}
	return returns
}
