// Package alphavantage looks up dividend yields from the Alpha Vantage OVERVIEW endpoint.
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/tickervista/internal/collector"
	"github.com/newthinker/tickervista/internal/core"
)

const defaultBaseURL = "https://www.alphavantage.co/query"

var nullish = map[string]struct{}{
	"none": {}, "null": {}, "na": {}, "n/a": {}, "nan": {},
}

// AlphaVantage implements collector.DividendSource
type AlphaVantage struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// New creates the source. Callers only wire it when an API key is configured.
func New(cfg collector.Config) *AlphaVantage {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &AlphaVantage{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
	}
}

func (a *AlphaVantage) Name() string {
	return "alphavantage"
}

type overview struct {
	Symbol                     string `json:"Symbol"`
	DividendYield              string `json:"DividendYield"`
	ForwardAnnualDividendYield string `json:"ForwardAnnualDividendYield"`
	DividendPerShare           string `json:"DividendPerShare"`
}

// FetchDividendYield returns DividendYield, falling back to the forward yield
func (a *AlphaVantage) FetchDividendYield(ctx context.Context, symbol string) (float64, error) {
	q := url.Values{}
	q.Set("function", "OVERVIEW")
	q.Set("symbol", symbol)
	q.Set("apikey", a.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching overview: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var ov overview
	if err := json.NewDecoder(resp.Body).Decode(&ov); err != nil {
		return 0, fmt.Errorf("decoding response: %w", err)
	}
	if ov.Symbol == "" {
		return 0, core.WrapError(core.ErrSymbolNotFound, fmt.Errorf("no overview for %s", symbol))
	}

	raw := ov.DividendYield
	if raw == "" {
		raw = ov.ForwardAnnualDividendYield
	}
	return ParseFloat(raw, 0), nil
}

// ParseFloat reads loosely formatted numbers such as "1,234.5", "2.7%" or "None".
// Anything unparsable yields def.
func ParseFloat(value string, def float64) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return def
	}
	if _, ok := nullish[strings.ToLower(cleaned)]; ok {
		return def
	}
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return def
	}
	return f
}
