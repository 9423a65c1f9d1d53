// Package universe resolves the list of instruments a pipeline run covers.
package universe

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/newthinker/tickervista/internal/core"
)

const (
	DefaultSP500URL   = "https://raw.githubusercontent.com/datasets/s-and-p-500-companies/master/data/constituents.csv"
	DefaultSP500Limit = 200
	sp500Yield        = 0.02
)

// Base is the built-in core universe of US and Japanese large caps
func Base() []core.SymbolMeta {
	us := func(sym, name, exch, tz, sector string, dy float64) core.SymbolMeta {
		return core.SymbolMeta{Symbol: sym, Stooq: core.StooqUS(sym), Name: name, Exchange: exch,
			Currency: "USD", TZ: tz, Sector: sector, Country: "US", DividendYield: dy}
	}
	jp := func(code, name, sector string, dy float64) core.SymbolMeta {
		return core.SymbolMeta{Symbol: code + ".T", Stooq: code + ".jp", Name: name, Exchange: "TSE",
			Currency: "JPY", TZ: "Asia/Tokyo", Sector: sector, Country: "JP", DividendYield: dy}
	}

	return []core.SymbolMeta{
		us("AAPL", "Apple Inc.", "NASDAQ", "America/New_York", "Technology", 0.0054),
		us("MSFT", "Microsoft Corp.", "NASDAQ", "America/New_York", "Technology", 0.0083),
		us("NVDA", "NVIDIA Corp.", "NASDAQ", "America/Los_Angeles", "Technology", 0.0003),
		us("AMZN", "Amazon.com Inc.", "NASDAQ", "America/Los_Angeles", "Consumer Discretionary", 0),
		us("GOOGL", "Alphabet Inc. Class A", "NASDAQ", "America/Los_Angeles", "Communication Services", 0),
		us("TSLA", "Tesla Inc.", "NASDAQ", "America/Los_Angeles", "Consumer Discretionary", 0),
		us("JPM", "JPMorgan Chase & Co.", "NYSE", "America/New_York", "Financials", 0.027),
		us("XOM", "Exxon Mobil Corp.", "NYSE", "America/Chicago", "Energy", 0.033),
		us("KO", "Coca-Cola Co.", "NYSE", "America/New_York", "Consumer Staples", 0.030),
		us("PFE", "Pfizer Inc.", "NYSE", "America/New_York", "Health Care", 0.059),
		jp("7203", "Toyota Motor Corp.", "Automobiles", 0.024),
		jp("6758", "Sony Group Corp.", "Technology", 0.009),
		jp("9984", "SoftBank Group Corp.", "Communication Services", 0.005),
		jp("8306", "Mitsubishi UFJ Financial Group", "Financials", 0.034),
		jp("8035", "Tokyo Electron Ltd.", "Technology", 0.013),
		jp("6861", "Keyence Corp.", "Technology", 0.008),
		jp("9433", "KDDI Corp.", "Communication Services", 0.032),
		jp("8058", "Mitsubishi Corp.", "Industrials", 0.027),
		jp("4063", "Shin-Etsu Chemical", "Materials", 0.025),
		jp("4502", "Takeda Pharmaceutical", "Health Care", 0.041),
	}
}

// SP500Loader fetches S&P 500 constituents from a Symbol,Name,Sector CSV
type SP500Loader struct {
	client *http.Client
	url    string
}

// NewSP500Loader creates a loader; an empty url uses DefaultSP500URL
func NewSP500Loader(url string) *SP500Loader {
	if url == "" {
		url = DefaultSP500URL
	}
	return &SP500Loader{
		client: &http.Client{Timeout: 30 * time.Second},
		url:    url,
	}
}

// Load returns up to limit constituents whose symbol is not already in existing.
// Accepted symbols are added to existing.
func (l *SP500Loader) Load(ctx context.Context, existing map[string]struct{}, limit int) ([]core.SymbolMeta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching constituents: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return ParseConstituents(resp.Body, existing, limit)
}

// ParseConstituents reads the constituents CSV
func ParseConstituents(r io.Reader, existing map[string]struct{}, limit int) ([]core.SymbolMeta, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	get := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var metas []core.SymbolMeta
	for limit <= 0 || len(metas) < limit {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		symbol := strings.ToUpper(get(rec, "Symbol"))
		if symbol == "" {
			continue
		}
		if _, dup := existing[symbol]; dup {
			continue
		}
		name := get(rec, "Name")
		if name == "" {
			name = symbol
		}
		sector := get(rec, "Sector")
		if sector == "" {
			sector = "Unknown"
		}

		metas = append(metas, core.SymbolMeta{
			Symbol:        symbol,
			Stooq:         core.StooqUS(symbol),
			Name:          name,
			Exchange:      "NYSE/NASDAQ",
			Currency:      "USD",
			TZ:            "America/New_York",
			Sector:        sector,
			Country:       "US",
			DividendYield: sp500Yield,
		})
		existing[symbol] = struct{}{}
	}
	return metas, nil
}
