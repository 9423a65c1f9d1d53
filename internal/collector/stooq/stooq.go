// Package stooq reads daily history from stooq.com CSV downloads.
package stooq

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/tickervista/internal/collector"
	"github.com/newthinker/tickervista/internal/core"
)

const (
	defaultBaseURL = "https://stooq.com/q/d/l/"
	limitMarker    = "Exceeded the daily hits limit"
	dateLayout     = "2006-01-02"
)

// Stooq implements the stooq daily CSV source
type Stooq struct {
	client  *http.Client
	baseURL string
}

// New creates a new Stooq source
func New(cfg collector.Config) *Stooq {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Stooq{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
	}
}

func (s *Stooq) Name() string {
	return "stooq"
}

// FetchHistory downloads the full daily history and keeps rows within [start, end].
// A zero start keeps everything up to end.
func (s *Stooq) FetchHistory(ctx context.Context, meta core.SymbolMeta, start, end time.Time) ([]core.Candle, error) {
	body, err := s.fetchCSV(ctx, meta.StooqSymbol())
	if err != nil {
		return nil, err
	}

	candles, err := ParseCSV(body, meta.Symbol)
	if err != nil {
		return nil, err
	}

	filtered := candles[:0]
	for _, c := range candles {
		if !start.IsZero() && c.Time.Before(start) {
			continue
		}
		if !end.IsZero() && c.Time.After(end) {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered, nil
}

func (s *Stooq) fetchCSV(ctx context.Context, stooqSymbol string) (string, error) {
	q := url.Values{}
	q.Set("s", stooqSymbol)
	q.Set("i", "d")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching csv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}
	return string(data), nil
}

// ParseCSV parses a Date,Open,High,Low,Close[,Volume] document.
// Rows that fail to parse are skipped. symbol may be empty, in which
// case a Symbol column is used when present.
func ParseCSV(text, symbol string) ([]core.Candle, error) {
	if strings.Contains(text, limitMarker) {
		return nil, core.WrapError(core.ErrSourceLimit, fmt.Errorf("stooq"))
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return []core.Candle{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{"Date", "Open", "High", "Low", "Close"} {
		if _, ok := cols[required]; !ok {
			return nil, core.WrapError(core.ErrNoData, fmt.Errorf("missing column %q", required))
		}
	}

	var candles []core.Candle
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		c, ok := parseRow(record, cols, symbol)
		if !ok {
			continue
		}
		candles = append(candles, c)
	}
	return candles, nil
}

func parseRow(record []string, cols map[string]int, symbol string) (core.Candle, bool) {
	field := func(name string) (string, bool) {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[i]), true
	}
	number := func(name string) (float64, bool) {
		v, ok := field(name)
		if !ok {
			return 0, false
		}
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}

	date, _ := field("Date")
	ts, err := time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return core.Candle{}, false
	}
	open, ok1 := number("Open")
	high, ok2 := number("High")
	low, ok3 := number("Low")
	closePx, ok4 := number("Close")
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return core.Candle{}, false
	}

	var volume float64
	if v, ok := field("Volume"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return core.Candle{}, false
		}
		volume = f
	}

	if symbol == "" {
		symbol, _ = field("Symbol")
	}

	return core.Candle{
		Symbol:    symbol,
		Timeframe: core.TimeframeDaily,
		Time:      ts,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePx,
		Volume:    volume,
		AdjClose:  closePx,
	}, true
}
