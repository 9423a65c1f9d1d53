package alphavantage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/newthinker/tickervista/internal/collector"
	"github.com/newthinker/tickervista/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlphaVantage_ImplementsDividendSource(t *testing.T) {
	var _ collector.DividendSource = (*AlphaVantage)(nil)
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"0.0054", 0.0054},
		{" 2.7% ", 2.7},
		{"1,234.5", 1234.5},
		{"None", -1},
		{"n/a", -1},
		{"NaN", -1},
		{"", -1},
		{"abc", -1},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseFloat(tc.input, -1), "input %q", tc.input)
	}
}

func TestFetchDividendYield(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "OVERVIEW", q.Get("function"))
		assert.Equal(t, "secret", q.Get("apikey"))
		switch q.Get("symbol") {
		case "KO":
			w.Write([]byte(`{"Symbol":"KO","DividendYield":"0.031"}`))
		case "JPM":
			w.Write([]byte(`{"Symbol":"JPM","DividendYield":"None","ForwardAnnualDividendYield":""}`))
		case "XOM":
			w.Write([]byte(`{"Symbol":"XOM","DividendYield":"","ForwardAnnualDividendYield":"0.033"}`))
		default:
			w.Write([]byte(`{}`))
		}
	}))
	defer srv.Close()

	a := New(collector.Config{BaseURL: srv.URL, APIKey: "secret"})
	ctx := context.Background()

	y, err := a.FetchDividendYield(ctx, "KO")
	require.NoError(t, err)
	assert.Equal(t, 0.031, y)

	y, err = a.FetchDividendYield(ctx, "JPM")
	require.NoError(t, err)
	assert.Equal(t, 0.0, y)

	y, err = a.FetchDividendYield(ctx, "XOM")
	require.NoError(t, err)
	assert.Equal(t, 0.033, y)

	_, err = a.FetchDividendYield(ctx, "ZZZZ")
	assert.ErrorIs(t, err, core.ErrSymbolNotFound)
}
