package collector

import (
	"context"
	"errors"
	"testing"
)

type mockDividendSource struct {
	yield float64
	err   error
}

func (m *mockDividendSource) Name() string { return "mock" }
func (m *mockDividendSource) FetchDividendYield(ctx context.Context, symbol string) (float64, error) {
	return m.yield, m.err
}

func TestDividendYield(t *testing.T) {
	ctx := context.Background()

	if got := DividendYield(ctx, nil, "AAPL", 0.01); got != 0.01 {
		t.Errorf("nil source: got %f, want static 0.01", got)
	}
	if got := DividendYield(ctx, &mockDividendSource{yield: 0.03}, "AAPL", 0.01); got != 0.03 {
		t.Errorf("got %f, want 0.03", got)
	}
	if got := DividendYield(ctx, &mockDividendSource{err: errors.New("down")}, "AAPL", 0.01); got != 0.01 {
		t.Errorf("failing source: got %f, want static 0.01", got)
	}
}
