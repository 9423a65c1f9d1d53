package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, Mean([]float64{}))
	assert.InDelta(t, 102.2, Mean([]float64{100, 102, 101, 105, 103}), 1e-9)
}

func TestStdDev_Population(t *testing.T) {
	assert.Equal(t, 0.0, StdDev(nil))
	assert.Equal(t, 0.0, StdDev([]float64{5, 5, 5}))

	// population variance of {2,4,4,4,5,5,7,9} is 4
	assert.InDelta(t, 2.0, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-12)
}

func TestEMA_SeededWithFirstValue(t *testing.T) {
	// period 3 -> k = 0.5
	// 10, 0.5*11+0.5*10 = 10.5, 0.5*12+0.5*10.5 = 11.25, 0.5*13+0.5*11.25 = 12.125
	ema := EMA([]float64{10, 11, 12, 13}, 3)
	require.Len(t, ema, 4)
	assert.Equal(t, 10.0, ema[0])
	assert.InDelta(t, 10.5, ema[1], 1e-12)
	assert.InDelta(t, 11.25, ema[2], 1e-12)
	assert.InDelta(t, 12.125, ema[3], 1e-12)
}

func TestEMA_Empty(t *testing.T) {
	ema := EMA(nil, 12)
	assert.NotNil(t, ema)
	assert.Empty(t, ema)
}

func TestEMA_ShorterThanPeriod(t *testing.T) {
	ema := EMA([]float64{10, 11}, 26)
	assert.Len(t, ema, 2)
}

func TestTakeLast(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, []float64{4, 5}, TakeLast(values, 2))
	assert.Equal(t, values, TakeLast(values, 5))
	assert.Equal(t, values, TakeLast(values, 50))
	assert.Empty(t, TakeLast([]float64(nil), 3))
}

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestTakeFirst(t *testing.T) {
	values := []string{"a", "b", "c"}
	assert.Equal(t, []string{"a", "b"}, TakeFirst(values, 2))
	assert.Equal(t, values, TakeFirst(values, 10))
}
