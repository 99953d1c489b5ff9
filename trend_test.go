package batteryaging

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ages(n int) []float64 {
	res := make([]float64, n)
	for i := range res {
		res[i] = float64(i)
	}
	return res
}

func TestParseTrendMethod(t *testing.T) {
	m, err := ParseTrendMethod("")
	require.NoError(t, err)
	assert.Equal(t, TrendExp, m)

	m, err = ParseTrendMethod("linear")
	require.NoError(t, err)
	assert.Equal(t, TrendLinear, m)

	_, err = ParseTrendMethod("cubic")
	assert.Error(t, err)
}

func TestLinearTrend(t *testing.T) {
	x := ages(10)
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 0.05 + 0.002*v
	}

	res := FitTrend(x, y, TrendLinear)
	require.Equal(t, OK, res.Status)
	assert.InDelta(t, 0.05, res.Params[0], 1e-12)
	assert.InDelta(t, 0.002, res.Params[1], 1e-12)
	assert.InDelta(t, 1, res.RSquared, 1e-9)
	assert.InDelta(t, 0, res.Min, 1e-20)
	assert.InDelta(t, 0.002, res.Slope(9), 1e-12)
	assert.Equal(t, 10, res.Points)
}

func TestExpTrend(t *testing.T) {
	x := ages(20)
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 1 + 0.5*math.Exp(0.1*v)
	}

	res := FitTrend(x, y, TrendExp)
	require.Equal(t, OK, res.Status)
	require.Len(t, res.Params, 3)
	assert.Less(t, res.Min, 1e-4)
	assert.Contains(t, []string{"lm", "nelder-mead"}, res.Solver)
}

func TestTrendTooFewPoints(t *testing.T) {
	res := FitTrend([]float64{0, 1}, []float64{1, 2}, TrendExp)
	assert.Equal(t, ERROR, res.Status)
	assert.True(t, math.IsInf(res.Min, 1))
	assert.True(t, math.IsNaN(res.Slope(1)))
}

func TestTrendLengthMismatch(t *testing.T) {
	res := FitTrend([]float64{0, 1, 2}, []float64{1, 2}, TrendLinear)
	assert.Equal(t, ERROR, res.Status)
}

func TestChiSq(t *testing.T) {
	assert.Equal(t, 0.0, ChiSq([]float64{1, 2}, []float64{1, 2}))
	assert.Equal(t, 2.5, ChiSq([]float64{0, 0}, []float64{1, 2}))
	assert.Panics(t, func() { ChiSq([]float64{1}, nil) })
}
