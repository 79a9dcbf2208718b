package dist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPearsonCorrelation_PerfectLinear(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	ys := []float64{2, 4, 6, 8, 10}

	r, ok := PearsonCorrelation(xs, ys)
	require.True(t, ok)
	assert.InDelta(t, 1.0, r, 1e-12)

	descending := []float64{10, 8, 6, 4, 2}
	r, ok = PearsonCorrelation(xs, descending)
	require.True(t, ok)
	assert.InDelta(t, -1.0, r, 1e-12)
}

func TestPearsonCorrelation_NotComputable(t *testing.T) {
	_, ok := PearsonCorrelation([]float64{1, 2, 3}, []float64{1, 2})
	assert.False(t, ok, "length mismatch")

	_, ok = PearsonCorrelation([]float64{1}, []float64{2})
	assert.False(t, ok, "fewer than two observations")

	_, ok = PearsonCorrelation([]float64{5, 5, 5}, []float64{1, 2, 3})
	assert.False(t, ok, "constant series has no defined correlation")
}

func TestDistanceCorrelation_PerfectLinear(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	ys := []float64{3, 6, 9, 12, 15}

	d, ok := DistanceCorrelation(xs, ys)
	require.True(t, ok)
	assert.InDelta(t, 1.0, d, 1e-9)
}

func TestDistanceCorrelation_Range(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5, 6}
	ys := []float64{4, 1, 5, 2, 6, 3}

	d, ok := DistanceCorrelation(xs, ys)
	require.True(t, ok)
	assert.GreaterOrEqual(t, d, 0.0)
	assert.LessOrEqual(t, d, 1.0)
}

func TestDistanceCorrelation_NotComputable(t *testing.T) {
	_, ok := DistanceCorrelation([]float64{7, 7, 7}, []float64{1, 2, 3})
	assert.False(t, ok, "constant series")

	_, ok = DistanceCorrelation([]float64{1}, []float64{2})
	assert.False(t, ok, "single observation")

	_, ok = DistanceCorrelation([]float64{1, 2}, []float64{1, 2, 3})
	assert.False(t, ok, "length mismatch")
}

func TestDistanceCorrelation_DetectsNonlinearDependence(t *testing.T) {
	// y = x^2 over a symmetric range has Pearson near zero but a clearly
	// positive distance correlation.
	xs := []float64{-3, -2, -1, 0, 1, 2, 3}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = x * x
	}

	r, ok := PearsonCorrelation(xs, ys)
	require.True(t, ok)
	assert.InDelta(t, 0.0, r, 1e-9)

	d, ok := DistanceCorrelation(xs, ys)
	require.True(t, ok)
	assert.Greater(t, d, 0.3)
}
