package dist

import (
	"math"

	"github.com/montanaflynn/stats"
)

// PearsonCorrelation computes the standard product-moment correlation.
// The boolean is false when the series lengths mismatch, fewer than two
// observations exist, or either series has zero variance - "not
// computable" is distinct from "computed as zero".
func PearsonCorrelation(xs, ys []float64) (float64, bool) {
	if len(xs) != len(ys) || len(xs) < 2 {
		return 0, false
	}
	if !hasVariance(xs) || !hasVariance(ys) {
		return 0, false
	}
	r, err := stats.Pearson(xs, ys)
	if err != nil || math.IsNaN(r) {
		return 0, false
	}
	// Guard against float drift past the documented range.
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r, true
}

// DistanceCorrelation computes the distance correlation V-statistic:
// pairwise absolute-difference matrices, double-centered, with
// dCor = sqrt(V(X,Y)) / sqrt(sqrt(V(X,X))*sqrt(V(Y,Y))), clamped to
// [0,1]. The boolean is false for constant series or n < 2.
func DistanceCorrelation(xs, ys []float64) (float64, bool) {
	n := len(xs)
	if n != len(ys) || n < 2 {
		return 0, false
	}

	ax := centeredDistanceMatrix(xs)
	ay := centeredDistanceMatrix(ys)

	vxy := matrixProductMean(ax, ay)
	vxx := matrixProductMean(ax, ax)
	vyy := matrixProductMean(ay, ay)

	if vxx <= 0 || vyy <= 0 {
		return 0, false
	}

	dcor := math.Sqrt(vxy) / math.Sqrt(math.Sqrt(vxx)*math.Sqrt(vyy))
	if math.IsNaN(dcor) {
		return 0, false
	}
	if dcor > 1 {
		dcor = 1
	} else if dcor < 0 {
		dcor = 0
	}
	return dcor, true
}

// centeredDistanceMatrix builds the pairwise |xi-xj| matrix and
// double-centers it: subtract row mean and column mean, add grand mean.
func centeredDistanceMatrix(values []float64) [][]float64 {
	n := len(values)
	m := make([][]float64, n)
	rowMeans := make([]float64, n)
	grandMean := 0.0

	for i := range m {
		m[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			d := math.Abs(values[i] - values[j])
			m[i][j] = d
			rowMeans[i] += d
		}
		rowMeans[i] /= float64(n)
		grandMean += rowMeans[i]
	}
	grandMean /= float64(n)

	// Distance matrices are symmetric, so column means equal row means.
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			m[i][j] = m[i][j] - rowMeans[i] - rowMeans[j] + grandMean
		}
	}
	return m
}

// matrixProductMean is the V-statistic: the mean of the element-wise
// product of two centered matrices.
func matrixProductMean(a, b [][]float64) float64 {
	n := len(a)
	sum := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sum += a[i][j] * b[i][j]
		}
	}
	return sum / float64(n*n)
}

func hasVariance(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return true
		}
	}
	return false
}
