package dist

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntropy(t *testing.T) {
	uniform := Distribution{"a": 0.5, "b": 0.5}
	assert.InDelta(t, 1.0, Entropy(uniform), 1e-12, "two equiprobable states carry one bit")

	point := Distribution{"a": 1.0}
	assert.InDelta(t, 0.0, Entropy(point), 1e-12)

	assert.Equal(t, 0.0, Entropy(Distribution{}))
}

func TestKLDivergence_Identical(t *testing.T) {
	p := Distribution{"a": 0.3, "b": 0.7}
	assert.InDelta(t, 0.0, KLDivergence(p, p), 1e-12)
}

func TestKLDivergence_SupportMismatchIsInfinite(t *testing.T) {
	p := Distribution{"a": 0.5, "b": 0.5}
	q := Distribution{"a": 1.0}
	assert.True(t, math.IsInf(KLDivergence(p, q), 1))

	// The other direction is finite: q's support is inside p's.
	assert.False(t, math.IsInf(KLDivergence(q, p), 0))
}

func TestJensenShannon_FiniteOnDisjointSupport(t *testing.T) {
	p := Distribution{"a": 1.0}
	q := Distribution{"b": 1.0}

	jsd := JensenShannonDivergence(p, q)
	assert.False(t, math.IsInf(jsd, 0))
	assert.InDelta(t, 1.0, jsd, 1e-12, "disjoint supports maximize JSD at one bit")
}

func TestJensenShannon_Symmetric(t *testing.T) {
	p := Distribution{"a": 0.2, "b": 0.8}
	q := Distribution{"a": 0.6, "b": 0.3, "c": 0.1}
	assert.InDelta(t, JensenShannonDivergence(p, q), JensenShannonDivergence(q, p), 1e-12)
}

func TestJensenShannonDistance(t *testing.T) {
	p := Distribution{"a": 0.2, "b": 0.8}
	assert.InDelta(t, 0.0, JensenShannonDistance(p, p), 1e-12)

	q := Distribution{"a": 0.7, "b": 0.3}
	d := JensenShannonDistance(p, q)
	assert.InDelta(t, math.Sqrt(JensenShannonDivergence(p, q)), d, 1e-12)
}

func TestHellingerDistance(t *testing.T) {
	p := Distribution{"a": 0.4, "b": 0.6}
	assert.InDelta(t, 0.0, HellingerDistance(p, p), 1e-12)

	disjointP := Distribution{"a": 1.0}
	disjointQ := Distribution{"b": 1.0}
	assert.InDelta(t, 1.0, HellingerDistance(disjointP, disjointQ), 1e-12)

	q := Distribution{"a": 0.6, "b": 0.4}
	d := HellingerDistance(p, q)
	assert.Greater(t, d, 0.0)
	assert.Less(t, d, 1.0)
}

func TestMeanSquaredError(t *testing.T) {
	p := Distribution{"a": 1.0}
	q := Distribution{"b": 1.0}
	// Union has two keys, each contributing a squared difference of 1.
	assert.InDelta(t, 1.0, MeanSquaredError(p, q), 1e-12)

	assert.Equal(t, 0.0, MeanSquaredError(Distribution{}, Distribution{}))
	assert.InDelta(t, 0.0, MeanSquaredError(p, p), 1e-12)
}

func TestMutualInformation(t *testing.T) {
	dependent := Distribution{"a|x": 0.5, "b|y": 0.5}
	assert.InDelta(t, 1.0, MutualInformation(dependent), 1e-12, "deterministic coupling of two binary variables carries one bit")

	independent := Distribution{"a|x": 0.25, "a|y": 0.25, "b|x": 0.25, "b|y": 0.25}
	assert.InDelta(t, 0.0, MutualInformation(independent), 1e-12)
}

func TestMutualInformation_NeverNegative(t *testing.T) {
	nearIndependent := Distribution{
		"a|x": 0.2500000001, "a|y": 0.2499999999,
		"b|x": 0.2499999999, "b|y": 0.2500000001,
	}
	assert.GreaterOrEqual(t, MutualInformation(nearIndependent), 0.0)
}
