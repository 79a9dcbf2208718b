package dist

import (
	"math"

	"stokhos/domain/variable"
)

// Entropy computes the Shannon entropy -sum p*log2(p) in bits. Zero-mass
// terms contribute nothing (0*log 0 = 0).
func Entropy(d Distribution) float64 {
	entropy := 0.0
	for _, p := range d {
		if p > 0 {
			entropy -= p * math.Log2(p)
		}
	}
	return entropy
}

// KLDivergence computes the Kullback-Leibler divergence KL(P||Q) in bits.
// Returns +Inf when any key carries P mass with zero Q mass; callers
// display the infinity rather than treating it as an error.
func KLDivergence(p, q Distribution) float64 {
	divergence := 0.0
	for key, pk := range p {
		if pk <= 0 {
			continue
		}
		qk := q[key]
		if qk == 0 {
			return math.Inf(1)
		}
		divergence += pk * math.Log2(pk/qk)
	}
	return divergence
}

// JensenShannonDivergence computes the symmetric JSD via the midpoint
// distribution M = (P+Q)/2 over the union of supports. Always finite:
// M carries mass wherever either input does.
func JensenShannonDivergence(p, q Distribution) float64 {
	midpoint := make(Distribution)
	for _, key := range SupportUnion(p, q) {
		midpoint[key] = (p[key] + q[key]) / 2
	}
	return 0.5*KLDivergence(p, midpoint) + 0.5*KLDivergence(q, midpoint)
}

// JensenShannonDistance is the square root of the JSD, a true metric
func JensenShannonDistance(p, q Distribution) float64 {
	return math.Sqrt(JensenShannonDivergence(p, q))
}

// HellingerDistance computes (1/sqrt2)*sqrt(sum (sqrt(p)-sqrt(q))^2) over
// the union of supports, treating missing keys as zero. Range [0,1].
func HellingerDistance(p, q Distribution) float64 {
	sum := 0.0
	for _, key := range SupportUnion(p, q) {
		diff := math.Sqrt(p[key]) - math.Sqrt(q[key])
		sum += diff * diff
	}
	return math.Sqrt(sum) / math.Sqrt2
}

// MeanSquaredError averages the squared probability differences over the
// union of supports.
func MeanSquaredError(p, q Distribution) float64 {
	keys := SupportUnion(p, q)
	if len(keys) == 0 {
		return 0
	}
	sum := 0.0
	for _, key := range keys {
		diff := p[key] - q[key]
		sum += diff * diff
	}
	return sum / float64(len(keys))
}

// MutualInformation computes I(X;Y) in bits from a two-variable joint
// distribution keyed by "x|y" composites, via the direct form
// sum p(x,y)*log2(p(x,y)/(p(x)p(y))).
func MutualInformation(joint Distribution) float64 {
	px := joint.Marginal(0)
	py := joint.Marginal(1)

	mi := 0.0
	for key, pxy := range joint {
		if pxy <= 0 {
			continue
		}
		states := variable.SplitKey(key)
		if len(states) != 2 {
			continue
		}
		denom := px[states[0]] * py[states[1]]
		if denom > 0 {
			mi += pxy * math.Log2(pxy/denom)
		}
	}
	// Float accumulation can dip a hair below zero for independent inputs.
	return math.Max(0, mi)
}
