package dist

import (
	"sort"

	"stokhos/domain/core"
	"stokhos/domain/variable"
)

// Distribution maps a composite state key (the |-joined tuple of variable
// states in fixed variable order) to a probability or, before
// normalization, a raw count. A distribution with no mass is the empty map.
type Distribution map[string]float64

// CountStates tallies raw observations into unnormalized counts
func CountStates(observations []string) Distribution {
	counts := make(Distribution, len(observations))
	for _, obs := range observations {
		counts[obs]++
	}
	return counts
}

// Normalize divides counts by their total. A zero total yields the empty
// distribution rather than an error: "no data" is a legitimate outcome.
func Normalize(counts Distribution) Distribution {
	total := counts.Sum()
	if total == 0 {
		return Distribution{}
	}
	normalized := make(Distribution, len(counts))
	for key, count := range counts {
		normalized[key] = count / total
	}
	return normalized
}

// Sum returns the total mass of the distribution
func (d Distribution) Sum() float64 {
	total := 0.0
	for _, v := range d {
		total += v
	}
	return total
}

// IsNormalized reports whether the mass sums to 1 within the
// normalization tolerance. The empty distribution is not normalized.
func (d Distribution) IsNormalized() bool {
	if len(d) == 0 {
		return false
	}
	diff := d.Sum() - 1.0
	return diff < core.NormalizationTolerance && diff > -core.NormalizationTolerance
}

// Marginal sums a joint distribution over all but one key position,
// producing the marginal distribution of the variable at that position.
func (d Distribution) Marginal(position int) Distribution {
	marginal := make(Distribution)
	for key, p := range d {
		states := variable.SplitKey(key)
		if position < 0 || position >= len(states) {
			continue
		}
		marginal[states[position]] += p
	}
	return marginal
}

// SupportUnion returns the sorted union of keys carried by either
// distribution. Sorting keeps iteration deterministic across runs.
func SupportUnion(p, q Distribution) []string {
	keys := make([]string, 0, len(p)+len(q))
	seen := make(map[string]bool, len(p)+len(q))
	for k := range p {
		seen[k] = true
		keys = append(keys, k)
	}
	for k := range q {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Clone returns an independent copy of the distribution
func (d Distribution) Clone() Distribution {
	c := make(Distribution, len(d))
	for k, v := range d {
		c[k] = v
	}
	return c
}

// SortedKeys returns the distribution's keys in lexicographic order
func (d Distribution) SortedKeys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
