package dist

import (
	"math"
	"sort"

	"stokhos/domain/core"
	"stokhos/domain/variable"
)

// Moments holds the type-aware summary of a marginal distribution. Mean
// and variance are populated only for numerical variables, the median
// for ordinal and numerical ones, modes always. Nil means "undefined for
// this measurement type", never "zero".
type Moments struct {
	Mean     *float64 `json:"mean"`
	Variance *float64 `json:"variance"`
	Median   *string  `json:"median"`
	Modes    []string `json:"modes"`
}

// CMFEntry is one step of a cumulative mass function in state order
type CMFEntry struct {
	State      string  `json:"state"`
	Cumulative float64 `json:"cumulative"`
}

// ComputeMoments summarizes a marginal distribution according to the
// variable's measurement type.
func ComputeMoments(marginal Distribution, info variable.Info) Moments {
	m := Moments{Modes: modes(marginal)}

	// Unordered categories have no median, mean, or variance.
	if info.Measurement == variable.Nominal {
		return m
	}

	ordered := OrderedStates(marginal, info)
	if median, ok := medianState(marginal, ordered); ok {
		m.Median = &median
	}

	if info.Measurement == variable.Ordinal {
		return m
	}

	// Weighted mean/variance over numerically parseable states only;
	// non-numeric keys are excluded from this step but nothing else.
	mean, variance, ok := weightedMoments(marginal)
	if ok {
		m.Mean = &mean
		m.Variance = &variance
	}
	return m
}

// CumulativeMass returns the CMF along the type-dependent state ordering,
// rounded to a fixed number of significant digits to suppress float
// noise. Nominal variables have no defined ordering and get nil.
func CumulativeMass(marginal Distribution, info variable.Info) []CMFEntry {
	if info.Measurement == variable.Nominal {
		return nil
	}
	ordered := OrderedStates(marginal, info)
	entries := make([]CMFEntry, 0, len(ordered))
	cumulative := 0.0
	for _, state := range ordered {
		cumulative += marginal[state]
		entries = append(entries, CMFEntry{
			State:      state,
			Cumulative: roundSignificant(cumulative, core.CMFSignificantDigits),
		})
	}
	return entries
}

// OrderedStates sorts the observed states of a marginal by the ordering
// the variable's measurement type implies: numeric ascending for
// numerical variables, declared state-space order for ordinal ones.
// States outside the declared order sort last, lexicographically among
// themselves; the same rule covers non-numeric states of a numerical
// variable.
func OrderedStates(marginal Distribution, info variable.Info) []string {
	states := marginal.SortedKeys()

	switch info.Measurement {
	case variable.Numerical:
		sort.SliceStable(states, func(i, j int) bool {
			vi, iOK := variable.AsNumber(states[i])
			vj, jOK := variable.AsNumber(states[j])
			if iOK && jOK {
				return vi < vj
			}
			if iOK != jOK {
				return iOK // parseable states first
			}
			return states[i] < states[j]
		})
	case variable.Ordinal:
		sort.SliceStable(states, func(i, j int) bool {
			ri := info.StateRank(states[i])
			rj := info.StateRank(states[j])
			if ri >= 0 && rj >= 0 {
				return ri < rj
			}
			if (ri >= 0) != (rj >= 0) {
				return ri >= 0 // declared states first
			}
			return states[i] < states[j]
		})
	}
	return states
}

// modes returns the state(s) carrying maximal probability, ties included
func modes(marginal Distribution) []string {
	best := math.Inf(-1)
	var result []string
	for _, state := range marginal.SortedKeys() {
		p := marginal[state]
		switch {
		case p > best:
			best = p
			result = []string{state}
		case p == best:
			result = append(result, state)
		}
	}
	return result
}

// medianState finds the first state whose cumulative probability reaches
// 0.5 along the given ordering.
func medianState(marginal Distribution, ordered []string) (string, bool) {
	cumulative := 0.0
	for _, state := range ordered {
		cumulative += marginal[state]
		if cumulative >= 0.5 {
			return state, true
		}
	}
	return "", false
}

// weightedMoments computes the probability-weighted mean and variance
// over states that parse as numbers.
func weightedMoments(marginal Distribution) (mean, variance float64, ok bool) {
	mass := 0.0
	for state, p := range marginal {
		if value, numeric := variable.AsNumber(state); numeric {
			mean += p * value
			mass += p
		}
	}
	if mass == 0 {
		return 0, 0, false
	}
	for state, p := range marginal {
		if value, numeric := variable.AsNumber(state); numeric {
			diff := value - mean
			variance += p * diff * diff
		}
	}
	return mean, variance, true
}

// roundSignificant rounds to the given number of significant digits
func roundSignificant(x float64, digits int) float64 {
	if x == 0 || math.IsInf(x, 0) || math.IsNaN(x) {
		return x
	}
	magnitude := math.Ceil(math.Log10(math.Abs(x)))
	power := float64(digits) - magnitude
	scale := math.Pow(10, power)
	return math.Round(x*scale) / scale
}
