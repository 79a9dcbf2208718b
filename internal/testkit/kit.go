package testkit

import (
	"math/rand"

	"stokhos/domain/variable"
)

// Kit generates deterministic synthetic datasets for tests and demos.
// Everything flows from the seeded generator; the same seed always
// produces the same dataset.
type Kit struct {
	rng *rand.Rand
}

// NewKit creates a test kit with a fixed seed
func NewKit(seed int64) *Kit {
	return &Kit{rng: rand.New(rand.NewSource(seed))}
}

// RetailVariables declares the variable set matching RetailRows
func RetailVariables() []variable.Info {
	return []variable.Info{
		{Name: "category", StateSpace: []string{"A", "B", "C"}, Measurement: variable.Nominal},
		{Name: "rating", StateSpace: []string{"low", "mid", "high"}, Measurement: variable.Ordinal},
		{Name: "units", StateSpace: []string{"1", "2", "3"}, Measurement: variable.Numerical},
	}
}

// RetailRows generates n cross-sectional observations over the
// RetailVariables set, with mild correlation between category and
// rating so association measures have something to find.
func (k *Kit) RetailRows(n int) [][]string {
	categories := []string{"A", "B", "C"}
	ratings := []string{"low", "mid", "high"}
	units := []string{"1", "2", "3"}

	rows := make([][]string, n)
	for i := range rows {
		c := k.rng.Intn(len(categories))
		// Ratings lean toward the category index, off by one step
		// a quarter of the time.
		r := c
		if k.rng.Float64() < 0.25 {
			r = k.rng.Intn(len(ratings))
		}
		rows[i] = []string{categories[c], ratings[r], units[k.rng.Intn(len(units))]}
	}
	return rows
}

// MarkovEnsemble generates traces from a genuine first-order chain over
// stateSpace: the next state depends on the current one and nothing
// older. An order analysis should find the order-1 reconstruction close
// to the full-past joint.
func (k *Kit) MarkovEnsemble(traces, steps int, stateSpace []string) [][]string {
	n := len(stateSpace)
	// Row-stochastic matrix biased toward staying put.
	transition := make([][]float64, n)
	for i := range transition {
		transition[i] = make([]float64, n)
		for j := range transition[i] {
			if i == j {
				transition[i][j] = 0.6
			} else {
				transition[i][j] = 0.4 / float64(n-1)
			}
		}
	}

	out := make([][]string, traces)
	for t := range out {
		trace := make([]string, steps)
		current := k.rng.Intn(n)
		trace[0] = stateSpace[current]
		for s := 1; s < steps; s++ {
			current = k.sample(transition[current])
			trace[s] = stateSpace[current]
		}
		out[t] = trace
	}
	return out
}

// PeriodicEnsemble generates traces that cycle deterministically through
// the state space from a random phase. The long-range structure defeats
// any single stationary description and exercises the non-convergent
// paths of transition analysis.
func (k *Kit) PeriodicEnsemble(traces, steps int, stateSpace []string) [][]string {
	n := len(stateSpace)
	out := make([][]string, traces)
	for t := range out {
		phase := k.rng.Intn(n)
		trace := make([]string, steps)
		for s := range trace {
			trace[s] = stateSpace[(phase+s)%n]
		}
		out[t] = trace
	}
	return out
}

// sample draws an index from a row of probabilities
func (k *Kit) sample(probs []float64) int {
	r := k.rng.Float64()
	cum := 0.0
	for i, p := range probs {
		cum += p
		if r < cum {
			return i
		}
	}
	return len(probs) - 1
}
