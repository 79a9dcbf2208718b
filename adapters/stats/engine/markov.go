package engine

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"stokhos/domain/analysis"
	"stokhos/domain/core"
)

const (
	stationaryIterations = 1000
	stationaryTolerance  = 1e-10
)

// BuildTransitionModel derives the Markov view of a single ordered
// trace: state space, transition counts between consecutive positions,
// the row-normalized transition matrix, and a stationary distribution
// where one exists. Rows with no outgoing transitions stay all-zero
// rather than being re-normalized.
func BuildTransitionModel(trace []string) (*analysis.TransitionModel, error) {
	if len(trace) < 2 {
		return nil, core.NewInputError("trace needs at least two observations for transitions")
	}

	states := distinctSorted(trace)
	index := make(map[string]int, len(states))
	for i, s := range states {
		index[s] = i
	}

	n := len(states)
	counts := make([][]int, n)
	for i := range counts {
		counts[i] = make([]int, n)
	}
	for i := 0; i+1 < len(trace); i++ {
		from, fromOK := index[trace[i]]
		to, toOK := index[trace[i+1]]
		// Transitions through missing observations are not evidence.
		if !fromOK || !toOK {
			continue
		}
		counts[from][to]++
	}

	matrix := make([][]float64, n)
	for i, row := range counts {
		matrix[i] = make([]float64, n)
		total := 0
		for _, c := range row {
			total += c
		}
		if total == 0 {
			continue
		}
		for j, c := range row {
			matrix[i][j] = float64(c) / float64(total)
		}
	}

	return &analysis.TransitionModel{
		States:     states,
		Counts:     counts,
		Matrix:     matrix,
		Stationary: stationaryDistribution(matrix),
	}, nil
}

// stationaryDistribution searches for a fixed point pi = pi*P by power
// iteration from the uniform vector. Returns nil when iteration does not
// converge (e.g. periodic chains), which callers treat as "no stationary
// distribution found".
func stationaryDistribution(matrix [][]float64) []float64 {
	n := len(matrix)
	if n == 0 {
		return nil
	}

	flat := make([]float64, 0, n*n)
	for _, row := range matrix {
		flat = append(flat, row...)
	}
	p := mat.NewDense(n, n, flat)

	pi := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		pi.SetVec(i, 1.0/float64(n))
	}

	next := mat.NewVecDense(n, nil)
	for iter := 0; iter < stationaryIterations; iter++ {
		// pi_{k+1} = P^T pi_k
		next.MulVec(p.T(), pi)

		// Re-normalize to absorb mass lost to all-zero rows.
		total := mat.Sum(next)
		if total == 0 {
			return nil
		}
		next.ScaleVec(1/total, next)

		delta := 0.0
		for i := 0; i < n; i++ {
			delta += math.Abs(next.AtVec(i) - pi.AtVec(i))
		}
		pi.CopyVec(next)
		if delta < stationaryTolerance {
			result := make([]float64, n)
			for i := 0; i < n; i++ {
				result[i] = pi.AtVec(i)
			}
			if isFixedPoint(matrix, result) {
				return result
			}
			return nil
		}
	}
	return nil
}

// isFixedPoint verifies pi*P == pi within tolerance
func isFixedPoint(matrix [][]float64, pi []float64) bool {
	n := len(pi)
	for j := 0; j < n; j++ {
		next := 0.0
		for i := 0; i < n; i++ {
			next += pi[i] * matrix[i][j]
		}
		if math.Abs(next-pi[j]) > 1e-6 {
			return false
		}
	}
	return true
}

func distinctSorted(trace []string) []string {
	seen := make(map[string]bool, len(trace))
	states := make([]string, 0, len(trace))
	for _, s := range trace {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		states = append(states, s)
	}
	sort.Strings(states)
	return states
}
