package engine

import (
	"fmt"
	"math"
	"sort"

	"stokhos/domain/analysis"
	"stokhos/domain/core"
	"stokhos/domain/dist"
	"stokhos/domain/variable"
)

// MarkovianThreshold is the fixed distance bound under which the order-1
// reconstruction is declared a good fit. It is a heuristic carried over
// from the reference behavior, not a calibrated statistical test, and
// must not be presented as one.
const MarkovianThreshold = 0.5

// DefaultMaxJointStates bounds the |S|^T enumeration of the order
// analysis. The algorithm is exponential in the trace length; it targets
// state spaces and trace lengths in the single digits.
const DefaultMaxJointStates = 1 << 20

// SelfDependenceConfig tunes the order-analysis resource guard
type SelfDependenceConfig struct {
	// MaxJointStates rejects analyses whose |S|^T product exceeds the
	// budget before any work is committed. Zero means the default.
	MaxJointStates int
}

// EstimateJointStates returns the |S|^T enumeration cost of an order
// analysis, exposed so callers can pre-flight infeasible requests.
func EstimateJointStates(stateCount, timeSteps int) float64 {
	return math.Pow(float64(stateCount), float64(timeSteps))
}

// AnalyzeSelfDependence determines the memory order of an ensemble
// process. For every candidate order k from 1 to T-2 it reconstructs the
// joint distribution over all T time points by chain-rule composition of
// order-limited conditional distributions, then measures the Hellinger
// and Jensen-Shannon distances to the unrestricted (order T-1, full
// past) reconstruction.
//
// The conditional-distribution cache lives and dies inside this call:
// two runs on identical input are fully independent and yield identical
// results.
func AnalyzeSelfDependence(traces [][]string, stateSpace []string, timeLabels []string, cfg SelfDependenceConfig) (*analysis.SelfDependenceAnalysis, error) {
	if len(traces) == 0 {
		return nil, core.NewInputError("ensemble has no traces")
	}
	if len(stateSpace) == 0 {
		return nil, core.ErrEmptyStateSpace
	}
	steps := len(traces[0])
	for i, trace := range traces {
		if len(trace) != steps {
			return nil, fmt.Errorf("%w: trace %d has %d steps, expected %d", core.ErrTraceLength, i, len(trace), steps)
		}
	}
	if steps < 3 {
		return nil, core.NewInputError("order analysis needs at least 3 time steps (no candidate order exists below the full past)")
	}
	if len(timeLabels) > 0 && len(timeLabels) != steps {
		return nil, core.NewInputError(fmt.Sprintf("got %d time labels for %d time steps", len(timeLabels), steps))
	}

	budget := cfg.MaxJointStates
	if budget <= 0 {
		budget = DefaultMaxJointStates
	}
	if EstimateJointStates(len(stateSpace), steps) > float64(budget) {
		return nil, core.NewResourceError(len(stateSpace), steps, budget)
	}

	// Fresh cache per run. Stale cross-run reuse would silently answer
	// for a different dataset.
	cache := newConditionalCache(traces)

	result := &analysis.SelfDependenceAnalysis{
		JointByOrder: make(map[int]dist.Distribution, steps-1),
	}

	// The unrestricted reconstruction conditions every step on its full
	// past; it is the empirical ground truth the bounded orders chase.
	fullPast := steps - 1
	reference := reconstructJoint(cache, fullPast, steps, stateSpace)
	result.JointByOrder[fullPast] = reference

	for order := 1; order <= steps-2; order++ {
		joint := reconstructJoint(cache, order, steps, stateSpace)
		result.JointByOrder[order] = joint
		result.Orders = append(result.Orders, analysis.OrderResult{
			Order:             order,
			HellingerDistance: dist.HellingerDistance(joint, reference),
			JensenShannon:     dist.JensenShannonDistance(joint, reference),
		})
		result.ConditionalTables = append(result.ConditionalTables, conditionalTables(cache, order, steps, timeLabels)...)
	}

	result.Conclusion = concludeFromFirstOrder(result.Orders)
	return result, nil
}

// reconstructJoint enumerates the Cartesian product of the state space
// over all time positions and assigns each sequence the chain-rule
// product of its order-limited conditionals, starting from the marginal
// of the first step. Zero factors short-circuit immediately, so only the
// support of the data is ever stored despite the combinatorial product.
func reconstructJoint(cache *conditionalCache, order, steps int, stateSpace []string) dist.Distribution {
	joint := make(dist.Distribution)
	initial := cache.initialMarginal()
	sequence := make([]string, steps)

	var walk func(pos int, prob float64)
	walk = func(pos int, prob float64) {
		if pos == steps {
			joint[variable.JoinKey(sequence)] = prob
			return
		}
		for _, state := range stateSpace {
			var p float64
			if pos == 0 {
				p = initial[state]
			} else {
				window := pos - order
				if window < 0 {
					window = 0
				}
				p = cache.conditional(pos, pos-window)[variable.JoinKey(sequence[window:pos])][state]
			}
			if p == 0 {
				continue
			}
			sequence[pos] = state
			walk(pos+1, prob*p)
		}
	}
	walk(0, 1)
	return joint
}

// conditionalTables materializes the one-step transition structure for
// one order over the lookback combinations actually observed. Built
// from the cache, never from the reconstructed joint, so display never
// pays the enumeration cost.
func conditionalTables(cache *conditionalCache, order, steps int, timeLabels []string) []analysis.ConditionalTable {
	tables := make([]analysis.ConditionalTable, 0, steps-1)
	for t := 1; t < steps; t++ {
		window := t - order
		if window < 0 {
			window = 0
		}
		byGiven := cache.conditional(t, t-window)

		givens := make([]string, 0, len(byGiven))
		for g := range byGiven {
			givens = append(givens, g)
		}
		sort.Strings(givens)

		table := analysis.ConditionalTable{Order: order, Time: t}
		if len(timeLabels) > 0 {
			table.TimeLabel = timeLabels[t]
		}
		for _, g := range givens {
			table.Rows = append(table.Rows, analysis.ConditionalRow{
				Given: variable.SplitKey(g),
				Next:  byGiven[g].Clone(),
			})
		}
		tables = append(tables, table)
	}
	return tables
}

// concludeFromFirstOrder renders the fixed-threshold verdict from the
// order-1 distances alone.
func concludeFromFirstOrder(orders []analysis.OrderResult) string {
	if len(orders) == 0 {
		return "Not enough candidate orders to draw a conclusion."
	}
	first := orders[0]
	if first.HellingerDistance <= MarkovianThreshold && first.JensenShannon <= MarkovianThreshold {
		return fmt.Sprintf(
			"The order-1 reconstruction closely matches the full-past joint distribution "+
				"(Hellinger %.4f, Jensen-Shannon %.4f, both within %.1f). The process is "+
				"consistent with a first-order Markov process: the next state depends only on "+
				"the current one. Note this fixed threshold is a heuristic, not a significance test.",
			first.HellingerDistance, first.JensenShannon, MarkovianThreshold)
	}
	return fmt.Sprintf(
		"The order-1 reconstruction departs from the full-past joint distribution "+
			"(Hellinger %.4f, Jensen-Shannon %.4f, threshold %.1f). The process shows memory "+
			"beyond a single step: earlier states still carry information about the next one. "+
			"Note this fixed threshold is a heuristic, not a significance test.",
		first.HellingerDistance, first.JensenShannon, MarkovianThreshold)
}
