package engine

import (
	"stokhos/domain/dist"
	"stokhos/domain/variable"
)

// conditionalCache memoizes the ensemble's conditional distributions
// P(X_t | X_{t-w}..X_{t-1}) per (t, window-length) pair. It is owned by
// a single AnalyzeSelfDependence invocation: within a run the same
// conditional is never recomputed, and across runs nothing leaks.
type conditionalCache struct {
	traces  [][]string
	entries map[condKey]map[string]dist.Distribution
	initial dist.Distribution
}

type condKey struct {
	t      int
	window int
}

func newConditionalCache(traces [][]string) *conditionalCache {
	return &conditionalCache{
		traces:  traces,
		entries: make(map[condKey]map[string]dist.Distribution),
	}
}

// initialMarginal is the empirical distribution of the first time step
func (c *conditionalCache) initialMarginal() dist.Distribution {
	if c.initial != nil {
		return c.initial
	}
	observations := make([]string, 0, len(c.traces))
	for _, trace := range c.traces {
		if trace[0] != "" {
			observations = append(observations, trace[0])
		}
	}
	c.initial = dist.Normalize(dist.CountStates(observations))
	return c.initial
}

// conditional returns, for time index t and lookback length w, a map
// from each realized conditioning combination (composite key of the w
// states preceding t) to the normalized distribution of X_t given it.
// Traces with a missing value anywhere in the conditioning window or
// the target are skipped.
func (c *conditionalCache) conditional(t, w int) map[string]dist.Distribution {
	key := condKey{t: t, window: w}
	if cached, ok := c.entries[key]; ok {
		return cached
	}

	counts := make(map[string]dist.Distribution)
	for _, trace := range c.traces {
		if trace[t] == "" {
			continue
		}
		window := trace[t-w : t]
		if hasMissing(window) {
			continue
		}
		given := variable.JoinKey(window)
		if counts[given] == nil {
			counts[given] = make(dist.Distribution)
		}
		counts[given][trace[t]]++
	}

	normalized := make(map[string]dist.Distribution, len(counts))
	for given, c := range counts {
		normalized[given] = dist.Normalize(c)
	}
	c.entries[key] = normalized
	return normalized
}

func hasMissing(states []string) bool {
	for _, s := range states {
		if s == "" {
			return true
		}
	}
	return false
}
