package testkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetailRows_Deterministic(t *testing.T) {
	first := NewKit(7).RetailRows(50)
	second := NewKit(7).RetailRows(50)
	assert.Equal(t, first, second, "same seed, same dataset")

	other := NewKit(8).RetailRows(50)
	assert.NotEqual(t, first, other)
}

func TestRetailRows_MatchDeclaredVariables(t *testing.T) {
	vars := RetailVariables()
	rows := NewKit(1).RetailRows(100)
	require.Len(t, rows, 100)

	for _, row := range rows {
		require.Len(t, row, len(vars))
		for i, cell := range row {
			assert.Contains(t, vars[i].StateSpace, cell)
		}
	}
}

func TestMarkovEnsemble_Shape(t *testing.T) {
	states := []string{"x", "y", "z"}
	traces := NewKit(3).MarkovEnsemble(20, 5, states)
	require.Len(t, traces, 20)
	for _, trace := range traces {
		require.Len(t, trace, 5)
		for _, s := range trace {
			assert.Contains(t, states, s)
		}
	}
}

func TestPeriodicEnsemble_Cycles(t *testing.T) {
	states := []string{"x", "y", "z"}
	traces := NewKit(3).PeriodicEnsemble(10, 6, states)
	for _, trace := range traces {
		for i := 1; i < len(trace); i++ {
			prev := indexOf(states, trace[i-1])
			curr := indexOf(states, trace[i])
			assert.Equal(t, (prev+1)%len(states), curr, "strict cycling")
		}
	}
}

func indexOf(states []string, s string) int {
	for i, v := range states {
		if v == s {
			return i
		}
	}
	return -1
}
