package variable

import (
	"fmt"
	"strconv"
	"strings"

	"stokhos/domain/core"
)

// MeasurementType classifies how a variable's states may be ordered and
// aggregated. It is declared once up front (user confirmation step) and
// consumed by every downstream component as the single source of truth;
// no component re-infers types from the raw values.
type MeasurementType string

const (
	Numerical MeasurementType = "numerical"
	Ordinal   MeasurementType = "ordinal"
	Nominal   MeasurementType = "nominal"
)

// Valid reports whether the measurement type is one of the known kinds
func (m MeasurementType) Valid() bool {
	switch m {
	case Numerical, Ordinal, Nominal:
		return true
	}
	return false
}

// Info describes a single variable of a dataset: its name, the set of
// states it can take, and how those states are measured. State order
// matters only for ordinal variables.
type Info struct {
	Name        string          `json:"name"`
	StateSpace  []string        `json:"state_space"`
	Measurement MeasurementType `json:"measurement"`
}

// Validate checks the structural invariants of a variable declaration
func (v Info) Validate() error {
	if strings.TrimSpace(v.Name) == "" {
		return core.NewInputError("variable name cannot be empty")
	}
	if !v.Measurement.Valid() {
		return core.NewInputError(fmt.Sprintf("unknown measurement type %q for variable %s", v.Measurement, v.Name))
	}
	seen := make(map[string]bool, len(v.StateSpace))
	for _, s := range v.StateSpace {
		if seen[s] {
			return core.NewInputError(fmt.Sprintf("duplicate state %q in variable %s", s, v.Name))
		}
		seen[s] = true
	}
	return nil
}

// StateRank returns the position of a state in the declared state space,
// or -1 when the state is not declared.
func (v Info) StateRank(state string) int {
	for i, s := range v.StateSpace {
		if s == state {
			return i
		}
	}
	return -1
}

// IsNumeric reports whether a state parses as a number. Used only for
// numerical variables when computing weighted moments.
func IsNumeric(state string) bool {
	_, err := strconv.ParseFloat(state, 64)
	return err == nil
}

// AsNumber parses a state as a float64
func AsNumber(state string) (float64, bool) {
	f, err := strconv.ParseFloat(state, 64)
	return f, err == nil
}
