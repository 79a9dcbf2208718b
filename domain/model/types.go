package model

import (
	"encoding/json"
	"fmt"
	"math"

	"stokhos/domain/core"
	"stokhos/domain/dist"
	"stokhos/domain/variable"
)

// Entry assigns a probability to one full combination of variable states
type Entry struct {
	States      []string `json:"states"`
	Probability float64  `json:"probability"`
}

// ProbabilityTable is the tagged, validated-on-construction form of a
// user-declared probability model. It replaces free-form JSON blobs: the
// structure is checked when parsed, not defensively at every consumer.
type ProbabilityTable struct {
	Entries []Entry `json:"entries"`
}

// ParseProbabilityTable decodes and structurally validates a table.
// Malformed JSON or negative probabilities fail here, once.
func ParseProbabilityTable(raw []byte) (ProbabilityTable, error) {
	var table ProbabilityTable
	if err := json.Unmarshal(raw, &table); err != nil {
		return ProbabilityTable{}, fmt.Errorf("malformed probability table: %w", err)
	}
	for i, entry := range table.Entries {
		if len(entry.States) == 0 {
			return ProbabilityTable{}, core.NewInputError(fmt.Sprintf("probability table entry %d has no states", i))
		}
		if entry.Probability < 0 || entry.Probability > 1 || math.IsNaN(entry.Probability) {
			return ProbabilityTable{}, core.NewInputError(fmt.Sprintf("probability table entry %d has probability %v outside [0,1]", i, entry.Probability))
		}
	}
	return table, nil
}

// Distribution flattens the table into the engine's Distribution shape
func (t ProbabilityTable) Distribution() dist.Distribution {
	d := make(dist.Distribution, len(t.Entries))
	for _, entry := range t.Entries {
		d[variable.JoinKey(entry.States)] += entry.Probability
	}
	return d
}

// Sum returns the table's total declared mass
func (t ProbabilityTable) Sum() float64 {
	total := 0.0
	for _, entry := range t.Entries {
		total += entry.Probability
	}
	return total
}

// Def is a theoretical probability model declared by the user. Created
// empty, populated interactively, and re-validated whenever its
// probabilities change. ValidationError is a recorded, non-fatal state:
// an invalid model is excluded from comparison but never aborts the
// analysis of its siblings.
type Def struct {
	ID              core.ModelID     `json:"id"`
	Name            string           `json:"name"`
	Variables       []variable.Info  `json:"variables"`
	Table           ProbabilityTable `json:"table"`
	ValidationError string           `json:"validation_error,omitempty"`
}

// NewDef creates an empty model over the given variables
func NewDef(name string, vars []variable.Info) *Def {
	return &Def{
		ID:        core.ModelID(core.NewID()),
		Name:      name,
		Variables: vars,
	}
}

// Validate re-checks the model and records the outcome on the model
// itself. Returns the validation error, if any, for callers that want
// to branch immediately.
func (m *Def) Validate() error {
	m.ValidationError = ""
	for _, v := range m.Variables {
		if err := v.Validate(); err != nil {
			m.ValidationError = err.Error()
			return fmt.Errorf("%w: %s", core.ErrModelInvalid, m.ValidationError)
		}
	}
	for i, entry := range m.Table.Entries {
		if len(entry.States) != len(m.Variables) {
			m.ValidationError = fmt.Sprintf("entry %d has %d states, expected %d", i, len(entry.States), len(m.Variables))
			return fmt.Errorf("%w: %s", core.ErrModelInvalid, m.ValidationError)
		}
	}
	sum := m.Table.Sum()
	if math.Abs(sum-1.0) > core.ModelSumTolerance {
		m.ValidationError = fmt.Sprintf("probabilities sum to %.6f, expected 1", sum)
		return fmt.Errorf("%w: %s", core.ErrModelInvalid, m.ValidationError)
	}
	return nil
}

// IsValid reports whether the model passed its last validation
func (m *Def) IsValid() bool {
	return m.ValidationError == ""
}

// ResetProbabilities discards the table and adopts a new variable set.
// Required whenever the underlying dataset's variables change, since
// every existing composite key becomes invalid.
func (m *Def) ResetProbabilities(vars []variable.Info) {
	m.Variables = vars
	m.Table = ProbabilityTable{}
	m.ValidationError = ""
}
