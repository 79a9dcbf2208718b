package ports

import (
	"context"

	"stokhos/domain/core"
)

// RunRecord is a persisted analysis run: the serialized result plus the
// optional prose summary. Results are value objects; the record is a
// host-side convenience, never an engine dependency.
type RunRecord struct {
	ID         core.RunID     `json:"id"`
	Kind       string         `json:"kind"` // "distribution", "comparison", "self_dependence"
	ResultJSON []byte         `json:"result_json"`
	Summary    string         `json:"summary,omitempty"`
	CreatedAt  core.Timestamp `json:"created_at"`
}

// RunRepository persists completed analysis runs
type RunRepository interface {
	Save(ctx context.Context, record *RunRecord) error
	GetByID(ctx context.Context, id core.RunID) (*RunRecord, error)
	List(ctx context.Context, limit, offset int) ([]*RunRecord, error)
}
