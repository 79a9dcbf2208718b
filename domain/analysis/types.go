package analysis

import (
	"stokhos/domain/core"
	"stokhos/domain/dist"
	"stokhos/domain/variable"
)

// Mode selects how tabular rows are interpreted
type Mode string

const (
	// ModeCrossSectional treats each row as an independent joint sample.
	ModeCrossSectional Mode = "cross_sectional"
	// ModeTimeSeries treats rows as consecutive time steps of one trace.
	// Marginals are then derived per column rather than from the joint,
	// because marginalizing the joint would conflate different times.
	ModeTimeSeries Mode = "time_series"
)

// Valid reports whether the mode is a known analysis mode
func (m Mode) Valid() bool {
	return m == ModeCrossSectional || m == ModeTimeSeries
}

// VariableSummary bundles a variable's marginal with its type-aware
// summary statistics.
type VariableSummary struct {
	Variable variable.Info     `json:"variable"`
	Marginal dist.Distribution `json:"marginal"`
	Moments  dist.Moments      `json:"moments"`
	CMF      []dist.CMFEntry   `json:"cmf,omitempty"`
}

// DistributionAnalysis is the common output shape for both empirical
// datasets and theoretical models, so comparison is format-agnostic.
type DistributionAnalysis struct {
	Mode       Mode              `json:"mode"`
	Variables  []variable.Info   `json:"variables"`
	Joint      dist.Distribution `json:"joint"`
	Summaries  []VariableSummary `json:"summaries"`
	SampleSize int               `json:"sample_size"`
}

// Metric names used in model comparison
const (
	MetricHellinger     = "hellinger_distance"
	MetricJensenShannon = "jensen_shannon_distance"
	MetricMSE           = "mean_squared_error"
)

// ComparisonMetric scores one model under one metric. IsWinner is
// relative to the surrounding model set, not an absolute property.
type ComparisonMetric struct {
	Name     string    `json:"name"`
	Value    JSONFloat `json:"value"`
	IsWinner bool      `json:"is_winner"`
}

// ModelComparison is one model's scorecard. Excluded models carry the
// validation error that disqualified them and an empty metric list.
type ModelComparison struct {
	ModelID         core.ModelID       `json:"model_id"`
	ModelName       string             `json:"model_name"`
	Metrics         []ComparisonMetric `json:"metrics,omitempty"`
	Wins            int                `json:"wins"`
	Excluded        bool               `json:"excluded"`
	ExclusionReason string             `json:"exclusion_reason,omitempty"`
}

// ComparisonReport ranks a set of models against one empirical dataset
type ComparisonReport struct {
	Models    []ModelComparison `json:"models"`
	BestModel string            `json:"best_model,omitempty"`
}

// TransitionModel is the Markov view of a single ordered trace
type TransitionModel struct {
	States []string `json:"states"`
	// Counts[i][j] tallies observed transitions from state i to state j.
	Counts [][]int `json:"counts"`
	// Matrix is the row-normalized transition matrix. Rows with no
	// outgoing transitions stay all-zero.
	Matrix [][]float64 `json:"matrix"`
	// Stationary is a fixed point of Matrix when one was found, else nil.
	Stationary []float64 `json:"stationary,omitempty"`
}

// OrderResult measures how far the order-k joint reconstruction sits
// from the full-past reference distribution.
type OrderResult struct {
	Order             int     `json:"order"`
	HellingerDistance float64 `json:"hellinger_distance"`
	JensenShannon     float64 `json:"jensen_shannon_distance"`
}

// ConditionalRow is one realized conditioning combination and the
// distribution of the next state given it.
type ConditionalRow struct {
	Given []string          `json:"given"`
	Next  dist.Distribution `json:"next"`
}

// ConditionalTable materializes, for one order and one time index, the
// transition structure over the lookback combinations actually observed.
// Built independently of the joint reconstruction so that displaying the
// one-step structure never pays the combinatorial enumeration cost.
type ConditionalTable struct {
	Order     int              `json:"order"`
	Time      int              `json:"time"`
	TimeLabel string           `json:"time_label,omitempty"`
	Rows      []ConditionalRow `json:"rows"`
}

// SelfDependenceAnalysis is the full output of the memory-order engine
type SelfDependenceAnalysis struct {
	Orders            []OrderResult             `json:"orders"`
	Conclusion        string                    `json:"conclusion"`
	ConditionalTables []ConditionalTable        `json:"conditional_tables"`
	JointByOrder      map[int]dist.Distribution `json:"joint_by_order"`
}
