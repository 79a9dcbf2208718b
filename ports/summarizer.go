package ports

import (
	"context"

	"stokhos/domain/analysis"
)

// SummaryRequest carries the engine's structured output to a prose
// generator. Every field is optional; the generator summarizes whatever
// is present.
type SummaryRequest struct {
	Empirical      *analysis.DistributionAnalysis  `json:"empirical,omitempty"`
	Report         *analysis.ComparisonReport      `json:"report,omitempty"`
	SelfDependence *analysis.SelfDependenceAnalysis `json:"self_dependence,omitempty"`
}

// SummarizerPort turns numeric analysis results into natural-language
// prose. The engine must never depend on this service being available:
// its numeric results are complete and self-describing on their own.
type SummarizerPort interface {
	Summarize(ctx context.Context, req SummaryRequest) (string, error)
}
