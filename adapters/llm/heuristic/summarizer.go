package heuristic

import (
	"context"
	"fmt"
	"strings"

	"stokhos/ports"
)

// Summarizer is a deterministic, template-based prose generator. It is
// the guaranteed-available fallback behind the LLM summarizer: same
// interface, no external dependency, no surprises.
type Summarizer struct{}

// NewSummarizer creates a new heuristic summarizer
func NewSummarizer() *Summarizer {
	return &Summarizer{}
}

// Summarize implements ports.SummarizerPort
func (s *Summarizer) Summarize(_ context.Context, req ports.SummaryRequest) (string, error) {
	var parts []string

	if req.Empirical != nil {
		parts = append(parts, fmt.Sprintf(
			"The dataset covers %d variables over %d observations, with %d distinct joint outcomes observed.",
			len(req.Empirical.Variables), req.Empirical.SampleSize, len(req.Empirical.Joint)))
	}

	if req.Report != nil {
		included := 0
		excluded := 0
		for _, m := range req.Report.Models {
			if m.Excluded {
				excluded++
			} else {
				included++
			}
		}
		sentence := fmt.Sprintf("%d theoretical model(s) were compared against the empirical distribution", included)
		if excluded > 0 {
			sentence += fmt.Sprintf("; %d model(s) were excluded for failing validation", excluded)
		}
		sentence += "."
		if req.Report.BestModel != "" {
			sentence += fmt.Sprintf(" The best overall fit by metric wins is %q.", req.Report.BestModel)
		}
		parts = append(parts, sentence)
	}

	if req.SelfDependence != nil {
		parts = append(parts, req.SelfDependence.Conclusion)
	}

	if len(parts) == 0 {
		return "No analysis results were provided to summarize.", nil
	}
	return strings.Join(parts, " "), nil
}
