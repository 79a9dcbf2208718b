package app

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"stokhos/adapters/stats/engine"
	"stokhos/domain/analysis"
	"stokhos/domain/core"
	"stokhos/domain/dist"
	"stokhos/domain/model"
	"stokhos/domain/variable"
	"stokhos/internal"
	"stokhos/ports"
)

// AnalysisService orchestrates the statistical engine behind the HTTP
// and CLI surfaces: it runs analyses, optionally generates prose
// summaries, and optionally persists completed runs. The engine itself
// stays synchronous and dependency-free; concurrency and side effects
// live here.
type AnalysisService struct {
	logger     *internal.Logger
	summarizer ports.SummarizerPort // nil disables summaries
	runs       ports.RunRepository  // nil disables persistence
	selfDepCfg engine.SelfDependenceConfig
}

// NewAnalysisService creates an analysis service. Summarizer and run
// repository are optional collaborators.
func NewAnalysisService(logger *internal.Logger, summarizer ports.SummarizerPort, runs ports.RunRepository, selfDepCfg engine.SelfDependenceConfig) *AnalysisService {
	return &AnalysisService{
		logger:     logger,
		summarizer: summarizer,
		runs:       runs,
		selfDepCfg: selfDepCfg,
	}
}

// DatasetRequest describes an empirical distribution analysis
type DatasetRequest struct {
	Rows      [][]string      `json:"rows"`
	Variables []variable.Info `json:"variables"`
	Mode      analysis.Mode   `json:"mode"`
	Summarize bool            `json:"summarize,omitempty"`
}

// Association holds the correlation measures between a pair of
// numerical variables. Nil fields mean "not computable" (constant
// series), which is distinct from a computed zero.
type Association struct {
	X                   string   `json:"x"`
	Y                   string   `json:"y"`
	Pearson             *float64 `json:"pearson"`
	DistanceCorrelation *float64 `json:"distance_correlation"`
}

// DatasetResult is the outcome of an empirical distribution analysis
type DatasetResult struct {
	RunID             core.RunID                     `json:"run_id"`
	Analysis          *analysis.DistributionAnalysis `json:"analysis"`
	JointEntropy      float64                        `json:"joint_entropy"`
	MutualInformation *analysis.JSONFloat            `json:"mutual_information,omitempty"`
	Associations      []Association                  `json:"associations,omitempty"`
	Summary           string                         `json:"summary,omitempty"`
}

// AnalyzeDataset builds the empirical joint and marginal distributions
// with type-aware moments. For exactly two variables it also reports the
// mutual information of the joint.
func (s *AnalysisService) AnalyzeDataset(ctx context.Context, req DatasetRequest) (*DatasetResult, error) {
	empirical, err := engine.BuildEmpirical(req.Rows, req.Variables, req.Mode)
	if err != nil {
		return nil, err
	}

	result := &DatasetResult{
		RunID:        core.RunID(core.NewID()),
		Analysis:     empirical,
		JointEntropy: dist.Entropy(empirical.Joint),
	}
	if len(req.Variables) == 2 {
		mi := analysis.JSONFloat(dist.MutualInformation(empirical.Joint))
		result.MutualInformation = &mi
	}
	if req.Mode == analysis.ModeCrossSectional {
		result.Associations = associations(req.Rows, req.Variables)
	}

	if req.Summarize {
		result.Summary = s.summarize(ctx, ports.SummaryRequest{Empirical: empirical})
	}
	s.persist(ctx, result.RunID, "distribution", result, result.Summary)
	return result, nil
}

// ComparisonRequest describes a model-versus-data comparison
type ComparisonRequest struct {
	Rows      [][]string      `json:"rows"`
	Variables []variable.Info `json:"variables"`
	Mode      analysis.Mode   `json:"mode"`
	Models    []*model.Def    `json:"models"`
	Summarize bool            `json:"summarize,omitempty"`
}

// ComparisonResult is the outcome of a model comparison
type ComparisonResult struct {
	RunID     core.RunID                     `json:"run_id"`
	Empirical *analysis.DistributionAnalysis `json:"empirical"`
	Report    *analysis.ComparisonReport     `json:"report"`
	Summary   string                         `json:"summary,omitempty"`
}

// CompareModels evaluates every candidate model concurrently, then ranks
// the valid ones against the empirical distribution. A model that fails
// validation is excluded from the ranking, never fatal to it.
func (s *AnalysisService) CompareModels(ctx context.Context, req ComparisonRequest) (*ComparisonResult, error) {
	if len(req.Models) == 0 {
		return nil, core.NewInputError("no models to compare")
	}

	empirical, err := engine.BuildEmpirical(req.Rows, req.Variables, req.Mode)
	if err != nil {
		return nil, err
	}

	// Model evaluations are independent; run them in parallel. Slots are
	// pre-assigned so ranking order matches request order.
	evaluations := make([]*analysis.DistributionAnalysis, len(req.Models))
	g, gctx := errgroup.WithContext(ctx)
	for i, m := range req.Models {
		i, m := i, m
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ma, err := engine.EvaluateModel(m)
			if err != nil {
				if core.IsModelInvalid(err) {
					return nil // recorded on the model, excluded below
				}
				return fmt.Errorf("model %q: %w", m.Name, err)
			}
			evaluations[i] = ma
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	evaluated := make([]engine.EvaluatedModel, 0, len(req.Models))
	excluded := make([]*model.Def, 0)
	for i, m := range req.Models {
		if evaluations[i] == nil {
			excluded = append(excluded, m)
			continue
		}
		evaluated = append(evaluated, engine.EvaluatedModel{Def: m, Analysis: evaluations[i]})
	}
	report := engine.RankModels(empirical, evaluated, excluded)

	result := &ComparisonResult{
		RunID:     core.RunID(core.NewID()),
		Empirical: empirical,
		Report:    report,
	}
	if req.Summarize {
		result.Summary = s.summarize(ctx, ports.SummaryRequest{Empirical: empirical, Report: report})
	}
	s.persist(ctx, result.RunID, "comparison", result, result.Summary)
	return result, nil
}

// SelfDependenceRequest describes a memory-order analysis of an ensemble
type SelfDependenceRequest struct {
	Traces     [][]string `json:"traces"`
	StateSpace []string   `json:"state_space"`
	TimeLabels []string   `json:"time_labels,omitempty"`
	Summarize  bool       `json:"summarize,omitempty"`
}

// SelfDependenceResult is the outcome of a memory-order analysis
type SelfDependenceResult struct {
	RunID    core.RunID                       `json:"run_id"`
	Analysis *analysis.SelfDependenceAnalysis `json:"analysis"`
	Summary  string                           `json:"summary,omitempty"`
}

// EstimateSelfDependenceCost pre-flights an order analysis: the number of
// joint states it would enumerate and whether that fits the configured
// budget. Infeasible requests can be rejected before any data is loaded.
func (s *AnalysisService) EstimateSelfDependenceCost(stateCount, timeSteps int) (float64, bool) {
	budget := s.selfDepCfg.MaxJointStates
	if budget <= 0 {
		budget = engine.DefaultMaxJointStates
	}
	cost := engine.EstimateJointStates(stateCount, timeSteps)
	return cost, cost <= float64(budget)
}

// AnalyzeSelfDependence runs the memory-order analysis under the
// configured resource budget.
func (s *AnalysisService) AnalyzeSelfDependence(ctx context.Context, req SelfDependenceRequest) (*SelfDependenceResult, error) {
	sd, err := engine.AnalyzeSelfDependence(req.Traces, req.StateSpace, req.TimeLabels, s.selfDepCfg)
	if err != nil {
		return nil, err
	}

	result := &SelfDependenceResult{
		RunID:    core.RunID(core.NewID()),
		Analysis: sd,
	}
	if req.Summarize {
		result.Summary = s.summarize(ctx, ports.SummaryRequest{SelfDependence: sd})
	}
	s.persist(ctx, result.RunID, "self_dependence", result, result.Summary)
	return result, nil
}

// AnalyzeTransitions derives the first-order Markov view of one trace
func (s *AnalysisService) AnalyzeTransitions(trace []string) (*analysis.TransitionModel, error) {
	return engine.BuildTransitionModel(trace)
}

// GetRun retrieves a persisted run, when persistence is configured
func (s *AnalysisService) GetRun(ctx context.Context, id core.RunID) (*ports.RunRecord, error) {
	if s.runs == nil {
		return nil, core.ErrRunNotFound
	}
	return s.runs.GetByID(ctx, id)
}

// ListRuns lists persisted runs, when persistence is configured
func (s *AnalysisService) ListRuns(ctx context.Context, limit, offset int) ([]*ports.RunRecord, error) {
	if s.runs == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	return s.runs.List(ctx, limit, offset)
}

// associations computes Pearson and distance correlation for every pair
// of numerical variables, over the rows where both cells parse as
// numbers. Only cross-sectional data qualifies: time-series rows are
// consecutive steps of one trace, not paired samples.
func associations(rows [][]string, vars []variable.Info) []Association {
	var result []Association
	for i := range vars {
		if vars[i].Measurement != variable.Numerical {
			continue
		}
		for j := i + 1; j < len(vars); j++ {
			if vars[j].Measurement != variable.Numerical {
				continue
			}
			xs, ys := pairedColumns(rows, i, j)
			assoc := Association{X: vars[i].Name, Y: vars[j].Name}
			if r, ok := dist.PearsonCorrelation(xs, ys); ok {
				assoc.Pearson = &r
			}
			if d, ok := dist.DistanceCorrelation(xs, ys); ok {
				assoc.DistanceCorrelation = &d
			}
			result = append(result, assoc)
		}
	}
	return result
}

// pairedColumns extracts two columns as parallel numeric series,
// dropping rows where either cell fails to parse.
func pairedColumns(rows [][]string, i, j int) (xs, ys []float64) {
	for _, row := range rows {
		x, xOK := variable.AsNumber(row[i])
		y, yOK := variable.AsNumber(row[j])
		if !xOK || !yOK {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	return xs, ys
}

// summarize asks the configured summarizer for prose. Summary failures
// degrade to an empty summary; the numeric result always stands alone.
func (s *AnalysisService) summarize(ctx context.Context, req ports.SummaryRequest) string {
	if s.summarizer == nil {
		return ""
	}
	summary, err := s.summarizer.Summarize(ctx, req)
	if err != nil {
		s.logger.Warn("summary generation failed: %v", err)
		return ""
	}
	return summary
}

// persist saves a completed run when a repository is configured. Storage
// failures are logged, never surfaced; persistence is best-effort.
func (s *AnalysisService) persist(ctx context.Context, id core.RunID, kind string, result interface{}, summary string) {
	if s.runs == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn("failed to marshal %s run %s: %v", kind, id, err)
		return
	}
	record := &ports.RunRecord{
		ID:         id,
		Kind:       kind,
		ResultJSON: raw,
		Summary:    summary,
		CreatedAt:  core.Now(),
	}
	if err := s.runs.Save(ctx, record); err != nil {
		s.logger.Warn("failed to persist %s run %s: %v", kind, id, err)
	}
}
