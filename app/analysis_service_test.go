package app

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stokhos/adapters/stats/engine"
	"stokhos/domain/analysis"
	"stokhos/domain/core"
	"stokhos/domain/model"
	"stokhos/domain/variable"
	"stokhos/internal"
	"stokhos/ports"
)

// memoryRunRepository is an in-memory RunRepository for tests
type memoryRunRepository struct {
	mu      sync.Mutex
	records []*ports.RunRecord
}

func (r *memoryRunRepository) Save(_ context.Context, record *ports.RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func (r *memoryRunRepository) GetByID(_ context.Context, id core.RunID) (*ports.RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.ID == id {
			return record, nil
		}
	}
	return nil, core.ErrRunNotFound
}

func (r *memoryRunRepository) List(_ context.Context, limit, offset int) ([]*ports.RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if offset >= len(r.records) {
		return nil, nil
	}
	end := offset + limit
	if end > len(r.records) {
		end = len(r.records)
	}
	return r.records[offset:end], nil
}

// stubSummarizer records requests and returns a fixed summary
type stubSummarizer struct {
	requests []ports.SummaryRequest
	err      error
}

func (s *stubSummarizer) Summarize(_ context.Context, req ports.SummaryRequest) (string, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return "", s.err
	}
	return "stub summary", nil
}

func newTestService(summarizer ports.SummarizerPort, runs ports.RunRepository) *AnalysisService {
	return NewAnalysisService(internal.NewLogger(internal.LogLevelError), summarizer, runs, engine.SelfDependenceConfig{})
}

func pairVars() []variable.Info {
	return []variable.Info{
		{Name: "category", StateSpace: []string{"A", "B"}, Measurement: variable.Nominal},
		{Name: "units", StateSpace: []string{"1", "2"}, Measurement: variable.Numerical},
	}
}

func pairRows() [][]string {
	return [][]string{{"A", "1"}, {"A", "2"}, {"B", "1"}, {"B", "2"}}
}

func TestAnalyzeDataset_WithSummaryAndPersistence(t *testing.T) {
	summarizer := &stubSummarizer{}
	repo := &memoryRunRepository{}
	svc := newTestService(summarizer, repo)

	result, err := svc.AnalyzeDataset(context.Background(), DatasetRequest{
		Rows:      pairRows(),
		Variables: pairVars(),
		Mode:      analysis.ModeCrossSectional,
		Summarize: true,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "stub summary", result.Summary)
	require.NotNil(t, result.MutualInformation, "two variables yield a mutual information figure")
	assert.InDelta(t, 0.0, float64(*result.MutualInformation), 1e-9, "independent uniform pair")

	require.Len(t, repo.records, 1)
	assert.Equal(t, "distribution", repo.records[0].Kind)
	assert.Equal(t, "stub summary", repo.records[0].Summary)
	assert.NotEmpty(t, repo.records[0].ResultJSON)
}

func TestAnalyzeDataset_AssociationsForNumericalPairs(t *testing.T) {
	vars := []variable.Info{
		{Name: "x", StateSpace: []string{"1", "2", "3"}, Measurement: variable.Numerical},
		{Name: "y", StateSpace: []string{"2", "4", "6"}, Measurement: variable.Numerical},
	}
	rows := [][]string{{"1", "2"}, {"2", "4"}, {"3", "6"}, {"1", "2"}}

	svc := newTestService(nil, nil)
	result, err := svc.AnalyzeDataset(context.Background(), DatasetRequest{
		Rows:      rows,
		Variables: vars,
		Mode:      analysis.ModeCrossSectional,
	})
	require.NoError(t, err)

	require.Len(t, result.Associations, 1)
	assoc := result.Associations[0]
	assert.Equal(t, "x", assoc.X)
	assert.Equal(t, "y", assoc.Y)
	require.NotNil(t, assoc.Pearson)
	assert.InDelta(t, 1.0, *assoc.Pearson, 1e-9, "y is a linear function of x")
	require.NotNil(t, assoc.DistanceCorrelation)
	assert.InDelta(t, 1.0, *assoc.DistanceCorrelation, 1e-9)
	assert.Greater(t, result.JointEntropy, 0.0)
}

func TestAnalyzeDataset_ConstantSeriesYieldsNilAssociation(t *testing.T) {
	vars := []variable.Info{
		{Name: "x", StateSpace: []string{"5"}, Measurement: variable.Numerical},
		{Name: "y", StateSpace: []string{"1", "2"}, Measurement: variable.Numerical},
	}
	rows := [][]string{{"5", "1"}, {"5", "2"}, {"5", "1"}}

	svc := newTestService(nil, nil)
	result, err := svc.AnalyzeDataset(context.Background(), DatasetRequest{
		Rows:      rows,
		Variables: vars,
		Mode:      analysis.ModeCrossSectional,
	})
	require.NoError(t, err)

	require.Len(t, result.Associations, 1)
	assert.Nil(t, result.Associations[0].Pearson, "constant series is not computable, not zero")
	assert.Nil(t, result.Associations[0].DistanceCorrelation)
}

func TestAnalyzeDataset_NoMutualInformationForThreeVariables(t *testing.T) {
	vars := append(pairVars(), variable.Info{Name: "extra", StateSpace: []string{"x"}, Measurement: variable.Nominal})
	rows := [][]string{{"A", "1", "x"}, {"B", "2", "x"}}

	svc := newTestService(nil, nil)
	result, err := svc.AnalyzeDataset(context.Background(), DatasetRequest{
		Rows:      rows,
		Variables: vars,
		Mode:      analysis.ModeCrossSectional,
	})
	require.NoError(t, err)
	assert.Nil(t, result.MutualInformation)
}

func TestAnalyzeDataset_SummaryFailureIsNonFatal(t *testing.T) {
	summarizer := &stubSummarizer{err: assert.AnError}
	svc := newTestService(summarizer, nil)

	result, err := svc.AnalyzeDataset(context.Background(), DatasetRequest{
		Rows:      pairRows(),
		Variables: pairVars(),
		Mode:      analysis.ModeCrossSectional,
		Summarize: true,
	})
	require.NoError(t, err, "a summary failure never fails the analysis")
	assert.Empty(t, result.Summary)
}

func TestCompareModels_RanksAndExcludes(t *testing.T) {
	valid := model.NewDef("uniform", pairVars())
	valid.Table = model.ProbabilityTable{Entries: []model.Entry{
		{States: []string{"A", "1"}, Probability: 0.25},
		{States: []string{"A", "2"}, Probability: 0.25},
		{States: []string{"B", "1"}, Probability: 0.25},
		{States: []string{"B", "2"}, Probability: 0.25},
	}}
	invalid := model.NewDef("broken", pairVars())
	invalid.Table = model.ProbabilityTable{Entries: []model.Entry{
		{States: []string{"A", "1"}, Probability: 0.97},
	}}

	repo := &memoryRunRepository{}
	svc := newTestService(nil, repo)

	result, err := svc.CompareModels(context.Background(), ComparisonRequest{
		Rows:      pairRows(),
		Variables: pairVars(),
		Mode:      analysis.ModeCrossSectional,
		Models:    []*model.Def{valid, invalid},
	})
	require.NoError(t, err)

	require.Len(t, result.Report.Models, 2)
	assert.Equal(t, "uniform", result.Report.BestModel, "the only valid model wins by default")

	var excluded *analysis.ModelComparison
	for i := range result.Report.Models {
		if result.Report.Models[i].Excluded {
			excluded = &result.Report.Models[i]
		}
	}
	require.NotNil(t, excluded)
	assert.Equal(t, "broken", excluded.ModelName)
	assert.Contains(t, excluded.ExclusionReason, "0.97")

	require.Len(t, repo.records, 1)
	assert.Equal(t, "comparison", repo.records[0].Kind)
}

func TestCompareModels_RequiresModels(t *testing.T) {
	svc := newTestService(nil, nil)
	_, err := svc.CompareModels(context.Background(), ComparisonRequest{
		Rows:      pairRows(),
		Variables: pairVars(),
		Mode:      analysis.ModeCrossSectional,
	})
	require.Error(t, err)
	assert.True(t, core.IsInputError(err))
}

func TestAnalyzeSelfDependence_Persists(t *testing.T) {
	repo := &memoryRunRepository{}
	svc := newTestService(nil, repo)

	result, err := svc.AnalyzeSelfDependence(context.Background(), SelfDependenceRequest{
		Traces: [][]string{
			{"a", "b", "a", "b"},
			{"b", "a", "b", "a"},
		},
		StateSpace: []string{"a", "b"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Analysis.Conclusion)

	require.Len(t, repo.records, 1)
	assert.Equal(t, "self_dependence", repo.records[0].Kind)

	fetched, err := svc.GetRun(context.Background(), result.RunID)
	require.NoError(t, err)
	assert.Equal(t, result.RunID, fetched.ID)
}

func TestEstimateSelfDependenceCost(t *testing.T) {
	svc := NewAnalysisService(internal.NewLogger(internal.LogLevelError), nil, nil,
		engine.SelfDependenceConfig{MaxJointStates: 100})

	cost, feasible := svc.EstimateSelfDependenceCost(3, 4)
	assert.Equal(t, 81.0, cost)
	assert.True(t, feasible)

	cost, feasible = svc.EstimateSelfDependenceCost(3, 5)
	assert.Equal(t, 243.0, cost)
	assert.False(t, feasible)
}

func TestListRuns_WithoutRepository(t *testing.T) {
	svc := newTestService(nil, nil)
	runs, err := svc.ListRuns(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Nil(t, runs)
}
