package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stokhos/adapters/llm/heuristic"
	"stokhos/domain/analysis"
	"stokhos/ports"
)

func sampleRequest() ports.SummaryRequest {
	return ports.SummaryRequest{
		SelfDependence: &analysis.SelfDependenceAnalysis{
			Orders: []analysis.OrderResult{
				{Order: 1, HellingerDistance: 0.02, JensenShannon: 0.03},
			},
			Conclusion: "The process is consistent with a first-order Markov process.",
		},
	}
}

func TestSummarize_EmbedsResultsInPrompt(t *testing.T) {
	mock := &MockLLMClient{Response: "All quiet on the stochastic front."}
	adapter := NewSummarizerAdapterWithClient(Config{Model: "test-model"}, mock, nil)

	summary, err := adapter.Summarize(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "All quiet on the stochastic front.", summary)

	require.Len(t, mock.Prompts, 1)
	assert.Contains(t, mock.Prompts[0], "Analysis results (JSON)")
	assert.Contains(t, mock.Prompts[0], "first-order Markov")
	assert.Contains(t, mock.Prompts[0], "never invent values")
}

func TestSummarize_FallsBackToHeuristic(t *testing.T) {
	mock := &MockLLMClient{Error: errors.New("rate limited")}
	adapter := NewSummarizerAdapterWithClient(
		Config{Model: "test-model", FallbackToHeuristic: true},
		mock,
		heuristic.NewSummarizer(),
	)

	summary, err := adapter.Summarize(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Contains(t, summary, "first-order Markov", "fallback restates the engine's conclusion")
}

func TestSummarize_ErrorWithoutFallback(t *testing.T) {
	mock := &MockLLMClient{Error: errors.New("rate limited")}
	adapter := NewSummarizerAdapterWithClient(Config{Model: "test-model"}, mock, nil)

	_, err := adapter.Summarize(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestSummarize_EmptyResponseTriggersFallback(t *testing.T) {
	mock := &MockLLMClient{Response: "   "}
	adapter := NewSummarizerAdapterWithClient(
		Config{Model: "test-model", FallbackToHeuristic: true},
		mock,
		heuristic.NewSummarizer(),
	)

	summary, err := adapter.Summarize(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, summary)
}

func TestNewSummarizerAdapter_RequiresAPIKey(t *testing.T) {
	_, err := NewSummarizerAdapter(Config{Model: "test-model"}, nil)
	assert.Error(t, err)
}
