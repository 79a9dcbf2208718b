package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"stokhos/ports"
)

// Config holds LLM summarizer configuration
type Config struct {
	Model               string        // e.g., "gpt-4.1-mini"
	APIKey              string        // OpenAI API key
	BaseURL             string        // Optional override (default: https://api.openai.com/v1)
	Temperature         float64       // 0.0-1.0, lower = more deterministic
	MaxTokens           int           // Max tokens in response
	Timeout             time.Duration // Request timeout
	FallbackToHeuristic bool          // Fallback to heuristic on error
}

// SummarizerAdapter implements SummarizerPort via an LLM, with an
// optional deterministic fallback. The engine's numeric output is the
// source of truth; the prompt forbids inventing numbers, and any client
// failure degrades to the fallback rather than failing the analysis.
type SummarizerAdapter struct {
	config   Config
	client   LLMClient
	fallback ports.SummarizerPort
}

// NewSummarizerAdapter creates a new LLM summarizer adapter
func NewSummarizerAdapter(config Config, fallback ports.SummarizerPort) (*SummarizerAdapter, error) {
	client, err := newLLMClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return &SummarizerAdapter{
		config:   config,
		client:   client,
		fallback: fallback,
	}, nil
}

// NewSummarizerAdapterWithClient injects a client directly (tests)
func NewSummarizerAdapterWithClient(config Config, client LLMClient, fallback ports.SummarizerPort) *SummarizerAdapter {
	return &SummarizerAdapter{config: config, client: client, fallback: fallback}
}

// Summarize implements ports.SummarizerPort
func (s *SummarizerAdapter) Summarize(ctx context.Context, req ports.SummaryRequest) (string, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	prompt, err := s.buildPrompt(req)
	if err != nil {
		return s.fallbackOrError(ctx, req, err)
	}

	response, err := s.client.ChatCompletion(ctx, s.config.Model, prompt, s.config.MaxTokens)
	if err != nil {
		return s.fallbackOrError(ctx, req, err)
	}

	response = strings.TrimSpace(response)
	if response == "" {
		return s.fallbackOrError(ctx, req, fmt.Errorf("empty LLM response"))
	}
	return response, nil
}

func (s *SummarizerAdapter) fallbackOrError(ctx context.Context, req ports.SummaryRequest, cause error) (string, error) {
	if s.config.FallbackToHeuristic && s.fallback != nil {
		return s.fallback.Summarize(ctx, req)
	}
	return "", fmt.Errorf("LLM summary failed: %w", cause)
}

// buildPrompt embeds the complete numeric results as JSON so the model
// has nothing to guess at.
func (s *SummarizerAdapter) buildPrompt(req ports.SummaryRequest) (string, error) {
	payload, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary payload: %w", err)
	}

	return fmt.Sprintf(`You are summarizing the output of a stochastic-process analysis engine for a non-statistician.

Analysis results (JSON):
%s

Field guide:
- "empirical" holds the dataset's joint and marginal distributions with type-aware moments.
- "report" ranks theoretical models against the empirical distribution; lower metric values are better, "is_winner" marks per-metric winners, excluded models failed validation.
- "self_dependence" compares joint reconstructions under bounded Markov orders against the full-past reconstruction; "conclusion" already states the verdict.
- A metric value of "Infinity" means the model assigns zero probability to an observed outcome.

Requirements:
- Write 2-4 short paragraphs of plain prose, no markdown tables, no bullet lists.
- Quote only numbers that appear in the JSON; never invent values.
- If a Markovian conclusion is present, restate it and mention that the 0.5 threshold is a heuristic, not a significance test.
- Do not describe missing sections.`, string(payload)), nil
}
