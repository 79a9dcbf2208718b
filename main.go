package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"stokhos/adapters/llm"
	"stokhos/adapters/llm/heuristic"
	"stokhos/adapters/postgres"
	"stokhos/adapters/stats/engine"
	"stokhos/app"
	"stokhos/internal"
	"stokhos/internal/config"
	"stokhos/ports"
	"stokhos/ui"
)

func main() {
	_ = godotenv.Load()

	logger := internal.NewDefaultLogger()
	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	runs := setupRunRepository(cfg, logger)
	summarizer := setupSummarizer(cfg, logger)

	service := app.NewAnalysisService(logger, summarizer, runs,
		engine.SelfDependenceConfig{MaxJointStates: cfg.Analysis.MaxJointStates})
	server := ui.NewServer(service, summarizer, logger)

	addr := ":" + cfg.Server.Port
	logger.Info("starting server on %s", addr)
	if err := http.ListenAndServe(addr, server.Handler()); err != nil {
		logger.Error("server failed: %v", err)
		os.Exit(1)
	}
}

// setupRunRepository connects run persistence when DATABASE_URL is set.
// Without it the server still runs every analysis, just statelessly.
func setupRunRepository(cfg *config.Config, logger *internal.Logger) ports.RunRepository {
	if cfg.Database.URL == "" {
		logger.Info("no DATABASE_URL set, run persistence disabled")
		return nil
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		logger.Warn("database unavailable, run persistence disabled: %v", err)
		return nil
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := postgres.Migrate(ctx, db); err != nil {
		logger.Warn("migration failed, run persistence disabled: %v", err)
		return nil
	}
	return postgres.NewRunRepository(db)
}

// setupSummarizer wires the LLM summarizer when an API key is present,
// falling back to the deterministic heuristic generator otherwise.
func setupSummarizer(cfg *config.Config, logger *internal.Logger) ports.SummarizerPort {
	fallback := heuristic.NewSummarizer()
	if cfg.AI.APIKey == "" {
		logger.Info("no OPENAI_API_KEY set, using heuristic summaries")
		return fallback
	}
	summarizer, err := llm.NewSummarizerAdapter(llm.Config{
		Model:               cfg.AI.Model,
		APIKey:              cfg.AI.APIKey,
		BaseURL:             cfg.AI.BaseURL,
		Temperature:         cfg.AI.Temperature,
		MaxTokens:           cfg.AI.MaxTokens,
		Timeout:             60 * time.Second,
		FallbackToHeuristic: true,
	}, fallback)
	if err != nil {
		logger.Warn("LLM summarizer unavailable, using heuristic: %v", err)
		return fallback
	}
	return summarizer
}
