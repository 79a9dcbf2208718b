package main

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"stokhos/adapters/llm"
	"stokhos/adapters/llm/heuristic"
	"stokhos/adapters/stats/engine"
	"stokhos/app"
	"stokhos/domain/core"
	"stokhos/internal"
	"stokhos/internal/config"
	"stokhos/ports"
)

// Headless JSON API. The chi server at the repository root carries the
// summary and run-history surfaces; this binary exposes only the three
// analysis entry points for programmatic callers.
func main() {
	_ = godotenv.Load()

	logger := internal.NewDefaultLogger()
	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	service := app.NewAnalysisService(logger, buildSummarizer(cfg, logger), nil,
		engine.SelfDependenceConfig{MaxJointStates: cfg.Analysis.MaxJointStates})

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	{
		v1.POST("/analyze", func(c *gin.Context) {
			var req app.DatasetRequest
			if !bind(c, &req) {
				return
			}
			result, err := service.AnalyzeDataset(c.Request.Context(), req)
			respond(c, result, err)
		})
		v1.POST("/compare", func(c *gin.Context) {
			var req app.ComparisonRequest
			if !bind(c, &req) {
				return
			}
			result, err := service.CompareModels(c.Request.Context(), req)
			respond(c, result, err)
		})
		v1.POST("/self-dependence", func(c *gin.Context) {
			var req app.SelfDependenceRequest
			if !bind(c, &req) {
				return
			}
			result, err := service.AnalyzeSelfDependence(c.Request.Context(), req)
			respond(c, result, err)
		})
	}

	addr := ":" + cfg.Server.Port
	logger.Info("starting API server on %s", addr)
	if err := router.Run(addr); err != nil {
		logger.Error("server failed: %v", err)
		os.Exit(1)
	}
}

func buildSummarizer(cfg *config.Config, logger *internal.Logger) ports.SummarizerPort {
	fallback := heuristic.NewSummarizer()
	if cfg.AI.APIKey == "" {
		return fallback
	}
	summarizer, err := llm.NewSummarizerAdapter(llm.Config{
		Model:               cfg.AI.Model,
		APIKey:              cfg.AI.APIKey,
		BaseURL:             cfg.AI.BaseURL,
		Temperature:         cfg.AI.Temperature,
		MaxTokens:           cfg.AI.MaxTokens,
		FallbackToHeuristic: true,
	}, fallback)
	if err != nil {
		logger.Warn("LLM summarizer unavailable, using heuristic: %v", err)
		return fallback
	}
	return summarizer
}

func bind(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body: " + err.Error()})
		return false
	}
	return true
}

func respond(c *gin.Context, result interface{}, err error) {
	if err == nil {
		c.JSON(http.StatusOK, result)
		return
	}
	status := http.StatusInternalServerError
	switch {
	case core.IsInputError(err) || core.IsModelInvalid(err):
		status = http.StatusBadRequest
	case core.IsResourceError(err):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrRunNotFound):
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
