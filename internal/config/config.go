package config

import (
	"os"
	"strconv"

	"stokhos/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	AI       AIConfig
	Analysis AnalysisConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds optional run-persistence settings. An empty URL
// disables persistence entirely; analyses still work in-memory.
type DatabaseConfig struct {
	URL string
}

// AIConfig holds optional LLM summarizer settings. An empty key means
// summaries fall back to the deterministic heuristic generator.
type AIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
}

// AnalysisConfig holds engine resource limits
type AnalysisConfig struct {
	// MaxJointStates caps the |S|^T enumeration of the order analysis.
	MaxJointStates int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		AI: AIConfig{
			APIKey:      getEnvOrDefault("OPENAI_API_KEY", ""),
			Model:       getEnvOrDefault("LLM_MODEL", "gpt-4.1-mini"),
			BaseURL:     getEnvOrDefault("LLM_BASE_URL", ""),
			MaxTokens:   getEnvIntOrDefault("MAX_TOKENS", 1024),
			Temperature: getEnvFloatOrDefault("TEMPERATURE", 0.2),
		},
		Analysis: AnalysisConfig{
			MaxJointStates: getEnvIntOrDefault("MAX_JOINT_STATES", 1<<20),
		},
	}

	if cfg.Analysis.MaxJointStates <= 0 {
		return nil, errors.ConfigInvalid("MAX_JOINT_STATES must be positive")
	}
	return cfg, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
