package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port       int
	Env        string
	LogLevel   string
	CORSOrigin string

	// Redis (search cache backend)
	RedisURL string

	// LLM
	LLM LLMConfig

	// Web search
	Search SearchConfig
}

// LLMConfig holds provider endpoints. API keys are never configured here;
// callers bring their own on every request.
type LLMConfig struct {
	OpenAIBaseURL     string
	AnthropicBaseURL  string
	DeepSeekBaseURL   string
	GeminiBaseURL     string
	LocalInferenceURL string
}

// SearchConfig holds web search settings
type SearchConfig struct {
	URL       string
	CacheType string // none, memory, redis
	CacheTTL  time.Duration
	CacheSize int
}

// Load loads configuration from a .env file (if present) and environment variables
func Load() (*Config, error) {
	// Missing .env is normal; real env vars always win
	_ = godotenv.Load()

	cfg := &Config{
		Port:       getEnvInt("PORT", 3001),
		Env:        getEnv("ENV", "development"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		CORSOrigin: getEnv("CORS_ORIGIN", "*"),
		RedisURL:   getEnv("REDIS_URL", ""),

		LLM: LLMConfig{
			OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			AnthropicBaseURL:  getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com/v1"),
			DeepSeekBaseURL:   getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1"),
			GeminiBaseURL:     getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			LocalInferenceURL: getEnv("LOCAL_INFERENCE_URL", "http://localhost:11434"),
		},

		Search: SearchConfig{
			URL:       getEnv("SEARCH_URL", "https://api.duckduckgo.com"),
			CacheType: getEnv("SEARCH_CACHE", "none"),
			CacheTTL:  getEnvDuration("SEARCH_CACHE_TTL", 10*time.Minute),
			CacheSize: getEnvInt("SEARCH_CACHE_SIZE", 500),
		},
	}

	return cfg, nil
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}

	if c.LLM.LocalInferenceURL == "" {
		return fmt.Errorf("LOCAL_INFERENCE_URL must not be empty")
	}

	switch c.Search.CacheType {
	case "none", "", "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL required when SEARCH_CACHE=redis")
		}
	default:
		return fmt.Errorf("unknown SEARCH_CACHE %q (want none, memory or redis)", c.Search.CacheType)
	}

	return nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
