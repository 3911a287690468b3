package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config for an optional YAML file. Only non-empty
// values override what the environment provided.
type FileConfig struct {
	Port       int    `yaml:"port,omitempty"`
	Env        string `yaml:"env,omitempty"`
	LogLevel   string `yaml:"log_level,omitempty"`
	CORSOrigin string `yaml:"cors_origin,omitempty"`
	RedisURL   string `yaml:"redis_url,omitempty"`

	Providers struct {
		OpenAI         string `yaml:"openai,omitempty"`
		Anthropic      string `yaml:"anthropic,omitempty"`
		DeepSeek       string `yaml:"deepseek,omitempty"`
		Gemini         string `yaml:"gemini,omitempty"`
		LocalInference string `yaml:"local_inference,omitempty"`
	} `yaml:"providers,omitempty"`

	Search struct {
		URL       string `yaml:"url,omitempty"`
		Cache     string `yaml:"cache,omitempty"`
		CacheTTL  string `yaml:"cache_ttl,omitempty"`
		CacheSize int    `yaml:"cache_size,omitempty"`
	} `yaml:"search,omitempty"`
}

// LoadFile reads a YAML config file
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	fc := &FileConfig{}
	if err := yaml.Unmarshal(data, fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return fc, nil
}

// Merge applies overrides from a config file
func (c *Config) Merge(fc *FileConfig) error {
	if fc == nil {
		return nil
	}

	if fc.Port != 0 {
		c.Port = fc.Port
	}
	if fc.Env != "" {
		c.Env = fc.Env
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if fc.CORSOrigin != "" {
		c.CORSOrigin = fc.CORSOrigin
	}
	if fc.RedisURL != "" {
		c.RedisURL = fc.RedisURL
	}

	if fc.Providers.OpenAI != "" {
		c.LLM.OpenAIBaseURL = fc.Providers.OpenAI
	}
	if fc.Providers.Anthropic != "" {
		c.LLM.AnthropicBaseURL = fc.Providers.Anthropic
	}
	if fc.Providers.DeepSeek != "" {
		c.LLM.DeepSeekBaseURL = fc.Providers.DeepSeek
	}
	if fc.Providers.Gemini != "" {
		c.LLM.GeminiBaseURL = fc.Providers.Gemini
	}
	if fc.Providers.LocalInference != "" {
		c.LLM.LocalInferenceURL = fc.Providers.LocalInference
	}

	if fc.Search.URL != "" {
		c.Search.URL = fc.Search.URL
	}
	if fc.Search.Cache != "" {
		c.Search.CacheType = fc.Search.Cache
	}
	if fc.Search.CacheTTL != "" {
		ttl, err := time.ParseDuration(fc.Search.CacheTTL)
		if err != nil {
			return fmt.Errorf("invalid search.cache_ttl %q: %w", fc.Search.CacheTTL, err)
		}
		c.Search.CacheTTL = ttl
	}
	if fc.Search.CacheSize != 0 {
		c.Search.CacheSize = fc.Search.CacheSize
	}

	return nil
}

// LoadWithFile loads env configuration and overlays the YAML file at path
// when path is non-empty.
func LoadWithFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}

	fc, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Merge(fc); err != nil {
		return nil, err
	}
	return cfg, nil
}
