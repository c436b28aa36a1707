package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultGroqBaseURL is Groq's OpenAI-compatible endpoint.
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"
	// DefaultModel is the chat model used when none is configured.
	DefaultModel = "llama3-8b-8192"
)

// Config represents the main configuration structure for the assistant
type Config struct {
	LLM          LLMConfig          `json:"llm" yaml:"llm"`
	Registry     RegistryConfig     `json:"registry" yaml:"registry"`
	Conversation ConversationConfig `json:"conversation" yaml:"conversation"`
	Server       ServerConfig       `json:"server" yaml:"server"`
	Session      SessionConfig      `json:"session,omitempty" yaml:"session,omitempty"`
	// HTTP holds global defaults for outbound calls (registry, health probes). If nil, built-in defaults apply.
	HTTP *HTTPClientConfig `json:"http,omitempty" yaml:"http,omitempty"`
	Log  LogConfig         `json:"log,omitempty" yaml:"log,omitempty"`
}

// LLMConfig defines configuration for the chat model
type LLMConfig struct {
	Provider    string  `json:"provider" yaml:"provider"` // Available options: groq, openai
	APIKey      string  `json:"api_key,omitempty" yaml:"api_key"`
	BaseURL     string  `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model       string  `json:"model" yaml:"model"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	TopP        float64 `json:"top_p,omitempty" yaml:"top_p,omitempty"`
}

// RegistryConfig defines how to reach the patient registry API.
// CacheTTLSeconds 0 disables the in-process fetch cache, so every lookup
// hits the upstream; deployments with read-heavy traffic opt in.
type RegistryConfig struct {
	BaseURL         string `json:"base_url" yaml:"base_url"`
	PatientsPath    string `json:"patients_path,omitempty" yaml:"patients_path,omitempty"`
	TimeoutSeconds  int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
	DefaultLimit    int    `json:"default_limit,omitempty" yaml:"default_limit,omitempty"`
	CacheTTLSeconds int    `json:"cache_ttl_seconds,omitempty" yaml:"cache_ttl_seconds,omitempty"`
	CacheSize       int    `json:"cache_size,omitempty" yaml:"cache_size,omitempty"`
}

// ConversationConfig bounds per-session conversation state
type ConversationConfig struct {
	MaxMessages     int `json:"max_messages,omitempty" yaml:"max_messages,omitempty"`
	PromptWindow    int `json:"prompt_window,omitempty" yaml:"prompt_window,omitempty"`
	SummaryMessages int `json:"summary_messages,omitempty" yaml:"summary_messages,omitempty"`
}

// ServerConfig defines the HTTP chat API listener
type ServerConfig struct {
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
	Port int    `json:"port,omitempty" yaml:"port,omitempty"`
}

// SessionConfig controls session lifecycle. Expired sessions are removed by
// the store's cleaner; TTL 0 disables expiry.
type SessionConfig struct {
	TTLSeconds           int `json:"ttl_seconds,omitempty" yaml:"ttl_seconds,omitempty"`
	CleanIntervalSeconds int `json:"clean_interval_seconds,omitempty" yaml:"clean_interval_seconds,omitempty"`
}

// HTTPClientConfig defines common options for outbound HTTP calls.
type HTTPClientConfig struct {
	TimeoutMs              int      `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
	Retry                  int      `json:"retry,omitempty" yaml:"retry,omitempty"`
	BackoffMinMs           int      `json:"backoff_min_ms,omitempty" yaml:"backoff_min_ms,omitempty"`
	BackoffMaxMs           int      `json:"backoff_max_ms,omitempty" yaml:"backoff_max_ms,omitempty"`
	HostAllowlist          []string `json:"host_allowlist,omitempty" yaml:"host_allowlist,omitempty"`
	MaxConsecutiveFailures int      `json:"max_consecutive_failures,omitempty" yaml:"max_consecutive_failures,omitempty"`
	CircuitOpenSeconds     int      `json:"circuit_open_seconds,omitempty" yaml:"circuit_open_seconds,omitempty"`
}

// LogConfig controls log output
type LogConfig struct {
	Level string `json:"level,omitempty" yaml:"level,omitempty"` // Available options: debug, info, warn, error
}

// Default returns the built-in configuration. Values mirror the service's
// historical defaults: Groq llama3-8b-8192 at temperature 0.7, a local
// registry on port 5010, a 10-message conversation cap with a 6-message
// prompt window.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "groq",
			BaseURL:     DefaultGroqBaseURL,
			Model:       DefaultModel,
			Temperature: 0.7,
			MaxTokens:   500,
			TopP:        0.9,
		},
		Registry: RegistryConfig{
			BaseURL:        "http://localhost:5010/api",
			PatientsPath:   "/Patient",
			TimeoutSeconds: 30,
			DefaultLimit:   10,
			CacheSize:      256,
		},
		Conversation: ConversationConfig{
			MaxMessages:     10,
			PromptWindow:    6,
			SummaryMessages: 3,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5000,
		},
		Session: SessionConfig{
			TTLSeconds:           3600,
			CleanIntervalSeconds: 300,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the optional yaml file at path over Default, applies environment
// overrides, and validates the result. An empty path loads defaults + env only.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config failed, err: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config failed, err: %w", err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv maps the deployment environment onto config. Env always wins over
// the file so containers can inject credentials without mounting one.
func (c *Config) applyEnv() {
	if v := os.Getenv("GROQ_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("GROQ_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("PATIENT_API_URL"); v != "" {
		c.Registry.BaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
}
