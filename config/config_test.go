package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultModel, cfg.LLM.Model)
	assert.Equal(t, DefaultGroqBaseURL, cfg.LLM.BaseURL)
	assert.Equal(t, 10, cfg.Registry.DefaultLimit)
	assert.Equal(t, 0, cfg.Registry.CacheTTLSeconds, "fetch cache is off by default")
	assert.Equal(t, 10, cfg.Conversation.MaxMessages)
	assert.Equal(t, 6, cfg.Conversation.PromptWindow)
	assert.Equal(t, 3, cfg.Conversation.SummaryMessages)
	assert.Equal(t, 5000, cfg.Server.Port)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
llm:
  model: custom-model
  temperature: 0.3
server:
  port: 8080
registry:
  base_url: http://registry:9000/api
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	// keep ambient env from overriding the file under test
	t.Setenv("GROQ_MODEL", "")
	t.Setenv("PATIENT_API_URL", "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "custom-model", cfg.LLM.Model)
	assert.Equal(t, 0.3, cfg.LLM.Temperature)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://registry:9000/api", cfg.Registry.BaseURL)
	// untouched sections keep their defaults
	assert.Equal(t, 10, cfg.Registry.DefaultLimit)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "test-key")
	t.Setenv("GROQ_MODEL", "env-model")
	t.Setenv("PATIENT_API_URL", "http://env-registry:5010/api")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.LLM.APIKey)
	assert.Equal(t, "env-model", cfg.LLM.Model)
	assert.Equal(t, "http://env-registry:5010/api", cfg.Registry.BaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  model: file-model\n"), 0o644))
	t.Setenv("GROQ_MODEL", "env-model")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-model", cfg.LLM.Model)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config failed")
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: ["), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config failed")
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:    "missing model",
			mutate:  func(c *Config) { c.LLM.Model = "" },
			wantMsg: "llm model is required",
		},
		{
			name:    "temperature out of range",
			mutate:  func(c *Config) { c.LLM.Temperature = 3 },
			wantMsg: "llm.temperature",
		},
		{
			name:    "top_p out of range",
			mutate:  func(c *Config) { c.LLM.TopP = 1.5 },
			wantMsg: "llm.top_p",
		},
		{
			name:    "missing registry url",
			mutate:  func(c *Config) { c.Registry.BaseURL = "" },
			wantMsg: "registry base_url is required",
		},
		{
			name:    "patients path without slash",
			mutate:  func(c *Config) { c.Registry.PatientsPath = "Patient" },
			wantMsg: "must start with '/'",
		},
		{
			name:    "default limit out of range",
			mutate:  func(c *Config) { c.Registry.DefaultLimit = 0 },
			wantMsg: "registry.default_limit",
		},
		{
			name:    "negative cache ttl",
			mutate:  func(c *Config) { c.Registry.CacheTTLSeconds = -1 },
			wantMsg: "registry.cache_ttl_seconds",
		},
		{
			name:    "zero history cap",
			mutate:  func(c *Config) { c.Conversation.MaxMessages = 0 },
			wantMsg: "conversation.max_messages",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantMsg: "server.port",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantMsg: "log.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.LLM.Model = ""
	cfg.Server.Port = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "found 2 configuration error(s)")
}
