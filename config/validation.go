package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error [%s]: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("found %d configuration error(s):\n", len(errs)))
	for i, err := range errs {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Message))
	}
	return b.String()
}

// Validate validates the complete configuration
func (c *Config) Validate() error {
	var errs ValidationErrors

	if err := c.validateLLM(); err != nil {
		errs = append(errs, err...)
	}

	if err := c.validateRegistry(); err != nil {
		errs = append(errs, err...)
	}

	if err := c.validateConversation(); err != nil {
		errs = append(errs, err...)
	}

	if err := c.validateServer(); err != nil {
		errs = append(errs, err...)
	}

	if err := c.validateLog(); err != nil {
		errs = append(errs, err...)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateLLM validates chat model configuration. A missing API key is not a
// validation error: the service starts unconfigured and answers every turn
// with setup instructions until one is provided.
func (c *Config) validateLLM() ValidationErrors {
	var errs ValidationErrors

	if c.LLM.Model == "" {
		errs = append(errs, ValidationError{
			Field:   "llm.model",
			Message: "llm model is required",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, ValidationError{
			Field:   "llm.temperature",
			Message: fmt.Sprintf("llm.temperature must be in [0, 2], got %.2f", c.LLM.Temperature),
		})
	}

	if c.LLM.MaxTokens < 0 {
		errs = append(errs, ValidationError{
			Field:   "llm.max_tokens",
			Message: fmt.Sprintf("llm.max_tokens must be non-negative, got %d", c.LLM.MaxTokens),
		})
	}

	if c.LLM.TopP < 0 || c.LLM.TopP > 1 {
		errs = append(errs, ValidationError{
			Field:   "llm.top_p",
			Message: fmt.Sprintf("llm.top_p must be in [0, 1], got %.2f", c.LLM.TopP),
		})
	}

	if c.LLM.BaseURL != "" {
		if _, err := url.ParseRequestURI(c.LLM.BaseURL); err != nil {
			errs = append(errs, ValidationError{
				Field:   "llm.base_url",
				Message: fmt.Sprintf("llm.base_url %q is not a valid URL", c.LLM.BaseURL),
			})
		}
	}

	return errs
}

// validateRegistry validates patient registry configuration
func (c *Config) validateRegistry() ValidationErrors {
	var errs ValidationErrors

	if c.Registry.BaseURL == "" {
		errs = append(errs, ValidationError{
			Field:   "registry.base_url",
			Message: "registry base_url is required",
		})
	} else if _, err := url.ParseRequestURI(c.Registry.BaseURL); err != nil {
		errs = append(errs, ValidationError{
			Field:   "registry.base_url",
			Message: fmt.Sprintf("registry.base_url %q is not a valid URL", c.Registry.BaseURL),
		})
	}

	if c.Registry.PatientsPath != "" && !strings.HasPrefix(c.Registry.PatientsPath, "/") {
		errs = append(errs, ValidationError{
			Field:   "registry.patients_path",
			Message: fmt.Sprintf("registry.patients_path %q must start with '/'", c.Registry.PatientsPath),
		})
	}

	if c.Registry.TimeoutSeconds < 0 {
		errs = append(errs, ValidationError{
			Field:   "registry.timeout_seconds",
			Message: fmt.Sprintf("registry.timeout_seconds must be non-negative, got %d", c.Registry.TimeoutSeconds),
		})
	}

	if c.Registry.DefaultLimit < 1 || c.Registry.DefaultLimit > 100 {
		errs = append(errs, ValidationError{
			Field:   "registry.default_limit",
			Message: fmt.Sprintf("registry.default_limit must be in [1, 100], got %d", c.Registry.DefaultLimit),
		})
	}

	if c.Registry.CacheTTLSeconds < 0 {
		errs = append(errs, ValidationError{
			Field:   "registry.cache_ttl_seconds",
			Message: fmt.Sprintf("registry.cache_ttl_seconds must be non-negative, got %d", c.Registry.CacheTTLSeconds),
		})
	}

	if c.Registry.CacheSize < 0 {
		errs = append(errs, ValidationError{
			Field:   "registry.cache_size",
			Message: fmt.Sprintf("registry.cache_size must be non-negative, got %d", c.Registry.CacheSize),
		})
	}

	return errs
}

// validateConversation validates conversation state bounds
func (c *Config) validateConversation() ValidationErrors {
	var errs ValidationErrors

	if c.Conversation.MaxMessages <= 0 {
		errs = append(errs, ValidationError{
			Field:   "conversation.max_messages",
			Message: fmt.Sprintf("conversation.max_messages must be positive, got %d", c.Conversation.MaxMessages),
		})
	}

	if c.Conversation.PromptWindow <= 0 {
		errs = append(errs, ValidationError{
			Field:   "conversation.prompt_window",
			Message: fmt.Sprintf("conversation.prompt_window must be positive, got %d", c.Conversation.PromptWindow),
		})
	}

	if c.Conversation.SummaryMessages <= 0 {
		errs = append(errs, ValidationError{
			Field:   "conversation.summary_messages",
			Message: fmt.Sprintf("conversation.summary_messages must be positive, got %d", c.Conversation.SummaryMessages),
		})
	}

	return errs
}

// validateServer validates the HTTP listener configuration
func (c *Config) validateServer() ValidationErrors {
	var errs ValidationErrors

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("server.port must be in [1, 65535], got %d", c.Server.Port),
		})
	}

	return errs
}

// validateLog validates log configuration
func (c *Config) validateLog() ValidationErrors {
	var errs ValidationErrors

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("log.level %q is not one of debug, info, warn, error", c.Log.Level),
		})
	}

	return errs
}
