package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ablelove766/Healthcare-AssistantNew/config"
)

// ChatMessage is one role-tagged entry in a chat completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is the seam to a chat completion backend. Implementations must be
// safe for concurrent use; one provider instance is shared across sessions.
type Provider interface {
	// ChatCompletion sends the ordered message list and returns the
	// generated text. Blocking; honors ctx cancellation.
	ChatCompletion(ctx context.Context, messages []ChatMessage) (string, error)

	// GetProviderType returns the backend name, e.g. "groq".
	GetProviderType() string

	// GetModel returns the model identifier requests are sent with.
	GetModel() string

	// IsConfigured reports whether a credential is present. When false,
	// callers answer with setup guidance instead of calling the model.
	IsConfigured() bool
}

// NewProvider builds the chat backend named by cfg.Provider. Both "groq"
// and "openai" speak the OpenAI-compatible wire protocol; they differ in
// base URL and credential only.
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "groq", "openai":
		return NewOpenAIProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
