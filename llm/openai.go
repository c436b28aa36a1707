package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/ablelove766/Healthcare-AssistantNew/config"
)

// ErrNotConfigured is returned when a completion is requested without a
// credential. Callers normally check IsConfigured first.
var ErrNotConfigured = errors.New("llm provider not configured")

// OpenAIProvider speaks the OpenAI chat completion wire protocol. Groq
// serves the same protocol, so the provider covers both; only the base URL
// differs.
type OpenAIProvider struct {
	client     openai.Client
	cfg        config.LLMConfig
	configured bool
}

// NewOpenAIProvider builds a provider from config. A missing API key is not
// an error: the provider comes up unconfigured and refuses completions, so
// the service can still start and explain its setup.
func NewOpenAIProvider(cfg config.LLMConfig) *OpenAIProvider {
	p := &OpenAIProvider{cfg: cfg}
	if cfg.APIKey == "" {
		return p
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	p.client = openai.NewClient(opts...)
	p.configured = true
	return p
}

// ChatCompletion implements Provider.
func (p *OpenAIProvider) ChatCompletion(ctx context.Context, messages []ChatMessage) (string, error) {
	if !p.configured {
		return "", ErrNotConfigured
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.cfg.Model),
		Messages: toParamUnion(messages),
	}
	if p.cfg.Temperature > 0 {
		params.Temperature = openai.Float(p.cfg.Temperature)
	}
	if p.cfg.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(p.cfg.MaxTokens))
	}
	if p.cfg.TopP > 0 {
		params.TopP = openai.Float(p.cfg.TopP)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion failed, err: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// GetProviderType implements Provider.
func (p *OpenAIProvider) GetProviderType() string {
	if p.cfg.Provider != "" {
		return p.cfg.Provider
	}
	return "openai"
}

// GetModel implements Provider.
func (p *OpenAIProvider) GetModel() string {
	return p.cfg.Model
}

// IsConfigured implements Provider.
func (p *OpenAIProvider) IsConfigured() bool {
	return p.configured
}

func toParamUnion(messages []ChatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
