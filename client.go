package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ablelove766/Healthcare-AssistantNew/common/httpx"
	"github.com/ablelove766/Healthcare-AssistantNew/common/logger"
	"github.com/ablelove766/Healthcare-AssistantNew/config"
	"github.com/ablelove766/Healthcare-AssistantNew/generator"
	"github.com/ablelove766/Healthcare-AssistantNew/llm"
	"github.com/ablelove766/Healthcare-AssistantNew/orchestrator"
	"github.com/ablelove766/Healthcare-AssistantNew/registry"
	"github.com/ablelove766/Healthcare-AssistantNew/router"
)

// ErrEmptyMessage rejects blank input before a turn starts. The text is
// the wire contract of the chat API's validation error.
var ErrEmptyMessage = errors.New("Message cannot be empty")

// Client is the public face of the assistant. It owns the shared
// collaborators (model provider, intent router, registry client) and the
// session store, and exposes the operations the serving layers call.
type Client struct {
	config   *config.Config
	provider llm.Provider
	intents  router.Router
	registry registry.Client
	sessions SessionStore
}

// NewClient wires a client from configuration.
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config failed, err: %w", err)
	}

	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("create llm provider failed, err: %w", err)
	}

	intents := router.NewKeywordRouter()
	reg := registry.NewHTTPClient(cfg.Registry, httpx.NewFromConfig(cfg.HTTP))

	c := &Client{
		config:   cfg,
		provider: provider,
		intents:  intents,
		registry: reg,
	}
	c.sessions = NewMemSessionStore(c.buildSession)

	if !provider.IsConfigured() {
		logger.Warnf("no %s API key found, chat turns will answer with setup guidance", provider.GetProviderType())
	}
	return c, nil
}

// buildSession assembles the per-session collaborators. Each session gets
// its own generator (and thus history) and orchestrator; the provider and
// registry client are shared.
func (c *Client) buildSession(id string) *Session {
	gen := generator.NewResponseGenerator(c.provider, c.intents, c.config.Conversation)
	orch := orchestrator.New(gen, c.registry, c.config.Registry.DefaultLimit)
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
		gen:       gen,
		orch:      orch,
		log:       logger.With("session_id", id),
	}
}

// ProcessMessage validates text and runs one turn on the named session,
// creating the session on first use. Collaborator panics are folded into
// a textual reply so a turn never takes the server down.
func (c *Client) ProcessMessage(ctx context.Context, sessionID, text string) (reply string, err error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyMessage
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("turn processing panicked: %v", r)
			reply = fmt.Sprintf("An error occurred while processing your request: %v", r)
			err = nil
		}
	}()
	sess := c.sessions.GetOrCreate(sessionID)
	return sess.ProcessTurn(ctx, text), nil
}

// ClearConversation drops the history of one session. Reports false when
// the session does not exist.
func (c *Client) ClearConversation(sessionID string) bool {
	sess, ok := c.sessions.Get(sessionID)
	if !ok {
		return false
	}
	sess.ClearHistory()
	return true
}

// ConversationSummary reports the recent-messages summary for a session.
func (c *Client) ConversationSummary(sessionID string) string {
	sess, ok := c.sessions.Get(sessionID)
	if !ok {
		return "No conversation history."
	}
	return sess.Summary()
}

// IsConfigured reports whether the model provider holds a credential.
func (c *Client) IsConfigured() bool {
	return c.provider.IsConfigured()
}

// GetPatientList runs one registry lookup and renders it. This is the
// same surface the MCP tool exposes; errors come back as text.
func (c *Client) GetPatientList(ctx context.Context, patientName string, limit int) string {
	if c.registry == nil {
		return orchestrator.ToolUnavailable
	}
	if limit <= 0 {
		limit = c.config.Registry.DefaultLimit
	}
	records, err := c.registry.Fetch(ctx, patientName, limit)
	if err != nil {
		logger.Warnf("patient lookup failed, err: %v", err)
		return fmt.Sprintf("Error getting patient list: %v", err)
	}
	return registry.FormatPatientList(records)
}

// Status describes the runtime configuration for the status endpoint.
type Status struct {
	MCPAvailable  bool   `json:"mcp_available"`
	LLMConfigured bool   `json:"llm_configured"`
	LLMService    string `json:"llm_service"`
	Model         string `json:"model"`
}

// Status reports service availability and model configuration.
func (c *Client) Status() Status {
	return Status{
		MCPAvailable:  c.registry != nil,
		LLMConfigured: c.provider.IsConfigured(),
		LLMService:    serviceLabel(c.config.LLM.Provider),
		Model:         c.provider.GetModel(),
	}
}

// Sessions exposes the session store, for serving-layer introspection.
func (c *Client) Sessions() SessionStore {
	return c.sessions
}

// StartSessionCleaner evicts idle sessions on an interval until ctx ends.
func (c *Client) StartSessionCleaner(ctx context.Context) {
	ttl := time.Duration(c.config.Session.TTLSeconds) * time.Second
	interval := time.Duration(c.config.Session.CleanIntervalSeconds) * time.Second
	if ttl <= 0 || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sessions.Clean(ttl)
			}
		}
	}()
}

func serviceLabel(provider string) string {
	switch strings.ToLower(provider) {
	case "", "groq":
		return "Groq"
	case "openai":
		return "OpenAI"
	default:
		return provider
	}
}
