package generator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"github.com/ablelove766/Healthcare-AssistantNew/common/logger"
	"github.com/ablelove766/Healthcare-AssistantNew/config"
	"github.com/ablelove766/Healthcare-AssistantNew/llm"
	"github.com/ablelove766/Healthcare-AssistantNew/memory"
	"github.com/ablelove766/Healthcare-AssistantNew/metrics"
	"github.com/ablelove766/Healthcare-AssistantNew/router"
)

// User-facing replies for the failure paths. Wording is part of the chat
// contract; tests and the web layer rely on it.
const (
	ReplyNotConfigured = "❌ Sorry, I'm not properly configured. Please set up the Groq API key."
	ReplyAuthFailed    = "❌ API authentication failed. Please check your Groq API key configuration."
	ReplyModelTrouble  = "❌ I'm experiencing technical difficulties. Please try again or contact support if the problem persists."
)

const toolResultTemplate = "User query: %s\n\nTool result: %s\n\nPlease provide a helpful, friendly response based on this information. Format the patient data nicely if applicable."

const systemPrompt = `You are a helpful healthcare chatbot assistant. Your primary function is to help users find and filter patient information.

AVAILABLE TOOLS:
- getpatientlist: Get a list of patients filtered by patient name and limit

PATIENT DATA STRUCTURE:
Each patient record contains:
- PatientId: Unique identifier
- Name: Patient's full name
- Age: Patient's age
- Diagnosis: Medical conditions and diagnoses
- Medications: List of current medications with dosages
- Allergies: List of known allergies
- LastUpdated: When the record was last modified

CAPABILITIES:
1. Help users search for patients by name
2. Filter patient lists with specific criteria
3. Provide information about patient medical details
4. Answer questions about medications, allergies, and diagnoses
5. Provide information about available commands

IMPORTANT GUIDELINES:
- Always be professional and respectful when discussing patient information
- If a user asks for patient information, guide them to use the patient search functionality
- Keep responses concise but informative and friendly
- If you're unsure about a request, ask for clarification
- Always maintain patient privacy and confidentiality
- Only provide information through the available tools
- Be conversational and helpful, not robotic

RESPONSE FORMAT:
- For patient searches: Clearly indicate when you're searching and what parameters you're using
- For help requests: Provide clear, actionable guidance
- For general questions: Be helpful but redirect to available functionality when appropriate
- Use a friendly, professional tone suitable for healthcare settings

Remember: You can only access patient data through the getpatientlist tool. Do not make up or hallucinate patient information.`

// Context carries optional per-turn enrichment for a generation call.
// ToolResult wins over AvailableTools when both are set.
type Context struct {
	ToolResult     string
	AvailableTools []string
}

// Result is the outcome of one generation call. Reply is always non-empty;
// failures surface as fixed user-facing replies with Intent tagged "error"
// rather than as Go errors, so a turn always ends in something sayable.
type Result struct {
	Reply  string
	Intent *router.IntentResult
	Model  string
}

// ResponseGenerator renders replies with a chat model and owns the
// conversation history for one session. Routing decisions come from the
// deterministic keyword router; the model is used purely for prose.
type ResponseGenerator struct {
	provider     llm.Provider
	intents      router.Router
	history      *memory.History
	promptWindow int
	summaryN     int
}

// NewResponseGenerator wires a generator around a provider and router.
// Zero conversation settings fall back to the defaults.
func NewResponseGenerator(provider llm.Provider, intents router.Router, cfg config.ConversationConfig) *ResponseGenerator {
	window := cfg.PromptWindow
	if window <= 0 {
		window = 6
	}
	summaryN := cfg.SummaryMessages
	if summaryN <= 0 {
		summaryN = 3
	}
	return &ResponseGenerator{
		provider:     provider,
		intents:      intents,
		history:      memory.NewHistory(cfg.MaxMessages),
		promptWindow: window,
		summaryN:     summaryN,
	}
}

// Generate runs one chat completion for the utterance and classifies it.
// On success the original utterance and the reply are appended to history,
// in that order. No failure path mutates history or calls the model twice.
func (g *ResponseGenerator) Generate(ctx context.Context, utterance string, extra *Context) *Result {
	if !g.provider.IsConfigured() {
		logger.Warnf("chat completion skipped, provider %s has no credential", g.provider.GetProviderType())
		return &Result{
			Reply:  ReplyNotConfigured,
			Intent: errorIntent(true, "llm provider is not configured"),
		}
	}

	enhanced := enrich(utterance, extra)
	messages := g.prepareMessages(enhanced)
	metrics.ObservePromptTokens(countTokens(messages))

	start := time.Now()
	reply, err := g.provider.ChatCompletion(ctx, messages)
	metrics.ObserveLLMRequest(g.provider.GetProviderType(), start, err == nil)
	if err != nil {
		logger.Errorf("chat completion failed, err: %v", err)
		if isAuthError(err) {
			return &Result{
				Reply:  ReplyAuthFailed,
				Intent: errorIntent(true, "llm authentication failed"),
			}
		}
		return &Result{
			Reply:  ReplyModelTrouble,
			Intent: errorIntent(false, "chat completion failed"),
		}
	}

	g.history.Append(memory.RoleUser, utterance)
	g.history.Append(memory.RoleAssistant, reply)

	intent, rerr := g.intents.Route(ctx, utterance, reply)
	if rerr != nil {
		logger.Warnf("intent routing failed, err: %v", rerr)
		intent = &router.IntentResult{
			Intent:     router.IntentGeneral,
			Confidence: 0.5,
			Reason:     "routing failed, treated as general",
		}
	}

	return &Result{Reply: reply, Intent: intent, Model: g.provider.GetModel()}
}

// Summary reports the tail of the conversation for display.
func (g *ResponseGenerator) Summary() string {
	return g.history.Summarize(g.summaryN)
}

// Clear drops the conversation history.
func (g *ResponseGenerator) Clear() {
	g.history.Clear()
}

// IsConfigured reports whether the underlying provider holds a credential.
func (g *ResponseGenerator) IsConfigured() bool {
	return g.provider.IsConfigured()
}

// Model returns the model identifier completions are requested with.
func (g *ResponseGenerator) Model() string {
	return g.provider.GetModel()
}

// History exposes the backing conversation log.
func (g *ResponseGenerator) History() *memory.History {
	return g.history
}

// prepareMessages assembles system prompt, the recent history window
// filtered to user/assistant roles, and the current enriched utterance.
func (g *ResponseGenerator) prepareMessages(enhanced string) []llm.ChatMessage {
	window := g.history.LastN(g.promptWindow)
	messages := make([]llm.ChatMessage, 0, len(window)+2)
	messages = append(messages, llm.ChatMessage{Role: memory.RoleSystem, Content: systemPrompt})
	for _, m := range window {
		messages = append(messages, llm.ChatMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, llm.ChatMessage{Role: memory.RoleUser, Content: enhanced})
	return messages
}

func enrich(utterance string, extra *Context) string {
	if extra == nil {
		return utterance
	}
	if extra.ToolResult != "" {
		return fmt.Sprintf(toolResultTemplate, utterance, extra.ToolResult)
	}
	if len(extra.AvailableTools) > 0 {
		return fmt.Sprintf("%s\n\nAvailable tools: %s", utterance, strings.Join(extra.AvailableTools, ", "))
	}
	return utterance
}

func errorIntent(setupRequired bool, reason string) *router.IntentResult {
	return &router.IntentResult{
		Intent:        router.IntentError,
		Confidence:    0.0,
		RequiresTool:  false,
		SetupRequired: setupRequired,
		Reason:        reason,
	}
}

func isAuthError(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "api_key") || strings.Contains(s, "unauthorized")
}

var (
	tokenizerOnce sync.Once
	tokenizer     *tiktoken.Tiktoken
)

// countTokens estimates the prompt size with the cl100k_base encoding.
// Returns 0 when the encoding cannot be loaded, e.g. offline hosts.
func countTokens(messages []llm.ChatMessage) int {
	tokenizerOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			logger.Debugf("tokenizer unavailable, prompt sizes will not be recorded, err: %v", err)
			return
		}
		tokenizer = enc
	})
	if tokenizer == nil {
		return 0
	}
	n := 0
	for _, m := range messages {
		n += len(tokenizer.Encode(m.Content, nil, nil))
	}
	return n
}
