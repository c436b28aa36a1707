package memory

import (
	"fmt"
	"strings"
	"sync"
)

const (
	// DefaultMaxMessages caps stored conversation history per session.
	DefaultMaxMessages = 10
	// SummaryTruncateAt caps per-message content in summaries.
	SummaryTruncateAt = 100
)

// History is the bounded conversation log for one session. Append is the
// only mutator; the cap is enforced after every append by evicting from the
// front, so the newest messages always survive. Safe for concurrent readers
// against the session's single writer.
type History struct {
	mu          sync.RWMutex
	messages    []Message
	maxMessages int
}

// NewHistory creates an empty history with the given cap.
func NewHistory(maxMessages int) *History {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	return &History{maxMessages: maxMessages}
}

// Append adds one message and trims to the cap.
func (h *History) Append(role, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append(h.messages, NewMessage(role, content))
	h.trim()
}

// trim drops the oldest messages beyond the cap. Caller holds the lock.
func (h *History) trim() {
	if len(h.messages) > h.maxMessages {
		h.messages = h.messages[len(h.messages)-h.maxMessages:]
	}
}

// Len reports the number of stored messages.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.messages)
}

// All returns a copy of every stored message in order.
func (h *History) All() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make([]Message, len(h.messages))
	copy(result, h.messages)
	return result
}

// LastN returns a copy of the last n messages, keeping only user and
// assistant roles. The window is cut before filtering, matching how prompts
// are assembled.
func (h *History) LastN(n int) []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	msgs := h.messages
	if n > 0 && n < len(msgs) {
		msgs = msgs[len(msgs)-n:]
	}

	result := make([]Message, 0, len(msgs))
	for _, msg := range msgs {
		if msg.Role == RoleUser || msg.Role == RoleAssistant {
			result = append(result, msg)
		}
	}
	return result
}

// Summarize renders the last n messages as a short transcript, one line per
// message with content cut at SummaryTruncateAt characters.
func (h *History) Summarize(n int) string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.messages) == 0 {
		return "No conversation history."
	}

	msgs := h.messages
	if n > 0 && n < len(msgs) {
		msgs = msgs[len(msgs)-n:]
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Conversation with %d messages:\n", len(h.messages)))
	for _, msg := range msgs {
		content := msg.Content
		// cut on a rune boundary so multi-byte content stays valid UTF-8
		if runes := []rune(content); len(runes) > SummaryTruncateAt {
			content = string(runes[:SummaryTruncateAt]) + "..."
		}
		b.WriteString(fmt.Sprintf("- %s: %s\n", titleRole(msg.Role), content))
	}
	return b.String()
}

// Clear drops all stored messages.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = nil
}

func titleRole(role string) string {
	if role == "" {
		return role
	}
	return strings.ToUpper(role[:1]) + role[1:]
}
