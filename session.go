package assistant

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ablelove766/Healthcare-AssistantNew/common/logger"
	"github.com/ablelove766/Healthcare-AssistantNew/generator"
	"github.com/ablelove766/Healthcare-AssistantNew/metrics"
	"github.com/ablelove766/Healthcare-AssistantNew/orchestrator"
)

// Session owns one conversation: the generator holding its history and the
// orchestrator driving its turns. The turn mutex serializes processing so
// two registry or model calls never interleave within one session.
type Session struct {
	ID        string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`

	lastActive int64 // unix nanos

	turn sync.Mutex
	gen  *generator.ResponseGenerator
	orch *orchestrator.Orchestrator
	log  *logger.ContextLogger
}

// ProcessTurn runs one utterance through the session's orchestrator. A
// concurrent caller blocks until the active turn finishes.
func (s *Session) ProcessTurn(ctx context.Context, utterance string) string {
	s.turn.Lock()
	defer s.turn.Unlock()
	s.touch()

	start := time.Now()
	reply := s.orch.Run(ctx, utterance)
	if s.log != nil {
		s.log.Infof("turn completed in %s, utterance %d chars, reply %d chars",
			time.Since(start).Round(time.Millisecond), len(utterance), len(reply))
	}
	return reply
}

// ClearHistory drops the session's conversation history.
func (s *Session) ClearHistory() {
	s.turn.Lock()
	defer s.turn.Unlock()
	s.touch()
	s.gen.Clear()
	if s.log != nil {
		s.log.Debugf("conversation history cleared")
	}
}

// Summary reports the tail of the session's conversation.
func (s *Session) Summary() string {
	return s.gen.Summary()
}

// LastActive reports the time of the session's most recent turn.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, atomic.LoadInt64(&s.lastActive))
}

func (s *Session) touch() {
	atomic.StoreInt64(&s.lastActive, time.Now().UnixNano())
}

// SessionStore is an abstraction for session persistence.
type SessionStore interface {
	Create() *Session
	Get(id string) (*Session, bool)
	// GetOrCreate returns the session with the given id, creating it on
	// first use. An empty id mints a fresh one.
	GetOrCreate(id string) *Session
	Delete(id string) bool
	List() []*Session
	// Clean removes sessions idle longer than ttl; returns how many.
	Clean(ttl time.Duration) int
}

// MemSessionStore manages sessions in memory.
type MemSessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	build    func(id string) *Session
}

// NewMemSessionStore creates a store that constructs sessions with build.
func NewMemSessionStore(build func(id string) *Session) *MemSessionStore {
	return &MemSessionStore{
		sessions: make(map[string]*Session),
		build:    build,
	}
}

func (m *MemSessionStore) Create() *Session {
	s := m.build(newID())
	s.touch()
	m.mu.Lock()
	m.sessions[s.ID] = s
	size := len(m.sessions)
	m.mu.Unlock()
	metrics.SetActiveSessions(size)
	return s
}

func (m *MemSessionStore) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	return s, ok
}

func (m *MemSessionStore) GetOrCreate(id string) *Session {
	if id == "" {
		return m.Create()
	}
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return s
	}
	m.mu.Lock()
	if s, ok = m.sessions[id]; !ok {
		s = m.build(id)
		s.touch()
		m.sessions[id] = s
	}
	size := len(m.sessions)
	m.mu.Unlock()
	metrics.SetActiveSessions(size)
	return s
}

func (m *MemSessionStore) Delete(id string) bool {
	m.mu.Lock()
	_, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	size := len(m.sessions)
	m.mu.Unlock()
	if ok {
		metrics.SetActiveSessions(size)
	}
	return ok
}

func (m *MemSessionStore) List() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()
	// order by recency desc for convenience
	sort.Slice(out, func(i, j int) bool { return out[i].LastActive().After(out[j].LastActive()) })
	return out
}

func (m *MemSessionStore) Clean(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-ttl)
	m.mu.Lock()
	removed := 0
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	size := len(m.sessions)
	m.mu.Unlock()
	if removed > 0 {
		metrics.SetActiveSessions(size)
		logger.Infof("session clean removed %d idle session(s)", removed)
	}
	return removed
}

func newID() string { return uuid.New().String() }
