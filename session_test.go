package assistant

import (
	"sync/atomic"
	"testing"
	"time"
)

func newTestStore() *MemSessionStore {
	return NewMemSessionStore(func(id string) *Session {
		return &Session{ID: id, CreatedAt: time.Now()}
	})
}

func backdate(s *Session, d time.Duration) {
	atomic.StoreInt64(&s.lastActive, time.Now().Add(-d).UnixNano())
}

func TestMemSessionStore_CreateAndGet(t *testing.T) {
	store := newTestStore()

	s := store.Create()
	if s.ID == "" {
		t.Fatal("Expected generated session id")
	}

	got, ok := store.Get(s.ID)
	if !ok {
		t.Fatal("Expected session to be stored")
	}
	if got != s {
		t.Error("Expected the same session instance")
	}

	if _, ok := store.Get("missing"); ok {
		t.Error("Expected miss for unknown id")
	}
}

func TestMemSessionStore_GetOrCreate(t *testing.T) {
	store := newTestStore()

	s := store.GetOrCreate("room-1")
	if s.ID != "room-1" {
		t.Fatalf("Expected requested id, got %q", s.ID)
	}

	again := store.GetOrCreate("room-1")
	if again != s {
		t.Error("Expected the same session on repeat lookups")
	}

	fresh := store.GetOrCreate("")
	if fresh.ID == "" {
		t.Error("Expected minted id for empty request")
	}
	if fresh == s {
		t.Error("Expected a distinct session for empty id")
	}
}

func TestMemSessionStore_Delete(t *testing.T) {
	store := newTestStore()
	s := store.Create()

	if !store.Delete(s.ID) {
		t.Fatal("Expected delete to report success")
	}
	if _, ok := store.Get(s.ID); ok {
		t.Error("Expected session to be gone")
	}
	if store.Delete(s.ID) {
		t.Error("Expected repeated delete to report failure")
	}
}

func TestMemSessionStore_ListByRecency(t *testing.T) {
	store := newTestStore()

	older := store.GetOrCreate("older")
	newer := store.GetOrCreate("newer")
	backdate(older, time.Hour)

	got := store.List()
	if len(got) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(got))
	}
	if got[0] != newer || got[1] != older {
		t.Errorf("Expected most recent first, got [%s, %s]", got[0].ID, got[1].ID)
	}
}

func TestMemSessionStore_Clean(t *testing.T) {
	store := newTestStore()

	idle := store.GetOrCreate("idle")
	store.GetOrCreate("active")
	backdate(idle, 2*time.Hour)

	removed := store.Clean(time.Hour)
	if removed != 1 {
		t.Fatalf("Expected 1 session removed, got %d", removed)
	}
	if _, ok := store.Get("idle"); ok {
		t.Error("Expected idle session to be evicted")
	}
	if _, ok := store.Get("active"); !ok {
		t.Error("Expected active session to survive")
	}
}

func TestMemSessionStore_CleanDisabled(t *testing.T) {
	store := newTestStore()
	s := store.Create()
	backdate(s, 24*time.Hour)

	if removed := store.Clean(0); removed != 0 {
		t.Errorf("Expected zero ttl to disable cleaning, removed %d", removed)
	}
	if _, ok := store.Get(s.ID); !ok {
		t.Error("Expected session to survive disabled clean")
	}
}
