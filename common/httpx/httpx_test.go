package httpx

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ablelove766/Healthcare-AssistantNew/config"
)

func TestMatchHost(t *testing.T) {
	tests := []struct {
		pattern, host string
		want          bool
	}{
		{"*", "anything.example.com", true},
		{"example.com", "example.com", true},
		{"example.com", "EXAMPLE.COM", true},
		{"*.example.com", "api.example.com", true},
		{"*.example.com", "example.com", true},
		{"*.example.com", "evil.com", false},
		{"example.com", "other.com", false},
	}
	for _, tt := range tests {
		if got := matchHost(tt.pattern, tt.host); got != tt.want {
			t.Errorf("matchHost(%q, %q): expected %v, got %v", tt.pattern, tt.host, tt.want, got)
		}
	}
}

func TestClient_HostAllowlistBlocks(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	c := NewFromConfig(&config.HTTPClientConfig{HostAllowlist: []string{"allowed.example.com"}})
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	if _, err := c.Do(req); err != ErrHostNotAllowed {
		t.Fatalf("Expected ErrHostNotAllowed, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Errorf("Expected blocked request to never reach the server, got %d hits", hits)
	}
}

func TestClient_HostAllowlistPasses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewFromConfig(&config.HTTPClientConfig{HostAllowlist: []string{"127.0.0.1"}})
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewFromConfig(&config.HTTPClientConfig{Retry: 1, BackoffMinMs: 1, BackoffMaxMs: 2})
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected retried 200, got %d", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&attempts); got != 2 {
		t.Errorf("Expected 2 attempts, got %d", got)
	}
}

func TestClient_4xxIsNotRetried(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewFromConfig(&config.HTTPClientConfig{Retry: 2, BackoffMinMs: 1, BackoffMaxMs: 2})
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 passed through, got %d", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("Expected single attempt for 4xx, got %d", got)
	}
}

func TestClient_CircuitOpens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewFromConfig(&config.HTTPClientConfig{MaxConsecutiveFailures: 1, CircuitOpenSeconds: 60})
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)

	// first call fails upstream and trips the breaker
	if _, err := c.Do(req); err != nil {
		t.Fatalf("Expected transport-level success on first call, got %v", err)
	}
	if _, err := c.Do(req); err != ErrCircuitOpen {
		t.Fatalf("Expected ErrCircuitOpen on second call, got %v", err)
	}
}

func TestClient_WithTimeout(t *testing.T) {
	c := NewFromConfig(nil)
	c2 := c.WithTimeout(0)
	if c2 != c {
		t.Errorf("Expected zero timeout to return the same client")
	}
	c3 := c.WithTimeout(1)
	if c3 == c {
		t.Errorf("Expected positive timeout to return a copy")
	}
}
