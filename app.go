package assistant

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ablelove766/Healthcare-AssistantNew/common/logger"
)

// DefaultSessionID groups callers that send no session id into one shared
// conversation, preserving the single-conversation web client behavior.
const DefaultSessionID = "default"

// App is the REST serving layer over a Client.
type App struct {
	client *Client
	mux    *http.ServeMux
}

// NewApp builds the HTTP surface: chat, clear-chat, status, health and
// metrics endpoints.
func NewApp(client *Client) *App {
	a := &App{client: client, mux: http.NewServeMux()}
	a.mux.HandleFunc("/api/chat", a.handleChat)
	a.mux.HandleFunc("/api/clear-chat", a.handleClearChat)
	a.mux.HandleFunc("/api/status", a.handleStatus)
	a.mux.HandleFunc("/api/sessions", a.handleSessions)
	a.mux.HandleFunc("/healthz", a.handleHealthz)
	a.mux.Handle("/metrics", promhttp.Handler())
	return a
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status,omitempty"`
}

type clearResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type statusResponse struct {
	MCPAvailable  bool   `json:"mcp_available"`
	LLMConfigured bool   `json:"llm_configured"`
	LLMService    string `json:"llm_service"`
	Model         string `json:"model"`
	Status        string `json:"status"`
}

func (a *App) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed", Status: "error"})
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: fmt.Sprintf("Server error: %v", err), Status: "error"})
		return
	}

	sid := sessionID(req.SessionID)
	reply, err := a.client.ProcessMessage(r.Context(), sid, req.Message)
	if err != nil {
		if errors.Is(err, ErrEmptyMessage) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: fmt.Sprintf("Server error: %v", err), Status: "error"})
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Response: reply, SessionID: sid, Status: "success"})
}

func (a *App) handleClearChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed", Status: "error"})
		return
	}
	// body is optional; an absent or malformed one clears the default session
	var req chatRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	a.client.ClearConversation(sessionID(req.SessionID))
	writeJSON(w, http.StatusOK, clearResponse{Message: "Conversation history cleared", Status: "success"})
}

func (a *App) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed", Status: "error"})
		return
	}
	st := a.client.Status()
	writeJSON(w, http.StatusOK, statusResponse{
		MCPAvailable:  st.MCPAvailable,
		LLMConfigured: st.LLMConfigured,
		LLMService:    st.LLMService,
		Model:         st.Model,
		Status:        "success",
	})
}

type sessionInfo struct {
	SessionID  string `json:"session_id"`
	CreatedAt  string `json:"created_at"`
	LastActive string `json:"last_active"`
}

type sessionsResponse struct {
	Sessions []sessionInfo `json:"sessions"`
	Total    int           `json:"total"`
	Status   string        `json:"status"`
}

// handleSessions lists active sessions (most recent first) and lets an
// operator drop one by id.
func (a *App) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list := a.client.Sessions().List()
		infos := make([]sessionInfo, 0, len(list))
		for _, s := range list {
			infos = append(infos, sessionInfo{
				SessionID:  s.ID,
				CreatedAt:  s.CreatedAt.Format(time.RFC3339),
				LastActive: s.LastActive().Format(time.RFC3339),
			})
		}
		writeJSON(w, http.StatusOK, sessionsResponse{Sessions: infos, Total: len(infos), Status: "success"})
	case http.MethodDelete:
		id := r.URL.Query().Get("session_id")
		if id == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "session_id is required"})
			return
		}
		if !a.client.Sessions().Delete(id) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "Session not found"})
			return
		}
		writeJSON(w, http.StatusOK, clearResponse{Message: "Session deleted", Status: "success"})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed", Status: "error"})
	}
}

func (a *App) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func sessionID(id string) string {
	if id == "" {
		return DefaultSessionID
	}
	return id
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Errorf("write response failed, err: %v", err)
	}
}
