package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-voice/internal/logger"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

// Handler holds the dependencies for HTTP handlers.
type Handler struct {
	retriever driving.RetrievalService
	sessions  *sessions
	topK      int
}

// NewHandler creates a handler. newSession starts a conversation for each
// new session; topK is the default for /v1/retrieve.
func NewHandler(retriever driving.RetrievalService, newSession SessionFactory, topK int) *Handler {
	if topK <= 0 {
		topK = 3
	}
	return &Handler{
		retriever: retriever,
		sessions:  newSessions(newSession, DefaultMaxSessions),
		topK:      topK,
	}
}

// RetrieveRequest is the body of POST /v1/retrieve.
type RetrieveRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// RetrieveResponse is the reply of POST /v1/retrieve.
type RetrieveResponse struct {
	Results []domain.RetrievalResult `json:"results"`
	Context string                   `json:"context"`
}

// AskRequest is the body of POST /v1/ask. An empty SessionID starts a new
// session.
type AskRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
}

// AskResponse is the reply of POST /v1/ask.
type AskResponse struct {
	Answer      string             `json:"answer"`
	SessionID   string             `json:"session_id"`
	UsedContext bool               `json:"used_context"`
	Outcome     domain.TurnOutcome `json:"outcome"`
}

// HistoryResponse is the reply of GET /v1/history.
type HistoryResponse struct {
	SessionID string                    `json:"session_id"`
	Turns     []domain.ConversationTurn `json:"turns"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleHealth handles GET /health.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleStats handles GET /v1/stats.
func (h *Handler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	sendJSON(w, http.StatusOK, h.retriever.Stats())
}

// HandleRetrieve handles POST /v1/retrieve.
func (h *Handler) HandleRetrieve(w http.ResponseWriter, r *http.Request) {
	var req RetrieveRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		sendError(w, http.StatusBadRequest, "query is required")
		return
	}
	topK := req.TopK
	if topK <= 0 {
		topK = h.topK
	}

	results, err := h.retriever.Retrieve(r.Context(), req.Query, topK)
	if err != nil {
		sendDomainError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, RetrieveResponse{Results: results, Context: domain.FormatResults(results)})
}

// HandleAsk handles POST /v1/ask.
func (h *Handler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		sendError(w, http.StatusBadRequest, "question is required")
		return
	}

	var sess *session
	if req.SessionID == "" {
		sess = h.sessions.start()
	} else {
		var err error
		if sess, err = h.sessions.get(req.SessionID); err != nil {
			sendDomainError(w, err)
			return
		}
	}

	// Turns of one conversation never overlap.
	sess.mu.Lock()
	answer := sess.conv.ProcessInput(r.Context(), req.Question)
	history := sess.conv.History()
	sess.mu.Unlock()

	resp := AskResponse{Answer: answer, SessionID: sess.conv.SessionID()}
	if n := len(history); n > 0 {
		resp.UsedContext = history[n-1].UsedContext
		resp.Outcome = history[n-1].Outcome
	}
	sendJSON(w, http.StatusOK, resp)
}

// HandleHistory handles GET /v1/history?session_id=.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session_id")
	if id == "" {
		sendError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	sess, err := h.sessions.get(id)
	if err != nil {
		sendDomainError(w, err)
		return
	}

	sess.mu.Lock()
	turns := sess.conv.History()
	sess.mu.Unlock()

	sendJSON(w, http.StatusOK, HistoryResponse{SessionID: id, Turns: turns})
}

// HandleEndSession handles DELETE /v1/sessions/{id}.
func (h *Handler) HandleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.end(mux.Vars(r)["id"]); err != nil {
		sendDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		sendError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

// sendDomainError maps domain errors to HTTP statuses.
func sendDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrIndexNotBuilt):
		status = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrTransientIO):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		logger.Error("Request failed: %v", err)
	}
	sendError(w, status, err.Error())
}

func sendError(w http.ResponseWriter, status int, msg string) {
	sendJSON(w, status, ErrorResponse{Error: msg})
}

func sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to write response: %v", err)
	}
}
