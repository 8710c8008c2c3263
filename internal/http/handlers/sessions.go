package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/scam-honeypot/internal/session"
	"github.com/wolfman30/scam-honeypot/pkg/logging"
)

// SessionReader looks up sessions without creating them.
type SessionReader interface {
	Get(ctx context.Context, id string) (session.Session, bool, error)
}

// SessionView is the read-only projection of a session.
type SessionView struct {
	SessionID             string                     `json:"sessionId"`
	State                 string                     `json:"state"`
	MessageCount          int                        `json:"messageCount"`
	ScamDetected          bool                       `json:"scamDetected"`
	CallbackSent          bool                       `json:"callbackSent"`
	ExtractedIntelligence session.IntelligenceRecord `json:"extractedIntelligence"`
	CreatedAt             time.Time                  `json:"createdAt"`
	LastActivity          time.Time                  `json:"lastActivity"`
}

// SessionHandler exposes session inspection.
type SessionHandler struct {
	store  SessionReader
	logger *logging.Logger
}

// NewSessionHandler creates a new session inspection handler.
func NewSessionHandler(store SessionReader, logger *logging.Logger) *SessionHandler {
	if store == nil {
		panic("handlers: session reader cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SessionHandler{store: store, logger: logger}
}

// GetSession handles GET /sessions/{sessionID}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if id == "" {
		writeDetail(w, http.StatusBadRequest, "session id required")
		return
	}

	sess, ok, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.logger.WithSession(id).Error("failed to load session", "error", err)
		writeDetail(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if !ok {
		writeDetail(w, http.StatusNotFound, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, SessionView{
		SessionID:             sess.ID,
		State:                 sess.State.String(),
		MessageCount:          sess.MessageCount,
		ScamDetected:          sess.ScamDetected(),
		CallbackSent:          sess.CallbackSent(),
		ExtractedIntelligence: sess.Intelligence,
		CreatedAt:             sess.CreatedAt,
		LastActivity:          sess.LastActivity,
	})
}
