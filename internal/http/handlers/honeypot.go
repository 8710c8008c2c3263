package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/wolfman30/scam-honeypot/internal/honeypot"
	"github.com/wolfman30/scam-honeypot/pkg/logging"
)

const maxAnalyzeBodyBytes = 1 << 20

// TurnProcessor runs one conversation turn.
type TurnProcessor interface {
	Process(ctx context.Context, turn honeypot.Turn) (honeypot.Reply, error)
}

// AnalyzeResponse is the synchronous reply to an analyze request.
type AnalyzeResponse struct {
	Status string `json:"status"`
	Reply  string `json:"reply"`
}

// HoneypotHandler serves the analyze endpoint.
type HoneypotHandler struct {
	engine TurnProcessor
	logger *logging.Logger
}

// NewHoneypotHandler creates a new analyze handler.
func NewHoneypotHandler(engine TurnProcessor, logger *logging.Logger) *HoneypotHandler {
	if engine == nil {
		panic("handlers: turn processor cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &HoneypotHandler{engine: engine, logger: logger}
}

// Analyze handles POST /analyze and POST /api/honeypot
func (h *HoneypotHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req honeypot.Request
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAnalyzeBodyBytes))
	if err := decoder.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		h.logger.Warn("invalid analyze request", "error", err)
		writeDetail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	turn := req.Turn()
	if len(turn.Metadata) > 0 {
		h.logger.WithSession(turn.SessionID).Debug("analyze request metadata", "keys", metadataKeys(turn.Metadata))
	}

	reply, err := h.engine.Process(r.Context(), turn)
	if err != nil {
		h.logger.WithSession(turn.SessionID).Warn("turn aborted", "error", err)
		writeDetail(w, http.StatusServiceUnavailable, "request cancelled")
		return
	}

	writeJSON(w, http.StatusOK, AnalyzeResponse{Status: "success", Reply: reply.Text})
}

func metadataKeys(metadata map[string]any) []string {
	keys := make([]string, 0, len(metadata))
	for key := range metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
