package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/polsek-portal/api/internal/enum"
	"github.com/polsek-portal/api/internal/tracking"
	"github.com/polsek-portal/api/internal/ws"
	"go.uber.org/zap"
)

// Broadcaster pushes events to the watchers of a submission code.
// Satisfied by *ws.Hub.
type Broadcaster interface {
	Broadcast(code string, event ws.Event)
}

// WebhookHandler receives status changes pushed by the backend.
type WebhookHandler struct {
	hub Broadcaster
	log *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(hub Broadcaster, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{hub: hub, log: log}
}

// RegisterRoutes registers webhook endpoints.
// Expected to be mounted at /webhooks behind the webhook secret check.
func (h *WebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/status", h.StatusChanged)
}

type statusChangedRequest struct {
	Code      string    `json:"code"`
	Status    string    `json:"status"`
	Note      string    `json:"note"`
	UpdatedAt time.Time `json:"updated_at"`
}

type statusChangedPayload struct {
	Code      string        `json:"code"`
	Kind      tracking.Kind `json:"kind"`
	Status    string        `json:"status"`
	Note      string        `json:"note,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// StatusChanged validates the pushed change and broadcasts it.
func (h *WebhookHandler) StatusChanged(w http.ResponseWriter, r *http.Request) {
	var req statusChangedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	code := strings.TrimSpace(req.Code)
	kind := tracking.KindOfCode(code)
	if !tracking.IsValid(kind, code) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid code"})
		return
	}
	if !enum.IsSubmissionStatus(req.Status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}
	if req.UpdatedAt.IsZero() {
		req.UpdatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(statusChangedPayload{
		Code:      code,
		Kind:      kind,
		Status:    req.Status,
		Note:      req.Note,
		UpdatedAt: req.UpdatedAt,
	})
	if err != nil {
		h.log.Error("marshal status event", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.hub.Broadcast(code, ws.Event{Type: enum.EventStatusUpdated, Payload: payload})
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
