package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/polsek-portal/api/internal/backend"
	"github.com/polsek-portal/api/internal/codestore"
	"github.com/polsek-portal/api/internal/status"
	"github.com/polsek-portal/api/internal/tracking"
	"go.uber.org/zap"
)

// Submitter forwards a citizen submission to the backend.
// Satisfied by *backend.Client.
type Submitter interface {
	Submit(ctx context.Context, kind tracking.Kind, payload json.RawMessage) (backend.Receipt, error)
}

// SubmissionHandler accepts permit requests, lost-item reports, online
// incident reports and SKCK applications.
type SubmissionHandler struct {
	sessions  codestore.Backend
	submitter Submitter
	log       *zap.Logger
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(sessions codestore.Backend, submitter Submitter, log *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{sessions: sessions, submitter: submitter, log: log}
}

// RegisterRoutes registers submission endpoints.
// Expected to be mounted at /pengajuan.
func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/{service}", h.Create)
}

type submissionResponse struct {
	Code        string        `json:"code"`
	Kind        tracking.Kind `json:"kind"`
	Status      string        `json:"status,omitempty"`
	RedirectURL string        `json:"redirect_url"`
}

// Create forwards the body to the backend. Only a successful submission
// touches the session code store.
func (h *SubmissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	hint := chi.URLParam(r, "service")
	kind := tracking.Classify(hint)
	if kind == tracking.KindGeneric {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown service"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
		return
	}
	if !json.Valid(body) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	receipt, err := h.submitter.Submit(r.Context(), kind, json.RawMessage(body))
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
			writeJSON(w, apiErr.Status, map[string]string{"error": apiErr.Message})
			return
		}
		h.log.Error("forward submission", zap.String("kind", string(kind)), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "pengajuan gagal dikirim, silakan coba lagi"})
		return
	}

	receipt.Code = strings.TrimSpace(receipt.Code)
	if !tracking.IsValid(kind, receipt.Code) {
		h.log.Warn("backend issued code outside the known format",
			zap.String("kind", string(kind)), zap.String("code", receipt.Code))
	}

	sessionStore(r, h.sessions, h.log).Remember(r.Context(), kind, receipt.Code)

	writeJSON(w, http.StatusCreated, submissionResponse{
		Code:        receipt.Code,
		Kind:        kind,
		Status:      receipt.Status,
		RedirectURL: status.EntryURL(receipt.Code, hint),
	})
}
