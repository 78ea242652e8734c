package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/polsek-portal/api/internal/backend"
	"github.com/polsek-portal/api/internal/codestore"
	"github.com/polsek-portal/api/internal/status"
	"github.com/polsek-portal/api/internal/tracking"
	"go.uber.org/zap"
)

// StatusFetcher looks up a submission's processing status.
// Satisfied by *backend.Client.
type StatusFetcher interface {
	Status(ctx context.Context, code string) (backend.Record, error)
}

// StatusHandler serves the shared check-status flow.
type StatusHandler struct {
	sessions codestore.Backend
	fetcher  StatusFetcher
	log      *zap.Logger
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(sessions codestore.Backend, fetcher StatusFetcher, log *zap.Logger) *StatusHandler {
	return &StatusHandler{sessions: sessions, fetcher: fetcher, log: log}
}

// RegisterRoutes registers the check-status endpoints.
// Expected to be mounted at /cek-status.
func (h *StatusHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Entry)
	r.Post("/", h.Submit)
	r.Post("/entry", h.ResolveEntry)
	r.Get("/hasil", h.Results)
}

// --- Request / Response types ---

type navQuery struct {
	From  string `json:"from"`
	Jenis string `json:"jenis"`
	Code  string `json:"code"`
}

type resolveEntryRequest struct {
	State status.NavState `json:"state"`
	Query navQuery        `json:"query"`
}

type submitCodeRequest struct {
	From string `json:"from"`
	Code string `json:"code"`
}

type entryResponse struct {
	Kind       tracking.Kind `json:"kind"`
	Label      string        `json:"label"`
	Hint       string        `json:"hint"`
	Code       string        `json:"code"`
	CanProceed bool          `json:"can_proceed"`
	Example    string        `json:"example,omitempty"`
	ResultsURL string        `json:"results_url,omitempty"`
}

type resultResponse struct {
	Code      string        `json:"code"`
	Kind      tracking.Kind `json:"kind"`
	Label     string        `json:"label"`
	Hint      string        `json:"hint"`
	Status    string        `json:"status"`
	Note      string        `json:"note,omitempty"`
	UpdatedAt *time.Time    `json:"updated_at,omitempty"`
}

func toEntryResponse(e status.Entry) entryResponse {
	resp := entryResponse{
		Kind:       e.Kind,
		Label:      e.Kind.Label(),
		Hint:       e.Hint,
		Code:       e.Code,
		CanProceed: e.CanProceed,
		Example:    tracking.Example(e.Kind),
	}
	if e.CanProceed {
		resp.ResultsURL = status.ResultsURL(e.Code, e.Hint)
	}
	return resp
}

// --- Handlers ---

// Entry resolves the check-status form from the URL alone.
func (h *StatusHandler) Entry(w http.ResponseWriter, r *http.Request) {
	store := sessionStore(r, h.sessions, h.log)
	entry := status.ResolveEntry(r.Context(), store, status.NavState{}, r.URL.Query())
	writeJSON(w, http.StatusOK, toEntryResponse(entry))
}

// ResolveEntry resolves the check-status form from navigation state and
// query parameters posted by the page.
func (h *StatusHandler) ResolveEntry(w http.ResponseWriter, r *http.Request) {
	var req resolveEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	query := url.Values{}
	for k, v := range map[string]string{"from": req.Query.From, "jenis": req.Query.Jenis, "code": req.Query.Code} {
		if v != "" {
			query.Set(k, v)
		}
	}

	store := sessionStore(r, h.sessions, h.log)
	entry := status.ResolveEntry(r.Context(), store, req.State, query)
	writeJSON(w, http.StatusOK, toEntryResponse(entry))
}

// Submit validates a typed code. Valid codes are remembered and answered
// with the results URL; invalid ones get an inline message and 422.
func (h *StatusHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	store := sessionStore(r, h.sessions, h.log)
	out := status.Submit(r.Context(), store, req.From, req.Code)
	if !out.OK {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": out.Message,
			"kind":  string(out.Kind),
		})
		return
	}

	writeJSON(w, http.StatusOK, out)
}

// Results is the results view: it re-validates the code from the URL,
// remembers it and returns the backend's status record.
func (h *StatusHandler) Results(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	code := strings.TrimSpace(q.Get("code"))

	hint := status.ResolveHint(status.NavState{}, q)
	kind := tracking.Classify(hint)
	if strings.TrimSpace(q.Get("from")) == "" && strings.TrimSpace(q.Get("jenis")) == "" {
		kind = tracking.KindOfCode(code)
	}

	if !tracking.IsValid(kind, code) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": status.InvalidCodeMessage(kind, code),
			"kind":  string(kind),
		})
		return
	}

	sessionStore(r, h.sessions, h.log).Remember(r.Context(), kind, code)

	rec, err := h.fetcher.Status(r.Context(), code)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "kode tidak ditemukan"})
			return
		}
		h.log.Error("fetch submission status", zap.String("code", code), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "layanan status sedang tidak tersedia"})
		return
	}

	resp := resultResponse{
		Code:   code,
		Kind:   kind,
		Label:  kind.Label(),
		Hint:   hint,
		Status: rec.Status,
		Note:   rec.Note,
	}
	if !rec.UpdatedAt.IsZero() {
		resp.UpdatedAt = &rec.UpdatedAt
	}
	writeJSON(w, http.StatusOK, resp)
}
