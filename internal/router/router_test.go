package router_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/polsek-portal/api/internal/backend"
	"github.com/polsek-portal/api/internal/codestore"
	"github.com/polsek-portal/api/internal/config"
	"github.com/polsek-portal/api/internal/middleware"
	"github.com/polsek-portal/api/internal/router"
	"github.com/polsek-portal/api/internal/ws"
	"go.uber.org/zap"
)

func setup(t *testing.T) (http.Handler, *ws.Hub) {
	t.Helper()

	fakeBackend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/submissions/permit":
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"code":"IZN-2026-4GZ8QM","status":"DITERIMA"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/submissions/IZN-2026-4GZ8QM":
			w.Write([]byte(`{"code":"IZN-2026-4GZ8QM","service":"permit","status":"DIPROSES"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"not found"}`))
		}
	}))
	t.Cleanup(fakeBackend.Close)

	cfg := &config.Config{
		StoreDriver:    config.DriverMemory,
		SessionSecret:  "router-test-secret",
		SessionTTL:     time.Hour,
		WebhookSecret:  "hook-secret",
		AllowedOrigins: []string{"http://localhost:5173"},
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := ws.NewHub(nil)
	go hub.Run(ctx)

	r := router.New(cfg, codestore.NewMemoryBackend(cfg.SessionTTL), backend.NewClient(fakeBackend.URL, time.Second), hub, zap.NewNop())
	return r, hub
}

func request(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(middleware.SessionHeader, token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	h, _ := setup(t)
	rr := request(t, h, "GET", "/health", "", "")
	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

// Full flow: submit a permit, reopen the status page with only the hint,
// submit the remembered code and load the results view.
func TestPermitFlow(t *testing.T) {
	h, _ := setup(t)

	rr := request(t, h, "POST", "/pengajuan/pengajuan-izin", "", `{"nama":"Budi"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("submit: got %d, want %d (%s)", rr.Code, http.StatusCreated, rr.Body.String())
	}
	token := rr.Header().Get(middleware.SessionHeader)

	rr = request(t, h, "GET", "/cek-status?from=pengajuan-izin", token, "")
	var entry struct {
		Code       string `json:"code"`
		CanProceed bool   `json:"can_proceed"`
		ResultsURL string `json:"results_url"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry.Code != "IZN-2026-4GZ8QM" || !entry.CanProceed {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	rr = request(t, h, "GET", entry.ResultsURL, token, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("results: got %d, want %d (%s)", rr.Code, http.StatusOK, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"status":"DIPROSES"`) {
		t.Errorf("unexpected results body: %s", rr.Body.String())
	}
}

func TestWebhookRequiresSecret(t *testing.T) {
	h, _ := setup(t)
	body := `{"code":"IZN-2026-4GZ8QM","status":"SELESAI"}`

	rr := request(t, h, "POST", "/webhooks/status", "", body)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status without secret: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	req := httptest.NewRequest("POST", "/webhooks/status", strings.NewReader(body))
	req.Header.Set(router.WebhookSecretHeader, "hook-secret")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusAccepted {
		t.Errorf("status with secret: got %d, want %d", rr.Code, http.StatusAccepted)
	}
}
