package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/polsek-portal/api/internal/backend"
	"github.com/polsek-portal/api/internal/codestore"
	"github.com/polsek-portal/api/internal/config"
	"github.com/polsek-portal/api/internal/handler"
	mw "github.com/polsek-portal/api/internal/middleware"
	"github.com/polsek-portal/api/internal/ws"
	"go.uber.org/zap"
)

// WebhookSecretHeader carries the shared secret on backend webhooks.
const WebhookSecretHeader = "X-Webhook-Secret"

// New creates a Chi router with all application routes wired up.
// Citizen-facing routes run inside a session; the webhook route is guarded
// by the shared webhook secret instead.
func New(cfg *config.Config, sessions codestore.Backend, be *backend.Client, hub *ws.Hub, log *zap.Logger) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(mw.RequestLogger(log))
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", mw.SessionHeader},
		ExposedHeaders:   []string{mw.SessionHeader},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Status push (no session needed, codes are public identifiers)
	r.Get("/ws/status", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, w, r)
	})

	// Backend webhooks
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireSecret(WebhookSecretHeader, cfg.WebhookSecret))
		webhookHandler := handler.NewWebhookHandler(hub, log)
		r.Route("/webhooks", webhookHandler.RegisterRoutes)
	})

	// Citizen-facing routes, scoped to the tab session
	r.Group(func(r chi.Router) {
		r.Use(mw.Session(cfg.SessionSecret, cfg.SessionTTL, log))

		statusHandler := handler.NewStatusHandler(sessions, be, log)
		r.Route("/cek-status", statusHandler.RegisterRoutes)

		submissionHandler := handler.NewSubmissionHandler(sessions, be, log)
		r.Route("/pengajuan", submissionHandler.RegisterRoutes)
	})

	log.Info("router initialized", zap.String("store_driver", cfg.StoreDriver))
	return r
}
