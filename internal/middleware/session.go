package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/polsek-portal/api/internal/auth"
	"go.uber.org/zap"
)

type contextKey string

const sessionKey contextKey = "session"

// SessionHeader carries the session token. Pages keep it in the tab's own
// storage, so every tab has its own session. Cookies are shared between
// tabs and are never read.
const SessionHeader = "X-Session-Token"

// Session attaches a session ID to every request. A missing, expired or
// forged token starts a new session; the (new or existing) token is echoed
// back in the response header.
func Session(secret string, ttl time.Duration, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(SessionHeader)

			var sessionID uuid.UUID
			if token != "" {
				if claims, err := auth.ValidateSessionToken(secret, token); err == nil {
					sessionID = claims.SessionID
				}
			}

			if sessionID == uuid.Nil {
				sessionID = auth.NewSessionID()
				var err error
				token, err = auth.GenerateSessionToken(secret, sessionID, ttl)
				if err != nil {
					log.Error("generate session token", zap.Error(err))
					writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
					return
				}
			}

			w.Header().Set(SessionHeader, token)

			ctx := context.WithValue(r.Context(), sessionKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionIDFromContext returns the session ID set by Session.
func SessionIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(sessionKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// WithSessionID returns a context carrying id, for callers outside Session.
func WithSessionID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, sessionKey, id)
}

// RequireSecret rejects requests whose header does not carry secret.
// An empty secret rejects everything.
func RequireSecret(header, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(header)
			if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid secret"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
