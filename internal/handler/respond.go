package handler

import (
	"encoding/json"
	"net/http"

	"github.com/polsek-portal/api/internal/codestore"
	"github.com/polsek-portal/api/internal/middleware"
	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies forwarded to the backend.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode JSON response", zap.Error(err))
	}
}

// sessionStore returns the code store of the request's session. Requests
// that bypassed the session middleware get a throwaway store.
func sessionStore(r *http.Request, sessions codestore.Backend, log *zap.Logger) *codestore.Store {
	id, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		return codestore.New(codestore.NewMemoryKV(0), log)
	}
	return codestore.New(sessions.Session(id.String()), log)
}
