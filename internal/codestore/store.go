package codestore

import (
	"context"

	"github.com/polsek-portal/api/internal/tracking"
	"go.uber.org/zap"
)

// Store remembers the last code per kind in a session's KV area.
//
// Storage failures are logged and swallowed: Recall reports them as "no
// code" and Remember drops the write. Callers run inside request handlers
// that must keep working when the backing store is unavailable.
type Store struct {
	kv  KV
	log *zap.Logger
}

// New creates a Store over kv. A nil logger disables logging.
func New(kv KV, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{kv: kv, log: log}
}

// Remember overwrites the code stored for kind with code as given. Only the
// empty string is ignored; callers trim user input themselves.
func (s *Store) Remember(ctx context.Context, kind tracking.Kind, code string) {
	if code == "" {
		return
	}
	key := StorageKey(kind)
	if err := s.kv.Set(ctx, key, code); err != nil {
		s.log.Warn("remember code", zap.String("key", key), zap.Error(err))
	}
}

// Recall returns the last code remembered for kind, or "" if none.
func (s *Store) Recall(ctx context.Context, kind tracking.Kind) string {
	for _, key := range append([]string{StorageKey(kind)}, legacyKeys(kind)...) {
		v, err := s.kv.Get(ctx, key)
		if err != nil {
			s.log.Warn("recall code", zap.String("key", key), zap.Error(err))
			continue
		}
		if v != "" {
			return v
		}
	}
	return ""
}
