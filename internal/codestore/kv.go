// Package codestore remembers the most recent submission code per service
// kind for one browser-tab session.
package codestore

import (
	"context"
	"encoding/hex"

	"github.com/polsek-portal/api/internal/tracking"
	"golang.org/x/crypto/blake2b"
)

// Storage keys shared by every page that reads or writes codes.
const (
	KeyPermit         = "status_code_izin"
	KeyLostItem       = "status_code_kehilangan"
	KeyLostItemLegacy = "status_code_tanda_kehilangan"
	KeyIncidentReport = "status_code_laporan"
	KeyBackground     = "status_code_skck"
)

// KV is a string key/value area scoped to one session. Get returns "" with
// a nil error when the key is absent.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Backend hands out the KV area of a session.
type Backend interface {
	Session(id string) KV
}

// StorageKey returns the key a kind's code is stored under. Generic codes
// share the permit key.
func StorageKey(kind tracking.Kind) string {
	switch kind {
	case tracking.KindLostItem:
		return KeyLostItem
	case tracking.KindIncidentReport:
		return KeyIncidentReport
	case tracking.KindBackground:
		return KeyBackground
	default:
		return KeyPermit
	}
}

// legacyKeys lists older keys still read (never written) for a kind.
func legacyKeys(kind tracking.Kind) []string {
	if kind == tracking.KindLostItem {
		return []string{KeyLostItemLegacy}
	}
	return nil
}

// namespace derives the storage namespace of a session so raw session IDs
// never reach Redis or Postgres.
func namespace(sessionID string) string {
	sum := blake2b.Sum256([]byte(sessionID))
	return hex.EncodeToString(sum[:16])
}
