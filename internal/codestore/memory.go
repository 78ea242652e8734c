package codestore

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value   string
	expires time.Time
}

// MemoryKV is an in-process KV. Entries expire ttl after their last write;
// a zero ttl keeps them forever.
type MemoryKV struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemoryKV creates an empty MemoryKV.
func NewMemoryKV(ttl time.Duration) *MemoryKV {
	return &MemoryKV{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", nil
	}
	if m.expired(e) {
		delete(m.entries, key)
		return "", nil
	}
	return e.value, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{value: value}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}
	m.entries[key] = e
	return nil
}

func (m *MemoryKV) expired(e memoryEntry) bool {
	return !e.expires.IsZero() && !m.now().Before(e.expires)
}

// sweep drops expired entries and reports whether any remain.
func (m *MemoryKV) sweep() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, e := range m.entries {
		if m.expired(e) {
			delete(m.entries, k)
		}
	}
	return len(m.entries) > 0
}

// MemoryBackend keeps every session's KV in process memory. Suitable for a
// single server instance and for tests.
type MemoryBackend struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*MemoryKV
}

// NewMemoryBackend creates a MemoryBackend whose entries expire after ttl.
func NewMemoryBackend(ttl time.Duration) *MemoryBackend {
	return &MemoryBackend{
		ttl:      ttl,
		sessions: make(map[string]*MemoryKV),
	}
}

// Session returns the KV of session id, creating it on first use.
func (b *MemoryBackend) Session(id string) KV {
	ns := namespace(id)

	b.mu.Lock()
	defer b.mu.Unlock()

	kv, ok := b.sessions[ns]
	if !ok {
		kv = NewMemoryKV(b.ttl)
		b.sessions[ns] = kv
	}
	return kv
}

// Sweep removes sessions whose entries have all expired.
func (b *MemoryBackend) Sweep(_ context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	removed := 0
	for ns, kv := range b.sessions {
		if !kv.sweep() {
			delete(b.sessions, ns)
			removed++
		}
	}
	return removed, nil
}
