package session

import (
	"context"
	"sync"
	"time"
)

// MemoryRegistry is the in-process [Registry] used when no Redis client is
// configured. Suitable for single-instance hosts; sessions do not survive a
// restart.
type MemoryRegistry struct {
	mu      sync.RWMutex
	records map[string]*Record
	byUser  map[string]map[string]struct{}
}

// NewMemoryRegistry creates an empty in-process registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		records: make(map[string]*Record),
		byUser:  make(map[string]map[string]struct{}),
	}
}

// Save stores a copy of rec. The ttl argument is ignored: in-process
// retention is bounded by lazy expiry in Get.
func (m *MemoryRegistry) Save(_ context.Context, rec *Record, _ time.Duration) error {
	cp := *rec

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[cp.SessionID] = &cp
	set, ok := m.byUser[cp.Username]
	if !ok {
		set = make(map[string]struct{})
		m.byUser[cp.Username] = set
	}
	set[cp.SessionID] = struct{}{}
	return nil
}

// Get returns a copy of the live record, discarding it first if expired.
func (m *MemoryRegistry) Get(_ context.Context, sessionID string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	if rec.Expired(time.Now()) {
		m.dropLocked(rec)
		return nil, ErrNotFound
	}

	cp := *rec
	return &cp, nil
}

// Delete revokes a session and reports whether it was tracked.
func (m *MemoryRegistry) Delete(_ context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[sessionID]
	if !ok {
		return false, nil
	}
	m.dropLocked(rec)
	return true, nil
}

// DeleteAllForUser revokes every tracked session of username.
func (m *MemoryRegistry) DeleteAllForUser(_ context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for sessionID := range m.byUser[username] {
		delete(m.records, sessionID)
	}
	delete(m.byUser, username)
	return nil
}

// ActiveSessionIDs lists tracked session IDs for username.
func (m *MemoryRegistry) ActiveSessionIDs(_ context.Context, username string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set := m.byUser[username]
	ids := make([]string, 0, len(set))
	for sessionID := range set {
		ids = append(ids, sessionID)
	}
	return ids, nil
}

func (m *MemoryRegistry) dropLocked(rec *Record) {
	delete(m.records, rec.SessionID)
	if set, ok := m.byUser[rec.Username]; ok {
		delete(set, rec.SessionID)
		if len(set) == 0 {
			delete(m.byUser, rec.Username)
		}
	}
}
