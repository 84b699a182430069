package store

import (
	"sync"

	"verilens/internal/types"
)

// MemoryStore keeps the history in a slice with the same semantics as
// the SQLite store: filter same id, prepend, truncate to the cap. Used
// in tests and ephemeral runs.
type MemoryStore struct {
	mu         sync.Mutex
	entries    []types.VerificationResult
	maxEntries int
}

// NewMemoryStore returns an empty in-memory history.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryStore{maxEntries: maxEntries}
}

// Record inserts at the front, dropping any prior entry with the same id
// and evicting beyond the cap.
func (m *MemoryStore) Record(result *types.VerificationResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	updated := make([]types.VerificationResult, 0, len(m.entries)+1)
	updated = append(updated, *result)
	for _, e := range m.entries {
		if e.ID != result.ID {
			updated = append(updated, e)
		}
	}
	if len(updated) > m.maxEntries {
		updated = updated[:m.maxEntries]
	}
	m.entries = updated
	return nil
}

// List returns a copy of the history, most recent first.
func (m *MemoryStore) List() ([]types.VerificationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]types.VerificationResult, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

// Clear removes every entry.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}

// Close is a no-op for the memory store.
func (m *MemoryStore) Close() error {
	return nil
}
