// Package store persists the verification history: an append-only,
// most-recent-first sequence of results, capped in size and keyed by
// unique id. The store is injected into the pipeline so tests can use
// the in-memory implementation.
package store

import "verilens/internal/types"

// DefaultMaxEntries is the history cap; insertion evicts beyond it.
const DefaultMaxEntries = 50

// Store is the verification history contract.
//
// Record inserts at the front after removing any entry with the same id,
// then truncates to the cap. List returns the full sequence, most recent
// first. Clear wipes everything; callers are expected to confirm with
// the user before invoking it.
type Store interface {
	Record(result *types.VerificationResult) error
	List() ([]types.VerificationResult, error)
	Clear() error
	Close() error
}
