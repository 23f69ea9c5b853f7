// Package repository defines the persistence interfaces the use cases depend
// on. Concrete implementations live under internal/infra/adapter/persistence.
package repository

import "context"

// SeenRepository provides scoped persistent storage for the set of
// announcement IDs that have already been processed. A scope is either a
// batch slug or the literal "global", depending on deployment mode.
//
// The set only grows during normal operation; Commit replaces the stored set
// for a scope atomically enough that a crash mid-write never corrupts the
// previous valid state.
type SeenRepository interface {
	// Load reads the persisted IDs for a scope. A missing scope yields an
	// empty set and no error. A corrupt store yields an empty set together
	// with an error the caller may log as a warning; losing the ledger only
	// risks duplicate notifications, never missed ones.
	Load(ctx context.Context, scope string) (map[string]struct{}, error)

	// Commit overwrites the persisted storage for scope with ids using a
	// write-to-temp-then-replace discipline or a transactional equivalent.
	Commit(ctx context.Context, scope string, ids map[string]struct{}) error
}
