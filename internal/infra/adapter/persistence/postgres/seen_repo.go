// Package postgres provides a PostgreSQL implementation of the seen-ID
// repository for deployments that already run a database and want the ledger
// off the local filesystem.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"pw-announcer/internal/repository"
)

// SeenRepo implements the SeenRepository interface using PostgreSQL.
type SeenRepo struct{ db *sql.DB }

// NewSeenRepo creates a new PostgreSQL-backed seen-ID repository.
func NewSeenRepo(db *sql.DB) repository.SeenRepository {
	return &SeenRepo{db: db}
}

// Load retrieves all announcement IDs recorded under a scope.
// An unknown scope yields an empty set and no error.
func (repo *SeenRepo) Load(ctx context.Context, scope string) (map[string]struct{}, error) {
	const query = `
SELECT announcement_id
FROM seen_announcements
WHERE scope = $1
`

	rows, err := repo.db.QueryContext(ctx, query, scope)
	if err != nil {
		return map[string]struct{}{}, fmt.Errorf("Load: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make(map[string]struct{}, 64)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return map[string]struct{}{}, fmt.Errorf("Load: Scan: %w", err)
		}
		ids[id] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return map[string]struct{}{}, fmt.Errorf("Load: rows.Err: %w", err)
	}

	return ids, nil
}

// Commit records ids under scope inside a single transaction. Already-present
// rows are left untouched, so the stored set is exactly the committed set for
// a ledger that only grows; a crash mid-transaction leaves the previous
// state intact.
func (repo *SeenRepo) Commit(ctx context.Context, scope string, ids map[string]struct{}) error {
	const insert = `
INSERT INTO seen_announcements (scope, announcement_id)
VALUES ($1, $2)
ON CONFLICT (scope, announcement_id) DO NOTHING
`

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Commit: BeginTx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("Commit: PrepareContext: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for id := range ids {
		if _, err := stmt.ExecContext(ctx, scope, id); err != nil {
			return fmt.Errorf("Commit: ExecContext: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Commit: transaction commit: %w", err)
	}
	return nil
}
