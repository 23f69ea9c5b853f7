// Package track implements the seen-ID ledger use case: loading the persisted
// set for a scope, separating new from already-known announcements, and
// committing the grown set after a delivery attempt.
package track

import (
	"context"
	"fmt"
	"log/slog"

	"pw-announcer/internal/domain/entity"
	"pw-announcer/internal/repository"
)

// Service wraps a SeenRepository with the ledger semantics the polling loop
// relies on: loads never fail the caller, and commits always grow the set.
type Service struct {
	repo repository.SeenRepository
}

// NewService creates a ledger service over the given repository.
func NewService(repo repository.SeenRepository) *Service {
	return &Service{repo: repo}
}

// Load returns the known-ID set for a scope. Storage problems degrade to an
// empty set with a logged warning: losing the ledger only risks duplicate
// notifications, so it must never abort a cycle.
func (s *Service) Load(ctx context.Context, scope string) map[string]struct{} {
	known, err := s.repo.Load(ctx, scope)
	if err != nil {
		slog.Warn("seen-id store unreadable, treating scope as empty",
			slog.String("scope", scope),
			slog.Any("error", err))
	}
	if known == nil {
		known = map[string]struct{}{}
	}
	return known
}

// Diff returns the subsequence of fetched whose IDs are not in known,
// preserving the fetched order. Diff never mutates either argument.
func Diff(fetched []entity.Announcement, known map[string]struct{}) []entity.Announcement {
	fresh := make([]entity.Announcement, 0, len(fetched))
	for _, ann := range fetched {
		if _, ok := known[ann.ID]; !ok {
			fresh = append(fresh, ann)
		}
	}
	return fresh
}

// CommitObserved persists known ∪ observed for a scope. Every announcement
// observed this cycle is committed regardless of delivery outcome: a send
// that failed on one sink is retried as a duplicate risk, never silently
// lost (the polling loop logs partial failures).
func (s *Service) CommitObserved(ctx context.Context, scope string, known map[string]struct{}, observed []entity.Announcement) error {
	grown := make(map[string]struct{}, len(known)+len(observed))
	for id := range known {
		grown[id] = struct{}{}
	}
	for _, ann := range observed {
		grown[ann.ID] = struct{}{}
	}

	if err := s.repo.Commit(ctx, scope, grown); err != nil {
		return fmt.Errorf("commit seen ids for scope %q: %w", scope, err)
	}
	return nil
}
