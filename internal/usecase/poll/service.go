// Package poll implements the announcement polling cycle: verify the
// credential, fetch the purchased catalog, fetch announcements for every
// tracked batch, deliver the ones not seen before, and commit everything
// observed to the seen ledger.
package poll

import (
	"context"
	"log/slog"
	"time"

	"pw-announcer/internal/config"
	"pw-announcer/internal/domain/entity"
	"pw-announcer/internal/infra/remote"
	"pw-announcer/internal/usecase/deliver"
	"pw-announcer/internal/usecase/track"
)

// globalScope is the ledger scope name used in "global" scope mode.
const globalScope = "global"

// Fetcher is the remote API surface the poller needs. *remote.Client
// satisfies it.
type Fetcher interface {
	VerifyToken(ctx context.Context) (remote.Verdict, *remote.Failure)
	ListBatches(ctx context.Context) ([]entity.Batch, *remote.Failure)
	ListAnnouncements(ctx context.Context, batchID string) ([]entity.Announcement, *remote.Failure)
}

// ConfigStore is the configuration surface the poller needs. *config.Store
// satisfies it.
type ConfigStore interface {
	Reload() *config.RuntimeConfig
	Current() *config.RuntimeConfig
	ClearSelection() error
}

// Service runs poll cycles. It owns no scheduling: the caller decides when
// RunCycle fires (a cron @every entry in the worker command).
type Service struct {
	store     ConfigStore
	fetcher   Fetcher
	tracker   *track.Service
	deliverer deliver.Service

	now func() time.Time
}

// NewService wires a poll service.
func NewService(store ConfigStore, fetcher Fetcher, tracker *track.Service, deliverer deliver.Service) *Service {
	return &Service{
		store:     store,
		fetcher:   fetcher,
		tracker:   tracker,
		deliverer: deliverer,
		now:       time.Now,
	}
}

// Bootstrap validates the configuration and credential before the first
// cycle. It rejects placeholder tokens and empty batch selections outright,
// logs the advisory token expiry estimate when configured, and verifies the
// token against the remote API. A transient verification failure is not
// fatal; the per-cycle verification will retry.
func (s *Service) Bootstrap(ctx context.Context) error {
	cfg := s.store.Current()

	cred := entity.Credential(cfg.Token)
	if cred.IsPlaceholder() {
		return fatal(
			"access token is not configured",
			"paste your bearer token into the token field of the config file")
	}

	if len(cfg.SelectedBatchIDs) == 0 {
		return fatal(
			"no batches selected",
			"run the batches command to list purchased batches and add their ids to selected_batch_ids")
	}

	if cfg.TokenExpiresAtMS > 0 {
		info := entity.ExpiryEstimate(cfg.TokenExpiresAtMS, s.now())
		if info.Expired {
			slog.Warn("Configured token expiry has passed; expect credential rejection",
				slog.Int64("expires_at_ms", cfg.TokenExpiresAtMS))
		} else {
			slog.Info("Token expiry estimate",
				slog.Int("days_remaining", info.DaysRemaining))
		}
	}

	verdict, failure := s.fetcher.VerifyToken(ctx)
	switch verdict {
	case remote.VerdictValid:
		slog.Info("Token verified")
	case remote.VerdictInvalid:
		return fatal(
			"the remote API rejected the access token",
			"refresh the token from a logged-in browser session and update the config file")
	case remote.VerdictUnknown:
		slog.Warn("Token verification inconclusive, continuing",
			slog.Any("error", failure))
	}

	return nil
}

// CycleStats summarizes one poll cycle for logging and metrics.
type CycleStats struct {
	// Skipped is true when the cycle did no remote work (paused, or a
	// retryable failure stopped it before the catalog was processed).
	Skipped bool

	TrackedBatches   int
	NewAnnouncements int
	Delivered        int
	Duration         time.Duration
}

// RunCycle executes one poll cycle. It returns stats and nil both on
// success and on retryable failures (those are logged and the next cycle
// retries); a *FatalError means the process should stop.
func (s *Service) RunCycle(ctx context.Context) (*CycleStats, error) {
	cfg := s.store.Reload()

	if cfg.Paused {
		slog.Info("Polling paused, skipping cycle")
		return &CycleStats{Skipped: true}, nil
	}

	start := s.now()

	verdict, failure := s.fetcher.VerifyToken(ctx)
	switch verdict {
	case remote.VerdictInvalid:
		return nil, fatal(
			"the remote API rejected the access token",
			"refresh the token from a logged-in browser session and update the config file")
	case remote.VerdictUnknown:
		slog.Warn("Token verification inconclusive, skipping cycle",
			slog.Any("error", failure))
		return &CycleStats{Skipped: true}, nil
	}

	batches, bfail := s.fetcher.ListBatches(ctx)
	if bfail != nil {
		if bfail.AuthRejected() {
			return nil, fatal(
				"the remote API rejected the access token while listing batches",
				"refresh the token from a logged-in browser session and update the config file")
		}
		slog.Warn("Batch catalog fetch failed, skipping cycle",
			slog.String("kind", bfail.Kind.String()),
			slog.Any("error", bfail))
		return &CycleStats{Skipped: true}, nil
	}

	tracked := selectTracked(cfg.SelectedBatchIDs, batches)
	if len(tracked) == 0 {
		if err := s.store.ClearSelection(); err != nil {
			slog.Warn("Failed to clear stale batch selection",
				slog.Any("error", err))
		}
		return nil, fatal(
			"none of the selected batches exist in the purchased catalog",
			"the selection has been cleared; run the batches command and pick batches again")
	}

	scopes := s.collect(ctx, cfg, tracked)

	var fresh []entity.Announcement
	for _, sc := range scopes {
		fresh = append(fresh, sc.fresh...)
	}

	delivered := 0
	if len(fresh) > 0 {
		for _, res := range s.deliverer.Deliver(ctx, fresh) {
			if res.Delivered {
				delivered++
			}
		}
	}

	// Observed ids are committed even when delivery failed: a missed
	// notification is preferable to re-notifying the whole backlog on
	// every cycle.
	for _, sc := range scopes {
		if err := s.tracker.CommitObserved(ctx, sc.name, sc.known, sc.observed); err != nil {
			slog.Warn("Seen ledger commit failed",
				slog.String("scope", sc.name),
				slog.Any("error", err))
		}
	}

	stats := &CycleStats{
		TrackedBatches:   len(tracked),
		NewAnnouncements: len(fresh),
		Delivered:        delivered,
		Duration:         s.now().Sub(start),
	}

	slog.Info("Poll cycle complete",
		slog.Int("tracked_batches", stats.TrackedBatches),
		slog.Int("new_announcements", stats.NewAnnouncements),
		slog.Int("delivered", stats.Delivered),
		slog.Duration("duration", stats.Duration))

	return stats, nil
}

// scopeState accumulates per-ledger-scope work for one cycle.
type scopeState struct {
	name     string
	known    map[string]struct{}
	observed []entity.Announcement
	fresh    []entity.Announcement
}

// collect fetches announcements for every tracked batch, grouped by ledger
// scope. A failed announcement fetch skips that batch only; the other
// batches still proceed.
func (s *Service) collect(ctx context.Context, cfg *config.RuntimeConfig, tracked []entity.Batch) []*scopeState {
	var (
		order  []*scopeState
		byName = make(map[string]*scopeState)
	)

	scopeFor := func(b entity.Batch) string {
		if cfg.ScopeMode == config.ScopeModeGlobal {
			return globalScope
		}
		return b.SlugOrName()
	}

	for _, batch := range tracked {
		anns, afail := s.fetcher.ListAnnouncements(ctx, batch.ID)
		if afail != nil {
			slog.Warn("Announcement fetch failed, skipping batch",
				slog.String("batch_id", batch.ID),
				slog.String("batch", batch.SlugOrName()),
				slog.String("kind", afail.Kind.String()),
				slog.Any("error", afail))
			continue
		}

		// Stamp the batch identity for delivery payloads.
		for i := range anns {
			anns[i].BatchSlug = batch.SlugOrName()
		}

		name := scopeFor(batch)
		sc, ok := byName[name]
		if !ok {
			sc = &scopeState{
				name:  name,
				known: s.tracker.Load(ctx, name),
			}
			byName[name] = sc
			order = append(order, sc)
		}

		sc.observed = append(sc.observed, anns...)
		sc.fresh = append(sc.fresh, track.Diff(anns, sc.known)...)
	}

	return order
}

// selectTracked intersects the configured selection with the purchased
// catalog, preserving catalog order. Selected ids missing from the catalog
// are logged and dropped.
func selectTracked(selected []string, catalog []entity.Batch) []entity.Batch {
	want := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		want[id] = struct{}{}
	}

	var tracked []entity.Batch
	for _, b := range catalog {
		if _, ok := want[b.ID]; ok {
			tracked = append(tracked, b)
			delete(want, b.ID)
		}
	}

	for id := range want {
		slog.Warn("Selected batch not found in purchased catalog",
			slog.String("batch_id", id))
	}

	return tracked
}
