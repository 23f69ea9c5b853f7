// Package deliver provides the use case for delivering new announcements
// across multiple sinks. It implements chronological ordering, per-sink
// failure isolation and pacing between consecutive announcements so that
// delivery providers (Discord, Telegram) are not flooded.
package deliver

import (
	"context"

	"pw-announcer/internal/domain/entity"
)

// Sink represents a delivery destination for announcements (Discord webhook,
// Telegram chat, etc.). Each sink implementation handles its own rate
// limiting, retries, and error handling.
//
// Retry Policy Contract:
//   - Transient failures (5xx, network errors): Retry with backoff (max 2 attempts)
//   - Rate limits (429): Sleep for retry_after duration, then retry
//   - Client errors (4xx except 429): No retry
//   - Context timeout: No retry
//
// Thread Safety:
//   - All methods must be safe for concurrent use by multiple goroutines
type Sink interface {
	// Name returns the human-readable name of the sink (e.g., "discord").
	// This is used for logging, metrics, and health check endpoints.
	Name() string

	// IsEnabled returns true if this sink is enabled via configuration.
	// Disabled sinks are skipped during delivery.
	IsEnabled() bool

	// Send delivers one announcement to this sink.
	//
	// Implementations must:
	//   - Respect context cancellation/timeout
	//   - Apply rate limiting
	//   - Retry transient failures according to the retry policy
	//   - Sanitize sensitive data (webhook URLs, bot tokens) in error messages
	//
	// Returns:
	//   - error: Non-nil if delivery failed after all retries
	//     - ErrSinkDisabled: If Send() called on a disabled sink
	//     - ErrInvalidAnnouncement: If ann is nil or missing required fields
	//     - Network/API errors: Wrapped with context
	Send(ctx context.Context, ann *entity.Announcement) error
}
