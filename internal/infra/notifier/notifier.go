// Package notifier provides the concrete announcement delivery mechanisms.
// It defines the Notifier interface which allows different providers
// (Discord webhook, Telegram bot) to be used interchangeably through
// dependency injection, plus a no-op notifier for disabled channels.
package notifier

import (
	"context"

	"pw-announcer/internal/domain/entity"
)

// Notifier is an interface for sending a single announcement notification.
// Implementations should handle rate limiting, retries, and error logging
// internally and respect context cancellation.
type Notifier interface {
	// NotifyAnnouncement sends a notification for one announcement.
	// Returns a non-nil error if the notification failed after all retry
	// attempts; the caller decides whether the announcement counts as
	// delivered.
	NotifyAnnouncement(ctx context.Context, ann *entity.Announcement) error
}
