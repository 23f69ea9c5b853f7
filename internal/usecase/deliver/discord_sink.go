package deliver

import (
	"context"

	"pw-announcer/internal/domain/entity"
	"pw-announcer/internal/infra/notifier"
)

// DiscordSink implements the Sink interface for Discord notifications.
// It wraps the DiscordNotifier from the infrastructure layer to provide
// the Sink abstraction for the delivery use case.
type DiscordSink struct {
	notifier notifier.Notifier
	enabled  bool
}

// NewDiscordSink creates a new Discord sink with the specified configuration.
//
// If Discord notifications are disabled (config.Enabled = false), a
// NoOpNotifier is used instead to avoid null checks and ensure the Sink
// interface contract is always satisfied.
func NewDiscordSink(config notifier.DiscordConfig) *DiscordSink {
	var n notifier.Notifier
	if config.Enabled {
		n = notifier.NewDiscordNotifier(config)
	} else {
		n = notifier.NewNoOpNotifier()
	}

	return &DiscordSink{
		notifier: n,
		enabled:  config.Enabled,
	}
}

// Name returns the sink identifier "discord".
func (s *DiscordSink) Name() string {
	return "discord"
}

// IsEnabled returns whether Discord notifications are enabled via configuration.
func (s *DiscordSink) IsEnabled() bool {
	return s.enabled
}

// Send delivers one announcement to Discord.
//
// This method performs input validation and delegates to the underlying
// DiscordNotifier for the actual webhook request. The notifier handles
// rate limiting (0.5 req/s with burst of 3), retry logic and request ID
// generation.
func (s *DiscordSink) Send(ctx context.Context, ann *entity.Announcement) error {
	if !s.enabled {
		return ErrSinkDisabled
	}

	if ann == nil || ann.ID == "" {
		return ErrInvalidAnnouncement
	}

	return s.notifier.NotifyAnnouncement(ctx, ann)
}
