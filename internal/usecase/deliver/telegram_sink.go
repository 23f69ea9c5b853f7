package deliver

import (
	"context"
	"fmt"

	"pw-announcer/internal/domain/entity"
	"pw-announcer/internal/infra/notifier"
)

// TelegramSink implements the Sink interface for Telegram notifications.
// It wraps the TelegramNotifier from the infrastructure layer to provide
// the Sink abstraction for the delivery use case.
type TelegramSink struct {
	notifier notifier.Notifier
	enabled  bool
}

// NewTelegramSink creates a new Telegram sink with the specified
// configuration.
//
// If Telegram notifications are disabled (config.Enabled = false), a
// NoOpNotifier is used instead and no bot is constructed. When enabled,
// bot construction validates the token against the Telegram API and an
// error is returned for invalid credentials.
func NewTelegramSink(config notifier.TelegramConfig) (*TelegramSink, error) {
	if !config.Enabled {
		return &TelegramSink{
			notifier: notifier.NewNoOpNotifier(),
			enabled:  false,
		}, nil
	}

	n, err := notifier.NewTelegramNotifier(config)
	if err != nil {
		return nil, fmt.Errorf("create telegram notifier: %w", err)
	}

	return &TelegramSink{
		notifier: n,
		enabled:  true,
	}, nil
}

// Name returns the sink identifier "telegram".
func (s *TelegramSink) Name() string {
	return "telegram"
}

// IsEnabled returns whether Telegram notifications are enabled via configuration.
func (s *TelegramSink) IsEnabled() bool {
	return s.enabled
}

// Send delivers one announcement to the configured Telegram chat.
func (s *TelegramSink) Send(ctx context.Context, ann *entity.Announcement) error {
	if !s.enabled {
		return ErrSinkDisabled
	}

	if ann == nil || ann.ID == "" {
		return ErrInvalidAnnouncement
	}

	return s.notifier.NotifyAnnouncement(ctx, ann)
}
