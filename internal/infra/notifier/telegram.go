package notifier

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"

	"pw-announcer/internal/domain/entity"
)

// TelegramConfig contains configuration for Telegram bot notifications.
type TelegramConfig struct {
	// Enabled indicates whether Telegram notifications are enabled
	Enabled bool

	// BotToken is the Telegram bot API token
	BotToken string

	// ChatID is the destination chat (user, group or channel)
	ChatID int64

	// Timeout is the HTTP request timeout for Telegram API calls
	Timeout time.Duration

	// Offline skips the bot-token verification call on startup.
	// Used by tests; leave false in production.
	Offline bool
}

// TelegramNotifier sends announcement notifications to a Telegram chat.
// Every announcement is delivered as a photo message: the attachment image
// when one exists, the platform logo otherwise, captioned with the
// announcement text.
type TelegramNotifier struct {
	config      TelegramConfig
	bot         *tele.Bot
	rateLimiter *RateLimiter
}

// Telegram photo captions are limited to 1024 characters.
const maxCaptionLength = 1024

// NewTelegramNotifier creates a new TelegramNotifier. It validates the bot
// token against the Telegram API unless config.Offline is set. The rate
// limiter is set to 1 request/second with a burst of 3 (Telegram bot limit:
// ~30 messages per second globally, 1 per second per chat).
func NewTelegramNotifier(config TelegramConfig) (*TelegramNotifier, error) {
	if strings.TrimSpace(config.BotToken) == "" {
		return nil, errors.New("telegram bot token is empty")
	}
	if config.ChatID == 0 {
		return nil, errors.New("telegram chat id is empty")
	}

	bot, err := tele.NewBot(tele.Settings{
		Token:   config.BotToken,
		Offline: config.Offline,
		Client:  &http.Client{Timeout: config.Timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &TelegramNotifier{
		config:      config,
		bot:         bot,
		rateLimiter: NewRateLimiter(1, 3),
	}, nil
}

// buildCaption renders the HTML caption for an announcement photo message.
func buildCaption(ann *entity.Announcement) string {
	body := truncateBody(ann.Body, maxCaptionLength-128, truncationSuffix)
	return fmt.Sprintf("<b>%s</b>\nNotification time: <i>%s</i>\n\n<b>%s</b>",
		senderName,
		html.EscapeString(ann.ScheduleDisplay()),
		html.EscapeString(body))
}

// photoURL returns the image to attach: the announcement attachment when
// present, the platform logo otherwise.
func photoURL(ann *entity.Announcement) string {
	if ann.Attachment.HasImage() {
		return ann.Attachment.DisplayURL()
	}
	return platformLogoURL
}

// NotifyAnnouncement sends a Telegram notification for a new announcement.
// This method implements the Notifier interface.
func (t *TelegramNotifier) NotifyAnnouncement(ctx context.Context, ann *entity.Announcement) error {
	requestID := uuid.New().String()

	slog.Info("Starting Telegram notification",
		slog.String("request_id", requestID),
		slog.String("announcement_id", ann.ID),
		slog.String("batch", ann.BatchSlug))

	if err := t.rateLimiter.Allow(ctx); err != nil {
		slog.Error("Rate limiter error",
			slog.String("request_id", requestID),
			slog.String("announcement_id", ann.ID),
			slog.Any("error", err))
		return fmt.Errorf("rate limiter error: %w", err)
	}

	photo := &tele.Photo{
		File:    tele.FromURL(photoURL(ann)),
		Caption: buildCaption(ann),
	}

	if _, err := t.bot.Send(tele.ChatID(t.config.ChatID), photo, tele.ModeHTML); err != nil {
		slog.Error("Telegram notification failed",
			slog.String("request_id", requestID),
			slog.String("announcement_id", ann.ID),
			slog.Any("error", err))
		return fmt.Errorf("telegram send: %w", err)
	}

	slog.Info("Telegram notification successful",
		slog.String("request_id", requestID),
		slog.String("announcement_id", ann.ID),
		slog.String("batch", ann.BatchSlug))
	return nil
}
