package notifier

import (
	"errors"
	"fmt"
	"time"

	"pw-announcer/internal/utils/text"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const requestIDKey contextKey = "request_id"

// platformLogoURL is shown when an announcement has no attachment image.
const platformLogoURL = "https://www.pw.live/study/assets/icons/logo.png"

// Common webhook error types used by the Discord and Telegram notifiers

// RateLimitError represents a 429 rate limit error from a provider API.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string // Optional custom message
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("rate limit exceeded (retry after %v)", e.RetryAfter)
}

// ClientError represents a 4xx client error from a provider API.
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string {
	return e.Message
}

// ServerError represents a 5xx server error from a provider API.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// is429Error checks if the error is a rate limit error and extracts retry_after.
func is429Error(err error) (*RateLimitError, bool) {
	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) {
		return rateLimitErr, true
	}
	return nil, false
}

// isRetryableError checks if the error is worth retrying (5xx server errors,
// network errors). Client errors (4xx) are not retryable except for rate
// limits (429), which are handled separately.
func isRetryableError(err error) bool {
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return true
	}

	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return false
	}

	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) {
		return false // Handled by is429Error
	}

	// Network errors, context errors, etc. are retryable
	return true
}

// truncateBody truncates text to maxLength characters. Announcement bodies
// mix English and Devanagari, so the cut counts runes, never bytes.
// If truncated, appends suffix to indicate continuation.
func truncateBody(body string, maxLength int, suffix string) string {
	if text.CountRunes(body) <= maxLength {
		return body
	}

	truncateAt := maxLength - text.CountRunes(suffix)
	if truncateAt < 0 {
		truncateAt = 0
	}

	return text.TruncateRunes(body, truncateAt) + suffix
}
