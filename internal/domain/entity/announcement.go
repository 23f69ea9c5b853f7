// Package entity defines the core domain entities and validation logic for the
// application. It contains the fundamental business objects such as Announcement,
// Batch and Credential, along with their validation rules and domain-specific errors.
package entity

import (
	"strings"
	"time"
)

// Announcement represents a single timestamped message published within a batch
// on the remote learning platform. Announcements are fetched fresh every poll
// cycle; only their IDs graduate into the seen-ID ledger.
type Announcement struct {
	// ID is the remote identifier, globally unique within a batch's history.
	ID string

	// BatchID is the identifier of the batch the announcement belongs to.
	BatchID string

	// BatchSlug is the slug of the owning batch (name fallback), attached
	// before delivery so payload footers and per-batch ledger scopes can use it.
	BatchSlug string

	// Body is the announcement text.
	Body string

	// ScheduleTime is the remote ISO-8601 timestamp string. It is compared
	// as a string for chronological ordering; an absent schedule time is the
	// empty string and sorts before all others.
	ScheduleTime string

	// Attachment is the optional attachment. The zero value means "none";
	// check with HasImage rather than branching on field presence.
	Attachment Attachment
}

// Attachment holds the normalized attachment fields of an announcement.
type Attachment struct {
	Name    string
	BaseURL string
	Key     string
}

// HasImage reports whether the attachment carries a displayable image,
// which requires both a base URL and an object key.
func (a Attachment) HasImage() bool {
	return a.BaseURL != "" && a.Key != ""
}

// DisplayURL joins BaseURL and Key with exactly one separating slash,
// trimming any trailing slashes from the base and leading slashes from the key.
//
//	baseUrl="https://cdn.x/" key="/f/img.png" -> "https://cdn.x/f/img.png"
func (a Attachment) DisplayURL() string {
	return strings.TrimRight(a.BaseURL, "/") + "/" + strings.TrimLeft(a.Key, "/")
}

// scheduleDisplayLayout is the human-readable layout used in notification
// payloads, e.g. "02 Jan 2006, 03:04 PM".
const scheduleDisplayLayout = "02 Jan 2006, 03:04 PM"

// ScheduleDisplay formats the schedule time for human display.
// If the raw string cannot be parsed as RFC 3339 the raw string is returned
// unchanged, so a malformed remote timestamp never breaks delivery.
func (a *Announcement) ScheduleDisplay() string {
	if a.ScheduleTime == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, a.ScheduleTime)
	if err != nil {
		return a.ScheduleTime
	}
	return t.Format(scheduleDisplayLayout)
}

// Validate checks that the announcement has the fields required for
// deduplication and delivery.
func (a *Announcement) Validate() error {
	if a.ID == "" {
		return &ValidationError{Field: "ID", Message: "announcement id must not be empty"}
	}
	return nil
}
