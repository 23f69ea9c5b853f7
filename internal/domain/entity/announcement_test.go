package entity

import (
	"errors"
	"strings"
	"testing"
)

// TestAttachment_DisplayURL verifies the base/key join produces exactly one
// separating slash regardless of how the remote formats the two halves.
func TestAttachment_DisplayURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		key     string
		want    string
	}{
		{
			name:    "trailing slash on base and leading slash on key",
			baseURL: "https://cdn.x/",
			key:     "/f/img.png",
			want:    "https://cdn.x/f/img.png",
		},
		{
			name:    "no slashes on either side",
			baseURL: "https://cdn.x",
			key:     "f/img.png",
			want:    "https://cdn.x/f/img.png",
		},
		{
			name:    "multiple redundant slashes",
			baseURL: "https://cdn.x//",
			key:     "//f/img.png",
			want:    "https://cdn.x/f/img.png",
		},
		{
			name:    "slash only on base",
			baseURL: "https://cdn.x/",
			key:     "f/img.png",
			want:    "https://cdn.x/f/img.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Attachment{Name: "img.png", BaseURL: tt.baseURL, Key: tt.key}
			if got := a.DisplayURL(); got != tt.want {
				t.Errorf("DisplayURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestAttachment_HasImage verifies that both halves of the URL are required.
func TestAttachment_HasImage(t *testing.T) {
	tests := []struct {
		name       string
		attachment Attachment
		want       bool
	}{
		{name: "zero value", attachment: Attachment{}, want: false},
		{name: "base url only", attachment: Attachment{BaseURL: "https://cdn.x"}, want: false},
		{name: "key only", attachment: Attachment{Key: "f/img.png"}, want: false},
		{name: "complete", attachment: Attachment{BaseURL: "https://cdn.x", Key: "f/img.png"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.attachment.HasImage(); got != tt.want {
				t.Errorf("HasImage() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestAnnouncement_ScheduleDisplay verifies human formatting with raw-string
// fallback for unparseable timestamps.
func TestAnnouncement_ScheduleDisplay(t *testing.T) {
	tests := []struct {
		name         string
		scheduleTime string
		want         string
	}{
		{
			name:         "valid RFC3339 timestamp",
			scheduleTime: "2024-01-02T15:04:00Z",
			want:         "02 Jan 2024, 03:04 PM",
		},
		{
			name:         "morning timestamp",
			scheduleTime: "2024-06-15T09:30:00Z",
			want:         "15 Jun 2024, 09:30 AM",
		},
		{
			name:         "malformed timestamp falls back to raw string",
			scheduleTime: "yesterday-ish",
			want:         "yesterday-ish",
		},
		{
			name:         "empty timestamp",
			scheduleTime: "",
			want:         "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Announcement{ID: "a1", ScheduleTime: tt.scheduleTime}
			if got := a.ScheduleDisplay(); got != tt.want {
				t.Errorf("ScheduleDisplay() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestAnnouncement_Validate verifies that an announcement without an id is rejected.
func TestAnnouncement_Validate(t *testing.T) {
	a := &Announcement{Body: "no id"}
	err := a.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want validation error for missing id")
	}

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Validate() = %T, want *ValidationError", err)
	}
	if vErr.Field != "ID" {
		t.Errorf("ValidationError.Field = %q, want %q", vErr.Field, "ID")
	}
	if got := vErr.Error(); !strings.Contains(got, "field 'ID'") {
		t.Errorf("Error() = %q, want field name included", got)
	}

	a.ID = "a1"
	if err := a.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}
