package deliver

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pw-announcer/internal/domain/entity"
)

// fakeSink records every announcement it receives and fails on demand.
type fakeSink struct {
	name    string
	enabled bool
	err     error
	failIDs map[string]bool

	mu       sync.Mutex
	received []string
}

func (f *fakeSink) Name() string    { return f.name }
func (f *fakeSink) IsEnabled() bool { return f.enabled }

func (f *fakeSink) Send(ctx context.Context, ann *entity.Announcement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, ann.ID)
	if f.err != nil {
		return f.err
	}
	if f.failIDs[ann.ID] {
		return errors.New("send failed")
	}
	return nil
}

func ann(id, schedule string) entity.Announcement {
	return entity.Announcement{
		ID:           id,
		BatchID:      "batch-1",
		BatchSlug:    "lakshya-jee-2026",
		Body:         "Body of " + id,
		ScheduleTime: schedule,
	}
}

func TestSortChronological(t *testing.T) {
	t.Run("should order oldest first", func(t *testing.T) {
		// Arrange
		anns := []entity.Announcement{
			ann("a3", "2026-03-15T11:00:00.000Z"),
			ann("a1", "2026-03-15T09:00:00.000Z"),
			ann("a2", "2026-03-15T10:00:00.000Z"),
		}

		// Act
		sortChronological(anns)

		// Assert
		got := []string{anns[0].ID, anns[1].ID, anns[2].ID}
		want := []string{"a1", "a2", "a3"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should place announcements without schedule time first", func(t *testing.T) {
		// Arrange
		anns := []entity.Announcement{
			ann("a2", "2026-03-15T10:00:00.000Z"),
			ann("a1", ""),
		}

		// Act
		sortChronological(anns)

		// Assert
		if anns[0].ID != "a1" {
			t.Errorf("expected announcement without schedule time first, got %q", anns[0].ID)
		}
	})

	t.Run("should keep fetch order for equal schedule times", func(t *testing.T) {
		// Arrange
		anns := []entity.Announcement{
			ann("first", "2026-03-15T10:00:00.000Z"),
			ann("second", "2026-03-15T10:00:00.000Z"),
			ann("third", "2026-03-15T10:00:00.000Z"),
		}

		// Act
		sortChronological(anns)

		// Assert
		got := []string{anns[0].ID, anns[1].ID, anns[2].ID}
		want := []string{"first", "second", "third"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("stable order violated (-want +got):\n%s", diff)
		}
	})
}

func TestService_Deliver(t *testing.T) {
	t.Run("TC-1: should deliver in chronological order to all sinks", func(t *testing.T) {
		// Arrange
		discord := &fakeSink{name: "discord", enabled: true}
		telegram := &fakeSink{name: "telegram", enabled: true}
		svc := NewService([]Sink{discord, telegram})

		anns := []entity.Announcement{
			ann("a3", "2026-03-15T11:00:00.000Z"),
			ann("a1", "2026-03-15T09:00:00.000Z"),
			ann("a2", "2026-03-15T10:00:00.000Z"),
		}

		// Act
		results := svc.Deliver(context.Background(), anns)

		// Assert
		if len(results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(results))
		}
		for i, r := range results {
			if !r.Delivered {
				t.Errorf("expected result %d to be delivered", i)
			}
		}

		wantOrder := []string{"a1", "a2", "a3"}
		if diff := cmp.Diff(wantOrder, discord.received); diff != "" {
			t.Errorf("discord order mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(wantOrder, telegram.received); diff != "" {
			t.Errorf("telegram order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("TC-2: should isolate sink failures and keep delivering", func(t *testing.T) {
		// Arrange
		discord := &fakeSink{name: "discord", enabled: true}
		telegram := &fakeSink{name: "telegram", enabled: true, failIDs: map[string]bool{"a1": true}}
		svc := NewService([]Sink{discord, telegram})

		anns := []entity.Announcement{
			ann("a1", "2026-03-15T09:00:00.000Z"),
			ann("a2", "2026-03-15T10:00:00.000Z"),
		}

		// Act
		results := svc.Deliver(context.Background(), anns)

		// Assert
		if results[0].Delivered {
			t.Error("expected a1 to be marked undelivered (telegram failed)")
		}
		if !results[1].Delivered {
			t.Error("expected a2 to be delivered")
		}

		// Both sinks still saw both announcements
		if len(discord.received) != 2 {
			t.Errorf("expected discord to receive 2 announcements, got %d", len(discord.received))
		}
		if len(telegram.received) != 2 {
			t.Errorf("expected telegram to receive 2 announcements, got %d", len(telegram.received))
		}
	})

	t.Run("TC-3: should skip disabled sinks", func(t *testing.T) {
		// Arrange
		discord := &fakeSink{name: "discord", enabled: true}
		telegram := &fakeSink{name: "telegram", enabled: false, err: errors.New("should not be called")}
		svc := NewService([]Sink{discord, telegram})

		anns := []entity.Announcement{ann("a1", "2026-03-15T09:00:00.000Z")}

		// Act
		results := svc.Deliver(context.Background(), anns)

		// Assert
		if !results[0].Delivered {
			t.Error("expected delivery to succeed with only discord enabled")
		}
		if len(telegram.received) != 0 {
			t.Errorf("expected disabled sink to be skipped, got %d sends", len(telegram.received))
		}
	})

	t.Run("TC-4: should return nil for empty input", func(t *testing.T) {
		// Arrange
		svc := NewService([]Sink{&fakeSink{name: "discord", enabled: true}})

		// Act
		results := svc.Deliver(context.Background(), nil)

		// Assert
		if results != nil {
			t.Errorf("expected nil results, got %v", results)
		}
	})

	t.Run("TC-5: should abort batch on canceled context", func(t *testing.T) {
		// Arrange
		discord := &fakeSink{name: "discord", enabled: true}
		svc := NewService([]Sink{discord})

		ctx, cancel := context.WithCancel(context.Background())
		cancel() // Cancel before delivering

		anns := []entity.Announcement{
			ann("a1", "2026-03-15T09:00:00.000Z"),
			ann("a2", "2026-03-15T10:00:00.000Z"),
		}

		// Act
		results := svc.Deliver(ctx, anns)

		// Assert
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		for i, r := range results {
			if r.Delivered {
				t.Errorf("expected result %d to be undelivered after cancellation", i)
			}
		}
		if len(discord.received) != 0 {
			t.Errorf("expected no sends on canceled context, got %d", len(discord.received))
		}
	})

	t.Run("TC-6: should not mutate the input slice order", func(t *testing.T) {
		// Arrange
		svc := NewService([]Sink{&fakeSink{name: "discord", enabled: true}})

		anns := []entity.Announcement{
			ann("a2", "2026-03-15T10:00:00.000Z"),
			ann("a1", "2026-03-15T09:00:00.000Z"),
		}

		// Act
		svc.Deliver(context.Background(), anns)

		// Assert
		if anns[0].ID != "a2" || anns[1].ID != "a1" {
			t.Errorf("expected input slice untouched, got [%s %s]", anns[0].ID, anns[1].ID)
		}
	})
}
