package notifier

import (
	"context"
	"testing"
	"time"
)

func TestNoOpNotifier_NotifyAnnouncement(t *testing.T) {
	t.Run("TC-1: should return nil without error", func(t *testing.T) {
		// Arrange
		notifier := NewNoOpNotifier()
		ctx := context.Background()

		// Act
		err := notifier.NotifyAnnouncement(ctx, testAnnouncement())

		// Assert
		if err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})

	t.Run("TC-2: should not make any HTTP requests", func(t *testing.T) {
		// Arrange
		// This test verifies the no-op behavior by ensuring the method returns immediately
		// and doesn't trigger any side effects.
		notifier := NewNoOpNotifier()
		ctx := context.Background()

		// Act
		start := time.Now()
		err := notifier.NotifyAnnouncement(ctx, testAnnouncement())
		elapsed := time.Since(start)

		// Assert
		if err != nil {
			t.Errorf("expected nil error, got %v", err)
		}

		// Should complete immediately (< 1ms) since it does nothing
		if elapsed > time.Millisecond {
			t.Errorf("expected no-op to complete immediately, but took %v", elapsed)
		}
	})

	t.Run("TC-3: should work with nil announcement", func(t *testing.T) {
		// Arrange
		notifier := NewNoOpNotifier()
		ctx := context.Background()

		// Act
		err := notifier.NotifyAnnouncement(ctx, nil)

		// Assert
		if err != nil {
			t.Errorf("expected nil error with nil announcement, got %v", err)
		}
	})

	t.Run("TC-4: should work with canceled context", func(t *testing.T) {
		// Arrange
		notifier := NewNoOpNotifier()
		ctx, cancel := context.WithCancel(context.Background())
		cancel() // Cancel immediately

		// Act
		err := notifier.NotifyAnnouncement(ctx, testAnnouncement())

		// Assert - Should still succeed even with canceled context
		if err != nil {
			t.Errorf("expected nil error even with canceled context, got %v", err)
		}
	})
}

func TestNewNoOpNotifier(t *testing.T) {
	t.Run("should create a new NoOpNotifier instance", func(t *testing.T) {
		// Act
		notifier := NewNoOpNotifier()

		// Assert
		if notifier == nil {
			t.Fatal("expected non-nil notifier")
		}
	})
}
