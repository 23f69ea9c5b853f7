package deliver

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"pw-announcer/internal/domain/entity"
	"pw-announcer/internal/infra/notifier"
)

// sinkTimeout bounds one sink delivery including its internal retries.
const sinkTimeout = 30 * time.Second

// Result is the delivery outcome for one announcement.
type Result struct {
	// Announcement is the announcement that was processed.
	Announcement entity.Announcement

	// Delivered is true only if every enabled sink accepted the
	// announcement. A failure on any sink leaves it false; other sinks
	// are still attempted.
	Delivered bool
}

// Service delivers batches of new announcements to all enabled sinks.
type Service interface {
	// Deliver sends the given announcements, oldest first, to every
	// enabled sink. Announcements are processed strictly one at a time
	// with pacing in between so that bursts of backlog do not flood the
	// providers.
	//
	// A sink failure never aborts the batch: the remaining sinks and the
	// remaining announcements are still attempted. The returned slice is
	// in delivery order (chronological) and has one Result per input
	// announcement.
	Deliver(ctx context.Context, anns []entity.Announcement) []Result
}

// service is the concrete implementation of Service.
type service struct {
	sinks []Sink
	pacer *notifier.RateLimiter
}

// NewService creates a delivery service over the given sinks. The pacer
// allows one announcement per second, so a backlog of N announcements takes
// about N seconds to drain.
func NewService(sinks []Sink) Service {
	enabled := 0
	for _, s := range sinks {
		if s.IsEnabled() {
			enabled++
		}
	}
	setSinksEnabled(float64(enabled))

	return &service{
		sinks: sinks,
		pacer: notifier.NewRateLimiter(1, 1),
	}
}

// sortChronological orders announcements oldest first, in place. Schedule
// times are ISO-8601 strings, so lexicographic order is chronological order.
// Announcements without a schedule time sort first. The sort is stable:
// announcements with equal schedule times keep their fetch order.
func sortChronological(anns []entity.Announcement) {
	sort.SliceStable(anns, func(i, j int) bool {
		return anns[i].ScheduleTime < anns[j].ScheduleTime
	})
}

// Deliver implements Service.Deliver.
func (s *service) Deliver(ctx context.Context, anns []entity.Announcement) []Result {
	if len(anns) == 0 {
		return nil
	}

	requestID := uuid.New().String()

	ordered := make([]entity.Announcement, len(anns))
	copy(ordered, anns)
	sortChronological(ordered)

	results := make([]Result, len(ordered))
	for i, ann := range ordered {
		results[i] = Result{Announcement: ann}
	}

	slog.Info("Delivering announcements",
		slog.String("request_id", requestID),
		slog.Int("count", len(ordered)))

	for i := range results {
		// Pace consecutive announcements. The first call consumes the
		// burst token and proceeds immediately.
		if err := s.pacer.Allow(ctx); err != nil {
			slog.Warn("Delivery batch aborted",
				slog.String("request_id", requestID),
				slog.Int("remaining", len(results)-i),
				slog.Any("error", err))
			return results
		}

		results[i].Delivered = s.deliverOne(ctx, requestID, &results[i].Announcement)
		recordAnnouncementResult(results[i].Delivered)
	}

	return results
}

// deliverOne sends one announcement to every enabled sink concurrently.
// Returns true only if all of them succeeded. A failing sink does not
// cancel the sends in flight on the other sinks.
func (s *service) deliverOne(ctx context.Context, requestID string, ann *entity.Announcement) bool {
	var g errgroup.Group
	attempted := 0

	for _, sink := range s.sinks {
		if !sink.IsEnabled() {
			continue
		}
		attempted++
		sink := sink

		g.Go(func() error {
			sinkCtx, cancel := context.WithTimeout(ctx, sinkTimeout)
			defer cancel()

			start := time.Now()
			err := sink.Send(sinkCtx, ann)
			duration := time.Since(start)

			if err != nil {
				recordFailure(sink.Name(), duration)
				slog.Warn("Sink delivery failed",
					slog.String("request_id", requestID),
					slog.String("sink", sink.Name()),
					slog.String("announcement_id", ann.ID),
					slog.String("batch", ann.BatchSlug),
					slog.Duration("send_duration", duration),
					slog.Any("error", err))
				return err
			}

			recordSuccess(sink.Name(), duration)
			slog.Info("Sink delivery succeeded",
				slog.String("request_id", requestID),
				slog.String("sink", sink.Name()),
				slog.String("announcement_id", ann.ID),
				slog.Duration("send_duration", duration))
			return nil
		})
	}

	if attempted == 0 {
		slog.Debug("No delivery sinks enabled",
			slog.String("request_id", requestID),
			slog.String("announcement_id", ann.ID))
	}

	return g.Wait() == nil
}
