package history

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hearthhub/hub/internal/hublog"
	"github.com/hearthhub/hub/internal/ports"
)

// DefaultRetentionCron is the retention task's default cadence: once a
// day at midnight.
const DefaultRetentionCron = "@daily"

// RetentionScheduler runs the purge_before(now - window) task on a
// robfig/cron schedule, the same scheduling library the domain package
// uses to validate TimePattern triggers (internal/domain/cron.go).
// The window can be adjusted while the scheduler runs; the new value
// applies from the next tick.
type RetentionScheduler struct {
	cron *cron.Cron

	mu     sync.Mutex
	window time.Duration
}

// NewRetentionScheduler builds a scheduler that purges history older
// than window each time expr fires. expr is a standard five-field cron
// expression or one of cron's "@daily"/"@hourly" shorthands.
func NewRetentionScheduler(history ports.EntityHistoryRepo, window time.Duration, expr string, log hublog.Logger) (*RetentionScheduler, error) {
	log = log.With("component", "retention-scheduler")
	s := &RetentionScheduler{cron: cron.New(), window: window}
	_, err := s.cron.AddFunc(expr, func() {
		purgeOnce(context.Background(), history, s.Window(), time.Now().UTC(), log)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Window returns the current retention window.
func (s *RetentionScheduler) Window() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window
}

// SetWindow changes the retention window, taking effect on the next
// scheduled purge.
func (s *RetentionScheduler) SetWindow(window time.Duration) {
	s.mu.Lock()
	s.window = window
	s.mu.Unlock()
}

// Start begins running the schedule in the background.
func (s *RetentionScheduler) Start() { s.cron.Start() }

// Stop halts the schedule and waits for any in-flight run to finish.
func (s *RetentionScheduler) Stop() { <-s.cron.Stop().Done() }
