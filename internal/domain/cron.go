package domain

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// ParseCron validates a standard five-field cron expression, the same
// parser the history recorder's retention scheduler registers entries
// with (internal/history). The core never fires a TimePattern trigger
// itself, but rejecting a malformed pattern at automation
// creation time is still a legitimate domain invariant.
func ParseCron(expr string) (cron.Schedule, error) {
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("parse cron expression: %w", err)
	}
	return sched, nil
}
