package automation

import (
	"context"
	"time"

	"github.com/hearthhub/hub/internal/domain"
	"github.com/hearthhub/hub/internal/ports"
)

// conditionsHold reports whether every condition in conds is satisfied
// at the given instant. An empty list always holds.
func conditionsHold(ctx context.Context, entities ports.EntityRepo, conds []domain.Condition, at time.Time) bool {
	for _, cond := range conds {
		if !conditionHolds(ctx, entities, cond, at) {
			return false
		}
	}
	return true
}

func conditionHolds(ctx context.Context, entities ports.EntityRepo, cond domain.Condition, at time.Time) bool {
	switch cond.Kind {
	case domain.ConditionStateIs:
		entity, ok, err := entities.GetByID(ctx, cond.EntityID)
		if err != nil || !ok {
			// A missing entity yields false, not an error.
			return false
		}
		return entity.State.String() == cond.State
	case domain.ConditionTimeRange:
		return timeInRange(cond.After, cond.Before, at)
	default:
		return false
	}
}

// timeInRange compares the "HH:MM" clock time of at against [after,
// before]. When after <= before the window is same-day; when after >
// before it wraps past midnight. Fixed-width "HH:MM" strings make
// lexicographic comparison equivalent to time-of-day comparison.
func timeInRange(after, before string, at time.Time) bool {
	now := at.Format("15:04")
	if after <= before {
		return after <= now && now <= before
	}
	return now >= after || now <= before
}
