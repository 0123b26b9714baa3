package domain

import (
	"time"

	"github.com/hearthhub/hub/internal/ids"
)

// EntityHistory is an immutable, time-series snapshot of an entity's
// state and attributes at a specific point in time. Created by the
// history recorder; destroyed only by retention pruning.
type EntityHistory struct {
	ID         ids.HistoryID             `json:"id"`
	EntityID   ids.EntityID              `json:"entity_id"`
	State      EntityState               `json:"state"`
	Attributes map[string]AttributeValue `json:"attributes"`
	RecordedAt time.Time                 `json:"recorded_at"`
}

// NewEntityHistory builds an immutable history snapshot, cloning attrs
// so later mutation of the source entity's map cannot alter the record.
func NewEntityHistory(entityID ids.EntityID, state EntityState, attrs map[string]AttributeValue, recordedAt time.Time) EntityHistory {
	cloned := make(map[string]AttributeValue, len(attrs))
	for k, v := range attrs {
		cloned[k] = v
	}
	return EntityHistory{
		ID:         ids.NewHistoryID(),
		EntityID:   entityID,
		State:      state,
		Attributes: cloned,
		RecordedAt: recordedAt,
	}
}
