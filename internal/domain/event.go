package domain

import (
	"encoding/json"
	"time"

	"github.com/hearthhub/hub/internal/ids"
)

// EventType enumerates the kinds of domain facts the hub records.
type EventType string

const (
	// EventStateChanged fires when an entity's state actually changes.
	EventStateChanged EventType = "StateChanged"
	// EventEntityCreated fires when a new entity is registered.
	EventEntityCreated EventType = "EntityCreated"
	// EventEntityDeleted fires when an entity is removed.
	EventEntityDeleted EventType = "EntityDeleted"
	// EventAttributeChanged fires when attributes change without a state change.
	EventAttributeChanged EventType = "AttributeChanged"
	// EventAutomationTriggered fires after an automation's actions run.
	EventAutomationTriggered EventType = "AutomationTriggered"
	// EventServiceCalled fires when a service call is dispatched.
	EventServiceCalled EventType = "ServiceCalled"
)

// Event is an immutable record of a domain fact, with a wire shape of
// {"id","event_type","entity_id","timestamp","data"}.
type Event struct {
	ID        ids.EventID     `json:"id"`
	Type      EventType       `json:"event_type"`
	EntityID  *ids.EntityID   `json:"entity_id"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEvent builds an Event with a fresh ID and the given timestamp,
// marshaling data to JSON. A marshal failure falls back to `{}` since
// events must always be constructible from well-formed domain data.
func NewEvent(eventType EventType, entityID *ids.EntityID, data any, at time.Time) Event {
	raw, err := json.Marshal(data)
	if err != nil || raw == nil {
		raw = json.RawMessage("{}")
	}
	return Event{
		ID:        ids.NewEventID(),
		Type:      eventType,
		EntityID:  entityID,
		Timestamp: at,
		Data:      raw,
	}
}

// StateChangeData is the conventional payload for a StateChanged event:
// lowercase "from"/"to" state strings.
type StateChangeData struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// DataString extracts a string field from the event's JSON data payload,
// returning ok=false if the field is absent or not a string.
func (e Event) DataString(field string) (string, bool) {
	var m map[string]any
	if err := json.Unmarshal(e.Data, &m); err != nil {
		return "", false
	}
	v, ok := m[field]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
