package domain

import (
	"time"

	"github.com/hearthhub/hub/internal/huberr"
	"github.com/hearthhub/hub/internal/ids"
)

// now is overridable in tests to pin timestamps.
var now = func() time.Time { return time.Now().UTC() }

// Entity is a single observable/controllable aspect of a Device (one
// light, one sensor reading, one switch).
type Entity struct {
	ID           ids.EntityID              `json:"id"`
	DeviceID     ids.DeviceID              `json:"device_id"`
	EntitySlug   string                    `json:"entity_id"`
	FriendlyName string                    `json:"friendly_name"`
	State        EntityState               `json:"state"`
	Attributes   map[string]AttributeValue `json:"attributes"`
	LastChanged  time.Time                 `json:"last_changed"`
	LastUpdated  time.Time                 `json:"last_updated"`
}

// Validate checks domain invariants: entity_id slug and friendly_name
// must be non-empty, and state must be one of the four known values.
// DeviceID existence is a repository-write-time concern, not checked
// here.
func (e Entity) Validate() error {
	if e.EntitySlug == "" {
		return huberr.Validation("entity", "entity_id slug must not be empty")
	}
	if e.FriendlyName == "" {
		return huberr.Validation("entity", "friendly_name must not be empty")
	}
	if !e.State.Valid() {
		return huberr.Validationf("entity", "invalid state %q", e.State)
	}
	return nil
}

// AttributesEqual reports whether other holds exactly the same set of
// attribute keys with equal values.
func (e Entity) AttributesEqual(other map[string]AttributeValue) bool {
	if len(e.Attributes) != len(other) {
		return false
	}
	for k, v := range e.Attributes {
		ov, ok := other[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// UpdateState applies a new state at the given instant. last_changed is
// bumped only if the state actually changed; last_updated is always
// bumped. Returns whether the state changed.
func (e *Entity) UpdateState(state EntityState, at time.Time) bool {
	changed := e.State != state
	e.State = state
	if changed {
		e.LastChanged = at
	}
	e.LastUpdated = at
	return changed
}

// SetAttribute sets a single attribute and bumps last_updated.
func (e *Entity) SetAttribute(key string, value AttributeValue, at time.Time) {
	if e.Attributes == nil {
		e.Attributes = make(map[string]AttributeValue)
	}
	e.Attributes[key] = value
	e.LastUpdated = at
}

// EntityBuilder builds an Entity step by step, validating on Build.
type EntityBuilder struct {
	e Entity
}

// NewEntityBuilder starts a builder with a fresh ID, Unknown state, and
// an empty attribute map.
func NewEntityBuilder() *EntityBuilder {
	return &EntityBuilder{e: Entity{
		ID:         ids.NewEntityID(),
		State:      StateUnknown,
		Attributes: make(map[string]AttributeValue),
	}}
}

// WithID overrides the generated ID.
func (b *EntityBuilder) WithID(id ids.EntityID) *EntityBuilder {
	b.e.ID = id
	return b
}

// WithDevice sets the owning device.
func (b *EntityBuilder) WithDevice(device ids.DeviceID) *EntityBuilder {
	b.e.DeviceID = device
	return b
}

// WithSlug sets the entity's slug, e.g. "light.desk".
func (b *EntityBuilder) WithSlug(slug string) *EntityBuilder {
	b.e.EntitySlug = slug
	return b
}

// WithFriendlyName sets the human-readable name.
func (b *EntityBuilder) WithFriendlyName(name string) *EntityBuilder {
	b.e.FriendlyName = name
	return b
}

// WithState sets the initial state, overriding the Unknown default.
func (b *EntityBuilder) WithState(state EntityState) *EntityBuilder {
	b.e.State = state
	return b
}

// WithAttribute sets one attribute.
func (b *EntityBuilder) WithAttribute(key string, value AttributeValue) *EntityBuilder {
	b.e.Attributes[key] = value
	return b
}

// Build validates and returns the constructed Entity, stamping
// last_changed and last_updated to the current time.
func (b *EntityBuilder) Build() (Entity, error) {
	if err := b.e.Validate(); err != nil {
		return Entity{}, err
	}
	ts := now()
	b.e.LastChanged = ts
	b.e.LastUpdated = ts
	return b.e, nil
}
