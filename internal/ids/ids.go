// Package ids defines typed identifier newtypes backed by UUIDs.
//
// Each ID type wraps a google/uuid.UUID so that, for example, an
// EntityID and a DeviceID are not interchangeable at compile time even
// though both are 128-bit UUIDs underneath.
package ids

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
)

// EntityID uniquely identifies an Entity.
type EntityID struct{ uuid.UUID }

// DeviceID uniquely identifies a Device.
type DeviceID struct{ uuid.UUID }

// AreaID uniquely identifies an Area.
type AreaID struct{ uuid.UUID }

// AutomationID uniquely identifies an Automation.
type AutomationID struct{ uuid.UUID }

// EventID uniquely identifies an Event.
type EventID struct{ uuid.UUID }

// HistoryID uniquely identifies an EntityHistory record.
type HistoryID struct{ uuid.UUID }

// NewEntityID generates a fresh random EntityID.
func NewEntityID() EntityID { return EntityID{uuid.New()} }

// NewDeviceID generates a fresh random DeviceID.
func NewDeviceID() DeviceID { return DeviceID{uuid.New()} }

// NewAreaID generates a fresh random AreaID.
func NewAreaID() AreaID { return AreaID{uuid.New()} }

// NewAutomationID generates a fresh random AutomationID.
func NewAutomationID() AutomationID { return AutomationID{uuid.New()} }

// NewEventID generates a fresh random EventID.
func NewEventID() EventID { return EventID{uuid.New()} }

// NewHistoryID generates a fresh random HistoryID.
func NewHistoryID() HistoryID { return HistoryID{uuid.New()} }

// ParseEntityID parses a canonical UUID string into an EntityID.
func ParseEntityID(s string) (EntityID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return EntityID{}, fmt.Errorf("parse entity id %q: %w", s, err)
	}
	return EntityID{u}, nil
}

// ParseDeviceID parses a canonical UUID string into a DeviceID.
func ParseDeviceID(s string) (DeviceID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return DeviceID{}, fmt.Errorf("parse device id %q: %w", s, err)
	}
	return DeviceID{u}, nil
}

// ParseAreaID parses a canonical UUID string into an AreaID.
func ParseAreaID(s string) (AreaID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return AreaID{}, fmt.Errorf("parse area id %q: %w", s, err)
	}
	return AreaID{u}, nil
}

// ParseAutomationID parses a canonical UUID string into an AutomationID.
func ParseAutomationID(s string) (AutomationID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return AutomationID{}, fmt.Errorf("parse automation id %q: %w", s, err)
	}
	return AutomationID{u}, nil
}

// ParseEventID parses a canonical UUID string into an EventID.
func ParseEventID(s string) (EventID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return EventID{}, fmt.Errorf("parse event id %q: %w", s, err)
	}
	return EventID{u}, nil
}

// ParseHistoryID parses a canonical UUID string into a HistoryID.
func ParseHistoryID(s string) (HistoryID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return HistoryID{}, fmt.Errorf("parse history id %q: %w", s, err)
	}
	return HistoryID{u}, nil
}

// IsZero reports whether the ID is the unset zero value.
func (id EntityID) IsZero() bool { return id.UUID == uuid.Nil }

// IsZero reports whether the ID is the unset zero value.
func (id DeviceID) IsZero() bool { return id.UUID == uuid.Nil }

// IsZero reports whether the ID is the unset zero value.
func (id AreaID) IsZero() bool { return id.UUID == uuid.Nil }

// IsZero reports whether the ID is the unset zero value.
func (id AutomationID) IsZero() bool { return id.UUID == uuid.Nil }

// IsZero reports whether the ID is the unset zero value.
func (id EventID) IsZero() bool { return id.UUID == uuid.Nil }

// IsZero reports whether the ID is the unset zero value.
func (id HistoryID) IsZero() bool { return id.UUID == uuid.Nil }

// MarshalJSON renders the ID as a canonical, hyphenated UUID string.
func (id EntityID) MarshalJSON() ([]byte, error) { return marshalUUID(id.UUID) }

// UnmarshalJSON parses a canonical UUID string into the ID.
func (id *EntityID) UnmarshalJSON(b []byte) error { return unmarshalUUID(b, &id.UUID) }

// MarshalJSON renders the ID as a canonical, hyphenated UUID string.
func (id DeviceID) MarshalJSON() ([]byte, error) { return marshalUUID(id.UUID) }

// UnmarshalJSON parses a canonical UUID string into the ID.
func (id *DeviceID) UnmarshalJSON(b []byte) error { return unmarshalUUID(b, &id.UUID) }

// MarshalJSON renders the ID as a canonical, hyphenated UUID string.
func (id AreaID) MarshalJSON() ([]byte, error) { return marshalUUID(id.UUID) }

// UnmarshalJSON parses a canonical UUID string into the ID.
func (id *AreaID) UnmarshalJSON(b []byte) error { return unmarshalUUID(b, &id.UUID) }

// MarshalJSON renders the ID as a canonical, hyphenated UUID string.
func (id AutomationID) MarshalJSON() ([]byte, error) { return marshalUUID(id.UUID) }

// UnmarshalJSON parses a canonical UUID string into the ID.
func (id *AutomationID) UnmarshalJSON(b []byte) error { return unmarshalUUID(b, &id.UUID) }

// MarshalJSON renders the ID as a canonical, hyphenated UUID string.
func (id EventID) MarshalJSON() ([]byte, error) { return marshalUUID(id.UUID) }

// UnmarshalJSON parses a canonical UUID string into the ID.
func (id *EventID) UnmarshalJSON(b []byte) error { return unmarshalUUID(b, &id.UUID) }

// MarshalJSON renders the ID as a canonical, hyphenated UUID string.
func (id HistoryID) MarshalJSON() ([]byte, error) { return marshalUUID(id.UUID) }

// UnmarshalJSON parses a canonical UUID string into the ID.
func (id *HistoryID) UnmarshalJSON(b []byte) error { return unmarshalUUID(b, &id.UUID) }

func marshalUUID(u uuid.UUID) ([]byte, error) {
	return []byte(`"` + u.String() + `"`), nil
}

func unmarshalUUID(b []byte, u *uuid.UUID) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return fmt.Errorf("unmarshal uuid %q: %w", s, err)
	}
	*u = parsed
	return nil
}

// Value implements driver.Valuer so IDs can be used directly with database/sql.
func (id EntityID) Value() (driver.Value, error) { return id.UUID.String(), nil }

// Value implements driver.Valuer so IDs can be used directly with database/sql.
func (id DeviceID) Value() (driver.Value, error) { return id.UUID.String(), nil }

// Value implements driver.Valuer so IDs can be used directly with database/sql.
func (id AreaID) Value() (driver.Value, error) { return id.UUID.String(), nil }

// Value implements driver.Valuer so IDs can be used directly with database/sql.
func (id AutomationID) Value() (driver.Value, error) { return id.UUID.String(), nil }

// Value implements driver.Valuer so IDs can be used directly with database/sql.
func (id EventID) Value() (driver.Value, error) { return id.UUID.String(), nil }

// Value implements driver.Valuer so IDs can be used directly with database/sql.
func (id HistoryID) Value() (driver.Value, error) { return id.UUID.String(), nil }
