package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AttributeKind discriminates the concrete type held by an AttributeValue.
type AttributeKind int

const (
	// AttributeBool holds a bool.
	AttributeBool AttributeKind = iota
	// AttributeInt holds a signed 64-bit integer.
	AttributeInt
	// AttributeFloat holds an IEEE-754 double.
	AttributeFloat
	// AttributeString holds a string.
	AttributeString
	// AttributeJSON holds arbitrary JSON (object, array, or null).
	AttributeJSON
)

// AttributeValue is a typed attribute value attached to an Entity.
// It mirrors an externally untagged sum type: on the wire it serializes
// as the plain JSON value (a bool, a number, a string, or arbitrary
// JSON), never as a tagged envelope.
type AttributeValue struct {
	kind    AttributeKind
	boolV   bool
	intV    int64
	floatV  float64
	stringV string
	jsonV   json.RawMessage
}

// BoolAttribute wraps a bool.
func BoolAttribute(v bool) AttributeValue { return AttributeValue{kind: AttributeBool, boolV: v} }

// IntAttribute wraps a signed 64-bit integer.
func IntAttribute(v int64) AttributeValue { return AttributeValue{kind: AttributeInt, intV: v} }

// FloatAttribute wraps an IEEE-754 double.
func FloatAttribute(v float64) AttributeValue { return AttributeValue{kind: AttributeFloat, floatV: v} }

// StringAttribute wraps a string.
func StringAttribute(v string) AttributeValue {
	return AttributeValue{kind: AttributeString, stringV: v}
}

// JSONAttribute wraps an arbitrary JSON-encodable value.
func JSONAttribute(v any) (AttributeValue, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return AttributeValue{}, fmt.Errorf("marshal json attribute: %w", err)
	}
	return AttributeValue{kind: AttributeJSON, jsonV: raw}, nil
}

// Kind returns the concrete type held.
func (a AttributeValue) Kind() AttributeKind { return a.kind }

// Bool returns the wrapped bool and whether the value is actually a bool.
func (a AttributeValue) Bool() (bool, bool) { return a.boolV, a.kind == AttributeBool }

// Int returns the wrapped int64 and whether the value is actually an int.
func (a AttributeValue) Int() (int64, bool) { return a.intV, a.kind == AttributeInt }

// Float returns the wrapped float64 and whether the value is actually a float.
func (a AttributeValue) Float() (float64, bool) { return a.floatV, a.kind == AttributeFloat }

// String returns the wrapped string and whether the value is actually a string.
func (a AttributeValue) String() (string, bool) { return a.stringV, a.kind == AttributeString }

// Raw returns the underlying JSON encoding of the value, regardless of kind.
func (a AttributeValue) Raw() (json.RawMessage, error) {
	return a.MarshalJSON()
}

// Equal reports whether a and b hold the same kind and value.
func (a AttributeValue) Equal(b AttributeValue) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case AttributeBool:
		return a.boolV == b.boolV
	case AttributeInt:
		return a.intV == b.intV
	case AttributeFloat:
		return a.floatV == b.floatV
	case AttributeString:
		return a.stringV == b.stringV
	case AttributeJSON:
		return bytes.Equal(a.jsonV, b.jsonV)
	default:
		return false
	}
}

// MarshalJSON renders the attribute as its plain JSON value.
func (a AttributeValue) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case AttributeBool:
		return json.Marshal(a.boolV)
	case AttributeInt:
		return json.Marshal(a.intV)
	case AttributeFloat:
		return json.Marshal(a.floatV)
	case AttributeString:
		return json.Marshal(a.stringV)
	case AttributeJSON:
		if len(a.jsonV) == 0 {
			return []byte("null"), nil
		}
		return a.jsonV, nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON infers the concrete kind from the shape of the JSON value:
// booleans become AttributeBool, integral numbers become AttributeInt,
// non-integral numbers become AttributeFloat, strings become
// AttributeString, and anything else (object, array, null) becomes
// AttributeJSON.
func (a *AttributeValue) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	switch {
	case bytes.Equal(trimmed, []byte("true")), bytes.Equal(trimmed, []byte("false")):
		var v bool
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return fmt.Errorf("unmarshal bool attribute: %w", err)
		}
		*a = BoolAttribute(v)
		return nil
	case len(trimmed) > 0 && trimmed[0] == '"':
		var v string
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return fmt.Errorf("unmarshal string attribute: %w", err)
		}
		*a = StringAttribute(v)
		return nil
	case len(trimmed) > 0 && (trimmed[0] == '-' || (trimmed[0] >= '0' && trimmed[0] <= '9')):
		var asInt int64
		if err := json.Unmarshal(trimmed, &asInt); err == nil {
			if roundTrips(trimmed, asInt) {
				*a = IntAttribute(asInt)
				return nil
			}
		}
		var asFloat float64
		if err := json.Unmarshal(trimmed, &asFloat); err != nil {
			return fmt.Errorf("unmarshal numeric attribute: %w", err)
		}
		*a = FloatAttribute(asFloat)
		return nil
	default:
		cp := make(json.RawMessage, len(trimmed))
		copy(cp, trimmed)
		*a = AttributeValue{kind: AttributeJSON, jsonV: cp}
		return nil
	}
}

// roundTrips reports whether re-encoding asInt produces the exact same
// bytes as the source. Literals such as "3.0" or "3e2" never reach it,
// because the int64 unmarshal already fails for them; the guard
// rejects "-0", which parses as int64 0 but re-encodes as "0", so it
// is kept as a float.
func roundTrips(src []byte, v int64) bool {
	re, err := json.Marshal(v)
	if err != nil {
		return false
	}
	return bytes.Equal(bytes.TrimSpace(src), re)
}
