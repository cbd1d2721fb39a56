package twin

import (
	"encoding/json"
	"fmt"
)

// PropertyType is the declared type of a property in a definition schema.
type PropertyType string

const (
	TypeNumber PropertyType = "number"
	TypeString PropertyType = "string"
	TypeBool   PropertyType = "bool"
)

// Value is a tagged variant holding one runtime property value. The tag
// keeps runtime values aligned with the definition's declared types instead
// of an untyped bag.
type Value struct {
	Type PropertyType
	Num  float64
	Str  string
	Bool bool
}

// Number returns a number-typed value.
func Number(f float64) Value { return Value{Type: TypeNumber, Num: f} }

// String returns a string-typed value.
func String(s string) Value { return Value{Type: TypeString, Str: s} }

// Boolean returns a bool-typed value.
func Boolean(b bool) Value { return Value{Type: TypeBool, Bool: b} }

// MarshalJSON encodes the value as its bare scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Type {
	case TypeNumber:
		return json.Marshal(v.Num)
	case TypeString:
		return json.Marshal(v.Str)
	case TypeBool:
		return json.Marshal(v.Bool)
	}
	return nil, fmt.Errorf("unknown value type %q", v.Type)
}

// UnmarshalJSON decodes a bare scalar into a tagged value.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case float64:
		*v = Number(t)
	case string:
		*v = String(t)
	case bool:
		*v = Boolean(t)
	default:
		return fmt.Errorf("unsupported property value %T", raw)
	}
	return nil
}

// Validate checks a runtime value against the declared spec.
func (s PropertySpec) Validate(v Value) error {
	if s.Type != v.Type {
		return fmt.Errorf("declared %s, got %s", s.Type, v.Type)
	}
	return nil
}
