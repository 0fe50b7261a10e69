package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// PropertyKind discriminates the value variants a graph property may carry.
type PropertyKind int

const (
	PropertyString PropertyKind = iota
	PropertyNumber
	PropertyBool
)

// PropertyValue is a typed property variant. Entity scoring only ever
// matches against string values, so the variant keeps that access type-safe
// instead of duck-typing an interface{} bag.
type PropertyValue struct {
	Kind   PropertyKind
	Str    string
	Number float64
	Bool   bool
}

// StringValue creates a string property.
func StringValue(s string) PropertyValue {
	return PropertyValue{Kind: PropertyString, Str: s}
}

// NumberValue creates a numeric property.
func NumberValue(n float64) PropertyValue {
	return PropertyValue{Kind: PropertyNumber, Number: n}
}

// BoolValue creates a boolean property.
func BoolValue(b bool) PropertyValue {
	return PropertyValue{Kind: PropertyBool, Bool: b}
}

// MarshalJSON renders the underlying variant directly.
func (v PropertyValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case PropertyNumber:
		return json.Marshal(v.Number)
	case PropertyBool:
		return json.Marshal(v.Bool)
	default:
		return json.Marshal(v.Str)
	}
}

// UnmarshalJSON detects the variant from the JSON token type.
func (v *PropertyValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case string:
		*v = StringValue(t)
	case float64:
		*v = NumberValue(t)
	case bool:
		*v = BoolValue(t)
	case nil:
		*v = StringValue("")
	default:
		// Nested structures are flattened to their JSON text form.
		*v = StringValue(string(data))
	}
	return nil
}

// String renders the variant for context text.
func (v PropertyValue) String() string {
	switch v.Kind {
	case PropertyNumber:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", v.Number), "0"), ".")
	case PropertyBool:
		return fmt.Sprintf("%t", v.Bool)
	default:
		return v.Str
	}
}

// Properties is the open property map attached to graph nodes and relations.
type Properties map[string]PropertyValue

// Value implements the driver.Valuer interface for database storage.
func (p Properties) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements the sql.Scanner interface for database retrieval.
func (p *Properties) Scan(value interface{}) error {
	if value == nil {
		*p = Properties{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, p)
}
