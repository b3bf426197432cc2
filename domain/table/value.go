package table

import (
	"strconv"
)

// Value represents a single typed cell with deterministic coercion
type Value struct {
	Type      ValueType `json:"type"`
	StringVal *string   `json:"string_val,omitempty"`
	IntVal    *int64    `json:"int_val,omitempty"`
	FloatVal  *float64  `json:"float_val,omitempty"`
	IsMissing bool      `json:"is_missing"`
}

// ValueType defines the storage type for cell values
type ValueType string

const (
	ValueTypeString  ValueType = "string"
	ValueTypeInt     ValueType = "int"
	ValueTypeFloat   ValueType = "float"
	ValueTypeMissing ValueType = "missing"
)

// NewStringValue creates a string cell; empty strings collapse to missing
func NewStringValue(s string) Value {
	if s == "" {
		return NewMissingValue()
	}
	return Value{Type: ValueTypeString, StringVal: &s}
}

// NewIntValue creates an integer cell
func NewIntValue(n int64) Value {
	return Value{Type: ValueTypeInt, IntVal: &n}
}

// NewFloatValue creates a floating-point cell
func NewFloatValue(f float64) Value {
	return Value{Type: ValueTypeFloat, FloatVal: &f}
}

// NewMissingValue creates the missing-value marker
func NewMissingValue() Value {
	return Value{Type: ValueTypeMissing, IsMissing: true}
}

// String returns the cell rendered for output; missing renders empty
func (v Value) String() string {
	switch v.Type {
	case ValueTypeString:
		if v.StringVal != nil {
			return *v.StringVal
		}
	case ValueTypeInt:
		if v.IntVal != nil {
			return strconv.FormatInt(*v.IntVal, 10)
		}
	case ValueTypeFloat:
		if v.FloatVal != nil {
			// plain decimal notation; operators review the CSV by hand and
			// cell-density magnitudes must not switch to scientific form
			return strconv.FormatFloat(*v.FloatVal, 'f', -1, 64)
		}
	}
	return ""
}

// AsString returns the string value, or empty string if not a string
func (v Value) AsString() string {
	if v.StringVal != nil {
		return *v.StringVal
	}
	return ""
}

// AsInt returns the integer value, or 0 if not an integer
func (v Value) AsInt() int64 {
	if v.IntVal != nil {
		return *v.IntVal
	}
	return 0
}

// AsFloat returns the floating-point value, or 0 if not a float
func (v Value) AsFloat() float64 {
	if v.FloatVal != nil {
		return *v.FloatVal
	}
	return 0.0
}

// IsInt returns true if the cell holds a valid integer
func (v Value) IsInt() bool {
	return v.Type == ValueTypeInt && v.IntVal != nil
}

// IsFloat returns true if the cell holds a valid float
func (v Value) IsFloat() bool {
	return v.Type == ValueTypeFloat && v.FloatVal != nil
}

// IsString returns true if the cell holds a valid string
func (v Value) IsString() bool {
	return v.Type == ValueTypeString && v.StringVal != nil
}

// Numeric coerces the cell to a float64. Missing cells report ok=false with
// no error; string cells that do not parse as numbers report ok=false as well,
// so callers decide whether that is fatal.
func (v Value) Numeric() (f float64, ok bool) {
	switch v.Type {
	case ValueTypeInt:
		if v.IntVal != nil {
			return float64(*v.IntVal), true
		}
	case ValueTypeFloat:
		if v.FloatVal != nil {
			return *v.FloatVal, true
		}
	case ValueTypeString:
		if v.StringVal != nil {
			if parsed, err := strconv.ParseFloat(*v.StringVal, 64); err == nil {
				return parsed, true
			}
		}
	}
	return 0, false
}
