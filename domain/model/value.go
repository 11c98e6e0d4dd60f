package model

import (
	"fmt"
	"strconv"
	"time"
)

// Kind classifies a cell value at the collaborator boundary.
type Kind int

const (
	// KindNull is a missing value
	KindNull Kind = iota
	// KindString is a text value
	KindString
	// KindInteger is a signed integer value
	KindInteger
	// KindFloat is a floating point value
	KindFloat
	// KindBool is a boolean value
	KindBool
	// KindTime is a date/time value
	KindTime
	// KindBytes is a binary value
	KindBytes
	// KindOther is any value the model has no dedicated kind for
	KindOther
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindBytes:
		return "bytes"
	default:
		return "other"
	}
}

// Value is a single cell. The zero Value is null.
type Value struct {
	kind Kind
	raw  any
}

// Null returns the missing value.
func Null() Value {
	return Value{}
}

// StringValue wraps a text cell.
func StringValue(s string) Value {
	return Value{kind: KindString, raw: s}
}

// IntValue wraps an integer cell.
func IntValue(i int64) Value {
	return Value{kind: KindInteger, raw: i}
}

// FloatValue wraps a floating point cell.
func FloatValue(f float64) Value {
	return Value{kind: KindFloat, raw: f}
}

// BoolValue wraps a boolean cell.
func BoolValue(b bool) Value {
	return Value{kind: KindBool, raw: b}
}

// TimeValue wraps a date/time cell.
func TimeValue(t time.Time) Value {
	return Value{kind: KindTime, raw: t}
}

// OtherValue wraps a cell of a type the model does not name, such as a
// decimal or a nested list. It is never a string, even if v is one.
func OtherValue(v any) Value {
	if v == nil {
		return Null()
	}
	return Value{kind: KindOther, raw: v}
}

// NewValue classifies an arbitrary Go value, such as one scanned from database/sql.
func NewValue(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case string:
		return StringValue(x)
	case []byte:
		if x == nil {
			return Null()
		}
		return Value{kind: KindBytes, raw: x}
	case int:
		return IntValue(int64(x))
	case int8:
		return IntValue(int64(x))
	case int16:
		return IntValue(int64(x))
	case int32:
		return IntValue(int64(x))
	case int64:
		return IntValue(x)
	case uint8:
		return IntValue(int64(x))
	case uint16:
		return IntValue(int64(x))
	case uint32:
		return IntValue(int64(x))
	case float32:
		return FloatValue(float64(x))
	case float64:
		return FloatValue(x)
	case bool:
		return BoolValue(x)
	case time.Time:
		return TimeValue(x)
	default:
		return Value{kind: KindOther, raw: v}
	}
}

// Kind returns the kind of the value
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is missing
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Str returns the text of a string value. ok is false for every other kind.
func (v Value) Str() (s string, ok bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.raw.(string), true
}

// Time returns the instant of a time value. ok is false for every other kind.
func (v Value) Time() (t time.Time, ok bool) {
	if v.kind != KindTime {
		return time.Time{}, false
	}
	return v.raw.(time.Time), true
}

// Any returns the wrapped Go value, nil for null.
func (v Value) Any() any {
	return v.raw
}

// String formats the value for display.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "<null>"
	case KindString:
		return v.raw.(string)
	case KindInteger:
		return strconv.FormatInt(v.raw.(int64), 10)
	case KindFloat:
		return strconv.FormatFloat(v.raw.(float64), 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.raw.(bool))
	case KindTime:
		return v.raw.(time.Time).Format(time.RFC3339Nano)
	case KindBytes:
		return fmt.Sprintf("%x", v.raw.([]byte))
	default:
		return fmt.Sprint(v.raw)
	}
}
