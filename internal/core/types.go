package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueKind is the runtime kind of a single cell.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindInt
	KindFloat
	KindBool
	KindString
)

// String returns the name used in reports ("integer", "float", ...).
func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "boolean"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// MarshalText lets ValueKind appear by name in JSON reports.
func (k ValueKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a name written by MarshalText.
func (k *ValueKind) UnmarshalText(b []byte) error {
	for c := KindNull; c <= KindString; c++ {
		if c.String() == string(b) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown value kind %q", b)
}

// Value is a typed cell. The zero Value is null.
type Value struct {
	Kind  ValueKind
	Int   int64
	Float float64
	Bool  bool
	Str   string

	// raw keeps the source text of a non-string cell loaded into a mixed
	// column, so export writes back what was read.
	raw string
}

// Null returns the missing-value marker.
func Null() Value { return Value{} }

// IntValue returns an integer cell.
func IntValue(i int64) Value { return Value{Kind: KindInt, Int: i} }

// FloatValue returns a floating-point cell.
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// BoolValue returns a boolean cell.
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// StringValue returns a text cell.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// IsNull reports whether v is the missing-value marker.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// IsNumber reports whether v is an integer or float cell.
func (v Value) IsNumber() bool { return v.Kind == KindInt || v.Kind == KindFloat }

// Number returns the numeric value of an integer or float cell.
func (v Value) Number() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

// String returns the text form of the cell as written to CSV.
// Null renders as the empty string, booleans as True/False and integral
// floats keep a trailing ".0".
func (v Value) String() string {
	if v.raw != "" {
		return v.raw
	}
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return formatFloat(v.Float)
	case KindBool:
		if v.Bool {
			return "True"
		}
		return "False"
	case KindString:
		return v.Str
	default:
		return ""
	}
}

// Equal reports whether two cells hold the same kind and the same value.
// Two nulls are equal.
func (v Value) Equal(o Value) bool {
	return v.Kind == o.Kind && v.String() == o.String()
}

// Interface returns the cell as a plain Go value (nil for null).
func (v Value) Interface() any {
	switch v.Kind {
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindBool:
		return v.Bool
	case KindString:
		return v.Str
	default:
		return nil
	}
}

// MarshalJSON encodes the cell as a JSON scalar. Non-finite floats are
// encoded as strings since JSON has no representation for them.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind == KindFloat && (math.IsInf(v.Float, 0) || math.IsNaN(v.Float)) {
		return json.Marshal(v.String())
	}
	return json.Marshal(v.Interface())
}

// formatFloat renders f the way Python's str(float) does for the common range.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	abs := math.Abs(f)
	if f != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// compareValues orders cells naturally: numbers before booleans before
// strings, numbers numerically, false before true, strings bytewise.
// Nulls sort first.
func compareValues(a, b Value) int {
	ra, rb := kindRank(a.Kind), kindRank(b.Kind)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}

	switch {
	case a.IsNumber():
		x, _ := a.Number()
		y, _ := b.Number()
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return strings.Compare(a.String(), b.String())
	case a.Kind == KindBool:
		switch {
		case a.Bool == b.Bool:
			return 0
		case !a.Bool:
			return -1
		}
		return 1
	case a.Kind == KindString:
		return strings.Compare(a.Str, b.Str)
	}
	return 0
}

func kindRank(k ValueKind) int {
	switch k {
	case KindNull:
		return 0
	case KindInt, KindFloat:
		return 1
	case KindBool:
		return 2
	default:
		return 3
	}
}

// ColumnKind is the inferred type of a whole column.
type ColumnKind uint8

const (
	ColumnUnknown ColumnKind = iota // no non-null values
	ColumnNumeric
	ColumnBoolean
	ColumnText
	ColumnMixed
)

func (k ColumnKind) String() string {
	switch k {
	case ColumnUnknown:
		return "unknown"
	case ColumnNumeric:
		return "numeric"
	case ColumnBoolean:
		return "boolean"
	case ColumnText:
		return "text"
	case ColumnMixed:
		return "mixed"
	default:
		return fmt.Sprintf("column_kind(%d)", k)
	}
}

// MarshalText lets ColumnKind appear by name in JSON reports.
func (k ColumnKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a name written by MarshalText.
func (k *ColumnKind) UnmarshalText(b []byte) error {
	for c := ColumnUnknown; c <= ColumnMixed; c++ {
		if c.String() == string(b) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown column kind %q", b)
}

// IsNumeric reports whether statistics (quartiles, medians) apply.
func (k ColumnKind) IsNumeric() bool { return k == ColumnNumeric }

// IsText reports whether the column holds strings (text or mixed).
func (k ColumnKind) IsText() bool { return k == ColumnText || k == ColumnMixed }

// IsCategorical reports whether mode imputation applies.
func (k ColumnKind) IsCategorical() bool {
	return k == ColumnText || k == ColumnMixed || k == ColumnBoolean
}
