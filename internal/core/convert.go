package core

// convert.go turns raw CSV fields into typed cells.
//
// Inference follows the pandas reader closely so reports match what analysts
// expect from a dataframe:
//   - The empty field and the usual NA tokens are null; whitespace is not
//   - Integers, decimals, scientific notation and infinities are numbers
//   - Only True/TRUE/true and False/FALSE/false are booleans
//   - Anything else is text, kept verbatim

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a string is a valid numeric format.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

var integerRegex = regexp.MustCompile(`^[+-]?\d+$`)

// nullTokens are the field values read as missing.
var nullTokens = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// IsNullToken reports whether a raw field is read as missing.
func IsNullToken(s string) bool {
	return nullTokens[s]
}

// ParseCell returns the narrowest typed cell for a raw field.
// Surrounding whitespace is tolerated for numbers and booleans; text keeps it.
func ParseCell(s string) Value {
	if IsNullToken(s) {
		return Null()
	}

	t := strings.TrimSpace(s)
	if integerRegex.MatchString(t) {
		if i, err := strconv.ParseInt(t, 10, 64); err == nil {
			return IntValue(i)
		}
	}
	if f, ok := parseFloat(t); ok {
		return FloatValue(f)
	}
	if b, ok := parseBool(t); ok {
		return BoolValue(b)
	}
	return StringValue(s)
}

// parseFloat accepts decimal and scientific notation plus inf/infinity.
// Unlike strconv.ParseFloat alone it rejects hex floats and underscores.
func parseFloat(s string) (float64, bool) {
	if numericRegex.MatchString(s) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil && !isRangeError(err) {
			return 0, false
		}
		return f, true
	}

	switch strings.ToLower(s) {
	case "inf", "+inf", "infinity", "+infinity":
		return math.Inf(1), true
	case "-inf", "-infinity":
		return math.Inf(-1), true
	}
	return 0, false
}

func isRangeError(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

// parseBool accepts the three spellings pandas recognizes for each value.
func parseBool(s string) (bool, bool) {
	switch s {
	case "True", "TRUE", "true":
		return true, true
	case "False", "FALSE", "false":
		return false, true
	default:
		return false, false
	}
}

// inferColumn converts the raw fields of one column into cells.
//
// A column whose values are all integers stays integer; all numbers with at
// least one fraction becomes float; all booleans stays boolean. Any other mix
// keeps each cell's own kind, which makes the column Mixed, and non-string
// cells remember their source text.
func inferColumn(fields []string, present []bool) []Value {
	values := make([]Value, len(fields))
	var ints, floats, bools, strs int

	for i, f := range fields {
		if !present[i] {
			continue
		}
		v := ParseCell(f)
		values[i] = v
		switch v.Kind {
		case KindInt:
			ints++
		case KindFloat:
			floats++
		case KindBool:
			bools++
		case KindString:
			strs++
		}
	}

	switch {
	case bools == 0 && strs == 0 && floats > 0 && ints > 0:
		for i, v := range values {
			if v.Kind == KindInt {
				values[i] = FloatValue(float64(v.Int))
			}
		}
	case (ints+floats > 0 && (bools > 0 || strs > 0)) || (bools > 0 && strs > 0):
		for i, v := range values {
			if !v.IsNull() && v.Kind != KindString {
				values[i].raw = fields[i]
			}
		}
	}

	return values
}
