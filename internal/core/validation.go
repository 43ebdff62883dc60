package core

// validation.go provides the basic rule checks run over every cell.
//
// Three rules apply, each to a different set of columns:
//  1. Empty strings: text columns, cells that are blank once trimmed
//  2. Negative values: numeric columns, cells below zero
//  3. Invalid emails: columns named like "email", cells not shaped like an address
//
// Nulls are never counted by any rule.

import (
	"regexp"
	"strings"
)

// emailRegex matches name@domain.tld where each part is made of word
// characters, dots and hyphens. Word characters include Unicode letters
// and digits. A single trailing newline is tolerated, as Python's $ does.
var emailRegex = regexp.MustCompile(`^[\p{L}\p{N}_.-]+@[\p{L}\p{N}_.-]+\.[\p{L}\p{N}_]+\n?\z`)

// ColumnCount is the number of rule violations in one column.
type ColumnCount struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
}

// ValidationReport groups violations by rule. Columns without violations
// are omitted from each list.
type ValidationReport struct {
	EmptyStrings   []ColumnCount `json:"empty_strings"`
	NegativeValues []ColumnCount `json:"negative_values"`
	InvalidEmails  []ColumnCount `json:"invalid_emails"`
}

// IsEmailColumn reports whether a column is checked as an email address.
func IsEmailColumn(name string) bool {
	return strings.Contains(strings.ToLower(name), "email")
}

// ValidEmail reports whether s is shaped like an email address.
func ValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// BasicValidation runs every rule over the table.
func BasicValidation(t *Table) ValidationReport {
	report := ValidationReport{
		EmptyStrings:   []ColumnCount{},
		NegativeValues: []ColumnCount{},
		InvalidEmails:  []ColumnCount{},
	}

	for _, c := range t.Columns {
		kind := c.Kind()

		if kind.IsText() {
			if n := countCells(c, isBlankString); n > 0 {
				report.EmptyStrings = append(report.EmptyStrings, ColumnCount{c.Name, n})
			}
		}

		if kind.IsNumeric() {
			if n := countCells(c, isNegative); n > 0 {
				report.NegativeValues = append(report.NegativeValues, ColumnCount{c.Name, n})
			}
		}

		if IsEmailColumn(c.Name) {
			if n := countCells(c, isInvalidEmail); n > 0 {
				report.InvalidEmails = append(report.InvalidEmails, ColumnCount{c.Name, n})
			}
		}
	}

	return report
}

func countCells(c *Column, match func(Value) bool) int {
	n := 0
	for _, v := range c.Values {
		if match(v) {
			n++
		}
	}
	return n
}

func isBlankString(v Value) bool {
	return v.Kind == KindString && strings.TrimSpace(v.Str) == ""
}

func isNegative(v Value) bool {
	f, ok := v.Number()
	return ok && f < 0
}

func isInvalidEmail(v Value) bool {
	return !v.IsNull() && !ValidEmail(v.String())
}
