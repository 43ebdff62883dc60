package core

// quality.go holds the read-only checks run against a loaded table.
//
// Every check is a pure function of the table: it never mutates its input,
// never fails for a well-formed table and returns an empty result when
// nothing is found. Results are slices in column order because column names
// are not guaranteed unique once standardized.

import (
	"strconv"
	"strings"
)

// MixedTypesMessage is reported for every column holding more than one kind
// of value.
const MixedTypesMessage = "Mixed types detected"

// outlierSampleSize caps the rows returned per outlier column.
const outlierSampleSize = 5

// MissingValue is the null count for one column.
type MissingValue struct {
	Column  string  `json:"column"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// MissingValues reports every column containing at least one null.
// Percent is count over total rows times 100.
func MissingValues(t *Table) []MissingValue {
	rows := t.NumRows()
	if rows == 0 {
		return []MissingValue{}
	}

	out := []MissingValue{}
	for _, c := range t.Columns {
		n := c.NullCount()
		if n == 0 {
			continue
		}
		out = append(out, MissingValue{
			Column:  c.Name,
			Count:   n,
			Percent: float64(n) / float64(rows) * 100,
		})
	}
	return out
}

// DuplicateReport describes rows repeating an earlier row.
type DuplicateReport struct {
	Count int     `json:"count"`
	Rows  *RowSet `json:"rows"`
}

// Duplicates flags every row identical to an earlier row across all
// columns. The first occurrence of a repeated row is never flagged.
func Duplicates(t *Table) DuplicateReport {
	var rows []int
	for i, dup := range duplicateMask(t) {
		if dup {
			rows = append(rows, i)
		}
	}
	return DuplicateReport{Count: len(rows), Rows: t.RowSet(rows)}
}

// duplicateMask marks rows equal to an earlier row. Shared by the
// duplicate check and the drop_duplicates stage so both agree.
func duplicateMask(t *Table) []bool {
	n := t.NumRows()
	mask := make([]bool, n)
	seen := make(map[string]struct{}, n)

	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.Reset()
		for _, c := range t.Columns {
			writeKey(&sb, c.Values[i])
		}
		key := sb.String()
		if _, ok := seen[key]; ok {
			mask[i] = true
			continue
		}
		seen[key] = struct{}{}
	}
	return mask
}

// writeKey appends an unambiguous encoding of v: kind, length, text.
func writeKey(sb *strings.Builder, v Value) {
	s := v.String()
	sb.WriteByte(byte('0' + v.Kind))
	sb.WriteString(strconv.Itoa(len(s)))
	sb.WriteByte(':')
	sb.WriteString(s)
}

// OutlierReport describes the IQR outliers of one numeric column.
type OutlierReport struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Q1     float64 `json:"q1"`
	Q3     float64 `json:"q3"`
	IQR    float64 `json:"iqr"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
	Sample *RowSet `json:"sample"`
}

// Outliers applies the 1.5 IQR rule to every numeric column. A value is an
// outlier when it lies strictly below Q1-1.5*IQR or strictly above
// Q3+1.5*IQR. The sample holds the first five outlier rows.
func Outliers(t *Table) []OutlierReport {
	out := []OutlierReport{}
	for _, c := range t.Columns {
		if !c.Kind().IsNumeric() {
			continue
		}

		vals, rows := numbers(c)
		q1 := quantile(vals, 0.25)
		q3 := quantile(vals, 0.75)
		iqr := q3 - q1
		lower := q1 - 1.5*iqr
		upper := q3 + 1.5*iqr

		var flagged []int
		for i, v := range vals {
			if v < lower || v > upper {
				flagged = append(flagged, rows[i])
			}
		}
		if len(flagged) == 0 {
			continue
		}

		sample := flagged
		if len(sample) > outlierSampleSize {
			sample = sample[:outlierSampleSize]
		}
		out = append(out, OutlierReport{
			Column: c.Name,
			Count:  len(flagged),
			Q1:     q1,
			Q3:     q3,
			IQR:    iqr,
			Lower:  lower,
			Upper:  upper,
			Sample: t.RowSet(sample),
		})
	}
	return out
}

// MixedTypeReport flags a column holding more than one kind of value.
type MixedTypeReport struct {
	Column  string      `json:"column"`
	Message string      `json:"message"`
	Kinds   []ValueKind `json:"kinds"`
}

// MixedTypes reports columns whose non-null cells span more than one of
// integer, float, boolean and string.
func MixedTypes(t *Table) []MixedTypeReport {
	out := []MixedTypeReport{}
	for _, c := range t.Columns {
		kinds := c.ValueKinds()
		if len(kinds) < 2 {
			continue
		}
		out = append(out, MixedTypeReport{
			Column:  c.Name,
			Message: MixedTypesMessage,
			Kinds:   kinds,
		})
	}
	return out
}
