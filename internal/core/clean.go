package core

// clean.go applies the cleaning pipeline to a copy of a table.
//
// Stages run in a fixed order, each gated by its own option:
//
//	drop_duplicates -> fill_numeric -> fill_categorical -> trim_whitespace -> standardize_cols
//
// Each stage sees the output of the previous one. The input table is never
// modified.

import (
	"math"
	"regexp"
	"strings"
)

// Option flag names accepted by ParseOptions.
const (
	FlagDropDuplicates  = "drop_duplicates"
	FlagFillNumeric     = "fill_numeric"
	FlagFillCategorical = "fill_categorical"
	FlagTrimWhitespace  = "trim_whitespace"
	FlagStandardizeCols = "standardize_cols"
)

// Options selects the cleaning stages to run. The zero value runs nothing.
type Options struct {
	DropDuplicates  bool `json:"drop_duplicates"`
	FillNumeric     bool `json:"fill_numeric"`
	FillCategorical bool `json:"fill_categorical"`
	TrimWhitespace  bool `json:"trim_whitespace"`
	StandardizeCols bool `json:"standardize_cols"`
}

// ParseOptions builds Options from loosely typed input such as a decoded
// JSON object. Unknown keys and non-boolean values are ignored.
func ParseOptions(raw map[string]any) Options {
	var opts Options
	for _, s := range stages {
		if b, ok := raw[s.flag].(bool); ok && b {
			s.set(&opts)
		}
	}
	return opts
}

// Flags returns the names of the enabled options in pipeline order.
func (o Options) Flags() []string {
	var flags []string
	for _, s := range stages {
		if s.enabled(o) {
			flags = append(flags, s.flag)
		}
	}
	return flags
}

// StageResult records what one enabled stage changed. Changed counts rows
// removed, cells filled or trimmed, or columns renamed.
type StageResult struct {
	Stage   string `json:"stage"`
	Changed int    `json:"changed"`
}

// CleanResult is the cleaned table plus a per-stage summary.
type CleanResult struct {
	Table  *Table        `json:"-"`
	Stages []StageResult `json:"stages"`
}

type stage struct {
	flag    string
	enabled func(Options) bool
	set     func(*Options)
	apply   func(*Table) int
}

var stages = []stage{
	{
		flag:    FlagDropDuplicates,
		enabled: func(o Options) bool { return o.DropDuplicates },
		set:     func(o *Options) { o.DropDuplicates = true },
		apply:   dropDuplicates,
	},
	{
		flag:    FlagFillNumeric,
		enabled: func(o Options) bool { return o.FillNumeric },
		set:     func(o *Options) { o.FillNumeric = true },
		apply:   fillNumeric,
	},
	{
		flag:    FlagFillCategorical,
		enabled: func(o Options) bool { return o.FillCategorical },
		set:     func(o *Options) { o.FillCategorical = true },
		apply:   fillCategorical,
	},
	{
		flag:    FlagTrimWhitespace,
		enabled: func(o Options) bool { return o.TrimWhitespace },
		set:     func(o *Options) { o.TrimWhitespace = true },
		apply:   trimWhitespace,
	},
	{
		flag:    FlagStandardizeCols,
		enabled: func(o Options) bool { return o.StandardizeCols },
		set:     func(o *Options) { o.StandardizeCols = true },
		apply:   standardizeColumns,
	},
}

// Clean returns a cleaned copy of t.
func Clean(t *Table, opts Options) *Table {
	return Apply(t, opts).Table
}

// Apply runs the enabled stages over a copy of t and reports what each changed.
func Apply(t *Table, opts Options) CleanResult {
	out := t.Clone()
	result := CleanResult{Stages: []StageResult{}}

	for _, s := range stages {
		if !s.enabled(opts) {
			continue
		}
		result.Stages = append(result.Stages, StageResult{
			Stage:   s.flag,
			Changed: s.apply(out),
		})
	}

	result.Table = out
	return result
}

// dropDuplicates keeps the first occurrence of every distinct row.
func dropDuplicates(t *Table) int {
	mask := duplicateMask(t)

	keep := make([]int, 0, len(mask))
	for i, dup := range mask {
		if !dup {
			keep = append(keep, i)
		}
	}
	removed := len(mask) - len(keep)
	if removed == 0 {
		return 0
	}

	*t = *t.Select(keep)
	return removed
}

// fillNumeric replaces nulls in numeric columns with the column median.
// An integer column stays integer only if the median is a whole number.
func fillNumeric(t *Table) int {
	filled := 0
	for _, c := range t.Columns {
		if !c.Kind().IsNumeric() || c.NullCount() == 0 {
			continue
		}

		vals, _ := numbers(c)
		m := median(vals)

		fill := FloatValue(m)
		if allInts(c) {
			if m == math.Trunc(m) && m >= -int64Bound && m < int64Bound {
				fill = IntValue(int64(m))
			} else {
				promoteToFloat(c)
			}
		}

		for i, v := range c.Values {
			if v.IsNull() {
				c.Values[i] = fill
				filled++
			}
		}
	}
	return filled
}

// int64Bound is 2^63; a float median at or beyond it does not fit an int64.
const int64Bound = 1 << 63

func allInts(c *Column) bool {
	for _, v := range c.Values {
		if v.Kind == KindFloat {
			return false
		}
	}
	return true
}

func promoteToFloat(c *Column) {
	for i, v := range c.Values {
		if v.Kind == KindInt {
			c.Values[i] = FloatValue(float64(v.Int))
		}
	}
}

// fillCategorical replaces nulls in text, mixed and boolean columns with the
// most frequent value. Ties go to the lowest value in natural order. A column
// with no values at all is left alone.
func fillCategorical(t *Table) int {
	filled := 0
	for _, c := range t.Columns {
		if !c.Kind().IsCategorical() || c.NullCount() == 0 {
			continue
		}

		m, ok := mode(c)
		if !ok {
			continue
		}
		for i, v := range c.Values {
			if v.IsNull() {
				c.Values[i] = m
				filled++
			}
		}
	}
	return filled
}

// mode returns the most frequent non-null value of c.
func mode(c *Column) (Value, bool) {
	type entry struct {
		v     Value
		count int
	}
	counts := make(map[string]*entry)

	var sb strings.Builder
	for _, v := range c.Values {
		if v.IsNull() {
			continue
		}
		sb.Reset()
		writeKey(&sb, v)
		key := sb.String()
		if e, ok := counts[key]; ok {
			e.count++
		} else {
			counts[key] = &entry{v: v, count: 1}
		}
	}

	var best *entry
	for _, e := range counts {
		if best == nil || e.count > best.count ||
			(e.count == best.count && compareValues(e.v, best.v) < 0) {
			best = e
		}
	}
	if best == nil {
		return Value{}, false
	}
	return best.v, true
}

// trimWhitespace strips surrounding whitespace from every cell of a text
// column. Numbers and booleans in a mixed column keep their source text, so
// that text is trimmed too.
func trimWhitespace(t *Table) int {
	trimmed := 0
	for _, c := range t.Columns {
		if !c.Kind().IsText() {
			continue
		}
		for i, v := range c.Values {
			switch {
			case v.Kind == KindString:
				if s := strings.TrimSpace(v.Str); s != v.Str {
					c.Values[i] = StringValue(s)
					trimmed++
				}
			case v.raw != "":
				if s := strings.TrimSpace(v.raw); s != v.raw {
					c.Values[i].raw = s
					trimmed++
				}
			}
		}
	}
	return trimmed
}

var nonWordRegex = regexp.MustCompile(`[^\p{L}\p{N}_]`)

// StandardizeName lower-cases a column name, turns spaces into underscores
// and drops everything that is not a letter, digit or underscore.
func StandardizeName(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, " ", "_")
	return nonWordRegex.ReplaceAllString(s, "")
}

// standardizeColumns renames every column. Names that collide after
// renaming are kept as duplicates.
func standardizeColumns(t *Table) int {
	renamed := 0
	for _, c := range t.Columns {
		if s := StandardizeName(c.Name); s != c.Name {
			c.Name = s
			renamed++
		}
	}
	return renamed
}
