package core

// Report sizes used when the caller leaves ReportOptions zero.
const (
	defaultPreviewRows      = 20
	defaultDuplicateSamples = 10
)

// ReportOptions limits the amount of row data embedded in a report.
type ReportOptions struct {
	PreviewRows      int // rows in Overview.Preview (default: 20)
	DuplicateSamples int // rows in Duplicates.Rows (default: 10); Count stays exact
}

func (o ReportOptions) withDefaults() ReportOptions {
	if o.PreviewRows <= 0 {
		o.PreviewRows = defaultPreviewRows
	}
	if o.DuplicateSamples <= 0 {
		o.DuplicateSamples = defaultDuplicateSamples
	}
	return o
}

// ColumnProfile summarizes a single column.
type ColumnProfile struct {
	Name     string     `json:"name"`
	Kind     ColumnKind `json:"kind"`
	Nulls    int        `json:"nulls"`
	Distinct int        `json:"distinct"`
}

// Overview is the shape of a table plus its first rows.
type Overview struct {
	Rows    int             `json:"rows"`
	Columns int             `json:"columns"`
	Profile []ColumnProfile `json:"profile"`
	Preview *RowSet         `json:"preview"`
}

// Summarize builds the overview of t with the first previewRows rows.
func Summarize(t *Table, previewRows int) Overview {
	profile := make([]ColumnProfile, len(t.Columns))
	for i, c := range t.Columns {
		profile[i] = ColumnProfile{
			Name:     c.Name,
			Kind:     c.Kind(),
			Nulls:    c.NullCount(),
			Distinct: distinctCount(c),
		}
	}
	return Overview{
		Rows:    t.NumRows(),
		Columns: t.NumColumns(),
		Profile: profile,
		Preview: t.Head(previewRows),
	}
}

func distinctCount(c *Column) int {
	seen := make(map[string]struct{})
	var key []byte
	for _, v := range c.Values {
		if v.IsNull() {
			continue
		}
		key = append(key[:0], byte(v.Kind))
		key = append(key, v.String()...)
		seen[string(key)] = struct{}{}
	}
	return len(seen)
}

// Report is every check run once over the same table.
type Report struct {
	Overview      Overview          `json:"overview"`
	MissingValues []MissingValue    `json:"missing_values"`
	Duplicates    DuplicateReport   `json:"duplicates"`
	Outliers      []OutlierReport   `json:"outliers"`
	MixedTypes    []MixedTypeReport `json:"mixed_types"`
	Validation    ValidationReport  `json:"validation"`
}

// BuildReport runs the overview and all checks against t.
func BuildReport(t *Table, opts ReportOptions) *Report {
	opts = opts.withDefaults()

	dups := Duplicates(t)
	if dups.Rows != nil && len(dups.Rows.Indices) > opts.DuplicateSamples {
		dups.Rows = t.RowSet(dups.Rows.Indices[:opts.DuplicateSamples])
	}

	return &Report{
		Overview:      Summarize(t, opts.PreviewRows),
		MissingValues: MissingValues(t),
		Duplicates:    dups,
		Outliers:      Outliers(t),
		MixedTypes:    MixedTypes(t),
		Validation:    BasicValidation(t),
	}
}
