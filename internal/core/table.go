package core

// Column is a named sequence of cells.
type Column struct {
	Name   string
	Values []Value
}

// Kind infers the column type by unioning the kinds of its non-null cells.
func (c *Column) Kind() ColumnKind {
	var numeric, boolean, text bool
	for _, v := range c.Values {
		switch v.Kind {
		case KindInt, KindFloat:
			numeric = true
		case KindBool:
			boolean = true
		case KindString:
			text = true
		}
	}

	n := 0
	for _, seen := range []bool{numeric, boolean, text} {
		if seen {
			n++
		}
	}

	switch {
	case n == 0:
		return ColumnUnknown
	case n > 1:
		return ColumnMixed
	case numeric:
		return ColumnNumeric
	case boolean:
		return ColumnBoolean
	default:
		return ColumnText
	}
}

// NullCount returns the number of missing cells.
func (c *Column) NullCount() int {
	n := 0
	for _, v := range c.Values {
		if v.IsNull() {
			n++
		}
	}
	return n
}

// ValueKinds returns the distinct kinds of the non-null cells, in first-seen order.
func (c *Column) ValueKinds() []ValueKind {
	var kinds []ValueKind
	seen := make(map[ValueKind]bool)
	for _, v := range c.Values {
		if v.IsNull() || seen[v.Kind] {
			continue
		}
		seen[v.Kind] = true
		kinds = append(kinds, v.Kind)
	}
	return kinds
}

// Table is an ordered set of equally long columns. Rows are implicit
// positions across the columns.
type Table struct {
	Columns []*Column
}

// NewTable creates an empty table with the given column names.
func NewTable(names ...string) *Table {
	t := &Table{Columns: make([]*Column, len(names))}
	for i, name := range names {
		t.Columns[i] = &Column{Name: name}
	}
	return t
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the first column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// AppendRow appends one row. Missing trailing cells are stored as null and
// extra cells are dropped.
func (t *Table) AppendRow(values ...Value) {
	for i, c := range t.Columns {
		v := Null()
		if i < len(values) {
			v = values[i]
		}
		c.Values = append(c.Values, v)
	}
}

// Row returns a copy of the cells at row i.
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.Columns))
	for j, c := range t.Columns {
		row[j] = c.Values[i]
	}
	return row
}

// Clone returns a deep copy that shares nothing with t.
func (t *Table) Clone() *Table {
	out := &Table{Columns: make([]*Column, len(t.Columns))}
	for i, c := range t.Columns {
		values := make([]Value, len(c.Values))
		copy(values, c.Values)
		out.Columns[i] = &Column{Name: c.Name, Values: values}
	}
	return out
}

// Select returns a new table holding only the given rows, in the given order.
func (t *Table) Select(rows []int) *Table {
	out := &Table{Columns: make([]*Column, len(t.Columns))}
	for i, c := range t.Columns {
		values := make([]Value, len(rows))
		for j, r := range rows {
			values[j] = c.Values[r]
		}
		out.Columns[i] = &Column{Name: c.Name, Values: values}
	}
	return out
}

// RowSet is a serializable subset of a table's rows, keeping the original
// zero-based row positions.
type RowSet struct {
	Columns []string  `json:"columns"`
	Indices []int     `json:"indices"`
	Rows    [][]Value `json:"rows"`
}

// RowSet returns the given rows for display in a report.
func (t *Table) RowSet(rows []int) *RowSet {
	rs := &RowSet{
		Columns: t.ColumnNames(),
		Indices: make([]int, len(rows)),
		Rows:    make([][]Value, len(rows)),
	}
	copy(rs.Indices, rows)
	for i, r := range rows {
		rs.Rows[i] = t.Row(r)
	}
	return rs
}

// Head returns the first n rows (or fewer) as a RowSet.
func (t *Table) Head(n int) *RowSet {
	if n > t.NumRows() {
		n = t.NumRows()
	}
	if n < 0 {
		n = 0
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return t.RowSet(rows)
}
