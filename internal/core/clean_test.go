package core

import (
	"reflect"
	"testing"
)

// columnText returns the String() form of every cell in a column.
func columnText(t *testing.T, tbl *Table, name string) []string {
	t.Helper()
	c, ok := tbl.Column(name)
	if !ok {
		t.Fatalf("column %q missing", name)
	}
	out := make([]string, len(c.Values))
	for i, v := range c.Values {
		out[i] = v.String()
	}
	return out
}

// tablesEqual compares names, kinds and text of every cell.
func tablesEqual(a, b *Table) bool {
	if !reflect.DeepEqual(a.ColumnNames(), b.ColumnNames()) || a.NumRows() != b.NumRows() {
		return false
	}
	for i := range a.Columns {
		for r := range a.Columns[i].Values {
			if !a.Columns[i].Values[r].Equal(b.Columns[i].Values[r]) {
				return false
			}
		}
	}
	return true
}

func TestParseOptions(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want Options
	}{
		{
			name: "all flags",
			raw: map[string]any{
				"drop_duplicates":  true,
				"fill_numeric":     true,
				"fill_categorical": true,
				"trim_whitespace":  true,
				"standardize_cols": true,
			},
			want: Options{true, true, true, true, true},
		},
		{
			name: "unknown keys ignored",
			raw:  map[string]any{"drop_duplicates": true, "shout": true},
			want: Options{DropDuplicates: true},
		},
		{
			name: "non-boolean values ignored",
			raw:  map[string]any{"fill_numeric": "yes", "trim_whitespace": 1.0},
			want: Options{},
		},
		{
			name: "false stays false",
			raw:  map[string]any{"fill_categorical": false},
			want: Options{},
		},
		{
			name: "nil map",
			raw:  nil,
			want: Options{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseOptions(tt.raw); got != tt.want {
				t.Errorf("ParseOptions() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestOptionsFlags(t *testing.T) {
	got := Options{StandardizeCols: true, DropDuplicates: true}.Flags()
	want := []string{FlagDropDuplicates, FlagStandardizeCols}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Flags() = %v, want %v", got, want)
	}
}

func TestClean_NoOptionsCopies(t *testing.T) {
	tbl := mustReadCSV(t, "a,b\n1,x\n1,x\n")
	out := Clean(tbl, Options{})

	if !tablesEqual(tbl, out) {
		t.Fatal("Clean with no options changed the table")
	}
	out.Columns[0].Values[0] = IntValue(99)
	out.Columns[1].Name = "renamed"
	if tbl.Columns[0].Values[0].Int != 1 || tbl.Columns[1].Name != "b" {
		t.Error("result shares storage with the input")
	}
}

func TestClean_DoesNotMutateInput(t *testing.T) {
	tbl := mustReadCSV(t, "First Name,n\n a ,1\n a ,1\nb,\n")
	before := tbl.Clone()

	Clean(tbl, Options{true, true, true, true, true})

	if !tablesEqual(tbl, before) {
		t.Error("input table was modified")
	}
}

func TestDropDuplicates(t *testing.T) {
	tbl := mustReadCSV(t, "a,b\n3,x\n1,y\n3,x\n2,z\n1,y\n")
	out := Clean(tbl, Options{DropDuplicates: true})

	if got, want := columnText(t, out, "a"), []string{"3", "1", "2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("a = %v, want %v", got, want)
	}
	if Duplicates(out).Count != 0 {
		t.Error("duplicates remain after drop_duplicates")
	}
}

func TestFillNumeric(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		column   string
		want     []string
		wantKind ValueKind
	}{
		{
			name:     "integral median keeps integers",
			input:    "n\n1\nNA\n3\n",
			column:   "n",
			want:     []string{"1", "2", "3"},
			wantKind: KindInt,
		},
		{
			name:     "fractional median promotes to float",
			input:    "n\n1\nNA\n2\n",
			column:   "n",
			want:     []string{"1.0", "1.5", "2.0"},
			wantKind: KindFloat,
		},
		{
			name:     "float column",
			input:    "n\n1.5\nNA\n2.5\n10.0\n",
			column:   "n",
			want:     []string{"1.5", "2.5", "2.5", "10.0"},
			wantKind: KindFloat,
		},
		{
			name:     "no nulls untouched",
			input:    "n\n5\n1\n",
			column:   "n",
			want:     []string{"5", "1"},
			wantKind: KindInt,
		},
		{
			name:     "text column untouched",
			input:    "s\nx\nNA\n",
			column:   "s",
			want:     []string{"x", ""},
			wantKind: KindNull,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Clean(mustReadCSV(t, tt.input), Options{FillNumeric: true})
			if got := columnText(t, out, tt.column); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("%s = %v, want %v", tt.column, got, tt.want)
			}
			c, _ := out.Column(tt.column)
			if last := c.Values[1]; last.Kind != tt.wantKind {
				t.Errorf("filled cell kind = %v, want %v", last.Kind, tt.wantKind)
			}
		})
	}
}

func TestFillNumeric_FilledCellsEqualOriginalMedian(t *testing.T) {
	tbl := mustReadCSV(t, "n\n7\nNA\n1\nNA\n4\n100\n")
	col, _ := tbl.Column("n")
	vals, _ := numbers(col)
	m := median(vals)

	out := Clean(tbl, Options{FillNumeric: true})
	c, _ := out.Column("n")
	if c.NullCount() != 0 {
		t.Fatalf("nulls remain: %d", c.NullCount())
	}
	for _, r := range []int{1, 3} {
		if f, _ := c.Values[r].Number(); f != m {
			t.Errorf("row %d = %v, want median %v", r, f, m)
		}
	}
}

func TestFillNumeric_MedianBeyondInt64(t *testing.T) {
	tbl := mustReadCSV(t, "n\n9223372036854775807\n9223372036854775807\nNA\n")

	out := Clean(tbl, Options{FillNumeric: true})
	c, _ := out.Column("n")

	filled := c.Values[2]
	if filled.Kind != KindFloat {
		t.Fatalf("filled kind = %v, want float", filled.Kind)
	}
	if want := float64(1 << 63); filled.Float != want {
		t.Errorf("filled = %v, want %v", filled.Float, want)
	}
	for i, v := range c.Values {
		if v.Kind != KindFloat {
			t.Errorf("row %d kind = %v, want float", i, v.Kind)
		}
	}
}

func TestFillCategorical(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		column string
		want   []string
	}{
		{
			name:   "most frequent",
			input:  "s\nb\na\nNA\nb\n",
			column: "s",
			want:   []string{"b", "a", "b", "b"},
		},
		{
			name:   "tie goes to lowest",
			input:  "s\nb\na\nNA\nb\na\n",
			column: "s",
			want:   []string{"b", "a", "a", "b", "a"},
		},
		{
			name:   "boolean column",
			input:  "f\nTrue\nNA\nFalse\n",
			column: "f",
			want:   []string{"True", "False", "False"},
		},
		{
			name:   "mixed column prefers numbers on tie",
			input:  "m\nabc\nNA\n7\n",
			column: "m",
			want:   []string{"abc", "7", "7"},
		},
		{
			name:   "all null left alone",
			input:  "e,s\n,x\n,y\n",
			column: "e",
			want:   []string{"", ""},
		},
		{
			name:   "numeric column untouched",
			input:  "n\n1\nNA\n",
			column: "n",
			want:   []string{"1", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Clean(mustReadCSV(t, tt.input), Options{FillCategorical: true})
			if got := columnText(t, out, tt.column); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("%s = %v, want %v", tt.column, got, tt.want)
			}
		})
	}
}

func TestTrimWhitespace(t *testing.T) {
	tbl := newTable(map[string][]Value{
		"s":   {StringValue("  a "), StringValue("b"), Null(), StringValue("\tc\n")},
		"mix": {StringValue(" x "), IntValue(1), Null(), StringValue("y")},
	}, "s", "mix")

	res := Apply(tbl, Options{TrimWhitespace: true})

	if got, want := columnText(t, res.Table, "s"), []string{"a", "b", "", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("s = %q, want %q", got, want)
	}
	if got, want := columnText(t, res.Table, "mix"), []string{"x", "1", "", "y"}; !reflect.DeepEqual(got, want) {
		t.Errorf("mix = %q, want %q", got, want)
	}
	c, _ := res.Table.Column("s")
	if !c.Values[2].IsNull() {
		t.Error("null became a value")
	}
	if want := []StageResult{{Stage: FlagTrimWhitespace, Changed: 3}}; !reflect.DeepEqual(res.Stages, want) {
		t.Errorf("Stages = %+v, want %+v", res.Stages, want)
	}
}

func TestTrimWhitespace_MixedColumnNonStringCells(t *testing.T) {
	tbl := mustReadCSV(t, "code,flag\n 5 , True\nabc ,x\n2.5\t,NA\n")

	res := Apply(tbl, Options{TrimWhitespace: true})

	if got, want := columnText(t, res.Table, "code"), []string{"5", "abc", "2.5"}; !reflect.DeepEqual(got, want) {
		t.Errorf("code = %q, want %q", got, want)
	}
	if got, want := columnText(t, res.Table, "flag"), []string{"True", "x", ""}; !reflect.DeepEqual(got, want) {
		t.Errorf("flag = %q, want %q", got, want)
	}

	c, _ := res.Table.Column("code")
	if c.Values[0].Kind != KindInt || c.Values[0].Int != 5 {
		t.Errorf("code[0] = %v %v, want int 5", c.Values[0].Kind, c.Values[0].Int)
	}
	if want := []StageResult{{Stage: FlagTrimWhitespace, Changed: 4}}; !reflect.DeepEqual(res.Stages, want) {
		t.Errorf("Stages = %+v, want %+v", res.Stages, want)
	}

	// Trimming is stable.
	again := Clean(res.Table, Options{TrimWhitespace: true})
	if !tablesEqual(again, res.Table) {
		t.Error("second trim changed the table")
	}
}

func TestStandardizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"First Name", "first_name"},
		{"E-mail!", "email"},
		{"Already_ok", "already_ok"},
		{"Total ($)", "total_"},
		{"Tab\tSeparated", "tabseparated"},
		{"Año 2024", "año_2024"},
	}

	for _, tt := range tests {
		if got := StandardizeName(tt.in); got != tt.want {
			t.Errorf("StandardizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStandardizeCols(t *testing.T) {
	tbl := mustReadCSV(t, "First Name,E-mail!\nx,y\n")
	out := Clean(tbl, Options{StandardizeCols: true})

	if got, want := out.ColumnNames(), []string{"first_name", "email"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ColumnNames() = %v, want %v", got, want)
	}
}

func TestStandardizeCols_CollisionsKept(t *testing.T) {
	tbl := mustReadCSV(t, "A B,a_b\n1,2\n")
	out := Clean(tbl, Options{StandardizeCols: true})

	if got, want := out.ColumnNames(), []string{"a_b", "a_b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ColumnNames() = %v, want %v", got, want)
	}
	if out.Columns[1].Values[0].String() != "2" {
		t.Error("second colliding column lost its data")
	}
}

func TestClean_StageOrder(t *testing.T) {
	// Rows only become identical after filling, which runs after dedup.
	tbl := mustReadCSV(t, "a,b\n1,\n1,5\n")
	out := Clean(tbl, Options{DropDuplicates: true, FillNumeric: true})

	if out.NumRows() != 2 {
		t.Errorf("rows = %d, want 2", out.NumRows())
	}
	if got, want := columnText(t, out, "b"), []string{"5", "5"}; !reflect.DeepEqual(got, want) {
		t.Errorf("b = %v, want %v", got, want)
	}
}

func TestClean_StandardizeRunsLast(t *testing.T) {
	tbl := mustReadCSV(t, "My Col\n x \n")
	res := Apply(tbl, Options{TrimWhitespace: true, StandardizeCols: true})

	if got := columnText(t, res.Table, "my_col"); got[0] != "x" {
		t.Errorf("my_col = %q, want [x]", got)
	}
	want := []StageResult{
		{Stage: FlagTrimWhitespace, Changed: 1},
		{Stage: FlagStandardizeCols, Changed: 1},
	}
	if !reflect.DeepEqual(res.Stages, want) {
		t.Errorf("Stages = %+v, want %+v", res.Stages, want)
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"Name, Age\nAl ,1\nAl ,1\n Bo,2\nCy,1\n",
		"a,b\n x,\n x,\ny , z\n",
	}
	optionSets := []Options{
		{DropDuplicates: true},
		{TrimWhitespace: true},
		{DropDuplicates: true, TrimWhitespace: true},
	}

	for _, in := range inputs {
		for _, opts := range optionSets {
			once := Clean(mustReadCSV(t, in), opts)
			twice := Clean(once, opts)
			if !tablesEqual(once, twice) {
				t.Errorf("%q with %v: second pass changed the table", in, opts.Flags())
			}
		}
	}
}
