package core

import (
	"fmt"
	"strings"
	"testing"
)

// benchmarkCSV builds a CSV with n rows covering every column kind.
func benchmarkCSV(n int) string {
	var sb strings.Builder
	sb.WriteString("id,name,email,amount,active,note\n")
	for i := 0; i < n; i++ {
		amount := fmt.Sprintf("%d.%02d", i%1000, i%100)
		if i%17 == 0 {
			amount = ""
		}
		email := fmt.Sprintf("user%d@example.com", i)
		if i%23 == 0 {
			email = "not-an-email"
		}
		fmt.Fprintf(&sb, "%d, Name %d ,%s,%s,%t,%s\n", i%(n/2+1), i%50, email, amount, i%2 == 0, "  ")
	}
	return sb.String()
}

var benchInputs = map[string]string{
	"1k":  benchmarkCSV(1000),
	"50k": benchmarkCSV(50000),
}

func BenchmarkReadCSV(b *testing.B) {
	for name, src := range benchInputs {
		b.Run(name, func(b *testing.B) {
			b.SetBytes(int64(len(src)))
			for i := 0; i < b.N; i++ {
				if _, err := ReadCSV(strings.NewReader(src)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkBuildReport(b *testing.B) {
	for name, src := range benchInputs {
		tbl, err := ReadCSV(strings.NewReader(src))
		if err != nil {
			b.Fatal(err)
		}
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				BuildReport(tbl, ReportOptions{})
			}
		})
	}
}

func BenchmarkClean_AllStages(b *testing.B) {
	tbl, err := ReadCSV(strings.NewReader(benchInputs["50k"]))
	if err != nil {
		b.Fatal(err)
	}
	opts := Options{true, true, true, true, true}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Clean(tbl, opts)
	}
}

func BenchmarkParseCell(b *testing.B) {
	cells := []string{"123", "-4.5e3", "True", "hello world", "", "NA", " 42 "}
	for i := 0; i < b.N; i++ {
		for _, c := range cells {
			ParseCell(c)
		}
	}
}

func BenchmarkDuplicateMask(b *testing.B) {
	tbl, err := ReadCSV(strings.NewReader(benchInputs["50k"]))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		duplicateMask(tbl)
	}
}
