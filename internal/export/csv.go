package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/JonMunkholm/dataquality/internal/core"
)

// WriteCSV writes the header and every row without an index column.
// Nulls are written as empty fields.
func WriteCSV(w io.Writer, t *core.Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(t.ColumnNames()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, t.NumColumns())
	for i := 0; i < t.NumRows(); i++ {
		for j, c := range t.Columns {
			record[j] = c.Values[i].String()
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}
