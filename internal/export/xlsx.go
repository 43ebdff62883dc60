package export

import (
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/dataquality/internal/core"
)

const sheetName = "Sheet1"

// WriteXLSX writes t to a single-sheet workbook. Cells keep their types so
// numbers and booleans stay numeric and boolean in the spreadsheet.
func WriteXLSX(w io.Writer, t *core.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet writer: %w", err)
	}

	header := make([]interface{}, t.NumColumns())
	for i, name := range t.ColumnNames() {
		header[i] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	row := make([]interface{}, t.NumColumns())
	for i := 0; i < t.NumRows(); i++ {
		for j, c := range t.Columns {
			row[j] = xlsxCell(c.Values[i])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// xlsxCell converts a cell to a value excelize can store. Spreadsheets have
// no NaN or infinity, so those are written as their text form.
func xlsxCell(v core.Value) interface{} {
	switch v.Kind {
	case core.KindNull:
		return nil
	case core.KindFloat:
		if math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
			return v.String()
		}
		return v.Float
	default:
		return v.Interface()
	}
}
