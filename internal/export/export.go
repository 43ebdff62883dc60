// Package export serializes cleaned tables for download (CSV, XLSX, Parquet)
// and publishes them to PostgreSQL.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/dataquality/internal/core"
)

// ErrUnknownFormat is returned for an unsupported export format name.
var ErrUnknownFormat = errors.New("unknown export format")

// Format is a download file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatXLSX    Format = "xlsx"
	FormatParquet Format = "parquet"
)

// baseName is the download name used for every format.
const baseName = "cleaned_data"

// ParseFormat resolves a format name. An empty name selects CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX, "excel":
		return FormatXLSX, nil
	case FormatParquet:
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FileName returns the attachment name, e.g. cleaned_data.csv.
func (f Format) FileName() string {
	return baseName + "." + string(f)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatParquet:
		return "application/vnd.apache.parquet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Write serializes t to w in format f.
func Write(w io.Writer, t *core.Table, f Format) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatXLSX:
		return WriteXLSX(w, t)
	case FormatParquet:
		return WriteParquet(w, t)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

// columnType is the storage type a column maps to in typed formats.
type columnType int

const (
	typeText columnType = iota
	typeInt
	typeFloat
	typeBool
)

// columnTypeOf picks a typed representation. Numeric columns stay integer
// only while every non-null cell is an integer; mixed and all-null columns
// are written as text.
func columnTypeOf(c *core.Column) columnType {
	switch c.Kind() {
	case core.ColumnNumeric:
		for _, v := range c.Values {
			if v.Kind == core.KindFloat {
				return typeFloat
			}
		}
		return typeInt
	case core.ColumnBoolean:
		return typeBool
	default:
		return typeText
	}
}
