package export

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/JonMunkholm/dataquality/internal/core"
)

// WriteParquet writes t as a Snappy-compressed Parquet file.
func WriteParquet(w io.Writer, t *core.Table) error {
	pool := memory.NewGoAllocator()

	tbl := arrowTable(pool, t)
	defer tbl.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(tbl.Schema(), w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}

	chunk := tbl.NumRows()
	if chunk == 0 {
		chunk = 1
	}
	if err := writer.WriteTable(tbl, chunk); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write table to parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// arrowTable converts t to an Arrow table with one nullable field per column.
func arrowTable(pool memory.Allocator, t *core.Table) arrow.Table {
	fields := make([]arrow.Field, t.NumColumns())
	arrays := make([]arrow.Array, t.NumColumns())

	for i, c := range t.Columns {
		arr := buildArray(pool, c)
		fields[i] = arrow.Field{Name: c.Name, Type: arr.DataType(), Nullable: true}
		arrays[i] = arr
	}

	schema := arrow.NewSchema(fields, nil)
	rec := array.NewRecord(schema, arrays, int64(t.NumRows()))
	for _, arr := range arrays {
		arr.Release()
	}
	defer rec.Release()

	return array.NewTableFromRecords(schema, []arrow.Record{rec})
}

func buildArray(pool memory.Allocator, c *core.Column) arrow.Array {
	switch columnTypeOf(c) {
	case typeInt:
		b := array.NewInt64Builder(pool)
		defer b.Release()
		for _, v := range c.Values {
			if v.IsNull() {
				b.AppendNull()
				continue
			}
			b.Append(v.Int)
		}
		return b.NewArray()

	case typeFloat:
		b := array.NewFloat64Builder(pool)
		defer b.Release()
		for _, v := range c.Values {
			f, ok := v.Number()
			if !ok {
				b.AppendNull()
				continue
			}
			b.Append(f)
		}
		return b.NewArray()

	case typeBool:
		b := array.NewBooleanBuilder(pool)
		defer b.Release()
		for _, v := range c.Values {
			if v.IsNull() {
				b.AppendNull()
				continue
			}
			b.Append(v.Bool)
		}
		return b.NewArray()

	default:
		b := array.NewStringBuilder(pool)
		defer b.Release()
		for _, v := range c.Values {
			if v.IsNull() {
				b.AppendNull()
				continue
			}
			b.Append(v.String())
		}
		return b.NewArray()
	}
}
