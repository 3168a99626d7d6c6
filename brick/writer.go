// Package brick writes normalized tables as Parquet files into the output
// directory and reads them back for the end of run report.
package brick

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/cespare/xxhash/v2"

	"github.com/giygas/cpic-brick/logging"
	"github.com/giygas/cpic-brick/metrics"
	"github.com/giygas/cpic-brick/table"
)

var ErrNoColumns = errors.New("table has no columns")

// FileName returns the Parquet file name of a table
func FileName(name string) string {
	return "cpic_" + name + ".parquet"
}

// WriteResult describes a written file
type WriteResult struct {
	Name     string
	Path     string
	Rows     int
	Columns  int
	Bytes    int
	Checksum uint64 // xxhash64 of the file content
}

// Writer writes tables into one directory, overwriting existing files
type Writer struct {
	dir string
	mem memory.Allocator
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, mem: memory.DefaultAllocator}
}

// Dir returns the output directory
func (w *Writer) Dir() string {
	return w.dir
}

// Write serializes t to <dir>/cpic_<name>.parquet, creating dir if needed
func (w *Writer) Write(name string, t *table.Table) (*WriteResult, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", w.dir, err)
	}

	data, err := Encode(t, w.mem)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", name, err)
	}

	path := filepath.Join(w.dir, FileName(name))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}

	result := &WriteResult{
		Name:     name,
		Path:     path,
		Rows:     t.NumRows(),
		Columns:  t.NumColumns(),
		Bytes:    len(data),
		Checksum: xxhash.Sum64(data),
	}

	metrics.RowsWritten.WithLabelValues(FileName(name)).Add(float64(result.Rows))
	logging.Info(fmt.Sprintf("Saved %d records to %s", result.Rows, path),
		"file", FileName(name),
		"bytes", result.Bytes,
		"checksum", fmt.Sprintf("%016x", result.Checksum),
	)

	return result, nil
}

// Encode serializes a table into Parquet bytes. Column order and null cells
// are kept and no row index is added.
func Encode(t *table.Table, mem memory.Allocator) ([]byte, error) {
	if t.NumColumns() == 0 {
		return nil, ErrNoColumns
	}

	schema := ArrowSchema(t)

	bldr := array.NewRecordBuilder(mem, schema)
	defer bldr.Release()

	for c := range schema.Fields() {
		appendColumn(bldr.Field(c), t.Rows, c)
	}

	rec := bldr.NewRecord()
	defer rec.Release()

	props := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Snappy),
		parquet.WithAllocator(mem),
	)

	var buf bytes.Buffer
	fw, err := pqarrow.NewFileWriter(schema, &buf, props, pqarrow.DefaultWriterProps())
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}

	if err := fw.Write(rec); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to write record batch: %w", err)
	}

	if err := fw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close parquet writer: %w", err)
	}

	return buf.Bytes(), nil
}

// ArrowSchema maps each column to a nullable Arrow field. The type comes
// from the non-null cells: all bools give BOOLEAN, all integers INT64, all
// numbers FLOAT64 and anything else UTF8.
func ArrowSchema(t *table.Table) *arrow.Schema {
	fields := make([]arrow.Field, t.NumColumns())
	for c, col := range t.Columns {
		fields[c] = arrow.Field{
			Name:     col.Name,
			Type:     columnType(t.Rows, c),
			Nullable: true,
		}
	}
	return arrow.NewSchema(fields, nil)
}

func columnType(rows [][]table.Value, c int) arrow.DataType {
	allBool, allInt, allNum := true, true, true
	seen := false

	for _, row := range rows {
		v := row[c]
		switch v.Kind {
		case table.KindNull:
			continue
		case table.KindBool:
			allInt, allNum = false, false
		case table.KindNumber:
			allBool = false
			if !v.IsInteger() {
				allInt = false
			}
		default:
			allBool, allInt, allNum = false, false, false
		}
		seen = true
	}

	switch {
	case !seen:
		return arrow.BinaryTypes.String
	case allBool:
		return arrow.FixedWidthTypes.Boolean
	case allInt:
		return arrow.PrimitiveTypes.Int64
	case allNum:
		return arrow.PrimitiveTypes.Float64
	default:
		return arrow.BinaryTypes.String
	}
}

func appendColumn(b array.Builder, rows [][]table.Value, c int) {
	b.Reserve(len(rows))
	for _, row := range rows {
		v := row[c]
		if v.IsNull() {
			b.AppendNull()
			continue
		}
		switch fb := b.(type) {
		case *array.BooleanBuilder:
			fb.Append(v.Bool)
		case *array.Int64Builder:
			fb.Append(v.Int())
		case *array.Float64Builder:
			fb.Append(v.Float())
		case *array.StringBuilder:
			fb.Append(v.Display())
		}
	}
}
