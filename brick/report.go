package brick

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/apache/arrow-go/v18/parquet/file"
)

// FileReport holds the shape of one Parquet file
type FileReport struct {
	Name        string
	Rows        int64
	Columns     int
	ColumnNames []string
}

// Report lists every Parquet file of a directory
type Report struct {
	Dir       string
	Files     []FileReport
	TotalRows int64
}

// Inspect opens every *.parquet file in dir, sorted by name, and reads its
// row and column counts from the file metadata. The first unreadable file
// aborts the inspection.
func Inspect(dir string) (*Report, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.parquet"))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	sort.Strings(paths)

	report := &Report{Dir: dir}
	for _, path := range paths {
		fr, err := inspectFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		report.Files = append(report.Files, fr)
		report.TotalRows += fr.Rows
	}

	return report, nil
}

func inspectFile(path string) (fr FileReport, err error) {
	rdr, err := file.OpenParquetFile(path, false)
	if err != nil {
		return fr, err
	}
	defer func() {
		if cerr := rdr.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	schema := rdr.MetaData().Schema
	names := make([]string, schema.NumColumns())
	for i := range names {
		names[i] = schema.Column(i).Name()
	}

	return FileReport{
		Name:        filepath.Base(path),
		Rows:        rdr.NumRows(),
		Columns:     schema.NumColumns(),
		ColumnNames: names,
	}, nil
}

// Print writes the per-file lines and the grand total
func (r *Report) Print(w io.Writer) {
	fmt.Fprintln(w, "Output files:")
	for _, f := range r.Files {
		fmt.Fprintf(w, "  - %s: %d rows, %d columns\n", f.Name, f.Rows, f.Columns)
	}
	fmt.Fprintf(w, "\nTotal: %d records across %d files\n", r.TotalRows, len(r.Files))
}
