// Package validation checks normalized CPIC tables before they are written.
package validation

import (
	"fmt"
	"strings"

	"github.com/giygas/cpic-brick/interfaces"
	"github.com/giygas/cpic-brick/table"
)

// Compile-time check to ensure TableValidatorImpl implements TableValidator
var _ interfaces.TableValidator = (*TableValidatorImpl)(nil)

// TableValidatorImpl implements the interfaces.TableValidator interface
type TableValidatorImpl struct{}

// NewTableValidator creates a new table validator
func NewTableValidator() interfaces.TableValidator {
	return &TableValidatorImpl{}
}

// ValidateTable checks that the table has one row per record, that every
// row has one cell per column and that column names are unique,
// lower-case and free of spaces and hyphens
func (v *TableValidatorImpl) ValidateTable(t *table.Table, records int) error {
	if t == nil {
		return fmt.Errorf("table is nil")
	}

	if t.NumRows() != records {
		return fmt.Errorf("row count mismatch: %d rows for %d records", t.NumRows(), records)
	}

	for i, row := range t.Rows {
		if len(row) != t.NumColumns() {
			return fmt.Errorf("row %d has %d cells, expected %d", i, len(row), t.NumColumns())
		}
	}

	seen := make(map[string]bool, t.NumColumns())
	for _, col := range t.Columns {
		if seen[col.Name] {
			return fmt.Errorf("duplicate column name %q", col.Name)
		}
		seen[col.Name] = true

		if strings.ContainsAny(col.Name, " -") {
			return fmt.Errorf("column name %q contains spaces or hyphens", col.Name)
		}

		if col.Name != strings.ToLower(col.Name) {
			return fmt.Errorf("column name %q is not lower-case", col.Name)
		}
	}

	return nil
}

// ReportTableQuality generates a quality report with all the columns found
// empty, left with nested cells, or renamed to avoid a collision
func (v *TableValidatorImpl) ReportTableQuality(name string, t *table.Table) *interfaces.TableQualityReport {
	report := &interfaces.TableQualityReport{
		Name:               name,
		Rows:               t.NumRows(),
		Columns:            t.NumColumns(),
		EmptyColumns:       []string{},
		UnflattenedColumns: []string{},
		SuffixedColumns:    []string{},
	}

	for c, col := range t.Columns {
		empty, nested := true, false
		for _, row := range t.Rows {
			if !row[c].IsNull() {
				empty = false
			}
			if row[c].IsNested() {
				nested = true
			}
		}

		if empty && t.NumRows() > 0 {
			report.EmptyColumns = append(report.EmptyColumns, col.Name)
		}
		if nested {
			report.UnflattenedColumns = append(report.UnflattenedColumns, col.Name)
		}
		if col.Name != table.NormalizeName(col.Source) {
			report.SuffixedColumns = append(report.SuffixedColumns, col.Name)
		}
	}

	return report
}
