// Package interfaces defines the seams of the CPIC pull pipeline so each
// stage can be swapped out in tests.
package interfaces

import (
	"context"

	"github.com/giygas/cpic-brick/brick"
	"github.com/giygas/cpic-brick/cpic"
	"github.com/giygas/cpic-brick/table"
)

// TableQualityReport summarizes what normalization left behind in a table
type TableQualityReport struct {
	Name               string
	Rows               int
	Columns            int
	EmptyColumns       []string // every cell is null
	UnflattenedColumns []string // nested cells kept because the first sample was of another kind
	SuffixedColumns    []string // names that collided after normalization and got a numeric suffix
}

// HasIssues reports whether anything in the report is worth a warning
func (r *TableQualityReport) HasIssues() bool {
	return len(r.EmptyColumns) > 0 || len(r.UnflattenedColumns) > 0 || len(r.SuffixedColumns) > 0
}

// Fetcher downloads one endpoint and decodes it into records
type Fetcher interface {
	Fetch(ctx context.Context, ep cpic.Endpoint) ([]table.Record, error)
}

// TableWriter persists a normalized table under a logical name
type TableWriter interface {
	Write(name string, t *table.Table) (*brick.WriteResult, error)
}

// TableValidator checks table invariants before a write
type TableValidator interface {
	// ValidateTable checks the row count against the number of source
	// records and the column name rules
	ValidateTable(t *table.Table, records int) error

	// ReportTableQuality lists columns that deserve a look
	ReportTableQuality(name string, t *table.Table) *TableQualityReport
}
