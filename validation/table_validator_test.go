package validation

import (
	"strings"
	"testing"

	"github.com/giygas/cpic-brick/table"
)

func decode(t *testing.T, body string) []table.Record {
	t.Helper()
	records, err := table.DecodeRecords([]byte(body))
	if err != nil {
		t.Fatalf("DecodeRecords failed: %v", err)
	}
	return records
}

func TestValidateTableAcceptsNormalizedTable(t *testing.T) {
	records := decode(t, `[{"Gene Symbol": "CYP2D6", "HGNC-ID": "HGNC:2625"}, {"Gene Symbol": "CYP2C19"}]`)
	v := NewTableValidator()

	if err := v.ValidateTable(table.Normalize(records), len(records)); err != nil {
		t.Errorf("Expected normalized table to be valid, got %v", err)
	}
}

func TestValidateTableErrors(t *testing.T) {
	v := NewTableValidator()

	testCases := []struct {
		name     string
		tbl      *table.Table
		records  int
		expected string
	}{
		{"nil table", nil, 0, "table is nil"},
		{
			"row count mismatch",
			&table.Table{Columns: []table.Column{{Name: "id"}}, Rows: [][]table.Value{{table.Number("1")}}},
			2,
			"row count mismatch",
		},
		{
			"short row",
			&table.Table{Columns: []table.Column{{Name: "id"}, {Name: "name"}}, Rows: [][]table.Value{{table.Number("1")}}},
			1,
			"row 0 has 1 cells",
		},
		{
			"duplicate",
			&table.Table{Columns: []table.Column{{Name: "id"}, {Name: "id"}}},
			0,
			"duplicate column name",
		},
		{
			"hyphen",
			&table.Table{Columns: []table.Column{{Name: "hgnc-id"}}},
			0,
			"contains spaces or hyphens",
		},
		{
			"upper case",
			&table.Table{Columns: []table.Column{{Name: "GeneSymbol"}}},
			0,
			"not lower-case",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.ValidateTable(tc.tbl, tc.records)
			if err == nil {
				t.Fatalf("Expected error containing %q", tc.expected)
			}
			if !strings.Contains(err.Error(), tc.expected) {
				t.Errorf("Expected error containing %q, got %v", tc.expected, err)
			}
		})
	}
}

func TestReportTableQuality(t *testing.T) {
	records := decode(t, `[
		{"id": 1, "notes": null, "citations": "none", "Gene Symbol": "A", "gene_symbol": "B"},
		{"id": 2, "notes": null, "citations": [123, 456], "Gene Symbol": "C", "gene_symbol": "D"}
	]`)
	report := NewTableValidator().ReportTableQuality("guideline", table.Normalize(records))

	if report.Name != "guideline" || report.Rows != 2 || report.Columns != 5 {
		t.Errorf("Unexpected report header: %+v", report)
	}
	if !report.HasIssues() {
		t.Fatal("Expected the report to have issues")
	}
	if len(report.EmptyColumns) != 1 || report.EmptyColumns[0] != "notes" {
		t.Errorf("Expected notes to be empty, got %v", report.EmptyColumns)
	}
	if len(report.UnflattenedColumns) != 1 || report.UnflattenedColumns[0] != "citations" {
		t.Errorf("Expected citations to keep nested cells, got %v", report.UnflattenedColumns)
	}
	if len(report.SuffixedColumns) != 1 || report.SuffixedColumns[0] != "gene_symbol_2" {
		t.Errorf("Expected gene_symbol_2 to be suffixed, got %v", report.SuffixedColumns)
	}
}

func TestReportTableQualityClean(t *testing.T) {
	records := decode(t, `[{"id": 1, "lookup": {"a": 1}}, {"id": 2, "lookup": {"b": 2}}]`)
	report := NewTableValidator().ReportTableQuality("diplotype", table.Normalize(records))

	if report.HasIssues() {
		t.Errorf("Expected a clean report, got %+v", report)
	}
}
