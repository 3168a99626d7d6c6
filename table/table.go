package table

import (
	"strings"
)

// ColumnKind is the treatment a column gets during normalization, fixed by
// the first non-null cell of the column
type ColumnKind int

const (
	ColumnScalar ColumnKind = iota
	ColumnObject
	ColumnList
)

func (k ColumnKind) String() string {
	switch k {
	case ColumnObject:
		return "object"
	case ColumnList:
		return "list"
	default:
		return "scalar"
	}
}

// Column describes one column of a Table
type Column struct {
	Name   string     // normalized lower_snake_case name
	Source string     // key as it appeared in the records
	Kind   ColumnKind // treatment decided from the first non-null cell
}

// Table is the normalized, columnar in-memory form of a record sequence.
// Every row has exactly len(Columns) cells.
type Table struct {
	Columns []Column
	Rows    [][]Value
}

func (t *Table) NumRows() int { return len(t.Rows) }

func (t *Table) NumColumns() int { return len(t.Columns) }

// ColumnNames returns the normalized column names in order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of a column by normalized name, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at row and column name, Null when the column does
// not exist
func (t *Table) Cell(row int, name string) Value {
	i := t.ColumnIndex(name)
	if i < 0 || row < 0 || row >= len(t.Rows) {
		return Null
	}
	return t.Rows[row][i]
}

// Project keeps the columns of names that exist in the table, in the order
// of names. The row count is unchanged.
func (t *Table) Project(names []string) *Table {
	var (
		columns []Column
		indexes []int
	)
	for _, name := range names {
		if i := t.ColumnIndex(name); i >= 0 {
			columns = append(columns, t.Columns[i])
			indexes = append(indexes, i)
		}
	}

	rows := make([][]Value, len(t.Rows))
	for r, row := range t.Rows {
		projected := make([]Value, len(indexes))
		for j, i := range indexes {
			projected[j] = row[i]
		}
		rows[r] = projected
	}

	return &Table{Columns: columns, Rows: rows}
}

// NormalizeName trims, lower-cases and replaces spaces and hyphens with
// underscores
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(name)
}
