package table

import (
	"strconv"
)

// Normalize builds a Table from records.
//
// The column set is the union of the record keys in first-seen order and
// missing keys become null cells. Names go through NormalizeName; when two
// keys collapse to the same name the later ones get a _2, _3... suffix.
//
// The first non-null cell of a column decides its kind. In an object column
// every object cell is replaced by its JSON text, in a list column every list
// cell is. Cells of the other nested kind are left as they are.
func Normalize(records []Record) *Table {
	var sources []string
	index := make(map[string]int)
	for _, rec := range records {
		for _, f := range rec {
			if _, seen := index[f.Key]; !seen {
				index[f.Key] = len(sources)
				sources = append(sources, f.Key)
			}
		}
	}

	t := &Table{
		Columns: make([]Column, len(sources)),
		Rows:    make([][]Value, len(records)),
	}

	used := make(map[string]bool, len(sources))
	for i, src := range sources {
		name := uniqueName(NormalizeName(src), used)
		used[name] = true
		t.Columns[i] = Column{Name: name, Source: src}
	}

	for r, rec := range records {
		row := make([]Value, len(sources))
		for _, f := range rec {
			row[index[f.Key]] = f.Value
		}
		t.Rows[r] = row
	}

	for c := range t.Columns {
		t.Columns[c].Kind = sampleKind(t.Rows, c)
		flatten(t.Rows, c, t.Columns[c].Kind)
	}

	return t
}

func uniqueName(name string, used map[string]bool) string {
	if !used[name] {
		return name
	}
	for n := 2; ; n++ {
		candidate := name + "_" + strconv.Itoa(n)
		if !used[candidate] {
			return candidate
		}
	}
}

// sampleKind looks at the first non-null cell of column c
func sampleKind(rows [][]Value, c int) ColumnKind {
	for _, row := range rows {
		switch row[c].Kind {
		case KindNull:
			continue
		case KindObject:
			return ColumnObject
		case KindList:
			return ColumnList
		default:
			return ColumnScalar
		}
	}
	return ColumnScalar
}

func flatten(rows [][]Value, c int, kind ColumnKind) {
	var target Kind
	switch kind {
	case ColumnObject:
		target = KindObject
	case ColumnList:
		target = KindList
	default:
		return
	}

	for _, row := range rows {
		if row[c].Kind == target {
			row[c] = String(row[c].Text)
		}
	}
}
