package core

import (
	"maps"
	"slices"
)

// Fill is the default written into a governed column's missing cells.
type Fill struct {
	Column string
	Value  any
}

// DefaultFills are the governed columns and their defaults.
var DefaultFills = []Fill{
	{Column: "name", Value: "Unknown"},
	{Column: "email", Value: "unknown@example.com"},
	{Column: "age", Value: int64(0)},
}

// Clean fills missing name, email and age cells with DefaultFills.
func Clean(t Table) Table {
	return CleanWith(t, DefaultFills)
}

// CleanWith returns a copy of t in which every missing cell of a filled
// column is replaced by that column's default. Columns that are not in
// t.Columns are not added, other columns pass through unchanged, and row
// order and count are preserved. t is not modified.
func CleanWith(t Table, fills []Fill) Table {
	out := Table{
		Columns: slices.Clone(t.Columns),
		Kinds:   maps.Clone(t.Kinds),
		Rows:    make([]Row, len(t.Rows)),
	}

	active := make([]Fill, 0, len(fills))
	for _, f := range fills {
		if slices.Contains(t.Columns, f.Column) {
			active = append(active, Fill{Column: f.Column, Value: t.Kinds[f.Column].coerce(f.Value)})
		}
	}

	for i, row := range t.Rows {
		cleaned := make(Row, len(row)+len(active))
		maps.Copy(cleaned, row)
		for _, f := range active {
			if cleaned.Missing(f.Column) {
				cleaned[f.Column] = f.Value
			}
		}
		out.Rows[i] = cleaned
	}

	return out
}
