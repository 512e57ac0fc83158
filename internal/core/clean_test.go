package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClean_FillsGovernedColumns(t *testing.T) {
	in := Table{
		Columns: []string{"name", "email", "age"},
		Rows: []Row{
			{"name": nil, "email": "a@b.com", "age": int64(5)},
			{"name": "X", "email": nil, "age": nil},
		},
	}

	got := Clean(in)

	want := []Row{
		{"name": "Unknown", "email": "a@b.com", "age": int64(5)},
		{"name": "X", "email": "unknown@example.com", "age": int64(0)},
	}
	if diff := cmp.Diff(want, got.Rows); diff != "" {
		t.Errorf("Clean() rows mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(in.Columns, got.Columns); diff != "" {
		t.Errorf("Clean() columns mismatch (-want +got):\n%s", diff)
	}
}

func TestClean_DoesNotModifyInput(t *testing.T) {
	in := Table{
		Columns: []string{"name"},
		Rows:    []Row{{"name": nil}},
	}

	Clean(in)

	if in.Rows[0]["name"] != nil {
		t.Errorf("input row modified: %v", in.Rows[0])
	}
}

func TestClean_UngovernedColumnsUntouched(t *testing.T) {
	in := Table{
		Columns: []string{"name", "city", "score"},
		Rows: []Row{
			{"name": "A", "city": nil, "score": 1.5},
			{"city": "Paris"},
		},
	}

	got := Clean(in)

	want := []Row{
		{"name": "A", "city": nil, "score": 1.5},
		{"name": "Unknown", "city": "Paris"},
	}
	if diff := cmp.Diff(want, got.Rows); diff != "" {
		t.Errorf("Clean() rows mismatch (-want +got):\n%s", diff)
	}
}

func TestClean_AbsentGovernedColumnNotAdded(t *testing.T) {
	in := Table{
		Columns: []string{"name"},
		Rows:    []Row{{"name": nil}},
	}

	got := Clean(in)

	if _, ok := got.Rows[0]["email"]; ok {
		t.Error("email column added")
	}
	if _, ok := got.Rows[0]["age"]; ok {
		t.Error("age column added")
	}
	if diff := cmp.Diff([]string{"name"}, got.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
}

func TestClean_FloatAgeColumn(t *testing.T) {
	in := Table{
		Columns: []string{"age"},
		Kinds:   map[string]Kind{"age": KindFloat},
		Rows:    []Row{{"age": 31.5}, {"age": nil}},
	}

	got := Clean(in)

	if v, ok := got.Rows[1]["age"].(float64); !ok || v != 0 {
		t.Errorf("age default = %#v, want float64(0)", got.Rows[1]["age"])
	}
}

func TestClean_PreservesOrderAndCount(t *testing.T) {
	in := Table{Columns: []string{"name"}}
	for _, n := range []any{"c", nil, "a", nil, "b"} {
		in.Rows = append(in.Rows, Row{"name": n})
	}

	got := Clean(in)

	var names []any
	for _, r := range got.Rows {
		names = append(names, r["name"])
	}
	want := []any{"c", "Unknown", "a", "Unknown", "b"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	if empty := Clean(Table{Columns: []string{"name"}}); len(empty.Rows) != 0 {
		t.Errorf("empty table gained rows: %d", len(empty.Rows))
	}
}

func TestCleanWith_CustomFills(t *testing.T) {
	in := Table{
		Columns: []string{"status"},
		Rows:    []Row{{"status": nil}, {"status": "open"}},
	}

	got := CleanWith(in, []Fill{{Column: "status", Value: "pending"}})

	want := []Row{{"status": "pending"}, {"status": "open"}}
	if diff := cmp.Diff(want, got.Rows); diff != "" {
		t.Errorf("CleanWith() mismatch (-want +got):\n%s", diff)
	}
}
