package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
)

func TestDecodeCSV_Basic(t *testing.T) {
	input := "name,email,age\n,a@b.com,5\nX,,\n"

	got, err := DecodeCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeCSV() error = %v", err)
	}

	if diff := cmp.Diff([]string{"name", "email", "age"}, got.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	want := []Row{
		{"name": nil, "email": "a@b.com", "age": int64(5)},
		{"name": "X", "email": nil, "age": nil},
	}
	if diff := cmp.Diff(want, got.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if got.Kinds["age"] != KindInt {
		t.Errorf("age kind = %v, want int", got.Kinds["age"])
	}
}

func TestDecodeCSV_StripsBOM(t *testing.T) {
	got, err := DecodeCSV(strings.NewReader("\ufeffname,age\nA,1\n"))
	if err != nil {
		t.Fatalf("DecodeCSV() error = %v", err)
	}
	if got.Columns[0] != "name" {
		t.Errorf("first column = %q, want %q", got.Columns[0], "name")
	}
}

func TestDecodeCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		wantMsg string
	}{
		{"empty", "", ErrEmptyFile, "No columns to parse from file"},
		{"blank lines only", "\n\n", ErrEmptyFile, "No columns to parse from file"},
		{"invalid utf-8", "name\n\xff\xfe\n", ErrInvalidEncoding, "invalid start byte 0xff in position 5"},
		{"too many fields", "a,b\n1,2,3\n", ErrMalformedTable, "Expected 2 fields in line 2, saw 3"},
		{"later ragged row", "a,b\n1,2\n3,4\n5,6,7,8\n", ErrMalformedTable, "Expected 2 fields in line 4, saw 4"},
		{"bare quote", "a,b\n1,x\"y\n", ErrMalformedTable, "Error tokenizing data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCSV(strings.NewReader(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("DecodeCSV() error = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantMsg)
			}
			if !IsDecodeError(err) {
				t.Error("IsDecodeError() = false")
			}
		})
	}
}

func TestDecodeCSV_PadsShortRows(t *testing.T) {
	got, err := DecodeCSV(strings.NewReader("a,b,c\n1\n"))
	if err != nil {
		t.Fatalf("DecodeCSV() error = %v", err)
	}
	want := []Row{{"a": int64(1), "b": nil, "c": nil}}
	if diff := cmp.Diff(want, got.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeCSV_HeaderOnly(t *testing.T) {
	got, err := DecodeCSV(strings.NewReader("name,email\n"))
	if err != nil {
		t.Fatalf("DecodeCSV() error = %v", err)
	}
	if len(got.Rows) != 0 {
		t.Errorf("rows = %d, want 0", len(got.Rows))
	}
	if len(got.Columns) != 2 {
		t.Errorf("columns = %v", got.Columns)
	}
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"a", "b"}, []string{"a", "b"}},
		{[]string{"a", "", "a", "a"}, []string{"a", "Unnamed: 1", "a.1", "a.2"}},
		{[]string{"", " "}, []string{"Unnamed: 0", "Unnamed: 1"}},
		{[]string{"a", "a.1", "a"}, []string{"a", "a.1", "a.2"}},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, normalizeHeader(tt.in)); diff != "" {
			t.Errorf("normalizeHeader(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestDecodeCSV_NATokens(t *testing.T) {
	input := "v\nNA\nnull\nN/A\nNaN\n#N/A\nNone\n"

	got, err := DecodeCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeCSV() error = %v", err)
	}
	for i, row := range got.Rows {
		if !row.Missing("v") {
			t.Errorf("row %d: %v not read as missing", i, row["v"])
		}
	}
	if got.Kinds["v"] != KindEmpty {
		t.Errorf("kind = %v, want empty", got.Kinds["v"])
	}
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		name  string
		cells []string
		want  Kind
	}{
		{"ints", []string{"1", "-2", "", "+3"}, KindInt},
		{"mixed numeric", []string{"1", "2.5"}, KindFloat},
		{"exponent", []string{"1e3"}, KindFloat},
		{"bools", []string{"True", "false", "NA"}, KindBool},
		{"bool and int", []string{"true", "1"}, KindString},
		{"text", []string{"1", "x"}, KindString},
		{"infinity is text", []string{"inf"}, KindString},
		{"all missing", []string{"", "NA"}, KindEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferKind(tt.cells); got != tt.want {
				t.Errorf("InferKind(%q) = %v, want %v", tt.cells, got, tt.want)
			}
		})
	}
}

func TestDecodeCSV_ConvertsByColumnKind(t *testing.T) {
	got, err := DecodeCSV(strings.NewReader("i,f,b,s\n1,1,True,7\n2,2.5,false,x\n"))
	if err != nil {
		t.Fatalf("DecodeCSV() error = %v", err)
	}
	want := []Row{
		{"i": int64(1), "f": float64(1), "b": true, "s": "7"},
		{"i": int64(2), "f": 2.5, "b": false, "s": "x"},
	}
	if diff := cmp.Diff(want, got.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeXLSX(t *testing.T) {
	data := buildWorkbook(t, [][]string{
		{"name", "email", "age"},
		{"Alice", "", "30"},
		{"", "", ""},
		{"", "b@x.com", ""},
	})

	got, err := DecodeXLSX(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeXLSX() error = %v", err)
	}

	want := []Row{
		{"name": "Alice", "email": nil, "age": int64(30)},
		{"name": nil, "email": "b@x.com", "age": nil},
	}
	if diff := cmp.Diff(want, got.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeXLSX_NotAWorkbook(t *testing.T) {
	_, err := DecodeXLSX(strings.NewReader("name,email\n"))
	if !errors.Is(err, ErrMalformedTable) {
		t.Errorf("DecodeXLSX() error = %v, want ErrMalformedTable", err)
	}
}

func TestDecodeXLSX_Empty(t *testing.T) {
	data := buildWorkbook(t, nil)

	_, err := DecodeXLSX(bytes.NewReader(data))
	if !errors.Is(err, ErrEmptyFile) {
		t.Errorf("DecodeXLSX() error = %v, want ErrEmptyFile", err)
	}
}

func TestDecodeTable_Dispatch(t *testing.T) {
	workbook := buildWorkbook(t, [][]string{{"name"}, {"A"}})

	got, err := DecodeTable("People.XLSX", bytes.NewReader(workbook))
	if err != nil {
		t.Fatalf("DecodeTable(xlsx) error = %v", err)
	}
	if len(got.Rows) != 1 {
		t.Errorf("xlsx rows = %d, want 1", len(got.Rows))
	}

	for _, name := range []string{"people.csv", "people.txt", "people"} {
		got, err := DecodeTable(name, strings.NewReader("name\nA\nB\n"))
		if err != nil {
			t.Fatalf("DecodeTable(%q) error = %v", name, err)
		}
		if len(got.Rows) != 2 {
			t.Errorf("%s rows = %d, want 2", name, len(got.Rows))
		}
	}
}

func TestTable_RecordsKeepColumnOrder(t *testing.T) {
	tbl, err := DecodeCSV(strings.NewReader("z,a,m\n1,,x\n"))
	if err != nil {
		t.Fatalf("DecodeCSV() error = %v", err)
	}

	data, err := json.Marshal(tbl.Records())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `[{"z":1,"a":null,"m":"x"}]`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}

// buildWorkbook writes rows into Sheet1 of a new workbook, skipping empty cells.
func buildWorkbook(t *testing.T, rows [][]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		for j, v := range row {
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetCellValue("Sheet1", cell, v); err != nil {
				t.Fatal(err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error = %v", err)
	}
	return buf.Bytes()
}
