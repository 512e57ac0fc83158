package core

// decode.go turns uploaded bytes into a Table.
//
// CSV uploads must be UTF-8 (a leading BOM is dropped). XLSX uploads are
// read from their first sheet. In both cases the first non-blank row is the
// header, blank header cells become "Unnamed: <i>", repeated headers get a
// ".<n>" suffix, and each column's kind is inferred from its non-missing cells.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// rawRow is one data row with its 1-based source line.
type rawRow struct {
	line   int
	fields []string
}

// DecodeTable decodes r according to the extension of filename.
// .xlsx and .xlsm are read as workbooks; everything else as CSV.
func DecodeTable(filename string, r io.Reader) (Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return DecodeXLSX(r)
	default:
		return DecodeCSV(r)
	}
}

// DecodeCSV reads a whole CSV document into a Table.
func DecodeCSV(r io.Reader) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, fmt.Errorf("read upload: %w", err)
	}

	text, err := decodeUTF8(data)
	if err != nil {
		return Table{}, err
	}

	cr := csv.NewReader(bytes.NewReader(text))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return Table{}, ErrEmptyFile
	}
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrMalformedTable, err)
	}

	var rows []rawRow
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("%w: %v", ErrMalformedTable, err)
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, rawRow{line: line, fields: fields})
	}

	return buildTable(header, rows)
}

// DecodeXLSX reads the first sheet of a workbook into a Table.
func DecodeXLSX(r io.Reader) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrMalformedTable, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return Table{}, ErrEmptyFile
	}

	all, err := f.GetRows(sheet)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrMalformedTable, err)
	}

	var header []string
	var rows []rawRow
	for i, cells := range all {
		if isBlankRow(cells) {
			continue
		}
		if header == nil {
			header = cells
			continue
		}
		rows = append(rows, rawRow{line: i + 1, fields: cells})
	}
	if header == nil {
		return Table{}, ErrEmptyFile
	}

	return buildTable(header, rows)
}

// decodeUTF8 rejects invalid UTF-8 and strips a leading byte order mark.
func decodeUTF8(data []byte) ([]byte, error) {
	for pos := 0; pos < len(data); {
		r, size := utf8.DecodeRune(data[pos:])
		if r == utf8.RuneError && size == 1 {
			return nil, fmt.Errorf("%w: invalid start byte 0x%02x in position %d", ErrInvalidEncoding, data[pos], pos)
		}
		pos += size
	}

	out, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return out, nil
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

// buildTable normalizes the header, infers column kinds and converts cells.
func buildTable(header []string, rows []rawRow) (Table, error) {
	columns := normalizeHeader(header)
	width := len(columns)

	cells := make([][]string, width)
	for _, row := range rows {
		if len(row.fields) > width {
			return Table{}, fmt.Errorf("%w: Expected %d fields in line %d, saw %d",
				ErrMalformedTable, width, row.line, len(row.fields))
		}
		for j := 0; j < width; j++ {
			if j < len(row.fields) {
				cells[j] = append(cells[j], row.fields[j])
			} else {
				cells[j] = append(cells[j], "")
			}
		}
	}

	kinds := make(map[string]Kind, width)
	for j, col := range columns {
		kinds[col] = InferKind(cells[j])
	}

	t := Table{Columns: columns, Kinds: kinds, Rows: make([]Row, len(rows))}
	for i := range rows {
		row := make(Row, width)
		for j, col := range columns {
			raw := cells[j][i]
			if IsNA(raw) {
				row[col] = nil
				continue
			}
			row[col] = convertCell(raw, kinds[col])
		}
		t.Rows[i] = row
	}

	return t, nil
}

// normalizeHeader names blank columns and de-duplicates repeated names.
func normalizeHeader(header []string) []string {
	columns := make([]string, len(header))
	seen := make(map[string]int, len(header))
	taken := make(map[string]bool, len(header))

	for i, h := range header {
		name := h
		if strings.TrimSpace(name) == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		base := name
		for taken[name] {
			seen[base]++
			name = base + "." + strconv.Itoa(seen[base])
		}
		taken[name] = true
		columns[i] = name
	}

	return columns
}

// IsDecodeError reports whether err came from reading an upload rather than
// from a bug.
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrEmptyFile) ||
		errors.Is(err, ErrInvalidEncoding) ||
		errors.Is(err, ErrMalformedTable)
}
