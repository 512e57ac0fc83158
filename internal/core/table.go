package core

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
)

// Row maps a column name to its cell value. An absent key or a nil value
// both mean the cell is missing.
type Row map[string]any

// Missing reports whether the cell for col is absent or nil.
func (r Row) Missing(col string) bool {
	v, ok := r[col]
	return !ok || v == nil
}

// Kind is the inferred value type of a column.
type Kind int

const (
	KindEmpty Kind = iota // every cell missing
	KindInt
	KindFloat
	KindBool
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return "empty"
	}
}

// coerce adapts a fill value to the column kind so numeric columns stay
// homogeneous.
func (k Kind) coerce(v any) any {
	if k != KindFloat {
		return v
	}
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return v
}

// Table is an in-memory grid decoded from an uploaded file.
// Columns holds the header in file order; Kinds is optional.
type Table struct {
	Columns []string
	Kinds   map[string]Kind
	Rows    []Row
}

// Records returns the rows as JSON-ready objects whose keys follow column order.
func (t Table) Records() []OrderedRow {
	out := make([]OrderedRow, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = OrderedRow{Columns: t.Columns, Row: row}
	}
	return out
}

// OrderedRow marshals a Row as a JSON object with keys in Columns order.
// Missing cells encode as null.
type OrderedRow struct {
	Columns []string
	Row     Row
}

func (o OrderedRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range o.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(o.Row[col])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// naValues are the cell texts read as missing.
var naValues = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsNA reports whether a raw cell should be treated as missing.
func IsNA(s string) bool {
	_, ok := naValues[s]
	return ok
}

// numericRegex matches plain decimal numbers with optional exponent.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// InferKind picks the narrowest kind that fits every non-missing cell.
func InferKind(cells []string) Kind {
	kind := KindEmpty
	for _, c := range cells {
		if IsNA(c) {
			continue
		}
		kind = widen(kind, cellKind(c))
		if kind == KindString {
			return kind
		}
	}
	return kind
}

func cellKind(s string) Kind {
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return KindInt
	}
	if numericRegex.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) {
			return KindFloat
		}
	}
	if _, ok := parseBool(s); ok {
		return KindBool
	}
	return KindString
}

func widen(a, b Kind) Kind {
	switch {
	case a == KindEmpty:
		return b
	case a == b:
		return a
	case (a == KindInt && b == KindFloat) || (a == KindFloat && b == KindInt):
		return KindFloat
	default:
		return KindString
	}
}

// convertCell turns raw text into a value of the column kind.
// Callers have already filtered missing cells.
func convertCell(s string, kind Kind) any {
	switch kind {
	case KindInt:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case KindFloat:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case KindBool:
		if b, ok := parseBool(s); ok {
			return b
		}
	}
	return s
}

func parseBool(s string) (bool, bool) {
	switch s {
	case "True", "TRUE", "true":
		return true, true
	case "False", "FALSE", "false":
		return false, true
	}
	return false, false
}
