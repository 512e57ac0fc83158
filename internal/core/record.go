package core

// record.go validates person payloads against the fixed Record shape.
//
// Fields are checked in declaration order (name, email, age) and validation
// stops at the first violation. The result is either a fully populated Record
// or a *ValidationError; a payload is never partially accepted.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Violation kinds reported in Violation.Type.
const (
	ViolationMissing        = "missing"
	ViolationStringType     = "string_type"
	ViolationStringTooShort = "string_too_short"
	ViolationIntType        = "int_type"
	ViolationIntParsing     = "int_parsing"
	ViolationIntFromFloat   = "int_from_float"
	ViolationValueError     = "value_error"
	ViolationDictType       = "dict_type"
)

// emailPattern is the accepted email shape. Checked only when
// Validator.EnforceEmailFormat is set.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9_.+-]+@[A-Za-z0-9-]+\.[A-Za-z0-9.-]+$`)

// ErrInvalidEmail is returned by ValidateEmail.
var ErrInvalidEmail = errors.New("Invalid email format")

// Record is a validated person entry.
type Record struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   *int   `json:"age"`
}

// Violation is a single field-level reason a payload was rejected.
type Violation struct {
	Type  string   `json:"type"`
	Loc   []string `json:"loc"`
	Msg   string   `json:"msg"`
	Input any      `json:"input"`
}

// ValidationError carries the violations that rejected a payload.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = fmt.Sprintf("%s: %s", strings.Join(v.Loc, "."), v.Msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ValidateEmail reports whether email matches the accepted email shape.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// Validator checks payloads against the Record shape.
// The zero value accepts any string as email.
type Validator struct {
	EnforceEmailFormat bool
}

// recordField describes how one Record field is checked and stored.
type recordField struct {
	name     string
	required bool
	check    func(v Validator, value any) (any, *Violation)
	assign   func(r *Record, value any)
}

var recordFields = []recordField{
	{
		name:     "name",
		required: true,
		check:    func(_ Validator, value any) (any, *Violation) { return checkName(value) },
		assign:   func(r *Record, value any) { r.Name = value.(string) },
	},
	{
		name:     "email",
		required: true,
		check:    checkEmail,
		assign:   func(r *Record, value any) { r.Email = value.(string) },
	},
	{
		name:   "age",
		check:  func(_ Validator, value any) (any, *Violation) { return checkAge(value) },
		assign: func(r *Record, value any) { r.Age = value.(*int) },
	},
}

// Validate checks payload and returns the Record it describes.
// Unknown keys are ignored.
func (v Validator) Validate(payload map[string]any) (Record, error) {
	var rec Record

	for _, field := range recordFields {
		value, present := payload[field.name]
		if !present || (value == nil && !field.required) {
			if field.required {
				return Record{}, reject(Violation{
					Type:  ViolationMissing,
					Loc:   []string{field.name},
					Msg:   "Field required",
					Input: payload,
				})
			}
			continue
		}

		checked, violation := field.check(v, value)
		if violation != nil {
			violation.Loc = []string{field.name}
			violation.Input = value
			return Record{}, reject(*violation)
		}
		field.assign(&rec, checked)
	}

	return rec, nil
}

// ValidateJSON decodes body as a JSON object and validates it.
// Malformed JSON yields ErrMalformedJSON; a JSON value that is not an
// object yields a *ValidationError.
func (v Validator) ValidateJSON(body []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Record{}, fmt.Errorf("%w: unexpected data after top-level value", ErrMalformedJSON)
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return Record{}, reject(Violation{
			Type:  ViolationDictType,
			Loc:   []string{"body"},
			Msg:   "Input should be a valid dictionary",
			Input: raw,
		})
	}
	return v.Validate(obj)
}

func reject(v Violation) *ValidationError {
	return &ValidationError{Violations: []Violation{v}}
}

func checkName(value any) (any, *Violation) {
	s, ok := value.(string)
	if !ok {
		return nil, &Violation{Type: ViolationStringType, Msg: "Input should be a valid string"}
	}
	if s == "" {
		return nil, &Violation{Type: ViolationStringTooShort, Msg: "String should have at least 1 character"}
	}
	return s, nil
}

func checkEmail(v Validator, value any) (any, *Violation) {
	s, ok := value.(string)
	if !ok {
		return nil, &Violation{Type: ViolationStringType, Msg: "Input should be a valid string"}
	}
	if v.EnforceEmailFormat {
		if err := ValidateEmail(s); err != nil {
			return nil, &Violation{Type: ViolationValueError, Msg: "Value error, " + err.Error()}
		}
	}
	return s, nil
}

// checkAge accepts integers, integral floats and integer strings.
func checkAge(value any) (any, *Violation) {
	var n int
	switch val := value.(type) {
	case int:
		n = val
	case int32:
		n = int(val)
	case int64:
		n = int(val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			n = int(i)
			break
		}
		f, err := val.Float64()
		if err != nil {
			return nil, intParsing()
		}
		i, violation := intFromFloat(f)
		if violation != nil {
			return nil, violation
		}
		n = i
	case float64:
		i, violation := intFromFloat(val)
		if violation != nil {
			return nil, violation
		}
		n = i
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return nil, intParsing()
		}
		n = i
	default:
		return nil, &Violation{Type: ViolationIntType, Msg: "Input should be a valid integer"}
	}
	return &n, nil
}

func intFromFloat(f float64) (int, *Violation) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= 0x1p63 || f < math.MinInt64 {
		return 0, intParsing()
	}
	if f != math.Trunc(f) {
		return 0, &Violation{Type: ViolationIntFromFloat, Msg: "Input should be a valid integer, got a number with a fractional part"}
	}
	return int(f), nil
}

func intParsing() *Violation {
	return &Violation{Type: ViolationIntParsing, Msg: "Input should be a valid integer, unable to parse string as an integer"}
}
