package core

import (
	"time"

	"github.com/ncruces/go-strftime"
)

// FormatError reports a date string that does not match its source pattern.
type FormatError struct {
	Raw string
	Err error // underlying parse error
}

func (e *FormatError) Error() string {
	return "Invalid date format: " + e.Raw
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Reformat parses raw strictly under the strftime pattern sourcePattern and
// renders the result under targetPattern.
//
//	Reformat("12-15-2024", "%m-%d-%Y", "%Y-%m-%d") // "2024-12-15"
//
// Separators and calendar validity must match, though numeric fields may
// omit leading zeros ("1-5-2024" parses under "%m-%d-%Y"). Unsupported
// directives in sourcePattern are rejected.
func Reformat(raw, sourcePattern, targetPattern string) (string, error) {
	t, err := ParseDate(raw, sourcePattern)
	if err != nil {
		return "", err
	}
	return strftime.Format(targetPattern, t), nil
}

// ParseDate parses raw under sourcePattern, returning a *FormatError on mismatch.
func ParseDate(raw, sourcePattern string) (time.Time, error) {
	t, err := strftime.Parse(sourcePattern, raw)
	if err != nil {
		return time.Time{}, &FormatError{Raw: raw, Err: err}
	}
	return t, nil
}
