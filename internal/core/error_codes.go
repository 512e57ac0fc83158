package core

// error_codes.go maps errors to user-facing messages with support codes.
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Malformed JSON: The request body is not valid JSON
//	         Action: Send a single JSON object
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Schema violation: The payload does not match the record schema
//	         Action: Check the listed fields
//	VAL002 - Invalid date: The date does not match its source pattern
//	         Action: Make the date and from_format agree exactly
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: The upload exceeds the configured size limit
//	FILE002 - Invalid table: The file is not a well-formed CSV or workbook
//	FILE003 - Encoding error: The file is not UTF-8
//	FILE004 - No file: The request has no file part
//	FILE005 - Empty file: The file has no header row
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL002 - System busy: Too many uploads in progress
//	UPL004 - Request cancelled
//	UPL005 - Request timeout
//
// # Default Error (ERR000)
//
// Sentinel and typed errors are matched with errors.Is / errors.As first;
// the text patterns below catch errors produced outside this package
// (net/http, excelize). The first match wins.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrMalformedJSON wraps JSON syntax errors in request bodies.
	ErrMalformedJSON = errors.New("malformed JSON body")

	// ErrEmptyFile is returned when an upload has no header row.
	ErrEmptyFile = errors.New("No columns to parse from file")

	// ErrInvalidEncoding is returned when a CSV upload is not UTF-8.
	ErrInvalidEncoding = errors.New("'utf-8' codec can't decode file")

	// ErrMalformedTable wraps CSV and workbook syntax errors.
	ErrMalformedTable = errors.New("Error tokenizing data")
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgMalformedJSON = UserMessage{"The request body is not valid JSON", "Send a single JSON object", "REQ001"}
	msgSchema        = UserMessage{"The payload does not match the record schema", "Check the listed fields", "VAL001"}
	msgInvalidDate   = UserMessage{"The date does not match its source pattern", "Make the date and from_format agree exactly", "VAL002"}
	msgTooLarge      = UserMessage{"File exceeds the maximum size limit", "Split the file into smaller chunks", "FILE001"}
	msgInvalidTable  = UserMessage{"File is not a valid CSV or workbook", "Ensure every row has no more fields than the header", "FILE002"}
	msgEncoding      = UserMessage{"File contains invalid characters", "Save the file as UTF-8", "FILE003"}
	msgNoFile        = UserMessage{"No file was provided", "Attach the file in the \"file\" form field", "FILE004"}
	msgEmptyFile     = UserMessage{"The uploaded file is empty", "Upload a file with a header row", "FILE005"}
	msgBusy          = UserMessage{"Too many uploads in progress", "Please wait a moment and try again", "UPL002"}
	msgCancelled     = UserMessage{"Request was cancelled", "Please try again", "UPL004"}
	msgTimeout       = UserMessage{"Request timed out", "Try a smaller file or check your connection", "UPL005"}
)

// defaultMessage is returned when no specific mapping matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// sentinelMessages is checked in order with errors.Is.
var sentinelMessages = []struct {
	target error
	msg    UserMessage
}{
	{ErrMalformedJSON, msgMalformedJSON},
	{ErrEmptyFile, msgEmptyFile},
	{ErrInvalidEncoding, msgEncoding},
	{ErrMalformedTable, msgInvalidTable},
	{ErrTooManyUploads, msgBusy},
	{http.ErrMissingFile, msgNoFile},
	{context.Canceled, msgCancelled},
	{context.DeadlineExceeded, msgTimeout},
}

// patternMessages is checked in order with a case-insensitive substring match.
var patternMessages = []struct {
	pattern string
	msg     UserMessage
}{
	{"request body too large", msgTooLarge},
	{"zip: not a valid zip file", msgInvalidTable},
}

// MapError converts an error into a user-friendly message.
// Returns an empty UserMessage for nil.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		return msgSchema
	}
	var ferr *FormatError
	if errors.As(err, &ferr) {
		return msgInvalidDate
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.target) {
			return s.msg
		}
	}

	text := strings.ToLower(err.Error())
	for _, p := range patternMessages {
		if strings.Contains(text, p.pattern) {
			return p.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback. Errors that are not user facing are bugs and get
// logged at error level.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
