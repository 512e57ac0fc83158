package web

// errors.go writes every non-2xx response.
//
// Bodies always have the shape {"detail": ...}: a string for request-level
// failures, or a list of violations for field-level ones. The technical error
// is logged with the request ID and its support code from core.MapError; on
// upload failures the code is also sent as the X-Error-Code header.

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JonMunkholm/datatx/internal/core"
	"github.com/JonMunkholm/datatx/internal/logging"
)

// errorCodeHeader carries the core.MapError code on failed uploads.
const errorCodeHeader = "X-Error-Code"

// msgBodyParse is returned when a request body cannot be parsed at all.
const msgBodyParse = "There was an error parsing the body"

// detailResponse is the body of every error response.
type detailResponse struct {
	Detail any `json:"detail"`
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are logged since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode failed", "error", err)
	}
}

// writeDetail writes {"detail": detail}.
func writeDetail(w http.ResponseWriter, r *http.Request, status int, detail any) {
	writeJSON(w, r, status, detailResponse{Detail: detail})
}

// respondError logs err with its support code and writes {"detail": message}.
// Errors that do not map to a known code are logged at error level.
func respondError(w http.ResponseWriter, r *http.Request, err error, status int, message string) {
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if core.IsUserFacing(err) {
		logger.Warn("request failed", args...)
	} else {
		logger.Error("request failed", args...)
	}

	writeDetail(w, r, status, message)
}

// respondViolations writes a 422 listing the violations.
func respondViolations(w http.ResponseWriter, r *http.Request, violations []core.Violation) {
	logging.FromContext(r.Context()).Debug("payload rejected",
		"path", r.URL.Path,
		"violations", len(violations),
	)
	writeDetail(w, r, http.StatusUnprocessableEntity, violations)
}

// missingField is the violation for an absent form field.
func missingField(name string) core.Violation {
	return core.Violation{
		Type: core.ViolationMissing,
		Loc:  []string{"body", name},
		Msg:  "Field required",
	}
}

// isTooLarge reports whether err came from an http.MaxBytesReader limit.
func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeDetail(w, r, http.StatusNotFound, "Not Found")
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeDetail(w, r, http.StatusMethodNotAllowed, "Method Not Allowed")
}
