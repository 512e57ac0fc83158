package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/JonMunkholm/datatx/internal/core"
	"github.com/JonMunkholm/datatx/internal/logging"
	"github.com/google/uuid"
)

// maxFormMemory bounds the in-memory part of small form bodies.
const maxFormMemory = 1 << 20

const welcomeMessage = "Welcome to the Unified Data Transformation and Validation API"

// dateFields are the form fields of /transform-date in report order.
var dateFields = []string{"date_str", "from_format", "to_format"}

type messageResponse struct {
	Message string `json:"message"`
}

type validateResponse struct {
	Message       string      `json:"message"`
	ValidatedData core.Record `json:"validated_data"`
}

type transformDateResponse struct {
	Message         string `json:"message"`
	TransformedDate string `json:"transformed_date"`
}

type uploadCleanResponse struct {
	Message     string            `json:"message"`
	CleanedData []core.OrderedRow `json:"cleaned_data"`
}

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, messageResponse{Message: welcomeMessage})
}

// handleValidate checks a JSON object against the record schema.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize))
	if err != nil {
		if isTooLarge(err) {
			respondError(w, r, err, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		respondError(w, r, err, http.StatusBadRequest, msgBodyParse)
		return
	}

	rec, err := s.validator.ValidateJSON(body)
	if err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			respondViolations(w, r, verr.Violations)
			return
		}
		respondError(w, r, err, http.StatusBadRequest, msgBodyParse)
		return
	}

	writeJSON(w, r, http.StatusOK, validateResponse{
		Message:       "Validation successful",
		ValidatedData: rec,
	})
}

// handleTransformDate reparses date_str under from_format and renders it
// under to_format. Fields may be urlencoded or multipart.
func (s *Server) handleTransformDate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)
	if err := parseForm(r, maxFormMemory); err != nil {
		if isTooLarge(err) {
			respondError(w, r, err, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		respondError(w, r, err, http.StatusBadRequest, msgBodyParse)
		return
	}

	values := make(map[string]string, len(dateFields))
	var missing []core.Violation
	for _, name := range dateFields {
		v := r.PostFormValue(name)
		if v == "" {
			missing = append(missing, missingField(name))
			continue
		}
		values[name] = v
	}
	if len(missing) > 0 {
		respondViolations(w, r, missing)
		return
	}

	out, err := core.Reformat(values["date_str"], values["from_format"], values["to_format"])
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, transformDateResponse{
		Message:         "Date transformed successfully",
		TransformedDate: out,
	})
}

// handleUploadClean decodes an uploaded CSV or XLSX file and fills missing
// name, email and age cells. The whole file is held in memory, so uploads
// take a limiter slot first.
func (s *Server) handleUploadClean(w http.ResponseWriter, r *http.Request) {
	uploadID := uuid.NewString()
	logger := logging.WithFields(r.Context(), "upload_id", uploadID)

	if err := s.limiter.Acquire(r.Context()); err != nil {
		w.Header().Set(errorCodeHeader, core.MapError(err).Code)
		respondError(w, r, err, http.StatusServiceUnavailable, core.MapError(err).Message)
		return
	}
	defer s.limiter.Release()

	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := parseForm(r, maxSize); err != nil {
		if isTooLarge(err) {
			w.Header().Set(errorCodeHeader, core.MapError(err).Code)
			respondError(w, r, err, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		respondError(w, r, err, http.StatusBadRequest, msgBodyParse)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondViolations(w, r, []core.Violation{missingField("file")})
		return
	}
	defer file.Close()

	start := time.Now()
	logger.Info("upload received", "filename", header.Filename, "size", header.Size)

	table, err := core.DecodeTable(header.Filename, file)
	if err != nil {
		// Unreadable files are the client's problem; anything else is ours.
		level := slog.LevelError
		if core.IsDecodeError(err) {
			level = slog.LevelWarn
		}
		code := core.MapError(err).Code
		logger.Log(r.Context(), level, "upload decode failed",
			"filename", header.Filename,
			"error", err.Error(),
			"code", code,
		)
		w.Header().Set(errorCodeHeader, code)
		writeDetail(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	cleaned := core.Clean(table)

	logger.Info("upload cleaned",
		"rows", len(cleaned.Rows),
		"columns", len(cleaned.Columns),
		"kinds", columnKinds(cleaned),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	writeJSON(w, r, http.StatusOK, uploadCleanResponse{
		Message:     "Data cleaned successfully",
		CleanedData: cleaned.Records(),
	})
}

// columnKinds lists each column's inferred kind in column order.
func columnKinds(t core.Table) []string {
	kinds := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		kinds[i] = col + ":" + t.Kinds[col].String()
	}
	return kinds
}

// parseForm parses urlencoded and multipart bodies alike.
// Bodies of any other type leave r.PostForm empty.
func parseForm(r *http.Request, maxMemory int64) error {
	err := r.ParseMultipartForm(maxMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	return err
}
