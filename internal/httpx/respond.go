package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/AngelCh415/creator-calc/internal/metrics"
	"github.com/AngelCh415/creator-calc/internal/models"
	"github.com/AngelCh415/creator-calc/internal/utils"
)

const maxBody = 1 << 20

type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorBody struct {
	Success bool                `json:"success"`
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Details []models.FieldError `json:"details,omitempty"`
}

// writeJSON encodes before writing the header so an unencodable value still
// yields a well-formed 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", " ")
	if err := enc.Encode(v); err != nil {
		slog.Error("encode response", slog.String("err", err.Error()))
		buf.Reset()
		buf.WriteString(`{"success":false,"error":"INTERNAL_ERROR","message":"internal server error"}` + "\n")
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// writeError maps domain errors to status codes. Anything unrecognised is
// logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var (
		verr *models.ValidationError
		perr *models.UnsupportedPlatformError
		merr *models.InvalidMetricsError
		berr *badRequestError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "VALIDATION_ERROR", Message: "invalid input", Details: verr.Details})
	case errors.As(err, &perr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "UNSUPPORTED_PLATFORM", Message: perr.Error(),
			Details: []models.FieldError{{Field: "platform", Message: "must be one of tiktok, instagram, youtube"}}})
	case errors.As(err, &merr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "INVALID_METRICS", Message: merr.Error(),
			Details: []models.FieldError{{Field: merr.Field, Message: "must be a finite non-negative number"}}})
	case errors.As(err, &berr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "BAD_REQUEST", Message: berr.msg})
	case errors.Is(err, metrics.ErrInvalidMetric):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "INVALID_METRIC", Message: err.Error()})
	case errors.Is(err, models.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "UNAUTHORIZED", Message: "authentication required"})
	case errors.Is(err, models.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody{Error: "FORBIDDEN", Message: "insufficient permissions"})
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "NOT_FOUND", Message: "resource not found"})
	case errors.Is(err, models.ErrLimitExceeded):
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "LIMIT_EXCEEDED", Message: err.Error()})
	default:
		log.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("rid", utils.RID(r.Context())),
			slog.String("err", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "INTERNAL_ERROR", Message: "internal server error"})
	}
}

type badRequestError struct{ msg string }

func (e *badRequestError) Error() string { return e.msg }

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &badRequestError{msg: "request body is required"}
		}
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return &badRequestError{msg: "request body too large"}
		}
		return &badRequestError{msg: "invalid JSON body"}
	}
	return nil
}

func atoiDef(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
