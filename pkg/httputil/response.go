package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/testforge/hrm-e2e/internal/domain"
)

// Error codes that only exist at the HTTP boundary
const (
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeRateLimited  = "RATE_LIMITED"
)

// Response is the envelope of every API body
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error is the error half of the envelope
type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// JSON writes data in a success envelope when status is 2xx
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, Response{Success: status >= 200 && status < 300, Data: data})
}

// JSONError writes an error envelope
func JSONError(w http.ResponseWriter, status int, code, message string, details map[string]any) {
	write(w, status, Response{Error: &Error{Code: code, Message: message, Details: details}})
}

func write(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// ErrorFromDomain converts a suite error to an HTTP response
func ErrorFromDomain(w http.ResponseWriter, err error) {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		JSONError(w, StatusFor(appErr.Code), appErr.Code, appErr.Message, appErr.Metadata)
		return
	}

	JSONError(w, http.StatusInternalServerError, domain.ErrCodeInternal, "internal server error", nil)
}

// StatusFor maps an error code to its HTTP status
func StatusFor(code string) int {
	switch code {
	case domain.ErrCodeValidation, domain.ErrCodeUnsupportedEngine, domain.ErrCodeUnsupportedStrategy:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON strictly decodes the request body into v. An empty body
// leaves v untouched; unknown fields are a validation error.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return domain.ErrValidationField("body", "invalid JSON: "+err.Error())
	}
	return nil
}

// maxBody bounds request bodies; run triggers are a few hundred bytes
const maxBody = 1 << 20
