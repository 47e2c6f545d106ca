package api

import (
	"encoding/json"
	"net/http"

	"github.com/zapponejosh/molad-api/internal/calendar"
	"github.com/zapponejosh/molad-api/internal/database"
)

// Response represents a standard API response.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details.
type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Error codes returned alongside the standard HTTP status.
const (
	CodeBadRequest        = "BAD_REQUEST"
	CodeNotFound          = "NOT_FOUND"
	CodeInternal          = "INTERNAL_ERROR"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeDuplicate         = "DUPLICATE"
	CodeRateLimited       = "RATE_LIMITED"
	CodeInvalidHebrewDate = "INVALID_HEBREW_DATE"
	CodeOutOfRange        = "OUT_OF_RANGE"
	CodeSolarUnavailable  = "SOLAR_DATA_UNAVAILABLE"
	CodeHealthCheckFailed = "HEALTH_CHECK_FAILED"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// WriteCreated writes a 201 Created response.
func WriteCreated(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, status int, message string, code ...string) error {
	errInfo := ErrorInfo{
		Message: message,
	}
	if len(code) > 0 {
		errInfo.Code = code[0]
	}

	return WriteJSON(w, status, Response{
		Success: false,
		Error:   &errInfo,
	})
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusNotFound, message, CodeNotFound)
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusBadRequest, message, CodeBadRequest)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusInternalServerError, message, CodeInternal)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusUnauthorized, message, CodeUnauthorized)
}

// WriteTooManyRequests writes a 429 Too Many Requests response.
func WriteTooManyRequests(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusTooManyRequests, message, CodeRateLimited)
}

// errorStatus maps domain errors to an HTTP status and code. The boolean is
// false for errors that should be reported as internal failures.
func errorStatus(err error) (int, string, bool) {
	switch {
	case calendar.IsMissingSolarData(err):
		return http.StatusUnprocessableEntity, CodeSolarUnavailable, true
	case calendar.IsInvalidHebrewDate(err):
		return http.StatusBadRequest, CodeInvalidHebrewDate, true
	case calendar.IsOutOfRange(err):
		return http.StatusBadRequest, CodeOutOfRange, true
	case database.IsNotFound(err):
		return http.StatusNotFound, CodeNotFound, true
	case database.IsDuplicate(err):
		return http.StatusConflict, CodeDuplicate, true
	case database.IsInvalid(err):
		return http.StatusBadRequest, CodeBadRequest, true
	}
	return http.StatusInternalServerError, CodeInternal, false
}
