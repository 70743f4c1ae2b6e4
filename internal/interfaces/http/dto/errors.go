package dto

import (
	"net/http"

	"github.com/hotelagreement/backend/internal/domain/agreement"
)

// Transport error codes. Pipeline failures keep their domain code.
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidJSON is used when the body is not a JSON object of strings
	ErrCodeInvalidJSON = "INVALID_JSON"
	// ErrCodeValidation is used when a field value is rejected
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeNotFound is used for unknown routes and static files
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeForbidden is used when the client may not read a resource
	ErrCodeForbidden = "FORBIDDEN"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "RATE_LIMIT_EXCEEDED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,

	// Pipeline errors
	agreement.ErrCodeResourceNotFound:  http.StatusNotFound,
	agreement.ErrCodeUnsupportedFormat: http.StatusBadRequest,
	agreement.ErrCodeInvalidLayout:     http.StatusInternalServerError,
	agreement.ErrCodeRenderFailed:      http.StatusInternalServerError,
	agreement.ErrCodeExportFailed:      http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ExposesMessage reports whether the message of an error with this code
// may be returned to the client. Server-side failures get a generic message.
func ExposesMessage(code string) bool {
	return GetHTTPStatus(code) < http.StatusInternalServerError
}
