package dto

import "net/http"

// Error codes exposed by the API. Handlers translate domain errors into
// these codes; clients switch on them rather than on HTTP status alone.
const (
	ErrCodeValidation            = "ERR_VALIDATION"
	ErrCodeNotFound              = "ERR_NOT_FOUND"
	ErrCodeConflict              = "ERR_CONFLICT"
	ErrCodeConcurrency           = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeInvalidState          = "ERR_INVALID_STATE"
	ErrCodeInvalidDates          = "ERR_INVALID_DATES"
	ErrCodeIncompleteEntity      = "ERR_INCOMPLETE_ENTITY"
	ErrCodeClassifierUnavailable = "ERR_CLASSIFIER_UNAVAILABLE"
	ErrCodeActionDelivery        = "ERR_ACTION_DELIVERY_FAILED"
	ErrCodeUnauthorized          = "ERR_UNAUTHORIZED"
	ErrCodeForbidden             = "ERR_FORBIDDEN"
	ErrCodeInternal              = "ERR_INTERNAL"
	ErrCodeUnavailable           = "ERR_SERVICE_UNAVAILABLE"
)

// LegacyErrorCodeMapping maps domain-layer error codes onto the API
// taxonomy. Domain errors keep short codes; the API prefixes them.
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":              ErrCodeNotFound,
	"CONCURRENCY_CONFLICT":   ErrCodeConcurrency,
	"INVALID_STATE":          ErrCodeInvalidState,
	"INVALID_DATES":          ErrCodeInvalidDates,
	"INCOMPLETE_ENTITY":      ErrCodeIncompleteEntity,
	"CLASSIFIER_UNAVAILABLE": ErrCodeClassifierUnavailable,
	"ACTION_DELIVERY_FAILED": ErrCodeActionDelivery,
	"VALIDATION_ERROR":       ErrCodeValidation,
	"CONFLICT":               ErrCodeConflict,
}

var errorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:            http.StatusBadRequest,
	ErrCodeInvalidDates:          http.StatusBadRequest,
	ErrCodeNotFound:              http.StatusNotFound,
	ErrCodeConflict:              http.StatusConflict,
	ErrCodeConcurrency:           http.StatusConflict,
	ErrCodeInvalidState:          http.StatusConflict,
	ErrCodeIncompleteEntity:      http.StatusUnprocessableEntity,
	ErrCodeClassifierUnavailable: http.StatusServiceUnavailable,
	ErrCodeActionDelivery:        http.StatusBadGateway,
	ErrCodeUnauthorized:          http.StatusUnauthorized,
	ErrCodeForbidden:             http.StatusForbidden,
	ErrCodeUnavailable:           http.StatusServiceUnavailable,
	ErrCodeInternal:              http.StatusInternalServerError,
}

// NormalizeErrorCode rewrites a domain error code into its API form.
// Unknown codes pass through unchanged.
func NormalizeErrorCode(code string) string {
	if mapped, ok := LegacyErrorCodeMapping[code]; ok {
		return mapped
	}
	return code
}

// GetHTTPStatus returns the HTTP status for an API error code,
// defaulting to 500 for codes without an explicit mapping.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[NormalizeErrorCode(code)]; ok {
		return status
	}
	return http.StatusInternalServerError
}
