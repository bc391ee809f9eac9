package dto

import "net/http"

// Error codes surfaced by the API. Domain errors keep their code; codes not
// raised by the domain layer are minted here.
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeAlreadyExists   = "ALREADY_EXISTS"
	ErrCodeConcurrency     = "CONCURRENCY_CONFLICT"
	ErrCodeUnknownCarrier  = "UNKNOWN_CARRIER"
	ErrCodeEmailMismatch   = "EMAIL_MISMATCH"
	ErrCodePeriodExpired   = "PERIOD_EXPIRED"
	ErrCodeNumberExhausted = "NUMBER_EXHAUSTED"
	ErrCodeDelivery        = "EXTERNAL_DELIVERY_FAILURE"
	ErrCodeTooLarge        = "REQUEST_TOO_LARGE"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeAlreadyExists:   http.StatusConflict,
	ErrCodeConcurrency:     http.StatusConflict,
	ErrCodeUnknownCarrier:  http.StatusUnprocessableEntity,
	ErrCodeEmailMismatch:   http.StatusUnprocessableEntity,
	ErrCodePeriodExpired:   http.StatusUnprocessableEntity,
	ErrCodeNumberExhausted: http.StatusServiceUnavailable,
	ErrCodeDelivery:        http.StatusBadGateway,
	ErrCodeTooLarge:        http.StatusRequestEntityTooLarge,
	ErrCodeInternal:        http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes fall back to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
