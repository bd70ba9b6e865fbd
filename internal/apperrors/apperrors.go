package apperrors

import (
	"fmt"
	"net/http"
)

// Error codes returned to callers. Codes are stable; messages are not.
const (
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeInvalidQuery      = "INVALID_QUERY"
	CodeValidationError   = "VALIDATION_ERROR"
	CodeInvalidDates      = "INVALID_DATES"
	CodeInvalidCapacity   = "INVALID_CAPACITY"
	CodeCapacityExceeded  = "CAPACITY_EXCEEDED"
	CodeDriverUnavailable = "DRIVER_UNAVAILABLE"
	CodeTripCancelled     = "TRIP_CANCELLED"
	CodeNotFound          = "NOT_FOUND"
	CodeFetchFailed       = "FETCH_FAILED"
	CodeCreationFailed    = "CREATION_FAILED"
	CodeOperationFailed   = "OPERATION_FAILED"
	CodeNetworkError      = "NETWORK_ERROR"
)

// FieldError describes a single invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a coded application error. Code is machine-readable and stable,
// Message is for humans, Details carries field-level validation detail, and
// Err holds the underlying collaborator failure when there is one.
type Error struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
	Err     error        `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error code to an HTTP status code.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidQuery, CodeValidationError, CodeInvalidDates,
		CodeInvalidCapacity, CodeCapacityExceeded, CodeDriverUnavailable,
		CodeTripCancelled:
		return http.StatusBadRequest
	case CodeNetworkError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// New creates a coded error.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a coded error around a collaborator failure.
func Wrap(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func Unauthorized() *Error {
	return New(CodeUnauthorized, "authentication required")
}

func Forbidden() *Error {
	return New(CodeForbidden, "insufficient permissions")
}

func InvalidQuery(details []FieldError) *Error {
	return &Error{Code: CodeInvalidQuery, Message: "invalid query parameters", Details: details}
}

func Validation(message string) *Error {
	return New(CodeValidationError, message)
}

func NotFound(entity string) *Error {
	return New(CodeNotFound, entity+" not found")
}

func InvalidDates() *Error {
	return New(CodeInvalidDates, "arrival time must be after departure time")
}

func InvalidCapacity() *Error {
	return New(CodeInvalidCapacity, "total capacity must be at least 1 kg")
}

func CapacityExceeded() *Error {
	return New(CodeCapacityExceeded, "requested weight exceeds remaining trip capacity")
}

func DriverUnavailable() *Error {
	return New(CodeDriverUnavailable, "driver is already assigned to an active trip")
}

func TripCancelled() *Error {
	return New(CodeTripCancelled, "trip has been cancelled and no longer accepts bookings")
}

func FetchFailed(err error) *Error {
	return Wrap(CodeFetchFailed, "failed to fetch data", err)
}

func CreationFailed(err error) *Error {
	return Wrap(CodeCreationFailed, "failed to create record", err)
}

func OperationFailed(err error) *Error {
	return Wrap(CodeOperationFailed, "operation failed", err)
}
