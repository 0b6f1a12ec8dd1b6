package apperr

import (
	"fmt"
	"net/http"
)

const (
	KindBadRequest   = "Bad Request"
	KindConflict     = "Conflict"
	KindUnauthorized = "Unauthorized"
	KindNotFound     = "Not Found"
	KindServerError  = "Server error"
)

// Error is the value carried across the service boundary for every expected
// business-rule violation and every masked internal failure.
type Error struct {
	Status  int
	Kind    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func BadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Kind: KindBadRequest, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Kind: KindConflict, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Kind: KindUnauthorized, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Kind: KindNotFound, Message: message}
}

// Internal masks an unexpected failure; the cause stays in the logs.
func Internal(message string) *Error {
	return &Error{Status: http.StatusInternalServerError, Kind: KindServerError, Message: message}
}
