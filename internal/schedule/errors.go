package schedule

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the machine-readable kind of a domain error, surfaced to the
// client alongside the human-readable message.
type Code string

const (
	CodeInvalidState  Code = "INVALID_STATE"
	CodeConflict      Code = "CONFLICT"
	CodeLimitExceeded Code = "LIMIT_EXCEEDED"
	CodeOutOfWindow   Code = "OUT_OF_WINDOW"
	CodeNotFound      Code = "NOT_FOUND"
	CodeValidation    Code = "VALIDATION_ERROR"
)

// Error is a domain error of the scheduling workflow. It carries the
// HTTP status the handler layer should respond with so the mapping
// lives next to the taxonomy instead of being redone per handler.
type Error struct {
	Code       Code   `json:"code"`
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ErrInvalidState is returned for actions on terminal schedules or
// transitions the current state does not permit.
func ErrInvalidState(msg string) *Error {
	return &Error{Code: CodeInvalidState, StatusCode: http.StatusConflict, Message: msg}
}

// ErrConflict is returned when a reschedule request is already open.
func ErrConflict(msg string) *Error {
	return &Error{Code: CodeConflict, StatusCode: http.StatusConflict, Message: msg}
}

// ErrLimitExceeded is returned when the daily booking cap is reached.
func ErrLimitExceeded(msg string) *Error {
	return &Error{Code: CodeLimitExceeded, StatusCode: http.StatusConflict, Message: msg}
}

// ErrOutOfWindow is returned for confirmations outside the 0-2 day window.
func ErrOutOfWindow(msg string) *Error {
	return &Error{Code: CodeOutOfWindow, StatusCode: http.StatusBadRequest, Message: msg}
}

// ErrNotFound is returned for unknown schedule or patient ids.
func ErrNotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, StatusCode: http.StatusNotFound, Message: msg}
}

// ErrValidation is returned for malformed dates or reasons.
func ErrValidation(msg string) *Error {
	return &Error{Code: CodeValidation, StatusCode: http.StatusUnprocessableEntity, Message: msg}
}

// AsError unwraps err into a domain *Error if it is one.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
