package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes used across the service layer. Handlers translate these
// to HTTP statuses; the message is the only thing exposed to callers.
const (
	CodeUnauthenticated   = "unauthenticated"
	CodeForbidden         = "forbidden"
	CodeNotFound          = "not_found"
	CodeValidationFailed  = "validation_failed"
	CodeConflict          = "conflict"
	CodePersistenceFailed = "persistence_failed"
	CodeInternal          = "internal"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Unauthenticated(msg string) *Error {
	return New(http.StatusUnauthorized, CodeUnauthenticated, errors.New(msg))
}

func Forbidden(msg string) *Error {
	return New(http.StatusForbidden, CodeForbidden, errors.New(msg))
}

func NotFound(msg string) *Error {
	return New(http.StatusNotFound, CodeNotFound, errors.New(msg))
}

func Validation(msg string) *Error {
	return New(http.StatusBadRequest, CodeValidationFailed, errors.New(msg))
}

func Conflict(msg string) *Error {
	return New(http.StatusConflict, CodeConflict, errors.New(msg))
}

func Persistence(err error) *Error {
	return New(http.StatusInternalServerError, CodePersistenceFailed, err)
}

func Internal(err error) *Error {
	return New(http.StatusInternalServerError, CodeInternal, err)
}

// From returns err as an *Error, wrapping unknown errors as internal so
// that nothing uncategorized crosses the handler boundary.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}
