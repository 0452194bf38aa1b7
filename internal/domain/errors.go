package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies an error into the categories the HTTP surface
// understands. Errors are propagated as typed categories, not strings.
type ErrorKind string

const (
	KindNotFound      ErrorKind = "not_found"
	KindAlreadyExists ErrorKind = "already_exists"
	KindValidation    ErrorKind = "validation_error"
	KindBadRequest    ErrorKind = "bad_request"
	KindUnavailable   ErrorKind = "unavailable"
	KindInternal      ErrorKind = "internal"

	// KindPartial marks an orchestrator result where some sub-component
	// failed but the request still returned.
	KindPartial ErrorKind = "partial"
)

// Error is the typed error carried across package boundaries.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFoundf builds a not_found error.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// AlreadyExistsf builds an already_exists error.
func AlreadyExistsf(format string, args ...any) *Error {
	return &Error{Kind: KindAlreadyExists, Message: fmt.Sprintf(format, args...)}
}

// Validationf builds a validation_error.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// BadRequestf builds a bad_request error.
func BadRequestf(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

// Unavailablef builds an unavailable error.
func Unavailablef(format string, args ...any) *Error {
	return &Error{Kind: KindUnavailable, Message: fmt.Sprintf(format, args...)}
}

// Internalf builds an internal error wrapping the cause.
func Internalf(err error, format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the error kind; unclassified errors are internal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error kind to its status code.
func HTTPStatus(kind ErrorKind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindAlreadyExists:
		return http.StatusConflict
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
