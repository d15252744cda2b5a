// Package apperr defines the error taxonomy shared by every transport of the
// feed server. Handlers and resolvers only ever render *Error values; anything
// else is treated as an internal failure.
package apperr

import (
	"errors"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeUnauthenticated     Code = "UNAUTHENTICATED"
	CodeMalformedCredential Code = "MALFORMED_CREDENTIAL"
	CodeValidationFailed    Code = "VALIDATION_FAILED"
	CodeNotFound            Code = "NOT_FOUND"
	CodeForbidden           Code = "FORBIDDEN"
	CodeConflict            Code = "CONFLICT"
	CodeInternal            Code = "INTERNAL"
)

// HTTPStatus maps the code to the status used by the REST and GraphQL error envelopes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeUnauthenticated, CodeMalformedCredential:
		return http.StatusUnauthorized
	case CodeValidationFailed:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is the domain error type.
type Error struct {
	Cause   error    // wrapped underlying error, never rendered
	Code    Code     // machine-readable code
	Message string   // client-facing message
	Data    []string // field-level messages for CodeValidationFailed
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Status returns the HTTP status for the error.
func (e *Error) Status() int {
	return e.Code.HTTPStatus()
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Validation creates a CodeValidationFailed error carrying every violation.
func Validation(message string, data []string) *Error {
	return &Error{Code: CodeValidationFailed, Message: message, Data: data}
}

// Internal wraps an unclassified failure.
func Internal(cause error) *Error {
	return Wrap(CodeInternal, "internal server error", cause)
}

// From classifies err. Errors that are not *Error become CodeInternal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// CodeOf returns the code of err: CodeInternal for untagged errors and
// an empty Code for a nil err.
func CodeOf(err error) Code {
	if e := From(err); e != nil {
		return e.Code
	}
	return ""
}

// Sentinels usable with errors.Is.
var (
	ErrUnauthenticated     = New(CodeUnauthenticated, "unauthenticated")
	ErrMalformedCredential = New(CodeMalformedCredential, "malformed credential")
	ErrValidationFailed    = New(CodeValidationFailed, "validation failed")
	ErrNotFound            = New(CodeNotFound, "not found")
	ErrForbidden           = New(CodeForbidden, "forbidden")
	ErrConflict            = New(CodeConflict, "conflict")
	ErrInternal            = New(CodeInternal, "internal")
)
