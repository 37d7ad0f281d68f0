package callable

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a canonical status code as used by the Firebase callable protocol.
// The mobile client branches on these to pick a localized message, so the
// exact string values are part of the wire contract.
type Code string

const (
	CodeInvalidArgument  Code = "INVALID_ARGUMENT"
	CodeUnauthenticated  Code = "UNAUTHENTICATED"
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeNotFound         Code = "NOT_FOUND"
	CodeAlreadyExists    Code = "ALREADY_EXISTS"
	CodeDataLoss         Code = "DATA_LOSS"
	CodeInternal         Code = "INTERNAL"
	CodeUnavailable      Code = "UNAVAILABLE"
	CodeUnknown          Code = "UNKNOWN"
)

// HTTPStatus maps a canonical code to the HTTP status the callable
// protocol prescribes for it.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists:
		return http.StatusConflict
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a typed failure carried from the exchange pipeline out to the
// HTTP surface. Every terminal failure in a callable invocation is one of
// these; anything else gets wrapped as INTERNAL before leaving the process.
type Error struct {
	Code    Code   `json:"status"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return string(e.Code)
}

func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsError returns err as a callable *Error, wrapping unexpected errors as
// INTERNAL so a raw error string never reaches the client.
func AsError(err error) *Error {
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return &Error{Code: CodeInternal, Message: "internal error"}
}
