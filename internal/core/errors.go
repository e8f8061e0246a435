package core

import (
	"errors"
	"fmt"
)

// Code classifies why a room operation was refused.
type Code string

const (
	CodeNotFound          Code = "not_found"
	CodeForbidden         Code = "forbidden"
	CodeConflict          Code = "conflict"
	CodeResourceExhausted Code = "resource_exhausted"
	CodeInvalidState      Code = "invalid_state"
	// CodeUnauthenticated is connection-level and terminal; it never
	// surfaces as an in-room error.
	CodeUnauthenticated Code = "unauthenticated"
)

// Error is a refused transition, returned synchronously on the request
// that caused it.
type Error struct {
	Code Code
	Op   string
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Op, e.Msg, e.Code)
}

func Errf(code Code, op, format string, args ...any) *Error {
	return &Error{Code: code, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the reason code, or empty for non-domain errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
