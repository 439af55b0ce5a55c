package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the client-visible error shape. Status maps directly to the HTTP
// response code; Code is a stable machine-readable reason.
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

// Validation rejects malformed input before any mutation.
func Validation(code string, err error) *Error {
	return New(http.StatusBadRequest, code, err)
}

// NotFound covers missing rows and rows owned by another user alike.
func NotFound(code string, err error) *Error {
	return New(http.StatusNotFound, code, err)
}

// Conflict is an expected, user-facing outcome (duration_conflict,
// blocked_slot, milestone_not_empty); callers present it, never retry it.
func Conflict(code string, err error) *Error {
	return New(http.StatusConflict, code, err)
}

// ExternalFetch marks an unreachable or unparsable external feed.
func ExternalFetch(code string, err error) *Error {
	return New(http.StatusBadGateway, code, err)
}

// From extracts an *Error from err's chain, or nil.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}
