package apierr

import (
	"errors"
	"fmt"
)

// Error is an error that knows how it should be rendered over HTTP.
type Error struct {
	Status int
	Code   string
	Err    error
	// Fields carries per-field validation messages.
	Fields map[string]string
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

// Validation builds a 400 error with field details.
func Validation(status int, fields map[string]string) *Error {
	return &Error{Status: status, Code: "invalid_request", Err: errors.New("request validation failed"), Fields: fields}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		return ae, true
	}
	return nil, false
}
