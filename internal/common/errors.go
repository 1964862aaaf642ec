// Package common holds the helpers shared across handler packages:
// the error protocol, response encoding and request parsing.
package common

import "errors"

// Stable error codes returned in API error payloads.
const (
	CodeSnapshotMissing   = "SNAPSHOT_MISSING"
	CodeSnapshotMalformed = "SNAPSHOT_MALFORMED"
	CodeNotFound          = "NOT_FOUND"
	CodeValidation        = "VALIDATION"
	CodeRateLimited       = "RATE_LIMITED"
	CodeInternal          = "INTERNAL"
)

// AppError carries a stable code and HTTP status alongside the wrapped
// cause. Services classify failures into AppErrors at the point they
// occur; handlers translate them into the error envelope.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// NewAppError builds an AppError around err.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

func (e *AppError) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Message
	}
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsAppError reports whether err carries an AppError anywhere in its chain.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}
