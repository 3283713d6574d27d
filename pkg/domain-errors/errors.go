// Package domainerrors carries coded errors across layers. Services return them,
// transport maps the Code to a status, and tests assert on the Code rather than
// on message text.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// Validation: malformed caller input.
	CodeValidation        Code = "validation_error"
	CodeBadRequest        Code = "bad_request"
	CodeInvalidIdentifier Code = "invalid_identifier"
	CodeInvalidCoordinate Code = "invalid_coordinate"
	CodeInvalidAmount     Code = "invalid_amount"

	// State: the requested transition is not allowed for the current state.
	CodeNotFound          Code = "not_found"
	CodeConflict          Code = "conflict"
	CodeInvalidTransition Code = "invalid_transition"
	CodeNotVerified       Code = "not_verified"
	CodeNotBonded         Code = "not_bonded"
	CodeAlreadyEmployed   Code = "already_employed"
	CodeNotEmployed       Code = "not_employed"
	CodeInsufficientStake Code = "insufficient_stake"
	CodeOutOfRange        Code = "out_of_range"
	CodeNotEligible       Code = "not_eligible"
	CodeAlreadyReleased   Code = "already_released"

	// Access.
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeRateLimited  Code = "rate_limited"

	// Infrastructure.
	CodeTimeout     Code = "timeout"
	CodeUnavailable Code = "unavailable"
	CodeInternal    Code = "internal_error"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error. A nil err yields nil.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// As extracts the outermost *Error from the chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether the outermost domain error in err carries code.
func HasCode(err error, code Code) bool {
	de, ok := As(err)
	return ok && de.Code == code
}

// Is is an alias of HasCode kept for readability at call sites.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the code of the outermost domain error, or CodeInternal.
func CodeOf(err error) Code {
	if de, ok := As(err); ok {
		return de.Code
	}
	return CodeInternal
}

// IsValidation reports whether err is a user-correctable input error.
func IsValidation(err error) bool {
	switch CodeOf(err) {
	case CodeValidation, CodeBadRequest, CodeInvalidIdentifier, CodeInvalidCoordinate, CodeInvalidAmount:
		return true
	}
	return false
}

// IsState reports whether err rejects a lifecycle transition.
func IsState(err error) bool {
	switch CodeOf(err) {
	case CodeInvalidTransition, CodeNotVerified, CodeNotBonded, CodeAlreadyEmployed, CodeNotEmployed,
		CodeInsufficientStake, CodeOutOfRange, CodeNotEligible, CodeAlreadyReleased, CodeConflict:
		return true
	}
	return false
}
