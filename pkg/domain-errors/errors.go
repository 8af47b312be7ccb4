// Package domainerrors provides coded errors shared across services and
// transports. Services translate store sentinels and precondition failures
// into these so handlers can map them onto HTTP statuses without inspecting
// error strings.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error. Codes are stable API surface: they appear in
// HTTP error envelopes and in logs, so renaming one is a breaking change.
type Code string

const (
	CodeInvalidInput Code = "invalid_input"
	CodeNotFound     Code = "not_found"
	CodeUnauthorized Code = "unauthorized"
	CodeConflict     Code = "conflict"
	CodeInternal     Code = "internal"

	// Precondition codes for the credential lifecycle. Each one aborts the
	// requested operation with no state change; the caller retries once the
	// condition is satisfied.
	CodeNotRegisteredAgent        Code = "not_registered_agent"
	CodeCooldownNotElapsed        Code = "cooldown_not_elapsed"
	CodeChallengeAlreadyActive    Code = "challenge_already_active"
	CodeNoChallengeActive         Code = "no_challenge_active"
	CodeNoCredentialToMaintain    Code = "no_credential_to_maintain"
	CodeCredentialNotExpiringSoon Code = "credential_not_expiring_soon"
	CodeCredentialAlreadyDecayed  Code = "credential_already_decayed"
)

// Error is a coded domain error. Use New or Wrap rather than constructing it
// directly.
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

func (e *Error) Unwrap() error { return e.Err }

// New creates a coded error with a human-readable message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error while preserving the
// chain for errors.Is / errors.As.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the code from an error chain. Unknown errors report
// CodeInternal so transports fail safe.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the message from a coded error, or the raw error text for
// uncoded errors.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// ToHTTPStatus maps a domain code to an HTTP status. Precondition codes map to
// 409/425-style client errors since the caller can retry after satisfying the
// condition.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeConflict, CodeChallengeAlreadyActive:
		return http.StatusConflict
	case CodeNotRegisteredAgent:
		return http.StatusForbidden
	case CodeCooldownNotElapsed:
		return http.StatusTooManyRequests
	case CodeNoChallengeActive, CodeNoCredentialToMaintain,
		CodeCredentialNotExpiringSoon, CodeCredentialAlreadyDecayed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
