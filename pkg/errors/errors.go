package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an API failure carrying a stable code and the HTTP status it maps to.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports a match on Code, so errors derived from a sentinel satisfy errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// Wrap derives an error of the same kind around cause. An empty message keeps the
// sentinel's own.
func (e *Error) Wrap(cause error, message string) *Error {
	derived := Clone(e, message)
	if derived != nil {
		derived.Err = cause
	}
	return derived
}

// New creates a sentinel.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap builds an error of an arbitrary kind around err.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrTokenInvalid       = New("TOKEN_INVALID", http.StatusUnauthorized, "invalid or expired token")
	ErrRoleMismatch       = New("ROLE_MISMATCH", http.StatusForbidden, "role mismatch")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict           = New("CONFLICT", http.StatusBadRequest, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")

	// Validation refinements raised by student writes.
	ErrNotEnrolled       = New("NOT_ENROLLED", http.StatusBadRequest, "not enrolled in this course")
	ErrNotMember         = New("NOT_MEMBER", http.StatusBadRequest, "not a member of this group")
	ErrGroupFull         = New("GROUP_FULL", http.StatusBadRequest, "group is full")
	ErrLeaderCannotLeave = New("LEADER_CANNOT_LEAVE", http.StatusBadRequest, "group leader cannot leave while other members remain")

	// ErrCacheMiss never reaches clients.
	ErrCacheMiss = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError returns err as an *Error, treating anything untyped as internal.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return ErrInternal.Wrap(err, "")
}

// Clone copies a sentinel, optionally replacing its message.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
