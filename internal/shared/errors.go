package shared

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Domain error taxonomy. Services wrap these with a human readable reason,
// e.g. fmt.Errorf("%w: only draft vendor bills can be posted", ErrInvalidState).
var (
	// ErrNotFound indicates a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState indicates the record's status forbids the operation.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvariantViolation indicates input that would break a monetary or structural invariant.
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrUpstream indicates an external collaborator failed; callers may retry.
	ErrUpstream = errors.New("upstream failure")
	// ErrDuplicate indicates a unique key already exists.
	ErrDuplicate = errors.New("duplicate")
	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized indicates missing or invalid authentication.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates the caller's role may not perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError carries per-field messages and matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// UserSafeMessage strips the taxonomy prefix so the reason can be shown to callers.
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, sentinel := range []error{ErrNotFound, ErrInvalidState, ErrInvariantViolation, ErrUpstream, ErrDuplicate, ErrForbidden} {
		if errors.Is(err, sentinel) {
			prefix := sentinel.Error() + ": "
			if idx := strings.LastIndex(msg, prefix); idx >= 0 {
				return msg[idx+len(prefix):]
			}
			return msg
		}
	}
	return msg
}
