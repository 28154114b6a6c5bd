package xerrors

import (
	"errors"
	"fmt"
)

// Common reusable application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("permission denied")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrUpstream     = errors.New("upstream failure")
	ErrInternal     = errors.New("internal server error")
)

// Kind is the machine-checkable category of an application error.
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindPermissionDenied Kind = "permission_denied"
	KindInvalidInput     Kind = "invalid_input"
	KindConflict         Kind = "conflict"
	KindUpstream         Kind = "upstream_failure"
	KindUnauthorized     Kind = "unauthorized"
	KindInternal         Kind = "internal"
)

var kindSentinels = []struct {
	kind Kind
	err  error
}{
	{KindNotFound, ErrNotFound},
	{KindPermissionDenied, ErrForbidden},
	{KindInvalidInput, ErrInvalidInput},
	{KindConflict, ErrConflict},
	{KindUpstream, ErrUpstream},
	{KindUnauthorized, ErrUnauthorized},
	{KindInternal, ErrInternal},
}

// New returns an error carrying a human readable message that matches the
// sentinel of the given kind with errors.Is.
func New(kind Kind, message string) error {
	for _, ks := range kindSentinels {
		if ks.kind == kind {
			return fmt.Errorf("%s: %w", message, ks.err)
		}
	}
	return fmt.Errorf("%s: %w", message, ErrInternal)
}

// Newf is New with formatting.
func Newf(kind Kind, format string, args ...interface{}) error {
	return New(kind, fmt.Sprintf(format, args...))
}

// KindOf reports the kind of err. Errors that wrap none of the sentinels are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, ks := range kindSentinels {
		if errors.Is(err, ks.err) {
			return ks.kind
		}
	}
	return KindInternal
}

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Upstream marks a storage or collaborator failure, keeping the cause in the chain.
func Upstream(err error, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUpstream) {
		return Wrap(err, message)
	}
	return fmt.Errorf("%s: %w: %w", message, ErrUpstream, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
