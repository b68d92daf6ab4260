// Package apperrors defines the error taxonomy of the accounting core.
// Every error surfaces synchronously to the caller with a kind and a
// human-readable detail; nothing is silently retried.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind is a sentinel usable with errors.Is to classify failures.
type Kind string

func (k Kind) Error() string { return string(k) }

const (
	// KindValidation marks invariant violations on input: unbalanced
	// journals, debit-and-credit lines, non-leaf posting targets.
	KindValidation Kind = "validation"
	// KindNotFound marks dangling references to accounts, transactions,
	// budgets, companies, or actors.
	KindNotFound Kind = "not_found"
	// KindStateConflict marks operations invalid for the current
	// lifecycle state.
	KindStateConflict Kind = "state_conflict"
	// KindDuplicate marks uniqueness-key collisions.
	KindDuplicate Kind = "duplicate"
)

// Error carries a kind plus detail. It matches its Kind under errors.Is.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Is lets errors.Is(err, KindValidation) etc. match wrapped errors.
func (e *Error) Is(target error) bool {
	var k Kind
	if errors.As(target, &k) {
		return e.Kind == k
	}
	return false
}

// Validationf builds a validation error.
func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Detail: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a not-found error.
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Detail: fmt.Sprintf(format, args...)}
}

// StateConflictf builds a state-conflict error.
func StateConflictf(format string, args ...any) error {
	return &Error{Kind: KindStateConflict, Detail: fmt.Sprintf(format, args...)}
}

// Duplicatef builds a duplicate-key error.
func Duplicatef(format string, args ...any) error {
	return &Error{Kind: KindDuplicate, Detail: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return errors.Is(err, KindValidation) }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return errors.Is(err, KindNotFound) }

// IsStateConflict reports whether err is a state-conflict error.
func IsStateConflict(err error) bool { return errors.Is(err, KindStateConflict) }

// IsDuplicate reports whether err is a duplicate-key error.
func IsDuplicate(err error) bool { return errors.Is(err, KindDuplicate) }
