// Package apperrors defines the request-level error taxonomy. Services wrap
// these sentinels with context; the api layer maps them to HTTP statuses with
// errors.Is.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation covers malformed ids, malformed week identifiers,
	// missing required fields and empty task/section lists.
	ErrValidation = errors.New("validation error")

	// ErrNotFound covers absent resources and resources outside the caller's
	// permitted view. Owner-filtered lookups that match nothing surface this,
	// not ErrForbidden, so unauthorized callers learn nothing about
	// existence.
	ErrNotFound = errors.New("not found")

	// ErrConflict covers uniqueness violations (duplicate week report,
	// duplicate email).
	ErrConflict = errors.New("conflict")

	// ErrForbidden covers explicit role/ownership mismatches, used only
	// where the resource is looked up without an owner filter first.
	ErrForbidden = errors.New("forbidden")

	// ErrInternal covers store failures and unexpected store shapes. The
	// caller gets a generic message; details stay in the logs.
	ErrInternal = errors.New("internal error")
)

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
}

func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrConflict}, args...)...)
}

func Forbiddenf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrForbidden}, args...)...)
}

func Internalf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInternal}, args...)...)
}
