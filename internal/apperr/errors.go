// Package apperr defines the error taxonomy shared by the progress core,
// its stores and the CLI.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthenticated means no user identity was available.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrProgressNotFound means the user has no progress record yet.
	ErrProgressNotFound = errors.New("user progress not found")
	// ErrChallengeNotFound means the challenge id does not resolve.
	ErrChallengeNotFound = errors.New("challenge not found")
	// ErrCourseNotFound means the course id does not resolve.
	ErrCourseNotFound = errors.New("course not found")
	// ErrLessonNotFound means the lesson id does not resolve.
	ErrLessonNotFound = errors.New("lesson not found")

	// ErrConflict indicates a concurrent writer won the race for the same row.
	ErrConflict = errors.New("transaction conflict")
	// ErrTimeout indicates a repository call exceeded its deadline.
	ErrTimeout = errors.New("operation timed out")

	// ErrInvariant indicates malformed curriculum or persisted data.
	ErrInvariant = errors.New("invariant violation")
	// ErrValidation indicates bad caller input.
	ErrValidation = errors.New("validation failed")
)

// InvariantError describes a data defect found while serving a request.
type InvariantError struct {
	Entity string
	ID     int64
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation: %s %d: %s", e.Entity, e.ID, e.Reason)
}

func (e *InvariantError) Unwrap() error { return ErrInvariant }

// Invariant returns an *InvariantError for the given entity.
func Invariant(entity string, id int64, format string, args ...any) error {
	return &InvariantError{Entity: entity, ID: id, Reason: fmt.Sprintf(format, args...)}
}

// Validation tags msg as a validation failure.
func Validation(format string, args ...any) error {
	return errors.Join(ErrValidation, errors.New(strings.TrimSpace(fmt.Sprintf(format, args...))))
}

// Conflict tags err as a transaction conflict.
func Conflict(op string, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, errors.Join(ErrConflict, err))
}

// FromContext converts a deadline error into ErrTimeout so callers treat it
// as transient. Cancellation is returned untouched.
func FromContext(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
		return fmt.Errorf("%s: %w", op, errors.Join(ErrTimeout, err))
	}
	return err
}

// Retryable reports whether the whole operation may be retried from a
// fresh read.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrTimeout)
}

// NotFound reports whether err names a missing entity.
func NotFound(err error) bool {
	return errors.Is(err, ErrProgressNotFound) ||
		errors.Is(err, ErrChallengeNotFound) ||
		errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrLessonNotFound)
}
