package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"conflict", Conflict("update progress", nil), true},
		{"wrapped conflict", fmt.Errorf("resolve: %w", Conflict("insert", errors.New("busy"))), true},
		{"timeout", FromContext("get progress", context.DeadlineExceeded), true},
		{"canceled", FromContext("get progress", context.Canceled), false},
		{"not found", ErrProgressNotFound, false},
		{"invariant", Invariant("challenge", 3, "no correct option"), false},
		{"validation", Validation("bad option %d", 9), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Retryable(tt.err))
		})
	}
}

func TestInvariantError(t *testing.T) {
	err := Invariant("challenge", 7, "%d correct options", 2)

	assert.ErrorIs(t, err, ErrInvariant)
	assert.Equal(t, "invariant violation: challenge 7: 2 correct options", err.Error())

	var inv *InvariantError
	assert.True(t, errors.As(fmt.Errorf("resolve: %w", err), &inv))
	assert.Equal(t, int64(7), inv.ID)
}

func TestNotFound(t *testing.T) {
	assert.True(t, NotFound(fmt.Errorf("load: %w", ErrCourseNotFound)))
	assert.True(t, NotFound(ErrLessonNotFound))
	assert.False(t, NotFound(ErrConflict))
}

func TestFromContextKeepsOtherErrors(t *testing.T) {
	base := errors.New("disk full")
	assert.Same(t, base, FromContext("op", base))
	assert.Nil(t, FromContext("op", nil))
}
