// Package identity carries the current learner's id through a request.
package identity

import (
	"context"
	"strings"

	"github.com/abhisek/lingo/internal/apperr"
)

type contextKey string

const userKey contextKey = "lingo_user_id"

// WithUser attaches the user id to the context.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey, userID)
}

// FromContext returns the current user id, or apperr.ErrUnauthenticated
// when none was attached.
func FromContext(ctx context.Context) (string, error) {
	if v, ok := ctx.Value(userKey).(string); ok && v != "" {
		return v, nil
	}
	return "", apperr.ErrUnauthenticated
}

// Resolve returns the first non-blank candidate, in priority order.
func Resolve(candidates ...string) (string, error) {
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return c, nil
		}
	}
	return "", apperr.ErrUnauthenticated
}
