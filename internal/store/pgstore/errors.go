package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/abhisek/lingo/internal/apperr"
)

// mapError classifies driver errors. Unique violations and lock or
// serialization failures become conflicts so the caller retries.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.FromContext(op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505": // unique_violation
			return apperr.Conflict(op, err)
		case "40001", "40P01", "55P03": // serialization/deadlock/lock_not_available
			return apperr.Conflict(op, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
