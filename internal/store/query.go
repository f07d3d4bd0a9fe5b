package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/abhisek/lingo/internal/apperr"
)

// builder renders SQLite flavored statements.
var builder = entsql.Dialect(dialect.SQLite)

// exec runs a statement built by the dialect builder.
func exec(ctx context.Context, eq dialect.ExecQuerier, op string, q entsql.Querier) (sql.Result, error) {
	if err := builderErr(q); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	query, args := q.Query()
	var res sql.Result
	if err := eq.Exec(ctx, query, args, &res); err != nil {
		return nil, mapError(op, err)
	}
	return res, nil
}

// query runs a select and calls scan for every row.
func query(ctx context.Context, eq dialect.ExecQuerier, op string, q entsql.Querier, scan func(*entsql.Rows) error) error {
	if err := builderErr(q); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	stmt, args := q.Query()
	rows := &entsql.Rows{}
	if err := eq.Query(ctx, stmt, args, rows); err != nil {
		return mapError(op, err)
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("%s: scan: %w", op, err)
		}
	}
	if err := rows.Err(); err != nil {
		return mapError(op, err)
	}
	return nil
}

func builderErr(q entsql.Querier) error {
	if b, ok := q.(interface{ Err() error }); ok {
		return b.Err()
	}
	return nil
}

// mapError tags lock contention and uniqueness violations as conflicts so
// the caller retries from a fresh read. Deadlines become timeouts.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.FromContext(op, err)
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return apperr.Conflict(op, err)
		}
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return apperr.Conflict(op, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// inInt64 converts ids for use with entsql.In and entsql.NotIn.
func inInt64(ids []int64) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
