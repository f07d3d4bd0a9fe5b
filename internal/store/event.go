package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/lingo/internal/progress"
)

// sequenceCounter hands out the global monotonic sequence stamped on every
// attempt event. Attempt ids are random, so the sequence is what orders the
// log. The counter row is bumped on the caller's transaction connection:
// the write lock taken by the immediate transaction serializes increments,
// and a rolled back attempt gives its number back.
type sequenceCounter struct{}

// newSequenceCounter seeds the counter row.
func newSequenceCounter(ctx context.Context, eq dialect.ExecQuerier) (*sequenceCounter, error) {
	_, err := exec(ctx, eq, "seed sequence",
		builder.Insert(GlobalSequenceTable.Name).
			Columns("id", "next_val").
			Values(1, 1).
			OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing()),
	)
	if err != nil {
		return nil, err
	}
	return &sequenceCounter{}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context, eq dialect.ExecQuerier) (int64, error) {
	var seq int64
	found := false
	err := query(ctx, eq, "next sequence",
		rawQuery(`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`),
		func(rows *entsql.Rows) error {
			found = true
			return rows.Scan(&seq)
		},
	)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("next sequence: counter row missing")
	}
	return seq, nil
}

// rawQuery adapts a fixed statement to entsql.Querier.
type rawQuery string

func (q rawQuery) Query() (string, []any) { return string(q), []any{} }

// appendAttempt writes rec to the attempt log.
func appendAttempt(ctx context.Context, eq dialect.ExecQuerier, sc *sequenceCounter, rec *progress.AttemptRecord) error {
	seq, err := sc.Next(ctx, eq)
	if err != nil {
		return err
	}
	rec.Sequence = seq
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	_, err = exec(ctx, eq, "append attempt",
		builder.Insert(AttemptEventsTable.Name).
			Columns("id", "sequence", "timestamp", "user_id", "challenge_id", "lesson_id",
				"correct", "outcome", "hearts_after", "points_after").
			Values(rec.ID, rec.Sequence, rec.Timestamp, rec.UserID, rec.ChallengeID, rec.LessonID,
				rec.Correct, rec.Outcome, rec.HeartsAfter, rec.PointsAfter),
	)
	return err
}

// listAttempts returns the user's most recent attempts, newest first.
func listAttempts(ctx context.Context, eq dialect.ExecQuerier, userID string, limit int) ([]progress.AttemptRecord, error) {
	sel := builder.Select("id", "sequence", "timestamp", "user_id", "challenge_id", "lesson_id",
		"correct", "outcome", "hearts_after", "points_after").
		From(builder.Table(AttemptEventsTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("sequence"))
	if limit > 0 {
		sel.Limit(limit)
	}

	var out []progress.AttemptRecord
	err := query(ctx, eq, "list attempts", sel, func(rows *entsql.Rows) error {
		var r progress.AttemptRecord
		if err := rows.Scan(&r.ID, &r.Sequence, &r.Timestamp, &r.UserID, &r.ChallengeID, &r.LessonID,
			&r.Correct, &r.Outcome, &r.HeartsAfter, &r.PointsAfter); err != nil {
			return err
		}
		r.Timestamp = r.Timestamp.UTC()
		out = append(out, r)
		return nil
	})
	return out, err
}
