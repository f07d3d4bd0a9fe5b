package store

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/lingo/internal/apperr"
	"github.com/abhisek/lingo/internal/progress"
)

// ProgressRepo implements progress.Repository on SQLite. Transactions begin
// IMMEDIATE, so a transaction holds the database write lock from its first
// read until commit and writers for the same user never interleave.
type ProgressRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

var _ progress.Repository = (*ProgressRepo)(nil)

func (r *ProgressRepo) InTx(ctx context.Context, fn func(ctx context.Context, tx progress.Tx) error) error {
	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return mapError("begin", err)
	}
	if err := fn(ctx, &progressTx{eq: tx, seq: r.seq}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapError("commit", err)
	}
	return nil
}

func (r *ProgressRepo) GetUserProgress(ctx context.Context, userID string) (*progress.UserProgress, error) {
	return getUserProgress(ctx, r.drv, userID)
}

func (r *ProgressRepo) ListChallengeProgress(ctx context.Context, userID string) ([]progress.ChallengeProgress, error) {
	var out []progress.ChallengeProgress
	err := query(ctx, r.drv, "list challenge progress",
		builder.Select("id", "user_id", "challenge_id", "completed").
			From(builder.Table(ChallengeProgressTable.Name)).
			Where(entsql.EQ("user_id", userID)).
			OrderBy("id"),
		func(rows *entsql.Rows) error {
			var cp progress.ChallengeProgress
			if err := rows.Scan(&cp.ID, &cp.UserID, &cp.ChallengeID, &cp.Completed); err != nil {
				return err
			}
			out = append(out, cp)
			return nil
		},
	)
	return out, err
}

func (r *ProgressRepo) Leaderboard(ctx context.Context, limit int) ([]progress.LeaderboardEntry, error) {
	sel := builder.Select("user_id", "user_name", "user_image_src", "points").
		From(builder.Table(UserProgressTable.Name)).
		OrderBy(entsql.Desc("points"), entsql.Asc("user_id"))
	if limit > 0 {
		sel.Limit(limit)
	}
	var out []progress.LeaderboardEntry
	err := query(ctx, r.drv, "leaderboard", sel, func(rows *entsql.Rows) error {
		var e progress.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.UserName, &e.UserImageSrc, &e.Points); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	return out, err
}

func (r *ProgressRepo) ListAttempts(ctx context.Context, userID string, limit int) ([]progress.AttemptRecord, error) {
	return listAttempts(ctx, r.drv, userID, limit)
}

// progressTx runs progress.Tx operations on one transaction.
type progressTx struct {
	eq  dialect.ExecQuerier
	seq *sequenceCounter
}

func (t *progressTx) GetUserProgress(ctx context.Context, userID string) (*progress.UserProgress, error) {
	return getUserProgress(ctx, t.eq, userID)
}

func (t *progressTx) UpsertUserProgress(ctx context.Context, p *progress.UserProgress) error {
	if p.Version == 0 {
		_, err := exec(ctx, t.eq, "insert user progress",
			builder.Insert(UserProgressTable.Name).
				Columns("user_id", "user_name", "user_image_src", "active_course_id", "hearts", "points", "version").
				Values(p.UserID, p.UserName, p.UserImageSrc, nullID(p.ActiveCourseID), p.Hearts, p.Points, 1),
		)
		if err != nil {
			return err
		}
		p.Version = 1
		return nil
	}

	upd := builder.Update(UserProgressTable.Name).
		Set("user_name", p.UserName).
		Set("user_image_src", p.UserImageSrc).
		Set("hearts", p.Hearts).
		Set("points", p.Points).
		Add("version", 1).
		Where(entsql.And(entsql.EQ("user_id", p.UserID), entsql.EQ("version", p.Version)))
	if p.ActiveCourseID == 0 {
		upd.SetNull("active_course_id")
	} else {
		upd.Set("active_course_id", p.ActiveCourseID)
	}
	res, err := exec(ctx, t.eq, "update user progress", upd)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user progress: %w", err)
	}
	if n == 0 {
		return apperr.Conflict("update user progress", fmt.Errorf("user %q: version %d is stale", p.UserID, p.Version))
	}
	p.Version++
	return nil
}

func (t *progressTx) GetChallengeProgress(ctx context.Context, userID string, challengeID int64) (*progress.ChallengeProgress, error) {
	var cp *progress.ChallengeProgress
	err := query(ctx, t.eq, "get challenge progress",
		builder.Select("id", "user_id", "challenge_id", "completed").
			From(builder.Table(ChallengeProgressTable.Name)).
			Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("challenge_id", challengeID))),
		func(rows *entsql.Rows) error {
			cp = &progress.ChallengeProgress{}
			return rows.Scan(&cp.ID, &cp.UserID, &cp.ChallengeID, &cp.Completed)
		},
	)
	return cp, err
}

func (t *progressTx) InsertChallengeProgress(ctx context.Context, rec *progress.ChallengeProgress) error {
	res, err := exec(ctx, t.eq, "insert challenge progress",
		builder.Insert(ChallengeProgressTable.Name).
			Columns("user_id", "challenge_id", "completed").
			Values(rec.UserID, rec.ChallengeID, rec.Completed),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert challenge progress: %w", err)
	}
	rec.ID = id
	return nil
}

func (t *progressTx) UpdateChallengeProgress(ctx context.Context, id int64, completed bool) error {
	res, err := exec(ctx, t.eq, "update challenge progress",
		builder.Update(ChallengeProgressTable.Name).
			Set("completed", completed).
			Where(entsql.EQ("id", id)),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update challenge progress: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("challenge progress %d: not found", id)
	}
	return nil
}

func (t *progressTx) AppendAttempt(ctx context.Context, rec *progress.AttemptRecord) error {
	return appendAttempt(ctx, t.eq, t.seq, rec)
}

func getUserProgress(ctx context.Context, eq dialect.ExecQuerier, userID string) (*progress.UserProgress, error) {
	var p *progress.UserProgress
	err := query(ctx, eq, "get user progress",
		builder.Select("user_id", "user_name", "user_image_src", "active_course_id", "hearts", "points", "version").
			From(builder.Table(UserProgressTable.Name)).
			Where(entsql.EQ("user_id", userID)),
		func(rows *entsql.Rows) error {
			var course sql.NullInt64
			p = &progress.UserProgress{}
			if err := rows.Scan(&p.UserID, &p.UserName, &p.UserImageSrc, &course, &p.Hearts, &p.Points, &p.Version); err != nil {
				return err
			}
			p.ActiveCourseID = course.Int64
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("user %q: %w", userID, apperr.ErrProgressNotFound)
	}
	return p, nil
}

func nullID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
