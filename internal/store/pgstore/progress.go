package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/abhisek/lingo/internal/apperr"
	"github.com/abhisek/lingo/internal/progress"
)

// ProgressRepo implements progress.Repository. Inside a transaction the
// user_progress row is read FOR UPDATE, so concurrent attempts by the same
// user queue on the row lock while other users proceed.
type ProgressRepo struct {
	db dbtx
	tr *Transactor
}

var _ progress.Repository = (*ProgressRepo)(nil)

func (r *ProgressRepo) InTx(ctx context.Context, fn func(ctx context.Context, tx progress.Tx) error) error {
	return r.tr.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &progressTx{tx: tx})
	})
}

func (r *ProgressRepo) GetUserProgress(ctx context.Context, userID string) (*progress.UserProgress, error) {
	return getUserProgress(ctx, r.db, userID, false)
}

func (r *ProgressRepo) ListChallengeProgress(ctx context.Context, userID string) ([]progress.ChallengeProgress, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, challenge_id, completed
		FROM challenge_progress
		WHERE user_id = $1
		ORDER BY id`, userID)
	if err != nil {
		return nil, mapError("list challenge progress", err)
	}
	defer rows.Close()

	var out []progress.ChallengeProgress
	for rows.Next() {
		var cp progress.ChallengeProgress
		if err := rows.Scan(&cp.ID, &cp.UserID, &cp.ChallengeID, &cp.Completed); err != nil {
			return nil, fmt.Errorf("list challenge progress: %w", err)
		}
		out = append(out, cp)
	}
	return out, mapError("list challenge progress", rows.Err())
}

func (r *ProgressRepo) Leaderboard(ctx context.Context, limit int) ([]progress.LeaderboardEntry, error) {
	var lim *int
	if limit > 0 {
		lim = &limit
	}
	rows, err := r.db.Query(ctx, `
		SELECT user_id, user_name, user_image_src, points
		FROM user_progress
		ORDER BY points DESC, user_id
		LIMIT $1`, lim)
	if err != nil {
		return nil, mapError("leaderboard", err)
	}
	defer rows.Close()

	var out []progress.LeaderboardEntry
	for rows.Next() {
		var e progress.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.UserName, &e.UserImageSrc, &e.Points); err != nil {
			return nil, fmt.Errorf("leaderboard: %w", err)
		}
		out = append(out, e)
	}
	return out, mapError("leaderboard", rows.Err())
}

func (r *ProgressRepo) ListAttempts(ctx context.Context, userID string, limit int) ([]progress.AttemptRecord, error) {
	var lim *int
	if limit > 0 {
		lim = &limit
	}
	rows, err := r.db.Query(ctx, `
		SELECT id::text, sequence, timestamp, user_id, challenge_id, lesson_id,
		       correct, outcome, hearts_after, points_after
		FROM attempt_events
		WHERE user_id = $1
		ORDER BY sequence DESC
		LIMIT $2`, userID, lim)
	if err != nil {
		return nil, mapError("list attempts", err)
	}
	defer rows.Close()

	var out []progress.AttemptRecord
	for rows.Next() {
		var a progress.AttemptRecord
		if err := rows.Scan(&a.ID, &a.Sequence, &a.Timestamp, &a.UserID, &a.ChallengeID, &a.LessonID,
			&a.Correct, &a.Outcome, &a.HeartsAfter, &a.PointsAfter); err != nil {
			return nil, fmt.Errorf("list attempts: %w", err)
		}
		a.Timestamp = a.Timestamp.UTC()
		out = append(out, a)
	}
	return out, mapError("list attempts", rows.Err())
}

type progressTx struct {
	tx pgx.Tx
}

func (t *progressTx) GetUserProgress(ctx context.Context, userID string) (*progress.UserProgress, error) {
	return getUserProgress(ctx, t.tx, userID, true)
}

func (t *progressTx) UpsertUserProgress(ctx context.Context, p *progress.UserProgress) error {
	course := nullID(p.ActiveCourseID)
	if p.Version == 0 {
		_, err := t.tx.Exec(ctx, `
			INSERT INTO user_progress (user_id, user_name, user_image_src, active_course_id, hearts, points, version)
			VALUES ($1, $2, $3, $4, $5, $6, 1)`,
			p.UserID, p.UserName, p.UserImageSrc, course, p.Hearts, p.Points)
		if err != nil {
			return mapError("insert user progress", err)
		}
		p.Version = 1
		return nil
	}

	tag, err := t.tx.Exec(ctx, `
		UPDATE user_progress
		SET user_name = $2, user_image_src = $3, active_course_id = $4, hearts = $5, points = $6,
		    version = version + 1
		WHERE user_id = $1 AND version = $7`,
		p.UserID, p.UserName, p.UserImageSrc, course, p.Hearts, p.Points, p.Version)
	if err != nil {
		return mapError("update user progress", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("update user progress", fmt.Errorf("user %q: version %d is stale", p.UserID, p.Version))
	}
	p.Version++
	return nil
}

func (t *progressTx) GetChallengeProgress(ctx context.Context, userID string, challengeID int64) (*progress.ChallengeProgress, error) {
	var cp progress.ChallengeProgress
	err := t.tx.QueryRow(ctx, `
		SELECT id, user_id, challenge_id, completed
		FROM challenge_progress
		WHERE user_id = $1 AND challenge_id = $2`, userID, challengeID).
		Scan(&cp.ID, &cp.UserID, &cp.ChallengeID, &cp.Completed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get challenge progress", err)
	}
	return &cp, nil
}

func (t *progressTx) InsertChallengeProgress(ctx context.Context, rec *progress.ChallengeProgress) error {
	err := t.tx.QueryRow(ctx, `
		INSERT INTO challenge_progress (user_id, challenge_id, completed)
		VALUES ($1, $2, $3)
		RETURNING id`, rec.UserID, rec.ChallengeID, rec.Completed).Scan(&rec.ID)
	return mapError("insert challenge progress", err)
}

func (t *progressTx) UpdateChallengeProgress(ctx context.Context, id int64, completed bool) error {
	tag, err := t.tx.Exec(ctx, `UPDATE challenge_progress SET completed = $2 WHERE id = $1`, id, completed)
	if err != nil {
		return mapError("update challenge progress", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("challenge progress %d: not found", id)
	}
	return nil
}

func (t *progressTx) AppendAttempt(ctx context.Context, rec *progress.AttemptRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	err := t.tx.QueryRow(ctx, `
		INSERT INTO attempt_events (id, timestamp, user_id, challenge_id, lesson_id,
		                            correct, outcome, hearts_after, points_after)
		VALUES ($1::text::uuid, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING sequence`,
		rec.ID, rec.Timestamp, rec.UserID, rec.ChallengeID, rec.LessonID,
		rec.Correct, rec.Outcome, rec.HeartsAfter, rec.PointsAfter).Scan(&rec.Sequence)
	return mapError("append attempt", err)
}

func getUserProgress(ctx context.Context, db dbtx, userID string, forUpdate bool) (*progress.UserProgress, error) {
	q := `
		SELECT user_id, user_name, user_image_src, COALESCE(active_course_id, 0), hearts, points, version
		FROM user_progress
		WHERE user_id = $1`
	if forUpdate {
		q += ` FOR UPDATE`
	}
	var p progress.UserProgress
	err := db.QueryRow(ctx, q, userID).
		Scan(&p.UserID, &p.UserName, &p.UserImageSrc, &p.ActiveCourseID, &p.Hearts, &p.Points, &p.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", userID, apperr.ErrProgressNotFound)
		}
		return nil, mapError("get user progress", err)
	}
	return &p, nil
}

func nullID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
