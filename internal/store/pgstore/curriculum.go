package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/abhisek/lingo/internal/apperr"
	"github.com/abhisek/lingo/internal/curriculum"
)

// CurriculumRepo implements curriculum.Store and curriculum.Importer.
type CurriculumRepo struct {
	db dbtx
	tr *Transactor
}

var (
	_ curriculum.Store    = (*CurriculumRepo)(nil)
	_ curriculum.Importer = (*CurriculumRepo)(nil)
)

func (r *CurriculumRepo) ListCourses(ctx context.Context) ([]curriculum.Course, error) {
	rows, err := r.db.Query(ctx, `SELECT id, title, image_src FROM courses ORDER BY id`)
	if err != nil {
		return nil, mapError("list courses", err)
	}
	defer rows.Close()

	var out []curriculum.Course
	for rows.Next() {
		var c curriculum.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.ImageSrc); err != nil {
			return nil, fmt.Errorf("list courses: %w", err)
		}
		out = append(out, c)
	}
	return out, mapError("list courses", rows.Err())
}

func (r *CurriculumRepo) GetCourse(ctx context.Context, id int64) (*curriculum.Course, error) {
	var c curriculum.Course
	err := r.db.QueryRow(ctx, `SELECT id, title, image_src FROM courses WHERE id = $1`, id).
		Scan(&c.ID, &c.Title, &c.ImageSrc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("course %d: %w", id, apperr.ErrCourseNotFound)
		}
		return nil, mapError("get course", err)
	}

	units, err := r.units(ctx, id)
	if err != nil {
		return nil, err
	}
	unitIDs := make([]int64, len(units))
	for i, u := range units {
		unitIDs[i] = u.ID
	}
	lessons, err := r.lessons(ctx, `unit_id = ANY($1)`, unitIDs)
	if err != nil {
		return nil, err
	}
	lessonIDs := make([]int64, len(lessons))
	for i, l := range lessons {
		lessonIDs[i] = l.ID
	}
	challenges, err := r.challenges(ctx, `lesson_id = ANY($1)`, lessonIDs)
	if err != nil {
		return nil, err
	}

	byLesson := make(map[int64][]curriculum.Challenge)
	for _, ch := range challenges {
		byLesson[ch.LessonID] = append(byLesson[ch.LessonID], ch)
	}
	byUnit := make(map[int64][]curriculum.Lesson)
	for _, l := range lessons {
		l.Challenges = byLesson[l.ID]
		byUnit[l.UnitID] = append(byUnit[l.UnitID], l)
	}
	for i := range units {
		units[i].Lessons = byUnit[units[i].ID]
	}
	c.Units = units
	c.Sort()
	return &c, nil
}

func (r *CurriculumRepo) GetChallenge(ctx context.Context, id int64) (*curriculum.Challenge, error) {
	chs, err := r.challenges(ctx, `id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(chs) == 0 {
		return nil, fmt.Errorf("challenge %d: %w", id, apperr.ErrChallengeNotFound)
	}
	return &chs[0], nil
}

func (r *CurriculumRepo) GetLessonWithChallenges(ctx context.Context, id int64) (*curriculum.Lesson, error) {
	lessons, err := r.lessons(ctx, `id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(lessons) == 0 {
		return nil, fmt.Errorf("lesson %d: %w", id, apperr.ErrLessonNotFound)
	}
	l := lessons[0]
	if l.Challenges, err = r.challenges(ctx, `lesson_id = $1`, id); err != nil {
		return nil, err
	}
	l.SortChallenges()
	return &l, nil
}

func (r *CurriculumRepo) units(ctx context.Context, courseID int64) ([]curriculum.Unit, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, course_id, title, description, sort_order
		FROM units
		WHERE course_id = $1
		ORDER BY sort_order, id`, courseID)
	if err != nil {
		return nil, mapError("load units", err)
	}
	defer rows.Close()

	var out []curriculum.Unit
	for rows.Next() {
		var u curriculum.Unit
		if err := rows.Scan(&u.ID, &u.CourseID, &u.Title, &u.Description, &u.Order); err != nil {
			return nil, fmt.Errorf("load units: %w", err)
		}
		out = append(out, u)
	}
	return out, mapError("load units", rows.Err())
}

func (r *CurriculumRepo) lessons(ctx context.Context, where string, arg any) ([]curriculum.Lesson, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, unit_id, title, sort_order
		FROM lessons
		WHERE `+where+`
		ORDER BY sort_order, id`, arg)
	if err != nil {
		return nil, mapError("load lessons", err)
	}
	defer rows.Close()

	var out []curriculum.Lesson
	for rows.Next() {
		var l curriculum.Lesson
		if err := rows.Scan(&l.ID, &l.UnitID, &l.Title, &l.Order); err != nil {
			return nil, fmt.Errorf("load lessons: %w", err)
		}
		out = append(out, l)
	}
	return out, mapError("load lessons", rows.Err())
}

// challenges loads the matching challenges together with their options.
func (r *CurriculumRepo) challenges(ctx context.Context, where string, arg any) ([]curriculum.Challenge, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, lesson_id, type, question, sort_order
		FROM challenges
		WHERE `+where+`
		ORDER BY sort_order, id`, arg)
	if err != nil {
		return nil, mapError("load challenges", err)
	}
	defer rows.Close()

	var (
		out []curriculum.Challenge
		ids []int64
	)
	for rows.Next() {
		var (
			ch  curriculum.Challenge
			typ string
		)
		if err := rows.Scan(&ch.ID, &ch.LessonID, &typ, &ch.Question, &ch.Order); err != nil {
			return nil, fmt.Errorf("load challenges: %w", err)
		}
		ch.Type = curriculum.ChallengeType(typ)
		out = append(out, ch)
		ids = append(ids, ch.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("load challenges", err)
	}
	rows.Close()
	if len(out) == 0 {
		return nil, nil
	}

	optRows, err := r.db.Query(ctx, `
		SELECT id, challenge_id, text, correct, COALESCE(image_src, ''), COALESCE(audio_src, '')
		FROM challenge_options
		WHERE challenge_id = ANY($1)
		ORDER BY id`, ids)
	if err != nil {
		return nil, mapError("load options", err)
	}
	defer optRows.Close()

	byChallenge := make(map[int64][]curriculum.Option)
	for optRows.Next() {
		var o curriculum.Option
		if err := optRows.Scan(&o.ID, &o.ChallengeID, &o.Text, &o.Correct, &o.ImageSrc, &o.AudioSrc); err != nil {
			return nil, fmt.Errorf("load options: %w", err)
		}
		byChallenge[o.ChallengeID] = append(byChallenge[o.ChallengeID], o)
	}
	if err := optRows.Err(); err != nil {
		return nil, mapError("load options", err)
	}
	for i := range out {
		out[i].Options = byChallenge[out[i].ID]
	}
	return out, nil
}

// ImportCourse validates c and upserts the whole tree in one transaction.
// Rows keep their ids so progress that references them survives, and
// children missing from c are deleted.
func (r *CurriculumRepo) ImportCourse(ctx context.Context, c *curriculum.Course) error {
	if err := curriculum.Validate(c); err != nil {
		return err
	}
	return r.tr.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return importCourse(ctx, tx, c)
	})
}

func importCourse(ctx context.Context, tx pgx.Tx, c *curriculum.Course) error {
	var batch pgx.Batch
	// Empty, not nil: a nil slice encodes as NULL and would make the
	// prune predicates below match nothing.
	unitIDs, lessonIDs, challengeIDs, optionIDs := []int64{}, []int64{}, []int64{}, []int64{}
	batch.Queue(`
		INSERT INTO courses (id, title, image_src) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET title = excluded.title, image_src = excluded.image_src`,
		c.ID, c.Title, c.ImageSrc)
	for _, u := range c.Units {
		unitIDs = append(unitIDs, u.ID)
		batch.Queue(`
			INSERT INTO units (id, course_id, title, description, sort_order) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET course_id = excluded.course_id, title = excluded.title,
				description = excluded.description, sort_order = excluded.sort_order`,
			u.ID, c.ID, u.Title, u.Description, u.Order)
		for _, l := range u.Lessons {
			lessonIDs = append(lessonIDs, l.ID)
			batch.Queue(`
				INSERT INTO lessons (id, unit_id, title, sort_order) VALUES ($1, $2, $3, $4)
				ON CONFLICT (id) DO UPDATE SET unit_id = excluded.unit_id, title = excluded.title,
					sort_order = excluded.sort_order`,
				l.ID, u.ID, l.Title, l.Order)
			for _, ch := range l.Challenges {
				challengeIDs = append(challengeIDs, ch.ID)
				batch.Queue(`
					INSERT INTO challenges (id, lesson_id, type, question, sort_order) VALUES ($1, $2, $3, $4, $5)
					ON CONFLICT (id) DO UPDATE SET lesson_id = excluded.lesson_id, type = excluded.type,
						question = excluded.question, sort_order = excluded.sort_order`,
					ch.ID, l.ID, string(ch.Type), ch.Question, ch.Order)
				for _, o := range ch.Options {
					optionIDs = append(optionIDs, o.ID)
					batch.Queue(`
						INSERT INTO challenge_options (id, challenge_id, text, correct, image_src, audio_src)
						VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''))
						ON CONFLICT (id) DO UPDATE SET challenge_id = excluded.challenge_id, text = excluded.text,
							correct = excluded.correct, image_src = excluded.image_src, audio_src = excluded.audio_src`,
						o.ID, ch.ID, o.Text, o.Correct, o.ImageSrc, o.AudioSrc)
				}
			}
		}
	}
	batch.Queue(`DELETE FROM units WHERE course_id = $1 AND NOT (id = ANY($2))`, c.ID, unitIDs)
	batch.Queue(`DELETE FROM lessons WHERE unit_id = ANY($1) AND NOT (id = ANY($2))`, unitIDs, lessonIDs)
	batch.Queue(`DELETE FROM challenges WHERE lesson_id = ANY($1) AND NOT (id = ANY($2))`, lessonIDs, challengeIDs)
	batch.Queue(`DELETE FROM challenge_options WHERE challenge_id = ANY($1) AND NOT (id = ANY($2))`, challengeIDs, optionIDs)

	br := tx.SendBatch(ctx, &batch)
	for range batch.Len() {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return mapError("import course", err)
		}
	}
	return mapError("import course", br.Close())
}
