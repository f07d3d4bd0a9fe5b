package store

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/lingo/internal/apperr"
	"github.com/abhisek/lingo/internal/curriculum"
)

// CurriculumRepo implements curriculum.Store and curriculum.Importer.
type CurriculumRepo struct {
	drv *entsql.Driver
}

var (
	_ curriculum.Store    = (*CurriculumRepo)(nil)
	_ curriculum.Importer = (*CurriculumRepo)(nil)
)

func (r *CurriculumRepo) ListCourses(ctx context.Context) ([]curriculum.Course, error) {
	var out []curriculum.Course
	err := query(ctx, r.drv, "list courses",
		builder.Select("id", "title", "image_src").
			From(builder.Table(CoursesTable.Name)).
			OrderBy("id"),
		func(rows *entsql.Rows) error {
			var c curriculum.Course
			if err := rows.Scan(&c.ID, &c.Title, &c.ImageSrc); err != nil {
				return err
			}
			out = append(out, c)
			return nil
		},
	)
	return out, err
}

func (r *CurriculumRepo) GetCourse(ctx context.Context, id int64) (*curriculum.Course, error) {
	var c *curriculum.Course
	err := query(ctx, r.drv, "get course",
		builder.Select("id", "title", "image_src").
			From(builder.Table(CoursesTable.Name)).
			Where(entsql.EQ("id", id)),
		func(rows *entsql.Rows) error {
			c = &curriculum.Course{}
			return rows.Scan(&c.ID, &c.Title, &c.ImageSrc)
		},
	)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("course %d: %w", id, apperr.ErrCourseNotFound)
	}

	units, err := loadUnits(ctx, r.drv, entsql.EQ("course_id", id))
	if err != nil {
		return nil, err
	}
	lessons, err := loadLessons(ctx, r.drv, entsql.In("unit_id", inInt64(idsOfUnits(units))...))
	if err != nil {
		return nil, err
	}
	challenges, err := loadChallenges(ctx, r.drv, entsql.In("lesson_id", inInt64(idsOfLessons(lessons))...))
	if err != nil {
		return nil, err
	}

	byUnit := make(map[int64][]curriculum.Lesson)
	for _, l := range attachChallenges(lessons, challenges) {
		byUnit[l.UnitID] = append(byUnit[l.UnitID], l)
	}
	for i := range units {
		units[i].Lessons = byUnit[units[i].ID]
	}
	c.Units = units
	c.Sort()
	return c, nil
}

func (r *CurriculumRepo) GetChallenge(ctx context.Context, id int64) (*curriculum.Challenge, error) {
	chs, err := loadChallenges(ctx, r.drv, entsql.EQ("id", id))
	if err != nil {
		return nil, err
	}
	if len(chs) == 0 {
		return nil, fmt.Errorf("challenge %d: %w", id, apperr.ErrChallengeNotFound)
	}
	return &chs[0], nil
}

func (r *CurriculumRepo) GetLessonWithChallenges(ctx context.Context, id int64) (*curriculum.Lesson, error) {
	lessons, err := loadLessons(ctx, r.drv, entsql.EQ("id", id))
	if err != nil {
		return nil, err
	}
	if len(lessons) == 0 {
		return nil, fmt.Errorf("lesson %d: %w", id, apperr.ErrLessonNotFound)
	}
	challenges, err := loadChallenges(ctx, r.drv, entsql.EQ("lesson_id", id))
	if err != nil {
		return nil, err
	}
	l := attachChallenges(lessons, challenges)[0]
	l.SortChallenges()
	return &l, nil
}

// ImportCourse validates c and writes it in one transaction. Rows are
// upserted in place so learner progress that references them survives a
// re-import. Children no longer present in c are removed.
func (r *CurriculumRepo) ImportCourse(ctx context.Context, c *curriculum.Course) error {
	if err := curriculum.Validate(c); err != nil {
		return err
	}
	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return mapError("begin import", err)
	}
	if err := importCourse(ctx, tx, c); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapError("commit import", err)
	}
	return nil
}

func importCourse(ctx context.Context, eq dialect.ExecQuerier, c *curriculum.Course) error {
	if err := upsertRows(ctx, eq, CoursesTable.Name, []string{"id", "title", "image_src"},
		[][]any{{c.ID, c.Title, c.ImageSrc}}); err != nil {
		return err
	}

	var (
		units, lessons, challenges, options         [][]any
		unitIDs, lessonIDs, challengeIDs, optionIDs []any
	)
	for _, u := range c.Units {
		units = append(units, []any{u.ID, u.Title, u.Description, u.Order, c.ID})
		unitIDs = append(unitIDs, u.ID)
		for _, l := range u.Lessons {
			lessons = append(lessons, []any{l.ID, l.Title, l.Order, u.ID})
			lessonIDs = append(lessonIDs, l.ID)
			for _, ch := range l.Challenges {
				challenges = append(challenges, []any{ch.ID, string(ch.Type), ch.Question, ch.Order, l.ID})
				challengeIDs = append(challengeIDs, ch.ID)
				for _, o := range ch.Options {
					options = append(options, []any{o.ID, o.Text, o.Correct, nullString(o.ImageSrc), nullString(o.AudioSrc), ch.ID})
					optionIDs = append(optionIDs, o.ID)
				}
			}
		}
	}

	steps := []struct {
		table string
		cols  []string
		rows  [][]any
	}{
		{UnitsTable.Name, []string{"id", "title", "description", "sort_order", "course_id"}, units},
		{LessonsTable.Name, []string{"id", "title", "sort_order", "unit_id"}, lessons},
		{ChallengesTable.Name, []string{"id", "type", "question", "sort_order", "lesson_id"}, challenges},
		{ChallengeOptionsTable.Name, []string{"id", "text", "correct", "image_src", "audio_src", "challenge_id"}, options},
	}
	for _, s := range steps {
		if err := upsertRows(ctx, eq, s.table, s.cols, s.rows); err != nil {
			return err
		}
	}

	prunes := []struct {
		table string
		scope *entsql.Predicate
		keep  []any
	}{
		{UnitsTable.Name, entsql.EQ("course_id", c.ID), unitIDs},
		{LessonsTable.Name, entsql.In("unit_id", unitIDs...), lessonIDs},
		{ChallengesTable.Name, entsql.In("lesson_id", lessonIDs...), challengeIDs},
		{ChallengeOptionsTable.Name, entsql.In("challenge_id", challengeIDs...), optionIDs},
	}
	for _, p := range prunes {
		_, err := exec(ctx, eq, "prune "+p.table,
			builder.Delete(p.table).Where(entsql.And(p.scope, entsql.NotIn("id", p.keep...))))
		if err != nil {
			return err
		}
	}
	return nil
}

func upsertRows(ctx context.Context, eq dialect.ExecQuerier, table string, cols []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	ins := builder.Insert(table).Columns(cols...)
	for _, v := range rows {
		ins.Values(v...)
	}
	ins.OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues())
	_, err := exec(ctx, eq, "upsert "+table, ins)
	return err
}

func loadUnits(ctx context.Context, eq dialect.ExecQuerier, where *entsql.Predicate) ([]curriculum.Unit, error) {
	var out []curriculum.Unit
	err := query(ctx, eq, "load units",
		builder.Select("id", "course_id", "title", "description", "sort_order").
			From(builder.Table(UnitsTable.Name)).
			Where(where).
			OrderBy("sort_order", "id"),
		func(rows *entsql.Rows) error {
			var u curriculum.Unit
			if err := rows.Scan(&u.ID, &u.CourseID, &u.Title, &u.Description, &u.Order); err != nil {
				return err
			}
			out = append(out, u)
			return nil
		},
	)
	return out, err
}

func loadLessons(ctx context.Context, eq dialect.ExecQuerier, where *entsql.Predicate) ([]curriculum.Lesson, error) {
	var out []curriculum.Lesson
	err := query(ctx, eq, "load lessons",
		builder.Select("id", "unit_id", "title", "sort_order").
			From(builder.Table(LessonsTable.Name)).
			Where(where).
			OrderBy("sort_order", "id"),
		func(rows *entsql.Rows) error {
			var l curriculum.Lesson
			if err := rows.Scan(&l.ID, &l.UnitID, &l.Title, &l.Order); err != nil {
				return err
			}
			out = append(out, l)
			return nil
		},
	)
	return out, err
}

// loadChallenges returns the matching challenges with their options.
func loadChallenges(ctx context.Context, eq dialect.ExecQuerier, where *entsql.Predicate) ([]curriculum.Challenge, error) {
	var out []curriculum.Challenge
	err := query(ctx, eq, "load challenges",
		builder.Select("id", "lesson_id", "type", "question", "sort_order").
			From(builder.Table(ChallengesTable.Name)).
			Where(where).
			OrderBy("sort_order", "id"),
		func(rows *entsql.Rows) error {
			var (
				ch  curriculum.Challenge
				typ string
			)
			if err := rows.Scan(&ch.ID, &ch.LessonID, &typ, &ch.Question, &ch.Order); err != nil {
				return err
			}
			ch.Type = curriculum.ChallengeType(typ)
			out = append(out, ch)
			return nil
		},
	)
	if err != nil || len(out) == 0 {
		return out, err
	}

	ids := make([]int64, len(out))
	for i := range out {
		ids[i] = out[i].ID
	}
	byChallenge := make(map[int64][]curriculum.Option)
	err = query(ctx, eq, "load options",
		builder.Select("id", "challenge_id", "text", "correct", "image_src", "audio_src").
			From(builder.Table(ChallengeOptionsTable.Name)).
			Where(entsql.In("challenge_id", inInt64(ids)...)).
			OrderBy("id"),
		func(rows *entsql.Rows) error {
			var (
				o            curriculum.Option
				image, audio sql.NullString
			)
			if err := rows.Scan(&o.ID, &o.ChallengeID, &o.Text, &o.Correct, &image, &audio); err != nil {
				return err
			}
			o.ImageSrc, o.AudioSrc = image.String, audio.String
			byChallenge[o.ChallengeID] = append(byChallenge[o.ChallengeID], o)
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Options = byChallenge[out[i].ID]
	}
	return out, nil
}

func attachChallenges(lessons []curriculum.Lesson, challenges []curriculum.Challenge) []curriculum.Lesson {
	byLesson := make(map[int64][]curriculum.Challenge)
	for _, ch := range challenges {
		byLesson[ch.LessonID] = append(byLesson[ch.LessonID], ch)
	}
	for i := range lessons {
		lessons[i].Challenges = byLesson[lessons[i].ID]
	}
	return lessons
}

func idsOfUnits(units []curriculum.Unit) []int64 {
	ids := make([]int64, len(units))
	for i, u := range units {
		ids[i] = u.ID
	}
	return ids
}

func idsOfLessons(lessons []curriculum.Lesson) []int64 {
	ids := make([]int64, len(lessons))
	for i, l := range lessons {
		ids[i] = l.ID
	}
	return ids
}
