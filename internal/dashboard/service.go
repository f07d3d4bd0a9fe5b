// Package dashboard builds the read-side views of a learner's progress:
// the course map, a playable lesson and the leaderboard.
package dashboard

import (
	"context"
	"fmt"

	"github.com/abhisek/lingo/internal/apperr"
	"github.com/abhisek/lingo/internal/curriculum"
	"github.com/abhisek/lingo/internal/progress"
	"github.com/abhisek/lingo/internal/progression"
	"go.uber.org/zap"
)

// DefaultLeaderboardSize is used when no limit is given.
const DefaultLeaderboardSize = 10

// Cache stores rendered views. viewcache.Cache implements it.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	LearnKey(userID string) string
	LessonKey(userID string, lessonID int64) string
	LeaderboardKey(limit int) string
}

// Service builds views from the curriculum and progress stores.
type Service struct {
	curriculum curriculum.Store
	repo       progress.Repository
	cache      Cache // nil disables caching
	log        *zap.Logger
}

// NewService creates a dashboard Service. cache may be nil.
func NewService(cs curriculum.Store, repo progress.Repository, cache Cache, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{curriculum: cs, repo: repo, cache: cache, log: log.Named("dashboard")}
}

// Learn returns the course map of the user's active course.
func (s *Service) Learn(ctx context.Context, userID string) (*LearnView, error) {
	if userID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	var view LearnView
	if s.cached(ctx, s.keyLearn(userID), &view) {
		return &view, nil
	}

	snap, err := s.activeSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	view = LearnView{
		UserID:      userID,
		CourseID:    snap.Course.ID,
		CourseTitle: snap.Course.Title,
		Hearts:      snap.Progress.Hearts,
		Points:      snap.Progress.Points,
		Percentage:  progression.CoursePercentage(snap),
	}
	pos, hasResume := progression.FirstUncompletedLesson(snap)
	for _, us := range progression.UnitsForActiveCourse(snap) {
		uv := UnitView{
			ID:          us.Unit.ID,
			Title:       us.Unit.Title,
			Description: us.Unit.Description,
			Order:       us.Unit.Order,
		}
		for _, ls := range us.Lessons {
			ref := LessonRef{
				ID:        ls.Lesson.ID,
				UnitID:    us.Unit.ID,
				Title:     ls.Lesson.Title,
				Order:     ls.Lesson.Order,
				Completed: ls.Completed,
				Current:   hasResume && pos.Lesson.ID == ls.Lesson.ID,
				Percent:   progression.LessonPercentage(snap, &ls.Lesson),
			}
			if ref.Current {
				r := ref
				view.Resume = &r
			}
			uv.Lessons = append(uv.Lessons, ref)
		}
		view.Units = append(view.Units, uv)
	}

	s.store(ctx, s.keyLearn(userID), &view)
	return &view, nil
}

// Lesson returns the playable state of lessonID, or of the first
// uncompleted lesson of the active course when lessonID is 0.
func (s *Service) Lesson(ctx context.Context, userID string, lessonID int64) (*LessonView, error) {
	if userID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	var view LessonView
	if s.cached(ctx, s.keyLesson(userID, lessonID), &view) {
		return &view, nil
	}

	var (
		snap   *progression.Snapshot
		lesson *curriculum.Lesson
	)
	if lessonID == 0 {
		active, err := s.activeSnapshot(ctx, userID)
		if err != nil {
			return nil, err
		}
		pos, ok := progression.FirstUncompletedLesson(active)
		if !ok {
			return nil, fmt.Errorf("course %d has no uncompleted lesson: %w", active.Course.ID, apperr.ErrLessonNotFound)
		}
		snap, lesson = active, pos.Lesson
	} else {
		up, err := s.repo.GetUserProgress(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("get user progress: %w", err)
		}
		lesson, err = s.curriculum.GetLessonWithChallenges(ctx, lessonID)
		if err != nil {
			return nil, fmt.Errorf("get lesson %d: %w", lessonID, err)
		}
		records, err := s.repo.ListChallengeProgress(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list challenge progress: %w", err)
		}
		snap = progression.NewSnapshot(up, nil, records)
	}

	q := progression.Quiz(snap, lesson)
	view = LessonView{
		LessonID:    lesson.ID,
		Title:       lesson.Title,
		Hearts:      snap.Progress.Hearts,
		Points:      snap.Progress.Points,
		Percentage:  q.Percentage,
		Practice:    q.Practice,
		ResumeIndex: q.ResumeIndex,
	}
	for _, cs := range q.Challenges {
		cv := ChallengeView{
			ID:        cs.Challenge.ID,
			Type:      cs.Challenge.Type,
			Title:     cs.Title,
			Question:  cs.Challenge.Question,
			Completed: cs.Completed,
		}
		for _, o := range cs.Challenge.Options {
			cv.Options = append(cv.Options, OptionView{ID: o.ID, Text: o.Text, ImageSrc: o.ImageSrc, AudioSrc: o.AudioSrc})
		}
		view.Challenges = append(view.Challenges, cv)
	}

	s.store(ctx, s.keyLesson(userID, lessonID), &view)
	return &view, nil
}

// Leaderboard returns the top learners by points.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	var rows []LeaderboardRow
	if s.cached(ctx, s.keyLeaderboard(limit), &rows) {
		return rows, nil
	}

	entries, err := s.repo.Leaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	rows = make([]LeaderboardRow, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, LeaderboardRow{
			Rank:     i + 1,
			UserID:   e.UserID,
			UserName: e.UserName,
			ImageSrc: e.UserImageSrc,
			Points:   e.Points,
		})
	}

	s.store(ctx, s.keyLeaderboard(limit), rows)
	return rows, nil
}

// activeSnapshot loads the user's progress, active course and records.
func (s *Service) activeSnapshot(ctx context.Context, userID string) (*progression.Snapshot, error) {
	up, err := s.repo.GetUserProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user progress: %w", err)
	}
	if up.ActiveCourseID == 0 {
		return nil, fmt.Errorf("no active course: %w", apperr.ErrProgressNotFound)
	}
	course, err := s.curriculum.GetCourse(ctx, up.ActiveCourseID)
	if err != nil {
		return nil, fmt.Errorf("get course %d: %w", up.ActiveCourseID, err)
	}
	records, err := s.repo.ListChallengeProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list challenge progress: %w", err)
	}
	return progression.NewSnapshot(up, course, records), nil
}

func (s *Service) keyLearn(userID string) string {
	if s.cache == nil {
		return ""
	}
	return s.cache.LearnKey(userID)
}

func (s *Service) keyLesson(userID string, lessonID int64) string {
	if s.cache == nil {
		return ""
	}
	return s.cache.LessonKey(userID, lessonID)
}

func (s *Service) keyLeaderboard(limit int) string {
	if s.cache == nil {
		return ""
	}
	return s.cache.LeaderboardKey(limit)
}

// cached reports a cache hit. Cache errors count as misses.
func (s *Service) cached(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		s.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (s *Service) store(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, v); err != nil {
		s.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
