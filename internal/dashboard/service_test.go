package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/abhisek/lingo/internal/apperr"
	"github.com/abhisek/lingo/internal/curriculum"
	"github.com/abhisek/lingo/internal/progress"
	"github.com/abhisek/lingo/internal/progress/progresstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapCache is an in-memory Cache that round-trips through JSON like redis.
type mapCache struct {
	data map[string][]byte
	gets int
	hits int
}

func newMapCache() *mapCache { return &mapCache{data: make(map[string][]byte)} }

func (m *mapCache) Get(_ context.Context, key string, dst any) (bool, error) {
	m.gets++
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	m.hits++
	return true, json.Unmarshal(raw, dst)
}

func (m *mapCache) Set(_ context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *mapCache) LearnKey(u string) string { return "learn:" + u }
func (m *mapCache) LessonKey(u string, id int64) string { return fmt.Sprintf("lesson:%s:%d", u, id) }
func (m *mapCache) LeaderboardKey(limit int) string { return fmt.Sprintf("leaderboard:%d", limit) }

func newTestService(t *testing.T, cache Cache) (*Service, *progresstest.Memory) {
	t.Helper()
	repo := progresstest.NewMemory()
	repo.Seed(progress.UserProgress{UserID: "u1", UserName: "Ana", ActiveCourseID: 1, Hearts: 4, Points: 30})
	return NewService(curriculum.NewMemoryStore(curriculum.Sample()), repo, cache, nil), repo
}

func TestLearn(t *testing.T) {
	svc, repo := newTestService(t, nil)
	for _, id := range []int64{1, 2, 3} {
		repo.SeedRecord("u1", id, true)
	}
	repo.SeedRecord("u1", 4, false)

	view, err := svc.Learn(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "Spanish", view.CourseTitle)
	assert.Equal(t, 4, view.Hearts)
	assert.Equal(t, 30, view.Points)
	require.Len(t, view.Units, 2)
	require.Len(t, view.Units[0].Lessons, 2)
	assert.True(t, view.Units[0].Lessons[0].Completed)
	assert.False(t, view.Units[0].Lessons[1].Completed)
	assert.True(t, view.Units[0].Lessons[1].Current)

	require.NotNil(t, view.Resume)
	assert.Equal(t, int64(2), view.Resume.ID)
	assert.InDelta(t, 100*3.0/9.0, view.Percentage, 0.0001)
}

func TestLearnWithoutProgress(t *testing.T) {
	svc, repo := newTestService(t, nil)

	_, err := svc.Learn(context.Background(), "nobody")
	assert.ErrorIs(t, err, apperr.ErrProgressNotFound)

	repo.Seed(progress.UserProgress{UserID: "u2", Hearts: 5})
	_, err = svc.Learn(context.Background(), "u2")
	assert.ErrorIs(t, err, apperr.ErrProgressNotFound)

	_, err = svc.Learn(context.Background(), "")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestLessonResume(t *testing.T) {
	svc, repo := newTestService(t, nil)
	repo.SeedRecord("u1", 1, true)

	view, err := svc.Lesson(context.Background(), "u1", 0)
	require.NoError(t, err)

	assert.Equal(t, int64(1), view.LessonID)
	assert.Equal(t, 1, view.ResumeIndex)
	assert.InDelta(t, 100.0/3.0, view.Percentage, 0.0001)
	assert.False(t, view.Practice)
	require.Len(t, view.Challenges, 3)
	assert.True(t, view.Challenges[0].Completed)
	assert.Len(t, view.Challenges[0].Options, 3)
}

func TestLessonPractice(t *testing.T) {
	svc, repo := newTestService(t, nil)
	repo.SeedRecord("u1", 6, true)
	repo.SeedRecord("u1", 7, true)

	view, err := svc.Lesson(context.Background(), "u1", 3)
	require.NoError(t, err)

	assert.True(t, view.Practice)
	assert.Equal(t, 0.0, view.Percentage)
	assert.Equal(t, 0, view.ResumeIndex)
	assert.Equal(t, "Select the correct meaning", view.Challenges[1].Title)
}

func TestLessonErrors(t *testing.T) {
	svc, repo := newTestService(t, nil)

	_, err := svc.Lesson(context.Background(), "u1", 99)
	assert.ErrorIs(t, err, apperr.ErrLessonNotFound)

	for id := int64(1); id <= 9; id++ {
		repo.SeedRecord("u1", id, true)
	}
	_, err = svc.Lesson(context.Background(), "u1", 0)
	assert.ErrorIs(t, err, apperr.ErrLessonNotFound)
}

func TestLeaderboard(t *testing.T) {
	svc, repo := newTestService(t, nil)
	repo.Seed(progress.UserProgress{UserID: "u2", UserName: "Ben", Hearts: 5, Points: 90})
	repo.Seed(progress.UserProgress{UserID: "u3", UserName: "Cy", Hearts: 5, Points: 30})

	rows, err := svc.Leaderboard(context.Background(), 0)
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, "u2", rows[0].UserID)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, "u1", rows[1].UserID, "ties break by user id")
	assert.Equal(t, 3, rows[2].Rank)

	rows, err = svc.Leaderboard(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestViewsAreCached(t *testing.T) {
	cache := newMapCache()
	svc, repo := newTestService(t, cache)
	ctx := context.Background()

	first, err := svc.Learn(ctx, "u1")
	require.NoError(t, err)

	// A write without invalidation is not visible through the cache.
	repo.SeedRecord("u1", 1, true)
	second, err := svc.Learn(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, first.Percentage, second.Percentage)

	delete(cache.data, cache.LearnKey("u1"))
	third, err := svc.Learn(ctx, "u1")
	require.NoError(t, err)
	assert.Greater(t, third.Percentage, first.Percentage)
}
