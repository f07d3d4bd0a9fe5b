package selection

import (
	"context"
	"testing"

	"github.com/abhisek/lingo/internal/apperr"
	"github.com/abhisek/lingo/internal/curriculum"
	"github.com/abhisek/lingo/internal/notify"
	"github.com/abhisek/lingo/internal/progress"
	"github.com/abhisek/lingo/internal/progress/progresstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoCourses() *curriculum.MemoryStore {
	french := &curriculum.Course{ID: 2, Title: "French"}
	return curriculum.NewMemoryStore(curriculum.Sample(), french)
}

func TestSelectCreatesProgress(t *testing.T) {
	repo := progresstest.NewMemory()
	var events []notify.Event
	n := notify.Func(func(_ context.Context, ev notify.Event) error {
		events = append(events, ev)
		return nil
	})
	svc := NewService(twoCourses(), repo, n, nil)

	require.NoError(t, svc.SelectActiveCourse(context.Background(), "u1", 1, Profile{}))

	up, err := repo.GetUserProgress(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), up.ActiveCourseID)
	assert.Equal(t, progress.DefaultHearts, up.Hearts)
	assert.Equal(t, 0, up.Points)
	assert.Equal(t, progress.DefaultUserName, up.UserName)
	assert.Equal(t, progress.DefaultUserImageSrc, up.UserImageSrc)
	require.Len(t, events, 1)
	assert.Equal(t, notify.ReasonCourseSelect, events[0].Reason)
}

func TestSelectPreservesResources(t *testing.T) {
	repo := progresstest.NewMemory()
	repo.Seed(progress.UserProgress{UserID: "u1", ActiveCourseID: 1, Hearts: 2, Points: 130, UserName: "Ana"})
	svc := NewService(twoCourses(), repo, nil, nil)

	require.NoError(t, svc.SelectActiveCourse(context.Background(), "u1", 2, Profile{Name: "Ana María", ImageSrc: "/ana.png"}))

	up, err := repo.GetUserProgress(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), up.ActiveCourseID)
	assert.Equal(t, 2, up.Hearts)
	assert.Equal(t, 130, up.Points)
	assert.Equal(t, "Ana María", up.UserName)
	assert.Equal(t, "/ana.png", up.UserImageSrc)
}

func TestSelectUnknownCourse(t *testing.T) {
	repo := progresstest.NewMemory()
	svc := NewService(twoCourses(), repo, nil, nil)

	err := svc.SelectActiveCourse(context.Background(), "u1", 42, Profile{})
	assert.ErrorIs(t, err, apperr.ErrCourseNotFound)

	_, err = repo.GetUserProgress(context.Background(), "u1")
	assert.ErrorIs(t, err, apperr.ErrProgressNotFound)
}

func TestSelectUnauthenticated(t *testing.T) {
	svc := NewService(twoCourses(), progresstest.NewMemory(), nil, nil)
	err := svc.SelectActiveCourse(context.Background(), "", 1, Profile{})
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestSelectRetriesConflict(t *testing.T) {
	repo := progresstest.NewMemory()
	repo.FailOn["UpsertUserProgress"] = apperr.Conflict("insert user progress", nil)
	svc := NewService(twoCourses(), repo, nil, nil)

	require.NoError(t, svc.SelectActiveCourse(context.Background(), "u1", 1, Profile{}))
	assert.Equal(t, 1, repo.Commits)
}
