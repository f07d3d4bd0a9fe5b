package curriculum

import (
	"context"
	"testing"

	"github.com/abhisek/lingo/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(Sample())

	courses, err := s.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Empty(t, courses[0].Units)

	ch, err := s.GetChallenge(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(3), ch.LessonID)

	lesson, err := s.GetLessonWithChallenges(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, lesson.Challenges, 3)

	_, err = s.GetCourse(ctx, 99)
	assert.ErrorIs(t, err, apperr.ErrCourseNotFound)
	_, err = s.GetChallenge(ctx, 99)
	assert.ErrorIs(t, err, apperr.ErrChallengeNotFound)
	_, err = s.GetLessonWithChallenges(ctx, 99)
	assert.ErrorIs(t, err, apperr.ErrLessonNotFound)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(Sample())

	c, err := s.GetCourse(ctx, 1)
	require.NoError(t, err)
	c.Units[0].Lessons[0].Challenges[0].Options[0].Correct = false

	again, err := s.GetChallenge(ctx, c.Units[0].Lessons[0].Challenges[0].ID)
	require.NoError(t, err)
	_, err = again.CorrectOption()
	assert.NoError(t, err)
}
