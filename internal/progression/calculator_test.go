package progression

import (
	"testing"

	"github.com/abhisek/lingo/internal/curriculum"
	"github.com/abhisek/lingo/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCourse() *curriculum.Course {
	return &curriculum.Course{
		ID: 1, Title: "Spanish",
		Units: []curriculum.Unit{
			{ID: 1, Order: 1, Lessons: []curriculum.Lesson{
				{ID: 10, Order: 1, Challenges: []curriculum.Challenge{
					{ID: 100, Order: 1, Type: curriculum.Select, Question: "q100"},
					{ID: 101, Order: 2, Type: curriculum.Assist, Question: "q101"},
				}},
				{ID: 11, Order: 2},
				{ID: 12, Order: 3, Challenges: []curriculum.Challenge{
					{ID: 120, Order: 1, Type: curriculum.Select, Question: "q120"},
				}},
			}},
			{ID: 2, Order: 2, Lessons: []curriculum.Lesson{
				{ID: 20, Order: 1, Challenges: []curriculum.Challenge{
					{ID: 200, Order: 1, Type: curriculum.Select, Question: "q200"},
					{ID: 201, Order: 2, Type: curriculum.Select, Question: "q201"},
					{ID: 202, Order: 3, Type: curriculum.Select, Question: "q202"},
					{ID: 203, Order: 4, Type: curriculum.Select, Question: "q203"},
				}},
			}},
		},
	}
}

func records(completed map[int64]bool) []progress.ChallengeProgress {
	var out []progress.ChallengeProgress
	for id, done := range completed {
		out = append(out, progress.ChallengeProgress{ChallengeID: id, Completed: done})
	}
	return out
}

func snapshot(completed map[int64]bool) *Snapshot {
	up := &progress.UserProgress{UserID: "u1", ActiveCourseID: 1, Hearts: 5}
	return NewSnapshot(up, testCourse(), records(completed))
}

func lessonByID(t *testing.T, s *Snapshot, id int64) *curriculum.Lesson {
	t.Helper()
	_, l := s.Course.Lesson(id)
	require.NotNil(t, l)
	return l
}

func TestLessonCompleted(t *testing.T) {
	tests := []struct {
		name     string
		records  map[int64]bool
		lessonID int64
		want     bool
	}{
		{"no records", nil, 10, false},
		{"partial", map[int64]bool{100: true}, 10, false},
		{"all completed", map[int64]bool{100: true, 101: true}, 10, true},
		{"attempted but incomplete", map[int64]bool{100: true, 101: false}, 10, false},
		{"zero challenges", map[int64]bool{100: true, 101: true}, 11, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := snapshot(tt.records)
			assert.Equal(t, tt.want, LessonCompleted(s, lessonByID(t, s, tt.lessonID)))
		})
	}
}

func TestLessonCompletedNil(t *testing.T) {
	assert.False(t, LessonCompleted(snapshot(nil), nil))
}

func TestLessonPercentage(t *testing.T) {
	s := snapshot(map[int64]bool{200: true, 201: false, 203: true})

	assert.Equal(t, 50.0, LessonPercentage(s, lessonByID(t, s, 20)))
	assert.Equal(t, 0.0, LessonPercentage(s, lessonByID(t, s, 11)))
	assert.Equal(t, 0.0, LessonPercentage(s, nil))
}

func TestUnitsForActiveCourse(t *testing.T) {
	s := snapshot(map[int64]bool{100: true, 101: true})

	units := UnitsForActiveCourse(s)
	require.Len(t, units, 2)
	require.Len(t, units[0].Lessons, 3)
	assert.True(t, units[0].Lessons[0].Completed)
	assert.False(t, units[0].Lessons[1].Completed)
	assert.False(t, units[0].Lessons[2].Completed)
	assert.Equal(t, int64(2), units[1].Unit.ID)

	assert.Nil(t, UnitsForActiveCourse(NewSnapshot(nil, nil, nil)))
}

func TestFirstUncompletedLesson(t *testing.T) {
	tests := []struct {
		name     string
		records  map[int64]bool
		wantID   int64
		wantUnit int64
		wantOK   bool
	}{
		{"fresh learner", nil, 10, 1, true},
		{"skips empty lesson", map[int64]bool{100: true, 101: true}, 12, 1, true},
		{"incomplete record counts as uncompleted", map[int64]bool{100: true, 101: false}, 10, 1, true},
		{"moves to next unit", map[int64]bool{100: true, 101: true, 120: true}, 20, 2, true},
		{"all done", map[int64]bool{100: true, 101: true, 120: true, 200: true, 201: true, 202: true, 203: true}, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, ok := FirstUncompletedLesson(snapshot(tt.records))
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.wantID, pos.Lesson.ID)
			assert.Equal(t, tt.wantUnit, pos.Unit.ID)
		})
	}
}

func TestCoursePercentage(t *testing.T) {
	s := snapshot(map[int64]bool{100: true, 101: true, 120: true, 200: true, 201: true})
	assert.InDelta(t, 100*5.0/7.0, CoursePercentage(s), 0.0001)
	assert.Equal(t, 0.0, CoursePercentage(NewSnapshot(nil, nil, nil)))
}

func TestChallengeAttempted(t *testing.T) {
	s := snapshot(map[int64]bool{100: false})
	assert.True(t, s.ChallengeAttempted(100))
	assert.False(t, s.ChallengeCompleted(100))
	assert.False(t, s.ChallengeAttempted(101))
}

func TestQuiz(t *testing.T) {
	t.Run("resumes at first uncompleted", func(t *testing.T) {
		s := snapshot(map[int64]bool{200: true, 201: true})
		q := Quiz(s, lessonByID(t, s, 20))
		assert.Equal(t, 2, q.ResumeIndex)
		assert.Equal(t, 50.0, q.Percentage)
		assert.False(t, q.Practice)
		require.Len(t, q.Challenges, 4)
		assert.True(t, q.Challenges[0].Completed)
		assert.Equal(t, "q200", q.Challenges[0].Title)
	})

	t.Run("completed lesson is practice from zero", func(t *testing.T) {
		s := snapshot(map[int64]bool{100: true, 101: true})
		q := Quiz(s, lessonByID(t, s, 10))
		assert.True(t, q.Practice)
		assert.Equal(t, 0.0, q.Percentage)
		assert.Equal(t, 0, q.ResumeIndex)
		assert.Equal(t, "Select the correct meaning", q.Challenges[1].Title)
	})

	t.Run("empty lesson", func(t *testing.T) {
		s := snapshot(nil)
		q := Quiz(s, lessonByID(t, s, 11))
		assert.False(t, q.Practice)
		assert.Equal(t, 0, q.ResumeIndex)
		assert.Empty(t, q.Challenges)
	})
}
