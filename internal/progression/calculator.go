// Package progression derives completion state from a snapshot of the
// curriculum and a learner's challenge progress records. Every function is
// pure; callers build a Snapshot once per request and pass it in.
package progression

import (
	"github.com/abhisek/lingo/internal/curriculum"
	"github.com/abhisek/lingo/internal/progress"
)

// Snapshot is the read state a view is derived from.
type Snapshot struct {
	UserID   string
	Progress *progress.UserProgress // nil when the user has not started
	Course   *curriculum.Course     // active course tree, nil when none

	attempted map[int64]bool
	completed map[int64]bool
}

// NewSnapshot indexes the user's records. course must be sorted.
func NewSnapshot(up *progress.UserProgress, course *curriculum.Course, records []progress.ChallengeProgress) *Snapshot {
	s := &Snapshot{
		Progress:  up,
		Course:    course,
		attempted: make(map[int64]bool, len(records)),
		completed: make(map[int64]bool, len(records)),
	}
	if up != nil {
		s.UserID = up.UserID
	}
	for _, r := range records {
		s.attempted[r.ChallengeID] = true
		if r.Completed {
			s.completed[r.ChallengeID] = true
		}
	}
	return s
}

// ChallengeCompleted reports whether a completed record exists.
func (s *Snapshot) ChallengeCompleted(challengeID int64) bool {
	return s.completed[challengeID]
}

// ChallengeAttempted reports whether any record exists, which makes the
// next attempt a practice attempt.
func (s *Snapshot) ChallengeAttempted(challengeID int64) bool {
	return s.attempted[challengeID]
}

// LessonCompleted is true when the lesson has challenges and every one of
// them is completed.
func LessonCompleted(s *Snapshot, l *curriculum.Lesson) bool {
	if l == nil || len(l.Challenges) == 0 {
		return false
	}
	for _, ch := range l.Challenges {
		if !s.ChallengeCompleted(ch.ID) {
			return false
		}
	}
	return true
}

// LessonPercentage is the share of completed challenges, 0..100. A missing
// lesson or one with no challenges is 0.
func LessonPercentage(s *Snapshot, l *curriculum.Lesson) float64 {
	if l == nil || len(l.Challenges) == 0 {
		return 0
	}
	done := 0
	for _, ch := range l.Challenges {
		if s.ChallengeCompleted(ch.ID) {
			done++
		}
	}
	return 100 * float64(done) / float64(len(l.Challenges))
}

// LessonStatus annotates a lesson with its derived completion.
type LessonStatus struct {
	Lesson    curriculum.Lesson
	Completed bool
}

// UnitStatus is a unit of the active course with annotated lessons.
type UnitStatus struct {
	Unit    curriculum.Unit
	Lessons []LessonStatus
}

// UnitsForActiveCourse returns the active course's units in order with each
// lesson marked completed or not. No active course yields nil.
func UnitsForActiveCourse(s *Snapshot) []UnitStatus {
	if s.Course == nil {
		return nil
	}
	units := make([]UnitStatus, 0, len(s.Course.Units))
	for _, u := range s.Course.Units {
		us := UnitStatus{Unit: u, Lessons: make([]LessonStatus, 0, len(u.Lessons))}
		for i := range u.Lessons {
			us.Lessons = append(us.Lessons, LessonStatus{
				Lesson:    u.Lessons[i],
				Completed: LessonCompleted(s, &u.Lessons[i]),
			})
		}
		units = append(units, us)
	}
	return units
}

// Position locates a lesson inside the active course.
type Position struct {
	Unit   *curriculum.Unit
	Lesson *curriculum.Lesson
}

// FirstUncompletedLesson returns the first lesson, in unit then lesson
// order, that has a challenge without a completed record. Lessons without
// challenges are skipped. ok is false when everything is done or there is
// no active course.
func FirstUncompletedLesson(s *Snapshot) (Position, bool) {
	if s.Course == nil {
		return Position{}, false
	}
	for i := range s.Course.Units {
		u := &s.Course.Units[i]
		for j := range u.Lessons {
			l := &u.Lessons[j]
			for _, ch := range l.Challenges {
				if !s.ChallengeCompleted(ch.ID) {
					return Position{Unit: u, Lesson: l}, true
				}
			}
		}
	}
	return Position{}, false
}

// CoursePercentage is the share of completed challenges across the whole
// active course.
func CoursePercentage(s *Snapshot) float64 {
	if s.Course == nil {
		return 0
	}
	total, done := 0, 0
	for _, u := range s.Course.Units {
		for _, l := range u.Lessons {
			for _, ch := range l.Challenges {
				total++
				if s.ChallengeCompleted(ch.ID) {
					done++
				}
			}
		}
	}
	if total == 0 {
		return 0
	}
	return 100 * float64(done) / float64(total)
}
