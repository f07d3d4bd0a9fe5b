package progression

import (
	"github.com/abhisek/lingo/internal/curriculum"
)

// ChallengeStatus is a challenge as presented in a lesson.
type ChallengeStatus struct {
	Challenge curriculum.Challenge
	Title     string
	Completed bool
}

// QuizState is the presentation state for playing a lesson.
type QuizState struct {
	Lesson     curriculum.Lesson
	Challenges []ChallengeStatus

	// Percentage is what the progress bar shows. A fully completed lesson
	// is replayed as practice and starts from 0.
	Percentage float64
	Practice   bool

	// ResumeIndex is the first challenge without a completed record, or 0
	// when every challenge is completed.
	ResumeIndex int
}

// Quiz derives the quiz state for lesson l.
func Quiz(s *Snapshot, l *curriculum.Lesson) QuizState {
	q := QuizState{Lesson: *l, ResumeIndex: -1}
	for i, ch := range l.Challenges {
		done := s.ChallengeCompleted(ch.ID)
		q.Challenges = append(q.Challenges, ChallengeStatus{
			Challenge: ch,
			Title:     ch.Title(),
			Completed: done,
		})
		if !done && q.ResumeIndex < 0 {
			q.ResumeIndex = i
		}
	}
	if q.ResumeIndex < 0 {
		q.ResumeIndex = 0
	}

	q.Percentage = LessonPercentage(s, l)
	if q.Percentage == 100 {
		q.Practice = true
		q.Percentage = 0
	}
	return q
}
