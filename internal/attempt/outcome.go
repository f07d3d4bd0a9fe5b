package attempt

// Kind classifies the result of an attempt.
type Kind string

const (
	// FirstCompleted: first attempt, correct. Points awarded, record created.
	FirstCompleted Kind = "first_completed"
	// PracticeCompleted: practice attempt, correct. A heart and points awarded.
	PracticeCompleted Kind = "practice_completed"
	// Missed: first attempt, wrong. One heart lost.
	Missed Kind = "missed"
	// PracticeMiss: practice attempt, wrong. Nothing changes.
	PracticeMiss Kind = "practice_miss"
	// InsufficientHearts: a first attempt was made with no hearts left.
	// Nothing changes and the caller should offer a way to restore hearts.
	InsufficientHearts Kind = "insufficient_hearts"
)

// Outcome is the result of resolving an attempt. Business conditions such
// as InsufficientHearts are outcomes, not errors.
type Outcome struct {
	Kind        Kind
	UserID      string
	ChallengeID int64
	LessonID    int64

	HeartsAfter int
	PointsAfter int

	changed bool
}

// HeartsRemaining is the heart count after the attempt.
func (o *Outcome) HeartsRemaining() int { return o.HeartsAfter }

// Blocked reports whether the learner must restore hearts before making
// further first attempts.
func (o *Outcome) Blocked() bool { return o.Kind == InsufficientHearts }

// Correct reports whether the attempt was answered correctly.
func (o *Outcome) Correct() bool {
	return o.Kind == FirstCompleted || o.Kind == PracticeCompleted
}

// Mutated reports whether the attempt changed stored state.
func (o *Outcome) Mutated() bool { return o.changed }
