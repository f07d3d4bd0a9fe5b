package attempt

import "github.com/abhisek/lingo/internal/progress"

type state struct {
	hearts   int
	practice bool // a ChallengeProgress record exists
	correct  bool
	exempt   bool // heart policy exempts the user
}

type decision struct {
	kind     Kind
	mutation progress.Mutation

	insertRecord   bool
	completeRecord bool
}

// decide applies the attempt rules to the state read inside the
// transaction.
func decide(s state) decision {
	if !s.correct {
		switch {
		case s.practice:
			return decision{kind: PracticeMiss}
		case s.exempt:
			return decision{kind: Missed}
		case s.hearts <= 0:
			return decision{kind: InsufficientHearts}
		}
		return decision{kind: Missed, mutation: progress.Mutation{HeartsDelta: -1}}
	}

	if s.practice {
		return decision{
			kind:           PracticeCompleted,
			mutation:       progress.Mutation{HeartsDelta: 1, PointsDelta: progress.PointsPerChallenge},
			completeRecord: true,
		}
	}
	if s.hearts <= 0 && !s.exempt {
		return decision{kind: InsufficientHearts}
	}
	return decision{
		kind:         FirstCompleted,
		mutation:     progress.Mutation{PointsDelta: progress.PointsPerChallenge},
		insertRecord: true,
	}
}
