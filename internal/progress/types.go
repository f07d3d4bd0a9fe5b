// Package progress holds a learner's aggregate state (hearts, points,
// active course), per-challenge completion records and the repository
// contract the attempt and selection services write through.
package progress

import (
	"time"
)

const (
	// MaxHearts is the ceiling for the hearts resource.
	MaxHearts = 5
	// DefaultHearts is the allotment of a newly created learner.
	DefaultHearts = MaxHearts
	// PointsPerChallenge is awarded on every correct answer.
	PointsPerChallenge = 10

	DefaultUserName     = "User"
	DefaultUserImageSrc = "/mascot.svg"
)

// UserProgress is the per-user aggregate.
type UserProgress struct {
	UserID         string
	UserName       string
	UserImageSrc   string
	ActiveCourseID int64 // 0 when no course is active
	Hearts         int
	Points         int

	// Version increments on every write. Updates compare-and-set on it.
	Version int64
}

// New returns the aggregate for a learner who just picked their first course.
func New(userID string, courseID int64) *UserProgress {
	return &UserProgress{
		UserID:         userID,
		UserName:       DefaultUserName,
		UserImageSrc:   DefaultUserImageSrc,
		ActiveCourseID: courseID,
		Hearts:         DefaultHearts,
	}
}

// Mutation is the resource change produced by one attempt.
type Mutation struct {
	HeartsDelta int
	PointsDelta int
}

// IsZero reports whether the mutation changes nothing.
func (m Mutation) IsZero() bool {
	return m.HeartsDelta == 0 && m.PointsDelta == 0
}

// Apply returns p with m applied. Hearts are clamped to [0, MaxHearts] and
// points never move backwards.
func (p UserProgress) Apply(m Mutation) UserProgress {
	p.Hearts = ClampHearts(p.Hearts + m.HeartsDelta)
	if m.PointsDelta > 0 {
		p.Points += m.PointsDelta
	}
	return p
}

// ClampHearts bounds h to [0, MaxHearts].
func ClampHearts(h int) int {
	return min(max(h, 0), MaxHearts)
}

// ChallengeProgress records that a user has attempted a challenge. Its
// existence, not Completed, marks later attempts as practice.
type ChallengeProgress struct {
	ID          int64
	UserID      string
	ChallengeID int64
	Completed   bool
}

// Subscription is the billing state used by the heart policy.
type Subscription struct {
	UserID                 string
	StripeCustomerID       string
	StripeSubscriptionID   string
	StripePriceID          string
	StripeCurrentPeriodEnd time.Time
}

// subscriptionGrace is how long a subscription stays active past its period end.
const subscriptionGrace = 24 * time.Hour

// IsActive reports whether the subscription has a price and its period,
// plus one day of grace, has not ended.
func (s *Subscription) IsActive(now time.Time) bool {
	if s == nil || s.StripePriceID == "" {
		return false
	}
	return s.StripeCurrentPeriodEnd.Add(subscriptionGrace).After(now)
}

// LeaderboardEntry is one row of the points ranking.
type LeaderboardEntry struct {
	UserID       string
	UserName     string
	UserImageSrc string
	Points       int
}

// AttemptRecord is an append-only log entry written with every resolved
// attempt.
type AttemptRecord struct {
	ID          string
	Sequence    int64
	UserID      string
	ChallengeID int64
	LessonID    int64
	Correct     bool
	Outcome     string
	HeartsAfter int
	PointsAfter int
	Timestamp   time.Time
}
