package progress

import (
	"context"
	"time"
)

// Tx is the set of progress operations that must commit together. All
// reads inside a Tx observe the writer's own uncommitted changes, and the
// user_progress row read by GetUserProgress is protected against
// concurrent writers until commit, either by a lock or by the version
// compare-and-set in UpsertUserProgress.
type Tx interface {
	// GetUserProgress returns the aggregate. Missing → apperr.ErrProgressNotFound.
	GetUserProgress(ctx context.Context, userID string) (*UserProgress, error)

	// UpsertUserProgress inserts p when p.Version is 0 and otherwise updates
	// the row whose version equals p.Version. A lost race returns
	// apperr.ErrConflict. On success p.Version holds the stored version.
	UpsertUserProgress(ctx context.Context, p *UserProgress) error

	// GetChallengeProgress returns the record for the pair, or nil.
	GetChallengeProgress(ctx context.Context, userID string, challengeID int64) (*ChallengeProgress, error)

	// InsertChallengeProgress stores a new record and sets rec.ID. A record
	// for the same pair already existing returns apperr.ErrConflict.
	InsertChallengeProgress(ctx context.Context, rec *ChallengeProgress) error

	// UpdateChallengeProgress sets the completed flag of record id.
	UpdateChallengeProgress(ctx context.Context, id int64, completed bool) error

	// AppendAttempt writes an attempt log entry, assigning ID, Sequence and
	// Timestamp when unset.
	AppendAttempt(ctx context.Context, rec *AttemptRecord) error
}

// Repository is the persistent progress store.
type Repository interface {
	// InTx runs fn in one transaction. Returning an error rolls back.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// GetUserProgress reads the aggregate outside a transaction.
	GetUserProgress(ctx context.Context, userID string) (*UserProgress, error)

	// ListChallengeProgress returns every record for the user.
	ListChallengeProgress(ctx context.Context, userID string) ([]ChallengeProgress, error)

	// Leaderboard returns the top learners by points, ties broken by user id.
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)

	// ListAttempts returns the most recent attempts for the user, newest first.
	ListAttempts(ctx context.Context, userID string, limit int) ([]AttemptRecord, error)
}

// SubscriptionRepository stores billing state.
type SubscriptionRepository interface {
	// GetSubscription returns the user's subscription, or nil.
	GetSubscription(ctx context.Context, userID string) (*Subscription, error)

	// UpsertSubscription creates or replaces the user's subscription.
	UpsertSubscription(ctx context.Context, s *Subscription) error

	// RenewSubscription updates price and period end by subscription id.
	RenewSubscription(ctx context.Context, subscriptionID, priceID string, periodEnd time.Time) error
}
