// Package attempt resolves a learner's answer to a challenge into changes
// of hearts, points and completion, applied in one transaction.
package attempt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/lingo/internal/apperr"
	"github.com/abhisek/lingo/internal/curriculum"
	"github.com/abhisek/lingo/internal/notify"
	"github.com/abhisek/lingo/internal/progress"
	"github.com/abhisek/lingo/internal/retry"
	"go.uber.org/zap"
)

// Config tunes the resolver.
type Config struct {
	// Timeout bounds one Resolve call including retries. Zero disables it.
	Timeout time.Duration
	Retry   retry.Config
}

// DefaultConfig returns the defaults used by the CLI.
func DefaultConfig() Config {
	return Config{Timeout: 5 * time.Second, Retry: retry.DefaultConfig()}
}

// Resolver applies the attempt rules.
type Resolver struct {
	curriculum curriculum.Store
	repo       progress.Repository
	policy     HeartPolicy
	notifier   notify.Notifier
	log        *zap.Logger
	cfg        Config
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPolicy sets the heart policy. The default exempts nobody.
func WithPolicy(p HeartPolicy) Option { return func(r *Resolver) { r.policy = p } }

// WithNotifier sets the notifier called after each committed mutation.
func WithNotifier(n notify.Notifier) Option { return func(r *Resolver) { r.notifier = n } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(r *Resolver) { r.log = l } }

// WithConfig replaces the default config.
func WithConfig(cfg Config) Option { return func(r *Resolver) { r.cfg = cfg } }

// NewResolver creates a Resolver.
func NewResolver(cs curriculum.Store, repo progress.Repository, opts ...Option) *Resolver {
	r := &Resolver{
		curriculum: cs,
		repo:       repo,
		policy:     StandardPolicy{},
		notifier:   notify.Nop{},
		log:        zap.NewNop(),
		cfg:        DefaultConfig(),
	}
	for _, o := range opts {
		o(r)
	}
	r.log = r.log.Named("attempt")
	return r
}

// Resolve records an answer to challengeID. correct tells whether the
// selected option was the right one.
func (r *Resolver) Resolve(ctx context.Context, userID string, challengeID int64, correct bool) (*Outcome, error) {
	if userID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	ch, err := r.loadChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	return r.resolve(ctx, userID, ch, correct)
}

// ResolveOption records the selection of optionID and derives correctness
// from the curriculum.
func (r *Resolver) ResolveOption(ctx context.Context, userID string, challengeID, optionID int64) (*Outcome, error) {
	if userID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	ch, err := r.loadChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	opt := ch.Option(optionID)
	if opt == nil {
		return nil, apperr.Validation("option %d does not belong to challenge %d", optionID, challengeID)
	}
	return r.resolve(ctx, userID, ch, opt.Correct)
}

func (r *Resolver) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.cfg.Timeout)
}

// loadChallenge fetches the challenge and checks it has exactly one
// correct option.
func (r *Resolver) loadChallenge(ctx context.Context, id int64) (*curriculum.Challenge, error) {
	ch, err := r.curriculum.GetChallenge(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get challenge %d: %w", id, apperr.FromContext("get challenge", err))
	}
	if _, err := ch.CorrectOption(); err != nil {
		r.log.Error("curriculum defect", zap.Int64("challenge_id", id), zap.Error(err))
		return nil, err
	}
	return ch, nil
}

func (r *Resolver) resolve(ctx context.Context, userID string, ch *curriculum.Challenge, correct bool) (*Outcome, error) {
	exempt, err := r.policy.Exempt(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("heart policy: %w", apperr.FromContext("heart policy", err))
	}

	var out *Outcome
	err = retry.Do(ctx, r.cfg.Retry, func(ctx context.Context) error {
		o, err := r.resolveOnce(ctx, userID, ch, correct, exempt)
		if err != nil {
			return err
		}
		out = o
		return nil
	}, func(attempt int, err error) {
		r.log.Warn("retrying attempt",
			zap.String("user_id", userID),
			zap.Int64("challenge_id", ch.ID),
			zap.Int("retry", attempt),
			zap.Error(err),
		)
	})
	if err != nil {
		return nil, err
	}

	r.log.Debug("attempt resolved",
		zap.String("user_id", userID),
		zap.Int64("challenge_id", ch.ID),
		zap.String("outcome", string(out.Kind)),
		zap.Int("hearts", out.HeartsAfter),
		zap.Int("points", out.PointsAfter),
	)

	if out.Mutated() {
		ev := notify.Event{
			UserID:    userID,
			LessonID:  ch.LessonID,
			Reason:    notify.ReasonAttempt,
			Timestamp: time.Now().UTC(),
		}
		if err := r.notifier.Notify(context.WithoutCancel(ctx), ev); err != nil {
			r.log.Warn("notify failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return out, nil
}

// resolveOnce reads the current state and writes the decision in a single
// transaction. It is re-run from scratch on conflicts.
func (r *Resolver) resolveOnce(ctx context.Context, userID string, ch *curriculum.Challenge, correct, exempt bool) (*Outcome, error) {
	var out *Outcome
	err := r.repo.InTx(ctx, func(ctx context.Context, tx progress.Tx) error {
		up, err := tx.GetUserProgress(ctx, userID)
		if err != nil {
			return err
		}
		rec, err := tx.GetChallengeProgress(ctx, userID, ch.ID)
		if err != nil {
			return fmt.Errorf("get challenge progress: %w", err)
		}

		d := decide(state{
			hearts:   up.Hearts,
			practice: rec != nil,
			correct:  correct,
			exempt:   exempt,
		})

		next := up.Apply(d.mutation)
		o := &Outcome{
			Kind:        d.kind,
			UserID:      userID,
			ChallengeID: ch.ID,
			LessonID:    ch.LessonID,
			HeartsAfter: next.Hearts,
			PointsAfter: next.Points,
		}

		if d.insertRecord {
			o.changed = true
			if err := tx.InsertChallengeProgress(ctx, &progress.ChallengeProgress{
				UserID:      userID,
				ChallengeID: ch.ID,
				Completed:   true,
			}); err != nil {
				return fmt.Errorf("insert challenge progress: %w", err)
			}
		}
		if d.completeRecord {
			o.changed = true
			if err := tx.UpdateChallengeProgress(ctx, rec.ID, true); err != nil {
				return fmt.Errorf("update challenge progress: %w", err)
			}
		}
		if next != *up {
			o.changed = true
			if err := tx.UpsertUserProgress(ctx, &next); err != nil {
				return fmt.Errorf("update user progress: %w", err)
			}
		}

		if o.changed {
			if err := tx.AppendAttempt(ctx, &progress.AttemptRecord{
				UserID:      userID,
				ChallengeID: ch.ID,
				LessonID:    ch.LessonID,
				Correct:     correct,
				Outcome:     string(o.Kind),
				HeartsAfter: o.HeartsAfter,
				PointsAfter: o.PointsAfter,
			}); err != nil {
				return fmt.Errorf("append attempt: %w", err)
			}
		}
		out = o
		return nil
	})
	if err != nil {
		if errors.Is(err, apperr.ErrProgressNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, apperr.ErrProgressNotFound)
		}
		return nil, apperr.FromContext("resolve attempt", err)
	}
	return out, nil
}
