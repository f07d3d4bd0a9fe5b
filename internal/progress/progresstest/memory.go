// Package progresstest provides an in-memory progress repository for
// service tests.
package progresstest

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/lingo/internal/apperr"
	"github.com/abhisek/lingo/internal/progress"
	"github.com/google/uuid"
)

type pairKey struct {
	userID      string
	challengeID int64
}

type state struct {
	users    map[string]progress.UserProgress
	records  map[pairKey]progress.ChallengeProgress
	attempts []progress.AttemptRecord
	nextID   int64
	seq      int64
}

func (s *state) clone() *state {
	return &state{
		users:    maps.Clone(s.users),
		records:  maps.Clone(s.records),
		attempts: slices.Clone(s.attempts),
		nextID:   s.nextID,
		seq:      s.seq,
	}
}

// Memory implements progress.Repository and progress.SubscriptionRepository.
// Transactions are serialized and only published on success.
type Memory struct {
	mu    sync.Mutex
	state *state
	subs  map[string]progress.Subscription

	// FailOn makes the named Tx method return the error once.
	FailOn map[string]error

	// Commits counts successful transactions.
	Commits int
}

// NewMemory returns an empty repository.
func NewMemory() *Memory {
	return &Memory{
		state: &state{
			users:   make(map[string]progress.UserProgress),
			records: make(map[pairKey]progress.ChallengeProgress),
		},
		subs:   make(map[string]progress.Subscription),
		FailOn: make(map[string]error),
	}
}

// Seed stores p directly, bumping its version.
func (m *Memory) Seed(p progress.UserProgress) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.Version++
	m.state.users[p.UserID] = p
}

// SeedRecord stores a challenge progress record directly.
func (m *Memory) SeedRecord(userID string, challengeID int64, completed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.nextID++
	m.state.records[pairKey{userID, challengeID}] = progress.ChallengeProgress{
		ID: m.state.nextID, UserID: userID, ChallengeID: challengeID, Completed: completed,
	}
}

// RecordCount returns how many records exist for the pair.
func (m *Memory) RecordCount(userID string, challengeID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.state.records[pairKey{userID, challengeID}]; ok {
		return 1
	}
	return 0
}

// Record returns the record for the pair, or nil.
func (m *Memory) Record(userID string, challengeID int64) *progress.ChallengeProgress {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.state.records[pairKey{userID, challengeID}]; ok {
		return &r
	}
	return nil
}

func (m *Memory) InTx(ctx context.Context, fn func(ctx context.Context, tx progress.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return apperr.FromContext("begin", err)
	}
	work := m.state.clone()
	if err := fn(ctx, &memTx{m: m, s: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return apperr.FromContext("commit", err)
	}
	m.state = work
	m.Commits++
	return nil
}

func (m *Memory) GetUserProgress(_ context.Context, userID string) (*progress.UserProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.state.users[userID]
	if !ok {
		return nil, apperr.ErrProgressNotFound
	}
	return &p, nil
}

func (m *Memory) ListChallengeProgress(_ context.Context, userID string) ([]progress.ChallengeProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []progress.ChallengeProgress
	for k, r := range m.state.records {
		if k.userID == userID {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b progress.ChallengeProgress) int { return int(a.ID - b.ID) })
	return out, nil
}

func (m *Memory) Leaderboard(_ context.Context, limit int) ([]progress.LeaderboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []progress.LeaderboardEntry
	for _, p := range m.state.users {
		out = append(out, progress.LeaderboardEntry{
			UserID: p.UserID, UserName: p.UserName, UserImageSrc: p.UserImageSrc, Points: p.Points,
		})
	}
	slices.SortFunc(out, func(a, b progress.LeaderboardEntry) int {
		if a.Points != b.Points {
			return b.Points - a.Points
		}
		return strings.Compare(a.UserID, b.UserID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) ListAttempts(_ context.Context, userID string, limit int) ([]progress.AttemptRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []progress.AttemptRecord
	for i := len(m.state.attempts) - 1; i >= 0; i-- {
		if a := m.state.attempts[i]; a.UserID == userID {
			out = append(out, a)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *Memory) GetSubscription(_ context.Context, userID string) (*progress.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[userID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *Memory) UpsertSubscription(_ context.Context, s *progress.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[s.UserID] = *s
	return nil
}

func (m *Memory) RenewSubscription(_ context.Context, subscriptionID, priceID string, periodEnd time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, s := range m.subs {
		if s.StripeSubscriptionID == subscriptionID {
			s.StripePriceID = priceID
			s.StripeCurrentPeriodEnd = periodEnd
			m.subs[k] = s
			return nil
		}
	}
	return fmt.Errorf("renew subscription %q: no such subscription", subscriptionID)
}

// memTx operates on a private copy of the state. m.mu is held by InTx.
type memTx struct {
	m *Memory
	s *state
}

func (t *memTx) fail(op string) error {
	if err, ok := t.m.FailOn[op]; ok {
		delete(t.m.FailOn, op)
		return err
	}
	return nil
}

func (t *memTx) GetUserProgress(_ context.Context, userID string) (*progress.UserProgress, error) {
	if err := t.fail("GetUserProgress"); err != nil {
		return nil, err
	}
	p, ok := t.s.users[userID]
	if !ok {
		return nil, apperr.ErrProgressNotFound
	}
	return &p, nil
}

func (t *memTx) UpsertUserProgress(_ context.Context, p *progress.UserProgress) error {
	if err := t.fail("UpsertUserProgress"); err != nil {
		return err
	}
	cur, exists := t.s.users[p.UserID]
	switch {
	case p.Version == 0 && exists:
		return apperr.Conflict("insert user progress", nil)
	case p.Version != 0 && (!exists || cur.Version != p.Version):
		return apperr.Conflict("update user progress", nil)
	}
	p.Version++
	t.s.users[p.UserID] = *p
	return nil
}

func (t *memTx) GetChallengeProgress(_ context.Context, userID string, challengeID int64) (*progress.ChallengeProgress, error) {
	if err := t.fail("GetChallengeProgress"); err != nil {
		return nil, err
	}
	r, ok := t.s.records[pairKey{userID, challengeID}]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (t *memTx) InsertChallengeProgress(_ context.Context, rec *progress.ChallengeProgress) error {
	if err := t.fail("InsertChallengeProgress"); err != nil {
		return err
	}
	k := pairKey{rec.UserID, rec.ChallengeID}
	if _, ok := t.s.records[k]; ok {
		return apperr.Conflict("insert challenge progress", nil)
	}
	t.s.nextID++
	rec.ID = t.s.nextID
	t.s.records[k] = *rec
	return nil
}

func (t *memTx) UpdateChallengeProgress(_ context.Context, id int64, completed bool) error {
	if err := t.fail("UpdateChallengeProgress"); err != nil {
		return err
	}
	for k, r := range t.s.records {
		if r.ID == id {
			r.Completed = completed
			t.s.records[k] = r
			return nil
		}
	}
	return fmt.Errorf("challenge progress %d: not found", id)
}

func (t *memTx) AppendAttempt(_ context.Context, rec *progress.AttemptRecord) error {
	if err := t.fail("AppendAttempt"); err != nil {
		return err
	}
	t.s.seq++
	rec.Sequence = t.s.seq
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	t.s.attempts = append(t.s.attempts, *rec)
	return nil
}
