package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/abhisek/lingo/internal/attempt"
	"github.com/abhisek/lingo/internal/config"
	"github.com/abhisek/lingo/internal/progress"
	"github.com/abhisek/lingo/internal/selection"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Log:      config.Log{Level: "debug", Format: "console"},
		Database: config.Database{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "data", "lingo.db")},
		Attempt: config.Attempt{
			Timeout: 5 * time.Second,
			Retry:   config.Retry{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond, Multiplier: 2},
		},
	}
}

func TestNewSeedAndResolve(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(t), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer a.Close()

	seeded, err := a.SeedIfEmpty(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)
	seeded, err = a.SeedIfEmpty(ctx)
	require.NoError(t, err)
	assert.False(t, seeded, "second call finds the course")

	assert.Nil(t, a.Redis)
	require.NoError(t, a.Selection.SelectActiveCourse(ctx, "u1", 1, selection.Profile{}))
	out, err := a.Resolver.Resolve(ctx, "u1", 1, true)
	require.NoError(t, err)
	assert.Equal(t, attempt.FirstCompleted, out.Kind)

	view, err := a.Dashboard.Learn(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 10, view.Points)
}

func TestSubscriberExemptPolicyIsWired(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Hearts.SubscriberExempt = true
	a, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.SeedIfEmpty(ctx)
	require.NoError(t, err)
	require.NoError(t, a.Selection.SelectActiveCourse(ctx, "u1", 1, selection.Profile{}))
	require.NoError(t, a.Subscriptions.UpsertSubscription(ctx, &progress.Subscription{
		UserID: "u1", StripeCustomerID: "cus", StripeSubscriptionID: "sub",
		StripePriceID: "price", StripeCurrentPeriodEnd: time.Now().Add(24 * time.Hour),
	}))

	out, err := a.Resolver.Resolve(ctx, "u1", 1, false)
	require.NoError(t, err)
	assert.Equal(t, 5, out.HeartsAfter, "subscribers keep their hearts")
}

func TestUnreachableRedisIsTolerated(t *testing.T) {
	cfg := testConfig(t)
	cfg.Redis = config.Redis{Addr: "127.0.0.1:1", TTL: time.Minute, Prefix: "lingo", Channel: "c"}
	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()
	assert.Nil(t, a.Redis)
	assert.Nil(t, a.Events)
}
