package viewcache

import (
	"context"
	"testing"
	"time"

	"github.com/abhisek/lingo/internal/notify"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	c := New(nil, "lingo", time.Minute, nil)
	assert.Equal(t, "lingo:learn:u1", c.LearnKey("u1"))
	assert.Equal(t, "lingo:lesson:u1:7", c.LessonKey("u1", 7))
	assert.Equal(t, "lingo:lesson:u1:resume", c.LessonKey("u1", 0))
	assert.Equal(t, "lingo:leaderboard:10", c.LeaderboardKey(10))
}

// openTestRedis starts an in-process redis server.
func openTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, Ping(context.Background(), rdb))
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestCacheRoundTripAndInvalidate(t *testing.T) {
	rdb := openTestRedis(t)
	ctx := context.Background()
	c := New(rdb, "lingotest-"+uuid.NewString(), time.Minute, nil)

	type view struct {
		Hearts int `json:"hearts"`
	}

	var got view
	hit, err := c.Get(ctx, c.LearnKey("u1"), &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, c.LearnKey("u1"), view{Hearts: 3}))
	require.NoError(t, c.Set(ctx, c.LessonKey("u1", 4), view{Hearts: 3}))
	require.NoError(t, c.Set(ctx, c.LessonKey("u2", 4), view{Hearts: 1}))

	hit, err = c.Get(ctx, c.LearnKey("u1"), &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 3, got.Hearts)

	require.NoError(t, c.Notify(ctx, notify.Event{UserID: "u1", LessonID: 4}))

	hit, err = c.Get(ctx, c.LessonKey("u1", 4), &got)
	require.NoError(t, err)
	assert.False(t, hit)
	hit, err = c.Get(ctx, c.LessonKey("u2", 4), &got)
	require.NoError(t, err)
	assert.True(t, hit, "other users keep their views")
}

func TestNotifyDropsAllViewsOfTheUser(t *testing.T) {
	rdb := openTestRedis(t)
	ctx := context.Background()
	c := New(rdb, "lingo", time.Minute, nil)

	type view struct {
		Points int `json:"points"`
	}
	stale := []string{
		c.LearnKey("u1"),
		c.LessonKey("u1", 0),
		c.LessonKey("u1", 1),
		c.LessonKey("u1", 3),
		c.LeaderboardKey(7),
		c.LeaderboardKey(10),
	}
	kept := []string{
		c.LearnKey("u10"),
		c.LessonKey("u10", 1),
		c.LessonKey("u*", 1),
	}
	for _, key := range append(stale, kept...) {
		require.NoError(t, c.Set(ctx, key, view{Points: 10}))
	}

	require.NoError(t, c.Notify(ctx, notify.Event{UserID: "u1", LessonID: 2}))

	var got view
	for _, key := range stale {
		hit, err := c.Get(ctx, key, &got)
		require.NoError(t, err)
		assert.False(t, hit, key)
	}
	for _, key := range kept {
		hit, err := c.Get(ctx, key, &got)
		require.NoError(t, err)
		assert.True(t, hit, key)
	}

	require.NoError(t, c.Notify(ctx, notify.Event{UserID: "u*"}))
	hit, err := c.Get(ctx, c.LessonKey("u10", 1), &got)
	require.NoError(t, err)
	assert.True(t, hit, "glob characters in user ids match literally")
}

func TestPublishSubscribe(t *testing.T) {
	rdb := openTestRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub := notify.NewRedis(rdb, "lingotest-"+uuid.NewString(), nil)
	got := make(chan notify.Event, 1)
	require.NoError(t, pub.Subscribe(ctx, func(ev notify.Event) { got <- ev }))

	require.NoError(t, pub.Notify(ctx, notify.Event{UserID: "u1", LessonID: 2, Reason: notify.ReasonAttempt}))

	select {
	case ev := <-got:
		assert.Equal(t, "u1", ev.UserID)
		assert.Equal(t, int64(2), ev.LessonID)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}
