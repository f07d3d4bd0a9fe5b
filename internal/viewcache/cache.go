// Package viewcache stores derived progress views in redis so repeated
// reads skip the snapshot build. Entries are dropped by notify events.
package viewcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/lingo/internal/notify"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache is a redis-backed JSON cache of views.
type Cache struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
	log    *zap.Logger
}

// New returns a cache writing keys under prefix with the given TTL.
func New(rdb redis.UniversalClient, prefix string, ttl time.Duration, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{rdb: rdb, prefix: prefix, ttl: ttl, log: log.Named("viewcache")}
}

// LearnKey is the key of a user's learn view.
func (c *Cache) LearnKey(userID string) string {
	return c.prefix + ":learn:" + userID
}

// LessonKey is the key of a user's view of one lesson. lessonID 0 names
// the resume lesson.
func (c *Cache) LessonKey(userID string, lessonID int64) string {
	if lessonID == 0 {
		return c.prefix + ":lesson:" + userID + ":resume"
	}
	return c.prefix + ":lesson:" + userID + ":" + strconv.FormatInt(lessonID, 10)
}

// LeaderboardKey is the key of the leaderboard of the given size.
func (c *Cache) LeaderboardKey(limit int) string {
	return c.prefix + ":leaderboard:" + strconv.Itoa(limit)
}

// Get decodes the cached value at key into dst. A miss returns false.
func (c *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// A stale schema is a miss.
		c.log.Debug("dropping undecodable entry", zap.String("key", key), zap.Error(err))
		_ = c.rdb.Del(ctx, key).Err()
		return false, nil
	}
	return true, nil
}

// Set stores v at key.
func (c *Cache) Set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Notify drops every view the event makes stale: the user's learn view,
// every lesson view of the user and leaderboards of any size.
func (c *Cache) Notify(ctx context.Context, ev notify.Event) error {
	keys := []string{c.LearnKey(ev.UserID)}
	patterns := []string{
		escapeGlob(c.prefix) + ":lesson:" + escapeGlob(ev.UserID) + ":*",
		escapeGlob(c.prefix) + ":leaderboard:*",
	}
	for _, pattern := range patterns {
		matched, err := c.scan(ctx, pattern)
		if err != nil {
			return err
		}
		keys = append(keys, matched...)
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

// scan returns the keys matching pattern.
func (c *Cache) scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("cache scan %s: %w", pattern, err)
	}
	return keys, nil
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// escapeGlob quotes the MATCH metacharacters in s.
func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}

// Ping checks the connection with a short timeout.
func Ping(ctx context.Context, rdb redis.UniversalClient) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
