package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis publishes events as JSON on a pub/sub channel so other processes
// can drop their cached views.
type Redis struct {
	rdb     redis.UniversalClient
	channel string
	log     *zap.Logger
}

// NewRedis returns a publisher on channel.
func NewRedis(rdb redis.UniversalClient, channel string, log *zap.Logger) *Redis {
	if log == nil {
		log = zap.NewNop()
	}
	return &Redis{rdb: rdb, channel: channel, log: log.Named("notify.redis")}
}

func (r *Redis) Notify(ctx context.Context, ev Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := r.rdb.Publish(ctx, r.channel, raw).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", r.channel, err)
	}
	return nil
}

// Subscribe delivers events from the channel to fn until ctx is done. It
// returns once the subscription is confirmed.
func (r *Redis) Subscribe(ctx context.Context, fn func(Event)) error {
	sub := r.rdb.Subscribe(ctx, r.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					r.log.Warn("bad event payload", zap.Error(err))
					continue
				}
				fn(ev)
			}
		}
	}()
	return nil
}
