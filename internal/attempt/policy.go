package attempt

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/lingo/internal/progress"
)

// HeartPolicy decides whether a user is exempt from heart loss and from
// the zero-hearts gate on first attempts.
type HeartPolicy interface {
	Exempt(ctx context.Context, userID string) (bool, error)
}

// StandardPolicy exempts nobody.
type StandardPolicy struct{}

func (StandardPolicy) Exempt(context.Context, string) (bool, error) { return false, nil }

// SubscriptionReader is the part of the subscription store the policy needs.
type SubscriptionReader interface {
	GetSubscription(ctx context.Context, userID string) (*progress.Subscription, error)
}

// SubscriberPolicy exempts users with an active subscription.
type SubscriberPolicy struct {
	subs SubscriptionReader
	now  func() time.Time
}

// NewSubscriberPolicy returns a policy reading subscriptions from subs.
func NewSubscriberPolicy(subs SubscriptionReader) *SubscriberPolicy {
	return &SubscriberPolicy{subs: subs, now: time.Now}
}

func (p *SubscriberPolicy) Exempt(ctx context.Context, userID string) (bool, error) {
	sub, err := p.subs.GetSubscription(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("get subscription: %w", err)
	}
	return sub.IsActive(p.now()), nil
}
