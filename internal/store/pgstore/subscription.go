package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/abhisek/lingo/internal/progress"
)

// SubscriptionRepo implements progress.SubscriptionRepository.
type SubscriptionRepo struct {
	db dbtx
}

var _ progress.SubscriptionRepository = (*SubscriptionRepo)(nil)

func (r *SubscriptionRepo) GetSubscription(ctx context.Context, userID string) (*progress.Subscription, error) {
	var s progress.Subscription
	err := r.db.QueryRow(ctx, `
		SELECT user_id, stripe_customer_id, stripe_subscription_id, stripe_price_id, stripe_current_period_end
		FROM user_subscriptions
		WHERE user_id = $1`, userID).
		Scan(&s.UserID, &s.StripeCustomerID, &s.StripeSubscriptionID, &s.StripePriceID, &s.StripeCurrentPeriodEnd)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get subscription", err)
	}
	s.StripeCurrentPeriodEnd = s.StripeCurrentPeriodEnd.UTC()
	return &s, nil
}

func (r *SubscriptionRepo) UpsertSubscription(ctx context.Context, s *progress.Subscription) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_subscriptions (user_id, stripe_customer_id, stripe_subscription_id, stripe_price_id, stripe_current_period_end)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			stripe_customer_id = excluded.stripe_customer_id,
			stripe_subscription_id = excluded.stripe_subscription_id,
			stripe_price_id = excluded.stripe_price_id,
			stripe_current_period_end = excluded.stripe_current_period_end`,
		s.UserID, s.StripeCustomerID, s.StripeSubscriptionID, s.StripePriceID, s.StripeCurrentPeriodEnd)
	return mapError("upsert subscription", err)
}

func (r *SubscriptionRepo) RenewSubscription(ctx context.Context, subscriptionID, priceID string, periodEnd time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE user_subscriptions
		SET stripe_price_id = $2, stripe_current_period_end = $3
		WHERE stripe_subscription_id = $1`, subscriptionID, priceID, periodEnd)
	if err != nil {
		return mapError("renew subscription", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("renew subscription %q: no such subscription", subscriptionID)
	}
	return nil
}
