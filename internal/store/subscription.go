package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/lingo/internal/progress"
)

// SubscriptionRepo implements progress.SubscriptionRepository.
type SubscriptionRepo struct {
	drv *entsql.Driver
}

var _ progress.SubscriptionRepository = (*SubscriptionRepo)(nil)

func (r *SubscriptionRepo) GetSubscription(ctx context.Context, userID string) (*progress.Subscription, error) {
	var s *progress.Subscription
	err := query(ctx, r.drv, "get subscription",
		builder.Select("user_id", "stripe_customer_id", "stripe_subscription_id", "stripe_price_id", "stripe_current_period_end").
			From(builder.Table(UserSubscriptionsTable.Name)).
			Where(entsql.EQ("user_id", userID)),
		func(rows *entsql.Rows) error {
			s = &progress.Subscription{}
			if err := rows.Scan(&s.UserID, &s.StripeCustomerID, &s.StripeSubscriptionID, &s.StripePriceID, &s.StripeCurrentPeriodEnd); err != nil {
				return err
			}
			s.StripeCurrentPeriodEnd = s.StripeCurrentPeriodEnd.UTC()
			return nil
		},
	)
	return s, err
}

func (r *SubscriptionRepo) UpsertSubscription(ctx context.Context, s *progress.Subscription) error {
	_, err := exec(ctx, r.drv, "upsert subscription",
		builder.Insert(UserSubscriptionsTable.Name).
			Columns("user_id", "stripe_customer_id", "stripe_subscription_id", "stripe_price_id", "stripe_current_period_end").
			Values(s.UserID, s.StripeCustomerID, s.StripeSubscriptionID, s.StripePriceID, s.StripeCurrentPeriodEnd.UTC()).
			OnConflict(entsql.ConflictColumns("user_id"), entsql.ResolveWithNewValues()),
	)
	return err
}

func (r *SubscriptionRepo) RenewSubscription(ctx context.Context, subscriptionID, priceID string, periodEnd time.Time) error {
	res, err := exec(ctx, r.drv, "renew subscription",
		builder.Update(UserSubscriptionsTable.Name).
			Set("stripe_price_id", priceID).
			Set("stripe_current_period_end", periodEnd.UTC()).
			Where(entsql.EQ("stripe_subscription_id", subscriptionID)),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("renew subscription: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("renew subscription %q: no such subscription", subscriptionID)
	}
	return nil
}
