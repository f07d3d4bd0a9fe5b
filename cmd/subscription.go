package cmd

import (
	"context"
	"fmt"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/abhisek/lingo/internal/app"
	"github.com/abhisek/lingo/internal/apperr"
	"github.com/abhisek/lingo/internal/identity"
	"github.com/abhisek/lingo/internal/progress"
	"github.com/abhisek/lingo/internal/ui/theme"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var subscriptionCmd = &cobra.Command{
	Use:   "subscription",
	Short: "Manage the learner's subscription",
}

var subscriptionSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or replace the subscription",
	RunE: func(cmd *cobra.Command, args []string) error {
		price, _ := cmd.Flags().GetString("price")
		customer, _ := cmd.Flags().GetString("customer")
		subID, _ := cmd.Flags().GetString("subscription")
		rawEnd, _ := cmd.Flags().GetString("period-end")

		periodEnd, err := parsePeriodEnd(rawEnd)
		if err != nil {
			return err
		}

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			user, err := identity.FromContext(ctx)
			if err != nil {
				return err
			}
			if customer == "" {
				customer = "cus_" + uuid.NewString()
			}
			if subID == "" {
				subID = "sub_" + uuid.NewString()
			}
			sub := &progress.Subscription{
				UserID:                 user,
				StripeCustomerID:       customer,
				StripeSubscriptionID:   subID,
				StripePriceID:          price,
				StripeCurrentPeriodEnd: periodEnd,
			}
			if err := a.Subscriptions.UpsertSubscription(ctx, sub); err != nil {
				return fmt.Errorf("upsert subscription: %w", err)
			}
			printSubscription(cmd, sub)
			return nil
		})
	},
}

var subscriptionRenewCmd = &cobra.Command{
	Use:   "renew <subscription-id>",
	Short: "Update price and period end of an existing subscription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		price, _ := cmd.Flags().GetString("price")
		rawEnd, _ := cmd.Flags().GetString("period-end")

		periodEnd, err := parsePeriodEnd(rawEnd)
		if err != nil {
			return err
		}

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := a.Subscriptions.RenewSubscription(ctx, args[0], price, periodEnd); err != nil {
				return err
			}
			lipgloss.Fprintln(cmd.OutOrStdout(), theme.Done.Render("Renewed "+args[0]+" until "+periodEnd.Format(time.DateOnly)))
			return nil
		})
	},
}

var subscriptionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the subscription and whether it is active",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			user, err := identity.FromContext(ctx)
			if err != nil {
				return err
			}
			sub, err := a.Subscriptions.GetSubscription(ctx, user)
			if err != nil {
				return fmt.Errorf("get subscription: %w", err)
			}
			if sub == nil {
				lipgloss.Fprintln(cmd.OutOrStdout(), theme.Hint.Render("No subscription."))
				return nil
			}
			printSubscription(cmd, sub)
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{subscriptionSetCmd, subscriptionRenewCmd} {
		c.Flags().String("price", "", "Price id")
		c.Flags().String("period-end", "", "End of the paid period (RFC 3339 or YYYY-MM-DD)")
		_ = c.MarkFlagRequired("price")
		_ = c.MarkFlagRequired("period-end")
	}
	subscriptionSetCmd.Flags().String("customer", "", "Customer id (generated when empty)")
	subscriptionSetCmd.Flags().String("subscription", "", "Subscription id (generated when empty)")

	subscriptionCmd.AddCommand(subscriptionSetCmd)
	subscriptionCmd.AddCommand(subscriptionRenewCmd)
	subscriptionCmd.AddCommand(subscriptionShowCmd)
}

func parsePeriodEnd(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, apperr.Validation("period end %q: want RFC 3339 or YYYY-MM-DD", s)
	}
	return t.UTC(), nil
}

func printSubscription(cmd *cobra.Command, s *progress.Subscription) {
	out := cmd.OutOrStdout()
	status := theme.Incorrect.Render("inactive")
	if s.IsActive(time.Now()) {
		status = theme.Done.Render("active")
	}
	lipgloss.Fprintf(out, "Customer:      %s\n", s.StripeCustomerID)
	lipgloss.Fprintf(out, "Subscription:  %s\n", s.StripeSubscriptionID)
	lipgloss.Fprintf(out, "Price:         %s\n", s.StripePriceID)
	lipgloss.Fprintf(out, "Period end:    %s\n", s.StripeCurrentPeriodEnd.Local().Format("2006-01-02 15:04:05"))
	lipgloss.Fprintf(out, "Status:        %s\n", status)
}
