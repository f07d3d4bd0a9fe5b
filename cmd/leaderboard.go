package cmd

import (
	"context"
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/abhisek/lingo/internal/app"
	"github.com/abhisek/lingo/internal/dashboard"
	"github.com/abhisek/lingo/internal/identity"
	"github.com/abhisek/lingo/internal/ui/theme"
	"github.com/spf13/cobra"
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the top learners by points",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			rows, err := a.Dashboard.Leaderboard(ctx, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				lipgloss.Fprintln(out, theme.Hint.Render("No learners yet."))
				return nil
			}

			me, _ := identity.FromContext(ctx)
			lipgloss.Fprintln(out, theme.TableHeader.Render(fmt.Sprintf("%-4s  %-24s  %-20s  %6s", "#", "User", "Name", "XP")))
			lipgloss.Fprintln(out, theme.Pending.Render(strings.Repeat("─", 62)))
			for _, r := range rows {
				line := fmt.Sprintf("%-4d  %-24s  %-20s  %6d", r.Rank, truncate(r.UserID, 24), truncate(r.UserName, 20), r.Points)
				if r.UserID == me {
					lipgloss.Fprintln(out, theme.Current.Render(line))
					continue
				}
				lipgloss.Fprintln(out, theme.Body.Render(line))
			}
			return nil
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			user, err := identity.FromContext(ctx)
			if err != nil {
				return err
			}
			records, err := a.Progress.ListAttempts(ctx, user, limit)
			if err != nil {
				return fmt.Errorf("list attempts: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				lipgloss.Fprintln(out, theme.Hint.Render("No attempts recorded."))
				return nil
			}

			lipgloss.Fprintln(out, theme.TableHeader.Render(fmt.Sprintf("%-6s  %-19s  %-9s  %-20s  %-6s  %s",
				"Seq", "Timestamp", "Challenge", "Outcome", "Hearts", "XP")))
			lipgloss.Fprintln(out, theme.Pending.Render(strings.Repeat("─", 80)))
			for _, r := range records {
				line := fmt.Sprintf("%-6d  %-19s  %-9d  %-20s  %-6d  %d",
					r.Sequence,
					r.Timestamp.Local().Format("2006-01-02 15:04:05"),
					r.ChallengeID,
					r.Outcome,
					r.HeartsAfter,
					r.PointsAfter,
				)
				if r.Correct {
					lipgloss.Fprintln(out, theme.Done.Render(line))
					continue
				}
				lipgloss.Fprintln(out, theme.Incorrect.Render(line))
			}
			return nil
		})
	},
}

func init() {
	leaderboardCmd.Flags().Int("limit", dashboard.DefaultLeaderboardSize, "Number of learners to show")
	historyCmd.Flags().Int("limit", 20, "Maximum number of attempts to show")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
