package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"charm.land/lipgloss/v2"
	"github.com/abhisek/lingo/internal/app"
	"github.com/abhisek/lingo/internal/attempt"
	"github.com/abhisek/lingo/internal/identity"
	"github.com/abhisek/lingo/internal/progress"
	"github.com/abhisek/lingo/internal/ui/components"
	"github.com/abhisek/lingo/internal/ui/theme"
	"github.com/spf13/cobra"
)

var attemptCmd = &cobra.Command{
	Use:   "attempt <challenge-id>",
	Short: "Answer a challenge",
	Long: "Answer a challenge by picking an option, or report the result directly " +
		"with --correct or --wrong.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		challengeID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid challenge id %q: %w", args[0], err)
		}
		optionID, _ := cmd.Flags().GetInt64("option")
		correct, _ := cmd.Flags().GetBool("correct")

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			user, err := identity.FromContext(ctx)
			if err != nil {
				return err
			}

			var out *attempt.Outcome
			if cmd.Flags().Changed("option") {
				out, err = a.Resolver.ResolveOption(ctx, user, challengeID, optionID)
			} else {
				out, err = a.Resolver.Resolve(ctx, user, challengeID, correct)
			}
			if err != nil {
				return err
			}
			printOutcome(cmd.OutOrStdout(), out)
			return nil
		})
	},
}

func init() {
	attemptCmd.Flags().Int64("option", 0, "Option id picked as the answer")
	attemptCmd.Flags().Bool("correct", false, "Record a correct answer")
	attemptCmd.Flags().Bool("wrong", false, "Record a wrong answer")
	attemptCmd.MarkFlagsMutuallyExclusive("option", "correct", "wrong")
	attemptCmd.MarkFlagsOneRequired("option", "correct", "wrong")
}

func printOutcome(w io.Writer, o *attempt.Outcome) {
	switch {
	case o.Blocked():
		lipgloss.Fprintln(w, theme.Incorrect.Render("Out of hearts."))
		lipgloss.Fprintln(w, theme.Hint.Render("Practice a completed lesson to earn hearts back."))
	case o.Correct():
		msg := fmt.Sprintf("Correct! +%d XP", progress.PointsPerChallenge)
		if o.Kind == attempt.PracticeCompleted {
			msg += " (practice)"
		}
		lipgloss.Fprintln(w, theme.Correct.Render(msg))
	case o.Kind == attempt.Missed && o.Mutated():
		lipgloss.Fprintln(w, theme.Incorrect.Render("Wrong answer. You lost a heart."))
	case o.Kind == attempt.Missed:
		lipgloss.Fprintln(w, theme.Incorrect.Render("Wrong answer. Your subscription kept your hearts."))
	default:
		lipgloss.Fprintln(w, theme.Incorrect.Render("Wrong answer. Practice mistakes cost nothing."))
	}
	lipgloss.Fprintln(w, components.Status(o.HeartsRemaining(), o.PointsAfter))
}
