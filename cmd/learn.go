package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/abhisek/lingo/internal/app"
	"github.com/abhisek/lingo/internal/apperr"
	"github.com/abhisek/lingo/internal/dashboard"
	"github.com/abhisek/lingo/internal/identity"
	"github.com/abhisek/lingo/internal/ui/components"
	"github.com/abhisek/lingo/internal/ui/theme"
	"github.com/spf13/cobra"
)

const progressWidth = 30

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Show the course map of the active course",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLearn(cmd)
	},
}

var lessonCmd = &cobra.Command{
	Use:   "lesson [lesson-id]",
	Short: "Show a lesson, or the next uncompleted one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var lessonID int64
		if len(args) == 1 {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid lesson id %q: %w", args[0], err)
			}
			lessonID = id
		}

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			user, err := identity.FromContext(ctx)
			if err != nil {
				return err
			}
			view, err := a.Dashboard.Lesson(ctx, user, lessonID)
			if err != nil {
				return noCourseHint(err)
			}
			printLesson(cmd.OutOrStdout(), view)
			return nil
		})
	},
}

func runLearn(cmd *cobra.Command) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		user, err := identity.FromContext(ctx)
		if err != nil {
			return err
		}
		view, err := a.Dashboard.Learn(ctx, user)
		if err != nil {
			return noCourseHint(err)
		}
		printLearn(cmd.OutOrStdout(), view)
		return nil
	})
}

// noCourseHint turns a missing progress record into an actionable message.
func noCourseHint(err error) error {
	if errors.Is(err, apperr.ErrProgressNotFound) {
		return fmt.Errorf("no active course, pick one with `lingo courses` and `lingo select <id>`: %w", err)
	}
	return err
}

func printLearn(w io.Writer, v *dashboard.LearnView) {
	lipgloss.Fprintln(w, theme.Title.Render(v.CourseTitle))
	lipgloss.Fprintln(w, components.Status(v.Hearts, v.Points))
	lipgloss.Fprintln(w, components.NewProgressBar("Course", v.Percentage, true, progressWidth).View())

	for _, u := range v.Units {
		lipgloss.Fprintln(w)
		lipgloss.Fprintln(w, theme.TableHeader.Render(fmt.Sprintf("Unit %d: %s", u.Order, u.Title)))
		if u.Description != "" {
			lipgloss.Fprintln(w, theme.Subtitle.Render(u.Description))
		}
		for _, l := range u.Lessons {
			line := fmt.Sprintf("%-5d %s", l.ID, l.Title)
			switch {
			case l.Completed:
				lipgloss.Fprintln(w, theme.Done.Render("  ✓ "+line))
			case l.Current:
				lipgloss.Fprintln(w, theme.Current.Render(fmt.Sprintf("  ▸ %s  %.0f%%", line, l.Percent)))
			default:
				lipgloss.Fprintln(w, theme.Pending.Render("  · "+line))
			}
		}
	}

	lipgloss.Fprintln(w)
	if v.Resume == nil {
		lipgloss.Fprintln(w, theme.Done.Render("Course complete. Replay any lesson to practice."))
		return
	}
	lipgloss.Fprintln(w, theme.Hint.Render(fmt.Sprintf("Continue with `lingo lesson %d`.", v.Resume.ID)))
}

func printLesson(w io.Writer, v *dashboard.LessonView) {
	title := v.Title
	if v.Practice {
		title += " (practice)"
	}
	lipgloss.Fprintln(w, theme.Title.Render(title))
	lipgloss.Fprintln(w, components.Status(v.Hearts, v.Points))
	lipgloss.Fprintln(w, components.NewProgressBar("Lesson", v.Percentage, true, progressWidth).View())

	for i, c := range v.Challenges {
		var b strings.Builder
		mark := "·"
		if c.Completed {
			mark = "✓"
		}
		fmt.Fprintf(&b, "%s #%d  %s\n", mark, c.ID, c.Title)
		for _, o := range c.Options {
			fmt.Fprintf(&b, "   [%d] %s\n", o.ID, o.Text)
		}
		card := strings.TrimRight(b.String(), "\n")

		lipgloss.Fprintln(w)
		switch {
		case i == v.ResumeIndex && !v.Practice:
			lipgloss.Fprintln(w, theme.Card.BorderForeground(theme.Accent).Render(card))
		case c.Completed:
			lipgloss.Fprintln(w, theme.Done.Render(card))
		default:
			lipgloss.Fprintln(w, theme.Body.Render(card))
		}
	}

	lipgloss.Fprintln(w)
	lipgloss.Fprintln(w, theme.Hint.Render("Answer with `lingo attempt <challenge-id> --option <option-id>`."))
}
