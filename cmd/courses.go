package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"charm.land/lipgloss/v2"
	"github.com/abhisek/lingo/internal/app"
	"github.com/abhisek/lingo/internal/apperr"
	"github.com/abhisek/lingo/internal/identity"
	"github.com/abhisek/lingo/internal/selection"
	"github.com/abhisek/lingo/internal/ui/theme"
	"github.com/spf13/cobra"
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List available courses",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			courses, err := a.Curriculum.ListCourses(ctx)
			if err != nil {
				return fmt.Errorf("list courses: %w", err)
			}

			var active int64
			if user, err := identity.FromContext(ctx); err == nil {
				up, err := a.Progress.GetUserProgress(ctx, user)
				switch {
				case err == nil:
					active = up.ActiveCourseID
				case !errors.Is(err, apperr.ErrProgressNotFound):
					return fmt.Errorf("get user progress: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			if len(courses) == 0 {
				lipgloss.Fprintln(out, theme.Hint.Render("No courses found. Run `lingo seed` to import one."))
				return nil
			}

			lipgloss.Fprintln(out, theme.TableHeader.Render(fmt.Sprintf("%-5s  %s", "ID", "Course")))
			for _, c := range courses {
				line := fmt.Sprintf("%-5d  %s", c.ID, c.Title)
				if c.ID == active {
					lipgloss.Fprintln(out, theme.Current.Render(line+"  (active)"))
					continue
				}
				lipgloss.Fprintln(out, theme.Body.Render(line))
			}
			return nil
		})
	},
}

var selectCmd = &cobra.Command{
	Use:   "select <course-id>",
	Short: "Make a course the active course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		courseID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid course id %q: %w", args[0], err)
		}

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			user, err := identity.FromContext(ctx)
			if err != nil {
				return err
			}
			profile := selection.Profile{Name: a.Config.User.Name, ImageSrc: a.Config.User.ImageSrc}
			if err := a.Selection.SelectActiveCourse(ctx, user, courseID, profile); err != nil {
				return err
			}
			course, err := a.Curriculum.GetCourse(ctx, courseID)
			if err != nil {
				return fmt.Errorf("get course %d: %w", courseID, err)
			}
			lipgloss.Fprintln(cmd.OutOrStdout(), theme.Title.Render("Active course: "+course.Title))
			return nil
		})
	},
}
