package cmd

import (
	"context"
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/abhisek/lingo/internal/app"
	"github.com/abhisek/lingo/internal/curriculum"
	"github.com/abhisek/lingo/internal/ui/theme"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import a course from a JSON file, or the built-in sample course",
	Long: "Import a course tree. Existing rows are updated in place and rows " +
		"missing from the file are removed, so learner progress on unchanged " +
		"challenges is kept.",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")

		course := curriculum.Sample()
		if file != "" {
			c, err := curriculum.LoadFile(file)
			if err != nil {
				return err
			}
			course = c
		}

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := a.Curriculum.ImportCourse(ctx, course); err != nil {
				return fmt.Errorf("import course %d: %w", course.ID, err)
			}

			var lessons, challenges int
			for _, u := range course.Units {
				lessons += len(u.Lessons)
				for _, l := range u.Lessons {
					challenges += len(l.Challenges)
				}
			}
			lipgloss.Fprintln(cmd.OutOrStdout(), theme.Done.Render(fmt.Sprintf(
				"Imported %q: %d units, %d lessons, %d challenges",
				course.Title, len(course.Units), lessons, challenges)))
			return nil
		})
	},
}

func init() {
	seedCmd.Flags().String("file", "", "Course JSON file (default: built-in sample course)")
}
