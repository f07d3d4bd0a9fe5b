package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"charm.land/lipgloss/v2"
	"github.com/abhisek/lingo/internal/app"
	"github.com/abhisek/lingo/internal/notify"
	"github.com/abhisek/lingo/internal/ui/theme"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print progress events as other sessions publish them",
	Long:  "Subscribe to the redis events channel and print every progress change. Requires redis.addr.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if a.Events == nil {
				return errors.New("watch needs a reachable redis, set redis.addr or LINGO_REDIS_ADDR")
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			err := a.Events.Subscribe(ctx, func(ev notify.Event) {
				line := fmt.Sprintf("%s  %-14s  user=%s", ev.Timestamp.Local().Format("15:04:05"), ev.Reason, ev.UserID)
				if ev.LessonID != 0 {
					line += fmt.Sprintf(" lesson=%d", ev.LessonID)
				}
				if ev.CourseID != 0 {
					line += fmt.Sprintf(" course=%d", ev.CourseID)
				}
				lipgloss.Fprintln(out, theme.Body.Render(line))
			})
			if err != nil {
				return err
			}

			lipgloss.Fprintln(out, theme.Hint.Render("Watching "+a.Config.Redis.Channel+", Ctrl+C to stop."))
			<-ctx.Done()
			return nil
		})
	},
}
