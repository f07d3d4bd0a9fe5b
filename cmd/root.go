package cmd

import (
	"context"
	"fmt"

	"github.com/abhisek/lingo/internal/app"
	"github.com/abhisek/lingo/internal/config"
	"github.com/abhisek/lingo/internal/identity"
	"github.com/abhisek/lingo/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "lingo",
	Short: "Gamified language lessons in the terminal",
	Long:  "Lingo tracks hearts, points and course progress for bite-sized language lessons.",

	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLearn(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides LINGO_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ./lingo.yaml)")
	rootCmd.PersistentFlags().String("user", "", "User id (overrides LINGO_USER_ID env var)")

	rootCmd.AddCommand(coursesCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(learnCmd)
	rootCmd.AddCommand(lessonCmd)
	rootCmd.AddCommand(attemptCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(subscriptionCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads configuration and applies the --db flag, which always
// selects the SQLite backend.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Database.Driver = config.DriverSQLite
		cfg.Database.Path = p
	}
	return cfg, nil
}

// withApp opens the configured backend, seeds it when empty and runs fn.
// The user id from --user, LINGO_USER_ID or user.id is attached to the
// context when one is set.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("close app", zap.Error(err))
		}
	}()

	if _, err := a.SeedIfEmpty(ctx); err != nil {
		return err
	}

	flagUser, _ := cmd.Flags().GetString("user")
	if user, err := identity.Resolve(flagUser, cfg.User.ID); err == nil {
		ctx = identity.WithUser(ctx, user)
	}
	return fn(ctx, a)
}
