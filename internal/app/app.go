// Package app wires configuration, storage and services into one value the
// CLI commands share.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/abhisek/lingo/internal/attempt"
	"github.com/abhisek/lingo/internal/config"
	"github.com/abhisek/lingo/internal/curriculum"
	"github.com/abhisek/lingo/internal/dashboard"
	"github.com/abhisek/lingo/internal/notify"
	"github.com/abhisek/lingo/internal/progress"
	"github.com/abhisek/lingo/internal/retry"
	"github.com/abhisek/lingo/internal/selection"
	"github.com/abhisek/lingo/internal/store"
	"github.com/abhisek/lingo/internal/store/pgstore"
	"github.com/abhisek/lingo/internal/viewcache"
)

// CurriculumStore reads and imports courses.
type CurriculumStore interface {
	curriculum.Store
	curriculum.Importer
}

// App holds the wired services.
type App struct {
	Config *config.Config
	Log    *zap.Logger

	Curriculum    CurriculumStore
	Progress      progress.Repository
	Subscriptions progress.SubscriptionRepository

	Resolver  *attempt.Resolver
	Selection *selection.Service
	Dashboard *dashboard.Service

	// Redis is nil when no redis address is configured or it was unreachable.
	Redis *redis.Client
	// Events publishes and receives invalidation events; nil without redis.
	Events *notify.Redis

	closers []func() error
}

// New opens the configured backend and builds the services.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{Config: cfg, Log: log}

	if err := a.openStore(ctx); err != nil {
		return nil, err
	}

	notifiers := notify.Multi{notify.NewLog(log)}
	var cache dashboard.Cache
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := viewcache.Ping(ctx, rdb); err != nil {
			log.Warn("redis unavailable, running without view cache", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = rdb.Close()
		} else {
			a.Redis = rdb
			a.closers = append(a.closers, rdb.Close)
			vc := viewcache.New(rdb, cfg.Redis.Prefix, cfg.Redis.TTL, log)
			a.Events = notify.NewRedis(rdb, cfg.Redis.Channel, log)
			cache = vc
			notifiers = append(notifiers, vc, a.Events)
		}
	}

	opts := []attempt.Option{
		attempt.WithLogger(log),
		attempt.WithNotifier(notifiers),
		attempt.WithConfig(attempt.Config{
			Timeout: cfg.Attempt.Timeout,
			Retry: retry.Config{
				MaxAttempts: cfg.Attempt.Retry.MaxAttempts,
				InitialWait: cfg.Attempt.Retry.InitialWait,
				MaxWait:     cfg.Attempt.Retry.MaxWait,
				Multiplier:  cfg.Attempt.Retry.Multiplier,
			},
		}),
	}
	if cfg.Hearts.SubscriberExempt {
		opts = append(opts, attempt.WithPolicy(attempt.NewSubscriberPolicy(a.Subscriptions)))
	}

	a.Resolver = attempt.NewResolver(a.Curriculum, a.Progress, opts...)
	a.Selection = selection.NewService(a.Curriculum, a.Progress, notifiers, log)
	a.Dashboard = dashboard.NewService(a.Curriculum, a.Progress, cache, log)
	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	db := a.Config.Database
	switch db.Driver {
	case config.DriverPostgres:
		s, err := pgstore.Open(ctx, db.URL, pgstore.PoolConfig{
			MaxConns:        db.MaxConns,
			MaxConnLifetime: db.MaxConnLifetime,
		})
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		a.Curriculum, a.Progress, a.Subscriptions = s.CurriculumRepo(), s.ProgressRepo(), s.SubscriptionRepo()
		a.closers = append(a.closers, s.Close)
		a.Log.Debug("opened postgres store")

	default:
		path := db.Path
		if path == "" {
			var err error
			if path, err = store.DefaultDBPath(); err != nil {
				return fmt.Errorf("resolve database path: %w", err)
			}
		} else if err := store.EnsureDir(path); err != nil {
			return fmt.Errorf("create database directory: %w", err)
		}
		s, err := store.Open(ctx, path)
		if err != nil {
			return fmt.Errorf("open sqlite %s: %w", path, err)
		}
		a.Curriculum, a.Progress, a.Subscriptions = s.CurriculumRepo(), s.ProgressRepo(), s.SubscriptionRepo()
		a.closers = append(a.closers, s.Close)
		a.Log.Debug("opened sqlite store", zap.String("path", path))
	}
	return nil
}

// SeedIfEmpty imports the built-in sample course into an empty database.
func (a *App) SeedIfEmpty(ctx context.Context) (bool, error) {
	courses, err := a.Curriculum.ListCourses(ctx)
	if err != nil {
		return false, err
	}
	if len(courses) > 0 {
		return false, nil
	}
	if err := a.Curriculum.ImportCourse(ctx, curriculum.Sample()); err != nil {
		return false, fmt.Errorf("seed sample course: %w", err)
	}
	a.Log.Info("seeded sample course")
	return true, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
