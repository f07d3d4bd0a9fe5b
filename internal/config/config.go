// Package config loads settings from an optional YAML file, a .env file and
// LINGO_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/lingo/internal/apperr"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Log      Log      `mapstructure:"log"`
	Database Database `mapstructure:"database"`
	Redis    Redis    `mapstructure:"redis"`
	Attempt  Attempt  `mapstructure:"attempt"`
	Hearts   Hearts   `mapstructure:"hearts"`
	User     User     `mapstructure:"user"`
}

type Log struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // console or json
}

// Database selects and configures the storage backend.
type Database struct {
	Driver          string        `mapstructure:"driver"`            // sqlite or postgres
	Path            string        `mapstructure:"path"`              // sqlite file, empty for the XDG data path
	URL             string        `mapstructure:"url"`               // postgres connection string
	MaxConns        int32         `mapstructure:"max_conns"`         // postgres pool size
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // postgres connection lifetime
}

// Redis configures the view cache and the invalidation channel. An empty
// address disables both.
type Redis struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Channel  string        `mapstructure:"channel"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Enabled reports whether a redis address is configured.
func (r Redis) Enabled() bool { return r.Addr != "" }

type Attempt struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Retry   Retry         `mapstructure:"retry"`
}

type Retry struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier"`
}

type Hearts struct {
	// SubscriberExempt spares learners with an active subscription from
	// losing hearts.
	SubscriberExempt bool `mapstructure:"subscriber_exempt"`
}

// User is the local identity used when none is given on the command line.
type User struct {
	ID       string `mapstructure:"id"`
	Name     string `mapstructure:"name"`
	ImageSrc string `mapstructure:"image"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.max_conn_lifetime", "30m")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "lingo.progress")
	v.SetDefault("redis.prefix", "lingo")
	v.SetDefault("redis.ttl", "5m")

	v.SetDefault("attempt.timeout", "5s")
	v.SetDefault("attempt.retry.max_attempts", 3)
	v.SetDefault("attempt.retry.initial_wait", "20ms")
	v.SetDefault("attempt.retry.max_wait", "250ms")
	v.SetDefault("attempt.retry.multiplier", 2.0)

	v.SetDefault("hearts.subscriber_exempt", false)

	v.SetDefault("user.id", "")
	v.SetDefault("user.name", "User")
	v.SetDefault("user.image", "/mascot.svg")
}

// Load reads configuration. path names an explicit YAML file; when empty,
// lingo.yaml is looked up in the working directory and in
// $XDG_CONFIG_HOME/lingo. A missing lookup file is not an error, a missing
// explicit file is.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("lingo")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir := configDir(); dir != "" {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix("LINGO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Short aliases kept from earlier releases.
	_ = v.BindEnv("database.path", "LINGO_DATABASE_PATH", "LINGO_DB")
	_ = v.BindEnv("database.url", "LINGO_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("user.id", "LINGO_USER_ID")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var problems []string
	switch c.Database.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Database.URL == "" {
			problems = append(problems, "database.url is required for the postgres driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("database.driver %q: want sqlite or postgres", c.Database.Driver))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q: want console or json", c.Log.Format))
	}
	if c.Attempt.Timeout <= 0 {
		problems = append(problems, "attempt.timeout must be positive")
	}
	if c.Attempt.Retry.MaxAttempts < 1 {
		problems = append(problems, "attempt.retry.max_attempts must be at least 1")
	}
	if c.Redis.Enabled() && c.Redis.TTL <= 0 {
		problems = append(problems, "redis.ttl must be positive")
	}
	if len(problems) > 0 {
		return apperr.Validation("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func configDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "lingo")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "lingo")
}
