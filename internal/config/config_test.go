package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lingo/internal/apperr"
)

// isolate runs the test in an empty directory with no config search path.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, int32(10), cfg.Database.MaxConns)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "lingo.progress", cfg.Redis.Channel)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, 5*time.Second, cfg.Attempt.Timeout)
	assert.Equal(t, 3, cfg.Attempt.Retry.MaxAttempts)
	assert.Equal(t, 20*time.Millisecond, cfg.Attempt.Retry.InitialWait)
	assert.Equal(t, 250*time.Millisecond, cfg.Attempt.Retry.MaxWait)
	assert.InDelta(t, 2.0, cfg.Attempt.Retry.Multiplier, 1e-9)
	assert.False(t, cfg.Hearts.SubscriberExempt)
	assert.Equal(t, "User", cfg.User.Name)
	assert.Equal(t, "/mascot.svg", cfg.User.ImageSrc)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
redis:
  addr: localhost:6379
  ttl: 1m
hearts:
  subscriber_exempt: true
user:
  id: from-file
`), 0o644))
	t.Setenv("LINGO_ATTEMPT_TIMEOUT", "2s")
	t.Setenv("LINGO_USER_ID", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, time.Minute, cfg.Redis.TTL)
	assert.True(t, cfg.Hearts.SubscriberExempt)
	assert.Equal(t, 2*time.Second, cfg.Attempt.Timeout)
	assert.Equal(t, "from-env", cfg.User.ID)
}

func TestLoadSearchPathAndDotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lingo.yaml"), []byte("log:\n  format: json\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LINGO_DB=/tmp/from-dotenv.db\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("LINGO_DB") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/tmp/from-dotenv.db", cfg.Database.Path)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Log:      Log{Level: "info", Format: "console"},
			Database: Database{Driver: DriverSQLite},
			Attempt:  Attempt{Timeout: time.Second, Retry: Retry{MaxAttempts: 1}},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"postgres with url", func(c *Config) { c.Database = Database{Driver: DriverPostgres, URL: "postgres://x"} }, true},
		{"postgres without url", func(c *Config) { c.Database.Driver = DriverPostgres }, false},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, false},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, false},
		{"zero timeout", func(c *Config) { c.Attempt.Timeout = 0 }, false},
		{"no attempts", func(c *Config) { c.Attempt.Retry.MaxAttempts = 0 }, false},
		{"redis without ttl", func(c *Config) { c.Redis.Addr = "localhost:6379" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, apperr.ErrValidation)
			}
		})
	}
}
