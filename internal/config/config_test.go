package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "Local", cfg.Timezone)
	assert.Equal(t, 6, cfg.Planner.StartHour)
	assert.Equal(t, 23, cfg.Planner.EndHour)
	assert.Equal(t, 10*time.Second, cfg.Planner.SaveTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.False(t, cfg.Cache.Enabled())
	assert.NotEmpty(t, cfg.Database)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `database: /tmp/focus.db
timezone: UTC
planner:
  start_hour: 8
  end_hour: 20
cache:
  addr: localhost:6379
  ttl: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/focus.db", cfg.Database)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 8, cfg.Planner.StartHour)
	assert.Equal(t, 20, cfg.Planner.EndHour)
	assert.Equal(t, 10*time.Second, cfg.Planner.SaveTimeout)
	assert.True(t, cfg.Cache.Enabled())
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timezone: Local\n"), 0600))

	t.Setenv("DAILYFOCUS_TIMEZONE", "UTC")
	t.Setenv("DAILYFOCUS_PLANNER_END_HOUR", "21")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 21, cfg.Planner.EndHour)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"start after end", func(c *Config) { c.Planner.StartHour = 22; c.Planner.EndHour = 7 }, true},
		{"negative start", func(c *Config) { c.Planner.StartHour = -1 }, true},
		{"end past midnight", func(c *Config) { c.Planner.EndHour = 24 }, true},
		{"zero save timeout", func(c *Config) { c.Planner.SaveTimeout = 0 }, true},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus_Mons" }, true},
		{"cache without ttl", func(c *Config) { c.Cache.Addr = "localhost:6379"; c.Cache.TTL = 0 }, true},
		{"single hour grid", func(c *Config) { c.Planner.StartHour = 9; c.Planner.EndHour = 9 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".config/dailyfocus"), ExpandHome("~/.config/dailyfocus"))
	assert.Equal(t, "/var/lib/focus.db", ExpandHome("/var/lib/focus.db"))
	assert.Equal(t, "~user/file", ExpandHome("~user/file"))
}

func TestIsPostgres(t *testing.T) {
	assert.True(t, IsPostgres("postgres://user@localhost:5432/focus"))
	assert.True(t, IsPostgres("postgresql://user@localhost/focus"))
	assert.True(t, IsPostgres("host=localhost dbname=focus"))
	assert.False(t, IsPostgres("/home/me/.config/dailyfocus/dailyfocus.db"))
}
