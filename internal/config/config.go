package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/julianstephens/dailyfocus/internal/constants"
	"github.com/julianstephens/dailyfocus/internal/utils"
)

// Config is the user configuration, read from a YAML file and/or DAILYFOCUS_* environment variables.
type Config struct {
	Database string        `yaml:"database" env:"DAILYFOCUS_DATABASE" env-default:"~/.config/dailyfocus/dailyfocus.db" env-description:"SQLite path or PostgreSQL URL (no password), or \"keyring\""`
	Timezone string        `yaml:"timezone" env:"DAILYFOCUS_TIMEZONE" env-default:"Local" env-description:"IANA timezone used to key dates"`
	Debug    bool          `yaml:"debug" env:"DAILYFOCUS_DEBUG" env-description:"Verbose logging to stderr"`
	Planner  PlannerConfig `yaml:"planner"`
	Cache    CacheConfig   `yaml:"cache"`
}

// PlannerConfig controls the hourly schedule grid.
type PlannerConfig struct {
	StartHour   int           `yaml:"start_hour" env:"DAILYFOCUS_PLANNER_START_HOUR" env-default:"6"`
	EndHour     int           `yaml:"end_hour" env:"DAILYFOCUS_PLANNER_END_HOUR" env-default:"23"`
	SaveTimeout time.Duration `yaml:"save_timeout" env:"DAILYFOCUS_PLANNER_SAVE_TIMEOUT" env-default:"10s"`
}

// CacheConfig configures the optional Redis read cache. An empty Addr disables it.
type CacheConfig struct {
	Addr     string        `yaml:"addr" env:"DAILYFOCUS_CACHE_ADDR"`
	Password string        `yaml:"password" env:"DAILYFOCUS_CACHE_PASSWORD"`
	DB       int           `yaml:"db" env:"DAILYFOCUS_CACHE_DB" env-default:"0"`
	TTL      time.Duration `yaml:"ttl" env:"DAILYFOCUS_CACHE_TTL" env-default:"5m"`
}

// Enabled reports whether a cache address is configured.
func (c CacheConfig) Enabled() bool {
	return strings.TrimSpace(c.Addr) != ""
}

// Load reads configuration from path. A missing file is not an error: the
// environment and defaults are used instead.
func Load(path string) (*Config, error) {
	var cfg Config

	path = ExpandHome(path)
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
			return &cfg, cfg.Validate()
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to access config %s: %w", path, err)
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return &cfg, cfg.Validate()
}

// Default returns the configuration produced by defaults alone.
func Default() *Config {
	return &Config{
		Database: constants.DefaultDBPath,
		Timezone: constants.DefaultTimezone,
		Planner: PlannerConfig{
			StartHour:   constants.DefaultStartHour,
			EndHour:     constants.DefaultEndHour,
			SaveTimeout: constants.DefaultSaveTimeout,
		},
		Cache: CacheConfig{
			TTL: constants.DefaultCacheTTL,
		},
	}
}

// Validate checks value ranges that the struct tags cannot express.
func (c *Config) Validate() error {
	if c.Planner.StartHour < 0 || c.Planner.StartHour > 23 {
		return fmt.Errorf("planner.start_hour must be between 0 and 23, got %d", c.Planner.StartHour)
	}
	if c.Planner.EndHour < 0 || c.Planner.EndHour > 23 {
		return fmt.Errorf("planner.end_hour must be between 0 and 23, got %d", c.Planner.EndHour)
	}
	if c.Planner.StartHour > c.Planner.EndHour {
		return fmt.Errorf("planner.start_hour (%d) must not be after planner.end_hour (%d)", c.Planner.StartHour, c.Planner.EndHour)
	}
	if c.Planner.SaveTimeout <= 0 {
		return fmt.Errorf("planner.save_timeout must be positive, got %s", c.Planner.SaveTimeout)
	}
	if c.Cache.Enabled() && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid timezone %q", c.Timezone)
	}
	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return utils.LoadLocation(c.Timezone)
}

// Dir returns the directory holding the config file, logs and the default database.
func Dir(configPath string) string {
	if configPath == "" {
		return ExpandHome(constants.DefaultConfigDir)
	}
	return filepath.Dir(ExpandHome(configPath))
}

// ExpandHome replaces a leading "~" with the current user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// IsPostgres reports whether database names a PostgreSQL server rather than a SQLite file.
func IsPostgres(database string) bool {
	return strings.HasPrefix(database, "postgres://") ||
		strings.HasPrefix(database, "postgresql://") ||
		strings.Contains(database, "host=")
}

// Usage describes every environment variable understood by Load.
func Usage() (string, error) {
	var cfg Config
	return cleanenv.GetDescription(&cfg, nil)
}
