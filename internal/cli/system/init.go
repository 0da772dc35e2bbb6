package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/dailyfocus/internal/cli"
	"github.com/julianstephens/dailyfocus/internal/config"
)

type InitCmd struct {
	Force bool `help:"Delete an existing SQLite database before initializing."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("✓ Initialized dailyfocus storage at: %s\n", ctx.Store.GetConfigPath())

	written, err := writeDefaultConfig(ctx.ConfigPath, ctx.Config)
	if err != nil {
		return err
	}
	if written {
		fmt.Printf("✓ Wrote configuration to: %s\n", config.ExpandHome(ctx.ConfigPath))
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	path, ok := ctx.SQLitePath()
	if !ok {
		return errors.New("--force only applies to SQLite databases")
	}

	if _, err := os.Stat(path); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		fmt.Printf("Deleted existing database at: %s\n", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

// configFile is the on-disk layout of config.Config with durations spelled
// out ("10s") so the file reads back through yaml.v3. The cache password is
// never written.
type configFile struct {
	Database string `yaml:"database"`
	Timezone string `yaml:"timezone"`
	Planner  struct {
		StartHour   int    `yaml:"start_hour"`
		EndHour     int    `yaml:"end_hour"`
		SaveTimeout string `yaml:"save_timeout"`
	} `yaml:"planner"`
	Cache struct {
		Addr string `yaml:"addr"`
		DB   int    `yaml:"db"`
		TTL  string `yaml:"ttl"`
	} `yaml:"cache"`
}

func newConfigFile(cfg *config.Config) configFile {
	var f configFile
	f.Database = cfg.Database
	f.Timezone = cfg.Timezone
	f.Planner.StartHour = cfg.Planner.StartHour
	f.Planner.EndHour = cfg.Planner.EndHour
	f.Planner.SaveTimeout = cfg.Planner.SaveTimeout.String()
	f.Cache.Addr = cfg.Cache.Addr
	f.Cache.DB = cfg.Cache.DB
	f.Cache.TTL = cfg.Cache.TTL.String()
	return f
}

// writeDefaultConfig saves cfg to path unless a file already exists there.
func writeDefaultConfig(path string, cfg *config.Config) (bool, error) {
	path = config.ExpandHome(path)
	if path == "" {
		return false, nil
	}
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	data, err := yaml.Marshal(newConfigFile(cfg))
	if err != nil {
		return false, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return false, fmt.Errorf("failed to write config: %w", err)
	}
	return true, nil
}
