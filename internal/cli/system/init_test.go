package system

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/dailyfocus/internal/config"
)

func TestWriteDefaultConfigRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := config.Default()
	cfg.Database = "/var/lib/dailyfocus/notes.db"
	cfg.Timezone = "UTC"
	cfg.Planner.StartHour = 7
	cfg.Planner.SaveTimeout = 15 * time.Second
	cfg.Cache.Password = "hunter2"

	written, err := writeDefaultConfig(path, cfg)
	if err != nil {
		t.Fatalf("writeDefaultConfig failed: %v", err)
	}
	if !written {
		t.Fatal("expected the config to be written")
	}

	got, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Database != cfg.Database || got.Timezone != cfg.Timezone {
		t.Errorf("unexpected config %+v", got)
	}
	if got.Planner.StartHour != 7 || got.Planner.EndHour != cfg.Planner.EndHour {
		t.Errorf("unexpected planner hours %+v", got.Planner)
	}
	if got.Planner.SaveTimeout != 15*time.Second {
		t.Errorf("SaveTimeout = %v, want 15s", got.Planner.SaveTimeout)
	}
	if got.Cache.Password != "" {
		t.Error("the cache password must not be written to disk")
	}
}

func TestWriteDefaultConfigKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("timezone: UTC\n"), 0600); err != nil {
		t.Fatal(err)
	}

	written, err := writeDefaultConfig(path, config.Default())
	if err != nil {
		t.Fatalf("writeDefaultConfig failed: %v", err)
	}
	if written {
		t.Error("an existing config must not be overwritten")
	}
	data, _ := os.ReadFile(path)
	if string(data) != "timezone: UTC\n" {
		t.Errorf("config changed to %q", data)
	}
}
