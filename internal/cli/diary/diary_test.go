package diary

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/dailyfocus/internal/backup"
	"github.com/julianstephens/dailyfocus/internal/cli"
	"github.com/julianstephens/dailyfocus/internal/config"
	"github.com/julianstephens/dailyfocus/internal/export"
	"github.com/julianstephens/dailyfocus/internal/models"
)

func newTestContext(t *testing.T) *cli.Context {
	t.Helper()
	gokeyring.MockInit()

	cfg := config.Default()
	cfg.Database = filepath.Join(t.TempDir(), "dailyfocus.db")
	cfg.Timezone = "UTC"

	ctx, err := cli.NewContext(cfg, "")
	if err != nil {
		t.Fatalf("NewContext failed: %v", err)
	}
	t.Cleanup(func() { ctx.Store.Close() })

	if err := ctx.Store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if _, err := ctx.Session.SignInLocal("ada@example.com"); err != nil {
		t.Fatalf("SignInLocal failed: %v", err)
	}
	return ctx
}

func TestWriteShowExportClear(t *testing.T) {
	ctx := newTestContext(t)
	bg := context.Background()

	for date, text := range map[string]string{
		"2025-09-29": "Quiet day.",
		"2025-09-30": "Ran **five** miles.",
	} {
		if err := (&WriteCmd{Date: date, Text: text}).Run(ctx); err != nil {
			t.Fatalf("write %s failed: %v", date, err)
		}
	}

	entry, found, err := ctx.Notes.LoadDiary(bg, models.DateKey("2025-09-30"))
	if err != nil || !found {
		t.Fatalf("LoadDiary = %v, %v", found, err)
	}
	if entry.Text != "Ran **five** miles." {
		t.Errorf("stored text = %q", entry.Text)
	}

	if err := (&ShowCmd{Date: "2025-09-30"}).Run(ctx); err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if err := (&ShowCmd{Date: "2025-01-01"}).Run(ctx); err != nil {
		t.Fatalf("show of an empty day failed: %v", err)
	}

	out := filepath.Join(t.TempDir(), "diary.json")
	if err := (&ExportCmd{Type: "diary", Format: "json", Output: out}).Run(ctx); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	var doc export.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(doc.Entries) != 2 || doc.Entries[0].Date != "2025-09-30" {
		t.Errorf("unexpected export entries: %+v", doc.Entries)
	}

	if err := (&ClearCmd{Yes: true}).Run(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	notes, err := ctx.Notes.List(bg, models.NoteTypeDiary)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("expected no diary entries after clear, got %d", len(notes))
	}

	path, _ := ctx.SQLitePath()
	if _, ok, err := backup.NewManager(path).Latest(); err != nil || !ok {
		t.Errorf("expected an automatic backup before clear (ok=%v, err=%v)", ok, err)
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	ctx := newTestContext(t)
	if err := (&ExportCmd{Type: "diary", Format: "csv"}).Run(ctx); err == nil {
		t.Error("expected an error for an unknown format")
	}
}
