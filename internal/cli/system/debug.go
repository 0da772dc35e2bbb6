package system

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/dailyfocus/internal/cli"
	"github.com/julianstephens/dailyfocus/internal/config"
	"github.com/julianstephens/dailyfocus/internal/models"
)

type DebugCmd struct {
	DBPath   DebugDBPathCmd   `cmd:"" help:"Show database location."`
	Config   DebugConfigCmd   `cmd:"" help:"Show effective configuration and supported environment variables."`
	DumpNote DebugDumpNoteCmd `cmd:"" help:"Dump a stored note as JSON."`
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(map[string]string{"path": ctx.Store.GetConfigPath()})
}

type DebugConfigCmd struct{}

func (cmd *DebugConfigCmd) Run(ctx *cli.Context) error {
	cfg := *ctx.Config
	if cfg.Cache.Password != "" {
		cfg.Cache.Password = "****"
	}
	if err := printJSON(cfg); err != nil {
		return err
	}
	usage, err := config.Usage()
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(usage)
	return nil
}

type DebugDumpNoteCmd struct {
	Date string `arg:"" help:"Date of the note (YYYY-MM-DD, today, yesterday, tomorrow)."`
	Type string `help:"Note type (diary or schedule)." default:"diary" enum:"diary,schedule"`
}

func (cmd *DebugDumpNoteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	_, key, err := ctx.ResolveDate(cmd.Date)
	if err != nil {
		return err
	}

	c, cancel := context.WithTimeout(context.Background(), ctx.SaveTimeout())
	defer cancel()

	note, found, err := ctx.Notes.Load(c, models.NoteType(cmd.Type), key)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no %s note found for date: %s", cmd.Type, key)
	}
	return printJSON(note)
}
