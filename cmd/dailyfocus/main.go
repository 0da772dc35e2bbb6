package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/dailyfocus/internal/cli"
	"github.com/julianstephens/dailyfocus/internal/cli/actions"
	"github.com/julianstephens/dailyfocus/internal/cli/auth"
	"github.com/julianstephens/dailyfocus/internal/cli/backups"
	"github.com/julianstephens/dailyfocus/internal/cli/diary"
	"github.com/julianstephens/dailyfocus/internal/cli/schedule"
	"github.com/julianstephens/dailyfocus/internal/cli/system"
	"github.com/julianstephens/dailyfocus/internal/config"
	"github.com/julianstephens/dailyfocus/internal/constants"
	"github.com/julianstephens/dailyfocus/internal/errors"
	"github.com/julianstephens/dailyfocus/internal/logger"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Config file path." type:"string" default:"${config_path}"`
	Database string `help:"Override the database: SQLite path, PostgreSQL URL without password, or 'keyring'." type:"string"`
	Debug    bool   `help:"Log debug output to stderr."`

	Init     system.InitCmd       `cmd:"" help:"Initialize dailyfocus storage."`
	Migrate  system.MigrateCmd    `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	DB       system.DBCmd         `cmd:"" name:"db" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Debugger system.DebugCmd      `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
	Tui      system.TuiCmd        `cmd:"" help:"Launch the interactive planner." default:"1"`
	Auth     auth.AuthCmd         `cmd:"" help:"Sign in, sign out and show the current user."`
	Diary    diary.DiaryCmd       `cmd:"" help:"Read, write and export diary entries."`
	Schedule schedule.ScheduleCmd `cmd:"" help:"Show and edit a day's hourly schedule."`
	Actions  actions.ActionsCmd   `cmd:"" help:"List the catalog of recurring actions."`
	Calendar actions.CalendarCmd  `cmd:"" help:"Show a month with the days that have notes."`
	Backup   backups.BackupCmd    `cmd:"" help:"Manage database backups."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Daily planner and diary: an hourly schedule and a text diary per day"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": constants.DefaultConfigPath,
		},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}
	if CLI.Database != "" {
		cfg.Database = CLI.Database
	}
	if CLI.Debug {
		cfg.Debug = true
	}

	if err := logger.Init(logger.Config{
		Debug:     cfg.Debug,
		ConfigDir: config.Dir(CLI.Config),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Logging to file disabled: %v\n", err)
	}

	appCtx, err := cli.NewContext(cfg, config.ExpandHome(CLI.Config))
	if err != nil {
		errors.Fatalf("failed to set up %s: %v", constants.AppName, err)
	}
	defer func() {
		if err := appCtx.Store.Close(); err != nil {
			logger.Debug("Failed to close store", "error", err)
		}
	}()

	if err := kctx.Run(appCtx); err != nil {
		appCtx.Store.Close()
		errors.Fatal(err)
	}
}
