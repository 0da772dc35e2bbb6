package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/dailyfocus/internal/backup"
	"github.com/julianstephens/dailyfocus/internal/cli"
	"github.com/julianstephens/dailyfocus/internal/keyring"
	"github.com/julianstephens/dailyfocus/internal/logger"
	"github.com/julianstephens/dailyfocus/internal/models"
	"github.com/julianstephens/dailyfocus/internal/storage/cache"
	"github.com/julianstephens/dailyfocus/internal/utils"
)

// errWarning marks a check that should not fail the command.
var errWarning = errors.New("warning")

type check struct {
	name  string
	needs bool // requires a reachable database
	run   func(context.Context, *cli.Context) error
}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	checks := []check{
		{"Database reachable", false, checkDBReachable},
		{"Schema version", true, checkSchema},
		{"Clock/timezone", false, checkClockTimezone},
		{"OS keyring", false, checkKeyring},
		{"Signed in", false, checkSession},
		{"Note cache", false, checkCache},
		{"Backups present", false, checkBackupsPresent},
		{"Schedule integrity", true, checkSchedules},
	}

	background := context.Background()
	hasError := false
	dbReachable := false
	for _, c := range checks {
		if c.needs && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}

		err := c.run(background, ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
			if c.name == "Database reachable" {
				dbReachable = true
			}
		case errors.Is(err, errWarning):
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Println("All diagnostics passed!")
	return nil
}

func warnf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errWarning, fmt.Sprintf(format, args...))
}

func checkDBReachable(_ context.Context, ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	return nil
}

func checkSchema(_ context.Context, ctx *cli.Context) error {
	s, err := schemaOf(ctx)
	if err != nil {
		return nil
	}
	st, err := s.SchemaStatus()
	if err != nil {
		return err
	}
	if !st.UpToDate() {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", st.Current, st.Latest)
	}
	return nil
}

func checkClockTimezone(_ context.Context, ctx *cli.Context) error {
	now, err := utils.NowInTimezone(ctx.Config.Timezone)
	if err != nil {
		return err
	}
	if now.Year() < 2020 {
		return fmt.Errorf("system clock appears wrong: %s", now.Format(time.RFC3339))
	}
	today, err := utils.GetTodayInTimezone(ctx.Config.Timezone)
	if err != nil {
		return err
	}
	logger.Debug("Clock check", "timezone", ctx.Config.Timezone, "today", today)
	return nil
}

func checkKeyring(_ context.Context, _ *cli.Context) error {
	if !keyring.IsAvailable() {
		return warnf("OS keyring is unavailable, sessions cannot be stored")
	}
	return nil
}

func checkSession(c context.Context, ctx *cli.Context) error {
	id, err := ctx.Session.CurrentUser(c)
	if err != nil {
		return warnf("failed to read session: %v", err)
	}
	if id == nil {
		return warnf("not signed in, run 'dailyfocus auth login'")
	}
	return nil
}

func checkCache(_ context.Context, ctx *cli.Context) error {
	if !ctx.Config.Cache.Enabled() {
		return nil
	}
	if _, ok := ctx.Store.(*cache.Store); !ok {
		return warnf("cache configured at %s but unreachable, reading from the database directly", ctx.Config.Cache.Addr)
	}
	return nil
}

func checkBackupsPresent(_ context.Context, ctx *cli.Context) error {
	path, ok := ctx.SQLitePath()
	if !ok {
		return nil
	}
	latest, found, err := backup.NewManager(path).Latest()
	if err != nil {
		return warnf("failed to list backups: %v", err)
	}
	if !found {
		return warnf("no backups found, run 'dailyfocus backup create'")
	}
	if age := time.Since(latest.Timestamp); age > 7*24*time.Hour {
		return warnf("latest backup is %d days old", int(age.Hours()/24))
	}
	return nil
}

// checkSchedules decodes every stored schedule and flags slot ids that no grid can show.
func checkSchedules(c context.Context, ctx *cli.Context) error {
	if id, _ := ctx.Session.CurrentUser(c); id == nil {
		return nil
	}
	notes, err := ctx.Notes.List(c, models.NoteTypeSchedule)
	if err != nil {
		return err
	}

	unknown := 0
	for _, n := range notes {
		schedule, err := models.DecodeSchedule(n.Content)
		if err != nil {
			return fmt.Errorf("schedule for %s: %w", n.Date, err)
		}
		for slotID := range schedule.Slots {
			if _, ok := models.SlotHour(slotID); !ok {
				unknown++
			}
		}
	}
	if unknown > 0 {
		return warnf("%d schedule slot(s) have unrecognized ids and will not be shown", unknown)
	}
	return nil
}
