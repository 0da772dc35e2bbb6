package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/dailyfocus/internal/backup"
	"github.com/julianstephens/dailyfocus/internal/catalog"
	"github.com/julianstephens/dailyfocus/internal/config"
	"github.com/julianstephens/dailyfocus/internal/logger"
	"github.com/julianstephens/dailyfocus/internal/models"
	"github.com/julianstephens/dailyfocus/internal/notes"
	"github.com/julianstephens/dailyfocus/internal/planner"
	"github.com/julianstephens/dailyfocus/internal/session"
	"github.com/julianstephens/dailyfocus/internal/storage"
	"github.com/julianstephens/dailyfocus/internal/storage/cache"
	"github.com/julianstephens/dailyfocus/internal/storage/postgres"
	"github.com/julianstephens/dailyfocus/internal/storage/sqlite"
	"github.com/julianstephens/dailyfocus/internal/utils"
)

// ErrNotSignedIn is returned by commands that read or write notes while signed out.
var ErrNotSignedIn = errors.New("not signed in, run 'dailyfocus auth login' first")

// Context is handed to every command's Run method.
type Context struct {
	Config     *config.Config
	ConfigPath string
	Store      storage.Provider
	Session    *session.Manager
	Notes      *notes.Store
	Catalog    *catalog.Catalog
	Location   *time.Location
}

// NewContext wires the store, session and note store from cfg. The store is
// not opened; commands call Load or Init themselves.
func NewContext(cfg *config.Config, configPath string) (*Context, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	store, err := NewStore(cfg)
	if err != nil {
		return nil, err
	}

	sess := session.NewManager()
	return &Context{
		Config:     cfg,
		ConfigPath: configPath,
		Store:      store,
		Session:    sess,
		Notes:      notes.New(sess, store),
		Catalog:    catalog.Default(),
		Location:   loc,
	}, nil
}

// NewStore picks the backend for cfg.Database: PostgreSQL for connection
// strings and the keyring source, SQLite for everything else. A configured
// cache wraps the backend; an unreachable cache is logged and skipped.
func NewStore(cfg *config.Config) (storage.Provider, error) {
	var store storage.Provider
	if cfg.Database == postgres.KeyringSource || config.IsPostgres(cfg.Database) {
		connStr, err := postgres.ResolveConnString(cfg.Database)
		if err != nil {
			return nil, err
		}
		store = postgres.New(connStr)
	} else {
		store = sqlite.NewStore(config.ExpandHome(cfg.Database))
	}

	if !cfg.Cache.Enabled() {
		return store, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	cached, err := cache.New(ctx, store, cfg.Cache)
	if err != nil {
		logger.Warn("Note cache disabled", "addr", cfg.Cache.Addr, "error", err)
		return store, nil
	}
	return cached, nil
}

// Backend returns the store without any cache decorator.
func (c *Context) Backend() storage.Provider {
	if cached, ok := c.Store.(*cache.Store); ok {
		return cached.Unwrap()
	}
	return c.Store
}

// SQLitePath returns the database file when the backend is SQLite.
func (c *Context) SQLitePath() (string, bool) {
	if s, ok := c.Backend().(*sqlite.Store); ok {
		return s.GetConfigPath(), true
	}
	return "", false
}

// RequireUser returns the signed-in identity or ErrNotSignedIn.
func (c *Context) RequireUser(ctx context.Context) (*models.Identity, error) {
	id, err := c.Session.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if id == nil {
		return nil, ErrNotSignedIn
	}
	return id, nil
}

// Open loads the store and returns the signed-in identity.
func (c *Context) Open(ctx context.Context) (*models.Identity, error) {
	if err := c.Store.Load(); err != nil {
		return nil, err
	}
	return c.RequireUser(ctx)
}

// ResolveDate parses --date style input in the configured timezone.
func (c *Context) ResolveDate(input string) (time.Time, models.DateKey, error) {
	t, err := utils.ResolveDate(input, c.Location)
	if err != nil {
		return time.Time{}, "", err
	}
	key, err := utils.ToDateKeyIn(t, c.Location)
	if err != nil {
		return time.Time{}, "", err
	}
	return t, key, nil
}

// NewPlanner builds a schedule planner over the note store using the configured grid.
func (c *Context) NewPlanner(ctx context.Context) (*planner.Planner, error) {
	return planner.New(c.Notes, c.Catalog,
		planner.WithContext(ctx),
		planner.WithLocation(c.Location),
		planner.WithHours(c.Config.Planner.StartHour, c.Config.Planner.EndHour),
		planner.WithSaveTimeout(c.Config.Planner.SaveTimeout),
	)
}

// PerformAutomaticBackup snapshots a SQLite database and only logs failures.
func (c *Context) PerformAutomaticBackup() {
	path, ok := c.SQLitePath()
	if !ok {
		return
	}
	if _, err := backup.NewManager(path).Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// SaveTimeout bounds a single command's store call.
func (c *Context) SaveTimeout() time.Duration {
	return c.Config.Planner.SaveTimeout
}
