package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/dailyfocus/internal/logger"
	"github.com/julianstephens/dailyfocus/internal/migration"
	"github.com/julianstephens/dailyfocus/internal/models"
	"github.com/julianstephens/dailyfocus/internal/storage"
	"github.com/julianstephens/dailyfocus/migrations"
)

// ErrNotInitialized is returned by Load when the database file does not exist yet.
var ErrNotInitialized = errors.New("storage not initialized, run 'dailyfocus init' first")

// Store keeps notes in a local SQLite file. It is the offline backend.
type Store struct {
	path string
	db   *sql.DB
}

var _ storage.Provider = (*Store)(nil)

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := s.open(); err != nil {
		return err
	}

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return ErrNotInitialized
	}

	if err := s.open(); err != nil {
		return err
	}

	runner, err := s.runner()
	if err != nil {
		return err
	}
	return runner.ValidateVersion()
}

func (s *Store) open() error {
	if s.db != nil {
		return nil
	}
	db, err := sql.Open("sqlite", s.path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer; async saves queue on the pool instead of failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	s.db = db
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Store) runner() (*migration.Runner, error) {
	subFS, err := migrations.SQLite()
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS), nil
}

func (s *Store) runMigrations() error {
	_, err := s.Migrate(func(msg string) {
		logger.Info(msg, "backend", "sqlite")
	})
	return err
}

// Migrate applies pending migrations and reports how many ran.
func (s *Store) Migrate(progress func(string)) (int, error) {
	if err := s.open(); err != nil {
		return 0, err
	}
	runner, err := s.runner()
	if err != nil {
		return 0, err
	}
	return runner.ApplyMigrations(progress)
}

// SchemaStatus reports the applied and pending migrations.
func (s *Store) SchemaStatus() (migration.Status, error) {
	if err := s.open(); err != nil {
		return migration.Status{}, err
	}
	runner, err := s.runner()
	if err != nil {
		return migration.Status{}, err
	}
	return runner.Status()
}

func (s *Store) GetConfigPath() string {
	return s.path
}

func (s *Store) Upsert(ctx context.Context, note models.DateNote) (models.DateNote, error) {
	if s.db == nil {
		return models.DateNote{}, ErrNotInitialized
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO notes (id, user_id, note_type, date, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, note_type, date) DO UPDATE SET
			content = excluded.content,
			updated_at = excluded.updated_at
		RETURNING `+storage.NoteColumns,
		note.ID, note.UserID, string(note.NoteType), string(note.Date), note.Content,
		storage.FormatTime(note.CreatedAt), storage.FormatTime(note.UpdatedAt))

	stored, err := storage.ScanNote(row)
	if err != nil {
		return models.DateNote{}, fmt.Errorf("failed to upsert %s note for %s: %w", note.NoteType, note.Date, err)
	}
	return stored, nil
}

func (s *Store) Select(ctx context.Context, key models.NoteKey) (models.DateNote, error) {
	if s.db == nil {
		return models.DateNote{}, ErrNotInitialized
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+storage.NoteColumns+`
		FROM notes WHERE user_id = ? AND note_type = ? AND date = ?`,
		key.UserID, string(key.NoteType), string(key.Date))

	note, err := storage.ScanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DateNote{}, storage.ErrNotFound
		}
		return models.DateNote{}, err
	}
	return note, nil
}

func (s *Store) List(ctx context.Context, userID string, noteType models.NoteType) ([]models.DateNote, error) {
	if s.db == nil {
		return nil, ErrNotInitialized
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+storage.NoteColumns+`
		FROM notes WHERE user_id = ? AND note_type = ?
		ORDER BY date DESC`, userID, string(noteType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []models.DateNote
	for rows.Next() {
		note, err := storage.ScanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func (s *Store) DeleteAll(ctx context.Context, userID string, noteType models.NoteType) (int64, error) {
	if s.db == nil {
		return 0, ErrNotInitialized
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM notes WHERE user_id = ? AND note_type = ?", userID, string(noteType))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
