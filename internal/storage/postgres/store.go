package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/julianstephens/dailyfocus/internal/constants"
	"github.com/julianstephens/dailyfocus/internal/logger"
	"github.com/julianstephens/dailyfocus/internal/migration"
	"github.com/julianstephens/dailyfocus/internal/models"
	"github.com/julianstephens/dailyfocus/internal/storage"
	"github.com/julianstephens/dailyfocus/migrations"
)

// ErrNotConnected is returned by queries issued before Init or Load.
var ErrNotConnected = errors.New("postgres store is not connected")

// Store keeps notes in a shared PostgreSQL database under the dailyfocus schema.
type Store struct {
	connStr string
	db      *sql.DB
}

var _ storage.Provider = (*Store)(nil)

func New(connStr string) *Store {
	return &Store{
		connStr: withSearchPath(connStr),
	}
}

func (s *Store) connect() error {
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(constants.PostgresMaxConns)
	db.SetMaxIdleConns(constants.PostgresMaxConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(s.connStr) {
			return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	s.db = db
	return nil
}

func (s *Store) Init() error {
	if err := s.connect(); err != nil {
		return err
	}

	if _, err := s.db.Exec("CREATE SCHEMA IF NOT EXISTS " + constants.PostgresSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if _, err := s.Migrate(func(msg string) {
		logger.Info(msg, "backend", "postgres")
	}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Load() error {
	if err := s.connect(); err != nil {
		return err
	}

	runner, err := s.runner()
	if err != nil {
		return err
	}
	return runner.ValidateVersion()
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
	subFS, err := migrations.Postgres()
	if err != nil {
		return nil, fmt.Errorf("failed to access postgres migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS), nil
}

// Migrate applies pending migrations and reports how many ran.
func (s *Store) Migrate(progress func(string)) (int, error) {
	if err := s.connect(); err != nil {
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
	if err := s.connect(); err != nil {
		return migration.Status{}, err
	}
	runner, err := s.runner()
	if err != nil {
		return migration.Status{}, err
	}
	return runner.Status()
}

func (s *Store) GetConfigPath() string {
	// Non-sensitive identifier instead of the connection string
	return "postgresql"
}

func (s *Store) Upsert(ctx context.Context, note models.DateNote) (models.DateNote, error) {
	if s.db == nil {
		return models.DateNote{}, ErrNotConnected
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO notes (id, user_id, note_type, date, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, note_type, date) DO UPDATE SET
			content = EXCLUDED.content,
			updated_at = EXCLUDED.updated_at
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
		return models.DateNote{}, ErrNotConnected
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+storage.NoteColumns+`
		FROM notes WHERE user_id = $1 AND note_type = $2 AND date = $3`,
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
		return nil, ErrNotConnected
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+storage.NoteColumns+`
		FROM notes WHERE user_id = $1 AND note_type = $2
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
		return 0, ErrNotConnected
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM notes WHERE user_id = $1 AND note_type = $2", userID, string(noteType))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
