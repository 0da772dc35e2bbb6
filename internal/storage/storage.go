package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/dailyfocus/internal/models"
)

// ErrNotFound is returned by Select when no note exists for the key.
var ErrNotFound = errors.New("note not found")

// Backend is the persistence contract for date-scoped notes. Implementations
// keep at most one row per (user_id, note_type, date).
type Backend interface {
	// Upsert inserts note or, when a row already exists for its key, replaces
	// content and updated_at while keeping the stored id and created_at.
	// It returns the row as stored.
	Upsert(ctx context.Context, note models.DateNote) (models.DateNote, error)
	// Select returns the note for key or ErrNotFound.
	Select(ctx context.Context, key models.NoteKey) (models.DateNote, error)
	// List returns every note of noteType for userID, newest date first.
	List(ctx context.Context, userID string, noteType models.NoteType) ([]models.DateNote, error)
	// DeleteAll removes every note of noteType for userID and reports how many were removed.
	DeleteAll(ctx context.Context, userID string, noteType models.NoteType) (int64, error)
}

// Provider is a Backend with a lifecycle.
type Provider interface {
	Backend

	// Init creates the store and applies migrations.
	Init() error
	// Load opens an already initialized store.
	Load() error
	Close() error

	GetConfigPath() string
}

// FormatTime renders timestamps the way every backend stores them.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTime is the inverse of FormatTime.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// ScanNote reads the columns id, user_id, note_type, date, content, created_at, updated_at.
func ScanNote(row Scanner) (models.DateNote, error) {
	var n models.DateNote
	var noteType, date, createdAt, updatedAt string

	if err := row.Scan(&n.ID, &n.UserID, &noteType, &date, &n.Content, &createdAt, &updatedAt); err != nil {
		return models.DateNote{}, err
	}
	n.NoteType = models.NoteType(noteType)
	n.Date = models.DateKey(date)

	var err error
	if n.CreatedAt, err = ParseTime(createdAt); err != nil {
		return models.DateNote{}, fmt.Errorf("note %s created_at: %w", n.ID, err)
	}
	if n.UpdatedAt, err = ParseTime(updatedAt); err != nil {
		return models.DateNote{}, fmt.Errorf("note %s updated_at: %w", n.ID, err)
	}
	return n, nil
}

// NoteColumns is the column list matching ScanNote.
const NoteColumns = "id, user_id, note_type, date, content, created_at, updated_at"
