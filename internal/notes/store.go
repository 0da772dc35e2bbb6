package notes

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/dailyfocus/internal/logger"
	"github.com/julianstephens/dailyfocus/internal/models"
	"github.com/julianstephens/dailyfocus/internal/storage"
)

// Authenticator supplies the signed-in identity. A nil identity with a nil
// error means nobody is signed in.
type Authenticator interface {
	CurrentUser(ctx context.Context) (*models.Identity, error)
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the UUID generator used for new records.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// Store reads and writes date-scoped notes for the signed-in user. Writes to
// the same (user, type, date) are applied in the order they were issued;
// writes to different keys run independently.
type Store struct {
	auth    Authenticator
	backend storage.Backend
	now     func() time.Time
	newID   func() string

	mu    sync.Mutex
	tails map[models.NoteKey]chan struct{}
}

func New(auth Authenticator, backend storage.Backend, opts ...Option) *Store {
	s := &Store{
		auth:    auth,
		backend: backend,
		now:     time.Now,
		newID:   uuid.NewString,
		tails:   make(map[models.NoteKey]chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) currentUser(ctx context.Context) (*models.Identity, error) {
	if s.auth == nil {
		return nil, ErrAuthenticationRequired
	}
	id, err := s.auth.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationRequired, err)
	}
	if id == nil || id.ID == "" {
		return nil, ErrAuthenticationRequired
	}
	return id, nil
}

func checkType(noteType models.NoteType) error {
	if !noteType.Valid() {
		return fmt.Errorf("unknown note type %q", noteType)
	}
	return nil
}

// Load returns the note stored for key. A missing note is (zero, false, nil).
// Writes to key issued before Load are applied before it reads.
func (s *Store) Load(ctx context.Context, noteType models.NoteType, key models.DateKey) (models.DateNote, bool, error) {
	if err := checkType(noteType); err != nil {
		return models.DateNote{}, false, err
	}
	id, err := s.currentUser(ctx)
	if err != nil {
		return models.DateNote{}, false, err
	}

	nk := models.NoteKey{UserID: id.ID, NoteType: noteType, Date: key}
	if err := s.awaitWrites(ctx, nk); err != nil {
		return models.DateNote{}, false, noteError("load", nk, err)
	}

	note, err := s.backend.Select(ctx, nk)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.DateNote{}, false, nil
		}
		logger.Error("Failed to load note", logger.NoteFields(noteType, key, "error", err)...)
		return models.DateNote{}, false, noteError("load", nk, err)
	}
	return note, true, nil
}

// awaitWrites blocks until every write already queued for nk has finished.
func (s *Store) awaitWrites(ctx context.Context, nk models.NoteKey) error {
	s.mu.Lock()
	tail := s.tails[nk]
	s.mu.Unlock()
	if tail == nil {
		return nil
	}

	select {
	case <-tail:
		return nil
	case <-ctx.Done():
		logger.Warn("Load gave up waiting for pending writes", logger.NoteFields(nk.NoteType, nk.Date, "error", ctx.Err())...)
		return ctx.Err()
	}
}

// Save creates or overwrites the note for key and returns the stored record.
func (s *Store) Save(ctx context.Context, noteType models.NoteType, key models.DateKey, content string) (models.DateNote, error) {
	if err := checkType(noteType); err != nil {
		return models.DateNote{}, err
	}
	id, err := s.currentUser(ctx)
	if err != nil {
		return models.DateNote{}, err
	}

	nk := models.NoteKey{UserID: id.ID, NoteType: noteType, Date: key}
	prev, done := s.reserve(nk)
	defer s.release(nk, done)
	if prev != nil {
		<-prev
	}
	return s.write(ctx, nk, content)
}

// SaveAsync is Save on a goroutine. The write's position in the per-key order
// is fixed when SaveAsync returns. The channel yields exactly one value.
func (s *Store) SaveAsync(ctx context.Context, noteType models.NoteType, key models.DateKey, content string) <-chan error {
	result := make(chan error, 1)

	if err := checkType(noteType); err != nil {
		result <- err
		return result
	}
	id, err := s.currentUser(ctx)
	if err != nil {
		result <- err
		return result
	}

	nk := models.NoteKey{UserID: id.ID, NoteType: noteType, Date: key}
	prev, done := s.reserve(nk)

	go func() {
		defer s.release(nk, done)
		if prev != nil {
			<-prev
		}
		_, err := s.write(ctx, nk, content)
		result <- err
	}()
	return result
}

func (s *Store) write(ctx context.Context, nk models.NoteKey, content string) (models.DateNote, error) {
	if err := ctx.Err(); err != nil {
		return models.DateNote{}, noteError("save", nk, err)
	}

	now := s.now().UTC()
	stored, err := s.backend.Upsert(ctx, models.DateNote{
		ID:        s.newID(),
		UserID:    nk.UserID,
		NoteType:  nk.NoteType,
		Date:      nk.Date,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		logger.Error("Failed to save note", logger.NoteFields(nk.NoteType, nk.Date, "error", err)...)
		return models.DateNote{}, noteError("save", nk, err)
	}
	logger.Debug("Saved note", logger.NoteFields(nk.NoteType, nk.Date, "id", stored.ID)...)
	return stored, nil
}

// reserve appends a writer to the key's queue. prev is closed when the writer
// ahead of it finishes, nil if there is none.
func (s *Store) reserve(nk models.NoteKey) (prev <-chan struct{}, done chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tail, ok := s.tails[nk]; ok {
		prev = tail
	}
	done = make(chan struct{})
	s.tails[nk] = done
	return prev, done
}

func (s *Store) release(nk models.NoteKey, done chan struct{}) {
	close(done)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tails[nk] == done {
		delete(s.tails, nk)
	}
}

// List returns every note of noteType for the signed-in user, newest date first.
func (s *Store) List(ctx context.Context, noteType models.NoteType) ([]models.DateNote, error) {
	if err := checkType(noteType); err != nil {
		return nil, err
	}
	id, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	notes, err := s.backend.List(ctx, id.ID, noteType)
	if err != nil {
		return nil, noteError("list", models.NoteKey{NoteType: noteType}, err)
	}
	return notes, nil
}

// Clear deletes every note of noteType for the signed-in user.
func (s *Store) Clear(ctx context.Context, noteType models.NoteType) (int64, error) {
	if err := checkType(noteType); err != nil {
		return 0, err
	}
	id, err := s.currentUser(ctx)
	if err != nil {
		return 0, err
	}

	n, err := s.backend.DeleteAll(ctx, id.ID, noteType)
	if err != nil {
		return 0, noteError("clear", models.NoteKey{NoteType: noteType}, err)
	}
	logger.Info("Cleared notes", logger.NoteFields(noteType, "", "count", n)...)
	return n, nil
}
