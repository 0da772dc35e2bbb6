package notes

import (
	"context"
	"sort"
	"sync"

	"github.com/julianstephens/dailyfocus/internal/models"
	"github.com/julianstephens/dailyfocus/internal/storage"
)

type staticAuth struct {
	id *models.Identity
}

func (a staticAuth) CurrentUser(context.Context) (*models.Identity, error) {
	return a.id, nil
}

func signedIn(userID string) staticAuth {
	return staticAuth{id: &models.Identity{ID: userID, Provider: models.ProviderLocal}}
}

// memBackend is an in-memory storage.Backend. When gate is set, every Upsert
// blocks until a value is received from it.
type memBackend struct {
	mu      sync.Mutex
	rows    map[models.NoteKey]models.DateNote
	calls   int
	upserts []string
	err     error
	gate    chan struct{}
}

func newMemBackend() *memBackend {
	return &memBackend{rows: make(map[models.NoteKey]models.DateNote)}
}

func (b *memBackend) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func (b *memBackend) Upsert(ctx context.Context, note models.DateNote) (models.DateNote, error) {
	if b.gate != nil {
		select {
		case <-b.gate:
		case <-ctx.Done():
			return models.DateNote{}, ctx.Err()
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.err != nil {
		return models.DateNote{}, b.err
	}

	b.upserts = append(b.upserts, note.Content)
	if existing, ok := b.rows[note.Key()]; ok {
		existing.Content = note.Content
		existing.UpdatedAt = note.UpdatedAt
		b.rows[note.Key()] = existing
		return existing, nil
	}
	b.rows[note.Key()] = note
	return note, nil
}

func (b *memBackend) Select(_ context.Context, key models.NoteKey) (models.DateNote, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.err != nil {
		return models.DateNote{}, b.err
	}
	note, ok := b.rows[key]
	if !ok {
		return models.DateNote{}, storage.ErrNotFound
	}
	return note, nil
}

func (b *memBackend) List(_ context.Context, userID string, noteType models.NoteType) ([]models.DateNote, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	var out []models.DateNote
	for k, n := range b.rows {
		if k.UserID == userID && k.NoteType == noteType {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (b *memBackend) DeleteAll(_ context.Context, userID string, noteType models.NoteType) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.err != nil {
		return 0, b.err
	}
	var n int64
	for k := range b.rows {
		if k.UserID == userID && k.NoteType == noteType {
			delete(b.rows, k)
			n++
		}
	}
	return n, nil
}
