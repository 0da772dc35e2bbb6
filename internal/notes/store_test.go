package notes

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/julianstephens/dailyfocus/internal/errors"
	"github.com/julianstephens/dailyfocus/internal/models"
	"github.com/julianstephens/dailyfocus/internal/storage/sqlite"
)

func steppingClock(start time.Time) func() time.Time {
	var n atomic.Int64
	return func() time.Time {
		return start.Add(time.Duration(n.Add(1)) * time.Second)
	}
}

func TestOperationsRequireAuthentication(t *testing.T) {
	backend := newMemBackend()
	ctx := context.Background()

	for _, auth := range []Authenticator{nil, staticAuth{}, staticAuth{id: &models.Identity{}}} {
		store := New(auth, backend)

		if _, _, err := store.Load(ctx, models.NoteTypeDiary, "2025-09-30"); !errors.Is(err, ErrAuthenticationRequired) {
			t.Errorf("Load error = %v, want %v", err, ErrAuthenticationRequired)
		}
		if _, err := store.Save(ctx, models.NoteTypeDiary, "2025-09-30", "x"); !errors.Is(err, ErrAuthenticationRequired) {
			t.Errorf("Save error = %v, want %v", err, ErrAuthenticationRequired)
		}
		if err := <-store.SaveAsync(ctx, models.NoteTypeSchedule, "2025-09-30", "{}"); !errors.Is(err, ErrAuthenticationRequired) {
			t.Errorf("SaveAsync error = %v, want %v", err, ErrAuthenticationRequired)
		}
		if _, err := store.List(ctx, models.NoteTypeDiary); !errors.Is(err, ErrAuthenticationRequired) {
			t.Errorf("List error = %v, want %v", err, ErrAuthenticationRequired)
		}
		if _, err := store.Clear(ctx, models.NoteTypeDiary); !errors.Is(err, ErrAuthenticationRequired) {
			t.Errorf("Clear error = %v, want %v", err, ErrAuthenticationRequired)
		}
	}

	if backend.callCount() != 0 {
		t.Errorf("backend was called %d times without a signed-in user", backend.callCount())
	}
}

func TestLoadMissingNote(t *testing.T) {
	store := New(signedIn("u1"), newMemBackend())

	note, found, err := store.Load(context.Background(), models.NoteTypeDiary, "2025-09-30")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if found {
		t.Errorf("expected found=false, got note %+v", note)
	}
}

func TestSaveOverwritesSingleRecord(t *testing.T) {
	backend := newMemBackend()
	start := time.Date(2025, 9, 30, 8, 0, 0, 0, time.UTC)
	store := New(signedIn("u1"), backend, WithClock(steppingClock(start)))
	ctx := context.Background()

	first, err := store.Save(ctx, models.NoteTypeDiary, "2025-09-30", "A")
	if err != nil {
		t.Fatalf("Save A failed: %v", err)
	}
	second, err := store.Save(ctx, models.NoteTypeDiary, "2025-09-30", "B")
	if err != nil {
		t.Fatalf("Save B failed: %v", err)
	}

	got, found, err := store.Load(ctx, models.NoteTypeDiary, "2025-09-30")
	if err != nil || !found {
		t.Fatalf("Load = %v, %v", found, err)
	}
	if got.Content != "B" {
		t.Errorf("content = %q, want B", got.Content)
	}
	if second.ID != first.ID {
		t.Errorf("overwrite changed id from %s to %s", first.ID, second.ID)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("overwrite changed created_at")
	}

	all, err := store.List(ctx, models.NoteTypeDiary)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected one record, got %d", len(all))
	}
}

func TestIdempotentSaveAdvancesUpdatedAt(t *testing.T) {
	start := time.Date(2025, 9, 30, 8, 0, 0, 0, time.UTC)
	store := New(signedIn("u1"), newMemBackend(), WithClock(steppingClock(start)))
	ctx := context.Background()

	first, err := store.Save(ctx, models.NoteTypeDiary, "2025-09-30", "same")
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.Save(ctx, models.NoteTypeDiary, "2025-09-30", "same")
	if err != nil {
		t.Fatal(err)
	}
	if second.Content != "same" {
		t.Errorf("content = %q", second.Content)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("updated_at did not advance: %v then %v", first.UpdatedAt, second.UpdatedAt)
	}
}

func TestNotesAreScopedToUserAndType(t *testing.T) {
	backend := newMemBackend()
	ctx := context.Background()
	alice := New(signedIn("alice"), backend)
	bob := New(signedIn("bob"), backend)

	if _, err := alice.Save(ctx, models.NoteTypeDiary, "2025-09-30", "alice diary"); err != nil {
		t.Fatal(err)
	}

	if _, found, _ := bob.Load(ctx, models.NoteTypeDiary, "2025-09-30"); found {
		t.Error("bob can see alice's diary")
	}
	if _, found, _ := alice.Load(ctx, models.NoteTypeSchedule, "2025-09-30"); found {
		t.Error("diary note visible as schedule")
	}
}

func TestSaveAsyncPreservesIssueOrder(t *testing.T) {
	backend := newMemBackend()
	backend.gate = make(chan struct{})
	store := New(signedIn("u1"), backend)
	ctx := context.Background()

	var results []<-chan error
	for _, content := range []string{"A", "B", "C"} {
		results = append(results, store.SaveAsync(ctx, models.NoteTypeSchedule, "2025-09-30", content))
	}

	// Let the writers through one at a time; only the head of the queue may be waiting on the gate.
	for range results {
		backend.gate <- struct{}{}
	}
	for i, r := range results {
		if err := <-r; err != nil {
			t.Fatalf("save %d failed: %v", i, err)
		}
	}

	backend.mu.Lock()
	order := fmt.Sprint(backend.upserts)
	backend.mu.Unlock()
	if order != "[A B C]" {
		t.Errorf("writes applied as %s, want [A B C]", order)
	}

	note, _, err := store.Load(ctx, models.NoteTypeSchedule, "2025-09-30")
	if err != nil {
		t.Fatal(err)
	}
	if note.Content != "C" {
		t.Errorf("final content = %q, want C", note.Content)
	}
}

func TestLoadWaitsForQueuedWrites(t *testing.T) {
	backend := newMemBackend()
	backend.gate = make(chan struct{})
	store := New(signedIn("u1"), backend)
	ctx := context.Background()

	saved := store.SaveAsync(ctx, models.NoteTypeSchedule, "2025-09-30", "X")

	type loadResult struct {
		note  models.DateNote
		found bool
		err   error
	}
	loaded := make(chan loadResult, 1)
	go func() {
		note, found, err := store.Load(ctx, models.NoteTypeSchedule, "2025-09-30")
		loaded <- loadResult{note, found, err}
	}()

	select {
	case r := <-loaded:
		t.Fatalf("Load returned before the queued write landed: %+v", r)
	case <-time.After(100 * time.Millisecond):
	}

	backend.gate <- struct{}{}
	if err := <-saved; err != nil {
		t.Fatalf("save failed: %v", err)
	}
	r := <-loaded
	if r.err != nil || !r.found || r.note.Content != "X" {
		t.Errorf("Load = (%q, %v, %v), want X", r.note.Content, r.found, r.err)
	}
}

func TestLoadGivesUpWaitingOnContext(t *testing.T) {
	backend := newMemBackend()
	backend.gate = make(chan struct{})
	store := New(signedIn("u1"), backend)

	saveCtx, cancelSave := context.WithCancel(context.Background())
	defer cancelSave()
	saved := store.SaveAsync(saveCtx, models.NoteTypeSchedule, "2025-09-30", "X")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, _, err := store.Load(ctx, models.NoteTypeSchedule, "2025-09-30")
	if !errors.Is(err, ErrConnectivity) {
		t.Errorf("Load error = %v, want %v", err, ErrConnectivity)
	}

	cancelSave()
	<-saved
}

func TestDifferentKeysDoNotQueue(t *testing.T) {
	backend := newMemBackend()
	store := New(signedIn("u1"), backend)
	ctx := context.Background()

	blocked := make(chan struct{})
	prev, done := store.reserve(models.NoteKey{UserID: "u1", NoteType: models.NoteTypeSchedule, Date: "2025-09-30"})
	if prev != nil {
		t.Fatal("fresh key should have no predecessor")
	}
	go func() {
		<-blocked
		store.release(models.NoteKey{UserID: "u1", NoteType: models.NoteTypeSchedule, Date: "2025-09-30"}, done)
	}()

	select {
	case err := <-store.SaveAsync(ctx, models.NoteTypeSchedule, "2025-10-01", "other"):
		if err != nil {
			t.Fatalf("save failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("save for another date waited on an unrelated key")
	}
	close(blocked)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"bad conn", driver.ErrBadConn, ErrConnectivity},
		{"deadline", context.DeadlineExceeded, ErrConnectivity},
		{"wrapped deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), ErrConnectivity},
		{"constraint", errors.New("CHECK constraint failed"), ErrBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newMemBackend()
			backend.err = tt.err
			store := New(signedIn("u1"), backend)

			_, _, err := store.Load(context.Background(), models.NoteTypeDiary, "2025-09-30")
			if !errors.Is(err, tt.want) {
				t.Errorf("Load error = %v, want %v", err, tt.want)
			}
			_, err = store.Save(context.Background(), models.NoteTypeDiary, "2025-09-30", "x")
			if !errors.Is(err, tt.want) {
				t.Errorf("Save error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestErrorsNameTheNote(t *testing.T) {
	backend := newMemBackend()
	backend.err = errors.New("CHECK constraint failed")
	store := New(signedIn("u1"), backend)

	_, err := store.Save(context.Background(), models.NoteTypeSchedule, "2025-09-30", "x")
	var noteErr *apperrors.NoteError
	if !errors.As(err, &noteErr) {
		t.Fatalf("Save error %v does not carry the note", err)
	}
	if noteErr.Op != "save" || noteErr.NoteType != models.NoteTypeSchedule || noteErr.Date != "2025-09-30" {
		t.Errorf("NoteError = %+v", noteErr)
	}
	want := "failed to save schedule note for 2025-09-30: note backend error: CHECK constraint failed"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	_, err = store.List(context.Background(), models.NoteTypeDiary)
	if !errors.As(err, &noteErr) || noteErr.Op != "list" || noteErr.Date != "" {
		t.Errorf("List error = %v", err)
	}
}

func TestUnknownNoteType(t *testing.T) {
	store := New(signedIn("u1"), newMemBackend())
	if _, _, err := store.Load(context.Background(), models.NoteType("todo"), "2025-09-30"); err == nil {
		t.Error("expected error for unknown note type")
	}
}

func TestTypedScheduleRoundTrip(t *testing.T) {
	store := New(signedIn("u1"), newMemBackend())
	ctx := context.Background()

	in := models.ScheduleNote{Slots: map[string][]string{
		"6:00 AM": {"Exercise for 30 minutes"},
		"9:00 AM": {},
	}}
	if err := <-store.SaveScheduleAsync(ctx, "2025-09-30", in); err != nil {
		t.Fatalf("SaveScheduleAsync failed: %v", err)
	}

	out, found, err := store.LoadSchedule(ctx, "2025-09-30")
	if err != nil || !found {
		t.Fatalf("LoadSchedule = %v, %v", found, err)
	}
	if got := out.Slots["6:00 AM"]; len(got) != 1 || got[0] != "Exercise for 30 minutes" {
		t.Errorf("6:00 AM = %v", got)
	}
	if _, ok := out.Slots["9:00 AM"]; ok {
		t.Error("empty slot should not be persisted")
	}
}

func TestLoadScheduleRejectsCorruptContent(t *testing.T) {
	store := New(signedIn("u1"), newMemBackend())
	ctx := context.Background()

	if _, err := store.Save(ctx, models.NoteTypeSchedule, "2025-09-30", "not json"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := store.LoadSchedule(ctx, "2025-09-30"); !errors.Is(err, ErrBackend) {
		t.Errorf("LoadSchedule error = %v, want %v", err, ErrBackend)
	}
}

func TestDiaryAgainstSQLite(t *testing.T) {
	backend := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := backend.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer backend.Close()

	store := New(signedIn("u1"), backend)
	ctx := context.Background()

	if _, err := store.SaveDiary(ctx, "2025-09-30", models.DiaryNote{Text: "Went for a long walk"}); err != nil {
		t.Fatalf("SaveDiary failed: %v", err)
	}
	if _, err := store.SaveDiary(ctx, "2025-10-01", models.DiaryNote{Text: "Rain"}); err != nil {
		t.Fatalf("SaveDiary failed: %v", err)
	}

	diary, found, err := store.LoadDiary(ctx, "2025-09-30")
	if err != nil || !found {
		t.Fatalf("LoadDiary = %v, %v", found, err)
	}
	if diary.WordCount() != 5 {
		t.Errorf("WordCount = %d, want 5", diary.WordCount())
	}

	n, err := store.Clear(ctx, models.NoteTypeDiary)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Clear removed %d, want 2", n)
	}
	if _, found, _ := store.LoadDiary(ctx, "2025-09-30"); found {
		t.Error("diary still present after Clear")
	}
}
