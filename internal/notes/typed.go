package notes

import (
	"context"
	"fmt"

	apperrors "github.com/julianstephens/dailyfocus/internal/errors"
	"github.com/julianstephens/dailyfocus/internal/models"
)

// LoadDiary returns the diary entry for key.
func (s *Store) LoadDiary(ctx context.Context, key models.DateKey) (models.DiaryNote, bool, error) {
	note, found, err := s.Load(ctx, models.NoteTypeDiary, key)
	if err != nil || !found {
		return models.DiaryNote{}, found, err
	}
	return models.DecodeDiary(note.Content), true, nil
}

// SaveDiary stores the diary entry for key.
func (s *Store) SaveDiary(ctx context.Context, key models.DateKey, diary models.DiaryNote) (models.DateNote, error) {
	return s.saveContent(ctx, key, diary)
}

// LoadSchedule returns the slot assignment for key. Content that cannot be
// decoded is reported as ErrBackend.
func (s *Store) LoadSchedule(ctx context.Context, key models.DateKey) (models.ScheduleNote, bool, error) {
	note, found, err := s.Load(ctx, models.NoteTypeSchedule, key)
	if err != nil || !found {
		return models.ScheduleNote{}, found, err
	}
	schedule, err := models.DecodeSchedule(note.Content)
	if err != nil {
		return models.ScheduleNote{}, false, &apperrors.NoteError{
			Op:       "decode",
			NoteType: models.NoteTypeSchedule,
			Date:     key,
			Err:      fmt.Errorf("%w: %v", ErrBackend, err),
		}
	}
	return schedule, true, nil
}

// SaveSchedule stores the slot assignment for key.
func (s *Store) SaveSchedule(ctx context.Context, key models.DateKey, schedule models.ScheduleNote) (models.DateNote, error) {
	return s.saveContent(ctx, key, schedule)
}

// SaveScheduleAsync is SaveSchedule on a goroutine, ordered like SaveAsync.
func (s *Store) SaveScheduleAsync(ctx context.Context, key models.DateKey, schedule models.ScheduleNote) <-chan error {
	content, err := schedule.Encode()
	if err != nil {
		result := make(chan error, 1)
		result <- err
		return result
	}
	return s.SaveAsync(ctx, models.NoteTypeSchedule, key, content)
}

func (s *Store) saveContent(ctx context.Context, key models.DateKey, c models.Content) (models.DateNote, error) {
	content, err := c.Encode()
	if err != nil {
		return models.DateNote{}, err
	}
	return s.Save(ctx, c.NoteType(), key, content)
}
