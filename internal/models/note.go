package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateKey is a calendar day in YYYY-MM-DD form, independent of time-of-day
type DateKey string

func (k DateKey) String() string { return string(k) }

// NoteType tags which kind of content a DateNote carries
type NoteType string

const (
	NoteTypeDiary    NoteType = "diary"
	NoteTypeSchedule NoteType = "schedule"
)

// Valid reports whether t is a known note type
func (t NoteType) Valid() bool {
	return t == NoteTypeDiary || t == NoteTypeSchedule
}

// ParseNoteType converts user input into a NoteType
func ParseNoteType(s string) (NoteType, error) {
	t := NoteType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown note type %q (expected %q or %q)", s, NoteTypeDiary, NoteTypeSchedule)
	}
	return t, nil
}

// NoteKey identifies a single note; the backing store keeps at most one row per key
type NoteKey struct {
	UserID   string
	NoteType NoteType
	Date     DateKey
}

// DateNote is the persisted unit for every date-scoped note kind
type DateNote struct {
	ID        string    `json:"id" yaml:"id"`
	UserID    string    `json:"user_id" yaml:"user_id"`
	NoteType  NoteType  `json:"note_type" yaml:"note_type"`
	Date      DateKey   `json:"date" yaml:"date"`
	Content   string    `json:"content" yaml:"content"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Key returns the uniqueness key of the note
func (n DateNote) Key() NoteKey {
	return NoteKey{UserID: n.UserID, NoteType: n.NoteType, Date: n.Date}
}

// Content is implemented by the typed note kinds that can be stored as a DateNote
type Content interface {
	NoteType() NoteType
	Encode() (string, error)
}

// DiaryNote is free-form diary text for a day
type DiaryNote struct {
	Text string
}

func (DiaryNote) NoteType() NoteType { return NoteTypeDiary }

func (d DiaryNote) Encode() (string, error) { return d.Text, nil }

// WordCount counts whitespace-separated words
func (d DiaryNote) WordCount() int {
	return len(strings.Fields(d.Text))
}

// DecodeDiary wraps stored diary content
func DecodeDiary(content string) DiaryNote {
	return DiaryNote{Text: content}
}

// ScheduleNote maps slot ids ("6:00 AM") to their ordered entries
type ScheduleNote struct {
	Slots map[string][]string
}

func (ScheduleNote) NoteType() NoteType { return NoteTypeSchedule }

// Encode serializes the assignment as a JSON object. Empty slots are omitted.
func (s ScheduleNote) Encode() (string, error) {
	out := make(map[string][]string, len(s.Slots))
	for id, entries := range s.Slots {
		if len(entries) == 0 {
			continue
		}
		out[id] = entries
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("failed to encode schedule: %w", err)
	}
	return string(data), nil
}

// DecodeSchedule parses stored schedule content. Empty content is an empty schedule.
func DecodeSchedule(content string) (ScheduleNote, error) {
	note := ScheduleNote{Slots: map[string][]string{}}
	if strings.TrimSpace(content) == "" {
		return note, nil
	}
	if err := json.Unmarshal([]byte(content), &note.Slots); err != nil {
		return ScheduleNote{}, fmt.Errorf("failed to decode schedule: %w", err)
	}
	if note.Slots == nil {
		note.Slots = map[string][]string{}
	}
	return note, nil
}

// SlotIDs returns the ids of non-empty slots ordered by start hour.
// Ids that are not valid slot labels sort last, alphabetically.
func (s ScheduleNote) SlotIDs() []string {
	ids := make([]string, 0, len(s.Slots))
	for id, entries := range s.Slots {
		if len(entries) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		hi, okI := SlotHour(ids[i])
		hj, okJ := SlotHour(ids[j])
		switch {
		case okI && okJ:
			return hi < hj
		case okI != okJ:
			return okI
		default:
			return ids[i] < ids[j]
		}
	})
	return ids
}
