package models

import (
	"reflect"
	"testing"
)

func TestScheduleEncodeOmitsEmptySlots(t *testing.T) {
	note := ScheduleNote{Slots: map[string][]string{
		"6:00 AM": {"Exercise for 30 minutes"},
		"7:00 AM": {},
	}}
	content, err := note.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if content != `{"6:00 AM":["Exercise for 30 minutes"]}` {
		t.Errorf("Encode() = %s", content)
	}

	decoded, err := DecodeSchedule(content)
	if err != nil {
		t.Fatalf("DecodeSchedule failed: %v", err)
	}
	if len(decoded.Slots) != 1 {
		t.Errorf("decoded %d slots", len(decoded.Slots))
	}
}

func TestDecodeSchedule(t *testing.T) {
	for _, content := range []string{"", "  ", "null"} {
		note, err := DecodeSchedule(content)
		if err != nil || note.Slots == nil || len(note.Slots) != 0 {
			t.Errorf("DecodeSchedule(%q) = %+v, %v", content, note, err)
		}
	}
	if _, err := DecodeSchedule("[1,2"); err == nil {
		t.Error("expected error for malformed content")
	}
}

func TestScheduleSlotIDsOrder(t *testing.T) {
	note := ScheduleNote{Slots: map[string][]string{
		"1:00 PM":  {"b"},
		"9:00 AM":  {"a"},
		"bogus":    {"z"},
		"12:00 PM": {"c"},
		"8:00 AM":  {},
	}}
	want := []string{"9:00 AM", "12:00 PM", "1:00 PM", "bogus"}
	if got := note.SlotIDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("SlotIDs() = %v, want %v", got, want)
	}
}

func TestParseNoteType(t *testing.T) {
	if nt, err := ParseNoteType(" Diary "); err != nil || nt != NoteTypeDiary {
		t.Errorf("ParseNoteType(Diary) = %q, %v", nt, err)
	}
	if _, err := ParseNoteType("todo"); err == nil {
		t.Error("expected error for unknown note type")
	}
}

func TestDiaryWordCount(t *testing.T) {
	if n := DecodeDiary("  Morning run,\nthen  coffee ").WordCount(); n != 4 {
		t.Errorf("WordCount() = %d, want 4", n)
	}
	if n := DecodeDiary("").WordCount(); n != 0 {
		t.Errorf("empty WordCount() = %d", n)
	}
}
