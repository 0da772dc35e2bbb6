package schedule

import (
	"errors"
	"testing"

	"github.com/julianstephens/dailyfocus/internal/planner"
)

func TestParseSlot(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"7:00 AM", "7:00 AM"},
		{"7:00 pm", "7:00 PM"},
		{"12:00 PM", "12:00 PM"},
		{"19", "7:00 PM"},
		{"0", "12:00 AM"},
		{"6", "6:00 AM"},
		{"7pm", "7:00 PM"},
		{"11 AM", "11:00 AM"},
		{" 9am ", "9:00 AM"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSlot(tt.input)
			if err != nil {
				t.Fatalf("ParseSlot(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseSlot(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseSlotRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "24", "-1", "7:30 AM", "noon", "13pm"} {
		if _, err := ParseSlot(input); !errors.Is(err, planner.ErrUnknownSlot) {
			t.Errorf("ParseSlot(%q) error = %v, want ErrUnknownSlot", input, err)
		}
	}
}
