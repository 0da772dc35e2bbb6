package models

import (
	"fmt"
	"time"
)

// TimeSlot is one hour-of-day bucket in a day's schedule
type TimeSlot struct {
	Hour    int      `json:"hour"`
	Entries []string `json:"entries"`
}

// ID returns the slot identifier, which is also its label ("6:00 AM")
func (s TimeSlot) ID() string {
	return SlotID(s.Hour)
}

// Period returns AM or PM for the slot's start hour
func (s TimeSlot) Period() string {
	if s.Hour < 12 {
		return "AM"
	}
	return "PM"
}

// SlotID derives the slot identifier from a 24-hour start hour
func SlotID(hour int) string {
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:00 %s", h, period)
}

// SlotHour parses a slot identifier back into its 24-hour start hour
func SlotHour(id string) (int, bool) {
	t, err := time.Parse("3:04 PM", id)
	if err != nil || t.Minute() != 0 {
		return 0, false
	}
	return t.Hour(), true
}
