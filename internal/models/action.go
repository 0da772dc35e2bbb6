package models

import (
	"fmt"
	"time"
)

// Frequency is how often an action is meant to recur
type Frequency string

// Category groups actions and determines their display color
type Category string

const (
	FrequencyDaily       Frequency = "daily"
	FrequencyThreeWeekly Frequency = "3x-week"
	FrequencyWeekly      Frequency = "weekly"

	CategoryHealth   Category = "health"
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryLearning Category = "learning"
)

var categoryColors = map[Category]string{
	CategoryHealth:   "#10b981",
	CategoryWork:     "#3b82f6",
	CategoryPersonal: "#f59e0b",
	CategoryLearning: "#8b5cf6",
}

// Action is a predefined recurring task template. Actions are copied by title
// into a slot; the slot keeps no reference back to the catalog.
type Action struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Duration  time.Duration `json:"duration"`
	Frequency Frequency     `json:"frequency"`
	Category  Category      `json:"category"`
}

// Color returns the hex display color for the action's category
func (a Action) Color() string {
	if c, ok := categoryColors[a.Category]; ok {
		return c
	}
	return "#6b7280"
}

// DurationLabel formats the duration the way the planner displays it ("30 min", "1h 30m")
func (a Action) DurationLabel() string {
	mins := int(a.Duration.Minutes())
	if mins < 60 {
		return fmt.Sprintf("%d min", mins)
	}
	if mins%60 == 0 {
		return fmt.Sprintf("%dh", mins/60)
	}
	return fmt.Sprintf("%dh %dm", mins/60, mins%60)
}

// String returns the human-readable frequency
func (f Frequency) String() string {
	switch f {
	case FrequencyDaily:
		return "daily"
	case FrequencyThreeWeekly:
		return "3x per week"
	case FrequencyWeekly:
		return "weekly"
	default:
		return "unknown"
	}
}
