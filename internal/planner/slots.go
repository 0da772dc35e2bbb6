package planner

import (
	"github.com/julianstephens/dailyfocus/internal/models"
)

// newGrid returns one empty slot per hour from start to end inclusive, ascending.
func newGrid(start, end int) []models.TimeSlot {
	slots := make([]models.TimeSlot, 0, end-start+1)
	for h := start; h <= end; h++ {
		slots = append(slots, models.TimeSlot{Hour: h, Entries: []string{}})
	}
	return slots
}

func indexOf(slots []models.TimeSlot, id string) int {
	for i, s := range slots {
		if s.ID() == id {
			return i
		}
	}
	return -1
}

func cloneSlots(slots []models.TimeSlot) []models.TimeSlot {
	out := make([]models.TimeSlot, len(slots))
	for i, s := range slots {
		out[i] = models.TimeSlot{Hour: s.Hour, Entries: append([]string{}, s.Entries...)}
	}
	return out
}

// toSchedule snapshots the grid as the persisted assignment. hidden holds
// stored slots the grid does not show; they are written back unchanged.
func toSchedule(slots []models.TimeSlot, hidden map[string][]string) models.ScheduleNote {
	note := models.ScheduleNote{Slots: make(map[string][]string, len(slots)+len(hidden))}
	for id, entries := range hidden {
		note.Slots[id] = append([]string{}, entries...)
	}
	for _, s := range slots {
		if len(s.Entries) > 0 {
			note.Slots[s.ID()] = append([]string{}, s.Entries...)
		}
	}
	return note
}

// merge copies stored entries into matching slots and returns the slots with
// no place in the grid.
func merge(slots []models.TimeSlot, note models.ScheduleNote) map[string][]string {
	hidden := make(map[string][]string)
	for id, entries := range note.Slots {
		i := indexOf(slots, id)
		if i < 0 {
			if len(entries) > 0 {
				hidden[id] = append([]string{}, entries...)
			}
			continue
		}
		slots[i].Entries = append([]string{}, entries...)
	}
	return hidden
}
