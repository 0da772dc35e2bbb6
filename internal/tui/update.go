package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/dailyfocus/internal/planner"
	"github.com/julianstephens/dailyfocus/internal/tui/components/picker"
	"github.com/julianstephens/dailyfocus/internal/utils"
)

// headerLines is the number of rows reserved above and below the grid.
const headerLines = 6

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.grid.SetSize(msg.Width-2, max(msg.Height-headerLines, 3))
		return m, nil

	case eventMsg:
		if m.planner.Current(msg.event) {
			m.handleEvent(msg.event)
		}
		return m, waitForEvent(m.planner)

	case eventsClosedMsg:
		return m, nil

	case errMsg:
		m.status = dangerStyle.Render(msg.err.Error())
		return m, nil

	case picker.PickedMsg:
		m.mode = ModeBrowse
		if slot, ok := m.grid.Selected(); ok {
			m.apply(m.planner.AssignFromCatalog(slot.ID(), msg.Action.ID))
		}
		return m, nil

	case picker.CancelMsg:
		m.mode = ModeBrowse
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeInput:
			return m.updateInput(msg)
		case ModePicker:
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)
			return m, cmd
		default:
			return m.updateBrowse(msg)
		}
	}

	return m, nil
}

func (m *Model) handleEvent(ev planner.Event) {
	switch ev.Kind {
	case planner.EventLoaded:
		m.status = ""
	case planner.EventLoadFailed:
		m.status = dangerStyle.Render(fmt.Sprintf("Could not load %s: %v (r to retry)", ev.Date, ev.Err))
	case planner.EventSaved:
		m.status = mutedStyle.Render("Saved")
	case planner.EventSaveFailed:
		m.status = warningStyle.Render(fmt.Sprintf("Save failed: %v (s to save again)", ev.Err))
	}
	m.refresh()
}

// apply reports a mutation result and redraws the grid.
func (m *Model) apply(err error) {
	if err != nil {
		m.status = dangerStyle.Render(err.Error())
	} else {
		m.status = mutedStyle.Render("Saving…")
	}
	m.refresh()
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.PrevDay):
		m.shiftDay(-1)
	case key.Matches(msg, m.keys.NextDay):
		m.shiftDay(1)
	case key.Matches(msg, m.keys.Today):
		m.status = ""
		m.selectDate(utils.StartOfDay(m.now().In(m.loc)))
	case key.Matches(msg, m.keys.Up):
		m.grid.Move(-1)
	case key.Matches(msg, m.keys.Down):
		m.grid.Move(1)
	case key.Matches(msg, m.keys.Add):
		if m.planner.State() != planner.StateReady {
			m.status = warningStyle.Render("Schedule is still loading")
			return m, nil
		}
		m.mode = ModeInput
		m.input.SetValue("")
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Catalog):
		if m.planner.State() != planner.StateReady {
			m.status = warningStyle.Render("Schedule is still loading")
			return m, nil
		}
		m.mode = ModePicker
		cmd := m.picker.Reset()
		return m, cmd
	case key.Matches(msg, m.keys.Remove):
		if slot, ok := m.grid.Selected(); ok && len(slot.Entries) > 0 {
			m.apply(m.planner.RemoveEntry(slot.ID(), len(slot.Entries)-1))
		}
	case key.Matches(msg, m.keys.Retry):
		if err := m.planner.Retry(); err != nil {
			m.status = dangerStyle.Render(err.Error())
		} else {
			m.status = mutedStyle.Render("Loading…")
			m.refresh()
		}
	case key.Matches(msg, m.keys.Save):
		m.apply(m.planner.Resave())
	}
	return m, nil
}

func (m *Model) shiftDay(delta int) {
	current := m.planner.Date()
	if current.IsZero() {
		current = utils.StartOfDay(m.now().In(m.loc))
	}
	m.selectDate(utils.ShiftByDays(current, delta))
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeBrowse
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.mode = ModeBrowse
		m.input.Blur()
		if slot, ok := m.grid.Selected(); ok {
			m.apply(m.planner.AssignFreeText(slot.ID(), m.input.Value()))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}
