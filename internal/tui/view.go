package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/dailyfocus/internal/planner"
	"github.com/julianstephens/dailyfocus/internal/utils"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.mode {
	case ModePicker:
		content = panelStyle.Render(m.picker.View())
	case ModeInput:
		content = lipgloss.JoinVertical(lipgloss.Left, m.grid.View(), "", m.input.View())
	default:
		content = m.grid.View()
	}

	return docStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		"",
		content,
		m.status,
		m.help.View(m.keys),
	))
}

func (m Model) viewHeader() string {
	date := m.planner.Date()
	if date.IsZero() {
		return dateStyle.Render("dailyfocus")
	}

	parts := []string{dateStyle.Render(utils.ToDisplayString(date))}
	if utils.IsSameDay(date, m.now().In(m.loc)) {
		parts = append(parts, " ", todayBadgeStyle.Render("Today"))
	}

	switch m.planner.State() {
	case planner.StateLoading:
		parts = append(parts, " ", mutedStyle.Render("loading…"))
	case planner.StateLoadError:
		parts = append(parts, " ", dangerStyle.Render("load failed"))
	case planner.StateReady:
		if m.planner.Dirty() {
			parts = append(parts, " ", warningStyle.Render("● unsaved"))
		} else if m.planner.Saving() {
			parts = append(parts, " ", mutedStyle.Render("saving…"))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}
