package slotgrid

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/dailyfocus/internal/models"
)

var (
	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(10)

	selectedTimeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true).
				Width(10)

	entryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")).
			Italic(true)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))
)

// Model renders the hourly grid with one selected slot.
type Model struct {
	viewport viewport.Model
	slots    []models.TimeSlot
	cursor   int
	width    int
	height   int
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// SetSlots replaces the grid contents, keeping the cursor in range.
func (m *Model) SetSlots(slots []models.TimeSlot) {
	m.slots = slots
	m.clamp()
	m.Render()
}

// Move shifts the cursor by delta slots.
func (m *Model) Move(delta int) {
	m.cursor += delta
	m.clamp()
	m.Render()
}

// Selected returns the slot under the cursor.
func (m Model) Selected() (models.TimeSlot, bool) {
	if m.cursor < 0 || m.cursor >= len(m.slots) {
		return models.TimeSlot{}, false
	}
	return m.slots[m.cursor], true
}

func (m Model) Cursor() int {
	return m.cursor
}

func (m *Model) clamp() {
	if m.cursor >= len(m.slots) {
		m.cursor = len(m.slots) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) Render() {
	var b strings.Builder
	cursorLine := 0
	line := 0
	for i, slot := range m.slots {
		marker, ts := "  ", timeStyle
		if i == m.cursor {
			marker, ts = cursorStyle.Render("▸ "), selectedTimeStyle
			cursorLine = line
		}

		if len(slot.Entries) == 0 {
			fmt.Fprintf(&b, "%s%s %s\n", marker, ts.Render(slot.ID()), emptyStyle.Render("·"))
			line++
			continue
		}
		for j, entry := range slot.Entries {
			label := ""
			if j == 0 {
				label = slot.ID()
			} else {
				marker = "  "
			}
			fmt.Fprintf(&b, "%s%s %s\n", marker, ts.Render(label), entryStyle.Render(entry))
			line++
		}
	}
	m.viewport.SetContent(strings.TrimRight(b.String(), "\n"))

	// Keep the cursor visible.
	if m.viewport.Height > 0 {
		if cursorLine < m.viewport.YOffset {
			m.viewport.SetYOffset(cursorLine)
		} else if cursorLine >= m.viewport.YOffset+m.viewport.Height {
			m.viewport.SetYOffset(cursorLine - m.viewport.Height + 1)
		}
	}
}
