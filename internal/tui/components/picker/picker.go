package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/dailyfocus/internal/catalog"
	"github.com/julianstephens/dailyfocus/internal/models"
)

// PickedMsg is sent when an action is chosen.
type PickedMsg struct {
	Action models.Action
}

// CancelMsg is sent when the picker is dismissed.
type CancelMsg struct{}

type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "assign"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	metaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Model is a fuzzy-filtered chooser over the action catalog.
type Model struct {
	catalog *catalog.Catalog
	input   textinput.Model
	keys    KeyMap
	matches []models.Action
	cursor  int
}

func New(cat *catalog.Catalog) Model {
	ti := textinput.New()
	ti.Placeholder = "filter actions"
	ti.Prompt = "/ "
	ti.CharLimit = 64

	m := Model{catalog: cat, input: ti, keys: DefaultKeyMap()}
	m.filter()
	return m
}

// Reset clears the filter and focuses the input.
func (m *Model) Reset() tea.Cmd {
	m.input.SetValue("")
	m.cursor = 0
	m.filter()
	return m.input.Focus()
}

func (m *Model) filter() {
	m.matches = m.catalog.Search(m.input.Value())
	if m.cursor >= len(m.matches) {
		m.cursor = len(m.matches) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Matches returns the actions that pass the current filter, best first.
func (m Model) Matches() []models.Action {
	return m.matches
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.input.Blur()
			return m, func() tea.Msg { return CancelMsg{} }
		case key.Matches(msg, m.keys.Select):
			if len(m.matches) == 0 {
				return m, nil
			}
			action := m.matches[m.cursor]
			m.input.Blur()
			return m, func() tea.Msg { return PickedMsg{Action: action} }
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.matches)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.filter()
	return m, cmd
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Assign an action") + "\n")
	b.WriteString(m.input.View() + "\n\n")

	if len(m.matches) == 0 {
		b.WriteString(metaStyle.Render("  no matching actions"))
		return b.String()
	}
	for i, a := range m.matches {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(a.Color())).Render("●")
		title := a.Title
		prefix := "  "
		if i == m.cursor {
			prefix = selectedStyle.Render("▸ ")
			title = selectedStyle.Render(title)
		}
		fmt.Fprintf(&b, "%s%s %s %s\n", prefix, swatch, title,
			metaStyle.Render(fmt.Sprintf("%s · %s", a.DurationLabel(), a.Frequency)))
	}
	return strings.TrimRight(b.String(), "\n")
}
