package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/dailyfocus/internal/catalog"
	"github.com/julianstephens/dailyfocus/internal/planner"
	"github.com/julianstephens/dailyfocus/internal/tui/components/picker"
	"github.com/julianstephens/dailyfocus/internal/tui/components/slotgrid"
	"github.com/julianstephens/dailyfocus/internal/utils"
)

type Mode int

const (
	ModeBrowse Mode = iota
	ModeInput
	ModePicker
)

// eventMsg carries a planner completion into the update loop.
type eventMsg struct {
	event planner.Event
}

// eventsClosedMsg is sent once the planner has shut down.
type eventsClosedMsg struct{}

type Model struct {
	planner  *planner.Planner
	catalog  *catalog.Catalog
	loc      *time.Location
	now      func() time.Time
	keys     KeyMap
	help     help.Model
	grid     slotgrid.Model
	picker   picker.Model
	input    textinput.Model
	mode     Mode
	status   string
	quitting bool
	width    int
	height   int
}

func NewModel(p *planner.Planner, cat *catalog.Catalog, loc *time.Location) Model {
	if cat == nil {
		cat = catalog.Default()
	}
	if loc == nil {
		loc = time.Local
	}

	ti := textinput.New()
	ti.Placeholder = "what are you doing this hour?"
	ti.Prompt = "+ "
	ti.CharLimit = 200

	return Model{
		planner: p,
		catalog: cat,
		loc:     loc,
		now:     time.Now,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		grid:    slotgrid.New(0, 0),
		picker:  picker.New(cat),
		input:   ti,
		mode:    ModeBrowse,
	}
}

// Init opens today and starts listening for planner events.
func (m Model) Init() tea.Cmd {
	if err := m.planner.SelectDate(utils.StartOfDay(m.now().In(m.loc))); err != nil {
		return tea.Batch(func() tea.Msg { return errMsg{err: err} }, waitForEvent(m.planner))
	}
	return waitForEvent(m.planner)
}

// waitForEvent blocks on the next planner event. Update re-arms it after each one.
func waitForEvent(p *planner.Planner) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-p.Events()
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{event: ev}
	}
}

// selectDate runs inside Update so a following shift starts from t.
// SelectDate only starts the load, so it does not block the loop.
func (m *Model) selectDate(t time.Time) {
	if err := m.planner.SelectDate(t); err != nil {
		m.status = dangerStyle.Render(err.Error())
		return
	}
	m.refresh()
}

type errMsg struct {
	err error
}

func (m *Model) refresh() {
	m.grid.SetSlots(m.planner.Slots())
}
