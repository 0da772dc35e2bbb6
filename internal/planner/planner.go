package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/dailyfocus/internal/catalog"
	"github.com/julianstephens/dailyfocus/internal/constants"
	"github.com/julianstephens/dailyfocus/internal/logger"
	"github.com/julianstephens/dailyfocus/internal/models"
	"github.com/julianstephens/dailyfocus/internal/utils"
)

var (
	// ErrNotReady is returned by mutations while the active date is not loaded.
	ErrNotReady = errors.New("schedule is not loaded")
	// ErrUnknownSlot is returned for a slot id outside the grid.
	ErrUnknownSlot = errors.New("unknown time slot")
	// ErrEmptyEntry is returned when free text is blank.
	ErrEmptyEntry = errors.New("entry text is empty")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("planner is closed")
)

// State is the planner's lifecycle for the active date.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateLoadError
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateLoadError:
		return "load error"
	default:
		return "unknown"
	}
}

// EventKind identifies an async completion.
type EventKind int

const (
	EventLoaded EventKind = iota
	EventLoadFailed
	EventSaved
	EventSaveFailed
)

func (k EventKind) String() string {
	switch k {
	case EventLoaded:
		return "loaded"
	case EventLoadFailed:
		return "load failed"
	case EventSaved:
		return "saved"
	case EventSaveFailed:
		return "save failed"
	default:
		return "unknown"
	}
}

// Event reports a load or save completion for the active date. Completions
// that finish after a date switch are dropped, but one already being
// delivered when the switch happens can still arrive; check it with Current.
type Event struct {
	Kind EventKind
	Date models.DateKey
	Err  error

	gen uint64
}

// ScheduleStore is the persistence the planner needs. *notes.Store implements it.
type ScheduleStore interface {
	LoadSchedule(ctx context.Context, key models.DateKey) (models.ScheduleNote, bool, error)
	SaveScheduleAsync(ctx context.Context, key models.DateKey, schedule models.ScheduleNote) <-chan error
}

// Option configures a Planner.
type Option func(*Planner)

// WithHours sets the first and last slot start hours (inclusive).
func WithHours(start, end int) Option {
	return func(p *Planner) {
		p.startHour = start
		p.endHour = end
	}
}

// WithLocation sets the zone used to derive date keys.
func WithLocation(loc *time.Location) Option {
	return func(p *Planner) { p.loc = loc }
}

// WithContext sets the parent context for all store calls.
func WithContext(ctx context.Context) Option {
	return func(p *Planner) { p.ctx = ctx }
}

// WithSaveTimeout bounds each load and save.
func WithSaveTimeout(d time.Duration) Option {
	return func(p *Planner) { p.timeout = d }
}

// WithEventBuffer sets the capacity of the Events channel.
func WithEventBuffer(n int) Option {
	return func(p *Planner) { p.buffer = n }
}

// Planner owns the hourly slot grid for one active date at a time. Mutations
// apply to memory immediately and persist asynchronously; results arrive on
// Events. A generation counter, bumped on every date selection, discards
// completions that belong to a date the user has left.
type Planner struct {
	store     ScheduleStore
	catalog   *catalog.Catalog
	startHour int
	endHour   int
	loc       *time.Location
	ctx       context.Context
	timeout   time.Duration
	buffer    int

	events chan Event
	done   chan struct{}
	wg     sync.WaitGroup

	mu         sync.Mutex
	closed     bool
	state      State
	date       time.Time
	key        models.DateKey
	slots      []models.TimeSlot
	hidden     map[string][]string
	err        error
	generation uint64
	loadCancel context.CancelFunc
	saveSeq    uint64
	failedSeq  uint64
	dirty      bool
	pending    int
}

func New(store ScheduleStore, cat *catalog.Catalog, opts ...Option) (*Planner, error) {
	p := &Planner{
		store:     store,
		catalog:   cat,
		startHour: constants.DefaultStartHour,
		endHour:   constants.DefaultEndHour,
		loc:       time.Local,
		ctx:       context.Background(),
		timeout:   constants.DefaultSaveTimeout,
		buffer:    64,
	}
	for _, opt := range opts {
		opt(p)
	}

	if store == nil {
		return nil, errors.New("planner requires a schedule store")
	}
	if p.catalog == nil {
		p.catalog = catalog.Default()
	}
	if p.startHour < 0 || p.endHour > 23 || p.startHour > p.endHour {
		return nil, fmt.Errorf("invalid slot hours %d-%d", p.startHour, p.endHour)
	}
	if p.loc == nil {
		p.loc = time.Local
	}

	p.events = make(chan Event, p.buffer)
	p.done = make(chan struct{})
	p.slots = newGrid(p.startHour, p.endHour)
	return p, nil
}

// Events delivers load and save completions. It is closed by Close.
func (p *Planner) Events() <-chan Event {
	return p.events
}

// SelectDate makes t's calendar day active: the grid is regenerated empty and
// the stored schedule is loaded in the background.
func (p *Planner) SelectDate(t time.Time) error {
	key, err := utils.ToDateKeyIn(t, p.loc)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}

	p.date = utils.StartOfDay(t.In(p.loc))
	p.key = key
	p.startLoadLocked()
	return nil
}

// Retry reloads the active date, typically after a LoadError.
func (p *Planner) Retry() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if p.state == StateUninitialized {
		return ErrNotReady
	}

	p.startLoadLocked()
	return nil
}

func (p *Planner) startLoadLocked() {
	if p.loadCancel != nil {
		p.loadCancel()
	}

	p.generation++
	p.state = StateLoading
	p.slots = newGrid(p.startHour, p.endHour)
	p.hidden = nil
	p.err = nil
	p.dirty = false
	p.failedSeq = p.saveSeq

	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	p.loadCancel = cancel

	gen, key := p.generation, p.key
	p.wg.Add(1)
	go p.load(ctx, cancel, gen, key)
}

func (p *Planner) load(ctx context.Context, cancel context.CancelFunc, gen uint64, key models.DateKey) {
	defer p.wg.Done()
	defer cancel()

	schedule, found, err := p.store.LoadSchedule(ctx, key)

	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		logger.Debug("Discarding stale schedule load", "date", key)
		return
	}

	ev := Event{Kind: EventLoaded, Date: key, gen: gen}
	if err != nil {
		p.state = StateLoadError
		p.err = err
		ev = Event{Kind: EventLoadFailed, Date: key, Err: err, gen: gen}
		logger.Warn("Failed to load schedule", "date", key, "error", err)
	} else {
		if found {
			p.hidden = merge(p.slots, schedule)
			if len(p.hidden) > 0 {
				logger.Warn("Keeping entries for slots outside the grid", "date", key, "slots", len(p.hidden))
			}
		}
		p.state = StateReady
	}
	p.mu.Unlock()

	p.emit(ev)
}

// AssignFreeText appends text to the slot's entries.
func (p *Planner) AssignFreeText(slotID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyEntry
	}
	return p.mutate(slotID, func(s *models.TimeSlot) bool {
		s.Entries = append(s.Entries, text)
		return true
	})
}

// AssignFromCatalog appends the catalog action's title to the slot's entries.
// The title is copied; no reference to the action is kept.
func (p *Planner) AssignFromCatalog(slotID, actionID string) error {
	action, err := p.catalog.Get(actionID)
	if err != nil {
		return err
	}
	return p.mutate(slotID, func(s *models.TimeSlot) bool {
		s.Entries = append(s.Entries, action.Title)
		return true
	})
}

// RemoveEntry deletes the entry at index. An index out of range is a no-op.
func (p *Planner) RemoveEntry(slotID string, index int) error {
	return p.mutate(slotID, func(s *models.TimeSlot) bool {
		if index < 0 || index >= len(s.Entries) {
			return false
		}
		s.Entries = append(s.Entries[:index], s.Entries[index+1:]...)
		return true
	})
}

// Resave persists the current grid again, for recovery after EventSaveFailed.
func (p *Planner) Resave() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.readyLocked(); err != nil {
		return err
	}
	p.saveLocked()
	return nil
}

func (p *Planner) readyLocked() error {
	if p.closed {
		return ErrClosed
	}
	if p.state != StateReady {
		return fmt.Errorf("%w (state: %s)", ErrNotReady, p.state)
	}
	return nil
}

// mutate applies fn to the slot under the lock and, if fn changed it, issues a save.
func (p *Planner) mutate(slotID string, fn func(*models.TimeSlot) bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.readyLocked(); err != nil {
		return err
	}

	i := indexOf(p.slots, slotID)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, slotID)
	}
	if !fn(&p.slots[i]) {
		return nil
	}

	p.saveLocked()
	return nil
}

// saveLocked issues the save while holding the lock so the store sees saves
// in mutation order.
func (p *Planner) saveLocked() {
	p.saveSeq++
	p.pending++
	seq, gen, key := p.saveSeq, p.generation, p.key

	// Detached from date switches: a save for an abandoned date still completes.
	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	result := p.store.SaveScheduleAsync(ctx, key, toSchedule(p.slots, p.hidden))

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer cancel()
		err := <-result
		p.finishSave(seq, gen, key, err)
	}()
}

func (p *Planner) finishSave(seq, gen uint64, key models.DateKey, err error) {
	p.mu.Lock()
	p.pending--
	if gen != p.generation {
		p.mu.Unlock()
		if err != nil {
			logger.Warn("Save for a previously viewed date failed", "date", key, "error", err)
		} else {
			logger.Debug("Save for a previously viewed date completed", "date", key)
		}
		return
	}

	ev := Event{Kind: EventSaved, Date: key, gen: gen}
	if err != nil {
		p.dirty = true
		if seq > p.failedSeq {
			p.failedSeq = seq
		}
		ev = Event{Kind: EventSaveFailed, Date: key, Err: err, gen: gen}
		logger.Warn("Failed to save schedule", "date", key, "error", err)
	} else if seq > p.failedSeq {
		p.dirty = false
	}
	p.mu.Unlock()

	p.emit(ev)
}

func (p *Planner) emit(ev Event) {
	select {
	case p.events <- ev:
	case <-p.done:
	}
}

// Current reports whether ev belongs to the active date selection. An event
// emitted just before a SelectDate or Retry is not current.
func (p *Planner) Current(ev Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.closed && ev.gen == p.generation
}

// Await blocks until a current event of one of kinds arrives, skipping others.
func (p *Planner) Await(ctx context.Context, kinds ...EventKind) (Event, error) {
	for {
		select {
		case ev, ok := <-p.events:
			if !ok {
				return Event{}, ErrClosed
			}
			if !p.Current(ev) {
				continue
			}
			for _, k := range kinds {
				if ev.Kind == k {
					return ev, nil
				}
			}
		case <-ctx.Done():
			return Event{}, ctx.Err()
		}
	}
}

// Close waits for in-flight saves, abandons any pending load and closes Events.
func (p *Planner) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.generation++
	if p.loadCancel != nil {
		p.loadCancel()
	}
	p.mu.Unlock()

	close(p.done)
	p.wg.Wait()
	close(p.events)
}

func (p *Planner) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Date returns midnight of the active day in the planner's location.
func (p *Planner) Date() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.date
}

func (p *Planner) Key() models.DateKey {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.key
}

// Slots returns a copy of the grid.
func (p *Planner) Slots() []models.TimeSlot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return cloneSlots(p.slots)
}

// Slot returns a copy of one slot.
func (p *Planner) Slot(id string) (models.TimeSlot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := indexOf(p.slots, id)
	if i < 0 {
		return models.TimeSlot{}, false
	}
	return cloneSlots(p.slots[i : i+1])[0], true
}

// Err returns the load error while in StateLoadError.
func (p *Planner) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Dirty reports whether the latest save for the active date failed and no later save has succeeded.
func (p *Planner) Dirty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dirty
}

// Saving reports whether saves are in flight.
func (p *Planner) Saving() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending > 0
}
