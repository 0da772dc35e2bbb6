package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/dailyfocus/internal/cli"
	"github.com/julianstephens/dailyfocus/internal/constants"
	"github.com/julianstephens/dailyfocus/internal/models"
	"github.com/julianstephens/dailyfocus/internal/planner"
)

type ScheduleCmd struct {
	Show   ShowCmd   `cmd:"" help:"Show the schedule for a day." default:"1"`
	Add    AddCmd    `cmd:"" help:"Add free text to a time slot."`
	Apply  ApplyCmd  `cmd:"" help:"Add a catalog action to a time slot."`
	Remove RemoveCmd `cmd:"" help:"Remove an entry from a time slot."`
}

// DateFlag is shared by every schedule command.
type DateFlag struct {
	Date string `help:"Day to use (YYYY-MM-DD, today, yesterday, tomorrow)." default:"today"`
}

// session opens a planner on the requested day and waits for its schedule to load.
func (d DateFlag) session(ctx *cli.Context) (*planner.Planner, error) {
	bg := context.Background()
	if _, err := ctx.Open(bg); err != nil {
		return nil, err
	}
	day, _, err := ctx.ResolveDate(d.Date)
	if err != nil {
		return nil, err
	}

	p, err := ctx.NewPlanner(bg)
	if err != nil {
		return nil, err
	}
	if err := p.SelectDate(day); err != nil {
		p.Close()
		return nil, err
	}

	ev, err := await(ctx, p, planner.EventLoaded, planner.EventLoadFailed)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	if ev.Kind == planner.EventLoadFailed {
		p.Close()
		return nil, ev.Err
	}
	return p, nil
}

func await(ctx *cli.Context, p *planner.Planner, kinds ...planner.EventKind) (planner.Event, error) {
	waitCtx, cancel := context.WithTimeout(context.Background(), 2*ctx.SaveTimeout())
	defer cancel()
	return p.Await(waitCtx, kinds...)
}

// commit waits for the save triggered by a mutation.
func commit(ctx *cli.Context, p *planner.Planner) error {
	ev, err := await(ctx, p, planner.EventSaved, planner.EventSaveFailed)
	if err != nil {
		return fmt.Errorf("save did not complete: %w", err)
	}
	if ev.Kind == planner.EventSaveFailed {
		return fmt.Errorf("failed to save schedule: %w", ev.Err)
	}
	return nil
}

// ParseSlot accepts a slot id ("7:00 PM"), a 24-hour hour ("19") or a
// short 12-hour form ("7pm", "7 PM").
func ParseSlot(input string) (string, error) {
	s := strings.TrimSpace(input)
	if hour, ok := models.SlotHour(strings.ToUpper(s)); ok {
		return models.SlotID(hour), nil
	}
	if hour, err := strconv.Atoi(s); err == nil && hour >= 0 && hour <= 23 {
		return models.SlotID(hour), nil
	}
	compact := strings.ToUpper(strings.ReplaceAll(s, " ", ""))
	if t, err := time.Parse("3PM", compact); err == nil {
		return models.SlotID(t.Hour()), nil
	}
	return "", fmt.Errorf("%w: %q", planner.ErrUnknownSlot, input)
}

type ShowCmd struct {
	DateFlag
	All bool `help:"Include empty time slots."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	p, err := c.session(ctx)
	if err != nil {
		return err
	}
	defer p.Close()

	title := p.Date().Format(constants.DisplayDateFormat)
	fmt.Println(title)
	fmt.Println(strings.Repeat("─", len(title)))

	shown := 0
	for _, slot := range p.Slots() {
		if len(slot.Entries) == 0 {
			if c.All {
				fmt.Printf("%8s  ·\n", slot.ID())
			}
			continue
		}
		for i, entry := range slot.Entries {
			label := ""
			if i == 0 {
				label = slot.ID()
			}
			fmt.Printf("%8s  [%d] %s\n", label, i, entry)
		}
		shown++
	}
	if shown == 0 && !c.All {
		fmt.Println("Nothing scheduled.")
	}
	return nil
}

type AddCmd struct {
	DateFlag
	Slot string `arg:"" help:"Time slot (e.g. '7:00 AM', 7am, 19)."`
	Text string `arg:"" help:"Entry text."`
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	slotID, err := ParseSlot(c.Slot)
	if err != nil {
		return err
	}
	p, err := c.session(ctx)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.AssignFreeText(slotID, c.Text); err != nil {
		return err
	}
	if err := commit(ctx, p); err != nil {
		return err
	}
	fmt.Printf("✓ Added to %s: %s\n", slotID, strings.TrimSpace(c.Text))
	return nil
}

type ApplyCmd struct {
	DateFlag
	Slot   string `arg:"" help:"Time slot (e.g. '7:00 AM', 7am, 19)."`
	Action string `arg:"" help:"Catalog action id (see 'dailyfocus actions')."`
}

func (c *ApplyCmd) Run(ctx *cli.Context) error {
	slotID, err := ParseSlot(c.Slot)
	if err != nil {
		return err
	}
	action, err := ctx.Catalog.Get(c.Action)
	if err != nil {
		return err
	}
	p, err := c.session(ctx)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.AssignFromCatalog(slotID, action.ID); err != nil {
		return err
	}
	if err := commit(ctx, p); err != nil {
		return err
	}
	fmt.Printf("✓ Added to %s: %s (%s)\n", slotID, action.Title, action.DurationLabel())
	return nil
}

type RemoveCmd struct {
	DateFlag
	Slot  string `arg:"" help:"Time slot (e.g. '7:00 AM', 7am, 19)."`
	Index int    `arg:"" help:"Entry index as shown by 'schedule show'."`
}

func (c *RemoveCmd) Run(ctx *cli.Context) error {
	slotID, err := ParseSlot(c.Slot)
	if err != nil {
		return err
	}
	p, err := c.session(ctx)
	if err != nil {
		return err
	}
	defer p.Close()

	slot, ok := p.Slot(slotID)
	if !ok {
		return fmt.Errorf("%w: %s", planner.ErrUnknownSlot, slotID)
	}
	if c.Index < 0 || c.Index >= len(slot.Entries) {
		fmt.Printf("⊘ %s has no entry %d, nothing removed\n", slotID, c.Index)
		return nil
	}
	removed := slot.Entries[c.Index]

	if err := p.RemoveEntry(slotID, c.Index); err != nil {
		return err
	}
	if err := commit(ctx, p); err != nil {
		return err
	}
	fmt.Printf("✓ Removed from %s: %s\n", slotID, removed)
	return nil
}
