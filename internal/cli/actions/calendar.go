package actions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/dailyfocus/internal/cli"
	"github.com/julianstephens/dailyfocus/internal/models"
	"github.com/julianstephens/dailyfocus/internal/utils"
)

var (
	todayStyle    = lipgloss.NewStyle().Reverse(true)
	diaryStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b"))
	scheduleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3b82f6"))
)

type CalendarCmd struct {
	Month string `help:"Month to show (YYYY-MM). Defaults to the current month."`
}

func (c *CalendarCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if _, err := ctx.Open(bg); err != nil {
		return err
	}

	now := time.Now().In(ctx.Location)
	month := utils.ShiftByMonths(now, 0)
	if c.Month != "" {
		var err error
		if month, err = utils.ParseMonth(c.Month, ctx.Location); err != nil {
			return err
		}
	}

	listCtx, cancel := context.WithTimeout(bg, ctx.SaveTimeout())
	defer cancel()
	marks := map[models.DateKey]models.NoteType{}
	for _, t := range []models.NoteType{models.NoteTypeSchedule, models.NoteTypeDiary} {
		notes, err := ctx.Notes.List(listCtx, t)
		if err != nil {
			return err
		}
		for _, n := range notes {
			marks[n.Date] = t
		}
	}

	fmt.Print(Render(month, now, marks))
	fmt.Printf("\n%s diary  %s schedule\n", diaryStyle.Render("●"), scheduleStyle.Render("●"))
	return nil
}

// Render draws month as a Sunday-first grid. Days with a note are colored by
// note type, diary taking precedence; today is highlighted.
func Render(month, today time.Time, marks map[models.DateKey]models.NoteType) string {
	var b strings.Builder
	title := month.Format("January 2006")
	fmt.Fprintf(&b, "%s%s\n", strings.Repeat(" ", (20-len(title))/2), title)
	b.WriteString("Su Mo Tu We Th Fr Sa\n")

	for _, week := range utils.MonthGrid(month) {
		cells := make([]string, len(week))
		for i, day := range week {
			if day == 0 {
				cells[i] = "  "
				continue
			}
			date := time.Date(month.Year(), month.Month(), day, 0, 0, 0, 0, month.Location())
			cell := fmt.Sprintf("%2d", day)
			key, _ := utils.ToDateKeyIn(date, month.Location())
			switch marks[key] {
			case models.NoteTypeDiary:
				cell = diaryStyle.Render(cell)
			case models.NoteTypeSchedule:
				cell = scheduleStyle.Render(cell)
			}
			if utils.IsSameDay(date, today) {
				cell = todayStyle.Render(cell)
			}
			cells[i] = cell
		}
		b.WriteString(strings.Join(cells, " "))
		b.WriteString("\n")
	}
	return b.String()
}
