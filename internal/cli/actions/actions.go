package actions

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/dailyfocus/internal/cli"
)

var (
	idStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Width(4)
	metaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

type ActionsCmd struct {
	Search string `help:"Fuzzy filter on the action title." short:"s"`
}

func (c *ActionsCmd) Run(ctx *cli.Context) error {
	actions := ctx.Catalog.Search(c.Search)
	if len(actions) == 0 {
		fmt.Printf("No actions match %q\n", c.Search)
		return nil
	}

	for _, a := range actions {
		title := lipgloss.NewStyle().Foreground(lipgloss.Color(a.Color())).Bold(true).Render(a.Title)
		fmt.Printf("%s%s\n", idStyle.Render(a.ID), title)
		fmt.Printf("%s%s\n", idStyle.Render(""), metaStyle.Render(fmt.Sprintf("%s · %s · %s", a.DurationLabel(), a.Frequency, a.Category)))
	}
	return nil
}
