package system

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/dailyfocus/internal/cli"
	"github.com/julianstephens/dailyfocus/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.Open(context.Background()); err != nil {
		return err
	}

	ctx.PerformAutomaticBackup()

	p, err := ctx.NewPlanner(context.Background())
	if err != nil {
		return err
	}
	defer p.Close()

	program := tea.NewProgram(tui.NewModel(p, ctx.Catalog, ctx.Location), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui exited with error: %w", err)
	}
	return nil
}
