package diary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/dailyfocus/internal/cli"
	"github.com/julianstephens/dailyfocus/internal/constants"
	"github.com/julianstephens/dailyfocus/internal/export"
	"github.com/julianstephens/dailyfocus/internal/logger"
	"github.com/julianstephens/dailyfocus/internal/models"
)

type DiaryCmd struct {
	Show   ShowCmd   `cmd:"" help:"Show the diary entry for a day." default:"1"`
	Write  WriteCmd  `cmd:"" help:"Write (replace) the diary entry for a day."`
	Export ExportCmd `cmd:"" help:"Export notes as JSON, YAML or HTML."`
	Clear  ClearCmd  `cmd:"" help:"Delete every diary entry."`
}

type ShowCmd struct {
	Date   string `help:"Day to show (YYYY-MM-DD, today, yesterday, tomorrow)." default:"today"`
	Render bool   `help:"Render the entry as markdown."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if _, err := ctx.Open(bg); err != nil {
		return err
	}
	day, key, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	loadCtx, cancel := context.WithTimeout(bg, ctx.SaveTimeout())
	defer cancel()
	entry, found, err := ctx.Notes.LoadDiary(loadCtx, key)
	if err != nil {
		return err
	}

	fmt.Println(day.Format(constants.DisplayDateFormat))
	fmt.Println(strings.Repeat("─", len(day.Format(constants.DisplayDateFormat))))
	if !found || strings.TrimSpace(entry.Text) == "" {
		fmt.Println("No diary entry.")
		return nil
	}

	text := entry.Text
	if c.Render {
		rendered, err := cli.RenderMarkdown(text)
		if err != nil {
			logger.Warn("Markdown rendering failed", "error", err)
		} else {
			text = rendered
		}
	}
	fmt.Println(text)
	fmt.Printf("\n%d words\n", entry.WordCount())
	return nil
}

type WriteCmd struct {
	Date string `help:"Day to write (YYYY-MM-DD, today, yesterday, tomorrow)." default:"today"`
	Text string `arg:"" optional:"" help:"Entry text. Read from stdin, or opened in an editor, when omitted."`
}

func (c *WriteCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if _, err := ctx.Open(bg); err != nil {
		return err
	}
	day, key, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	text := c.Text
	if text == "" {
		if cli.IsInteractive() {
			text, err = c.edit(ctx, key, day)
		} else {
			text, err = readStdin()
		}
		if err != nil {
			if errors.Is(err, cli.ErrCancelled) {
				fmt.Println("Nothing saved.")
				return nil
			}
			return err
		}
	}

	saveCtx, cancel := context.WithTimeout(bg, ctx.SaveTimeout())
	defer cancel()
	entry := models.DiaryNote{Text: text}
	if _, err := ctx.Notes.SaveDiary(saveCtx, key, entry); err != nil {
		return err
	}

	fmt.Printf("✓ Saved diary for %s (%d words)\n", day.Format(constants.DisplayDateFormat), entry.WordCount())
	return nil
}

// edit opens a multi-line editor prefilled with the day's current entry.
func (c *WriteCmd) edit(ctx *cli.Context, key models.DateKey, day time.Time) (string, error) {
	loadCtx, cancel := context.WithTimeout(context.Background(), ctx.SaveTimeout())
	defer cancel()
	current, _, err := ctx.Notes.LoadDiary(loadCtx, key)
	if err != nil {
		return "", err
	}

	text := current.Text
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(day.Format(constants.DisplayDateFormat)).
				Placeholder("How did today go?").
				CharLimit(0).
				Lines(12).
				Value(&text),
		),
	).WithTheme(huh.ThemeDracula()).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return "", cli.ErrCancelled
	}
	return text, err
}

func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

type ExportCmd struct {
	Type   string `help:"Note type to export." enum:"diary,schedule" default:"diary"`
	Format string `help:"Output format (json, yaml, html)." default:"json"`
	Output string `help:"Write to this file instead of stdout." short:"o" type:"path"`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if _, err := ctx.Open(bg); err != nil {
		return err
	}
	noteType, err := models.ParseNoteType(c.Type)
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(c.Format)
	if err != nil {
		return err
	}

	listCtx, cancel := context.WithTimeout(bg, ctx.SaveTimeout())
	defer cancel()
	notes, err := ctx.Notes.List(listCtx, noteType)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", c.Output, err)
		}
		defer f.Close()
		w = f
	}

	if err := export.Write(w, format, notes, time.Now()); err != nil {
		return err
	}
	if c.Output != "" {
		fmt.Printf("✓ Exported %d %s notes to %s\n", len(notes), noteType, c.Output)
	}
	return nil
}

type ClearCmd struct {
	Yes bool `help:"Skip the confirmation prompt." short:"y"`
}

func (c *ClearCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if _, err := ctx.Open(bg); err != nil {
		return err
	}

	err := cli.Confirm("Delete every diary entry?", "This cannot be undone from the app.", c.Yes)
	if errors.Is(err, cli.ErrCancelled) {
		fmt.Println("Nothing deleted.")
		return nil
	}
	if err != nil {
		return err
	}

	ctx.PerformAutomaticBackup()

	clearCtx, cancel := context.WithTimeout(bg, ctx.SaveTimeout())
	defer cancel()
	n, err := ctx.Notes.Clear(clearCtx, models.NoteTypeDiary)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Deleted %d diary entries\n", n)
	return nil
}
