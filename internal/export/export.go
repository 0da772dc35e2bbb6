// Package export renders stored notes as JSON, YAML or HTML documents.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/dailyfocus/internal/constants"
	"github.com/julianstephens/dailyfocus/internal/models"
	"github.com/julianstephens/dailyfocus/internal/utils"
)

// Format selects the rendering
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHTML Format = "html"
)

// ParseFormat converts user input into a Format
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatHTML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown export format %q (expected json, yaml or html)", s)
	}
}

// Entry is the exported form of one note
type Entry struct {
	Date      models.DateKey      `json:"date" yaml:"date"`
	Type      models.NoteType     `json:"type" yaml:"type"`
	Content   string              `json:"content,omitempty" yaml:"content,omitempty"`
	WordCount int                 `json:"word_count,omitempty" yaml:"word_count,omitempty"`
	Slots     map[string][]string `json:"slots,omitempty" yaml:"slots,omitempty"`
	UpdatedAt time.Time           `json:"updated_at" yaml:"updated_at"`
}

// Document is the top-level JSON/YAML export
type Document struct {
	App        string    `json:"app" yaml:"app"`
	Version    string    `json:"version" yaml:"version"`
	ExportedAt time.Time `json:"exported_at" yaml:"exported_at"`
	Entries    []Entry   `json:"entries" yaml:"entries"`
}

// NewDocument converts notes into entries, keeping their order
func NewDocument(notes []models.DateNote, exportedAt time.Time) (Document, error) {
	doc := Document{
		App:        constants.AppName,
		Version:    constants.Version,
		ExportedAt: exportedAt.UTC(),
		Entries:    make([]Entry, 0, len(notes)),
	}
	for _, n := range notes {
		e := Entry{Date: n.Date, Type: n.NoteType, UpdatedAt: n.UpdatedAt.UTC()}
		switch n.NoteType {
		case models.NoteTypeSchedule:
			schedule, err := models.DecodeSchedule(n.Content)
			if err != nil {
				return Document{}, fmt.Errorf("schedule for %s: %w", n.Date, err)
			}
			e.Slots = schedule.Slots
		default:
			e.Content = n.Content
			e.WordCount = models.DecodeDiary(n.Content).WordCount()
		}
		doc.Entries = append(doc.Entries, e)
	}
	return doc, nil
}

// Write renders notes to w in the given format
func Write(w io.Writer, format Format, notes []models.DateNote, exportedAt time.Time) error {
	doc, err := NewDocument(notes, exportedAt)
	if err != nil {
		return err
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatHTML:
		return writeHTML(w, doc)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Markdown returns the markdown body for one entry. Diary text is already
// markdown; schedules become a list of slots.
func Markdown(e Entry) string {
	if e.Type != models.NoteTypeSchedule {
		return e.Content
	}

	var b strings.Builder
	schedule := models.ScheduleNote{Slots: e.Slots}
	for _, id := range schedule.SlotIDs() {
		fmt.Fprintf(&b, "- **%s**\n", id)
		for _, entry := range e.Slots[id] {
			fmt.Fprintf(&b, "  - %s\n", entry)
		}
	}
	return b.String()
}

func writeHTML(w io.Writer, doc Document) error {
	var b bytes.Buffer
	fmt.Fprintf(&b, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s export</title>\n</head>\n<body>\n",
		html.EscapeString(doc.App))

	for _, e := range doc.Entries {
		title := string(e.Date)
		if t, err := utils.ParseDateKey(string(e.Date), time.UTC); err == nil {
			title = t.Format(constants.DisplayDateFormat)
		}

		fmt.Fprintf(&b, "<article data-date=\"%s\" data-type=\"%s\">\n<h2>%s</h2>\n",
			html.EscapeString(string(e.Date)), html.EscapeString(string(e.Type)), html.EscapeString(title))
		if err := markdown.Convert([]byte(Markdown(e)), &b); err != nil {
			return fmt.Errorf("failed to render %s: %w", e.Date, err)
		}
		b.WriteString("</article>\n")
	}

	b.WriteString("</body>\n</html>\n")
	_, err := w.Write(b.Bytes())
	return err
}
