package app

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/droidlog/internal/events"
	"github.com/five82/droidlog/internal/highlight"
	"github.com/five82/droidlog/internal/ui"
)

// printer writes events as colored lines for the tail command. Highlighting
// runs inline since every line is printed exactly once.
type printer struct {
	w        io.Writer
	theme    ui.Theme
	registry *highlight.Registry
	lines    *ui.LineRenderer
}

func newPrinter(w io.Writer, r *lipgloss.Renderer, theme ui.Theme, registry *highlight.Registry) *printer {
	return &printer{
		w:        w,
		theme:    theme,
		registry: registry,
		lines:    ui.NewLineRenderer(r, theme, registry),
	}
}

func (p *printer) print(evt events.Event) error {
	var line string
	switch e := evt.(type) {
	case events.LineRead:
		line = p.lines.Record(e.Record, p.registry.Search(e.Record.Message))
	case events.AppStarted:
		line = p.lines.Notice(fmt.Sprintf("--- %s started", e.Package), p.theme.Success)
	case events.AppEnded:
		line = p.lines.Notice(fmt.Sprintf("--- %s ended", e.Package), p.theme.Warning)
	case events.ProcessStarted:
		text := fmt.Sprintf("--- process %s started", e.PID)
		if e.Target != "" {
			text += " for " + e.Target
		}
		line = p.lines.Notice(text, p.theme.Info)
	case events.ProcessEnded:
		line = p.lines.Notice(fmt.Sprintf("--- process %s ended", e.PID), p.theme.Muted)
	case events.Failed:
		line = p.lines.Notice("--- "+e.Brief, p.theme.Danger)
	default:
		return nil
	}
	_, err := fmt.Fprintln(p.w, line)
	return err
}
