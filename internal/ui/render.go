package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/droidlog/internal/highlight"
	"github.com/five82/droidlog/internal/logcat"
)

// LineRenderer formats records for a terminal. It is shared by the viewer
// and the plain tail output.
type LineRenderer struct {
	renderer *lipgloss.Renderer
	theme    Theme
	colors   map[string]string
	levels   map[logcat.Level]lipgloss.Style
	tag      lipgloss.Style
	pid      lipgloss.Style
	text     lipgloss.Style
	bg       lipgloss.Color
}

// NewLineRenderer builds a renderer for theme. Rule colors come from the
// registry when set there, otherwise from the theme's highlight palette.
// A nil renderer uses lipgloss's default (stdout) renderer.
func NewLineRenderer(r *lipgloss.Renderer, theme Theme, registry *highlight.Registry) *LineRenderer {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	lr := &LineRenderer{
		renderer: r,
		theme:    theme,
		colors:   make(map[string]string),
		levels:   make(map[logcat.Level]lipgloss.Style),
	}
	for i, spec := range registry.Specs() {
		if c := registry.Color(spec.Name); c != "" {
			lr.colors[spec.Name] = c
			continue
		}
		lr.colors[spec.Name] = theme.HighlightColor(i)
	}
	for _, lvl := range logcat.Levels {
		lr.levels[lvl] = r.NewStyle().Foreground(lipgloss.Color(theme.LevelColor(lvl))).Bold(true)
	}
	lr.tag = r.NewStyle().Foreground(lipgloss.Color(theme.Accent))
	lr.pid = r.NewStyle().Foreground(lipgloss.Color(theme.Faint))
	lr.text = r.NewStyle().Foreground(lipgloss.Color(theme.Text))
	return lr
}

// WithBackground returns a copy whose styles paint bg behind every segment,
// so resets between segments leave no gaps in a colored pane.
func (lr *LineRenderer) WithBackground(bg string) *LineRenderer {
	out := *lr
	out.bg = lipgloss.Color(bg)
	out.levels = make(map[logcat.Level]lipgloss.Style, len(lr.levels))
	for lvl, style := range lr.levels {
		out.levels[lvl] = style.Background(out.bg)
	}
	out.tag = lr.tag.Background(out.bg)
	out.pid = lr.pid.Background(out.bg)
	out.text = lr.text.Background(out.bg)
	return &out
}

// Record renders "L/Tag(  pid): message" with the message highlighted by
// matches. Nil matches render the message plain.
func (lr *LineRenderer) Record(rec logcat.Record, matches []highlight.Match) string {
	level, ok := lr.levels[rec.Level]
	if !ok {
		level = lr.text
	}
	var b strings.Builder
	b.WriteString(level.Render(rec.Level.String()))
	b.WriteString(lr.text.Render("/"))
	b.WriteString(lr.tag.Render(rec.Tag))
	b.WriteString(lr.pid.Render(fmt.Sprintf("(%5s)", rec.PID)))
	b.WriteString(lr.text.Render(": "))
	b.WriteString(lr.Message(rec.Message, matches))
	return b.String()
}

// Notice renders a lifecycle line such as an app start.
func (lr *LineRenderer) Notice(text string, color string) string {
	style := lr.renderer.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
	if lr.bg != "" {
		style = style.Background(lr.bg)
	}
	return style.Render(text)
}

// Message paints matches over text. Matches arrive lowest priority first, so
// each later match repaints the characters it covers and the highest
// priority wins where spans overlap.
func (lr *LineRenderer) Message(text string, matches []highlight.Match) string {
	if len(matches) == 0 || text == "" {
		return lr.text.Render(text)
	}
	runes := []rune(text)
	owner := make([]int, len(runes))
	for i := range owner {
		owner[i] = -1
	}
	for i, m := range matches {
		begin, end := max(m.Begin, 0), min(m.End, len(runes))
		for j := begin; j < end; j++ {
			owner[j] = i
		}
	}

	var b strings.Builder
	start := 0
	for i := 1; i <= len(runes); i++ {
		if i < len(runes) && owner[i] == owner[start] {
			continue
		}
		b.WriteString(lr.segment(string(runes[start:i]), owner[start], matches))
		start = i
	}
	return b.String()
}

func (lr *LineRenderer) segment(text string, owner int, matches []highlight.Match) string {
	if owner < 0 {
		return lr.text.Render(text)
	}
	color, ok := lr.colors[matches[owner].Name]
	if !ok {
		color = lr.theme.Accent
	}
	style := lr.renderer.NewStyle().Foreground(lipgloss.Color(color))
	if lr.bg != "" {
		style = style.Background(lr.bg)
	}
	return style.Render(text)
}
