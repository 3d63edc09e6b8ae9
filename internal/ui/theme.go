package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/droidlog/internal/logcat"
)

// Theme defines colors for the viewer.
type Theme struct {
	Name string

	// Base colors
	Background string // Outermost background
	Surface    string // Header and footer bars
	FocusBg    string // Log pane

	// Text colors
	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// Level colors by logcat priority letter
	LevelColors map[logcat.Level]string

	// Highlight palette, assigned to rules without their own color
	Highlight []string
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style

	Header lipgloss.Style
	Footer lipgloss.Style
	Logo   lipgloss.Style
	Match  lipgloss.Style // line matching the active search
	Pane   lipgloss.Style
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		FaintText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Faint)),

		AccentText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),

		SuccessText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Bold(true),

		WarningText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),

		Logo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)).
			Bold(true),

		Match: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Warning)).
			Foreground(lipgloss.Color(t.Background)),

		Pane: lipgloss.NewStyle().
			Background(lipgloss.Color(t.FocusBg)),
	}
}

// LevelColor returns the color for a record level, muted for unknown letters.
func (t Theme) LevelColor(level logcat.Level) string {
	if c, ok := t.LevelColors[level]; ok {
		return c
	}
	return t.Muted
}

// HighlightColor picks the palette entry for the i-th highlight rule.
func (t Theme) HighlightColor(i int) string {
	if len(t.Highlight) == 0 {
		return t.Accent
	}
	return t.Highlight[i%len(t.Highlight)]
}

// Theme definitions

var themes = map[string]Theme{
	"Dracula": draculaTheme(),
	"Slate":   slateTheme(),
}

var themeOrder = []string{"Dracula", "Slate"}

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return draculaTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

func draculaTheme() Theme {
	// Official Dracula palette: https://draculatheme.com/spec
	return Theme{
		Name: "Dracula",

		Background: "#191A21", // BGDarker
		Surface:    "#282A36", // Background
		FocusBg:    "#21222C", // BGDark

		Text:    "#F8F8F2", // Foreground
		Muted:   "#6272A4", // Comment
		Faint:   "#44475A", // Selection
		Accent:  "#BD93F9", // Purple
		Success: "#50FA7B", // Green
		Warning: "#FFB86C", // Orange
		Danger:  "#FF5555", // Red
		Info:    "#8BE9FD", // Cyan

		LevelColors: map[logcat.Level]string{
			logcat.LevelVerbose: "#6272A4",
			logcat.LevelDebug:   "#8BE9FD",
			logcat.LevelInfo:    "#50FA7B",
			logcat.LevelWarning: "#FFB86C",
			logcat.LevelError:   "#FF5555",
			logcat.LevelFatal:   "#FF79C6",
			logcat.LevelSilent:  "#44475A",
		},
		Highlight: []string{"#F1FA8C", "#FF79C6", "#8BE9FD", "#BD93F9", "#FFB86C", "#50FA7B"},
	}
}

func slateTheme() Theme {
	// Tailwind CSS Slate/Sky palette: https://tailwindcss.com/docs/colors
	return Theme{
		Name: "Slate",

		Background: "#020617", // slate-950
		Surface:    "#0f172a", // slate-900
		FocusBg:    "#1e293b", // slate-800

		Text:    "#f1f5f9", // slate-100
		Muted:   "#94a3b8", // slate-400
		Faint:   "#64748b", // slate-500
		Accent:  "#38bdf8", // sky-400
		Success: "#22c55e", // green-500
		Warning: "#f59e0b", // amber-500
		Danger:  "#ef4444", // red-500
		Info:    "#06b6d4", // cyan-500

		LevelColors: map[logcat.Level]string{
			logcat.LevelVerbose: "#64748b", // slate-500
			logcat.LevelDebug:   "#06b6d4", // cyan-500
			logcat.LevelInfo:    "#22c55e", // green-500
			logcat.LevelWarning: "#f59e0b", // amber-500
			logcat.LevelError:   "#ef4444", // red-500
			logcat.LevelFatal:   "#ec4899", // pink-500
			logcat.LevelSilent:  "#334155", // slate-700
		},
		Highlight: []string{"#facc15", "#f472b6", "#38bdf8", "#a78bfa", "#fb923c", "#4ade80"},
	}
}
