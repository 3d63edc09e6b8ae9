package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the status bar: app state, tracked PIDs, counters
// and any capture failure.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := lipgloss.Color(m.theme.Surface)
	on := func(s lipgloss.Style) lipgloss.Style { return s.Background(bg) }
	sep := on(styles.FaintText).Render("  ")

	parts := []string{on(styles.Logo).Render("droidlog")}

	snap := m.snapshot
	switch {
	case snap.Package == "":
		parts = append(parts, on(styles.MutedText).Render("all processes"))
	case snap.AppRunning:
		parts = append(parts, on(styles.SuccessText).Render("● "+snap.Package))
	default:
		parts = append(parts, on(styles.DangerText).Render("○ "+snap.Package))
	}

	if len(snap.PIDs) > 0 {
		parts = append(parts,
			on(styles.MutedText).Render("pid ")+on(styles.Text).Render(truncate(strings.Join(snap.PIDs, ","), 24)))
	}

	parts = append(parts,
		on(styles.MutedText).Render("lines ")+on(styles.Text).Render(fmt.Sprintf("%d", snap.LineCount)),
		on(styles.MutedText).Render("level ")+on(lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.LevelColor(m.logState.minLevel)))).Render(m.logState.minLevel.Name()),
	)

	follow := on(styles.FaintText).Render("follow off")
	if m.logState.follow {
		follow = on(styles.AccentText).Render("follow on")
	}
	parts = append(parts, follow)

	if snap.Failure != nil {
		parts = append(parts, on(styles.DangerText).Render(snap.Failure.Brief))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
