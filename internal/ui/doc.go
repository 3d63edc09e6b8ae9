// Package ui provides the terminal log viewer for droidlog.
//
// # Architecture Overview
//
// The viewer is a Bubble Tea program. It never reads the capture stream
// directly: a consumer goroutine folds reader events into a state.Store,
// and the model polls the store on a short tick. Only when Store.Version
// moves, or the highlight cache reports finished searches, does the model
// re-render the log pane.
//
//	reader ──events──> consumer ──Apply──> state.Store
//	                                           │ Snapshot (on tick)
//	                                           ▼
//	              highlight.Cache <──Lookup── Model ──> viewport
//
// # Package Structure
//
//   - model.go: Model, Options, Init/Update/View and the Run entry point
//   - logs.go: log pane filtering, search and key handling
//   - header.go: status bar with app state and tracked PIDs
//   - render.go: LineRenderer, shared with the plain tail output
//   - theme.go: color themes and Lipgloss styles
//   - keys.go: key bindings and help
//
// # Highlighting
//
// The first render of a message queues its search on the highlight cache
// and shows the message plain. When the search completes the cache sets the
// shared dirty flag and the next tick repaints with color. Matches are
// painted lowest priority first, so a higher priority span overrides the
// characters it shares with a lower one.
//
// # Key Bindings
//
//	f          Toggle follow
//	l          Cycle minimum level (V D I W E F)
//	/          Search (regex, case-insensitive)
//	n/N        Next/previous match
//	esc        Clear search
//	c          Clear history
//	T          Cycle theme
//	j/k g/G    Scroll, top, bottom
//	?          Help
//	q          Quit
//
// Theme, minimum level and follow are saved to the preferences file when
// changed.
package ui
