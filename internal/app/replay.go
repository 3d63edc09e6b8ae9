package app

import (
	"fmt"

	"github.com/five82/droidlog/internal/events"
	"github.com/five82/droidlog/internal/lifecycle"
	"github.com/five82/droidlog/internal/logcat"
	"github.com/five82/droidlog/internal/logtail"
	"github.com/five82/droidlog/internal/state"
)

// Replay reads saved logcat output and runs every line through the same
// parsing and process tracking as a live capture. The whole file is
// correlated so a process start long before the end still attributes the
// records after it. A missing file is an error.
func Replay(path, pkg string) ([]events.Event, error) {
	lines, err := logtail.Read(path, 0)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", path, err)
	}
	correlator := lifecycle.NewCorrelator(pkg)
	var out []events.Event
	for _, line := range lines {
		rec, ok := logcat.Parse(line)
		if !ok {
			continue
		}
		out = append(out, correlator.Observe(rec)...)
	}
	return out, nil
}

// replayInto applies a replayed capture to store. The store's history ring
// keeps only the newest records.
func replayInto(store *state.Store, path, pkg string) error {
	evts, err := Replay(path, pkg)
	if err != nil {
		return err
	}
	for _, evt := range evts {
		store.Apply(evt)
	}
	return nil
}
