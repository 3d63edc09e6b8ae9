package lifecycle

import (
	"slices"
	"strings"

	"github.com/five82/droidlog/internal/events"
	"github.com/five82/droidlog/internal/logcat"
)

// Correlator tracks the live processes of one package and decides which
// records belong to it. It is owned by a single goroutine and does no
// locking.
type Correlator struct {
	pkg  string
	pids map[string]struct{}
}

// NewCorrelator tracks pkg. An empty pkg disables tracking: every ordinary
// record is forwarded.
func NewCorrelator(pkg string) *Correlator {
	return &Correlator{
		pkg:  strings.TrimSpace(pkg),
		pids: make(map[string]struct{}),
	}
}

// Package returns the tracked package name.
func (c *Correlator) Package() string {
	return c.pkg
}

// Running reports whether at least one process of the package is alive.
func (c *Correlator) Running() bool {
	return len(c.pids) > 0
}

// PIDs returns the tracked process IDs in sorted order.
func (c *Correlator) PIDs() []string {
	out := make([]string, 0, len(c.pids))
	for pid := range c.pids {
		out = append(out, pid)
	}
	slices.Sort(out)
	return out
}

// Observe classifies rec and returns the events it produces, in the order
// the consumer must see them.
func (c *Correlator) Observe(rec logcat.Record) []events.Event {
	if c.pkg == "" {
		return []events.Event{events.LineRead{Record: rec}}
	}
	switch evt := Classify(rec).(type) {
	case events.ProcessStarted:
		return c.started(evt)
	case events.ProcessEnded:
		return c.ended(evt)
	}
	if _, ok := c.pids[rec.PID]; ok {
		return []events.Event{events.LineRead{Record: rec}}
	}
	return nil
}

// Seed registers processes that were already running before the stream
// started, as if a start line had been seen for each.
func (c *Correlator) Seed(pids []string) []events.Event {
	var out []events.Event
	for _, pid := range pids {
		out = append(out, c.started(events.ProcessStarted{PID: pid, Package: c.pkg})...)
	}
	return out
}

func (c *Correlator) started(evt events.ProcessStarted) []events.Event {
	if c.pkg == "" || evt.Package != c.pkg {
		return nil
	}
	out := make([]events.Event, 0, 2)
	if len(c.pids) == 0 {
		out = append(out, events.AppStarted{Package: c.pkg})
	}
	c.pids[evt.PID] = struct{}{}
	return append(out, evt)
}

func (c *Correlator) ended(evt events.ProcessEnded) []events.Event {
	if evt.Package != c.pkg {
		return nil
	}
	wasRunning := len(c.pids) > 0
	delete(c.pids, evt.PID)
	out := []events.Event{evt}
	if wasRunning && len(c.pids) == 0 {
		out = append(out, events.AppEnded{Package: c.pkg})
	}
	return out
}
