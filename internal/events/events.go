// Package events defines the typed events a capture session publishes to its
// consumer. Every value sent on a stream.Reader event channel implements Event.
package events

import (
	"fmt"

	"github.com/five82/droidlog/internal/logcat"
)

// Kind identifies an event type without a type switch.
type Kind int

const (
	KindLineRead Kind = iota
	KindProcessStarted
	KindProcessEnded
	KindAppStarted
	KindAppEnded
	KindFailed
)

var kindNames = [...]string{
	KindLineRead:       "line_read",
	KindProcessStarted: "process_started",
	KindProcessEnded:   "process_ended",
	KindAppStarted:     "app_started",
	KindAppEnded:       "app_ended",
	KindFailed:         "failed",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Event is implemented by every published event.
type Event interface {
	Kind() Kind
}

// LineRead carries a record that belongs to the tracked application (or any
// record when no application is tracked).
type LineRead struct {
	Record logcat.Record
}

// ProcessStarted reports that a process of a package came up. Target holds
// the component or intent that caused the start when the log line names it.
type ProcessStarted struct {
	PID     string
	Package string
	Target  string
}

// ProcessEnded reports that a process of a package went away.
type ProcessEnded struct {
	PID     string
	Package string
}

// AppStarted precedes the first ProcessStarted of a tracked package.
type AppStarted struct {
	Package string
}

// AppEnded follows the ProcessEnded that removed the last tracked process.
type AppEnded struct {
	Package string
}

// Failed is published once when the transport dies. Brief is suitable for a
// status line; Verbose carries the underlying error text.
type Failed struct {
	Brief   string
	Verbose string
}

func (LineRead) Kind() Kind       { return KindLineRead }
func (ProcessStarted) Kind() Kind { return KindProcessStarted }
func (ProcessEnded) Kind() Kind   { return KindProcessEnded }
func (AppStarted) Kind() Kind     { return KindAppStarted }
func (AppEnded) Kind() Kind       { return KindAppEnded }
func (Failed) Kind() Kind         { return KindFailed }

func (f Failed) Error() string {
	if f.Verbose == "" {
		return f.Brief
	}
	return f.Brief + ": " + f.Verbose
}
