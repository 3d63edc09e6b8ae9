// Package stream runs a logcat capture session against a device shell.
//
// # Overview
//
// A Reader owns one connection and one background goroutine. The goroutine
// is the only writer of the session's line buffer and tracked process set,
// so nothing inside the loop takes a lock. The consumer sees the session
// exclusively through Events, an ordered channel of events.Event values.
//
// # Lifecycle
//
//	Idle ──Start──> Running ──Stop / ctx / failure──> Stopped
//
// A Reader runs at most once. Start on a non-idle reader returns ErrNotIdle.
// Build a new Reader for a new session.
//
// # Poll Loop
//
//	┌─────────────────────────────────────────────┐
//	│ open shell "logcat -v brief -T 1"           │
//	│ seed running PIDs (optional)                │
//	│ loop:                                       │
//	│   stop requested? ──> exit                  │
//	│   read with short deadline                  │
//	│     deadline exceeded ──> no data yet       │
//	│     io.EOF ──> Failed, exit                 │
//	│     other error ──> Failed, exit            │
//	│   assemble lines, parse, classify, publish  │
//	│   wait idle interval (cancellable)          │
//	└─────────────────────────────────────────────┘
//
// Stop closes a signal channel that both the idle timer and every event send
// select on, so a stop takes effect within one idle interval even when the
// consumer has stopped reading.
//
// # Error Handling
//
// Transport failures are reported exactly once as events.Failed, after which
// the event channel is closed. They are not retried here; the caller decides
// whether to build a new Reader. An explicit Stop or context cancellation
// closes the channel without a Failed event.
//
// Decode errors and unparseable lines never surface as events. They are
// counted through the optional metrics.Metrics instance.
package stream
