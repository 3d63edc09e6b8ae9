// Package state holds the capture session as the UI sees it.
//
// # Overview
//
// The reader's event channel is drained by one consumer goroutine that calls
// Store.Apply for each event. The UI never touches the channel; it reads
// copies through Store.Snapshot on its refresh tick.
//
//	Consumer:                      UI:
//	┌────────────────┐            ┌──────────────────┐
//	│ <-reader.Events│            │                  │
//	│      ↓         │            │                  │
//	│ store.Apply()  │───────────→│ store.Snapshot() │
//	│      ↓         │  (mutex)   │      ↓           │
//	│  repeat...     │            │  render          │
//	└────────────────┘            └──────────────────┘
//
// # Records
//
// Records are kept in a logtail.Ring, so a long capture holds at most the
// configured history. LineCount keeps counting past the ring; Evicted tells
// how many fell off the front.
//
// # Process State
//
// PIDs mirrors the reader's tracked process set, rebuilt from ProcessStarted
// and ProcessEnded events. AppRunning flips only on AppStarted and AppEnded.
//
// # Change Detection
//
// Version increases on every applied event. Store.Version is cheap, so the
// UI polls it and takes a full Snapshot only when it moved.
//
// # Failure
//
// A Failed event is kept as Snapshot.Failure. It is the last event a reader
// publishes, so a set Failure means the capture is over.
package state
