package state

import (
	"slices"
	"sync"
	"time"

	"github.com/five82/droidlog/internal/events"
	"github.com/five82/droidlog/internal/logcat"
	"github.com/five82/droidlog/internal/logtail"
)

// DefaultHistory is the number of records kept when the store is built
// without an explicit size.
const DefaultHistory = 10000

// Snapshot represents the latest session data available to the UI.
type Snapshot struct {
	SessionID  string
	Package    string
	AppRunning bool
	PIDs       []string
	Records    []logcat.Record // oldest first, bounded by the history size
	LineCount  int             // every LineRead seen, including evicted ones
	Evicted    int
	Starts     int // AppStarted events seen
	LastEvent  time.Time
	Failure    *events.Failed
	Version    uint64 // bumps on every applied event
}

// Stopped reports whether the capture ended with a failure.
func (s Snapshot) Stopped() bool {
	return s.Failure != nil
}

// Store coordinates the event consumer (single writer) and the UI (readers).
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	records  *logtail.Ring[logcat.Record]
	pids     map[string]struct{}
}

// NewStore returns an empty store keeping up to history records.
func NewStore(sessionID, pkg string, history int) *Store {
	if history <= 0 {
		history = DefaultHistory
	}
	return &Store{
		snapshot: Snapshot{SessionID: sessionID, Package: pkg},
		records:  logtail.NewRing[logcat.Record](history),
		pids:     make(map[string]struct{}),
	}
}

// Apply folds one reader event into the session state.
func (s *Store) Apply(evt events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e := evt.(type) {
	case events.LineRead:
		if s.records.Push(e.Record) {
			s.snapshot.Evicted++
		}
		s.snapshot.LineCount++
	case events.ProcessStarted:
		s.pids[e.PID] = struct{}{}
	case events.ProcessEnded:
		delete(s.pids, e.PID)
	case events.AppStarted:
		s.snapshot.AppRunning = true
		s.snapshot.Starts++
	case events.AppEnded:
		s.snapshot.AppRunning = false
		clear(s.pids)
	case events.Failed:
		failure := e
		s.snapshot.Failure = &failure
	default:
		return
	}
	s.snapshot.LastEvent = time.Now()
	s.snapshot.Version++
}

// Clear drops the record history but keeps process state.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records.Reset()
	s.snapshot.Version++
}

// Version returns the current change counter without copying records.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Version
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Records = s.records.Items()
	snap.PIDs = make([]string, 0, len(s.pids))
	for pid := range s.pids {
		snap.PIDs = append(snap.PIDs, pid)
	}
	slices.Sort(snap.PIDs)
	if s.snapshot.Failure != nil {
		failure := *s.snapshot.Failure
		snap.Failure = &failure
	}
	return snap
}
