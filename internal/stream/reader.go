package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/five82/droidlog/internal/events"
	"github.com/five82/droidlog/internal/lifecycle"
	"github.com/five82/droidlog/internal/logcat"
	"github.com/five82/droidlog/internal/metrics"
)

// LogcatCommand is the shell command issued on the device: brief format,
// starting from the most recent line.
const LogcatCommand = "logcat -v brief -T 1"

const (
	DefaultIdleInterval = 100 * time.Millisecond
	defaultEventBuffer  = 1024
	readBufferSize      = 64 * 1024
	readWindow          = 5 * time.Millisecond
	maxReadsPerPoll     = 64
)

// ErrNotIdle is returned by Start when the reader was already started or
// stopped. A Reader runs at most once.
var ErrNotIdle = errors.New("reader is not idle")

var errStopped = errors.New("reader stopped")

// State is the lifecycle of a Reader.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Conn is the subset of net.Conn the reader needs.
type Conn interface {
	io.ReadCloser
	SetReadDeadline(t time.Time) error
}

// Connector opens a device shell running command. The transport is already
// selected; the reader never dials or retries on its own.
type Connector interface {
	Open(ctx context.Context, command string) (Conn, error)
}

// Seeder lists processes of pkg that are already running on the device.
type Seeder interface {
	RunningPIDs(ctx context.Context, pkg string) ([]string, error)
}

// Options configure a Reader.
type Options struct {
	Package      string // empty forwards every record
	IdleInterval time.Duration
	MaxFragment  int // bytes; zero uses logcat.DefaultMaxFragment, negative disables
	EventBuffer  int
	Seeder       Seeder
	Logger       *zap.Logger
	Metrics      *metrics.Metrics
}

// Reader runs one capture session on a background goroutine and publishes
// events in the order they are produced.
type Reader struct {
	connector Connector
	opts      Options
	logger    *zap.Logger

	state    atomic.Int32
	events   chan events.Event
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewReader builds an idle Reader.
func NewReader(connector Connector, opts Options) *Reader {
	if opts.IdleInterval <= 0 {
		opts.IdleInterval = DefaultIdleInterval
	}
	if opts.MaxFragment == 0 {
		opts.MaxFragment = logcat.DefaultMaxFragment
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = defaultEventBuffer
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{
		connector: connector,
		opts:      opts,
		logger:    logger,
		events:    make(chan events.Event, opts.EventBuffer),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Events returns the ordered event channel. It is closed when the worker
// exits, after any Failed event.
func (r *Reader) Events() <-chan events.Event {
	return r.events
}

// State reports the current lifecycle state.
func (r *Reader) State() State {
	return State(r.state.Load())
}

// Start launches the worker. Cancelling ctx has the same effect as Stop.
func (r *Reader) Start(ctx context.Context) error {
	if !r.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return ErrNotIdle
	}
	go r.run(ctx)
	return nil
}

// Stop asks the worker to exit. It returns immediately; use Wait to block
// until the worker is gone.
func (r *Reader) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
	if r.state.CompareAndSwap(int32(StateIdle), int32(StateStopped)) {
		close(r.events)
		close(r.done)
	}
}

// Wait blocks until the worker has exited.
func (r *Reader) Wait() {
	<-r.done
}

func (r *Reader) run(ctx context.Context) {
	defer close(r.done)
	defer close(r.events)
	defer r.state.Store(int32(StateStopped))

	log := r.logger.With(zap.String("package", r.opts.Package))

	conn, err := r.connector.Open(ctx, LogcatCommand)
	if err != nil {
		log.Warn("open log stream failed", zap.Error(err))
		r.publish(ctx, events.Failed{Brief: "Unable to open log stream", Verbose: err.Error()})
		return
	}
	defer func() { _ = conn.Close() }()
	log.Info("capture started", zap.Duration("idle_interval", r.opts.IdleInterval))

	s := &session{
		reader:     r,
		correlator: lifecycle.NewCorrelator(r.opts.Package),
		assembler:  logcat.NewAssembler(r.opts.MaxFragment),
		buf:        make([]byte, readBufferSize),
	}

	if err := s.seed(ctx); err != nil {
		return
	}

	for {
		if r.stopped(ctx) {
			break
		}
		if err := s.poll(ctx, conn); err != nil {
			if errors.Is(err, errStopped) {
				break
			}
			log.Warn("log stream failed", zap.Error(err))
			r.publish(ctx, failure(err))
			return
		}
		if !r.idle(ctx) {
			break
		}
	}
	log.Info("capture stopped")
}

func failure(err error) events.Failed {
	if errors.Is(err, io.EOF) {
		return events.Failed{Brief: "Device disconnected", Verbose: "log stream closed by device"}
	}
	return events.Failed{Brief: "Log stream read failed", Verbose: err.Error()}
}

// publish delivers evt unless the reader is stopping.
func (r *Reader) publish(ctx context.Context, evt events.Event) bool {
	select {
	case r.events <- evt:
		r.opts.Metrics.ObserveEvent(evt)
		return true
	case <-r.stop:
		return false
	case <-ctx.Done():
		return false
	}
}

func (r *Reader) stopped(ctx context.Context) bool {
	select {
	case <-r.stop:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// idle waits one interval and reports whether the loop should continue.
func (r *Reader) idle(ctx context.Context) bool {
	timer := time.NewTimer(r.opts.IdleInterval)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-r.stop:
		return false
	case <-ctx.Done():
		return false
	}
	return !r.stopped(ctx)
}

// session holds state owned by the worker goroutine.
type session struct {
	reader     *Reader
	correlator *lifecycle.Correlator
	assembler  *logcat.Assembler
	buf        []byte
	truncated  int
}

func (s *session) seed(ctx context.Context) error {
	r := s.reader
	if r.opts.Seeder == nil || s.correlator.Package() == "" {
		return nil
	}
	pids, err := r.opts.Seeder.RunningPIDs(ctx, s.correlator.Package())
	if err != nil {
		r.logger.Warn("list running processes failed", zap.Error(err))
		return nil
	}
	r.logger.Debug("seeded running processes", zap.Strings("pids", pids))
	for _, evt := range s.correlator.Seed(pids) {
		if !r.publish(ctx, evt) {
			return errStopped
		}
	}
	return nil
}

// poll reads whatever is available without blocking past readWindow, then
// dispatches the completed lines. A read deadline expiring means no data.
func (s *session) poll(ctx context.Context, conn Conn) error {
	m := s.reader.opts.Metrics
	for i := 0; i < maxReadsPerPoll; i++ {
		if err := conn.SetReadDeadline(time.Now().Add(readWindow)); err != nil {
			return fmt.Errorf("set read deadline: %w", err)
		}
		n, err := conn.Read(s.buf)
		if n > 0 {
			m.ObserveBytes(n)
			s.assembler.AddChunk(s.buf[:n])
			if derr := s.dispatch(ctx); derr != nil {
				return derr
			}
		}
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return nil
			}
			return err
		}
		if n < len(s.buf) {
			return nil
		}
	}
	return nil
}

func (s *session) dispatch(ctx context.Context) error {
	r := s.reader
	m := r.opts.Metrics
	for line := range s.assembler.DrainLines() {
		m.ObserveLine()
		rec, ok := logcat.Parse(line)
		if !ok {
			m.ObserveDrop(metrics.DropUnparsed)
			continue
		}
		out := s.correlator.Observe(rec)
		if len(out) == 0 {
			m.ObserveDrop(metrics.DropUntracked)
			continue
		}
		for _, evt := range out {
			if !r.publish(ctx, evt) {
				return errStopped
			}
		}
	}
	if t := s.assembler.Truncated(); t > s.truncated {
		m.ObserveTruncations(t - s.truncated)
		r.logger.Warn("oversized log line truncated", zap.Int("max_bytes", r.opts.MaxFragment))
		s.truncated = t
	}
	return nil
}
