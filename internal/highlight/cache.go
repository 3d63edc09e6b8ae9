package highlight

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/five82/droidlog/internal/metrics"
)

// State is the progress of one cached search.
type State int

const (
	StatePending State = iota
	StateRunning
	StateDone
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const (
	DefaultWorkers  = 2
	DefaultCapacity = 4096
)

// CacheOptions configure a Cache.
type CacheOptions struct {
	Workers  int
	Capacity int              // completed entries kept; oldest evicted first
	Notify   func(text string) // called from a worker after a search completes
	Metrics  *metrics.Metrics
}

type entry struct {
	state   State
	matches []Match
}

// Cache runs registry searches off the caller's goroutine. The first Lookup
// of a text queues it; later lookups see it move through running to done.
type Cache struct {
	registry *Registry
	opts     CacheOptions

	mu      sync.Mutex
	entries map[string]*entry
	queue   []string
	done    []string
	active  int
	group   errgroup.Group
}

// NewCache builds a cache over registry.
func NewCache(registry *Registry, opts CacheOptions) *Cache {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	c := &Cache{
		registry: registry,
		opts:     opts,
		entries:  make(map[string]*entry),
	}
	c.group.SetLimit(opts.Workers)
	return c
}

// Lookup returns the matches for text if the search has finished. Otherwise
// it returns nil and the current state, queueing the search on first sight.
func (c *Cache) Lookup(text string) ([]Match, State) {
	c.mu.Lock()
	if e, ok := c.entries[text]; ok {
		defer c.mu.Unlock()
		return e.matches, e.state
	}
	c.entries[text] = &entry{state: StatePending}
	c.queue = append(c.queue, text)
	c.opts.Metrics.SetPending(len(c.queue))
	spawn := c.active < c.opts.Workers
	if spawn {
		c.active++
	}
	c.mu.Unlock()

	if spawn && !c.group.TryGo(c.work) {
		// A worker that already released its slot has not returned yet.
		c.group.Go(c.work)
	}
	return nil, StatePending
}

// Len reports how many entries the cache holds in any state.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Wait blocks until every queued search has completed.
func (c *Cache) Wait() {
	_ = c.group.Wait()
}

func (c *Cache) work() error {
	for {
		c.mu.Lock()
		if len(c.queue) == 0 {
			c.active--
			c.mu.Unlock()
			return nil
		}
		text := c.queue[0]
		c.queue = c.queue[1:]
		c.opts.Metrics.SetPending(len(c.queue))
		e := c.entries[text]
		e.state = StateRunning
		c.mu.Unlock()

		start := time.Now()
		matches := c.registry.Search(text)
		c.opts.Metrics.ObserveSearch(len(matches), time.Since(start))

		c.mu.Lock()
		e.matches = matches
		e.state = StateDone
		c.done = append(c.done, text)
		c.evictLocked()
		c.mu.Unlock()

		if c.opts.Notify != nil {
			c.opts.Notify(text)
		}
	}
}

func (c *Cache) evictLocked() {
	for len(c.done) > c.opts.Capacity {
		delete(c.entries, c.done[0])
		c.done = c.done[1:]
	}
}
