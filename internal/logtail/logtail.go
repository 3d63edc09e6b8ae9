package logtail

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/five82/droidlog/internal/logcat"
)

const readChunkSize = 64 * 1024

// Ring keeps the most recent Cap() items pushed into it.
type Ring[T any] struct {
	items []T
	idx   int
	count int
}

// NewRing returns a ring holding at most size items. A size below one is
// treated as one.
func NewRing[T any](size int) *Ring[T] {
	if size < 1 {
		size = 1
	}
	return &Ring[T]{items: make([]T, size)}
}

// Push appends v, overwriting the oldest item when full. It reports whether
// an item was overwritten.
func (r *Ring[T]) Push(v T) bool {
	evicted := r.count == len(r.items)
	r.items[r.idx] = v
	r.idx = (r.idx + 1) % len(r.items)
	if !evicted {
		r.count++
	}
	return evicted
}

// Len is the number of items held.
func (r *Ring[T]) Len() int {
	return r.count
}

// Cap is the maximum number of items held.
func (r *Ring[T]) Cap() int {
	return len(r.items)
}

// Items returns the held items, oldest first, in a new slice.
func (r *Ring[T]) Items() []T {
	out := make([]T, r.count)
	if r.count == len(r.items) {
		for i := 0; i < r.count; i++ {
			out[i] = r.items[(r.idx+i)%len(r.items)]
		}
	} else {
		copy(out, r.items[:r.count])
	}
	return out
}

// Reset drops every item.
func (r *Ring[T]) Reset() {
	clear(r.items)
	r.idx = 0
	r.count = 0
}

// Read returns at most maxLines from the end of a saved capture at path.
// maxLines <= 0 returns every line. Lines are decoded exactly like a live
// stream, and a final line without a newline is kept. A missing file is an
// error matching os.ErrNotExist.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	var lines []string
	var ring *Ring[string]
	if maxLines > 0 {
		ring = NewRing[string](maxLines)
	}
	keep := func(line string) {
		if ring != nil {
			ring.Push(line)
			return
		}
		lines = append(lines, line)
	}

	assembler := logcat.NewAssembler(logcat.DefaultMaxFragment)
	buf := make([]byte, readChunkSize)
	for {
		n, err := file.Read(buf)
		if n > 0 {
			assembler.AddChunk(buf[:n])
			for line := range assembler.DrainLines() {
				keep(line)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
	}
	if assembler.Pending() > 0 {
		assembler.AddChunk([]byte{'\n'})
		for line := range assembler.DrainLines() {
			keep(line)
		}
	}

	if ring != nil {
		return ring.Items(), nil
	}
	return lines, nil
}
