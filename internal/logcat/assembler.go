package logcat

import (
	"bytes"
	"iter"

	"golang.org/x/text/encoding/unicode"
)

// DefaultMaxFragment bounds the unterminated tail kept between chunks.
const DefaultMaxFragment = 1024 * 1024

// Assembler turns arbitrarily chunked bytes into newline-delimited lines.
// It is not safe for concurrent use; one reader goroutine owns it.
type Assembler struct {
	buf         []byte
	maxFragment int
	truncated   int
}

// NewAssembler returns an Assembler that flushes an unterminated fragment as
// a line once it grows past maxFragment bytes. Zero or negative disables the
// cap.
func NewAssembler(maxFragment int) *Assembler {
	return &Assembler{maxFragment: maxFragment}
}

// AddChunk appends raw bytes to the pending buffer.
func (a *Assembler) AddChunk(chunk []byte) {
	a.buf = append(a.buf, chunk...)
}

// Pending returns the number of buffered bytes not yet yielded.
func (a *Assembler) Pending() int {
	return len(a.buf)
}

// Truncated returns how many oversized fragments were force-flushed.
func (a *Assembler) Truncated() int {
	return a.truncated
}

// DrainLines yields every complete line in the buffer and keeps the trailing
// fragment for the next call. The buffer is split before the sequence is
// returned, so partially consuming the sequence drops the remaining lines.
func (a *Assembler) DrainLines() iter.Seq[string] {
	var complete []byte
	if idx := bytes.LastIndexByte(a.buf, '\n'); idx >= 0 {
		complete = a.buf[:idx+1]
		a.buf = append([]byte(nil), a.buf[idx+1:]...)
	}
	if a.maxFragment > 0 && len(a.buf) > a.maxFragment {
		complete = append(complete, a.buf...)
		complete = append(complete, '\n')
		a.buf = nil
		a.truncated++
	}

	return func(yield func(string) bool) {
		rest := complete
		for len(rest) > 0 {
			idx := bytes.IndexByte(rest, '\n')
			line := rest[:idx]
			rest = rest[idx+1:]
			if !yield(decode(line)) {
				return
			}
		}
	}
}

// decode converts raw line bytes to text, replacing invalid UTF-8 with
// U+FFFD. Shell transports that allocate a pty terminate lines with CRLF.
func decode(line []byte) string {
	line = bytes.TrimSuffix(line, []byte{'\r'})
	out, err := unicode.UTF8.NewDecoder().Bytes(line)
	if err != nil {
		return string(bytes.ToValidUTF8(line, []byte("�")))
	}
	return string(out)
}
