// Package logcat turns the raw logcat byte stream into records.
//
// # Line Assembly
//
// Socket reads return arbitrary chunks. Assembler buffers them and yields
// only complete, newline-terminated lines; the trailing fragment stays in the
// buffer until the next chunk completes it:
//
//	asm := logcat.NewAssembler(logcat.DefaultMaxFragment)
//	asm.AddChunk(buf[:n])
//	for line := range asm.DrainLines() {
//		...
//	}
//
// Invalid UTF-8 is replaced with U+FFFD rather than failing; a corrupt byte
// never aborts ingestion. A fragment that grows past the configured cap is
// flushed as a line of its own so a misbehaving stream cannot grow the
// buffer without bound.
//
// # Brief Format
//
// Parse understands the `logcat -v brief` layout:
//
//	<LEVEL>/<TAG>( <PID>): <MESSAGE>
//
// where LEVEL is one of V D I W E F S. Lines that do not match (section
// headers, wrapped stack traces, blank lines) are reported with ok=false and
// are meant to be dropped silently.
package logcat
