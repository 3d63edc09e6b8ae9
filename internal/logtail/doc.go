// Package logtail keeps the recent tail of a log, in memory or on disk.
//
// # Ring
//
// Ring is a fixed-size circular buffer. The session store keeps the latest
// records in one so memory stays bounded no matter how long a capture runs:
//
//	1. Store item at current index
//	2. Increment index (wrapping at capacity)
//	3. Track items held, up to capacity
//	4. When full, the oldest item is at the current index
//
// Ring is not safe for concurrent use; its owner locks around it.
//
// # Saved Captures
//
// Read returns the last N lines of a file written by "adb logcat -v brief"
// or by "droidlog tail". It pushes the file through the same
// logcat.Assembler a live session uses, so carriage returns, invalid UTF-8
// and oversized lines are handled identically. A missing file is reported
// as an error so a mistyped path is not mistaken for an empty capture.
package logtail
