// Package lifecycle recognizes process start and death lines in logcat output
// and uses them to follow one application's processes.
//
// # Grammars
//
// Android releases log the same lifecycle events in different shapes.
// Classify tries these grammars in order and returns the first match:
//
//  1. Start proc <pid>:<package>/<uid> for <target>
//  2. Start proc <package> for <kind> <target>: pid=<pid> uid=<uid> gids=<gids>
//  3. E/dalvikvm: >>>>> <package> [ userId:0 | appId:<n> ]
//  4. ActivityManager: Killing <pid>:<package>/<uid>: <reason>
//  5. ActivityManager: No longer want <package> (pid <pid>): <reason>
//  6. ActivityManager: Process <package> (pid <pid>) has died
//
// The end-of-life grammars only apply to records tagged ActivityManager;
// other components print similar phrases and must not end a session.
//
// # Correlation
//
// Correlator owns the set of live PIDs for a single package. It turns each
// record into zero or more events:
//
//	start, set empty     → AppStarted, ProcessStarted
//	start, set non-empty → ProcessStarted
//	end                  → ProcessEnded (+ AppEnded when the set empties)
//	ordinary record      → LineRead if its PID is tracked, else nothing
//
// AppStarted always precedes the first ProcessStarted, which consumers use
// to reset per-run state. Lifecycle lines for other packages are ignored.
//
// Processes that were already running when capture began never log a start
// line. ParsePS extracts their PIDs from `ps` output so the caller can Seed
// the correlator before streaming.
//
// A Correlator is not safe for concurrent use; the stream reader goroutine is
// its only owner.
package lifecycle
