// Package app wires configuration, the device transport, the capture reader,
// the session store and the terminal UI into a running droidlog session.
//
// # Overview
//
// Run and Tail are the composition roots. Both load configuration (file,
// then DROIDLOG_* environment, then command line Overrides), build a zap
// logger tagged with a per-run session id, and optionally expose Prometheus
// metrics. They differ in what consumes the event stream:
//
//	Run:   stream.Reader ──> Consume ──> state.Store <── ui (tick)
//	Tail:  stream.Reader ──> printer ──> io.Writer
//
// Run sends logs to the configured log file because the UI owns the
// terminal. Tail logs to stderr and prints records to its writer.
//
// # Replay
//
// With Options.Replay set, no device is contacted. The saved capture is read
// through logtail.Read and fed through the same parser and process tracking
// as a live stream, so package filtering behaves identically.
//
// # Error Handling
//
// Configuration and rules errors are returned before anything starts. A
// transport failure during a live capture arrives as events.Failed: Run
// shows it in the header and keeps the UI open, Tail prints it and returns
// it as the error.
package app
