// Package highlight finds the spans of a log message that deserve color.
//
// A Spec pairs a named regular expression with a priority and a Groups
// selector. Search runs a set of specs over a text and returns every match
// ordered by priority, lowest first, so a renderer that paints matches in
// order lets higher-priority spans win where they overlap. Offsets are in
// characters rather than bytes.
//
// Registry holds the compiled rule set, either the built-in defaults or a
// TOML rules file. Cache runs registry searches on a small worker pool so
// a render pass never waits on a regular expression; it reports each text as
// pending, running or done and calls back when a result lands.
package highlight
