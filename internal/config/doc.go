// Package config loads droidlog configuration.
//
// # Resolution Order
//
// Each setting is resolved from, lowest to highest precedence:
//
//  1. Built-in defaults
//  2. The TOML file (~/.config/droidlog/config.toml unless a path is given)
//  3. DROIDLOG_* environment variables
//  4. Command-line flags, applied by the caller after Load
//
// A missing config file is not an error. Empty or whitespace-only values in
// the file fall back to defaults.
//
// # Defaults
//
//   - adb_addr: 127.0.0.1:5037 (the local adb server)
//   - idle_interval_ms: 100
//   - max_fragment_bytes: 1048576 (negative disables the cap)
//   - rules_path: ~/.config/droidlog/rules.toml
//   - log_level: info
//   - log_file: ~/.local/state/droidlog/droidlog.log
//   - highlight_workers: 2
//
// serial, package and metrics_addr are empty by default: any device, every
// process, no metrics listener.
//
// # TOML Format
//
//	adb_addr = "127.0.0.1:5037"
//	serial = "emulator-5554"
//	package = "com.example.app"
//	idle_interval_ms = 50
//	metrics_addr = "127.0.0.1:9464"
//
// # Environment
//
// Every key has an upper-case environment twin with the DROIDLOG_ prefix,
// for example DROIDLOG_SERIAL or DROIDLOG_IDLE_INTERVAL_MS. A set variable
// wins over the file even when it is empty.
//
// # Path Expansion
//
// rules_path, log_file and the config path itself accept ~ and relative
// paths; both are resolved to absolute paths.
package config
