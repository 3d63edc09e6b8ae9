package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ADBAddr != defaultADBAddr {
		t.Fatalf("ADBAddr = %q, want %q", cfg.ADBAddr, defaultADBAddr)
	}
	if cfg.IdleInterval != defaultIdleInterval {
		t.Fatalf("IdleInterval = %s, want %s", cfg.IdleInterval, defaultIdleInterval)
	}
	if cfg.MaxFragmentBytes != defaultMaxFragmentBytes {
		t.Fatalf("MaxFragmentBytes = %d, want %d", cfg.MaxFragmentBytes, defaultMaxFragmentBytes)
	}

	wantLog, err := expandPath(defaultLogFile)
	if err != nil {
		t.Fatalf("expandPath(defaultLogFile) returned error: %v", err)
	}
	if cfg.LogFile != wantLog {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, wantLog)
	}
	if cfg.StateDir() != filepath.Dir(wantLog) {
		t.Fatalf("StateDir = %q, want %q", cfg.StateDir(), filepath.Dir(wantLog))
	}
	if cfg.Package != "" || cfg.Serial != "" || cfg.MetricsAddr != "" {
		t.Fatalf("unexpected non-empty optional fields: %+v", cfg)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
adb_addr = "  10.0.0.5:5037  "
serial = " emulator-5554 "
package = "com.example.app"
idle_interval_ms = 25
max_fragment_bytes = 4096
rules_path = "  ~/rules.toml  "
log_level = "DEBUG"
metrics_addr = "127.0.0.1:9464"
highlight_workers = 4
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ADBAddr != "10.0.0.5:5037" {
		t.Fatalf("ADBAddr = %q, want %q", cfg.ADBAddr, "10.0.0.5:5037")
	}
	if cfg.Serial != "emulator-5554" {
		t.Fatalf("Serial = %q, want %q", cfg.Serial, "emulator-5554")
	}
	if cfg.Package != "com.example.app" {
		t.Fatalf("Package = %q", cfg.Package)
	}
	if cfg.IdleInterval != 25*time.Millisecond {
		t.Fatalf("IdleInterval = %s, want 25ms", cfg.IdleInterval)
	}
	if cfg.MaxFragmentBytes != 4096 {
		t.Fatalf("MaxFragmentBytes = %d, want 4096", cfg.MaxFragmentBytes)
	}
	if cfg.RulesPath != filepath.Join(home, "rules.toml") {
		t.Fatalf("RulesPath = %q, want it under HOME %q", cfg.RulesPath, home)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.MetricsAddr != "127.0.0.1:9464" {
		t.Fatalf("MetricsAddr = %q", cfg.MetricsAddr)
	}
	if cfg.HighlightWorkers != 4 {
		t.Fatalf("HighlightWorkers = %d, want 4", cfg.HighlightWorkers)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
adb_addr = "   "
log_file = ""
idle_interval_ms = 0
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ADBAddr != defaultADBAddr {
		t.Fatalf("ADBAddr = %q, want %q", cfg.ADBAddr, defaultADBAddr)
	}
	if cfg.IdleInterval != defaultIdleInterval {
		t.Fatalf("IdleInterval = %s, want %s", cfg.IdleInterval, defaultIdleInterval)
	}
	wantLog, err := expandPath(defaultLogFile)
	if err != nil {
		t.Fatalf("expandPath(defaultLogFile) returned error: %v", err)
	}
	if cfg.LogFile != wantLog {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, wantLog)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DROIDLOG_SERIAL", "R58M")
	t.Setenv("DROIDLOG_IDLE_INTERVAL_MS", "10")
	t.Setenv("DROIDLOG_PACKAGE", "")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
serial = "emulator-5554"
package = "com.example.app"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Serial != "R58M" {
		t.Fatalf("Serial = %q, want R58M", cfg.Serial)
	}
	if cfg.IdleInterval != 10*time.Millisecond {
		t.Fatalf("IdleInterval = %s, want 10ms", cfg.IdleInterval)
	}
	if cfg.Package != "" {
		t.Fatalf("Package = %q, want the empty environment value to win", cfg.Package)
	}
}

func TestLoad_BadEnvironmentFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DROIDLOG_HIGHLIGHT_WORKERS", "many")

	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatalf("Load returned nil error, want environment error")
	}
	if !strings.Contains(err.Error(), "read environment") {
		t.Fatalf("Load error = %q, want it to mention read environment", err.Error())
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`adb_addr = [`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	cfg.IdleInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate accepted a zero idle interval")
	}
	cfg = Default()
	cfg.ADBAddr = " "
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate accepted an empty adb address")
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/a/b")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("ExpandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
