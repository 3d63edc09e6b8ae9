package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	toml "github.com/pelletier/go-toml/v2"
)

// Config is the resolved droidlog configuration.
type Config struct {
	ADBAddr          string
	Serial           string
	Package          string
	IdleInterval     time.Duration
	MaxFragmentBytes int
	RulesPath        string
	LogLevel         string
	LogFile          string
	MetricsAddr      string
	HighlightWorkers int
}

const (
	defaultConfigPath       = "~/.config/droidlog/config.toml"
	defaultRulesPath        = "~/.config/droidlog/rules.toml"
	defaultLogFile          = "~/.local/state/droidlog/droidlog.log"
	defaultADBAddr          = "127.0.0.1:5037"
	defaultIdleInterval     = 100 * time.Millisecond
	defaultMaxFragmentBytes = 1024 * 1024
	defaultLogLevel         = "info"
	defaultHighlightWorkers = 2

	// EnvPrefix namespaces environment overrides, e.g. DROIDLOG_SERIAL.
	EnvPrefix = "DROIDLOG"
)

type fileConfig struct {
	ADBAddr          string `toml:"adb_addr"`
	Serial           string `toml:"serial"`
	Package          string `toml:"package"`
	IdleIntervalMS   int    `toml:"idle_interval_ms"`
	MaxFragmentBytes int    `toml:"max_fragment_bytes"`
	RulesPath        string `toml:"rules_path"`
	LogLevel         string `toml:"log_level"`
	LogFile          string `toml:"log_file"`
	MetricsAddr      string `toml:"metrics_addr"`
	HighlightWorkers int    `toml:"highlight_workers"`
}

// envConfig mirrors fileConfig; nil fields were not set in the environment.
type envConfig struct {
	ADBAddr          *string `envconfig:"ADB_ADDR"`
	Serial           *string `envconfig:"SERIAL"`
	Package          *string `envconfig:"PACKAGE"`
	IdleIntervalMS   *int    `envconfig:"IDLE_INTERVAL_MS"`
	MaxFragmentBytes *int    `envconfig:"MAX_FRAGMENT_BYTES"`
	RulesPath        *string `envconfig:"RULES_PATH"`
	LogLevel         *string `envconfig:"LOG_LEVEL"`
	LogFile          *string `envconfig:"LOG_FILE"`
	MetricsAddr      *string `envconfig:"METRICS_ADDR"`
	HighlightWorkers *int    `envconfig:"HIGHLIGHT_WORKERS"`
}

// Default returns the configuration used when no file or environment
// overrides exist.
func Default() Config {
	return Config{
		ADBAddr:          defaultADBAddr,
		IdleInterval:     defaultIdleInterval,
		MaxFragmentBytes: defaultMaxFragmentBytes,
		RulesPath:        mustExpand(defaultRulesPath),
		LogLevel:         defaultLogLevel,
		LogFile:          mustExpand(defaultLogFile),
		HighlightWorkers: defaultHighlightWorkers,
	}
}

// Load reads the config file at path (or the default location), then
// applies DROIDLOG_* environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw fileConfig
	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	var env envConfig
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	env.apply(&raw)

	cfg := Default()
	if v := strings.TrimSpace(raw.ADBAddr); v != "" {
		cfg.ADBAddr = v
	}
	cfg.Serial = strings.TrimSpace(raw.Serial)
	cfg.Package = strings.TrimSpace(raw.Package)
	if raw.IdleIntervalMS > 0 {
		cfg.IdleInterval = time.Duration(raw.IdleIntervalMS) * time.Millisecond
	}
	if raw.MaxFragmentBytes != 0 {
		cfg.MaxFragmentBytes = raw.MaxFragmentBytes
	}
	if v := strings.TrimSpace(raw.RulesPath); v != "" {
		cfg.RulesPath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	if raw.HighlightWorkers > 0 {
		cfg.HighlightWorkers = raw.HighlightWorkers
	}

	return cfg, cfg.Validate()
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ADBAddr) == "" {
		return errors.New("adb_addr is empty")
	}
	if c.IdleInterval <= 0 {
		return fmt.Errorf("idle interval must be positive, got %s", c.IdleInterval)
	}
	if c.HighlightWorkers < 0 {
		return fmt.Errorf("highlight_workers must not be negative, got %d", c.HighlightWorkers)
	}
	return nil
}

// StateDir is the directory holding the default log file.
func (c Config) StateDir() string {
	if strings.TrimSpace(c.LogFile) == "" {
		return filepath.Dir(mustExpand(defaultLogFile))
	}
	return filepath.Dir(c.LogFile)
}

func (e envConfig) apply(raw *fileConfig) {
	setString(&raw.ADBAddr, e.ADBAddr)
	setString(&raw.Serial, e.Serial)
	setString(&raw.Package, e.Package)
	setInt(&raw.IdleIntervalMS, e.IdleIntervalMS)
	setInt(&raw.MaxFragmentBytes, e.MaxFragmentBytes)
	setString(&raw.RulesPath, e.RulesPath)
	setString(&raw.LogLevel, e.LogLevel)
	setString(&raw.LogFile, e.LogFile)
	setString(&raw.MetricsAddr, e.MetricsAddr)
	setInt(&raw.HighlightWorkers, e.HighlightWorkers)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
