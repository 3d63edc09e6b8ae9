// Package prefs persists droidlog viewer preferences in
// ~/.config/droidlog/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/droidlog/internal/config"
	"github.com/five82/droidlog/internal/logcat"
)

// Prefs holds viewer preferences. MinLevel is stored as the level letter.
type Prefs struct {
	Theme    string `toml:"theme"`
	MinLevel string `toml:"min_level"`
	Follow   bool   `toml:"follow"`
}

const (
	defaultPrefsPath = "~/.config/droidlog/prefs.toml"
	defaultTheme     = "Dracula"
	defaultMinLevel  = "V"
)

// Defaults returns the preferences used when nothing is saved.
func Defaults() Prefs {
	return Prefs{Theme: defaultTheme, MinLevel: defaultMinLevel, Follow: true}
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Level returns MinLevel as a logcat level, falling back to verbose.
func (p Prefs) Level() logcat.Level {
	if lvl, ok := logcat.ParseLevel(p.MinLevel); ok {
		return lvl
	}
	return logcat.LevelVerbose
}

// normalize replaces unusable values with defaults and rewrites level names
// ("warning") as letters ("W").
func (p Prefs) normalize() Prefs {
	p.Theme = strings.TrimSpace(p.Theme)
	if p.Theme == "" {
		p.Theme = defaultTheme
	}
	if lvl, ok := logcat.ParseLevel(p.MinLevel); ok {
		p.MinLevel = lvl.String()
	} else {
		p.MinLevel = defaultMinLevel
	}
	return p
}

// Load reads preferences from path (empty for the default location). A
// missing file yields Defaults and no error. An unreadable or malformed file
// also yields Defaults, along with the error so the caller can report it;
// the viewer still starts either way.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Defaults(), err
	}

	data, err := os.ReadFile(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return Defaults(), nil
	case err != nil:
		return Defaults(), fmt.Errorf("read prefs: %w", err)
	}

	p := Defaults()
	if err := toml.Unmarshal(data, &p); err != nil {
		return Defaults(), fmt.Errorf("parse prefs %s: %w", resolved, err)
	}
	return p.normalize(), nil
}

// Save writes p to path, creating directories as needed. The file is
// replaced by rename so a crash never leaves it half written.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	data, err := toml.Marshal(p.normalize())
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".prefs-*.toml")
	if err != nil {
		return fmt.Errorf("create temp prefs: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp.Name(), resolved); err != nil {
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultPrefsPath
	}
	resolved, err := config.ExpandPath(path)
	if err != nil {
		return "", fmt.Errorf("resolve prefs path: %w", err)
	}
	return resolved, nil
}
