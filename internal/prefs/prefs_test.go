package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/droidlog/internal/logcat"
)

func writePrefs(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prefs.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), p)
	assert.Equal(t, logcat.LevelVerbose, p.Level())
}

func TestLoad_DefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".config", "droidlog")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prefs.toml"),
		[]byte("theme = \"Slate\"\nmin_level = \"warning\"\nfollow = false\n"), 0o644))

	p, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Prefs{Theme: "Slate", MinLevel: "W", Follow: false}, p)
	assert.Equal(t, logcat.LevelWarning, p.Level())
}

func TestLoad_PartialFileKeepsOtherDefaults(t *testing.T) {
	p, err := Load(writePrefs(t, "min_level = \"E\"\n"))
	require.NoError(t, err)
	assert.Equal(t, Prefs{Theme: defaultTheme, MinLevel: "E", Follow: true}, p)
}

func TestLoad_UnusableValuesFallBack(t *testing.T) {
	p, err := Load(writePrefs(t, "theme = \"  \"\nmin_level = \"loud\"\n"))
	require.NoError(t, err)
	assert.Equal(t, defaultTheme, p.Theme)
	assert.Equal(t, defaultMinLevel, p.MinLevel)
}

func TestLoad_MalformedFileReportsError(t *testing.T) {
	p, err := Load(writePrefs(t, "not valid toml {{{\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse prefs")
	assert.Equal(t, Defaults(), p)
}

func TestSave_CreatesDirsAndRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "prefs.toml")

	require.NoError(t, Save(path, Prefs{Theme: "Slate", MinLevel: "error", Follow: false}))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Prefs{Theme: "Slate", MinLevel: "E", Follow: false}, loaded)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestSave_Overwrites(t *testing.T) {
	path := writePrefs(t, "theme = \"Dracula\"\n")

	require.NoError(t, Save(path, Prefs{Theme: "Slate", MinLevel: "D", Follow: true}))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Slate", loaded.Theme)
	assert.Equal(t, logcat.LevelDebug, loaded.Level())
}
