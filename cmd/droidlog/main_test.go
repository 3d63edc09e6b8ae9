package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hostServer answers every connection with one OKAY reply carrying payload.
func hostServer(t *testing.T, payload string) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			var size [4]byte
			if _, err := io.ReadFull(conn, size[:]); err == nil {
				n, _ := strconv.ParseUint(string(size[:]), 16, 16)
				_, _ = io.CopyN(io.Discard, conn, int64(n))
				_, _ = fmt.Fprintf(conn, "OKAY%04x%s", len(payload), payload)
			}
			_ = conn.Close()
		}
	}()
	return ln.Addr().String()
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--config", filepath.Join(dir, "config.toml")))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	addr := hostServer(t, "0029")

	out, err := execute(t, "version", "--adb", addr)
	require.NoError(t, err)
	assert.Equal(t, "droidlog dev\nadb server protocol 41\n", out)
}

func TestVersionCommand_ServerUnavailable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	out, err := execute(t, "version", "--adb", addr)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "droidlog dev\nadb server unavailable: "), out)
}

func TestDevicesCommand(t *testing.T) {
	addr := hostServer(t, "emulator-5554\tdevice\nR58M\tunauthorized\n")

	out, err := execute(t, "devices", "--adb", addr)
	require.NoError(t, err)
	assert.Equal(t, "emulator-5554  device\nR58M           unauthorized\n", out)
}

func TestDevicesCommand_NoDevices(t *testing.T) {
	addr := hostServer(t, "")

	out, err := execute(t, "devices", "--adb", addr)
	require.NoError(t, err)
	assert.Equal(t, "no devices attached\n", out)
}

func TestTailCommand_ReplayWithPackageArgument(t *testing.T) {
	dir := t.TempDir()
	capture := filepath.Join(dir, "capture.log")
	require.NoError(t, os.WriteFile(capture, []byte(
		"I/ActivityManager(  600): Start proc 99:com.example.app/u0a1 for service com.example.app/.Sync\n"+
			"I/Sync(   99): syncing\n"+
			"I/Other(  100): unrelated\n"), 0o644))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{
		"tail",
		"--config", filepath.Join(dir, "config.toml"),
		"--prefs", filepath.Join(dir, "prefs.toml"),
		"--rules", filepath.Join(dir, "rules.toml"),
		"--log-level", "error",
		"--replay", capture,
		"com.example.app",
	})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "com.example.app started")
	assert.Contains(t, out.String(), "syncing")
	assert.NotContains(t, out.String(), "unrelated")
}

func TestRootCommand_RejectsExtraArguments(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"a", "b"})
	assert.Error(t, cmd.Execute())
}
