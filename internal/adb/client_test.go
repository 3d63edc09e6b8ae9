package adb

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer answers adb host requests on a loopback listener. shell maps a
// shell command to its output; a missing command gets a FAIL.
type fakeServer struct {
	ln    net.Listener
	shell map[string]string
	hold  bool // keep shell connections open after writing output

	mu       sync.Mutex
	requests []string
}

func newFakeServer(t *testing.T, shell map[string]string) *fakeServer {
	return startFakeServer(t, shell, false)
}

func startFakeServer(t *testing.T, shell map[string]string, hold bool) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := &fakeServer{ln: ln, shell: shell, hold: hold}
	t.Cleanup(func() { _ = ln.Close() })
	go s.serve()
	return s
}

func (s *fakeServer) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *fakeServer) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *fakeServer) handle(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	for {
		var header [4]byte
		if _, err := io.ReadFull(r, header[:]); err != nil {
			return
		}
		n, err := strconv.ParseUint(string(header[:]), 16, 16)
		if err != nil {
			return
		}
		body := make([]byte, n)
		if _, err := io.ReadFull(r, body); err != nil {
			return
		}
		req := string(body)
		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()

		switch {
		case req == "host:version":
			fmt.Fprintf(conn, "OKAY%04x%s", 4, "0029")
			return
		case req == "host:devices":
			list := "emulator-5554\tdevice\nR58M\tunauthorized\n"
			fmt.Fprintf(conn, "OKAY%04x%s", len(list), list)
			return
		case req == "host:transport-any":
			_, _ = io.WriteString(conn, "OKAY")
		case strings.HasPrefix(req, "host:transport:"):
			if req != "host:transport:emulator-5554" {
				msg := "device '" + strings.TrimPrefix(req, "host:transport:") + "' not found"
				fmt.Fprintf(conn, "FAIL%04x%s", len(msg), msg)
				return
			}
			_, _ = io.WriteString(conn, "OKAY")
		case strings.HasPrefix(req, "shell:"):
			out, ok := s.shell[strings.TrimPrefix(req, "shell:")]
			if !ok {
				msg := "closed"
				fmt.Fprintf(conn, "FAIL%04x%s", len(msg), msg)
				return
			}
			_, _ = io.WriteString(conn, "OKAY"+out)
			if s.hold {
				_, _ = io.Copy(io.Discard, r)
			}
			return
		default:
			return
		}
	}
}

func newTestClient(t *testing.T, s *fakeServer, serial string) *Client {
	t.Helper()
	c, err := NewClient(s.ln.Addr().String(), serial, nil)
	require.NoError(t, err)
	return c
}

func TestNewClient_DefaultsAndValidates(t *testing.T) {
	c, err := NewClient("  ", "", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultAddr, c.Addr())
	assert.Empty(t, c.Serial())

	_, err = NewClient("no-port", "", nil)
	assert.Error(t, err)
}

func TestClient_VersionAndDevices(t *testing.T) {
	s := newFakeServer(t, nil)
	c := newTestClient(t, s, "")

	v, err := c.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0x29, v)

	devices, err := c.Devices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Device{
		{Serial: "emulator-5554", State: "device"},
		{Serial: "R58M", State: "unauthorized"},
	}, devices)
}

func TestClient_ShellSelectsTransport(t *testing.T) {
	s := newFakeServer(t, map[string]string{"echo hi": "hi\n"})

	out, err := newTestClient(t, s, "").Shell(context.Background(), "echo hi")
	require.NoError(t, err)
	assert.Equal(t, "hi\n", string(out))

	out, err = newTestClient(t, s, "emulator-5554").Shell(context.Background(), "echo hi")
	require.NoError(t, err)
	assert.Equal(t, "hi\n", string(out))

	assert.Equal(t, []string{
		"host:transport-any", "shell:echo hi",
		"host:transport:emulator-5554", "shell:echo hi",
	}, s.recorded())
}

func TestClient_FailReply(t *testing.T) {
	s := newFakeServer(t, nil)
	_, err := newTestClient(t, s, "missing").Open(context.Background(), "logcat")
	require.Error(t, err)
	assert.True(t, IsFail(err))
	assert.Contains(t, err.Error(), "device 'missing' not found")
}

func TestClient_OpenStreamsOutput(t *testing.T) {
	s := startFakeServer(t, map[string]string{"logcat -v brief -T 1": "I/Tag(  1): hello\n"}, true)

	conn, err := newTestClient(t, s, "").Open(context.Background(), "logcat -v brief -T 1")
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "I/Tag(  1): hello\n", line)
}

func TestClient_OpenHonoursCancelledContext(t *testing.T) {
	s := newFakeServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestClient(t, s, "").Open(ctx, "logcat")
	assert.Error(t, err)
}

func TestClient_RunningPIDs(t *testing.T) {
	ps := strings.Join([]string{
		"USER           PID  PPID     VSZ    RSS WCHAN            ADDR S NAME",
		"root             1     0 1000000   5000 0                   0 S init",
		"u0_a55        1234   600 2000000  90000 0                   0 S com.example.app",
		"u0_a55        1240   600 2000000  90000 0                   0 S com.example.app:remote",
		"u0_a55        1250   600 2000000  90000 0                   0 S com.example.app",
	}, "\r\n") + "\r\n"
	s := newFakeServer(t, map[string]string{"ps -A": ps})

	pids, err := newTestClient(t, s, "").RunningPIDs(context.Background(), "com.example.app")
	require.NoError(t, err)
	assert.Equal(t, []string{"1234", "1250"}, pids)
}

func TestClient_RunningPIDsFallsBackToPlainPS(t *testing.T) {
	legacy := "USER     PID   PPID  VSIZE  RSS     WCHAN    PC        NAME\n" +
		"u0_a55    777   100   9000   3000  ffffffff 00000000 S com.example.app\n"
	s := newFakeServer(t, map[string]string{"ps -A": "bad pid '-A'\n", "ps": legacy})

	pids, err := newTestClient(t, s, "").RunningPIDs(context.Background(), "com.example.app")
	require.NoError(t, err)
	assert.Equal(t, []string{"777"}, pids)
}

func TestFailErrorMessage(t *testing.T) {
	err := &FailError{Request: "host:transport:x", Message: "device offline"}
	assert.Equal(t, "adb host:transport:x: device offline", err.Error())
}
