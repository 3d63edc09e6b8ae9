package adb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/five82/droidlog/internal/lifecycle"
	"github.com/five82/droidlog/internal/stream"
)

const (
	// DefaultAddr is where a local adb server listens.
	DefaultAddr = "127.0.0.1:5037"

	handshakeTimeout = 5 * time.Second
	maxPayload       = 0xffff
)

// Ensure Client satisfies the reader's collaborators at compile time.
var (
	_ stream.Connector = (*Client)(nil)
	_ stream.Seeder    = (*Client)(nil)
)

// FailError is a FAIL reply from the adb server.
type FailError struct {
	Request string
	Message string
}

func (e *FailError) Error() string {
	return fmt.Sprintf("adb %s: %s", e.Request, e.Message)
}

// Device is one line of host:devices.
type Device struct {
	Serial string
	State  string // "device", "offline", "unauthorized", ...
}

// Client talks the adb host protocol to an adb server.
type Client struct {
	addr    string
	serial  string
	dialer  net.Dialer
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient builds a Client for the server at addr. An empty serial lets the
// server pick its only device.
func NewClient(addr, serial string, logger *zap.Logger) (*Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = DefaultAddr
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return nil, fmt.Errorf("parse adb address %q: %w", addr, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		addr:    addr,
		serial:  strings.TrimSpace(serial),
		timeout: handshakeTimeout,
		logger:  logger.With(zap.String("adb", addr)),
	}, nil
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Serial returns the selected device serial, empty for any device.
func (c *Client) Serial() string {
	return c.serial
}

// Version returns the adb server's protocol version.
func (c *Client) Version(ctx context.Context) (int, error) {
	payload, err := c.query(ctx, "host:version")
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(string(payload), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("parse adb version %q: %w", payload, err)
	}
	return int(v), nil
}

// Devices lists attached devices.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	payload, err := c.query(ctx, "host:devices")
	if err != nil {
		return nil, err
	}
	var devices []Device
	for _, line := range strings.Split(string(payload), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		devices = append(devices, Device{Serial: fields[0], State: fields[1]})
	}
	return devices, nil
}

// Open starts command in a device shell and returns the raw output stream.
// The handshake honours ctx; once it completes the caller owns the
// connection and its deadlines.
func (c *Client) Open(ctx context.Context, command string) (stream.Conn, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	_ = conn.SetDeadline(time.Now().Add(c.timeout))
	if err := c.selectDevice(conn); err != nil {
		_ = conn.Close()
		return nil, c.ctxErr(ctx, err)
	}
	if err := exchange(conn, "shell:"+command); err != nil {
		_ = conn.Close()
		return nil, c.ctxErr(ctx, err)
	}
	if !stop() {
		_ = conn.Close()
		return nil, ctx.Err()
	}
	_ = conn.SetDeadline(time.Time{})
	c.logger.Debug("shell opened", zap.String("serial", c.serial), zap.String("command", command))
	return conn, nil
}

// Shell runs command to completion and returns its output.
func (c *Client) Shell(ctx context.Context, command string) ([]byte, error) {
	conn, err := c.Open(ctx, command)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	out, err := io.ReadAll(conn)
	if err != nil {
		return out, c.ctxErr(ctx, fmt.Errorf("read shell output: %w", err))
	}
	return out, nil
}

// RunningPIDs lists the PIDs of processes named pkg using ps. Newer devices
// need "ps -A" to see other users' processes; older toolbox builds reject
// the flag, so an empty listing falls back to plain "ps".
func (c *Client) RunningPIDs(ctx context.Context, pkg string) ([]string, error) {
	var last error
	for _, cmd := range []string{"ps -A", "ps"} {
		out, err := c.Shell(ctx, cmd)
		if err != nil {
			last = err
			continue
		}
		if bytes.Count(out, []byte{'\n'}) <= 1 {
			continue
		}
		return lifecycle.ParsePS(bytes.NewReader(out), pkg)
	}
	if last != nil {
		return nil, last
	}
	return nil, nil
}

func (c *Client) dial(ctx context.Context) (*net.TCPConn, error) {
	conn, err := c.dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return nil, fmt.Errorf("connect to adb server: %w", err)
	}
	tcp, ok := conn.(*net.TCPConn)
	if !ok {
		_ = conn.Close()
		return nil, fmt.Errorf("connect to adb server: unexpected %T", conn)
	}
	return tcp, nil
}

func (c *Client) selectDevice(conn net.Conn) error {
	if c.serial == "" {
		return exchange(conn, "host:transport-any")
	}
	return exchange(conn, "host:transport:"+c.serial)
}

// query sends a host request whose OKAY reply carries a length-prefixed
// payload, as host:version and host:devices do.
func (c *Client) query(ctx context.Context, request string) ([]byte, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	_ = conn.SetDeadline(time.Now().Add(c.timeout))
	if err := exchange(conn, request); err != nil {
		return nil, c.ctxErr(ctx, err)
	}
	payload, err := readLengthPrefixed(conn)
	if err != nil {
		return nil, c.ctxErr(ctx, fmt.Errorf("adb %s: %w", request, err))
	}
	return payload, nil
}

func (c *Client) ctxErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ctxErr, err)
	}
	return err
}

// exchange writes one request and reads its status.
func exchange(conn io.ReadWriter, request string) error {
	if err := writeRequest(conn, request); err != nil {
		return fmt.Errorf("adb %s: %w", request, err)
	}
	return readStatus(conn, request)
}

func writeRequest(w io.Writer, request string) error {
	if len(request) > maxPayload {
		return fmt.Errorf("request too long (%d bytes)", len(request))
	}
	_, err := fmt.Fprintf(w, "%04x%s", len(request), request)
	return err
}

func readStatus(r io.Reader, request string) error {
	var status [4]byte
	if _, err := io.ReadFull(r, status[:]); err != nil {
		return fmt.Errorf("adb %s: read status: %w", request, err)
	}
	switch string(status[:]) {
	case "OKAY":
		return nil
	case "FAIL":
		msg, err := readLengthPrefixed(r)
		if err != nil {
			return fmt.Errorf("adb %s: read failure: %w", request, err)
		}
		return &FailError{Request: request, Message: string(msg)}
	default:
		return fmt.Errorf("adb %s: unexpected status %q", request, status[:])
	}
}

func readLengthPrefixed(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read length: %w", err)
	}
	n, err := strconv.ParseUint(string(header[:]), 16, 16)
	if err != nil {
		return nil, fmt.Errorf("parse length %q: %w", header[:], err)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return payload, nil
}

// IsFail reports whether err carries an adb FAIL reply.
func IsFail(err error) bool {
	var fail *FailError
	return errors.As(err, &fail)
}
