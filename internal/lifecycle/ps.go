package lifecycle

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ParsePS scans `ps` output and returns the PIDs of processes named pkg.
// Both the legacy toolbox and the toybox layouts put the PID in the second
// column and the process name in the last.
func ParsePS(r io.Reader, pkg string) ([]string, error) {
	pkg = strings.TrimSpace(pkg)
	if pkg == "" {
		return nil, nil
	}
	var pids []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		pid, name := fields[1], fields[len(fields)-1]
		if name != pkg || !isDigits(pid) {
			continue
		}
		pids = append(pids, pid)
	}
	if err := scanner.Err(); err != nil {
		return pids, fmt.Errorf("read ps output: %w", err)
	}
	return pids, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
