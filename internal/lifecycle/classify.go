package lifecycle

import (
	"regexp"

	"github.com/five82/droidlog/internal/events"
	"github.com/five82/droidlog/internal/logcat"
)

// Tags that scope the tag-specific grammars.
const (
	ActivityManagerTag = "ActivityManager"
	DalvikTag          = "dalvikvm"
)

const packageChars = `[a-zA-Z0-9._:]+`

var (
	startProcRe       = regexp.MustCompile(`^Start proc (\d+):(` + packageChars + `)/[a-z0-9]+ for (.*)$`)
	startProcLegacyRe = regexp.MustCompile(`^Start proc (` + packageChars + `) for ([a-z]+ [^:]+): pid=(\d+) uid=(\d+) gids=(.*)$`)
	dalvikStartRe     = regexp.MustCompile(`^>>>>> (` + packageChars + `) \[ userId:0 \| appId:(\d+) \]$`)
	killRe            = regexp.MustCompile(`^Killing (\d+):(` + packageChars + `)/[^:]+: (.*)$`)
	leaveRe           = regexp.MustCompile(`^No longer want (` + packageChars + `) \(pid (\d+)\): .*$`)
	deathRe           = regexp.MustCompile(`^Process (` + packageChars + `) \(pid (\d+)\) has died\.?$`)
)

type matcher func(rec logcat.Record) events.Event

// grammars is tried front to back and the first hit wins. Several entries
// can match the same text with different field extraction, so the order is
// part of the contract.
var grammars = []matcher{
	matchStartProc,
	matchStartProcLegacy,
	matchDalvikStart,
	matchKill,
	matchLeave,
	matchDeath,
}

// Classify reports whether rec announces a process start or end. It returns
// events.ProcessStarted, events.ProcessEnded, or nil for an ordinary record.
func Classify(rec logcat.Record) events.Event {
	for _, m := range grammars {
		if evt := m(rec); evt != nil {
			return evt
		}
	}
	return nil
}

func matchStartProc(rec logcat.Record) events.Event {
	m := startProcRe.FindStringSubmatch(rec.Message)
	if m == nil {
		return nil
	}
	return events.ProcessStarted{PID: m[1], Package: m[2], Target: m[3]}
}

func matchStartProcLegacy(rec logcat.Record) events.Event {
	m := startProcLegacyRe.FindStringSubmatch(rec.Message)
	if m == nil {
		return nil
	}
	return events.ProcessStarted{PID: m[3], Package: m[1], Target: m[2]}
}

func matchDalvikStart(rec logcat.Record) events.Event {
	if rec.Tag != DalvikTag || rec.Level != logcat.LevelError {
		return nil
	}
	m := dalvikStartRe.FindStringSubmatch(rec.Message)
	if m == nil {
		return nil
	}
	return events.ProcessStarted{PID: rec.PID, Package: m[1]}
}

func matchKill(rec logcat.Record) events.Event {
	if rec.Tag != ActivityManagerTag {
		return nil
	}
	m := killRe.FindStringSubmatch(rec.Message)
	if m == nil {
		return nil
	}
	return events.ProcessEnded{PID: m[1], Package: m[2]}
}

func matchLeave(rec logcat.Record) events.Event {
	if rec.Tag != ActivityManagerTag {
		return nil
	}
	m := leaveRe.FindStringSubmatch(rec.Message)
	if m == nil {
		return nil
	}
	return events.ProcessEnded{PID: m[2], Package: m[1]}
}

func matchDeath(rec logcat.Record) events.Event {
	if rec.Tag != ActivityManagerTag {
		return nil
	}
	m := deathRe.FindStringSubmatch(rec.Message)
	if m == nil {
		return nil
	}
	return events.ProcessEnded{PID: m[2], Package: m[1]}
}
