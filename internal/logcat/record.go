package logcat

import (
	"regexp"
	"strings"
)

// Level is the single-letter priority code of a brief-format line.
type Level byte

const (
	LevelVerbose Level = 'V'
	LevelDebug   Level = 'D'
	LevelInfo    Level = 'I'
	LevelWarning Level = 'W'
	LevelError   Level = 'E'
	LevelFatal   Level = 'F'
	LevelSilent  Level = 'S'
)

// Levels lists the known levels from least to most severe.
var Levels = []Level{LevelVerbose, LevelDebug, LevelInfo, LevelWarning, LevelError, LevelFatal, LevelSilent}

// Name returns the long name of the level, or "Unknown" for a letter logcat
// does not define.
func (l Level) Name() string {
	switch l {
	case LevelVerbose:
		return "Verbose"
	case LevelDebug:
		return "Debug"
	case LevelInfo:
		return "Info"
	case LevelWarning:
		return "Warning"
	case LevelError:
		return "Error"
	case LevelFatal:
		return "Fatal"
	case LevelSilent:
		return "Silent"
	default:
		return "Unknown"
	}
}

func (l Level) String() string {
	return string(rune(l))
}

// Known reports whether l is one of the levels logcat emits.
func (l Level) Known() bool {
	return l.Rank() >= 0
}

// Rank orders known levels by severity; unknown levels rank -1.
func (l Level) Rank() int {
	for i, lv := range Levels {
		if lv == l {
			return i
		}
	}
	return -1
}

// ParseLevel maps a letter or long name ("W", "warning") to a Level.
func ParseLevel(s string) (Level, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, lv := range Levels {
		if strings.EqualFold(s, lv.String()) || strings.EqualFold(s, lv.Name()) {
			return lv, true
		}
	}
	return 0, false
}

// Record is one parsed brief-format line.
type Record struct {
	Level   Level
	Tag     string
	PID     string
	Message string
}

var briefRe = regexp.MustCompile(`^([A-Z])/(.+)\( *(\d+)\): (.*)$`)

// Parse decodes a brief-format line such as
//
//	I/ActivityManager( 1234): Start proc ...
//
// It reports false for anything else; logcat interleaves headers and other
// noise that callers are expected to drop.
func Parse(line string) (Record, bool) {
	m := briefRe.FindStringSubmatch(line)
	if m == nil {
		return Record{}, false
	}
	return Record{
		Level:   Level(m[1][0]),
		Tag:     strings.TrimRight(m[2], " \t"),
		PID:     m[3],
		Message: m[4],
	}, true
}

// String renders the record back in brief format.
func (r Record) String() string {
	return r.Level.String() + "/" + r.Tag + "(" + r.PID + "): " + r.Message
}
