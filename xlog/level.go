// FILE: lixenwraith/reflector/xlog/level.go
package xlog

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level is the severity of a log line. Lines below the logger level are dropped.
type Level int

const (
	// LevelAll enables every line
	LevelAll Level = iota
	// LevelDebug is for diagnostics such as cache population and lenient fallbacks
	LevelDebug
	// LevelInfo is the default level
	LevelInfo
	// LevelWarn is for recoverable problems
	LevelWarn
	// LevelError is for failed operations
	LevelError
	// LevelFatal is for failures the process cannot continue after
	LevelFatal
	// LevelOff disables logging
	LevelOff
)

var levelNames = [...]string{"ALL", "DEBUG", "INFO", "WARN", "ERROR", "FATAL", "OFF"}

// String returns the upper-case level name.
func (l Level) String() string {
	if l < LevelAll || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel matches a level name case-insensitively. "warning" is accepted for LevelWarn.
func ParseLevel(s string) (Level, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "WARNING" {
		return LevelWarn, nil
	}
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// slogLevel maps a Level onto the slog scale. Fatal sits above slog.LevelError.
func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelAll, LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	case LevelFatal:
		return slog.LevelError + 4
	default:
		return slog.LevelError + 8
	}
}
