// FILE: lixenwraith/reflector/xlog/format.go
package xlog

import (
	"fmt"
	"strings"
	"time"
)

// Format renders a log template.
// A lone error argument with an empty or single-verb template renders as the error message.
// time.Time arguments are shifted by offset and rendered at millisecond, second or date
// precision depending on which components are non-zero.
func Format(format string, offset time.Duration, args ...any) string {
	if len(args) == 0 {
		return format
	}

	if len(args) == 1 && isBareTemplate(format) {
		if err, ok := args[0].(error); ok && err != nil {
			return err.Error()
		}
	}

	rendered := make([]any, len(args))
	copy(rendered, args)
	if strings.Contains(format, "%") {
		for i, arg := range rendered {
			if t, ok := arg.(time.Time); ok {
				rendered[i] = FormatTime(t.Add(offset))
			}
		}
	}

	return fmt.Sprintf(format, rendered...)
}

// FormatTime picks the shortest layout that keeps every non-zero component.
func FormatTime(t time.Time) string {
	switch {
	case t.Nanosecond()/int(time.Millisecond) > 0:
		return t.Format("2006-01-02 15:04:05.000")
	case t.Hour() > 0 || t.Minute() > 0 || t.Second() > 0:
		return t.Format("2006-01-02 15:04:05")
	default:
		return t.Format("2006-01-02")
	}
}

func isBareTemplate(format string) bool {
	switch format {
	case "", "%v", "%s":
		return true
	}
	return false
}
