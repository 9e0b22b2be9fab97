// FILE: lixenwraith/reflector/wellknown.go
package reflector

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date is a calendar day without a clock or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate accepts yyyy-MM-dd, yyyy/MM/dd and yyyyMMdd.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.DateOnly, "2006/01/02", "20060102", "2006-1-2", "2006/1/2"} {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("reflector: cannot parse %q as a date", s)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns midnight of d in loc.
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// IsZero reports the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TimeOfDay is a wall-clock time without a date, with nanosecond precision.
type TimeOfDay struct {
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
}

// TimeOfDayOf returns the clock component of t.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(), Nanosecond: t.Nanosecond()}
}

// ParseTimeOfDay accepts HH:mm, HH:mm:ss and HH:mm:ss with a fraction.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05.999999999", "15:04", "3:04PM", "3:04:05PM"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDayOf(t), nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("reflector: cannot parse %q as a time of day", s)
}

func (t TimeOfDay) String() string {
	s := fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	if t.Nanosecond > 0 {
		frac := strings.TrimRight(fmt.Sprintf("%09d", t.Nanosecond), "0")
		s += "." + frac
	}
	return s
}

// Duration returns the offset of t from midnight.
func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t.Hour)*time.Hour + time.Duration(t.Minute)*time.Minute +
		time.Duration(t.Second)*time.Second + time.Duration(t.Nanosecond)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeOfDay(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseDuration accepts Go duration syntax ("1h30m") and the clock form
// [-][d.]hh:mm:ss[.fffffff].
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	neg := strings.HasPrefix(s, "-")
	rest := strings.TrimPrefix(s, "-")

	var days int64
	if dot := strings.Index(rest, "."); dot >= 0 && dot < strings.Index(rest, ":") {
		n, err := strconv.ParseInt(rest[:dot], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("reflector: cannot parse %q as a duration: %w", s, err)
		}
		days = n
		rest = rest[dot+1:]
	}

	parts := strings.Split(rest, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("reflector: cannot parse %q as a duration", s)
	}

	var frac time.Duration
	if len(parts) == 3 {
		if dot := strings.Index(parts[2], "."); dot >= 0 {
			digits := (parts[2][dot+1:] + "000000000")[:9]
			n, err := strconv.ParseInt(digits, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("reflector: cannot parse %q as a duration: %w", s, err)
			}
			frac = time.Duration(n)
			parts[2] = parts[2][:dot]
		}
	}

	units := []time.Duration{time.Hour, time.Minute, time.Second}
	d := time.Duration(days) * 24 * time.Hour
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("reflector: cannot parse %q as a duration: %w", s, err)
		}
		d += time.Duration(n) * units[i]
	}
	d += frac

	if neg {
		d = -d
	}
	return d, nil
}

// FormatDuration renders d in the clock form read by ParseDuration.
func FormatDuration(d time.Duration) string {
	var sb strings.Builder
	if d < 0 {
		sb.WriteByte('-')
		d = -d
	}
	if days := d / (24 * time.Hour); days > 0 {
		fmt.Fprintf(&sb, "%d.", days)
		d -= days * 24 * time.Hour
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	sec := d / time.Second
	d -= sec * time.Second
	fmt.Fprintf(&sb, "%02d:%02d:%02d", h, m, sec)
	if d > 0 {
		fmt.Fprintf(&sb, ".%07d", d/100)
	}
	return sb.String()
}
