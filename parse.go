// FILE: lixenwraith/reflector/parse.go
package reflector

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// currencySymbols are trimmed from text before decimal parsing.
const currencySymbols = "$￥¥€£"

// utcSuffix marks UTC instants in the text layout written by the serializer.
const utcSuffix = " UTC"

// timeLayouts are tried in order by ToTime.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.DateTime,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999 -07:00",
	"2006-01-02 15:04",
	time.DateOnly,
	"2006/01/02 15:04:05",
	"2006/01/02",
	"2006-1-2 15:04:05",
	"2006-1-2",
	"20060102150405",
	"20060102",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
}

// ToBool converts v leniently. Accepted truthy text: 1 true t yes y on ok enable;
// falsy text: 0 false f no n off disable and the empty string.
func ToBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "1", "true", "t", "yes", "y", "on", "ok", "enable", "enabled":
			return true, nil
		case "", "0", "false", "f", "no", "n", "off", "disable", "disabled":
			return false, nil
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return f != 0, nil
		}
		return false, fmt.Errorf("cannot convert string %q to bool", x)
	case decimal.Decimal:
		return !x.IsZero(), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0, nil
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0, nil
	case reflect.String:
		return ToBool(rv.String())
	}
	return false, fmt.Errorf("cannot convert type %T to bool", v)
}

// ToInt64 converts v, truncating fractions. Text is decimal, so "010" is 10; 0x, 0o
// and 0b prefixes select another base. Commas are accepted only as thousands
// separators grouping the integer part in threes, so "1,234" is 1234 and "1,5" fails.
func ToInt64(v any) (int64, error) {
	switch x := v.(type) {
	case string:
		s := cleanNumber(x)
		if i, err := strconv.ParseInt(s, numberBase(s), 64); err == nil {
			return i, nil
		} else if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			return int64(f), nil
		} else {
			return 0, fmt.Errorf("cannot convert string %q to int64: %w", x, err)
		}
	case decimal.Decimal:
		return x.IntPart(), nil
	case time.Time:
		return x.UnixMilli(), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return int64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return int64(rv.Float()), nil
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	case reflect.String:
		return ToInt64(rv.String())
	}
	return 0, fmt.Errorf("cannot convert type %T to int64", v)
}

// ToUint64 converts v like ToInt64. Negative values wrap.
func ToUint64(v any) (uint64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), nil
	case reflect.String:
		s := cleanNumber(rv.String())
		if u, err := strconv.ParseUint(s, numberBase(s), 64); err == nil {
			return u, nil
		}
	}
	i, err := ToInt64(v)
	return uint64(i), err
}

// ToFloat64 converts v. Text follows the ToInt64 rules for thousands separators.
func ToFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case string:
		s := cleanNumber(x)
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert string %q to float64: %w", x, err)
		}
		return f, nil
	case decimal.Decimal:
		return x.InexactFloat64(), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), nil
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	case reflect.String:
		return ToFloat64(rv.String())
	}
	return 0, fmt.Errorf("cannot convert type %T to float64", v)
}

// ToDecimal converts v. Leading currency symbols are trimmed from text.
func ToDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case string:
		s := strings.TrimLeft(strings.TrimSpace(x), currencySymbols)
		d, err := decimal.NewFromString(cleanNumber(s))
		if err != nil {
			return decimal.Zero, fmt.Errorf("cannot convert string %q to decimal: %w", x, err)
		}
		return d, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decimal.NewFromInt(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return decimal.NewFromUint64(rv.Uint()), nil
	case reflect.Float32:
		return decimal.NewFromFloat32(float32(rv.Float())), nil
	case reflect.Float64:
		return decimal.NewFromFloat(rv.Float()), nil
	case reflect.Bool:
		if rv.Bool() {
			return decimal.NewFromInt(1), nil
		}
		return decimal.Zero, nil
	case reflect.String:
		return ToDecimal(rv.String())
	}
	return decimal.Zero, fmt.Errorf("cannot convert type %T to decimal", v)
}

// ToTime converts v. Text ending in " UTC" is read as UTC, other zone-less text as local
// time. Integers are Unix milliseconds.
func ToTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case *time.Time:
		if x == nil {
			return time.Time{}, nil
		}
		return *x, nil
	case Date:
		return x.Time(time.Local), nil
	case string:
		return parseTime(x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		ms, _ := ToInt64(v)
		return time.UnixMilli(ms), nil
	case reflect.Float32, reflect.Float64:
		return time.UnixMilli(int64(rv.Float())), nil
	case reflect.String:
		return parseTime(rv.String())
	}
	return time.Time{}, fmt.Errorf("cannot convert type %T to time", v)
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	loc := time.Local
	if strings.HasSuffix(s, utcSuffix) {
		s = strings.TrimSuffix(s, utcSuffix)
		loc = time.UTC
	} else if strings.HasSuffix(s, "Z") && !strings.Contains(s, "T") {
		s = strings.TrimSuffix(s, "Z")
		loc = time.UTC
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot convert string %q to time", s)
}

// ToDuration converts v. Text uses ParseDuration, numbers are nanoseconds.
func ToDuration(v any) (time.Duration, error) {
	switch x := v.(type) {
	case time.Duration:
		return x, nil
	case TimeOfDay:
		return x.Duration(), nil
	case string:
		return ParseDuration(x)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return ParseDuration(rv.String())
	}
	n, err := ToInt64(v)
	if err != nil {
		return 0, fmt.Errorf("cannot convert type %T to duration", v)
	}
	return time.Duration(n), nil
}

// ToString renders v as text.
func ToString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		if x.Location() == time.UTC {
			return x.Format(time.DateTime) + utcSuffix
		}
		return x.Format(time.DateTime)
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.String:
		return rv.String()
	}
	return fmt.Sprint(v)
}

// cleanNumber trims s and drops commas that group the integer part in threes, as in
// "-1,234,567.25". Any other comma is kept for the parser to reject.
func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ",") {
		return s
	}
	intPart, rest := s, ""
	if i := strings.IndexAny(s, ".eE"); i >= 0 {
		intPart, rest = s[:i], s[i:]
	}
	if strings.Contains(rest, ",") {
		return s
	}
	groups := strings.Split(strings.TrimLeft(intPart, "+-"), ",")
	for i, g := range groups {
		if !isDigits(g) || len(g) > 3 || (i > 0 && len(g) != 3) {
			return s
		}
	}
	return strings.ReplaceAll(s, ",", "")
}

// numberBase is 0, letting strconv read the prefix, for text starting with 0x, 0o or
// 0b after an optional sign, and 10 otherwise.
func numberBase(s string) int {
	s = strings.TrimLeft(s, "+-")
	if len(s) > 2 && s[0] == '0' && strings.ContainsRune("xXoObB", rune(s[1])) {
		return 0
	}
	return 10
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
