// FILE: lixenwraith/reflector/jsonx/writer.go
package jsonx

import (
	"bytes"
	"encoding"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lixenwraith/reflector"
)

const (
	// TimeLayout is the default time rendering; UTC values get a " UTC" suffix
	TimeLayout = time.DateTime
	// FullTimeLayout is used when Options.FullTime is set
	FullTimeLayout = "2006-01-02T15:04:05.0000000-07:00"
)

var (
	typeOfTime     = reflect.TypeFor[time.Time]()
	typeOfDuration = reflect.TypeFor[time.Duration]()
	typeOfDecimal  = reflect.TypeFor[decimal.Decimal]()
	typeOfUUID     = reflect.TypeFor[uuid.UUID]()

	typeOfTextMarshaler = reflect.TypeFor[encoding.TextMarshaler]()
)

// Writer renders values as JSON text. Struct members come from the Reflector's property
// list, so embedded members are written before the ones a type declares itself.
type Writer struct {
	r    *reflector.Reflector
	opts Options
	buf  bytes.Buffer
}

// NewWriter creates a Writer. A nil Reflector selects reflector.Default().
func NewWriter(r *reflector.Reflector, opts Options) *Writer {
	if r == nil {
		r = reflector.Default()
	}
	return &Writer{r: r, opts: opts}
}

// Options returns the writer's options.
func (w *Writer) Options() Options {
	return w.opts
}

// Write appends the rendering of v to the buffer.
func (w *Writer) Write(v any) error {
	return w.writeValue(reflect.ValueOf(v))
}

// String returns the text written so far.
func (w *Writer) String() string {
	return w.buf.String()
}

// Bytes returns the text written so far.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Reset discards the buffer.
func (w *Writer) Reset() {
	w.buf.Reset()
}

// ToJSON renders v with the default Reflector and DefaultOptions.
func ToJSON(v any) (string, error) {
	w := NewWriter(nil, DefaultOptions())
	if err := w.Write(v); err != nil {
		return "", err
	}
	return w.String(), nil
}

func (w *Writer) writeValue(v reflect.Value) error {
	if !v.IsValid() {
		w.buf.WriteString("null")
		return nil
	}
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			w.buf.WriteString("null")
			return nil
		}
		if rt, ok := v.Interface().(reflect.Type); ok {
			w.writeString(rt.String())
			return nil
		}
		v = v.Elem()
	}

	t := v.Type()
	if w.r.IsEnum(t) {
		if name, ok := w.r.EnumName(v.Interface()); ok && w.opts.EnumString {
			w.writeString(name)
			return nil
		}
		w.buf.WriteString(reflector.ToString(codeOf(v)))
		return nil
	}

	switch t {
	case typeOfTime:
		w.writeString(w.formatTime(v.Interface().(time.Time)))
		return nil
	case typeOfDuration:
		w.writeString(reflector.FormatDuration(time.Duration(v.Int())))
		return nil
	case typeOfDecimal:
		w.buf.WriteString(v.Interface().(decimal.Decimal).String())
		return nil
	case typeOfUUID:
		w.writeString(v.Interface().(uuid.UUID).String())
		return nil
	}
	if m, ok := textMarshaler(v); ok {
		text, err := m.MarshalText()
		if err != nil {
			return fmt.Errorf("jsonx: marshal %s: %w", t, err)
		}
		w.writeString(string(text))
		return nil
	}

	switch v.Kind() {
	case reflect.Bool:
		w.buf.WriteString(strconv.FormatBool(v.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		w.buf.WriteString(strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		w.buf.WriteString(strconv.FormatUint(v.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		w.writeFloat(v.Float(), t.Bits())
	case reflect.String:
		w.writeString(v.String())
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			w.buf.WriteString("null")
			return nil
		}
		return w.writeArray(v)
	case reflect.Map:
		if v.IsNil() {
			w.buf.WriteString("null")
			return nil
		}
		return w.writeMap(v)
	case reflect.Struct:
		return w.writeObject(v)
	default:
		return fmt.Errorf("jsonx: unsupported type %s", t)
	}
	return nil
}

func (w *Writer) writeFloat(f float64, bits int) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		w.buf.WriteString("null")
		return
	}
	w.buf.WriteString(strconv.FormatFloat(f, 'g', -1, bits))
}

func (w *Writer) writeArray(v reflect.Value) error {
	w.buf.WriteByte('[')
	for i := 0; i < v.Len(); i++ {
		if i > 0 {
			w.buf.WriteByte(',')
		}
		if err := w.writeValue(v.Index(i)); err != nil {
			return err
		}
	}
	w.buf.WriteByte(']')
	return nil
}

func (w *Writer) writeMap(v reflect.Value) error {
	type entry struct {
		key string
		val reflect.Value
	}
	entries := make([]entry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		entries = append(entries, entry{reflector.ToString(iter.Key().Interface()), iter.Value()})
	}
	slices.SortFunc(entries, func(a, b entry) int { return strings.Compare(a.key, b.key) })

	w.buf.WriteByte('{')
	first := true
	for _, e := range entries {
		if w.opts.IgnoreNullValues && isNull(e.val) {
			continue
		}
		w.writeKey(e.key, &first)
		if err := w.writeValue(e.val); err != nil {
			return err
		}
	}
	w.buf.WriteByte('}')
	return nil
}

func (w *Writer) writeObject(v reflect.Value) error {
	if !v.CanAddr() {
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		v = p.Elem()
	}

	w.buf.WriteByte('{')
	first := true
	written := make(map[string]bool)
	for _, m := range w.r.Properties(v.Type(), true) {
		if w.opts.IgnoreReadOnlyProperties && !m.CanWrite {
			continue
		}
		val, ok := m.Get(v)
		if !ok {
			continue
		}
		rv := reflect.ValueOf(val)
		if w.opts.IgnoreNullValues && isNull(rv) {
			continue
		}
		if m.OmitEmpty && (!rv.IsValid() || rv.IsZero()) {
			continue
		}
		written[m.Name] = true
		w.writeKey(m.WireName(), &first)
		if err := w.writeValue(rv); err != nil {
			return fmt.Errorf("jsonx: member %s: %w", m.Name, err)
		}
	}

	if ext, ok := v.Addr().Interface().(reflector.Extend); ok {
		items := ext.Items()
		keys := make([]string, 0, len(items))
		for k := range items {
			if !written[k] {
				keys = append(keys, k)
			}
		}
		slices.Sort(keys)
		for _, k := range keys {
			rv := reflect.ValueOf(items[k])
			if w.opts.IgnoreNullValues && isNull(rv) {
				continue
			}
			w.writeKey(k, &first)
			if err := w.writeValue(rv); err != nil {
				return fmt.Errorf("jsonx: item %s: %w", k, err)
			}
		}
	}
	w.buf.WriteByte('}')
	return nil
}

func (w *Writer) writeKey(name string, first *bool) {
	if !*first {
		w.buf.WriteByte(',')
	}
	*first = false
	w.writeString(w.memberName(name))
	w.buf.WriteByte(':')
}

func (w *Writer) memberName(name string) string {
	switch {
	case w.opts.LowerCase:
		return strings.ToLower(name)
	case w.opts.CamelCase && name != "":
		r, size := utf8.DecodeRuneInString(name)
		return string(unicode.ToLower(r)) + name[size:]
	}
	return name
}

func (w *Writer) formatTime(t time.Time) string {
	if w.opts.UseUTCDateTime {
		t = t.UTC()
	}
	if w.opts.FullTime {
		return t.Format(FullTimeLayout)
	}
	if t.Location() == time.UTC {
		return t.Format(TimeLayout) + " UTC"
	}
	return t.Format(TimeLayout)
}

// writeString quotes s, escaping quotes, backslashes and control characters.
// Valid non-ASCII text is written as is and invalid bytes become \ufffd.
func (w *Writer) writeString(s string) {
	w.buf.WriteByte('"')
	start := 0
	for i := 0; i < len(s); {
		c := s[i]
		if c >= utf8.RuneSelf {
			// invalid UTF-8 is written as U+FFFD
			r, size := utf8.DecodeRuneInString(s[i:])
			if r == utf8.RuneError && size == 1 {
				w.buf.WriteString(s[start:i])
				w.buf.WriteString(`\ufffd`)
				start = i + size
			}
			i += size
			continue
		}
		if c >= 0x20 && c != '"' && c != '\\' {
			i++
			continue
		}
		w.buf.WriteString(s[start:i])
		switch c {
		case '"', '\\':
			w.buf.WriteByte('\\')
			w.buf.WriteByte(c)
		case '\b':
			w.buf.WriteString(`\b`)
		case '\f':
			w.buf.WriteString(`\f`)
		case '\n':
			w.buf.WriteString(`\n`)
		case '\r':
			w.buf.WriteString(`\r`)
		case '\t':
			w.buf.WriteString(`\t`)
		default:
			fmt.Fprintf(&w.buf, `\u%04x`, c)
		}
		i++
		start = i
	}
	w.buf.WriteString(s[start:])
	w.buf.WriteByte('"')
}

// isNull reports absent values and empty strings.
func isNull(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	case reflect.String:
		return v.Len() == 0
	}
	return false
}

// textMarshaler finds MarshalText on v or, for addressable values, on its pointer.
func textMarshaler(v reflect.Value) (encoding.TextMarshaler, bool) {
	if v.Type().Implements(typeOfTextMarshaler) {
		return v.Interface().(encoding.TextMarshaler), true
	}
	if v.CanAddr() && reflect.PointerTo(v.Type()).Implements(typeOfTextMarshaler) {
		return v.Addr().Interface().(encoding.TextMarshaler), true
	}
	return nil, false
}

func codeOf(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint()
	}
	return v.Int()
}
