// FILE: lixenwraith/reflector/coerce.go
package reflector

import (
	"encoding"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
)

// step is one link of the coercion chain. ok reports a match; a non-nil error aborts.
type step struct {
	name string
	fn   func(r *Reflector, value any, target reflect.Type) (out any, ok bool, err error)
}

func defaultSteps() []step {
	return []step{
		{"identity", identityStep},
		{"nullable", nullableStep},
		{"enum", enumStep},
		{"empty-collection", emptyCollectionStep},
		{"text", textStep},
		{"basic", basicStep},
		{"well-known", wellKnownStep},
		{"parsable", parsableStep},
		{"composite", compositeStep},
		{"zero", zeroStep},
		{"assignable", assignableStep},
	}
}

// Coerce converts value to target. Pointer values are dereferenced unless target is a
// pointer or interface. Unmatched values come back unchanged, so callers needing a strict
// result must check the returned type. Parse failures of enum names,
// uuids, durations, dates and parsable types are returned as the parser's own error.
func (r *Reflector) Coerce(value any, target reflect.Type) (any, error) {
	if target == nil {
		return nil, ErrNilType
	}
	value = deref(value, target)
	for _, s := range r.steps {
		out, ok, err := s.fn(r, value, target)
		if err != nil {
			return nil, err
		}
		if ok {
			return out, nil
		}
	}
	r.logger.Debug("reflector: no coercion from %T to %s, value kept", value, target)
	return value, nil
}

// Coerce converts value with the default Reflector.
func Coerce(value any, target reflect.Type) (any, error) {
	return std.Coerce(value, target)
}

// To converts value to T with r.
func To[T any](r *Reflector, value any) (T, error) {
	var zero T
	target := reflect.TypeFor[T]()
	out, err := r.Coerce(value, target)
	if err != nil {
		return zero, err
	}
	if out == nil {
		return zero, nil
	}
	t, ok := out.(T)
	if !ok {
		return zero, &MismatchError{Want: target, Got: reflect.TypeOf(out)}
	}
	return t, nil
}

func identityStep(_ *Reflector, value any, target reflect.Type) (any, bool, error) {
	return value, value != nil && reflect.TypeOf(value) == target, nil
}

// nullableStep treats pointer targets as optional values. Absent input and the zero
// time become a nil pointer.
func nullableStep(r *Reflector, value any, target reflect.Type) (any, bool, error) {
	if target.Kind() != reflect.Pointer {
		return nil, false, nil
	}
	none := reflect.Zero(target).Interface()
	if value == nil {
		return none, true, nil
	}
	inner := value
	if rv := reflect.ValueOf(value); rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return none, true, nil
		}
		inner = rv.Elem().Interface()
	}
	if t, ok := inner.(time.Time); ok && t.IsZero() {
		return none, true, nil
	}

	out, err := r.Coerce(inner, target.Elem())
	if err != nil {
		return nil, false, err
	}
	ov := reflect.ValueOf(out)
	if !ov.IsValid() {
		return none, true, nil
	}
	if !ov.Type().AssignableTo(target.Elem()) {
		return value, true, nil
	}
	p := reflect.New(target.Elem())
	p.Elem().Set(ov)
	return p.Interface(), true, nil
}

func enumStep(r *Reflector, value any, target reflect.Type) (any, bool, error) {
	if value == nil || !r.IsEnum(target) {
		return nil, false, nil
	}
	if s, ok := text(value); ok && !r.IsEnum(reflect.TypeOf(value)) {
		out, err := r.ParseEnum(target, s)
		return out, err == nil, err
	}
	code, err := ToInt64(value)
	if err != nil {
		return nil, false, fmt.Errorf("reflector: %T is not a code of %s: %w", value, target, err)
	}
	return enumFromCode(target, code), true, nil
}

func emptyCollectionStep(_ *Reflector, value any, target reflect.Type) (any, bool, error) {
	if value != nil {
		return nil, false, nil
	}
	switch target.Kind() {
	case reflect.Slice:
		return reflect.MakeSlice(target, 0, 0).Interface(), true, nil
	case reflect.Map:
		return reflect.MakeMap(target).Interface(), true, nil
	}
	return nil, false, nil
}

// textStep covers currency text into decimals, type names into reflect.Type and short
// text into integers narrower than 64 bits.
func textStep(r *Reflector, value any, target reflect.Type) (any, bool, error) {
	s, ok := text(value)
	if !ok || parsable(target) {
		return nil, false, nil
	}
	switch k := r.KindOf(target); {
	case k == KindDecimal:
		d, err := ToDecimal(strings.TrimLeft(strings.TrimSpace(s), currencySymbols))
		return d, err == nil, nil
	case k == KindType:
		t, found := r.TypeByName(s)
		if !found {
			return nil, false, fmt.Errorf("%w: %s", ErrUnknownType, s)
		}
		return t, true, nil
	case k.IsBounded() && len(s) <= 10:
		n, err := ToInt64(s)
		if err != nil {
			return nil, false, nil
		}
		out := reflect.New(target).Elem()
		if k.IsSigned() {
			out.SetInt(n)
		} else {
			out.SetUint(uint64(n))
		}
		return out.Interface(), true, nil
	}
	return nil, false, nil
}

// basicStep converts into bool, time, float, decimal, integer and string targets.
// Malformed input yields the zero value of the target.
func basicStep(r *Reflector, value any, target reflect.Type) (any, bool, error) {
	if value == nil {
		return nil, false, nil
	}
	if _, isText := text(value); isText && parsable(target) {
		return nil, false, nil
	}

	k := r.KindOf(target)
	out := reflect.New(target).Elem()
	var err error
	switch {
	case k == KindBool:
		var b bool
		b, err = ToBool(value)
		out.SetBool(b)
	case k == KindTime:
		var t time.Time
		t, err = ToTime(value)
		out.Set(reflect.ValueOf(t))
	case k.IsFloat():
		var f float64
		f, err = ToFloat64(value)
		out.SetFloat(f)
	case k == KindDecimal:
		d, derr := ToDecimal(value)
		err = derr
		out.Set(reflect.ValueOf(d))
	case k.IsSigned():
		var n int64
		n, err = ToInt64(value)
		out.SetInt(n)
	case k.IsUnsigned():
		var n uint64
		n, err = ToUint64(value)
		out.SetUint(n)
	case k == KindString:
		if isComposite(value) {
			return nil, false, nil
		}
		out.SetString(ToString(value))
	default:
		return nil, false, nil
	}
	if err != nil {
		r.logger.Debug("reflector: %v, using zero %s", err, target)
		return reflect.Zero(target).Interface(), true, nil
	}
	return out.Interface(), true, nil
}

// wellKnownStep parses uuid, duration, Date and TimeOfDay targets.
func wellKnownStep(r *Reflector, value any, target reflect.Type) (any, bool, error) {
	if value == nil {
		return nil, false, nil
	}
	s, isText := text(value)
	switch r.KindOf(target) {
	case KindUUID:
		switch x := value.(type) {
		case string:
			id, err := uuid.Parse(strings.TrimSpace(x))
			return id, err == nil, err
		case []byte:
			id, err := uuid.FromBytes(x)
			return id, err == nil, err
		case [16]byte:
			return uuid.UUID(x), true, nil
		}
		if isText {
			id, err := uuid.Parse(strings.TrimSpace(s))
			return id, err == nil, err
		}
	case KindDuration:
		d, err := ToDuration(value)
		if err != nil && isText {
			return nil, false, err
		}
		return d, err == nil, nil
	case KindDate:
		if t, ok := value.(time.Time); ok {
			return DateOf(t), true, nil
		}
		if isText {
			d, err := ParseDate(s)
			return d, err == nil, err
		}
	case KindTimeOfDay:
		switch x := value.(type) {
		case time.Time:
			return TimeOfDayOf(x), true, nil
		case time.Duration:
			return TimeOfDayOf(time.Time{}.Add(x)), true, nil
		}
		if isText {
			t, err := ParseTimeOfDay(s)
			return t, err == nil, err
		}
	}
	return nil, false, nil
}

// parsableStep calls UnmarshalText on *T, falling through on failure, then a
// Parse(string) (T, error) method on T, whose error is returned.
func parsableStep(_ *Reflector, value any, target reflect.Type) (any, bool, error) {
	s, ok := text(value)
	if !ok || target.Kind() == reflect.Interface {
		return nil, false, nil
	}
	if reflect.PointerTo(target).Implements(typeOfTextUnmarshaler) {
		p := reflect.New(target)
		if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err == nil {
			return p.Elem().Interface(), true, nil
		}
	}
	if fn, recv, found := parseMethod(target); found {
		res := fn.Call([]reflect.Value{recv, reflect.ValueOf(s)})
		if err, _ := res[1].Interface().(error); err != nil {
			return nil, false, err
		}
		return res[0].Interface(), true, nil
	}
	return nil, false, nil
}

// parseMethod finds Parse(string) (T, error) on T or *T and a zero receiver for it.
func parseMethod(target reflect.Type) (reflect.Value, reflect.Value, bool) {
	for _, recv := range []reflect.Type{target, reflect.PointerTo(target)} {
		m, ok := recv.MethodByName("Parse")
		if !ok {
			continue
		}
		ft := m.Type
		if ft.NumIn() != 2 || ft.In(1).Kind() != reflect.String || ft.NumOut() != 2 ||
			ft.Out(0) != target || ft.Out(1) != errType {
			continue
		}
		rv := reflect.New(target)
		if recv == target {
			rv = rv.Elem()
		}
		return m.Func, rv, true
	}
	return reflect.Value{}, reflect.Value{}, false
}

// compositeStep maps dictionaries onto structs, decodes collections and finally tries
// a generic conversion.
func compositeStep(r *Reflector, value any, target reflect.Type) (any, bool, error) {
	if value == nil || target.Kind() == reflect.Interface {
		return nil, false, nil
	}
	if _, wellKnown := wellKnownKinds[target]; wellKnown {
		return nil, false, nil
	}
	rv := reflect.ValueOf(value)
	switch target.Kind() {
	case reflect.Struct:
		src, ok := asStringMap(value)
		if !ok && isRecord(rv.Type()) {
			src, ok = r.ToMap(value), true
		}
		if ok {
			p := reflect.New(target)
			if err := r.CopyMap(p.Interface(), src, true); err != nil {
				return nil, false, err
			}
			return p.Elem().Interface(), true, nil
		}
	case reflect.Slice, reflect.Array, reflect.Map:
		out, err := r.decodeInto(value, target)
		if err != nil {
			return nil, false, err
		}
		return out, true, nil
	}

	if out, ok := weakConvert(value, target); ok {
		return out, true, nil
	}
	return nil, false, nil
}

func zeroStep(_ *Reflector, value any, target reflect.Type) (any, bool, error) {
	if value != nil {
		return nil, false, nil
	}
	return reflect.Zero(target).Interface(), true, nil
}

func assignableStep(_ *Reflector, value any, target reflect.Type) (any, bool, error) {
	return value, reflect.TypeOf(value).AssignableTo(target), nil
}

// deref unwraps pointer values for targets that are not pointers or interfaces.
// A nil pointer becomes an absent value.
func deref(value any, target reflect.Type) any {
	if value == nil || target.Kind() == reflect.Pointer || target.Kind() == reflect.Interface {
		return value
	}
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}

// text returns the string content of string-kinded values.
func text(value any) (string, bool) {
	if s, ok := value.(string); ok {
		return s, true
	}
	if value == nil {
		return "", false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

// parsable reports named non-struct types that parse themselves from text, such as a
// level type with UnmarshalText. Those skip the generic numeric and boolean parsers.
func parsable(target reflect.Type) bool {
	if target.PkgPath() == "" || target.Kind() == reflect.Struct || target.Kind() == reflect.String {
		return false
	}
	if _, ok := wellKnownKinds[target]; ok {
		return false
	}
	if reflect.PointerTo(target).Implements(typeOfTextUnmarshaler) {
		return true
	}
	_, _, ok := parseMethod(target)
	return ok
}

func isComposite(value any) bool {
	switch reflect.ValueOf(value).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		_, stringer := value.(fmt.Stringer)
		_, bytes := value.([]byte)
		return !stringer && !bytes
	}
	return false
}

// isRecord reports user structs, excluding well-known value types.
func isRecord(t reflect.Type) bool {
	t = indirect(t)
	if t.Kind() != reflect.Struct {
		return false
	}
	_, wellKnown := wellKnownKinds[t]
	return !wellKnown
}

// asStringMap views any map keyed by strings as map[string]any.
func asStringMap(value any) (map[string]any, bool) {
	if m, ok := value.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}
