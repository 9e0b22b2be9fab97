// FILE: lixenwraith/reflector/enum.go
package reflector

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Integer is the set of underlying types an enum may have.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// enumInfo is the registered member table of one enum type.
type enumInfo struct {
	names  map[string]reflect.Value // lower-case name -> member
	values []reflect.Value
	labels []string
}

// RegisterEnum declares T an enum with the given members. Member names come from
// fmt.Sprint, so a String method defines them.
func RegisterEnum[T Integer](r *Reflector, values ...T) {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	_ = r.registerEnum(reflect.TypeFor[T](), vs)
}

func (r *Reflector) registerEnum(t reflect.Type, values []any) error {
	if t == nil {
		return ErrNilType
	}
	if k := r.KindOf(t); !k.IsInteger() && k != KindEnum {
		return fmt.Errorf("reflector: enum %s must have an integer underlying type", t)
	}
	info := &enumInfo{names: make(map[string]reflect.Value, len(values))}
	for _, v := range values {
		rv := reflect.ValueOf(v)
		if rv.Type() != t {
			return fmt.Errorf("reflector: enum member %v is %s, want %s", v, rv.Type(), t)
		}
		label := fmt.Sprint(v)
		info.names[strings.ToLower(label)] = rv
		info.values = append(info.values, rv)
		info.labels = append(info.labels, label)
	}
	r.enums.Store(t, info)
	r.descriptors.Delete(t)
	return nil
}

// IsEnum reports whether t was registered as an enum.
func (r *Reflector) IsEnum(t reflect.Type) bool {
	if t == nil {
		return false
	}
	_, ok := r.enums.Load(t)
	return ok
}

// EnumNames lists the member names of t in registration order.
func (r *Reflector) EnumNames(t reflect.Type) []string {
	info, ok := r.enum(t)
	if !ok {
		return nil
	}
	return append([]string(nil), info.labels...)
}

// EnumName returns the member name of v. The second result is false when v is not a
// registered enum or its value matches no member.
func (r *Reflector) EnumName(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	info, ok := r.enum(rv.Type())
	if !ok {
		return "", false
	}
	for i, m := range info.values {
		if m.Equal(rv) {
			return info.labels[i], true
		}
	}
	return "", false
}

// ParseEnum resolves text to a member of t, ignoring case. Numeric text is taken as the
// member code.
func (r *Reflector) ParseEnum(t reflect.Type, text string) (any, error) {
	info, ok := r.enum(t)
	if !ok {
		return nil, fmt.Errorf("reflector: %s is not a registered enum", t)
	}
	s := strings.TrimSpace(text)
	if m, ok := info.names[strings.ToLower(s)]; ok {
		return m.Interface(), nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return enumFromCode(t, n), nil
	}
	return nil, &EnumError{Type: t, Text: text}
}

// enumFromCode builds a value of integer type t from a numeric code, truncating.
func enumFromCode(t reflect.Type, code int64) any {
	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		v.SetUint(uint64(code))
	default:
		v.SetInt(code)
	}
	return v.Interface()
}

func (r *Reflector) enum(t reflect.Type) (*enumInfo, bool) {
	if t == nil {
		return nil, false
	}
	v, ok := r.enums.Load(t)
	if !ok {
		return nil, false
	}
	return v.(*enumInfo), true
}
