// FILE: lixenwraith/reflector/copy.go
package reflector

import (
	"fmt"
	"reflect"
	"slices"
)

// Copy copies same-named members from source into target, which must be a non-nil
// pointer to a struct. A nil target or source, or both being the same pointer, is a
// no-op. A string-keyed map source is handled by CopyMap.
//
// Shallow copies assign source values as they are, after coercion to the member type,
// so nested pointers, slices and maps are shared. A Model target that is not an Extend
// receives values through Set. Deep copies read the source into a map with ToMap and
// rebuild nested values through CopyMap.
//
// There is no cycle detection: a deep copy of a cyclic graph does not terminate.
func (r *Reflector) Copy(target, source any, deep bool, excludes ...string) error {
	if isAbsent(target) || isAbsent(source) || samePointer(target, source) {
		return nil
	}
	if m, ok := asStringMap(source); ok {
		return r.CopyMap(target, m, deep)
	}
	if deep {
		return r.CopyMap(target, r.ToMap(source, excludes...), true)
	}

	tv, err := targetValue(target)
	if err != nil {
		return err
	}
	model, fast := target.(Model)
	if _, ext := target.(Extend); ext {
		fast = false
	}

	sv := reflect.ValueOf(source)
	srcModel, _ := source.(Model)
	for _, m := range r.Properties(tv.Type(), true) {
		if !m.CanWrite || slices.Contains(excludes, m.Name) {
			continue
		}
		val, ok := r.read(sv, srcModel, m.Name)
		if !ok {
			continue
		}
		if fast {
			model.Set(m.Name, val)
			continue
		}
		if err := r.assign(tv, m, val); err != nil {
			return err
		}
	}
	return nil
}

// CopyMap copies entries of source into the members of target with matching Go names
// or aliases. Without deep, or for primitive-like members, values are coerced and
// assigned. With deep, struct members are filled recursively, allocating a nested value
// when the target holds nil, and slices and maps are rebuilt instead of shared.
func (r *Reflector) CopyMap(target any, source map[string]any, deep bool) error {
	if isAbsent(target) || len(source) == 0 {
		return nil
	}
	tv, err := targetValue(target)
	if err != nil {
		return err
	}

	for _, m := range r.Properties(tv.Type(), true) {
		if !m.CanWrite {
			continue
		}
		obj, ok := source[m.Name]
		if !ok && m.Alias != "" {
			obj, ok = source[m.Alias]
		}
		if !ok {
			continue
		}

		if !deep || r.KindOf(m.Type).IsPrimitive() {
			if err := r.assign(tv, m, obj); err != nil {
				return err
			}
			continue
		}

		switch {
		case isRecord(m.Type) && !isAbsent(obj):
			if err := r.copyNested(tv, m, obj); err != nil {
				return err
			}
		case m.Type.Kind() == reflect.Slice || m.Type.Kind() == reflect.Map:
			if err := r.assignClone(tv, m, obj); err != nil {
				return err
			}
		default:
			if err := r.assign(tv, m, obj); err != nil {
				return err
			}
		}
	}
	return nil
}

// ToMap reads every readable property of source not named in excludes, keyed by Go name.
// Values are not converted. An Extend source contributes its items as well.
func (r *Reflector) ToMap(source any, excludes ...string) map[string]any {
	out := make(map[string]any)
	if isAbsent(source) {
		return out
	}
	if m, ok := asStringMap(source); ok {
		for k, v := range m {
			if !slices.Contains(excludes, k) {
				out[k] = v
			}
		}
		return out
	}

	sv := reflect.ValueOf(source)
	srcModel, _ := source.(Model)
	for _, m := range r.Properties(sv.Type(), true) {
		if !m.CanRead || slices.Contains(excludes, m.Name) {
			continue
		}
		if v, ok := r.read(sv, srcModel, m.Name); ok {
			out[m.Name] = v
		}
	}
	if ext, ok := source.(Extend); ok {
		for k, v := range ext.Items() {
			if _, taken := out[k]; !taken && !slices.Contains(excludes, k) {
				out[k] = v
			}
		}
	}
	return out
}

// copyNested fills the struct member m of tv from obj, reusing a present nested value.
func (r *Reflector) copyNested(tv reflect.Value, m *Member, obj any) error {
	f, ok := m.Value(tv, true)
	if !ok || !f.CanSet() {
		return fmt.Errorf("reflector: member %s of %s is not settable", m.Name, m.Declaring)
	}
	var dst reflect.Value
	if f.Kind() == reflect.Pointer {
		if f.IsNil() {
			inst, err := r.CreateInstance(m.Type)
			if err != nil {
				return err
			}
			f.Set(reflect.ValueOf(inst))
		}
		dst = f
	} else {
		dst = f.Addr()
	}
	if err := r.Copy(dst.Interface(), obj, true); err != nil {
		return fmt.Errorf("reflector: member %s: %w", m.Name, err)
	}
	return nil
}

// assignClone stores a rebuilt copy of a slice or map value. Nested records and
// pointers inside the elements are copied as well.
func (r *Reflector) assignClone(tv reflect.Value, m *Member, obj any) error {
	if obj == nil {
		return m.Set(tv, reflect.Value{})
	}
	out, err := r.clone(obj, m.Type)
	if err != nil {
		if mm, ok := err.(*MismatchError); ok && mm.Member == "" {
			mm.Member = m.Name
			return mm
		}
		return fmt.Errorf("reflector: member %s: %w", m.Name, err)
	}
	return m.Set(tv, out)
}

// clone builds a value of type t from obj that shares no pointer, slice or map with it.
// Records are filled through a deep Copy, leaves through Coerce. Text and other
// non-collection sources for a collection type go through the mapstructure decoder.
func (r *Reflector) clone(obj any, t reflect.Type) (reflect.Value, error) {
	if obj == nil {
		return reflect.Zero(t), nil
	}
	sv := reflect.ValueOf(obj)

	switch {
	case t.Kind() == reflect.Interface:
		dyn := sv.Type()
		switch dyn.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map, reflect.Pointer, reflect.Struct:
			v, err := r.clone(obj, dyn)
			if err != nil {
				return reflect.Value{}, err
			}
			out := reflect.New(t).Elem()
			out.Set(v)
			return out, nil
		}
		return sv, nil

	case isRecord(t) && !r.KindOf(t).IsPrimitive():
		if sv.Kind() == reflect.Pointer && sv.IsNil() {
			return reflect.Zero(t), nil
		}
		p := reflect.New(indirect(t))
		if err := r.Copy(p.Interface(), obj, true); err != nil {
			return reflect.Value{}, err
		}
		if t.Kind() == reflect.Pointer {
			return p, nil
		}
		return p.Elem(), nil

	case t.Kind() == reflect.Pointer:
		if sv.Kind() == reflect.Pointer {
			if sv.IsNil() {
				return reflect.Zero(t), nil
			}
			sv = sv.Elem()
		}
		v, err := r.clone(sv.Interface(), t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(v)
		return p, nil

	case t.Kind() == reflect.Slice || t.Kind() == reflect.Array:
		if sv.Kind() != reflect.Slice && sv.Kind() != reflect.Array {
			break
		}
		if sv.Kind() == reflect.Slice && sv.IsNil() {
			return reflect.Zero(t), nil
		}
		var out reflect.Value
		n := sv.Len()
		if t.Kind() == reflect.Slice {
			out = reflect.MakeSlice(t, n, n)
		} else {
			out = reflect.New(t).Elem()
			n = min(n, t.Len())
		}
		for i := 0; i < n; i++ {
			v, err := r.clone(sv.Index(i).Interface(), t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(v)
		}
		return out, nil

	case t.Kind() == reflect.Map:
		if sv.Kind() != reflect.Map {
			break
		}
		if sv.IsNil() {
			return reflect.Zero(t), nil
		}
		out := reflect.MakeMapWithSize(t, sv.Len())
		iter := sv.MapRange()
		for iter.Next() {
			k, err := r.leaf(iter.Key().Interface(), t.Key())
			if err != nil {
				return reflect.Value{}, err
			}
			v, err := r.clone(iter.Value().Interface(), t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.SetMapIndex(k, v)
		}
		return out, nil

	default:
		return r.leaf(obj, t)
	}

	out, err := r.decodeInto(obj, t)
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(out), nil
}

// leaf coerces obj to t and requires an assignable result.
func (r *Reflector) leaf(obj any, t reflect.Type) (reflect.Value, error) {
	out, err := r.Coerce(obj, t)
	if err != nil {
		return reflect.Value{}, err
	}
	x := reflect.ValueOf(out)
	if !x.IsValid() {
		return reflect.Zero(t), nil
	}
	if !x.Type().AssignableTo(t) {
		return reflect.Value{}, &MismatchError{Want: t, Got: x.Type()}
	}
	return x, nil
}

// assign coerces val to the member type and stores it. A value the chain left
// unconverted is reported as a *MismatchError.
func (r *Reflector) assign(tv reflect.Value, m *Member, val any) error {
	out, err := r.Coerce(val, m.Type)
	if err != nil {
		return fmt.Errorf("reflector: member %s: %w", m.Name, err)
	}
	x := reflect.ValueOf(out)
	if x.IsValid() && !x.Type().AssignableTo(m.Type) {
		return &MismatchError{Member: m.Name, Want: m.Type, Got: x.Type()}
	}
	return m.Set(tv, x)
}

// read fetches a same-named readable property from a source value or Model.
func (r *Reflector) read(sv reflect.Value, model Model, name string) (any, bool) {
	if model != nil {
		return model.Get(name)
	}
	for _, m := range r.Properties(sv.Type(), true) {
		if m.Name == name {
			if !m.CanRead {
				return nil, false
			}
			return m.Get(sv)
		}
	}
	return nil, false
}

// targetValue checks that target is a non-nil pointer to a struct.
func targetValue(target any) (reflect.Value, error) {
	tv := reflect.ValueOf(target)
	if !tv.IsValid() {
		return reflect.Value{}, &CreateError{Err: ErrNotPointer}
	}
	if tv.Kind() != reflect.Pointer || tv.IsNil() {
		return reflect.Value{}, &CreateError{Type: tv.Type(), Err: ErrNotPointer}
	}
	if tv.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, &CreateError{Type: tv.Type().Elem(), Err: ErrNoInstance}
	}
	return tv, nil
}

func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func samePointer(a, b any) bool {
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	return av.Kind() == reflect.Pointer && bv.Kind() == reflect.Pointer &&
		av.Type() == bv.Type() && av.Pointer() == bv.Pointer()
}
