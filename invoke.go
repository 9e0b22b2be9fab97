// FILE: lixenwraith/reflector/invoke.go
package reflector

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

var errType = reflect.TypeFor[error]()

// Methods lists the exported methods of t and *t, sorted by name. Receivers of the
// returned Funcs are *t unless t is a pointer or interface.
func (r *Reflector) Methods(t reflect.Type) []reflect.Method {
	t = methodSet(t)
	if t == nil {
		return nil
	}
	out := make([]reflect.Method, t.NumMethod())
	for i := range out {
		out[i] = t.Method(i)
	}
	return out
}

// Method finds a method of t or *t by name. Methods promoted from embedded types are
// found the same way as declared ones.
func (r *Reflector) Method(t reflect.Type, name string, ignoreCase bool) (reflect.Method, bool) {
	t = methodSet(t)
	if t == nil {
		return reflect.Method{}, false
	}
	if m, ok := t.MethodByName(name); ok {
		return m, true
	}
	if !ignoreCase {
		return reflect.Method{}, false
	}
	for i := range t.NumMethod() {
		if m := t.Method(i); strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return reflect.Method{}, false
}

// Invoke calls the named method on target with params coerced to its parameter types.
// The name is matched ignoring case when no exact match exists. A method with a pointer
// receiver called on a non-pointer target runs on a copy. A trailing error result is
// not part of the returned results; when non-nil it comes back wrapped in *InvokeError.
func (r *Reflector) Invoke(target any, method string, params ...any) ([]any, error) {
	fv, err := r.bind(target, method)
	if err != nil {
		return nil, err
	}
	args, err := r.arguments("method", fv.Type(), params)
	if err != nil {
		return nil, &InvokeError{Type: reflect.TypeOf(target), Method: method, Err: err}
	}
	return r.results(target, method, fv.Call(args))
}

// InvokeWithParams calls the named method with arguments taken from params by position:
// the key "0" fills the first parameter, "1" the second and so on. A method whose only
// parameter is a struct or struct pointer with no "0" key gets one built from params by
// a deep CopyMap. Missing parameters get zero values. The variadic parameter of a
// variadic method is filled as a whole slice.
func (r *Reflector) InvokeWithParams(target any, method string, params map[string]any) ([]any, error) {
	fv, err := r.bind(target, method)
	if err != nil {
		return nil, err
	}
	ft := fv.Type()
	fail := func(err error) ([]any, error) {
		return nil, &InvokeError{Type: reflect.TypeOf(target), Method: method, Err: err}
	}

	args := make([]reflect.Value, ft.NumIn())
	for i := range args {
		pt := ft.In(i)
		raw, ok := params[strconv.Itoa(i)]
		if !ok && ft.NumIn() == 1 && len(params) > 0 && isRecord(pt) && !r.KindOf(pt).IsPrimitive() {
			p := reflect.New(indirect(pt))
			if err := r.CopyMap(p.Interface(), params, true); err != nil {
				return fail(err)
			}
			if pt.Kind() == reflect.Pointer {
				args[i] = p
			} else {
				args[i] = p.Elem()
			}
			continue
		}
		av, err := r.argument(raw, pt)
		if err != nil {
			return fail(fmt.Errorf("param %d: %w", i, err))
		}
		args[i] = av
	}

	if ft.IsVariadic() {
		return r.results(target, method, fv.CallSlice(args))
	}
	return r.results(target, method, fv.Call(args))
}

// bind returns the named method of target bound to its receiver.
func (r *Reflector) bind(target any, method string) (reflect.Value, error) {
	v := reflect.ValueOf(target)
	if !v.IsValid() {
		return reflect.Value{}, &InvokeError{Method: method, Err: ErrNilType}
	}
	m, ok := r.Method(v.Type(), method, true)
	if !ok {
		return reflect.Value{}, &InvokeError{Type: v.Type(), Method: method, Err: ErrNoMethod}
	}
	if fv := v.MethodByName(m.Name); fv.IsValid() {
		return fv, nil
	}
	// pointer receiver on a value target
	p := reflect.New(v.Type())
	p.Elem().Set(v)
	return p.MethodByName(m.Name), nil
}

func (r *Reflector) results(target any, method string, res []reflect.Value) ([]any, error) {
	var err error
	if n := len(res); n > 0 && res[n-1].Type() == errType {
		if !res[n-1].IsNil() {
			err = &InvokeError{Type: reflect.TypeOf(target), Method: method, Err: res[n-1].Interface().(error)}
		}
		res = res[:n-1]
	}
	out := make([]any, len(res))
	for i, v := range res {
		out[i] = v.Interface()
	}
	return out, err
}

// methodSet returns the type whose method set covers t and *t.
func methodSet(t reflect.Type) reflect.Type {
	if t == nil || t.Kind() == reflect.Pointer || t.Kind() == reflect.Interface {
		return t
	}
	return reflect.PointerTo(t)
}

// ElementType returns the element type of a slice, array, map, pointer or channel, the
// value type of an iter.Seq or iter.Seq2, or the same for the result of an All method
// such as the one on a generic collection. It returns nil for anything else.
func (r *Reflector) ElementType(t reflect.Type) reflect.Type {
	if t == nil {
		return nil
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Pointer, reflect.Chan:
		return t.Elem()
	case reflect.Func:
		return seqElem(t)
	}
	if m, ok := methodSet(t).MethodByName("All"); ok && m.Type.NumIn() == 1 && m.Type.NumOut() == 1 {
		return seqElem(m.Type.Out(0))
	}
	return nil
}

// seqElem reads V from func(yield func(V) bool) or func(yield func(K, V) bool).
func seqElem(t reflect.Type) reflect.Type {
	if t.Kind() != reflect.Func || t.NumIn() != 1 || t.NumOut() != 0 {
		return nil
	}
	y := t.In(0)
	if y.Kind() != reflect.Func || y.NumOut() != 1 || y.Out(0).Kind() != reflect.Bool {
		return nil
	}
	switch y.NumIn() {
	case 1:
		return y.In(0)
	case 2:
		return y.In(1)
	}
	return nil
}

// TypeName returns the name of t: the bare name ("Animal"), or with full set the name
// qualified by its package path ("example.com/zoo.Animal"). Unnamed types such as
// []int are written as reflect prints them either way.
func (r *Reflector) TypeName(t reflect.Type, full bool) string {
	if t == nil {
		return ""
	}
	if t.Name() == "" {
		return t.String()
	}
	if full && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.Name()
}
