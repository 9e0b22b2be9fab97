// FILE: lixenwraith/reflector/create.go
package reflector

import (
	"fmt"
	"reflect"
)

// RegisterConstructor registers fn as the way to build its first result type.
// fn must return T or (T, error); its parameters are filled by CreateInstance.
func (r *Reflector) RegisterConstructor(fn any) error {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return fmt.Errorf("reflector: constructor must be a func, got %T", fn)
	}
	ft := fv.Type()
	switch {
	case ft.NumOut() == 1:
	case ft.NumOut() == 2 && ft.Out(1) == errType:
	default:
		return fmt.Errorf("reflector: constructor %s must return T or (T, error)", ft)
	}
	r.ctors.Store(ft.Out(0), fv)
	return nil
}

// CreateInstance builds a value of type t. A registered constructor for t, or for *t when
// t is a struct, receives params coerced to its parameter types. Without a constructor a
// single param is coerced to t, and no params yield an empty collection, a pointer to a
// zero value or the zero value. Failures are *CreateError.
func (r *Reflector) CreateInstance(t reflect.Type, params ...any) (any, error) {
	if t == nil {
		return nil, &CreateError{Params: params, Err: ErrNilType}
	}

	if fv, wrap, ok := r.constructor(t); ok {
		out, err := r.callConstructor(fv, params)
		if err != nil {
			return nil, &CreateError{Type: t, Params: params, Err: err}
		}
		return wrap(out), nil
	}

	switch len(params) {
	case 0:
	case 1:
		out, err := r.Coerce(params[0], t)
		if err != nil {
			return nil, &CreateError{Type: t, Params: params, Err: err}
		}
		if out == nil || !reflect.TypeOf(out).AssignableTo(t) {
			return nil, &CreateError{Type: t, Params: params, Err: ErrNoInstance}
		}
		return out, nil
	default:
		return nil, &CreateError{Type: t, Params: params, Err: ErrNoInstance}
	}

	switch t.Kind() {
	case reflect.Slice:
		return reflect.MakeSlice(t, 0, 0).Interface(), nil
	case reflect.Map:
		return reflect.MakeMap(t).Interface(), nil
	case reflect.Pointer:
		return reflect.New(t.Elem()).Interface(), nil
	case reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Invalid:
		return nil, &CreateError{Type: t, Params: params, Err: ErrNoInstance}
	}
	return reflect.Zero(t).Interface(), nil
}

// constructor finds a registered constructor for t and an adapter from its result to t.
func (r *Reflector) constructor(t reflect.Type) (reflect.Value, func(reflect.Value) any, bool) {
	if v, ok := r.ctors.Load(t); ok {
		return v.(reflect.Value), reflect.Value.Interface, true
	}
	if t.Kind() == reflect.Struct {
		if v, ok := r.ctors.Load(reflect.PointerTo(t)); ok {
			return v.(reflect.Value), func(p reflect.Value) any {
				if p.IsNil() {
					return reflect.Zero(t).Interface()
				}
				return p.Elem().Interface()
			}, true
		}
	}
	if t.Kind() == reflect.Pointer {
		if v, ok := r.ctors.Load(t.Elem()); ok {
			return v.(reflect.Value), func(e reflect.Value) any {
				p := reflect.New(t.Elem())
				p.Elem().Set(e)
				return p.Interface()
			}, true
		}
	}
	return reflect.Value{}, nil, false
}

func (r *Reflector) callConstructor(fv reflect.Value, params []any) (reflect.Value, error) {
	args, err := r.arguments("constructor", fv.Type(), params)
	if err != nil {
		return reflect.Value{}, err
	}
	res := fv.Call(args)
	if len(res) == 2 && !res[1].IsNil() {
		return reflect.Value{}, res[1].Interface().(error)
	}
	return res[0], nil
}

// arguments coerces params to the parameter types of ft. Extra params of a variadic
// func are coerced to its element type.
func (r *Reflector) arguments(what string, ft reflect.Type, params []any) ([]reflect.Value, error) {
	if ft.IsVariadic() {
		if len(params) < ft.NumIn()-1 {
			return nil, fmt.Errorf("%s %s takes at least %d params, got %d", what, ft, ft.NumIn()-1, len(params))
		}
	} else if len(params) != ft.NumIn() {
		return nil, fmt.Errorf("%s %s takes %d params, got %d", what, ft, ft.NumIn(), len(params))
	}

	args := make([]reflect.Value, len(params))
	for i, p := range params {
		av, err := r.argument(p, paramType(ft, i))
		if err != nil {
			return nil, fmt.Errorf("param %d: %w", i, err)
		}
		args[i] = av
	}
	return args, nil
}

func (r *Reflector) argument(p any, pt reflect.Type) (reflect.Value, error) {
	out, err := r.Coerce(p, pt)
	if err != nil {
		return reflect.Value{}, err
	}
	av := reflect.ValueOf(out)
	if !av.IsValid() {
		return reflect.Zero(pt), nil
	}
	if !av.Type().AssignableTo(pt) {
		return reflect.Value{}, &MismatchError{Want: pt, Got: av.Type()}
	}
	return av, nil
}

func paramType(ft reflect.Type, i int) reflect.Type {
	if ft.IsVariadic() && i >= ft.NumIn()-1 {
		return ft.In(ft.NumIn() - 1).Elem()
	}
	return ft.In(i)
}
