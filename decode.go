// FILE: lixenwraith/reflector/decode.go
package reflector

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// decodeInto builds a value of type target from input with mapstructure, routing every
// leaf through Coerce. Used for slices, arrays and maps.
func (r *Reflector) decodeInto(input any, target reflect.Type) (any, error) {
	out := reflect.New(target)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out.Interface(),
		TagName:          r.tagName,
		WeaklyTypedInput: true,
		ZeroFields:       true,
		DecodeHook:       r.decodeHook(),
	})
	if err != nil {
		return nil, fmt.Errorf("decoder creation failed: %w", err)
	}
	if err := decoder.Decode(input); err != nil {
		return nil, fmt.Errorf("decode into %s failed: %w", target, err)
	}
	return out.Elem().Interface(), nil
}

// DecodeHook exposes the coercion chain as a mapstructure hook for callers running
// their own decoders.
func (r *Reflector) DecodeHook() mapstructure.DecodeHookFunc {
	return r.decodeHook()
}

func (r *Reflector) decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToSliceHookFunc(","),
		r.coerceHookFunc(),
	)
}

// coerceHookFunc leaves containers to mapstructure and coerces everything else.
func (r *Reflector) coerceHookFunc() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if data == nil || from == to {
			return data, nil
		}
		switch to.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map, reflect.Interface, reflect.Pointer:
			return data, nil
		}
		return r.Coerce(data, to)
	}
}

// weakConvert is the last generic conversion: reflect.Convert for convertible kinds,
// then mapstructure's weak decode.
func weakConvert(value any, target reflect.Type) (any, bool) {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return nil, false
	}
	if rv.Type().ConvertibleTo(target) && convertSafe(rv.Kind(), target.Kind()) {
		return rv.Convert(target).Interface(), true
	}
	out := reflect.New(target)
	if err := mapstructure.WeakDecode(value, out.Interface()); err != nil {
		return nil, false
	}
	return out.Elem().Interface(), true
}

// convertSafe rejects reflect conversions that reinterpret rather than convert,
// such as integer to string.
func convertSafe(from, to reflect.Kind) bool {
	if to == reflect.String {
		return from == reflect.String || from == reflect.Slice
	}
	return true
}
