// FILE: lixenwraith/reflector/jsonx/reader.go
package jsonx

import (
	"fmt"
	"reflect"

	"github.com/lixenwraith/reflector"
)

// Reader fills Go values from JSON text through the Reflector's copier and coercion
// chain, so text written by a Writer with default options reads back into the same type.
// Top-level object keys match member names or aliases ignoring case; nested objects
// match exactly.
type Reader struct {
	r *reflector.Reflector
}

// NewReader creates a Reader. A nil Reflector selects reflector.Default().
func NewReader(r *reflector.Reflector) *Reader {
	if r == nil {
		r = reflector.Default()
	}
	return &Reader{r: r}
}

// Read parses text into the value target points to. Objects read into structs are
// deep copied member by member; everything else is coerced to the target type.
func (rd *Reader) Read(text string, target any) error {
	tv := reflect.ValueOf(target)
	if tv.Kind() != reflect.Pointer || tv.IsNil() {
		return reflector.ErrNotPointer
	}
	value, err := NewParser(text).Decode()
	if err != nil {
		return err
	}

	elem := tv.Elem()
	if obj, ok := value.(map[string]any); ok && elem.Kind() == reflect.Struct {
		return rd.r.CopyMap(target, rd.memberKeys(elem.Type(), obj), true)
	}

	out, err := rd.r.Coerce(value, elem.Type())
	if err != nil {
		return err
	}
	x := reflect.ValueOf(out)
	if !x.IsValid() {
		elem.SetZero()
		return nil
	}
	if !x.Type().AssignableTo(elem.Type()) {
		return &reflector.MismatchError{Want: elem.Type(), Got: x.Type()}
	}
	elem.Set(x)
	return nil
}

// memberKeys renames keys that match a member only by case to the member's Go name.
func (rd *Reader) memberKeys(t reflect.Type, obj map[string]any) map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		if m, ok := rd.r.Property(t, k, true); ok && m.Name != k && m.Alias != k {
			k = m.Name
		}
		out[k] = v
	}
	return out
}

// ToObject reads text into target with the default Reflector.
func ToObject(text string, target any) error {
	if err := NewReader(nil).Read(text, target); err != nil {
		return fmt.Errorf("jsonx: %w", err)
	}
	return nil
}
