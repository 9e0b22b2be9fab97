// FILE: lixenwraith/reflector/settings/register.go
package settings

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// TagName is the struct tag that names setting paths.
const TagName = "toml"

// Register makes a dot-separated path such as "log.level" known, with the value Get
// returns until a source provides another one.
func (s *Store) Register(path string, defaultValue any) error {
	if path == "" {
		return fmt.Errorf("registration path cannot be empty")
	}
	for _, segment := range strings.Split(path, ".") {
		if !isValidKeySegment(segment) {
			return fmt.Errorf("invalid path segment %q in path %q", segment, path)
		}
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.items[path] = item{
		defaultValue: defaultValue,
		currentValue: defaultValue,
	}
	return nil
}

// Unregister removes path and every path below it.
func (s *Store) Unregister(path string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	found := false
	for p := range s.items {
		if hasPrefix(p, path) {
			delete(s.items, p)
			found = true
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotRegistered, path)
	}
	return nil
}

// RegisterStruct registers every leaf member of a struct value as a path, using the
// member's toml tag or Go name. Nested structs extend the path; value types the
// reflector treats as primitive, such as time.Time or an enum, are leaves.
func (s *Store) RegisterStruct(prefix string, defaults any) error {
	v := reflect.ValueOf(defaults)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return fmt.Errorf("RegisterStruct requires a non-nil struct pointer or value")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("RegisterStruct requires a struct or struct pointer, got %T", defaults)
	}

	prefix = strings.TrimSuffix(prefix, ".")
	var errs []string
	s.registerFields(v, prefix, &errs)
	if len(errs) > 0 {
		return fmt.Errorf("failed to register %d field(s): %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}

func (s *Store) registerFields(v reflect.Value, prefix string, errs *[]string) {
	for _, m := range s.r.Properties(v.Type(), true) {
		if !m.Exported || !m.CanWrite {
			continue
		}
		fv, ok := m.Value(v, false)
		if !ok {
			continue
		}

		path := m.WireName()
		if prefix != "" {
			path = prefix + "." + path
		}

		if !s.r.KindOf(m.Type).IsPrimitive() {
			nested := fv
			if nested.Kind() == reflect.Pointer && m.Type.Elem().Kind() == reflect.Struct {
				if nested.IsNil() {
					continue
				}
				nested = nested.Elem()
			}
			if nested.Kind() == reflect.Struct {
				s.registerFields(nested, path, errs)
				continue
			}
		}

		if err := s.Register(path, fv.Interface()); err != nil {
			*errs = append(*errs, fmt.Sprintf("field %s (path %s): %v", m.Name, path, err))
		}
	}
}

// Paths returns the registered paths under prefix, sorted.
func (s *Store) Paths(prefix string) []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var out []string
	for p := range s.items {
		if hasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return out
}
