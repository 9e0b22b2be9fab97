// FILE: lixenwraith/reflector/settings/decode.go
package settings

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/lixenwraith/reflector"
)

// Scan decodes the current values under basePath into target, a non-nil pointer to a
// struct or map. Members map by their toml tags; leaves pass through the reflector
// coercion chain, so enum names, durations and times given as text decode naturally.
func (s *Store) Scan(basePath string, target any) error {
	return s.unmarshal(basePath, "", target)
}

// ScanSource is Scan over the values of a single source.
func (s *Store) ScanSource(basePath string, source Source, target any) error {
	return s.unmarshal(basePath, source, target)
}

func (s *Store) unmarshal(basePath string, source Source, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("unmarshal target must be non-nil pointer, got %T", target)
	}

	s.mutex.RLock()
	nested := s.nested(source)
	s.mutex.RUnlock()

	section := navigateToPath(nested, basePath)
	sectionMap, ok := section.(map[string]any)
	if !ok {
		if section != nil {
			return fmt.Errorf("path %q refers to non-map value (type %T)", basePath, section)
		}
		sectionMap = make(map[string]any)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          TagName,
		WeaklyTypedInput: true,
		DecodeHook:       s.r.DecodeHook(),
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}
	if err := decoder.Decode(sectionMap); err != nil {
		return fmt.Errorf("decode failed for path %q: %w", basePath, err)
	}
	return nil
}

// Value returns the current value of path converted to T through s's Reflector.
func Value[T any](s *Store, path string) (T, error) {
	var zero T
	v, ok := s.Get(path)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrNotRegistered, path)
	}
	out, err := reflector.To[T](s.r, v)
	if err != nil {
		return zero, fmt.Errorf("path %s: %w", path, err)
	}
	return out, nil
}

// String returns the value of path as text.
func (s *Store) String(path string) (string, error) {
	return Value[string](s, path)
}

// Int64 returns the value of path as an int64. Fractions are truncated.
func (s *Store) Int64(path string) (int64, error) {
	v, ok := s.Get(path)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotRegistered, path)
	}
	n, err := reflector.ToInt64(v)
	if err != nil {
		return 0, fmt.Errorf("path %s: %w", path, err)
	}
	return n, nil
}

// Bool returns the value of path as a bool, accepting tokens such as "yes" and "off".
func (s *Store) Bool(path string) (bool, error) {
	v, ok := s.Get(path)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNotRegistered, path)
	}
	b, err := reflector.ToBool(v)
	if err != nil {
		return false, fmt.Errorf("path %s: %w", path, err)
	}
	return b, nil
}

// Float64 returns the value of path as a float64.
func (s *Store) Float64(path string) (float64, error) {
	return Value[float64](s, path)
}

// Duration returns the value of path as a duration. Text may use Go or "d.hh:mm:ss" notation.
func (s *Store) Duration(path string) (time.Duration, error) {
	v, ok := s.Get(path)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotRegistered, path)
	}
	d, err := reflector.ToDuration(v)
	if err != nil {
		return 0, fmt.Errorf("path %s: %w", path, err)
	}
	return d, nil
}
