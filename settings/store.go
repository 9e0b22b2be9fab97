// FILE: lixenwraith/reflector/settings/store.go

// Package settings loads the runtime settings of the reflector tools from defaults, a
// TOML, JSON or YAML file, environment variables and command-line overrides, and
// decodes them into typed sections through the reflector coercion chain.
package settings

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/lixenwraith/reflector"
)

// MaxValueSize bounds a single value read from the environment or the command line.
const MaxValueSize = 1 << 20

var (
	// ErrNotFound is returned when a settings file does not exist. It is not fatal to Load.
	ErrNotFound = errors.New("settings file not found")
	// ErrCLIParse wraps malformed command-line overrides.
	ErrCLIParse = errors.New("failed to parse command-line arguments")
	// ErrValueSize is returned for values larger than MaxValueSize.
	ErrValueSize = fmt.Errorf("value exceeds maximum size of %d bytes", MaxValueSize)
	// ErrNotRegistered is returned for paths that were never registered.
	ErrNotRegistered = errors.New("path not registered")
)

// item holds the default and per-source values of one path
type item struct {
	defaultValue any
	values       map[Source]any
	currentValue any
}

// Store holds registered setting paths and their values from every source.
type Store struct {
	items   map[string]item
	options LoadOptions
	mutex   sync.RWMutex

	r        *reflector.Reflector
	filePath string
	watcher  *watcher
}

// New creates an empty Store decoding through a Reflector that maps members by their
// toml tags and knows the xlog levels by name.
func New() *Store {
	return NewWithReflector(newReflector())
}

// NewWithReflector creates an empty Store decoding through r. Members map by r's tag
// name, and enums registered on r are accepted by name in every source.
func NewWithReflector(r *reflector.Reflector) *Store {
	return &Store{
		items:   make(map[string]item),
		options: DefaultLoadOptions(),
		r:       r,
	}
}

// Reflector returns the Reflector used for decoding.
func (s *Store) Reflector() *reflector.Reflector {
	return s.r
}

// FilePath returns the last file loaded, if any.
func (s *Store) FilePath() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.filePath
}

// Get returns the current value of path. The second result reports registration.
func (s *Store) Get(path string) (any, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	it, ok := s.items[path]
	if !ok {
		return nil, false
	}
	return it.currentValue, true
}

// GetSource returns the value path received from one source.
func (s *Store) GetSource(path string, source Source) (any, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	it, ok := s.items[path]
	if !ok {
		return nil, false
	}
	if source == SourceDefault {
		return it.defaultValue, true
	}
	v, ok := it.values[source]
	return v, ok
}

// Set stores a runtime value for path. Runtime values outrank every loaded source.
func (s *Store) Set(path string, value any) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	it, ok := s.items[path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, path)
	}
	if it.values == nil {
		it.values = make(map[Source]any)
	}
	it.values[SourceRuntime] = value
	it.currentValue = s.computeValue(it)
	s.items[path] = it
	return nil
}

// Reset drops every loaded and runtime value, leaving the registered defaults.
func (s *Store) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for path, it := range s.items {
		it.values = nil
		it.currentValue = it.defaultValue
		s.items[path] = it
	}
	s.filePath = ""
}

// Sources lists the sources that hold a value for path, highest precedence first.
func (s *Store) Sources(path string) []Source {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	it, ok := s.items[path]
	if !ok {
		return nil
	}
	var out []Source
	for _, src := range s.precedence() {
		if _, ok := it.values[src]; ok {
			out = append(out, src)
		}
	}
	return out
}

// computeValue picks the value of the highest-precedence source present.
// The caller holds the mutex.
func (s *Store) computeValue(it item) any {
	for _, src := range s.precedence() {
		if src == SourceDefault {
			break
		}
		if v, ok := it.values[src]; ok {
			return v
		}
	}
	return it.defaultValue
}

// precedence is the runtime source followed by the configured order.
func (s *Store) precedence() []Source {
	return append([]Source{SourceRuntime}, s.options.Sources...)
}

// nested builds the dotted paths of the store into nested maps, taking each item's
// current value or, for a non-empty source, that source's value. The caller holds the mutex.
func (s *Store) nested(source Source) map[string]any {
	out := make(map[string]any)
	for path, it := range s.items {
		switch source {
		case "":
			setNestedValue(out, path, it.currentValue)
		case SourceDefault:
			setNestedValue(out, path, it.defaultValue)
		default:
			if v, ok := it.values[source]; ok {
				setNestedValue(out, path, v)
			}
		}
	}
	return out
}

func hasPrefix(path, prefix string) bool {
	return prefix == "" || path == prefix || strings.HasPrefix(path, prefix+".")
}
