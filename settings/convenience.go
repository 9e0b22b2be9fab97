// FILE: lixenwraith/reflector/settings/convenience.go
package settings

import (
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/reflector"
)

// Quick registers defaults, then loads configFile, the environment under envPrefix and
// os.Args[1:] with the standard precedence: CLI > Env > File > Default.
func Quick(defaults any, envPrefix, configFile string) (*Store, error) {
	return NewBuilder().
		WithDefaults(defaults).
		WithEnvPrefix(envPrefix).
		WithFile(configFile).
		Build()
}

// Load builds the full Settings tree from Defaults, configFile, the environment under
// envPrefix and args.
func Load(configFile, envPrefix string, args []string) (Settings, error) {
	s, err := NewBuilder().
		WithDefaults(Defaults()).
		WithEnvPrefix(envPrefix).
		WithFile(configFile).
		WithArgs(args).
		Build()
	if s == nil {
		return Settings{}, err
	}
	st, scanErr := s.Settings()
	if scanErr != nil {
		return Settings{}, scanErr
	}
	return st, err
}

// GenerateFlags creates a flag per registered path, typed after its default value.
func (s *Store) GenerateFlags() *flag.FlagSet {
	fs := flag.NewFlagSet("settings", flag.ContinueOnError)

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, path := range slices.Sorted(maps.Keys(s.items)) {
		usage := "Setting: " + path
		switch v := s.items[path].defaultValue.(type) {
		case bool:
			fs.Bool(path, v, usage)
		case int:
			fs.Int(path, v, usage)
		case int64:
			fs.Int64(path, v, usage)
		case float64:
			fs.Float64(path, v, usage)
		default:
			fs.String(path, reflector.ToString(v), usage)
		}
	}
	return fs
}

// BindFlags stores every flag set on the command line as a CLI value.
func (s *Store) BindFlags(fs *flag.FlagSet) error {
	var errs []error
	fs.Visit(func(f *flag.Flag) {
		if err := s.setSource(f.Name, SourceCLI, parseValue(f.Value.String())); err != nil {
			errs = append(errs, fmt.Errorf("flag %s: %w", f.Name, err))
		}
	})
	if len(errs) > 0 {
		return fmt.Errorf("failed to bind %d flags: %w", len(errs), errs[0])
	}
	return nil
}

func (s *Store) setSource(path string, source Source, value any) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	it, ok := s.items[path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, path)
	}
	if it.values == nil {
		it.values = make(map[Source]any)
	}
	it.values[source] = value
	it.currentValue = s.computeValue(it)
	s.items[path] = it
	return nil
}

// Validate reports required paths that no source has set.
func (s *Store) Validate(required ...string) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var missing []string
	for _, path := range required {
		it, ok := s.items[path]
		switch {
		case !ok:
			missing = append(missing, path+" (not registered)")
		case len(it.values) == 0 && isZero(it.defaultValue):
			missing = append(missing, path)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Debug lists every path with its current, default and per-source values.
func (s *Store) Debug() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var b strings.Builder
	fmt.Fprintf(&b, "Precedence: %v\n", s.options.Sources)
	for _, path := range slices.Sorted(maps.Keys(s.items)) {
		it := s.items[path]
		fmt.Fprintf(&b, "  %s:\n", path)
		fmt.Fprintf(&b, "    current: %s\n", reflector.ToString(it.currentValue))
		fmt.Fprintf(&b, "    default: %s\n", reflector.ToString(it.defaultValue))
		for _, src := range slices.Sorted(maps.Keys(it.values)) {
			fmt.Fprintf(&b, "    %s: %s\n", src, reflector.ToString(it.values[src]))
		}
	}
	return b.String()
}

// Dump writes the current values to w as TOML.
func (s *Store) Dump(w io.Writer) error {
	s.mutex.RLock()
	data := s.nested("")
	s.mutex.RUnlock()

	if w == nil {
		w = os.Stdout
	}
	return toml.NewEncoder(w).Encode(data)
}

// Clone copies the store. Values are shared, the bookkeeping is not.
func (s *Store) Clone() *Store {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	clone := &Store{
		items:    make(map[string]item, len(s.items)),
		options:  s.options,
		r:        s.r,
		filePath: s.filePath,
	}
	for path, it := range s.items {
		it.values = maps.Clone(it.values)
		clone.items[path] = it
	}
	return clone
}

func isZero(v any) bool {
	rv := reflect.ValueOf(v)
	return !rv.IsValid() || rv.IsZero()
}
