// FILE: lixenwraith/reflector/settings/source.go
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/reflector"
	"github.com/lixenwraith/reflector/jsonx"
)

// Source identifies where a value came from, used to define load precedence
type Source string

const (
	// SourceDefault represents registered default values
	SourceDefault Source = "default"
	// SourceFile represents values loaded from a settings file
	SourceFile Source = "file"
	// SourceEnv represents values loaded from environment variables
	SourceEnv Source = "env"
	// SourceCLI represents values loaded from command-line arguments
	SourceCLI Source = "cli"
	// SourceRuntime represents values stored with Set; it always wins
	SourceRuntime Source = "runtime"
)

// EnvTransformFunc converts a setting path to an environment variable name
type EnvTransformFunc func(path string) string

// LoadOptions configures how settings are loaded from multiple sources
type LoadOptions struct {
	// Sources defines the precedence order (first = highest priority)
	// Default: [SourceCLI, SourceEnv, SourceFile, SourceDefault]
	Sources []Source

	// EnvPrefix is prepended to environment variable names
	// Example: "REFLECTOR_" transforms "log.level" to "REFLECTOR_LOG_LEVEL"
	EnvPrefix string

	// EnvTransform customizes how paths map to environment variables
	EnvTransform EnvTransformFunc

	// EnvWhitelist limits which paths are checked for env vars (nil = all)
	EnvWhitelist map[string]bool

	// Format forces the file format: "toml", "json" or "yaml". Empty detects it.
	Format string

	// MaxFileSize rejects larger settings files when positive
	MaxFileSize int64
}

// DefaultLoadOptions returns the standard load options
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Sources: []Source{SourceCLI, SourceEnv, SourceFile, SourceDefault},
	}
}

// Load reads the file at filePath, the environment and args with the store's options.
// A missing file is reported as ErrNotFound next to any other non-fatal errors.
func (s *Store) Load(filePath string, args []string) error {
	s.mutex.RLock()
	opts := s.options
	s.mutex.RUnlock()
	return s.LoadWithOptions(filePath, args, opts)
}

// LoadWithOptions loads every source named in opts, lowest precedence first.
func (s *Store) LoadWithOptions(filePath string, args []string, opts LoadOptions) error {
	s.mutex.Lock()
	s.options = opts
	s.mutex.Unlock()

	var loadErrors []error
	for i := len(opts.Sources) - 1; i >= 0; i-- {
		switch opts.Sources[i] {
		case SourceFile:
			if filePath == "" {
				continue
			}
			if err := s.loadFile(filePath, opts); err != nil {
				if !errors.Is(err, ErrNotFound) {
					return err
				}
				loadErrors = append(loadErrors, err)
			}
		case SourceEnv:
			if err := s.loadEnv(opts); err != nil {
				loadErrors = append(loadErrors, err)
			}
		case SourceCLI:
			if len(args) > 0 {
				if err := s.loadCLI(args); err != nil {
					loadErrors = append(loadErrors, err)
				}
			}
		}
	}
	return errors.Join(loadErrors...)
}

// LoadFile loads values from a TOML, JSON or YAML file.
func (s *Store) LoadFile(filePath string) error {
	s.mutex.RLock()
	opts := s.options
	s.mutex.RUnlock()
	return s.loadFile(filePath, opts)
}

// LoadEnv loads values from environment variables named with prefix.
func (s *Store) LoadEnv(prefix string) error {
	s.mutex.RLock()
	opts := s.options
	s.mutex.RUnlock()
	opts.EnvPrefix = prefix
	return s.loadEnv(opts)
}

// LoadCLI loads values from "--path value", "--path=value" and "--flag" arguments.
func (s *Store) LoadCLI(args []string) error {
	return s.loadCLI(args)
}

func (s *Store) loadFile(path string, opts LoadOptions) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("failed to stat settings file '%s': %w", path, err)
	}
	if opts.MaxFileSize > 0 && info.Size() > opts.MaxFileSize {
		return fmt.Errorf("settings file '%s' exceeds maximum size %d bytes", path, opts.MaxFileSize)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open settings file '%s': %w", path, err)
	}
	defer file.Close()

	var reader io.Reader = file
	if opts.MaxFileSize > 0 {
		reader = io.LimitReader(file, opts.MaxFileSize)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read settings file '%s': %w", path, err)
	}

	format := opts.Format
	if format == "" {
		if format = detectFileFormat(path); format == "" {
			format = detectFormatFromContent(data)
		}
	}
	parsed, err := parseFile(data, format)
	if err != nil {
		return fmt.Errorf("failed to parse settings file '%s': %w", path, err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	flat := s.registered(parsed)
	s.filePath = path
	for p, it := range s.items {
		if v, ok := flat[p]; ok {
			if it.values == nil {
				it.values = make(map[Source]any)
			}
			it.values[SourceFile] = v
		} else {
			delete(it.values, SourceFile)
		}
		it.currentValue = s.computeValue(it)
		s.items[p] = it
	}
	return nil
}

// registered flattens parsed file data, keeping tables whole when the table itself is a
// registered path, as for map-valued settings. The caller holds the mutex.
func (s *Store) registered(data map[string]any) map[string]any {
	out := make(map[string]any)
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			p := k
			if prefix != "" {
				p = prefix + "." + k
			}
			if _, ok := s.items[p]; ok {
				out[p] = v
				continue
			}
			if sub, ok := v.(map[string]any); ok {
				walk(p, sub)
			}
		}
	}
	walk("", data)
	return out
}

func parseFile(data []byte, format string) (map[string]any, error) {
	out := make(map[string]any)
	switch format {
	case "toml":
		if err := toml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("invalid TOML: %w", err)
		}
	case "json":
		v, err := jsonx.NewParser(string(data)).Decode()
		if err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid JSON: top level is %T, not an object", v)
		}
		out = m
	case "yaml":
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unable to determine settings format")
	}
	return out, nil
}

func (s *Store) loadEnv(opts LoadOptions) error {
	transform := opts.EnvTransform
	if transform == nil {
		transform = defaultEnvTransform(opts.EnvPrefix)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for path, it := range s.items {
		if opts.EnvWhitelist != nil && !opts.EnvWhitelist[path] {
			continue
		}
		value, ok := os.LookupEnv(transform(path))
		if !ok {
			continue
		}
		if len(value) > MaxValueSize {
			return fmt.Errorf("%w: %s", ErrValueSize, path)
		}
		if it.values == nil {
			it.values = make(map[Source]any)
		}
		it.values[SourceEnv] = parseValue(value)
		it.currentValue = s.computeValue(it)
		s.items[path] = it
	}
	return nil
}

func (s *Store) loadCLI(args []string) error {
	parsed, err := parseArgs(args)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCLIParse, err)
	}
	flat := flattenMap(parsed, "")

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for path, value := range flat {
		it, ok := s.items[path]
		if !ok {
			continue
		}
		if it.values == nil {
			it.values = make(map[Source]any)
		}
		it.values[SourceCLI] = value
		it.currentValue = s.computeValue(it)
		s.items[path] = it
	}
	return nil
}

// DiscoverEnv maps registered paths to the environment variables currently set for them.
func (s *Store) DiscoverEnv(prefix string) map[string]string {
	transform := s.options.EnvTransform
	if transform == nil {
		transform = defaultEnvTransform(prefix)
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	found := make(map[string]string)
	for path := range s.items {
		name := transform(path)
		if _, ok := os.LookupEnv(name); ok {
			found[path] = name
		}
	}
	return found
}

// ExportEnv renders the values that differ from their defaults as environment variables.
func (s *Store) ExportEnv(prefix string) map[string]string {
	transform := s.options.EnvTransform
	if transform == nil {
		transform = defaultEnvTransform(prefix)
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	exports := make(map[string]string)
	for path, it := range s.items {
		if !reflect.DeepEqual(it.currentValue, it.defaultValue) {
			exports[transform(path)] = reflector.ToString(it.currentValue)
		}
	}
	return exports
}

// defaultEnvTransform upper-cases the path, replaces dots with underscores and adds prefix.
func defaultEnvTransform(prefix string) EnvTransformFunc {
	return func(path string) string {
		return prefix + strings.ToUpper(strings.ReplaceAll(path, ".", "_"))
	}
}

// parseValue keeps environment values as text for the decoder, recognizing only the
// boolean literals and stripping one level of double quotes.
func parseValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// parseArgs processes command-line arguments into a nested map of string values.
func parseArgs(args []string) (map[string]any, error) {
	result := make(map[string]any)
	for i := 0; i < len(args); i++ {
		content, ok := strings.CutPrefix(args[i], "--")
		if !ok || content == "" {
			continue
		}

		var keyPath, value string
		if k, v, found := strings.Cut(content, "="); found {
			keyPath, value = k, v
		} else if i+1 < len(args) && !strings.HasPrefix(args[i+1], "--") {
			keyPath, value = content, args[i+1]
			i++
		} else {
			keyPath, value = content, "true"
		}

		if keyPath == "" {
			continue
		}
		if len(value) > MaxValueSize {
			return nil, fmt.Errorf("%w: %s", ErrValueSize, keyPath)
		}
		for _, segment := range strings.Split(keyPath, ".") {
			if !isValidKeySegment(segment) {
				return nil, fmt.Errorf("invalid command-line key segment %q in path %q", segment, keyPath)
			}
		}
		setNestedValue(result, keyPath, value)
	}
	return result, nil
}

// Save writes the current values to a TOML file atomically.
func (s *Store) Save(path string) error {
	return s.SaveSource(path, "")
}

// SaveSource writes the values of one source to a TOML file. An empty source saves
// the current values.
func (s *Store) SaveSource(path string, source Source) error {
	s.mutex.RLock()
	data := s.nested(source)
	s.mutex.RUnlock()

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(data); err != nil {
		return fmt.Errorf("failed to marshal settings to TOML: %w", err)
	}
	return atomicWriteFile(path, buf.Bytes())
}

// atomicWriteFile writes data to a temporary file beside path and renames it into place.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempPath := tempFile.Name()
	defer os.Remove(tempPath)

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

// detectFileFormat determines format from the file extension
func detectFileFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		return "toml"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	}
	return ""
}

// detectFormatFromContent tries the strict formats first: JSON, then TOML, then YAML.
func detectFormatFromContent(data []byte) string {
	if _, err := parseFile(data, "json"); err == nil {
		return "json"
	}
	if _, err := parseFile(data, "toml"); err == nil {
		return "toml"
	}
	if _, err := parseFile(data, "yaml"); err == nil {
		return "yaml"
	}
	return ""
}
