// FILE: lixenwraith/reflector/settings/builder.go
package settings

import (
	"errors"
	"fmt"
	"os"

	"github.com/lixenwraith/reflector"
)

// ValidatorFunc checks a fully loaded Store.
type ValidatorFunc func(s *Store) error

// Builder provides a fluent interface for building a Store
type Builder struct {
	store      *Store
	opts       LoadOptions
	defaults   any
	prefix     string
	file       string
	args       []string
	validators []ValidatorFunc
}

// NewBuilder creates a builder reading os.Args[1:] with the default precedence.
func NewBuilder() *Builder {
	return &Builder{
		store: New(),
		opts:  DefaultLoadOptions(),
		args:  os.Args[1:],
	}
}

// WithReflector decodes through r instead of the default settings Reflector.
func (b *Builder) WithReflector(r *reflector.Reflector) *Builder {
	if r != nil {
		b.store = NewWithReflector(r)
	}
	return b
}

// WithDefaults sets the struct holding default values
func (b *Builder) WithDefaults(defaults any) *Builder {
	b.defaults = defaults
	return b
}

// WithPrefix sets the path prefix for struct registration
func (b *Builder) WithPrefix(prefix string) *Builder {
	b.prefix = prefix
	return b
}

// WithEnvPrefix sets the environment variable prefix
func (b *Builder) WithEnvPrefix(prefix string) *Builder {
	b.opts.EnvPrefix = prefix
	return b
}

// WithEnvTransform sets a custom environment variable transformer
func (b *Builder) WithEnvTransform(fn EnvTransformFunc) *Builder {
	b.opts.EnvTransform = fn
	return b
}

// WithEnvWhitelist limits which paths are checked for env vars
func (b *Builder) WithEnvWhitelist(paths ...string) *Builder {
	if b.opts.EnvWhitelist == nil {
		b.opts.EnvWhitelist = make(map[string]bool)
	}
	for _, path := range paths {
		b.opts.EnvWhitelist[path] = true
	}
	return b
}

// WithFile sets the settings file path
func (b *Builder) WithFile(path string) *Builder {
	b.file = path
	return b
}

// WithFormat forces the file format
func (b *Builder) WithFormat(format string) *Builder {
	b.opts.Format = format
	return b
}

// WithArgs sets the command-line arguments
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = args
	return b
}

// WithSources sets the precedence order of sources, highest first
func (b *Builder) WithSources(sources ...Source) *Builder {
	b.opts.Sources = sources
	return b
}

// WithValidator adds a check run after loading, in the order added
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build registers the defaults, loads every source and runs the validators.
// A missing file is returned as ErrNotFound together with a usable Store.
func (b *Builder) Build() (*Store, error) {
	if b.defaults != nil {
		if err := b.store.RegisterStruct(b.prefix, b.defaults); err != nil {
			return nil, fmt.Errorf("failed to register defaults: %w", err)
		}
	}

	loadErr := b.store.LoadWithOptions(b.file, b.args, b.opts)
	if loadErr != nil && !errors.Is(loadErr, ErrNotFound) {
		return nil, loadErr
	}

	for _, validate := range b.validators {
		if err := validate(b.store); err != nil {
			return nil, fmt.Errorf("settings validation failed: %w", err)
		}
	}
	return b.store, loadErr
}

// MustBuild is like Build but panics on errors other than ErrNotFound
func (b *Builder) MustBuild() *Store {
	s, err := b.Build()
	if err != nil && !errors.Is(err, ErrNotFound) {
		panic(fmt.Sprintf("settings build failed: %v", err))
	}
	return s
}

// BuildAndScan builds the Store and decodes the registration prefix into target.
func (b *Builder) BuildAndScan(target any) error {
	s, err := b.Build()
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if scanErr := s.Scan(b.prefix, target); scanErr != nil {
		return fmt.Errorf("failed to scan settings into target: %w", scanErr)
	}
	return err
}
