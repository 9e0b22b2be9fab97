// File: lixenwraith/reflector/builder.go
package reflector

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/lixenwraith/reflector/xlog"
)

// Builder provides a fluent interface for building a Reflector
type Builder struct {
	r      *Reflector
	ctors  []any
	errors []error
}

// NewBuilder creates a new Reflector builder
func NewBuilder() *Builder {
	return &Builder{r: New()}
}

// WithLogger sets the logger for cache and fallback diagnostics
func (b *Builder) WithLogger(logger xlog.Logger) *Builder {
	if logger != nil {
		b.r.logger = logger
	}
	return b
}

// WithTagName sets the struct tag key used for aliases and member options
func (b *Builder) WithTagName(name string) *Builder {
	if name == "" {
		b.errors = append(b.errors, fmt.Errorf("tag name cannot be empty"))
		return b
	}
	b.r.tagName = name
	return b
}

// WithModules loads modules for type-name resolution and plugin discovery
func (b *Builder) WithModules(modules ...*Module) *Builder {
	for _, m := range modules {
		if m == nil {
			b.errors = append(b.errors, ErrNilModule)
			continue
		}
		b.r.Load(m)
	}
	return b
}

// WithConstructors registers constructor functions, see RegisterConstructor
func (b *Builder) WithConstructors(fns ...any) *Builder {
	b.ctors = append(b.ctors, fns...)
	return b
}

// WithEnum registers an enum type given a list of its members
func (b *Builder) WithEnum(t reflect.Type, values ...any) *Builder {
	if err := b.r.registerEnum(t, values); err != nil {
		b.errors = append(b.errors, err)
	}
	return b
}

// Build returns the configured Reflector
func (b *Builder) Build() (*Reflector, error) {
	for _, fn := range b.ctors {
		if err := b.r.RegisterConstructor(fn); err != nil {
			b.errors = append(b.errors, err)
		}
	}
	if len(b.errors) > 0 {
		return nil, fmt.Errorf("reflector build failed: %w", errors.Join(b.errors...))
	}
	return b.r, nil
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Reflector {
	r, err := b.Build()
	if err != nil {
		panic(err.Error())
	}
	return r
}
