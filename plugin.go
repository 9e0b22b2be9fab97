// FILE: lixenwraith/reflector/plugin.go
package reflector

import (
	"iter"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"
)

// Module is a named set of types, the unit the plugin resolver scans.
type Module struct {
	Name string

	mu    sync.RWMutex
	types []reflect.Type
}

// NewModule creates a module holding the types of samples, see Add.
func NewModule(name string, samples ...any) *Module {
	m := &Module{Name: name}
	return m.Add(samples...)
}

// Add appends types to the module. A sample may be a reflect.Type, a value, or a nil
// pointer to an interface such as (*io.Reader)(nil), which adds the interface itself.
func (m *Module) Add(samples ...any) *Module {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range samples {
		if t := sampleType(s); t != nil && !slices.Contains(m.types, t) {
			m.types = append(m.types, t)
		}
	}
	return m
}

// Types returns a snapshot of the module's types in insertion order.
func (m *Module) Types() []reflect.Type {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]reflect.Type(nil), m.types...)
}

// Base is what subclasses are matched against: either a concrete type or an open
// generic family identified by package path, name without type arguments, and arity.
type Base struct {
	Type   reflect.Type
	Family string
	Arity  int
	// sample is an instantiation used to match interface families
	sample reflect.Type
}

// BaseOf returns a Base matching t exactly, its implementers or its embedders.
func BaseOf(t reflect.Type) Base {
	return Base{Type: t}
}

// Family returns the open generic family of sample, so Family(Box[int]{}) also matches
// Box[string]. Non-generic samples yield a family of arity zero, unnamed ones a zero Base.
func Family(sample any) Base {
	t := sampleType(sample)
	if t == nil {
		return Base{}
	}
	family, arity := familyOf(t)
	if family == "" {
		return Base{}
	}
	return Base{Family: family, Arity: arity, sample: t}
}

// IsZero reports an empty Base.
func (b Base) IsZero() bool {
	return b.Type == nil && b.Family == ""
}

func (b Base) String() string {
	if b.Type != nil {
		return b.Type.String()
	}
	if b.Arity == 0 {
		return b.Family
	}
	return b.Family + "[" + strings.Repeat(",", b.Arity-1) + "]"
}

// Load adds modules to the set scanned by AllSubclasses and TypeByName.
func (r *Reflector) Load(modules ...*Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range modules {
		if m == nil || slices.Contains(r.modules, m) {
			continue
		}
		r.modules = append(r.modules, m)
		r.logger.Debug("reflector: loaded module %s", m.Name)
	}
}

// Modules returns a snapshot of the loaded modules.
func (r *Reflector) Modules() []*Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Module(nil), r.modules...)
}

// As reports whether t satisfies base: t is the base type, implements the base
// interface with a value or pointer receiver, embeds the base struct at any depth, or
// belongs to (or embeds a member of) the base family.
func (r *Reflector) As(t reflect.Type, base Base) bool {
	if t == nil || base.IsZero() {
		return false
	}
	if base.Type != nil {
		if t == base.Type {
			return true
		}
		switch base.Type.Kind() {
		case reflect.Interface:
			return implements(t, base.Type)
		case reflect.Struct:
			return embeds(t, func(e reflect.Type) bool { return e == base.Type })
		}
		return false
	}

	match := func(e reflect.Type) bool {
		f, n := familyOf(e)
		return f == base.Family && n == base.Arity
	}
	if match(t) || embeds(t, match) {
		return true
	}
	for _, inst := range r.instantiations(base) {
		if inst.Kind() == reflect.Interface && implements(t, inst) {
			return true
		}
	}
	return false
}

// SubclassesIn lazily yields the concrete types of m satisfying base. Each iteration
// rescans the module.
func (r *Reflector) SubclassesIn(m *Module, base Base) (iter.Seq[reflect.Type], error) {
	if m == nil {
		return nil, ErrNilModule
	}
	if base.IsZero() {
		return nil, ErrNilBase
	}
	return func(yield func(reflect.Type) bool) {
		for _, t := range m.Types() {
			if t.Kind() == reflect.Interface || !r.As(t, base) {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}, nil
}

// AllSubclasses is SubclassesIn over every module loaded at iteration time.
func (r *Reflector) AllSubclasses(base Base) (iter.Seq[reflect.Type], error) {
	if base.IsZero() {
		return nil, ErrNilBase
	}
	return func(yield func(reflect.Type) bool) {
		for _, m := range r.Modules() {
			seq, _ := r.SubclassesIn(m, base)
			for t := range seq {
				if !yield(t) {
					return
				}
			}
		}
	}, nil
}

var builtinTypes = map[string]reflect.Type{
	"bool":          reflect.TypeOf(false),
	"string":        reflect.TypeOf(""),
	"int":           reflect.TypeOf(0),
	"int8":          reflect.TypeOf(int8(0)),
	"int16":         reflect.TypeOf(int16(0)),
	"int32":         reflect.TypeOf(int32(0)),
	"int64":         reflect.TypeOf(int64(0)),
	"uint":          reflect.TypeOf(uint(0)),
	"uint8":         reflect.TypeOf(uint8(0)),
	"uint16":        reflect.TypeOf(uint16(0)),
	"uint32":        reflect.TypeOf(uint32(0)),
	"uint64":        reflect.TypeOf(uint64(0)),
	"float32":       reflect.TypeOf(float32(0)),
	"float64":       reflect.TypeOf(float64(0)),
	"byte":          reflect.TypeOf(byte(0)),
	"rune":          reflect.TypeOf(rune(0)),
	"time.Time":     reflect.TypeOf(time.Time{}),
	"time.Duration": reflect.TypeOf(time.Duration(0)),
}

// TypeByName resolves a builtin name, a qualified name ("pkg.Type" as printed by
// reflect.Type.String), a full name ("path/to/pkg.Type") or a bare name against the
// loaded modules. Case is ignored for bare names.
func (r *Reflector) TypeByName(name string) (reflect.Type, bool) {
	name = strings.TrimSpace(name)
	if t, ok := builtinTypes[name]; ok {
		return t, true
	}
	var loose reflect.Type
	for _, m := range r.Modules() {
		for _, t := range m.Types() {
			switch {
			case t.String() == name, t.PkgPath()+"."+t.Name() == name:
				return t, true
			case loose == nil && strings.EqualFold(t.Name(), name):
				loose = t
			}
		}
	}
	return loose, loose != nil
}

// instantiations lists the known types of an open family: the sample it was built from
// and every loaded type of the same family and arity.
func (r *Reflector) instantiations(base Base) []reflect.Type {
	var out []reflect.Type
	if base.sample != nil {
		out = append(out, base.sample)
	}
	for _, m := range r.Modules() {
		for _, t := range m.Types() {
			if f, n := familyOf(t); f == base.Family && n == base.Arity && !slices.Contains(out, t) {
				out = append(out, t)
			}
		}
	}
	return out
}

// familyOf splits a named type into package-qualified name without type arguments and
// the number of type arguments.
func familyOf(t reflect.Type) (string, int) {
	t = indirect(t)
	name := t.Name()
	if name == "" {
		return "", 0
	}
	open := strings.IndexByte(name, '[')
	if open < 0 || !strings.HasSuffix(name, "]") {
		return t.PkgPath() + "." + name, 0
	}
	args := name[open+1 : len(name)-1]
	arity, depth := 1, 0
	for _, c := range args {
		switch c {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				arity++
			}
		}
	}
	return t.PkgPath() + "." + name[:open], arity
}

func implements(t, iface reflect.Type) bool {
	if t.Implements(iface) {
		return true
	}
	return t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface && reflect.PointerTo(t).Implements(iface)
}

// embeds walks the embedded structs of t depth-first and reports whether any satisfies
// match. Types already on the embedding path are not entered again.
func embeds(t reflect.Type, match func(reflect.Type) bool) bool {
	return embedsOnPath(indirect(t), match, make(map[reflect.Type]bool))
}

func embedsOnPath(t reflect.Type, match func(reflect.Type) bool, path map[reflect.Type]bool) bool {
	if t.Kind() != reflect.Struct || path[t] {
		return false
	}
	path[t] = true
	defer delete(path, t)

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}
		ft := indirect(f.Type)
		if ft.Kind() != reflect.Struct {
			continue
		}
		if match(ft) || embedsOnPath(ft, match, path) {
			return true
		}
	}
	return false
}

func sampleType(s any) reflect.Type {
	switch v := s.(type) {
	case nil:
		return nil
	case reflect.Type:
		return v
	}
	t := reflect.TypeOf(s)
	if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Interface {
		return t.Elem()
	}
	return t
}
