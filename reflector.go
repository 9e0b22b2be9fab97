// FILE: lixenwraith/reflector/reflector.go
package reflector

import (
	"reflect"
	"sync"

	"github.com/lixenwraith/reflector/xlog"
)

// DefaultTagName is the struct tag read for aliases and member options.
const DefaultTagName = "reflector"

// Reflector owns the member cache, the enum and constructor registries and the set of
// loaded modules. All methods are safe for concurrent use.
type Reflector struct {
	logger  xlog.Logger
	tagName string

	// member lists keyed by reflect.Type, one map per (kind, baseFirst)
	fieldsBase    sync.Map
	fieldsDerived sync.Map
	propsBase     sync.Map
	propsDerived  sync.Map
	descriptors   sync.Map // reflect.Type -> *TypeDescriptor

	enums sync.Map // reflect.Type -> *enumInfo
	ctors sync.Map // reflect.Type -> reflect.Value (func)

	mu      sync.RWMutex
	modules []*Module

	steps []step
}

// New creates a Reflector with default settings and empty caches.
func New() *Reflector {
	return &Reflector{
		logger:  xlog.Null,
		tagName: DefaultTagName,
		steps:   defaultSteps(),
	}
}

var std = New()

// Default returns the process-wide Reflector used by the package-level helpers.
func Default() *Reflector {
	return std
}

// Logger returns the logger the Reflector reports to.
func (r *Reflector) Logger() xlog.Logger {
	return r.logger
}

// TagName returns the struct tag key read for member options.
func (r *Reflector) TagName() string {
	return r.tagName
}

func (r *Reflector) slot(kind MemberKind, baseFirst bool) *sync.Map {
	switch {
	case kind == FieldMember && baseFirst:
		return &r.fieldsBase
	case kind == FieldMember:
		return &r.fieldsDerived
	case baseFirst:
		return &r.propsBase
	default:
		return &r.propsDerived
	}
}

// indirect strips pointer layers.
func indirect(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
