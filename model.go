// FILE: lixenwraith/reflector/model.go
package reflector

// Model is implemented by types exposing their members through a key-based accessor.
// A shallow Copy into a Model target writes through Set without coercion.
type Model interface {
	Get(name string) (any, bool)
	Set(name string, value any)
}

// Extend is a Model that also carries ad-hoc items and tracks changes to them.
// Copy never uses the Model fast path for an Extend target.
type Extend interface {
	Model
	Items() map[string]any
}
