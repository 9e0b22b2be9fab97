// FILE: lixenwraith/reflector/member.go
package reflector

import (
	"fmt"
	"reflect"
	"strings"
	"unsafe"
)

// MemberKind separates the two enumeration views of a struct.
type MemberKind int

const (
	// FieldMember is every instance field, exported or not
	FieldMember MemberKind = iota
	// PropertyMember is the public data surface
	PropertyMember
)

func (k MemberKind) String() string {
	if k == FieldMember {
		return "fields"
	}
	return "properties"
}

// Member describes one field or property of a struct type.
type Member struct {
	Name      string
	Alias     string // wire name from the reflector or json tag
	Type      reflect.Type
	Kind      MemberKind
	Index     []int // path through embedded structs, usable with FieldByIndex
	Depth     int   // 0 for own declarations, n for members lifted n embeddings up
	Declaring reflect.Type
	CanRead   bool
	CanWrite  bool
	Exported  bool
	OmitEmpty bool
	Excluded  bool
}

// WireName returns the alias when set, else the Go name.
func (m *Member) WireName() string {
	if m.Alias != "" {
		return m.Alias
	}
	return m.Name
}

// Value locates the member inside the struct value v. Nil embedded pointers on the path
// are allocated when alloc is set, otherwise the second result is false. The returned
// value is settable whenever v is addressable, including unexported members.
func (m *Member) Value(v reflect.Value, alloc bool) (reflect.Value, bool) {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	for i, idx := range m.Index {
		if i > 0 {
			if v.Kind() == reflect.Pointer {
				if v.IsNil() {
					if !alloc {
						return reflect.Value{}, false
					}
					p := open(v)
					if !p.CanSet() {
						return reflect.Value{}, false
					}
					p.Set(reflect.New(v.Type().Elem()))
					v = p
				}
				v = v.Elem()
			}
		}
		v = v.Field(idx)
	}
	return open(v), true
}

// Get reads the member from v, which may be a struct or a pointer to one.
func (m *Member) Get(v reflect.Value) (any, bool) {
	f, ok := m.Value(v, false)
	if !ok || !f.CanInterface() {
		return nil, false
	}
	return f.Interface(), true
}

// Set assigns x to the member of v. x must already be assignable to the member type.
func (m *Member) Set(v reflect.Value, x reflect.Value) error {
	f, ok := m.Value(v, true)
	if !ok || !f.CanSet() {
		return fmt.Errorf("reflector: member %s of %s is not settable", m.Name, m.Declaring)
	}
	if !x.IsValid() {
		f.Set(reflect.Zero(f.Type()))
		return nil
	}
	if !x.Type().AssignableTo(f.Type()) {
		return &MismatchError{Member: m.Name, Want: f.Type(), Got: x.Type()}
	}
	f.Set(x)
	return nil
}

// open lifts the read-only flag reflect puts on unexported fields of addressable values.
func open(f reflect.Value) reflect.Value {
	if f.CanSet() || !f.CanAddr() {
		return f
	}
	return reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
}

// memberTag is the parsed form of a struct tag.
type memberTag struct {
	name      string
	skip      bool
	omitEmpty bool
	include   bool
	readonly  bool
}

func parseTag(raw string) memberTag {
	if raw == "-" {
		return memberTag{skip: true}
	}
	parts := strings.Split(raw, ",")
	tag := memberTag{name: parts[0]}
	for _, opt := range parts[1:] {
		switch opt {
		case "omitempty":
			tag.omitEmpty = true
		case "include":
			tag.include = true
		case "readonly":
			tag.readonly = true
		}
	}
	return tag
}
