// FILE: lixenwraith/reflector/errors.go
package reflector

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrNilType is returned when a nil reflect.Type is passed where a type is required.
	ErrNilType = errors.New("reflector: nil type")
	// ErrNilModule is returned by SubclassesIn for a nil module.
	ErrNilModule = errors.New("reflector: nil module")
	// ErrNilBase is returned by the plugin resolver for an empty base.
	ErrNilBase = errors.New("reflector: nil base type")
	// ErrNotPointer is returned when a copy or decode target is not a non-nil pointer.
	ErrNotPointer = errors.New("reflector: target must be a non-nil pointer")
	// ErrNoInstance is the cause of a CreateError for types with no construction path.
	ErrNoInstance = errors.New("reflector: type has no construction path")
	// ErrUnknownType is returned when a type name does not resolve in any loaded module.
	ErrUnknownType = errors.New("reflector: unknown type name")
	// ErrNoMethod is the cause of an InvokeError for a method the target does not have.
	ErrNoMethod = errors.New("reflector: no such method")
)

// CreateError reports a failed instantiation of a target or nested member.
type CreateError struct {
	Type   reflect.Type
	Params []any
	Err    error
}

func (e *CreateError) Error() string {
	name := "<nil>"
	if e.Type != nil {
		name = e.Type.String()
	}
	if len(e.Params) == 0 {
		return fmt.Sprintf("reflector: cannot create %s: %v", name, e.Err)
	}
	return fmt.Sprintf("reflector: cannot create %s with params %v: %v", name, e.Params, e.Err)
}

func (e *CreateError) Unwrap() error { return e.Err }

// InvokeError reports a method call that could not be made or that returned an error.
type InvokeError struct {
	Type   reflect.Type
	Method string
	Err    error
}

func (e *InvokeError) Error() string {
	name := "<nil>"
	if e.Type != nil {
		name = e.Type.String()
	}
	return fmt.Sprintf("reflector: invoke %s.%s: %v", name, e.Method, e.Err)
}

func (e *InvokeError) Unwrap() error { return e.Err }

// EnumError reports text that names no member of a registered enum.
type EnumError struct {
	Type reflect.Type
	Text string
}

func (e *EnumError) Error() string {
	return fmt.Sprintf("reflector: %q is not a member of %s", e.Text, e.Type)
}

// MismatchError reports a copied value that could not be coerced to the member type.
type MismatchError struct {
	Member string
	Want   reflect.Type
	Got    reflect.Type
}

func (e *MismatchError) Error() string {
	got := "<nil>"
	if e.Got != nil {
		got = e.Got.String()
	}
	if e.Member == "" {
		return fmt.Sprintf("reflector: cannot coerce %s to %s", got, e.Want)
	}
	return fmt.Sprintf("reflector: member %s expects %s, got %s", e.Member, e.Want, got)
}
