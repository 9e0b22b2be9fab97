// FILE: lixenwraith/reflector/kind.go
package reflector

import (
	"encoding"
	"math"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind is the closed set of value shapes the coercion chain dispatches on.
type Kind int

const (
	_ Kind = iota // zero is invalid

	KindBool
	KindInt
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindString
	KindDecimal
	KindTime
	KindDuration
	KindUUID
	KindDate
	KindTimeOfDay
	KindEnum
	KindType
	KindNullable // pointer to any other kind
	KindSlice
	KindMap
	KindStruct
	KindInterface
	KindOther

	// KindTotal is the number of kinds including the invalid zero
	KindTotal = int(iota)
)

var kindNames = [KindTotal]string{
	"Invalid", "Bool", "Int", "Int8", "Int16", "Int32", "Int64",
	"Uint", "Uint8", "Uint16", "Uint32", "Uint64", "Float32", "Float64",
	"String", "Decimal", "Time", "Duration", "UUID", "Date", "TimeOfDay",
	"Enum", "Type", "Nullable", "Slice", "Map", "Struct", "Interface", "Other",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= KindTotal {
		return "Invalid"
	}
	return kindNames[k]
}

func (k Kind) IsNumber() bool {
	return k.IsInteger() || k.IsFloat()
}

func (k Kind) IsInteger() bool {
	return k.IsSigned() || k.IsUnsigned()
}

func (k Kind) IsSigned() bool {
	switch k {
	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64:
		return true
	}
	return false
}

func (k Kind) IsUnsigned() bool {
	switch k {
	case KindUint, KindUint8, KindUint16, KindUint32, KindUint64:
		return true
	}
	return false
}

func (k Kind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

// IsBounded reports integer kinds narrower than 64 bits.
func (k Kind) IsBounded() bool {
	return k.IsInteger() && k.Bits() < 64
}

// IsPrimitive reports kinds copied by value in deep mode rather than recursed into.
func (k Kind) IsPrimitive() bool {
	switch k {
	case KindNullable, KindSlice, KindMap, KindStruct, KindInterface, KindOther, 0:
		return false
	}
	return true
}

// Bits returns the storage width of numeric kinds.
func (k Kind) Bits() int {
	switch k {
	default:
		panic("only numeric kinds have a bit width, requested for: " + k.String())
	case KindInt, KindUint:
		power := 0
		for n := uint(math.MaxUint); n > 0; n >>= 1 {
			power++
		}
		return power
	case KindInt8, KindUint8:
		return 8
	case KindInt16, KindUint16:
		return 16
	case KindInt32, KindUint32, KindFloat32:
		return 32
	case KindInt64, KindUint64, KindFloat64:
		return 64
	}
}

var (
	typeOfTime      = reflect.TypeOf(time.Time{})
	typeOfDuration  = reflect.TypeOf(time.Duration(0))
	typeOfDecimal   = reflect.TypeOf(decimal.Decimal{})
	typeOfUUID      = reflect.TypeOf(uuid.UUID{})
	typeOfDate      = reflect.TypeOf(Date{})
	typeOfTimeOfDay = reflect.TypeOf(TimeOfDay{})
	typeOfType      = reflect.TypeOf((*reflect.Type)(nil)).Elem()
	typeOfAny       = reflect.TypeOf((*any)(nil)).Elem()
	typeOfMapAny    = reflect.TypeOf(map[string]any(nil))

	typeOfTextUnmarshaler = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	typeOfTextMarshaler   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

var wellKnownKinds = map[reflect.Type]Kind{
	typeOfTime:      KindTime,
	typeOfDuration:  KindDuration,
	typeOfDecimal:   KindDecimal,
	typeOfUUID:      KindUUID,
	typeOfDate:      KindDate,
	typeOfTimeOfDay: KindTimeOfDay,
	typeOfType:      KindType,
}

// KindOf classifies t. Registered enums win over their underlying integer kind.
func (r *Reflector) KindOf(t reflect.Type) Kind {
	if t == nil {
		return 0
	}
	if k, ok := wellKnownKinds[t]; ok {
		return k
	}
	if r.IsEnum(t) {
		return KindEnum
	}
	switch t.Kind() {
	case reflect.Bool:
		return KindBool
	case reflect.Int:
		return KindInt
	case reflect.Int8:
		return KindInt8
	case reflect.Int16:
		return KindInt16
	case reflect.Int32:
		return KindInt32
	case reflect.Int64:
		return KindInt64
	case reflect.Uint:
		return KindUint
	case reflect.Uint8:
		return KindUint8
	case reflect.Uint16:
		return KindUint16
	case reflect.Uint32:
		return KindUint32
	case reflect.Uint64, reflect.Uintptr:
		return KindUint64
	case reflect.Float32:
		return KindFloat32
	case reflect.Float64:
		return KindFloat64
	case reflect.String:
		return KindString
	case reflect.Pointer:
		return KindNullable
	case reflect.Slice, reflect.Array:
		return KindSlice
	case reflect.Map:
		return KindMap
	case reflect.Struct:
		return KindStruct
	case reflect.Interface:
		return KindInterface
	}
	return KindOther
}
