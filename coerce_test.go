// FILE: lixenwraith/reflector/coerce_test.go
package reflector

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Color int

const (
	Red Color = iota + 1
	Green
	Blue
)

func (c Color) String() string {
	switch c {
	case Red:
		return "Red"
	case Green:
		return "Green"
	case Blue:
		return "Blue"
	}
	return "Color(" + strconv.Itoa(int(c)) + ")"
}

// Grade parses itself through UnmarshalText.
type Grade int

func (g *Grade) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "low":
		*g = 1
	case "high":
		*g = 2
	default:
		return fmt.Errorf("unknown grade %q", b)
	}
	return nil
}

// Celsius parses itself through a Parse method.
type Celsius float64

func (Celsius) Parse(s string) (Celsius, error) {
	f, err := strconv.ParseFloat(strings.TrimSuffix(s, "C"), 64)
	return Celsius(f), err
}

func coerce(t *testing.T, r *Reflector, value any, target reflect.Type) any {
	t.Helper()
	out, err := r.Coerce(value, target)
	require.NoError(t, err)
	return out
}

// TestCoerceIdentity tests that values already of the target type pass through
func TestCoerceIdentity(t *testing.T) {
	r := New()
	RegisterEnum(r, Red, Green, Blue)

	values := []any{
		42, int8(-3), uint16(7), 2.5, float32(1.25), "text", true,
		time.Date(2024, 3, 5, 6, 7, 8, 0, time.UTC), 90 * time.Second,
		uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		decimal.RequireFromString("12.34"), Date{2024, time.March, 5}, Green,
		[]int{1, 2}, map[string]int{"a": 1}, Animal{ID: 1}, &Animal{ID: 2},
	}
	for _, v := range values {
		t.Run(fmt.Sprintf("%T", v), func(t *testing.T) {
			assert.Equal(t, v, coerce(t, r, v, reflect.TypeOf(v)))
		})
	}

	t.Run("NilTarget", func(t *testing.T) {
		_, err := r.Coerce(1, nil)
		assert.ErrorIs(t, err, ErrNilType)
	})
}

// TestCoerceEnum tests enum round trips by name and by code
func TestCoerceEnum(t *testing.T) {
	r := New()
	RegisterEnum(r, Red, Green, Blue)
	typ := reflect.TypeFor[Color]()

	for _, c := range []Color{Red, Green, Blue} {
		t.Run(c.String(), func(t *testing.T) {
			name, ok := r.EnumName(c)
			require.True(t, ok)
			assert.Equal(t, c, coerce(t, r, name, typ))
			assert.Equal(t, c, coerce(t, r, strings.ToUpper(name), typ))
			assert.Equal(t, c, coerce(t, r, int(c), typ))
			assert.Equal(t, c, coerce(t, r, int64(c), typ))
			assert.Equal(t, c, coerce(t, r, strconv.Itoa(int(c)), typ))
		})
	}

	t.Run("UnknownName", func(t *testing.T) {
		_, err := r.Coerce("Purple", typ)
		var enumErr *EnumError
		require.ErrorAs(t, err, &enumErr)
		assert.Equal(t, "Purple", enumErr.Text)
		assert.Equal(t, typ, enumErr.Type)
	})

	t.Run("UnknownCodeKept", func(t *testing.T) {
		assert.Equal(t, Color(9), coerce(t, r, 9, typ))
		_, ok := r.EnumName(Color(9))
		assert.False(t, ok)
	})

	t.Run("EnumToText", func(t *testing.T) {
		assert.Equal(t, "Blue", coerce(t, r, Blue, reflect.TypeFor[string]()))
		assert.Equal(t, 3, coerce(t, r, Blue, reflect.TypeFor[int]()))
	})

	t.Run("Names", func(t *testing.T) {
		assert.Equal(t, []string{"Red", "Green", "Blue"}, r.EnumNames(typ))
		assert.Nil(t, r.EnumNames(reflect.TypeFor[int]()))
	})

	t.Run("UnregisteredIsPlainInteger", func(t *testing.T) {
		plain := New()
		assert.Equal(t, Color(0), coerce(t, plain, "Green", typ))
	})
}

// TestCoerceNullable tests pointer targets
func TestCoerceNullable(t *testing.T) {
	r := New()

	t.Run("AbsentIsNil", func(t *testing.T) {
		out := coerce(t, r, nil, reflect.TypeFor[*int]())
		p, ok := out.(*int)
		require.True(t, ok)
		assert.Nil(t, p)
	})

	t.Run("ZeroTimeIsNil", func(t *testing.T) {
		out := coerce(t, r, time.Time{}, reflect.TypeFor[*time.Time]())
		p, ok := out.(*time.Time)
		require.True(t, ok)
		assert.Nil(t, p)

		var zero *time.Time
		out = coerce(t, r, zero, reflect.TypeFor[*time.Time]())
		assert.Nil(t, out.(*time.Time))
	})

	t.Run("Wrap", func(t *testing.T) {
		out := coerce(t, r, "5", reflect.TypeFor[*int]())
		p, ok := out.(*int)
		require.True(t, ok)
		require.NotNil(t, p)
		assert.Equal(t, 5, *p)
	})

	t.Run("Rewrap", func(t *testing.T) {
		n := int64(12)
		out := coerce(t, r, &n, reflect.TypeFor[*int32]())
		require.IsType(t, (*int32)(nil), out)
		assert.Equal(t, int32(12), *out.(*int32))
	})

	t.Run("PointerSourceDereferenced", func(t *testing.T) {
		n := 5
		assert.Equal(t, "5", coerce(t, r, &n, reflect.TypeFor[string]()))
		var none *int
		assert.Equal(t, 0, coerce(t, r, none, reflect.TypeFor[int]()))
	})
}

// TestCoerceBasic tests per-kind parsers and their graceful fallback
func TestCoerceBasic(t *testing.T) {
	r := New()

	tests := []struct {
		name   string
		value  any
		target reflect.Type
		want   any
	}{
		{"BoolYes", "yes", reflect.TypeFor[bool](), true},
		{"BoolOn", "ON", reflect.TypeFor[bool](), true},
		{"BoolOff", "off", reflect.TypeFor[bool](), false},
		{"BoolNumber", 1, reflect.TypeFor[bool](), true},
		{"BoolMalformed", "maybe", reflect.TypeFor[bool](), false},
		{"IntText", "42", reflect.TypeFor[int](), 42},
		{"IntTruncatesText", "12.9", reflect.TypeFor[int](), 12},
		{"IntTruncatesFloat", 3.99, reflect.TypeFor[int16](), int16(3)},
		{"IntSeparators", "1,234", reflect.TypeFor[int64](), int64(1234)},
		{"IntMalformed", "abc", reflect.TypeFor[int](), 0},
		{"Int8Narrows", "300", reflect.TypeFor[int8](), int8(44)},
		{"Uint8Hex", "0x1F", reflect.TypeFor[uint8](), uint8(31)},
		{"IntZeroPadded", "010", reflect.TypeFor[int32](), int32(10)},
		{"Int64ZeroPadded", "0123", reflect.TypeFor[int64](), int64(123)},
		{"IntZeroPaddedNine", "09", reflect.TypeFor[int32](), int32(9)},
		{"IntNegativeZeroPadded", "-007", reflect.TypeFor[int](), -7},
		{"Uint64ZeroPadded", "0010", reflect.TypeFor[uint64](), uint64(10)},
		{"IntBinary", "0b101", reflect.TypeFor[int](), 5},
		{"IntOctalPrefix", "0o17", reflect.TypeFor[int](), 15},
		{"IntNegativeHex", "-0x10", reflect.TypeFor[int64](), int64(-16)},
		{"IntGroupedSeparators", "-1,234,567", reflect.TypeFor[int64](), int64(-1234567)},
		{"IntCommaNotThousands", "1,5", reflect.TypeFor[int](), 0},
		{"IntShortGroup", "12,34", reflect.TypeFor[int64](), int64(0)},
		{"FloatSeparators", "1,234.5", reflect.TypeFor[float64](), 1234.5},
		{"FloatCommaDecimal", "1,5", reflect.TypeFor[float64](), 0.0},
		{"Uint64Large", "18446744073709551615", reflect.TypeFor[uint64](), uint64(18446744073709551615)},
		{"FloatText", "2.5", reflect.TypeFor[float64](), 2.5},
		{"Float32FromInt", 3, reflect.TypeFor[float32](), float32(3)},
		{"StringFromInt", 42, reflect.TypeFor[string](), "42"},
		{"StringFromFloat", 2.5, reflect.TypeFor[string](), "2.5"},
		{"StringFromBytes", []byte("raw"), reflect.TypeFor[string](), "raw"},
		{"Absent", nil, reflect.TypeFor[int](), 0},
		{"AbsentString", nil, reflect.TypeFor[string](), ""},
		{"EmptySlice", nil, reflect.TypeFor[[]string](), []string{}},
		{"EmptyMap", nil, reflect.TypeFor[map[string]int](), map[string]int{}},
		{"DurationText", "1.02:03:04", reflect.TypeFor[time.Duration](), 26*time.Hour + 3*time.Minute + 4*time.Second},
		{"DurationGo", "90s", reflect.TypeFor[time.Duration](), 90 * time.Second},
		{"DurationNanos", int64(1500), reflect.TypeFor[time.Duration](), 1500 * time.Nanosecond},
		{"Date", "2024/03/05", reflect.TypeFor[Date](), Date{2024, time.March, 5}},
		{"TimeOfDay", "13:45:10", reflect.TypeFor[TimeOfDay](), TimeOfDay{Hour: 13, Minute: 45, Second: 10}},
		{"GradeText", "high", reflect.TypeFor[Grade](), Grade(2)},
		{"CelsiusParse", "21.5C", reflect.TypeFor[Celsius](), Celsius(21.5)},
		{"IntsFromMixed", []any{"1", 2, 3.0}, reflect.TypeFor[[]int](), []int{1, 2, 3}},
		{"SplitText", "a,b,c", reflect.TypeFor[[]string](), []string{"a", "b", "c"}},
		{"MapValues", map[string]any{"x": "1"}, reflect.TypeFor[map[string]int](), map[string]int{"x": 1}},
		{"Array", []any{"1", "2"}, reflect.TypeFor[[2]uint8](), [2]uint8{1, 2}},
		{"NamedString", "abc", reflect.TypeFor[Token](), Token("abc")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, coerce(t, r, tt.value, tt.target))
		})
	}
}

type Token string

// TestCoerceDecimal tests currency text into decimals
func TestCoerceDecimal(t *testing.T) {
	r := New()
	typ := reflect.TypeFor[decimal.Decimal]()

	tests := []struct {
		value any
		want  string
	}{
		{"$12.50", "12.5"},
		{"￥1,234.5", "1234.5"},
		{" €7 ", "7"},
		{"£0.01", "0.01"},
		{3, "3"},
		{2.25, "2.25"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.value), func(t *testing.T) {
			out := coerce(t, r, tt.value, typ)
			d, ok := out.(decimal.Decimal)
			require.True(t, ok)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(d), "got %s", d)
		})
	}

	t.Run("Malformed", func(t *testing.T) {
		d := coerce(t, r, "$abc", typ).(decimal.Decimal)
		assert.True(t, d.IsZero())
	})

	t.Run("ToFloat", func(t *testing.T) {
		assert.Equal(t, 12.5, coerce(t, r, decimal.RequireFromString("12.5"), reflect.TypeFor[float64]()))
	})
}

// TestCoerceTime tests date/time parsing including the UTC suffix
func TestCoerceTime(t *testing.T) {
	r := New()
	typ := reflect.TypeFor[time.Time]()

	t.Run("UTCSuffix", func(t *testing.T) {
		got := coerce(t, r, "2024-03-05 06:07:08 UTC", typ).(time.Time)
		assert.Equal(t, time.UTC, got.Location())
		assert.True(t, got.Equal(time.Date(2024, 3, 5, 6, 7, 8, 0, time.UTC)))
	})

	t.Run("LocalWithoutSuffix", func(t *testing.T) {
		got := coerce(t, r, "2024-03-05 06:07:08", typ).(time.Time)
		assert.Equal(t, time.Local, got.Location())
		assert.Equal(t, 6, got.Hour())
	})

	t.Run("RFC3339", func(t *testing.T) {
		got := coerce(t, r, "2024-03-05T06:07:08Z", typ).(time.Time)
		assert.True(t, got.Equal(time.Date(2024, 3, 5, 6, 7, 8, 0, time.UTC)))
	})

	t.Run("UnixMillis", func(t *testing.T) {
		got := coerce(t, r, int64(1700000000123), typ).(time.Time)
		assert.Equal(t, int64(1700000000123), got.UnixMilli())
	})

	t.Run("RoundTripThroughText", func(t *testing.T) {
		src := time.Date(2024, 12, 31, 23, 59, 58, 0, time.UTC)
		text := ToString(src)
		assert.Equal(t, "2024-12-31 23:59:58 UTC", text)
		assert.True(t, src.Equal(coerce(t, r, text, typ).(time.Time)))
	})

	t.Run("Malformed", func(t *testing.T) {
		assert.True(t, coerce(t, r, "not a time", typ).(time.Time).IsZero())
	})
}

// TestCoerceParseErrors tests that grammar failures surface as the parser's own error
func TestCoerceParseErrors(t *testing.T) {
	r := New()

	t.Run("UUID", func(t *testing.T) {
		_, want := uuid.Parse("not-a-uuid")
		_, err := r.Coerce("not-a-uuid", reflect.TypeFor[uuid.UUID]())
		assert.Equal(t, want, err)
	})

	t.Run("UUIDValid", func(t *testing.T) {
		id := uuid.New()
		assert.Equal(t, id, coerce(t, r, id.String(), reflect.TypeFor[uuid.UUID]()))
		assert.Equal(t, id, coerce(t, r, id[:], reflect.TypeFor[uuid.UUID]()))
	})

	t.Run("Duration", func(t *testing.T) {
		_, err := r.Coerce("abc", reflect.TypeFor[time.Duration]())
		assert.Error(t, err)
	})

	t.Run("Date", func(t *testing.T) {
		_, err := r.Coerce("2024-02-30", reflect.TypeFor[Date]())
		assert.Error(t, err)
	})

	t.Run("ParseMethod", func(t *testing.T) {
		_, err := r.Coerce("warmC", reflect.TypeFor[Celsius]())
		assert.ErrorIs(t, err, strconv.ErrSyntax)
	})

	t.Run("TypeName", func(t *testing.T) {
		_, err := r.Coerce("Nowhere", typeOfType)
		assert.ErrorIs(t, err, ErrUnknownType)
	})
}

// TestCoerceComposite tests dictionaries into structs and nested collections
func TestCoerceComposite(t *testing.T) {
	r := New()

	type Owner struct {
		Name string
		Pet  *Dog
		Tags []string
		Meta map[string]int
		Seen time.Time
	}

	src := map[string]any{
		"Name": "Ann",
		"Pet":  map[string]any{"Name": "Rex", "Breed": "lab", "Legs": "4", "ID": 7},
		"Tags": []any{"a", "b"},
		"Meta": map[string]any{"x": "1"},
		"Seen": "2024-03-05 06:07:08 UTC",
	}
	out := coerce(t, r, src, reflect.TypeFor[Owner]())
	owner, ok := out.(Owner)
	require.True(t, ok)

	assert.Equal(t, "Ann", owner.Name)
	require.NotNil(t, owner.Pet)
	assert.Equal(t, "Rex", owner.Pet.Name)
	assert.Equal(t, 4, owner.Pet.Legs)
	assert.Equal(t, 7, owner.Pet.ID)
	assert.Equal(t, []string{"a", "b"}, owner.Tags)
	assert.Equal(t, map[string]int{"x": 1}, owner.Meta)
	assert.Equal(t, 2024, owner.Seen.Year())

	t.Run("RecordToRecord", func(t *testing.T) {
		out := coerce(t, r, Dog{Animal: Animal{Legs: 3}, Name: "Tri"}, reflect.TypeFor[Animal]())
		assert.Equal(t, Animal{Legs: 3, Name: "Tri"}, out)
	})

	t.Run("SliceOfRecords", func(t *testing.T) {
		out := coerce(t, r, []any{map[string]any{"Name": "a"}, map[string]any{"Name": "b"}}, reflect.TypeFor[[]Animal]())
		assert.Equal(t, []Animal{{Name: "a"}, {Name: "b"}}, out)
	})

	t.Run("BytesToNamedString", func(t *testing.T) {
		assert.Equal(t, Token("x"), coerce(t, r, []byte("x"), reflect.TypeFor[Token]()))
	})
}

// TestCoerceLenient tests that unmatched values come back unchanged
func TestCoerceLenient(t *testing.T) {
	r := New()

	assert.Equal(t, 42, coerce(t, r, 42, reflect.TypeFor[Animal]()))
	assert.Equal(t, "bogus", coerce(t, r, "bogus", reflect.TypeFor[Grade]()))

	t.Run("AssignableToInterface", func(t *testing.T) {
		var s fmt.Stringer = Green
		out := coerce(t, r, Green, reflect.TypeFor[fmt.Stringer]())
		assert.Equal(t, s, out)
	})

	t.Run("TypedHelper", func(t *testing.T) {
		n, err := To[int](r, "42")
		require.NoError(t, err)
		assert.Equal(t, 42, n)

		_, err = To[Animal](r, 42)
		var mismatch *MismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, reflect.TypeFor[Animal](), mismatch.Want)

		p, err := To[*int](r, nil)
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("PackageLevel", func(t *testing.T) {
		out, err := Coerce("7", reflect.TypeFor[uint]())
		require.NoError(t, err)
		assert.Equal(t, uint(7), out)
	})
}

// TestCoerceTypeName tests resolving reflect.Type targets through loaded modules
func TestCoerceTypeName(t *testing.T) {
	r := New()
	r.Load(NewModule("zoo", Animal{}, Dog{}))

	assert.Equal(t, reflect.TypeFor[Dog](), coerce(t, r, "dog", typeOfType))
	assert.Equal(t, reflect.TypeFor[int](), coerce(t, r, "int", typeOfType))
	assert.Equal(t, reflect.TypeFor[Animal](), coerce(t, r, "reflector.Animal", typeOfType))
}
