// FILE: lixenwraith/reflector/jsonx/jsonx_test.go
package jsonx

import (
	"reflect"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/reflector"
	"github.com/lixenwraith/reflector/xlog"
)

type stamped struct {
	Time time.Time
}

type account struct {
	UserName string
}

type profile struct {
	Name     string
	UserName string
}

type secret struct {
	Name     string
	Password string `reflector:",readonly"`
}

type note struct {
	Title string
	Body  string
}

type entity struct {
	ID int
}

type member struct {
	entity
	Login string `json:"user_name"`
	Bio   string `json:"bio,omitempty"`
}

type address struct {
	City string
	Zip  int
}

type line struct {
	SKU string
	Qty int
}

type order struct {
	ID     uuid.UUID
	Placed time.Time
	Total  decimal.Decimal
	Wait   time.Duration
	Ship   *address
	Lines  []line
	Tags   map[string]int
}

type leveled struct {
	Level xlog.Level
}

func write(t *testing.T, r *reflector.Reflector, opts Options, v any) string {
	t.Helper()
	w := NewWriter(r, opts)
	require.NoError(t, w.Write(v))
	return w.String()
}

// TestWriterScenarios covers the documented serializer behavior
func TestWriterScenarios(t *testing.T) {
	t.Run("UTCTimeRoundTrip", func(t *testing.T) {
		src := time.Date(2024, 5, 6, 7, 8, 9, 123456789, time.UTC)
		text, err := ToJSON(stamped{Time: src})
		require.NoError(t, err)
		assert.Equal(t, `{"Time":"2024-05-06 07:08:09 UTC"}`, text)

		raw, ok := NewParser(text).Get("Time")
		require.True(t, ok)
		got, err := reflector.To[time.Time](reflector.Default(), raw)
		require.NoError(t, err)
		assert.Equal(t, time.UTC, got.Location())
		assert.True(t, src.Truncate(time.Second).Equal(got))

		var back stamped
		require.NoError(t, ToObject(text, &back))
		assert.True(t, src.Truncate(time.Second).Equal(back.Time))
	})

	t.Run("LowerCase", func(t *testing.T) {
		assert.Equal(t, `{"username":"Stone"}`, write(t, nil, Options{LowerCase: true}, account{UserName: "Stone"}))
		assert.Equal(t, `{"UserName":"Stone"}`, write(t, nil, Options{}, account{UserName: "Stone"}))
	})

	t.Run("IgnoreReadOnly", func(t *testing.T) {
		v := secret{Name: "stone", Password: "hunter2"}
		assert.Equal(t, `{"Name":"stone"}`, write(t, nil, Options{IgnoreReadOnlyProperties: true}, v))
		assert.Equal(t, `{"Name":"stone","Password":"hunter2"}`, write(t, nil, Options{}, v))
	})

	t.Run("FlatArray", func(t *testing.T) {
		text, err := ToJSON([]int{12, 34, 56, 78})
		require.NoError(t, err)
		assert.Equal(t, "[12,34,56,78]", text)

		text, err = ToJSON([2]string{"a", "b"})
		require.NoError(t, err)
		assert.Equal(t, `["a","b"]`, text)
	})

	t.Run("EscapingRoundTrip", func(t *testing.T) {
		src := note{Title: "Hello\u0001World", Body: "智能Stone"}
		text, err := ToJSON(src)
		require.NoError(t, err)
		assert.Equal(t, `{"Title":"Hello\u0001World","Body":"智能Stone"}`, text)

		var back note
		require.NoError(t, ToObject(text, &back))
		assert.Equal(t, src, back)
	})

	t.Run("InvalidUTF8", func(t *testing.T) {
		tests := []struct {
			name string
			in   string
			want string
		}{
			{"LoneByte", "a\xffb", `"a\ufffdb"`},
			{"TruncatedRune", "x\xe6\x99", `"x\ufffd\ufffd"`},
			{"ValidMultiByte", "智\xfe", `"智\ufffd"`},
			{"ControlAfterInvalid", "\xc0\n", `"\ufffd\n"`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				text, err := ToJSON(tt.in)
				require.NoError(t, err)
				assert.Equal(t, tt.want, text)

				var back string
				require.NoError(t, ToObject(text, &back))
				assert.True(t, utf8.ValidString(back))
			})
		}
	})
}

// TestWriterOptions tests the remaining naming and rendering options
func TestWriterOptions(t *testing.T) {
	t.Run("CamelCase", func(t *testing.T) {
		assert.Equal(t, `{"userName":"Stone"}`, write(t, nil, Options{CamelCase: true}, account{UserName: "Stone"}))
		assert.Equal(t, `{"username":"Stone"}`, write(t, nil, Options{CamelCase: true, LowerCase: true}, account{UserName: "Stone"}))
	})

	t.Run("IgnoreNullValues", func(t *testing.T) {
		v := profile{UserName: "Stone"}
		assert.Equal(t, `{"UserName":"Stone"}`, write(t, nil, Options{IgnoreNullValues: true}, v))
		assert.Equal(t, `{"Name":"","UserName":"Stone"}`, write(t, nil, Options{}, v))
	})

	t.Run("EnumStringOrCode", func(t *testing.T) {
		r := reflector.NewBuilder().
			WithEnum(reflect.TypeFor[xlog.Level](),
				xlog.LevelAll, xlog.LevelDebug, xlog.LevelInfo, xlog.LevelWarn,
				xlog.LevelError, xlog.LevelFatal, xlog.LevelOff).
			MustBuild()
		v := leveled{Level: xlog.LevelFatal}
		assert.Equal(t, `{"Level":"FATAL"}`, write(t, r, Options{EnumString: true}, v))
		assert.Equal(t, `{"Level":5}`, write(t, r, Options{}, v))

		var back leveled
		require.NoError(t, NewReader(r).Read(`{"Level":"fatal"}`, &back))
		assert.Equal(t, xlog.LevelFatal, back.Level)
		require.NoError(t, NewReader(r).Read(`{"Level":2}`, &back))
		assert.Equal(t, xlog.LevelInfo, back.Level)
	})

	t.Run("FullTime", func(t *testing.T) {
		ts := time.Date(2024, 5, 6, 7, 8, 9, 123456700, time.FixedZone("", 8*3600))
		assert.Equal(t, `{"Time":"2024-05-06T07:08:09.1234567+08:00"}`, write(t, nil, Options{FullTime: true}, stamped{Time: ts}))
		assert.Equal(t, `{"Time":"2024-05-05 23:08:09 UTC"}`, write(t, nil, Options{UseUTCDateTime: true}, stamped{Time: ts}))
		assert.Equal(t, `{"Time":"2024-05-06 07:08:09"}`, write(t, nil, Options{}, stamped{Time: ts}))
	})

	t.Run("EmbeddedAliasOmitEmpty", func(t *testing.T) {
		v := member{entity: entity{ID: 7}, Login: "stone"}
		assert.Equal(t, `{"ID":7,"user_name":"stone"}`, write(t, nil, DefaultOptions(), v))
		v.Bio = "hi"
		assert.Equal(t, `{"ID":7,"user_name":"stone","bio":"hi"}`, write(t, nil, DefaultOptions(), v))
	})

	t.Run("Scalars", func(t *testing.T) {
		tests := []struct {
			name string
			in   any
			want string
		}{
			{"nil", nil, "null"},
			{"nil pointer", (*account)(nil), "null"},
			{"nil slice", []int(nil), "null"},
			{"bool", true, "true"},
			{"negative", -3, "-3"},
			{"uint", uint8(200), "200"},
			{"float", 2.5, "2.5"},
			{"nan", nanValue(), "null"},
			{"decimal", decimal.RequireFromString("12.50"), "12.5"},
			{"duration", 90 * time.Second, `"00:01:30"`},
			{"date", reflector.Date{Year: 2024, Month: time.March, Day: 5}, `"2024-03-05"`},
			{"uuid", uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), `"6ba7b810-9dad-11d1-80b4-00c04fd430c8"`},
			{"type", reflect.TypeFor[account](), `"jsonx.account"`},
			{"escapes", "a\"b\\c\nd\te", `"a\"b\\c\nd\te"`},
			{"sorted map", map[string]any{"b": 1, "a": "x"}, `{"a":"x","b":1}`},
			{"pointer", &account{UserName: "p"}, `{"UserName":"p"}`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				text, err := ToJSON(tt.in)
				require.NoError(t, err)
				assert.Equal(t, tt.want, text)
			})
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		_, err := ToJSON(make(chan int))
		assert.ErrorContains(t, err, "unsupported type")
		_, err = ToJSON(struct{ F func() }{F: func() {}})
		assert.ErrorContains(t, err, "member F")
	})

	t.Run("Reset", func(t *testing.T) {
		w := NewWriter(nil, DefaultOptions())
		require.NoError(t, w.Write(1))
		w.Reset()
		require.NoError(t, w.Write(2))
		assert.Equal(t, "2", string(w.Bytes()))
		assert.True(t, w.Options().EnumString)
	})
}

// TestParser tests decoding, key order and path lookups
func TestParser(t *testing.T) {
	text := `{"z":1,"a":2.5,"m":[true,null,"s"],"n":{"k":"v"},"big":1e3}`
	p := NewParser(text)

	v, err := p.Decode()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"z":   int64(1),
		"a":   2.5,
		"m":   []any{true, nil, "s"},
		"n":   map[string]any{"k": "v"},
		"big": float64(1000),
	}, v)

	assert.Equal(t, []string{"z", "a", "m", "n", "big"}, p.Keys())
	assert.Nil(t, NewParser("[1,2]").Keys())

	got, ok := p.Get("n.k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)
	got, ok = p.Get("m.2")
	assert.True(t, ok)
	assert.Equal(t, "s", got)
	_, ok = p.Get("missing")
	assert.False(t, ok)

	_, err = NewParser(`{"a":`).Decode()
	assert.ErrorIs(t, err, ErrSyntax)
}

// TestReader tests reading text back into typed values
func TestReader(t *testing.T) {
	t.Run("NestedRoundTrip", func(t *testing.T) {
		src := order{
			ID:     uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
			Placed: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
			Total:  decimal.RequireFromString("12.5"),
			Wait:   90 * time.Second,
			Ship:   &address{City: "Oslo", Zip: 150},
			Lines:  []line{{SKU: "a-1", Qty: 2}, {SKU: "b-2", Qty: 1}},
			Tags:   map[string]int{"rush": 1},
		}
		text, err := ToJSON(src)
		require.NoError(t, err)

		var back order
		require.NoError(t, ToObject(text, &back))
		assert.Equal(t, src.ID, back.ID)
		assert.True(t, src.Placed.Equal(back.Placed))
		assert.True(t, src.Total.Equal(back.Total), "total %s", back.Total)
		assert.Equal(t, src.Wait, back.Wait)
		require.NotNil(t, back.Ship)
		assert.NotSame(t, src.Ship, back.Ship)
		assert.Equal(t, *src.Ship, *back.Ship)
		assert.Equal(t, src.Lines, back.Lines)
		assert.Equal(t, src.Tags, back.Tags)
	})

	t.Run("KeysIgnoreCase", func(t *testing.T) {
		text := write(t, nil, Options{CamelCase: true}, account{UserName: "Stone"})
		var back account
		require.NoError(t, ToObject(text, &back))
		assert.Equal(t, "Stone", back.UserName)
	})

	t.Run("Scalars", func(t *testing.T) {
		var n int
		require.NoError(t, ToObject("42", &n))
		assert.Equal(t, 42, n)

		var xs []int
		require.NoError(t, ToObject("[1,2,3]", &xs))
		assert.Equal(t, []int{1, 2, 3}, xs)

		s := "kept"
		require.NoError(t, ToObject("null", &s))
		assert.Empty(t, s)
	})

	t.Run("Errors", func(t *testing.T) {
		var a account
		assert.ErrorIs(t, ToObject(`{}`, a), reflector.ErrNotPointer)
		assert.ErrorIs(t, ToObject(`{"UserName":`, &a), ErrSyntax)

		var ch chan int
		var mismatch *reflector.MismatchError
		assert.ErrorAs(t, ToObject(`"x"`, &ch), &mismatch)
	})
}

func nanValue() float64 {
	zero := 0.0
	return zero / zero
}
