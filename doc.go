// File: lixenwraith/reflector/doc.go

// Package reflector discovers the members of Go types, caches them, and converts loosely
// typed values (text, numbers, enum names, nested maps) into strongly typed members and back.
//
// Features:
//   - Field and property enumeration with embedding treated as inheritance
//   - Base-first or derived-first ordering with derived names shadowing embedded ones
//   - Lock-free memoization of member lists per (type, order)
//   - An ordered coercion chain covering pointers, enums, collections, decimals, uuids,
//     durations, dates and self-parsing types
//   - Shallow and deep object copying, from structs or string-keyed maps
//   - Plugin discovery over explicitly loaded modules, including generic families
//   - Method calls by name with params coerced to the parameter types
//
// Quick Start:
//
//	type Base struct {
//	    ID int64 `json:"id"`
//	}
//
//	type User struct {
//	    Base
//	    Name  string
//	    Level Level `reflector:"level"`
//	}
//
//	r := reflector.New()
//	reflector.RegisterEnum(r, LevelLow, LevelHigh)
//
//	for _, m := range r.Properties(reflect.TypeFor[User](), true) {
//	    fmt.Println(m.Name, m.Type) // ID first, then Name and Level
//	}
//
//	var u User
//	err := r.CopyMap(&u, map[string]any{"id": "42", "Name": "Stone", "level": "high"}, true)
//
//	d, err := reflector.To[time.Duration](r, "1.02:03:04")
//
// Member Tags:
// The reflector tag takes an alias and options, and the json tag supplies the alias when the
// reflector tag has none.
//
//	Secret string `reflector:"-"`          // skipped by Fields and Properties
//	Token  string `json:"-"`               // skipped by Properties
//	hidden int    `reflector:",include"`   // unexported member listed as a property
//	Stamp  int64  `reflector:",readonly"`  // listed, never written by copies
//
// Coercion is lenient: a value no step can convert is returned unchanged. Copy and CopyMap
// are strict and report such values as *MismatchError.
//
// Thread Safety:
// A Reflector is safe for concurrent use. Member caches are populated without locks; two
// goroutines describing the same type at once compute identical lists and the last store wins.
package reflector
