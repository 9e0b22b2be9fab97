// FILE: lixenwraith/reflector/jsonx/options.go
package jsonx

// Options controls how the Writer names members and renders values.
type Options struct {
	// LowerCase lower-cases every member name; it wins over CamelCase
	LowerCase bool `toml:"lower_case"`
	// CamelCase lower-cases the first letter of every member name
	CamelCase bool `toml:"camel_case"`
	// IgnoreNullValues skips nil members and empty strings
	IgnoreNullValues bool `toml:"ignore_null_values"`
	// IgnoreReadOnlyProperties skips members tagged readonly
	IgnoreReadOnlyProperties bool `toml:"ignore_read_only_properties"`
	// EnumString writes registered enums by name instead of by code
	EnumString bool `toml:"enum_string"`
	// UseUTCDateTime converts times to UTC before writing them
	UseUTCDateTime bool `toml:"use_utc_date_time"`
	// FullTime writes times with fraction and zone offset
	FullTime bool `toml:"full_time"`
}

// DefaultOptions returns the options used by ToJSON.
func DefaultOptions() Options {
	return Options{EnumString: true}
}
