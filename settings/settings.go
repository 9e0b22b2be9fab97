// FILE: lixenwraith/reflector/settings/settings.go
package settings

import (
	"io"
	"reflect"

	"github.com/lixenwraith/reflector"
	"github.com/lixenwraith/reflector/flowid"
	"github.com/lixenwraith/reflector/jsonx"
	"github.com/lixenwraith/reflector/xlog"
)

// Settings is the full settings tree of the reflector tools.
type Settings struct {
	Reflector ReflectorSettings `toml:"reflector"`
	Log       xlog.Config       `toml:"log"`
	JSON      jsonx.Options     `toml:"json"`
	FlowID    flowid.Config     `toml:"flowid"`
}

// ReflectorSettings configures the Reflector built from Settings.
type ReflectorSettings struct {
	// TagName is the struct tag read for member aliases and options
	TagName string `toml:"tag_name"`
	// BaseFirst lists inherited members before declared ones in dumps
	BaseFirst bool `toml:"base_first"`
}

// levels are the xlog levels, registered as an enum on every settings Reflector.
var levels = []any{
	xlog.LevelAll, xlog.LevelDebug, xlog.LevelInfo, xlog.LevelWarn,
	xlog.LevelError, xlog.LevelFatal, xlog.LevelOff,
}

// Defaults returns the settings used when no source overrides them.
func Defaults() Settings {
	return Settings{
		Reflector: ReflectorSettings{TagName: reflector.DefaultTagName, BaseFirst: true},
		Log:       xlog.DefaultConfig(),
		JSON:      jsonx.DefaultOptions(),
		FlowID:    flowid.DefaultConfig(),
	}
}

// newReflector builds the Reflector a Store decodes with.
func newReflector() *reflector.Reflector {
	return reflector.NewBuilder().
		WithTagName(TagName).
		WithEnum(reflect.TypeFor[xlog.Level](), levels...).
		MustBuild()
}

// Settings decodes the whole store into a Settings value.
func (s *Store) Settings() (Settings, error) {
	out := Defaults()
	if err := s.Scan("", &out); err != nil {
		return Settings{}, err
	}
	return out, nil
}

// NewLogger builds the logger described by the log section, writing to out.
func (st Settings) NewLogger(out io.Writer) *xlog.SlogLogger {
	cfg := st.Log
	cfg.Output = out
	return xlog.New(cfg)
}

// NewReflector builds a Reflector with the configured tag name, logging through logger,
// with the xlog levels registered as an enum and modules loaded.
func (st Settings) NewReflector(logger xlog.Logger, modules ...*reflector.Module) (*reflector.Reflector, error) {
	b := reflector.NewBuilder().
		WithTagName(st.Reflector.TagName).
		WithEnum(reflect.TypeFor[xlog.Level](), levels...).
		WithModules(modules...)
	if logger != nil {
		b = b.WithLogger(logger)
	}
	return b.Build()
}

// NewWriter builds a JSON writer over r with the json section's options.
func (st Settings) NewWriter(r *reflector.Reflector) *jsonx.Writer {
	return jsonx.NewWriter(r, st.JSON)
}

// NewGenerator builds a flow id generator from the flowid section.
func (st Settings) NewGenerator() *flowid.Generator {
	return flowid.New(flowid.WithConfig(st.FlowID))
}
