// FILE: lixenwraith/reflector/settings/settings_test.go
package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/reflector/xlog"
)

type serverSettings struct {
	Host    string        `toml:"host"`
	Port    int           `toml:"port"`
	Timeout time.Duration `toml:"timeout"`
	TLS     struct {
		Cert string `toml:"cert"`
	} `toml:"tls"`
	Started time.Time `toml:"started"`
	Skip    string    `toml:"-"`
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestRegistration tests path registration and struct defaults
func TestRegistration(t *testing.T) {
	t.Run("Paths", func(t *testing.T) {
		s := New()
		require.NoError(t, s.Register("server.host", "localhost"))
		require.NoError(t, s.Register("server.port", 8080))
		require.NoError(t, s.Register("debug", false))

		assert.Equal(t, []string{"server.host", "server.port"}, s.Paths("server"))
		assert.Len(t, s.Paths(""), 3)

		require.NoError(t, s.Unregister("server"))
		assert.Equal(t, []string{"debug"}, s.Paths(""))
		assert.ErrorIs(t, s.Unregister("server"), ErrNotRegistered)
	})

	t.Run("InvalidPaths", func(t *testing.T) {
		s := New()
		assert.Error(t, s.Register("", 1))
		assert.Error(t, s.Register("a..b", 1))
		assert.Error(t, s.Register("a.b c", 1))
	})

	t.Run("Struct", func(t *testing.T) {
		s := New()
		defaults := serverSettings{Host: "localhost", Port: 8080, Timeout: time.Second}
		defaults.TLS.Cert = "cert.pem"
		require.NoError(t, s.RegisterStruct("server.", defaults))

		assert.Equal(t, []string{
			"server.host", "server.port", "server.started", "server.timeout", "server.tls.cert",
		}, s.Paths(""))

		port, ok := s.Get("server.port")
		assert.True(t, ok)
		assert.Equal(t, 8080, port)
	})

	t.Run("SettingsTree", func(t *testing.T) {
		s := New()
		require.NoError(t, s.RegisterStruct("", Defaults()))
		paths := s.Paths("")
		assert.Contains(t, paths, "log.level")
		assert.Contains(t, paths, "json.enum_string")
		assert.Contains(t, paths, "flowid.epoch")
		assert.Contains(t, paths, "reflector.tag_name")
		assert.NotContains(t, paths, "log.output")
	})

	t.Run("NotStruct", func(t *testing.T) {
		s := New()
		assert.Error(t, s.RegisterStruct("", 42))
		assert.Error(t, s.RegisterStruct("", (*serverSettings)(nil)))
	})
}

// TestFileLoading tests TOML, JSON and YAML files
func TestFileLoading(t *testing.T) {
	newStore := func() *Store {
		s := New()
		s.Register("server.host", "localhost")
		s.Register("server.port", 8080)
		s.Register("server.tags", []string{})
		return s
	}

	tests := []struct {
		name    string
		file    string
		content string
		port    any
	}{
		{"TOML", "s.toml", "[server]\nhost = \"example.com\"\nport = 9000\ntags = [\"a\", \"b\"]\nextra = 1\n", int64(9000)},
		{"JSON", "s.json", `{"server":{"host":"example.com","port":9000,"tags":["a","b"]},"extra":1}`, int64(9000)},
		{"YAML", "s.yaml", "server:\n  host: example.com\n  port: 9000\n  tags: [a, b]\n", 9000},
		{"DetectedJSON", "s.conf", `{"server":{"host":"example.com","port":9000,"tags":["a","b"]}}`, int64(9000)},
		{"DetectedTOML", "s.conf", "[server]\nhost = \"example.com\"\nport = 9000\ntags = [\"a\", \"b\"]\n", int64(9000)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			s := newStore()
			require.NoError(t, s.LoadFile(path))

			host, _ := s.Get("server.host")
			assert.Equal(t, "example.com", host)
			port, _ := s.Get("server.port")
			assert.Equal(t, tt.port, port)
			tags, _ := s.Get("server.tags")
			assert.Equal(t, []any{"a", "b"}, tags)
			_, ok := s.Get("extra")
			assert.False(t, ok)
			assert.Equal(t, path, s.FilePath())

			n, err := s.Int64("server.port")
			require.NoError(t, err)
			assert.Equal(t, int64(9000), n)
		})
	}

	t.Run("NotFound", func(t *testing.T) {
		err := newStore().LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Invalid", func(t *testing.T) {
		path := writeFile(t, "bad.toml", "invalid = toml content")
		err := newStore().LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid TOML")
	})

	t.Run("TooLarge", func(t *testing.T) {
		path := writeFile(t, "big.toml", strings.Repeat("# padding\n", 100))
		s := newStore()
		err := s.LoadWithOptions(path, nil, LoadOptions{Sources: []Source{SourceFile}, MaxFileSize: 64})
		assert.ErrorContains(t, err, "exceeds maximum size")
	})
}

// TestSources tests environment, command line and precedence
func TestSources(t *testing.T) {
	newStore := func() *Store {
		s := New()
		s.Register("log.format", "text")
		s.Register("log.level", "info")
		s.Register("debug", false)
		return s
	}

	t.Run("Env", func(t *testing.T) {
		t.Setenv("RFX_LOG_FORMAT", "json")
		t.Setenv("RFX_DEBUG", "true")
		s := newStore()
		require.NoError(t, s.LoadEnv("RFX_"))

		format, _ := s.String("log.format")
		assert.Equal(t, "json", format)
		debug, err := s.Bool("debug")
		require.NoError(t, err)
		assert.True(t, debug)
		assert.Equal(t, map[string]string{"debug": "RFX_DEBUG", "log.format": "RFX_LOG_FORMAT"}, s.DiscoverEnv("RFX_"))
	})

	t.Run("EnvWhitelist", func(t *testing.T) {
		t.Setenv("RFX_LOG_FORMAT", "json")
		t.Setenv("RFX_DEBUG", "true")
		s := newStore()
		opts := DefaultLoadOptions()
		opts.EnvPrefix = "RFX_"
		opts.EnvWhitelist = map[string]bool{"debug": true}
		require.NoError(t, s.LoadWithOptions("", nil, opts))
		format, _ := s.Get("log.format")
		assert.Equal(t, "text", format)
	})

	t.Run("CLI", func(t *testing.T) {
		s := newStore()
		require.NoError(t, s.LoadCLI([]string{"run", "--log.format=json", "--log.level", "debug", "--debug", "--unknown", "x"}))

		format, _ := s.Get("log.format")
		assert.Equal(t, "json", format)
		level, _ := s.Get("log.level")
		assert.Equal(t, "debug", level)
		debug, _ := s.Get("debug")
		assert.Equal(t, "true", debug)
	})

	t.Run("CLIErrors", func(t *testing.T) {
		err := newStore().LoadCLI([]string{"--bad key=1"})
		assert.ErrorIs(t, err, ErrCLIParse)
	})

	t.Run("Precedence", func(t *testing.T) {
		path := writeFile(t, "p.toml", "[log]\nformat = \"file\"\nlevel = \"warn\"\n")
		t.Setenv("RFX_LOG_FORMAT", "env")
		s := newStore()
		opts := DefaultLoadOptions()
		opts.EnvPrefix = "RFX_"
		require.NoError(t, s.LoadWithOptions(path, []string{"--log.format=cli"}, opts))

		format, _ := s.Get("log.format")
		assert.Equal(t, "cli", format)
		level, _ := s.Get("log.level")
		assert.Equal(t, "warn", level)
		assert.Equal(t, []Source{SourceCLI, SourceEnv, SourceFile}, s.Sources("log.format"))

		fileFormat, ok := s.GetSource("log.format", SourceFile)
		assert.True(t, ok)
		assert.Equal(t, "file", fileFormat)

		require.NoError(t, s.Set("log.format", "runtime"))
		format, _ = s.Get("log.format")
		assert.Equal(t, "runtime", format)
		assert.ErrorIs(t, s.Set("nope", 1), ErrNotRegistered)

		s.Reset()
		format, _ = s.Get("log.format")
		assert.Equal(t, "text", format)
	})

	t.Run("CustomOrder", func(t *testing.T) {
		path := writeFile(t, "o.toml", "[log]\nformat = \"file\"\n")
		s := newStore()
		opts := LoadOptions{Sources: []Source{SourceFile, SourceCLI, SourceDefault}}
		require.NoError(t, s.LoadWithOptions(path, []string{"--log.format=cli"}, opts))
		format, _ := s.Get("log.format")
		assert.Equal(t, "file", format)
	})

	t.Run("MissingFileIsNotFatal", func(t *testing.T) {
		s := newStore()
		err := s.LoadWithOptions(filepath.Join(t.TempDir(), "none.toml"), []string{"--debug"}, DefaultLoadOptions())
		assert.ErrorIs(t, err, ErrNotFound)
		debug, _ := s.Bool("debug")
		assert.True(t, debug)
	})
}

// TestScan tests decoding through the coercion chain
func TestScan(t *testing.T) {
	t.Run("Section", func(t *testing.T) {
		s := New()
		require.NoError(t, s.RegisterStruct("server", serverSettings{Host: "localhost", Port: 8080}))
		require.NoError(t, s.LoadCLI([]string{
			"--server.port=9090", "--server.timeout=1.00:00:30", "--server.started=2024-03-05 06:07:08 UTC",
		}))

		var got serverSettings
		require.NoError(t, s.Scan("server", &got))
		assert.Equal(t, "localhost", got.Host)
		assert.Equal(t, 9090, got.Port)
		assert.Equal(t, 24*time.Hour+30*time.Second, got.Timeout)
		assert.True(t, got.Started.Equal(time.Date(2024, 3, 5, 6, 7, 8, 0, time.UTC)))
	})

	t.Run("Settings", func(t *testing.T) {
		s, err := NewBuilder().
			WithDefaults(Defaults()).
			WithArgs([]string{"--log.level=debug", "--json.camel_case", "--flowid.worker_id", "7"}).
			Build()
		require.NoError(t, err)

		st, err := s.Settings()
		require.NoError(t, err)
		assert.Equal(t, xlog.LevelDebug, st.Log.Level)
		assert.Equal(t, "text", st.Log.Format)
		assert.True(t, st.JSON.CamelCase)
		assert.True(t, st.JSON.EnumString)
		assert.Equal(t, 7, st.FlowID.WorkerID)
		assert.Equal(t, "reflector", st.Reflector.TagName)
		assert.Equal(t, 7, st.NewGenerator().WorkerID())
	})

	t.Run("Source", func(t *testing.T) {
		s := New()
		s.Register("log.level", xlog.LevelInfo)
		require.NoError(t, s.LoadCLI([]string{"--log.level=error"}))

		var fromCLI, fromDefault xlog.Config
		require.NoError(t, s.ScanSource("log", SourceCLI, &fromCLI))
		require.NoError(t, s.ScanSource("log", SourceDefault, &fromDefault))
		assert.Equal(t, xlog.LevelError, fromCLI.Level)
		assert.Equal(t, xlog.LevelInfo, fromDefault.Level)
	})

	t.Run("Errors", func(t *testing.T) {
		s := New()
		s.Register("name", "x")
		var target struct{}
		assert.Error(t, s.Scan("", target))
		assert.ErrorContains(t, s.Scan("name", &target), "non-map")
	})

	t.Run("TypedValues", func(t *testing.T) {
		s := New()
		s.Register("level", "warn")
		s.Register("wait", "1.02:03:04")
		s.Register("ratio", "0.25")
		s.Register("on", "yes")

		level, err := Value[xlog.Level](s, "level")
		require.NoError(t, err)
		assert.Equal(t, xlog.LevelWarn, level)

		wait, err := s.Duration("wait")
		require.NoError(t, err)
		assert.Equal(t, 26*time.Hour+3*time.Minute+4*time.Second, wait)

		ratio, err := s.Float64("ratio")
		require.NoError(t, err)
		assert.Equal(t, 0.25, ratio)

		on, err := s.Bool("on")
		require.NoError(t, err)
		assert.True(t, on)

		_, err = s.String("missing")
		assert.ErrorIs(t, err, ErrNotRegistered)
	})
}

// TestSaveAndReload tests the atomic TOML writer
func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "settings.toml")

	s, err := NewBuilder().
		WithDefaults(Defaults()).
		WithArgs([]string{"--log.level=debug", "--log.component=cli"}).
		Build()
	require.NoError(t, err)
	require.NoError(t, s.Save(path))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are removed")

	reloaded, err := NewBuilder().WithDefaults(Defaults()).WithArgs(nil).WithFile(path).Build()
	require.NoError(t, err)
	st, err := reloaded.Settings()
	require.NoError(t, err)
	assert.Equal(t, xlog.LevelDebug, st.Log.Level)
	assert.Equal(t, "cli", st.Log.Component)

	cliOnly := filepath.Join(dir, "cli.toml")
	require.NoError(t, s.SaveSource(cliOnly, SourceCLI))
	data, err := os.ReadFile(cliOnly)
	require.NoError(t, err)
	assert.Contains(t, string(data), "component")
	assert.NotContains(t, string(data), "enum_string")
}

// TestBuilder tests discovery, validation and the convenience helpers
func TestBuilder(t *testing.T) {
	t.Run("Discovery", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "app.toml")
		require.NoError(t, os.WriteFile(path, []byte("[log]\nformat = \"json\"\n"), 0644))

		s, err := NewBuilder().
			WithDefaults(Defaults()).
			WithArgs(nil).
			WithFileDiscovery(FileDiscoveryOptions{Name: "app", Extensions: []string{".yaml", ".toml"}, Paths: []string{dir}}).
			Build()
		require.NoError(t, err)
		assert.Equal(t, path, s.FilePath())
		format, _ := s.String("log.format")
		assert.Equal(t, "json", format)
	})

	t.Run("DiscoveryFlagWins", func(t *testing.T) {
		path := writeFile(t, "explicit.toml", "[log]\ncomponent = \"flag\"\n")
		s, err := NewBuilder().
			WithDefaults(Defaults()).
			WithArgs([]string{"--settings=" + path}).
			WithFileDiscovery(DefaultDiscoveryOptions("reflector-test")).
			Build()
		require.NoError(t, err)
		assert.Equal(t, path, s.FilePath())
	})

	t.Run("Validator", func(t *testing.T) {
		_, err := NewBuilder().
			WithDefaults(Defaults()).
			WithArgs([]string{"--log.format=xml"}).
			WithValidator(func(s *Store) error {
				st, err := s.Settings()
				if err != nil {
					return err
				}
				if st.Log.Format != "text" && st.Log.Format != "json" {
					return assert.AnError
				}
				return nil
			}).
			Build()
		require.Error(t, err)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "settings validation failed")
	})

	t.Run("MissingFile", func(t *testing.T) {
		s, err := NewBuilder().
			WithDefaults(Defaults()).
			WithArgs(nil).
			WithFile(filepath.Join(t.TempDir(), "none.toml")).
			Build()
		assert.ErrorIs(t, err, ErrNotFound)
		require.NotNil(t, s)
		assert.NotPanics(t, func() {
			NewBuilder().WithArgs(nil).WithFile(filepath.Join(t.TempDir(), "none.toml")).MustBuild()
		})
	})

	t.Run("BuildAndScan", func(t *testing.T) {
		var got xlog.Config
		err := NewBuilder().
			WithDefaults(xlog.DefaultConfig()).
			WithPrefix("log").
			WithArgs([]string{"--log.level=WARN"}).
			BuildAndScan(&got)
		require.NoError(t, err)
		assert.Equal(t, xlog.LevelWarn, got.Level)
	})

	t.Run("Load", func(t *testing.T) {
		st, err := Load("", "RFX_", []string{"--json.lower_case"})
		require.NoError(t, err)
		assert.True(t, st.JSON.LowerCase)
	})

	t.Run("Helpers", func(t *testing.T) {
		s := New()
		s.Register("name", "")
		s.Register("port", 8080)
		s.Register("debug", false)

		assert.ErrorContains(t, s.Validate("name", "port", "missing"), "name, missing (not registered)")

		fs := s.GenerateFlags()
		require.NoError(t, fs.Parse([]string{"-name=svc", "-port=9000"}))
		require.NoError(t, s.BindFlags(fs))
		assert.NoError(t, s.Validate("name"))

		name, _ := s.String("name")
		assert.Equal(t, "svc", name)
		port, _ := s.Int64("port")
		assert.Equal(t, int64(9000), port)
		assert.Equal(t, map[string]string{"NAME": "svc", "PORT": "9000"}, s.ExportEnv(""))

		debug := s.Debug()
		assert.Contains(t, debug, "name:")
		assert.Contains(t, debug, "cli: svc")

		clone := s.Clone()
		require.NoError(t, clone.Set("name", "other"))
		name, _ = s.String("name")
		assert.Equal(t, "svc", name)

		var buf strings.Builder
		require.NoError(t, s.Dump(&buf))
		assert.Contains(t, buf.String(), `name = "svc"`)
	})
}
