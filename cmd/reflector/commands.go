// FILE: lixenwraith/reflector/cmd/reflector/commands.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"reflect"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lixenwraith/reflector"
	"github.com/lixenwraith/reflector/internal/scan"
	"github.com/lixenwraith/reflector/jsonx"
	"github.com/lixenwraith/reflector/settings"
	"github.com/lixenwraith/reflector/xlog"
)

// targets are the type names accepted by convert
var targets = map[string]reflect.Type{
	"bool":      reflect.TypeFor[bool](),
	"int":       reflect.TypeFor[int](),
	"int64":     reflect.TypeFor[int64](),
	"uint":      reflect.TypeFor[uint](),
	"float64":   reflect.TypeFor[float64](),
	"string":    reflect.TypeFor[string](),
	"duration":  reflect.TypeFor[time.Duration](),
	"time":      reflect.TypeFor[time.Time](),
	"date":      reflect.TypeFor[reflector.Date](),
	"timeofday": reflect.TypeFor[reflector.TimeOfDay](),
	"uuid":      reflect.TypeFor[uuid.UUID](),
	"decimal":   reflect.TypeFor[decimal.Decimal](),
	"level":     reflect.TypeFor[xlog.Level](),
	"ints":      reflect.TypeFor[[]int](),
	"strings":   reflect.TypeFor[[]string](),
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func runConvert(_ context.Context, e *env, args []string) error {
	fs := newFlagSet("convert", e.stdout)
	to := fs.String("to", "string", "target type")
	asJSON := fs.Bool("json", false, "render results with jsonx")
	describe := fs.Bool("describe", false, "dump the cached metadata of the target type")
	if err := fs.Parse(args); err != nil {
		return err
	}
	t, ok := targets[*to]
	if !ok {
		return fmt.Errorf("unknown type %q, want one of %v", *to, slices.Sorted(maps.Keys(targets)))
	}
	if *describe {
		fmt.Fprintln(e.stdout, e.r.DumpType(t))
	}

	w := e.settings.NewWriter(e.r)
	for _, arg := range fs.Args() {
		v, err := e.r.Coerce(arg, t)
		if err != nil {
			return fmt.Errorf("convert %q: %w", arg, err)
		}
		if !*asJSON {
			fmt.Fprintln(e.stdout, reflector.ToString(v))
			continue
		}
		w.Reset()
		if err := w.Write(v); err != nil {
			return err
		}
		fmt.Fprintln(e.stdout, w.String())
	}
	return nil
}

func runJSON(_ context.Context, e *env, args []string) error {
	fs := newFlagSet("json", e.stdout)
	keys := fs.Bool("keys", false, "list top-level keys in document order")
	get := fs.String("get", "", "print the value at a gjson path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := e.stdin
	if name := fs.Arg(0); name != "" && name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}

	p := jsonx.NewParser(string(data))
	switch {
	case *keys:
		for _, k := range p.Keys() {
			fmt.Fprintln(e.stdout, k)
		}
		return nil
	case *get != "":
		v, ok := p.Get(*get)
		if !ok {
			return fmt.Errorf("path %q not found", *get)
		}
		return writeJSON(e, v)
	}

	v, err := p.Decode()
	if err != nil {
		return err
	}
	return writeJSON(e, v)
}

func writeJSON(e *env, v any) error {
	w := e.settings.NewWriter(e.r)
	if err := w.Write(v); err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, w.String())
	return nil
}

func runID(_ context.Context, e *env, args []string) error {
	fs := newFlagSet("id", e.stdout)
	n := fs.Int("n", 1, "number of ids")
	split := fs.String("decompose", "", "print the parts of an id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	g := e.settings.NewGenerator()
	if *split != "" {
		id, err := strconv.ParseInt(*split, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", *split, err)
		}
		parts := g.Decompose(id)
		fmt.Fprintf(e.stdout, "time=%s worker=%d sequence=%d\n",
			xlog.FormatTime(parts.Time), parts.WorkerID, parts.Sequence)
		return nil
	}
	for range *n {
		fmt.Fprintln(e.stdout, g.NewID())
	}
	e.logger.Debug("generated %d ids as worker %d", *n, g.WorkerID())
	return nil
}

func runPlugins(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("plugins", e.stdout)
	iface := fs.String("iface", "", "interface as import/path.Name")
	dir := fs.String("dir", ".", "directory the patterns are relative to")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *iface == "" {
		return fmt.Errorf("plugins: -iface is required")
	}
	patterns := fs.Args()
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	s := &scan.Scanner{Dir: *dir, Logger: e.logger}
	found, err := s.Implementers(ctx, *iface, patterns...)
	if err != nil {
		return err
	}
	for _, c := range found {
		fmt.Fprintln(e.stdout, c)
	}
	return nil
}

func runSettings(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("settings", e.stdout)
	debug := fs.Bool("debug", false, "show per-source values")
	save := fs.String("save", "", "write the effective settings to a file")
	watch := fs.Bool("watch", false, "report changes to the settings file until interrupted")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if path := e.store.FilePath(); path != "" {
		fmt.Fprintf(e.stdout, "# file: %s\n", path)
	}
	if *debug {
		fmt.Fprint(e.stdout, e.store.Debug())
	} else if err := e.store.Dump(e.stdout); err != nil {
		return err
	}
	if *save != "" {
		if err := e.store.Save(*save); err != nil {
			return err
		}
		e.logger.Info("settings saved to %s", *save)
	}
	if !*watch {
		return nil
	}

	changes := e.store.Watch(settings.DefaultWatchOptions())
	defer e.store.StopWatch()
	for {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-changes:
			if !ok {
				return fmt.Errorf("no settings file to watch")
			}
			if v, ok := e.store.Get(path); ok {
				fmt.Fprintf(e.stdout, "%s = %s\n", path, reflector.ToString(v))
			} else {
				fmt.Fprintln(e.stdout, path)
			}
		}
	}
}

func runHead(_ context.Context, e *env, args []string) error {
	fs := newFlagSet("head", e.stdout)
	fields := fs.String("fields", xlog.DefaultFields, "column list for the #Fields line")
	if err := fs.Parse(args); err != nil {
		return err
	}
	fmt.Fprint(e.stdout, xlog.Head(*fields, e.settings.Log.UTCOffset))
	return nil
}
