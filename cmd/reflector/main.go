// FILE: lixenwraith/reflector/cmd/reflector/main.go

// Command reflector exposes the coercion engine, the jsonx serializer, the flow id
// generator and static plugin discovery from the shell.
//
// Usage:
//
//	reflector <command> [flags] [--section.key=value ...] [--settings file]
//
// Dotted long options override settings for the run, with the usual precedence
// CLI > REFLECTOR_* environment > settings file > defaults.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lixenwraith/reflector"
	"github.com/lixenwraith/reflector/settings"
	"github.com/lixenwraith/reflector/xlog"
)

const (
	appName   = "reflector"
	envPrefix = "REFLECTOR_"
)

// env is what every command runs with
type env struct {
	store    *settings.Store
	settings settings.Settings
	logger   *xlog.SlogLogger
	r        *reflector.Reflector
	stdin    io.Reader
	stdout   io.Writer
}

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, e *env, args []string) error
}

var commands = []command{
	{"convert", "convert -to <type> value...   coerce values to a named type", runConvert},
	{"json", "json [-keys] [-get path] [file]   parse and re-render json", runJSON},
	{"id", "id [-n count] [-decompose id]   generate or split flow ids", runID},
	{"plugins", "plugins -iface path.Name [-dir d] patterns...   find implementers in source", runPlugins},
	{"settings", "settings [-debug] [-save file] [-watch]   show the effective settings", runSettings},
	{"head", "head [-fields f]   print the log file banner", runHead},
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		usage(stdout)
		return nil
	}
	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		usage(stdout)
		return fmt.Errorf("unknown command %q", args[0])
	}

	cmdArgs, settingArgs := splitArgs(args[1:])
	e, err := newEnv(settingArgs, stdin, stdout)
	if err != nil {
		return err
	}
	e.logger.Debug("running %s with %v", cmd.name, cmdArgs)
	return cmd.run(ctx, e, cmdArgs)
}

func newEnv(settingArgs []string, stdin io.Reader, stdout io.Writer) (*env, error) {
	store, err := settings.NewBuilder().
		WithDefaults(settings.Defaults()).
		WithEnvPrefix(envPrefix).
		WithArgs(settingArgs).
		WithFileDiscovery(settings.DefaultDiscoveryOptions(appName)).
		Build()
	if err != nil && !errors.Is(err, settings.ErrNotFound) {
		return nil, err
	}
	st, err := store.Settings()
	if err != nil {
		return nil, err
	}

	logger := st.NewLogger(os.Stderr).WithComponent(appName)
	r, err := st.NewReflector(logger)
	if err != nil {
		return nil, err
	}
	return &env{store: store, settings: st, logger: logger, r: r, stdin: stdin, stdout: stdout}, nil
}

// splitArgs separates dotted settings overrides and the settings file flag from the
// command's own arguments.
func splitArgs(args []string) (cmdArgs, settingArgs []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		key, hasValue := strings.CutPrefix(arg, "--")
		if !hasValue {
			cmdArgs = append(cmdArgs, arg)
			continue
		}
		key, _, inline := strings.Cut(key, "=")
		if key != "settings" && !strings.Contains(key, ".") {
			cmdArgs = append(cmdArgs, arg)
			continue
		}
		settingArgs = append(settingArgs, arg)
		if !inline && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
			settingArgs = append(settingArgs, args[i])
		}
	}
	return cmdArgs, settingArgs
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "usage: %s <command> [flags] [--section.key=value ...] [--settings file]\n\ncommands:\n", appName)
	for _, c := range commands {
		fmt.Fprintf(w, "  %s\n", c.usage)
	}
}
