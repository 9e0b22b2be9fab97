// FILE: lixenwraith/reflector/settings/discovery.go
package settings

import (
	"os"
	"path/filepath"
	"strings"
)

// FileDiscoveryOptions configures automatic settings file discovery
type FileDiscoveryOptions struct {
	// Name is the file name without extension
	Name string
	// Extensions to try, in order
	Extensions []string
	// Paths are searched before the defaults
	Paths []string
	// EnvVar names an environment variable holding an explicit path
	EnvVar string
	// CLIFlag is checked in the builder's args, as "--settings path" or "--settings=path"
	CLIFlag string
	// UseXDG searches the XDG config directories
	UseXDG bool
	// UseCurrentDir searches the working directory
	UseCurrentDir bool
}

// DefaultDiscoveryOptions returns the usual search setup for appName.
func DefaultDiscoveryOptions(appName string) FileDiscoveryOptions {
	return FileDiscoveryOptions{
		Name:          appName,
		Extensions:    []string{".toml", ".json", ".yaml", ".yml"},
		EnvVar:        strings.ToUpper(appName) + "_SETTINGS",
		CLIFlag:       "--settings",
		UseXDG:        true,
		UseCurrentDir: true,
	}
}

// WithFileDiscovery picks the settings file: an explicit CLI flag wins, then the
// environment variable, then the first existing file on the search path. Finding
// nothing is not an error.
func (b *Builder) WithFileDiscovery(opts FileDiscoveryOptions) *Builder {
	if path, ok := flagValue(b.args, opts.CLIFlag); ok {
		b.file = path
		return b
	}
	if opts.EnvVar != "" {
		if path := os.Getenv(opts.EnvVar); path != "" {
			b.file = path
			return b
		}
	}

	searchPaths := append([]string(nil), opts.Paths...)
	if opts.UseCurrentDir {
		if cwd, err := os.Getwd(); err == nil {
			searchPaths = append(searchPaths, cwd)
		}
	}
	if opts.UseXDG {
		searchPaths = append(searchPaths, xdgConfigPaths(opts.Name)...)
	}

	for _, dir := range searchPaths {
		for _, ext := range opts.Extensions {
			path := filepath.Join(dir, opts.Name+ext)
			if _, err := os.Stat(path); err == nil {
				b.file = path
				return b
			}
		}
	}
	return b
}

func flagValue(args []string, flag string) (string, bool) {
	if flag == "" {
		return "", false
	}
	for i, arg := range args {
		if arg == flag && i+1 < len(args) {
			return args[i+1], true
		}
		if v, ok := strings.CutPrefix(arg, flag+"="); ok {
			return v, true
		}
	}
	return "", false
}

// xdgConfigPaths returns XDG-compliant search directories for appName
func xdgConfigPaths(appName string) []string {
	var paths []string

	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		paths = append(paths, filepath.Join(xdgHome, appName))
	} else if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", appName))
	}

	if xdgDirs := os.Getenv("XDG_CONFIG_DIRS"); xdgDirs != "" {
		for _, dir := range filepath.SplitList(xdgDirs) {
			paths = append(paths, filepath.Join(dir, appName))
		}
	} else {
		paths = append(paths, filepath.Join("/etc/xdg", appName), filepath.Join("/etc", appName))
	}

	return paths
}
