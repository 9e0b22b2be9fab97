// FILE: lixenwraith/reflector/xlog/head.go
package xlog

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// DefaultFields is the column list written in the #Fields header line.
const DefaultFields = "Time|ThreadId|Kind|Name|Message"

// Head returns the environment banner written at the top of a log file.
// Each line starts with '#' and ends with CRLF. An empty fields value uses DefaultFields.
func Head(fields string, offset time.Duration) string {
	var sb strings.Builder

	name := filepath.Base(os.Args[0])
	version := "(devel)"
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Path != "" {
			name = info.Main.Path
		}
		if info.Main.Version != "" {
			version = info.Main.Version
		}
	}
	line(&sb, "Software", "%s %s", name, version)

	arch := ""
	if strings.HasSuffix(runtime.GOARCH, "64") {
		arch = " x64"
	}
	line(&sb, "ProcessID", "%d%s", os.Getpid(), arch)

	if exe, err := os.Executable(); err == nil {
		line(&sb, "FileName", "%s", exe)
		line(&sb, "BaseDirectory", "%s", filepath.Dir(exe))
	}
	if cwd, err := os.Getwd(); err == nil {
		line(&sb, "CurrentDirectory", "%s", cwd)
	}
	line(&sb, "TempPath", "%s", os.TempDir())
	if len(os.Args) > 1 {
		line(&sb, "CommandLine", "%s", strings.Join(os.Args, " "))
	}

	appType := "Console"
	if fi, err := os.Stdin.Stat(); err == nil && fi.Mode()&os.ModeCharDevice == 0 {
		appType = "Service"
	}
	line(&sb, "ApplicationType", "%s", appType)
	line(&sb, "Runtime", "%s", runtime.Version())

	host, _ := os.Hostname()
	user := os.Getenv("USER")
	if user == "" {
		user = os.Getenv("USERNAME")
	}
	line(&sb, "OS", "%s/%s, %s/%s", runtime.GOOS, runtime.GOARCH, host, user)
	line(&sb, "CPU", "%d", runtime.NumCPU())
	line(&sb, "GC", "GOGC=%s, GOMAXPROCS=%d", gcPercent(), runtime.GOMAXPROCS(0))
	line(&sb, "Date", "%s", time.Now().Add(offset).Format("2006-01-02"))

	if fields == "" {
		fields = DefaultFields
	}
	line(&sb, "Fields", "%s", strings.ReplaceAll(fields, "|", " "))

	return sb.String()
}

func line(sb *strings.Builder, key, format string, args ...any) {
	sb.WriteString("#")
	sb.WriteString(key)
	sb.WriteString(": ")
	fmt.Fprintf(sb, format, args...)
	sb.WriteString("\r\n")
}

func gcPercent() string {
	if v := os.Getenv("GOGC"); v != "" {
		return v
	}
	return "100"
}
