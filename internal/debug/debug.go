// Package debug implements a leveled logger for ambient infrastructure:
// disabled by default, enabled via a build flag or the DEBTMAP_DEBUG
// environment variable, and routed through a single process-global
// writer so CLI and library callers share one sink. Log calls are tagged
// by pipeline stage rather than left untagged.
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// EnableDebug is flipped via a build-time ldflags switch:
//
//	go build -ldflags "-X .../internal/debug.EnableDebug=true"
var EnableDebug = "false"

var (
	mu     sync.Mutex
	output io.Writer
)

// SetOutput sets the writer debug output is sent to. Pass nil to disable
// output entirely (the default).
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return output
}

// IsEnabled reports whether debug output is currently active, checking
// the build flag first and the DEBTMAP_DEBUG environment variable second
// so a release binary can still be switched on at runtime for
// troubleshooting.
func IsEnabled() bool {
	if EnableDebug == "true" {
		return true
	}
	switch os.Getenv("DEBTMAP_DEBUG") {
	case "1", "true":
		return true
	default:
		return false
	}
}

// Log writes a component-tagged debug line when enabled and a writer is
// configured; a silent no-op otherwise, so call sites never need to
// guard with IsEnabled themselves.
func Log(component, format string, args ...interface{}) {
	if !IsEnabled() {
		return
	}
	w := writer()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG:%s] "+format+"\n", append([]interface{}{component}, args...)...)
}

// Warn writes a warning that is always surfaced regardless of debug
// state, falling back to stderr when no writer has been configured.
func Warn(component, format string, args ...interface{}) {
	w := writer()
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "[WARN:%s] "+format+"\n", append([]interface{}{component}, args...)...)
}
