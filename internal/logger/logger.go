// Package logger provides verbose logging for the Recall CLI.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to help users follow the ingestion and ask
// pipelines.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// enabled gates all output. It is atomic so the hot path costs a single
// load when verbose mode is off.
var enabled atomic.Bool

// mu serialises writes so concurrent ingest workers do not interleave
// their lines.
var mu sync.Mutex

var out io.Writer = os.Stderr

// SetVerbose turns verbose logging on or off.
func SetVerbose(v bool) {
	enabled.Store(v)
}

// IsVerbose reports whether verbose mode is on.
func IsVerbose() bool {
	return enabled.Load()
}

// SetOutput redirects verbose logs away from os.Stderr; tests use it
// to capture output.
func SetOutput(w io.Writer) {
	mu.Lock()
	out = w
	mu.Unlock()
}

// logf writes one prefixed line when verbose mode is on.
func logf(prefix, format string, args ...any) {
	if !enabled.Load() {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(out, prefix+format+"\n", args...)
}

// Debug prints low-level pipeline detail.
func Debug(format string, args ...any) {
	logf("[DEBUG] ", format, args...)
}

// Info prints progress messages.
func Info(format string, args ...any) {
	logf("[INFO] ", format, args...)
}

// Warn prints recoverable problems.
func Warn(format string, args ...any) {
	logf("[WARN] ", format, args...)
}

// Section prints a banner separating pipeline phases, such as the upload
// and index halves of an ingest run.
func Section(name string) {
	logf("", "\n=== %s ===", name)
}
