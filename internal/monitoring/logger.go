// Package monitoring carries the diagnostic logger and the warning report
// printed to standard error.
package monitoring

import (
	"fmt"
	"io"
	"log"

	"github.com/banshee-data/sendsubghz/internal/subghz"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Warnf logs a degraded-but-continuing condition through Logf.
func Warnf(format string, v ...interface{}) {
	Logf("WARN "+format, v...)
}

// ReportWarnings writes one line per stage warning to w, in the order raised,
// and returns how many were written.
func ReportWarnings(w io.Writer, warnings subghz.Warnings) int {
	for _, warning := range warnings {
		fmt.Fprintf(w, "WARN %s\n", warning)
	}
	return len(warnings)
}
