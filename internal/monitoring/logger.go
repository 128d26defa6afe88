// Package monitoring routes diagnostic output from the pruning packages to a
// single swappable sink.
package monitoring

import (
	"log"
	"sync/atomic"
)

// Logf receives every diagnostic line. It writes to the standard logger until
// SetLogger installs a different sink.
var Logf func(format string, v ...interface{}) = log.Printf

var verbose atomic.Bool

// SetLogger installs f as the diagnostic sink; nil discards output.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetVerbose toggles Debugf output.
func SetVerbose(on bool) {
	verbose.Store(on)
}

// Verbose reports whether Debugf output is enabled.
func Verbose() bool {
	return verbose.Load()
}

// Debugf logs through Logf only when verbose output is enabled.
func Debugf(format string, v ...interface{}) {
	if verbose.Load() {
		Logf(format, v...)
	}
}
