// Package monitoring holds the diagnostic logger, Prometheus collectors and
// tracer shared by detection, growth and the CLI.
package monitoring

import "log"

// Logf is the diagnostic logger used by the fault packages. It defaults to
// log.Printf. Growth writes one line per skin through it, so long runs on
// large volumes may want to redirect or mute it with SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces Logf. A nil f mutes logging.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Quiet mutes Logf and returns a function restoring the previous logger.
// Tests call it as `defer monitoring.Quiet()()`.
func Quiet() func() {
	prev := Logf
	SetLogger(nil)
	return func() { Logf = prev }
}
