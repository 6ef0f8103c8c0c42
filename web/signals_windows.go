//go:build windows

package web

import (
	"os"
	"syscall"
)

// ShutdownSignals are the signals that stop the server gracefully.
// Windows only delivers a limited set of signals.
var ShutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
