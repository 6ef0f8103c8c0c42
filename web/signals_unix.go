//go:build !windows

package web

import (
	"os"

	"golang.org/x/sys/unix"
)

// ShutdownSignals are the signals that stop the server gracefully. SIGHUP
// arrives when the controlling terminal closes.
var ShutdownSignals = []os.Signal{unix.SIGINT, unix.SIGTERM, unix.SIGHUP}
