package web

import (
	"errors"
	"fmt"
	"net"
)

// ErrPortAllocation is returned when no ephemeral port could be probed.
var ErrPortAllocation = errors.New("could not allocate a free port")

// BindError is returned when the listening socket cannot be bound.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("could not bind %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// AllocateFreePort asks the OS for an unused TCP port and releases it before
// returning. Another process may claim the port before the caller binds it;
// the server avoids that race by listening on port 0 directly.
func AllocateFreePort() (int, error) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPortAllocation, err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	if err := ln.Close(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPortAllocation, err)
	}
	return port, nil
}
