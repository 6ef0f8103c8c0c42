package web

import (
	"errors"
	"fmt"
	"net"
	"testing"
)

func TestAllocateFreePort(t *testing.T) {
	port, err := AllocateFreePort()
	if err != nil {
		t.Fatalf("AllocateFreePort: %v", err)
	}
	if port <= 0 || port > 65535 {
		t.Fatalf("port %d out of range", port)
	}

	// The probe socket must already be released.
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		t.Fatalf("port %d not released: %v", port, err)
	}
	ln.Close()
}

func TestBindError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	cfg := testConfig(t)
	cfg.Host = "127.0.0.1"
	cfg.Port = ln.Addr().(*net.TCPAddr).Port

	_, err = NewServer(cfg).Listen()
	var bindErr *BindError
	if !errors.As(err, &bindErr) {
		t.Fatalf("expected *BindError, got %v", err)
	}
	if bindErr.Addr != ln.Addr().String() {
		t.Errorf("Addr = %q, want %q", bindErr.Addr, ln.Addr().String())
	}
}
