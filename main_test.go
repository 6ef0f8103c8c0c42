package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func newServeCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addServeFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	return cmd
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(newServeCmd(t), nil)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Port != 0 || cfg.Root != "." || cfg.Index != "/index.html" || cfg.Watch {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devserve.json")
	body := `{"port": 9000, "index": "/home.html", "watch": true}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := newServeCmd(t, "--config", path, "--port", "9100")
	cfg, err := loadConfig(cmd, []string{"public"})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Port != 9100 {
		t.Errorf("Port = %d, want flag value 9100", cfg.Port)
	}
	if cfg.Index != "/home.html" {
		t.Errorf("Index = %q, want file value", cfg.Index)
	}
	if !cfg.Watch {
		t.Error("Watch = false, want file value true")
	}
	if cfg.Root != "public" {
		t.Errorf("Root = %q, want public", cfg.Root)
	}
}

func TestLoadConfigInvalidPort(t *testing.T) {
	if _, err := loadConfig(newServeCmd(t, "--port", "70000"), nil); err == nil {
		t.Error("expected error for out of range port")
	}
}

func TestPortCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"port"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	port, err := strconv.Atoi(strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("output %q is not a port: %v", out.String(), err)
	}
	if port <= 0 || port > 65535 {
		t.Errorf("port %d out of range", port)
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), version) {
		t.Errorf("output %q missing version", out.String())
	}
}
