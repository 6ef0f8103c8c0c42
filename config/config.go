package config

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Header is a single response header added to every response.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Config represents the server configuration
type Config struct {
	// Host is the interface to bind. Empty binds all interfaces.
	Host string `json:"host"`
	// Port is the TCP port to bind. Zero lets the OS pick a free port.
	Port int `json:"port"`
	// Root is the directory files are served from.
	Root string `json:"root"`
	// Index is the path the root path "/" is rewritten to.
	Index string `json:"index"`
	// Headers are injected into every response, in order.
	Headers []Header `json:"headers"`
	// MimeTypes maps a file extension (with leading dot) to a content type.
	MimeTypes map[string]string `json:"mime_types"`

	// Watch enables the live-reload endpoints.
	Watch bool `json:"watch"`
	// WatchIntervalMs is how often the served tree is scanned for changes.
	WatchIntervalMs int `json:"watch_interval_ms"`

	// CopyURL copies the server URL to the clipboard on startup.
	CopyURL bool `json:"copy_url"`
	// LogFile is where request and diagnostic logs go.
	LogFile string `json:"log_file"`
	// Verbose echoes info logs, including requests, to stdout.
	Verbose bool `json:"verbose"`
}

// DefaultHeaders returns the CORS and no-cache headers every response carries.
func DefaultHeaders() []Header {
	return []Header{
		{Name: "Access-Control-Allow-Origin", Value: "*"},
		{Name: "Access-Control-Allow-Methods", Value: "GET"},
		{Name: "Cache-Control", Value: "no-store, no-cache, must-revalidate"},
	}
}

// DefaultMimeTypes returns the content types that take precedence over the
// system MIME table.
func DefaultMimeTypes() map[string]string {
	return map[string]string{
		".js":   "application/javascript",
		".html": "text/html",
		".css":  "text/css",
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Host:            "",
		Port:            0,
		Root:            ".",
		Index:           "/index.html",
		Headers:         DefaultHeaders(),
		MimeTypes:       DefaultMimeTypes(),
		WatchIntervalMs: 500,
	}
}

// WatchInterval returns the scan interval as a duration.
func (c *Config) WatchInterval() time.Duration {
	if c.WatchIntervalMs <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(c.WatchIntervalMs) * time.Millisecond
}

// LoadConfig loads the configuration from path. Fields absent from the file
// keep their default values. An empty path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	// Overrides extend the defaults rather than replace them.
	config.Headers = MergeHeaders(DefaultHeaders(), config.Headers)
	merged := DefaultMimeTypes()
	for ext, typ := range config.MimeTypes {
		merged[ext] = typ
	}
	config.MimeTypes = merged

	return config, nil
}

// MergeHeaders returns base with extra applied on top. A header in extra
// replaces the base header of the same name in place; new names are appended.
// Names compare case-insensitively.
func MergeHeaders(base, extra []Header) []Header {
	merged := make([]Header, len(base), len(base)+len(extra))
	copy(merged, base)

	index := make(map[string]int, len(merged))
	for i, h := range merged {
		index[http.CanonicalHeaderKey(h.Name)] = i
	}
	for _, h := range extra {
		key := http.CanonicalHeaderKey(h.Name)
		if i, ok := index[key]; ok {
			merged[i].Value = h.Value
			continue
		}
		index[key] = len(merged)
		merged = append(merged, h)
	}
	return merged
}

// SaveConfig saves the configuration to path
func SaveConfig(config *Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}
