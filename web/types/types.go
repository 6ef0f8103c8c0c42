// Package types provides shared data structures for the live-reload components.
package types

import (
	"time"
)

// ReloadEvent tells connected browsers the served tree changed.
type ReloadEvent struct {
	Type      string    `json:"type"`
	Changed   []string  `json:"changed,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// MonitorInterface defines the interface for change monitoring components.
type MonitorInterface interface {
	// Subscribe returns a channel for receiving change events.
	Subscribe() chan ReloadEvent

	// Unsubscribe removes a channel from receiving events.
	Unsubscribe(ch chan ReloadEvent)

	// Done returns a channel that is closed when the monitor stops.
	Done() <-chan struct{}
}
