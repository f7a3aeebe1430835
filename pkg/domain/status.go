package domain

import "time"

// HostStatus is the published, read-only view of a running host.
type HostStatus struct {
	Script       string    `json:"script"`
	EntryPoint   string    `json:"entry_point"`
	Loaded       bool      `json:"loaded"`
	HasEntry     bool      `json:"has_entry_point"`
	Generation   uint64    `json:"generation"`
	Stamp        Stamp     `json:"stamp"`
	State        string    `json:"state"`
	AutoReload   bool      `json:"auto_reload"`
	LastOutcome  string    `json:"last_outcome,omitempty"`
	LastError    string    `json:"last_error,omitempty"`
	LastErrorAt  time.Time `json:"last_error_at"`
	Frames       uint64    `json:"frames"`
	Fallback     bool      `json:"fallback"`
	PendingCalls int       `json:"pending_calls"`
}
