package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventReloadCommitted  EventType = "reload_committed"
	EventReloadRolledBack EventType = "reload_rolled_back"
	EventScriptError      EventType = "script_error"
	EventFrame            EventType = "frame"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// ReloadEvent describes the end of a validation attempt.
type ReloadEvent struct {
	EventBase
	Path       string `json:"path"`
	Generation uint64 `json:"generation"`
	Forced     bool   `json:"forced"`
	Stamp      Stamp  `json:"stamp"`
	Err        error  `json:"-"`
}

// ScriptErrorEvent describes a recovered script-side failure.
type ScriptErrorEvent struct {
	EventBase
	Kind     string `json:"kind"`
	Function string `json:"function,omitempty"`
	Err      error  `json:"-"`
}

// FrameEvent describes one completed host frame.
type FrameEvent struct {
	EventBase
	Number   uint64        `json:"number"`
	Fallback bool          `json:"fallback"`
	Duration time.Duration `json:"duration"`
}

// LifecycleHooks defines callbacks for host observability.
// Hooks run on the frame loop and must not block.
type LifecycleHooks struct {
	OnReloadCommitted  func(context.Context, *ReloadEvent)
	OnReloadRolledBack func(context.Context, *ReloadEvent)
	OnScriptError      func(context.Context, *ScriptErrorEvent)
	OnFrame            func(context.Context, *FrameEvent)
}

// MergeHooks fans every callback out to all given hook sets, in order.
func MergeHooks(all ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnReloadCommitted: func(ctx context.Context, e *ReloadEvent) {
			for _, h := range all {
				if h.OnReloadCommitted != nil {
					h.OnReloadCommitted(ctx, e)
				}
			}
		},
		OnReloadRolledBack: func(ctx context.Context, e *ReloadEvent) {
			for _, h := range all {
				if h.OnReloadRolledBack != nil {
					h.OnReloadRolledBack(ctx, e)
				}
			}
		},
		OnScriptError: func(ctx context.Context, e *ScriptErrorEvent) {
			for _, h := range all {
				if h.OnScriptError != nil {
					h.OnScriptError(ctx, e)
				}
			}
		},
		OnFrame: func(ctx context.Context, e *FrameEvent) {
			for _, h := range all {
				if h.OnFrame != nil {
					h.OnFrame(ctx, e)
				}
			}
		},
	}
}
