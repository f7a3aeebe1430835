package domain

import (
	"errors"
	"fmt"
)

// ErrScriptNotFound is returned by script sources when the script does not exist.
var ErrScriptNotFound = errors.New("script not found")

// ErrSessionClosed is returned when calling into a disposed interpreter session.
var ErrSessionClosed = errors.New("interpreter session closed")

// ErrSnapshotNotFound is returned when a snapshot key cannot be found in the store.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Error kinds, used as log fields and metric labels.
const (
	KindScriptUnavailable  = "script_unavailable"
	KindScriptLoad         = "script_load"
	KindScriptRuntime      = "script_runtime"
	KindCapabilityArgument = "capability_argument"
	KindFilesystemQuery    = "filesystem_query"
	KindUnknown            = "unknown"
)

// ScriptUnavailableError reports a missing or unreadable script.
type ScriptUnavailableError struct {
	Path string
	Err  error
}

func (e *ScriptUnavailableError) Error() string {
	return fmt.Sprintf("script %s unavailable: %v", e.Path, e.Err)
}

func (e *ScriptUnavailableError) Unwrap() error { return e.Err }

// ScriptLoadError reports a script that failed to parse or to execute its
// top-level chunk.
type ScriptLoadError struct {
	Path    string
	Phase   string // "parse" or "execute"
	Message string
}

func (e *ScriptLoadError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Phase, e.Path, e.Message)
}

// ScriptRuntimeError reports an error raised while invoking a script callable.
type ScriptRuntimeError struct {
	Path       string
	Function   string
	Message    string
	StackTrace string
}

func (e *ScriptRuntimeError) Error() string {
	return fmt.Sprintf("error calling %s: %s", e.Function, e.Message)
}

// CapabilityArgumentError reports a malformed call to a native capability.
type CapabilityArgumentError struct {
	Capability string // e.g. "Gui.Button"
	Arg        int    // 1-based argument position, 0 when not positional
	Reason     string
}

func (e *CapabilityArgumentError) Error() string {
	if e.Arg > 0 {
		return fmt.Sprintf("ArgumentError: %s: bad argument #%d: %s", e.Capability, e.Arg, e.Reason)
	}
	return fmt.Sprintf("ArgumentError: %s: %s", e.Capability, e.Reason)
}

// FilesystemQueryError reports a transient failure querying script metadata.
type FilesystemQueryError struct {
	Path string
	Err  error
}

func (e *FilesystemQueryError) Error() string {
	return fmt.Sprintf("query %s: %v", e.Path, e.Err)
}

func (e *FilesystemQueryError) Unwrap() error { return e.Err }

// ErrorKind maps err onto the error taxonomy.
func ErrorKind(err error) string {
	var (
		unavailable *ScriptUnavailableError
		load        *ScriptLoadError
		runtime     *ScriptRuntimeError
		argument    *CapabilityArgumentError
		fsQuery     *FilesystemQueryError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &argument):
		return KindCapabilityArgument
	case errors.As(err, &runtime):
		return KindScriptRuntime
	case errors.As(err, &load):
		return KindScriptLoad
	case errors.As(err, &fsQuery):
		return KindFilesystemQuery
	case errors.As(err, &unavailable), errors.Is(err, ErrScriptNotFound):
		return KindScriptUnavailable
	default:
		return KindUnknown
	}
}
