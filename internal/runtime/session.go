package runtime

import (
	"bytes"
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/vine/internal/logging"
	"github.com/aretw0/vine/pkg/domain"
	"github.com/aretw0/vine/pkg/ports"
	lua "github.com/yuin/gopher-lua"
)

// Script callables the host looks up by name.
const (
	DefaultEntryPoint  = "draw_gui"
	ShapeMovedCallback = "OnHostShapePositionUpdated"
	anonymousScript    = "script"
)

// ErrSessionBusy is returned by Dispose while a script call is in flight.
var ErrSessionBusy = errors.New("interpreter session has a call in flight")

// SessionConfig holds everything Construct needs.
type SessionConfig struct {
	Source     ports.ScriptSource
	GUI        ports.GUI
	State      ports.HostState
	Table      *Table
	Generation uint64
	Viewport   domain.Vec2
	Strict     bool
	Logger     *slog.Logger

	// OnError is told about every recovered runtime or argument error.
	OnError func(err error)
}

// Session owns one Lua interpreter and everything installed into it.
// It is not safe for concurrent use; it belongs to the frame loop.
type Session struct {
	L          *lua.LState
	env        *Env
	bridge     *Bridge
	path       string
	generation uint64
	stamp      domain.Stamp
	loaded     bool
	loadErr    error
	depth      int
	closed     bool
	logger     *slog.Logger
	onError    func(err error)
}

// Construct creates a session and tries to load the script into it.
// It never fails: a missing or broken script yields a session with
// Loaded() == false and the cause in LoadErr().
//
// Host state writes made while the script's top-level chunk runs are staged;
// the caller decides with Commit or Discard whether they reach the host.
func Construct(ctx context.Context, cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	table := cfg.Table
	if table == nil {
		table = DefaultTable()
	}
	path := anonymousScript
	if cfg.Source != nil {
		path = cfg.Source.Name()
	}

	s := &Session{
		L:          lua.NewState(),
		bridge:     NewBridge(cfg.State),
		path:       path,
		generation: cfg.Generation,
		logger:     logger.With("script", path, "generation", cfg.Generation),
		onError:    cfg.OnError,
	}
	s.env = &Env{
		GUI:      cfg.GUI,
		Bridge:   s.bridge,
		Viewport: cfg.Viewport,
		Strict:   cfg.Strict,
		Logger:   logger,
		Script:   path,
		OnArgumentError: func(err *domain.CapabilityArgumentError) {
			s.report(err)
		},
	}
	table.Install(s.L, s.env)
	s.bridge.Stage()

	if cfg.Source == nil {
		s.loadErr = &domain.ScriptUnavailableError{Path: path, Err: domain.ErrScriptNotFound}
		return s
	}

	content, stamp, err := cfg.Source.Read()
	if err != nil {
		s.loadErr = &domain.ScriptUnavailableError{Path: path, Err: err}
		s.logger.Debug("script unavailable", "err", err)
		return s
	}
	s.stamp = stamp

	fn, err := s.L.Load(bytes.NewReader(content), "@"+path)
	if err != nil {
		s.loadErr = &domain.ScriptLoadError{Path: path, Phase: "parse", Message: err.Error()}
		s.logger.Error("failed to parse script", "err", s.loadErr)
		return s
	}

	s.withContext(ctx, func() {
		s.depth++
		defer func() { s.depth-- }()
		s.L.Push(fn)
		err = s.L.PCall(0, lua.MultRet, nil)
	})
	s.L.SetTop(0)
	if err != nil {
		s.loadErr = &domain.ScriptLoadError{Path: path, Phase: "execute", Message: luaMessage(err)}
		s.logger.Error("failed to execute script", "err", s.loadErr)
		return s
	}

	s.loaded = true
	s.logger.Debug("script loaded", "stamp", stamp)
	return s
}

func (s *Session) withContext(ctx context.Context, fn func()) {
	if ctx != nil && ctx.Done() != nil {
		s.L.SetContext(ctx)
		defer s.L.RemoveContext()
	}
	fn()
}

func (s *Session) report(err error) {
	if s.onError != nil {
		s.onError(err)
	}
}

func luaMessage(err error) string {
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) && apiErr.Object != nil {
		return apiErr.Object.String()
	}
	return err.Error()
}

// Loaded reports whether the script parsed and its top-level chunk ran.
func (s *Session) Loaded() bool { return s.loaded }

// LoadErr returns why the session is not loaded, or nil.
func (s *Session) LoadErr() error { return s.loadErr }

// Stamp returns the source stamp the script was read at.
func (s *Session) Stamp() domain.Stamp { return s.stamp }

// Generation returns the number the supervisor assigned to this session.
func (s *Session) Generation() uint64 { return s.generation }

// Path returns the script name.
func (s *Session) Path() string { return s.path }

// Busy reports whether a script call is in flight.
func (s *Session) Busy() bool { return s.depth > 0 }

// Closed reports whether Dispose was called.
func (s *Session) Closed() bool { return s.closed }

// Env returns the capability environment of the session.
func (s *Session) Env() *Env { return s.env }

// Commit applies host state writes staged while the script loaded.
func (s *Session) Commit() bool { return s.bridge.Commit() }

// Discard drops host state writes staged while the script loaded.
func (s *Session) Discard() { s.bridge.Discard() }

// HasFunction reports whether the script defines a global function called name.
func (s *Session) HasFunction(name string) bool {
	if !s.loaded || s.closed {
		return false
	}
	_, ok := s.L.GetGlobal(name).(*lua.LFunction)
	return ok
}

// Invoke calls the global function name inside a protected call. It reports
// whether the function exists. A runtime error is logged and returned as a
// *domain.ScriptRuntimeError; the session stays usable.
func (s *Session) Invoke(ctx context.Context, name string, args ...lua.LValue) (bool, error) {
	if s.closed {
		return false, domain.ErrSessionClosed
	}
	if !s.loaded {
		return false, nil
	}
	fn, ok := s.L.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return false, nil
	}

	var err error
	s.withContext(ctx, func() {
		s.depth++
		defer func() { s.depth-- }()
		err = s.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...)
	})
	if err == nil {
		return true, nil
	}

	rtErr := &domain.ScriptRuntimeError{Path: s.path, Function: name, Message: luaMessage(err)}
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) {
		rtErr.StackTrace = apiErr.StackTrace
	}
	s.logger.Error("script runtime error", "function", name, "err", rtErr)
	s.report(rtErr)
	return true, rtErr
}

// InvokeEntryPoint calls the per-frame entry point.
func (s *Session) InvokeEntryPoint(ctx context.Context, name string) (bool, error) {
	return s.Invoke(ctx, name)
}

// NotifyShapeMoved tells the script the host moved the shape to (x, y).
// A script without the callback is not an error.
func (s *Session) NotifyShapeMoved(ctx context.Context, x, y float64) (bool, error) {
	return s.Invoke(ctx, ShapeMovedCallback, lua.LNumber(x), lua.LNumber(y))
}

// Dispose closes the interpreter and cuts the session's host state binding.
// It must not be called while a call is in flight. Disposing twice is a no-op.
func (s *Session) Dispose() error {
	if s.closed {
		return nil
	}
	if s.Busy() {
		return ErrSessionBusy
	}
	s.closed = true
	s.bridge.Retire()
	s.L.Close()
	s.logger.Debug("session disposed")
	return nil
}
