package vine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/vine/internal/logging"
	"github.com/aretw0/vine/internal/runtime"
	"github.com/aretw0/vine/pkg/adapters/file"
	"github.com/aretw0/vine/pkg/domain"
	"github.com/aretw0/vine/pkg/gui"
	"github.com/aretw0/vine/pkg/ports"
)

// ErrHostClosed is returned by calls made after Close.
var ErrHostClosed = errors.New("host closed")

// DefaultSnapshotKey is the store key used when none is configured.
const DefaultSnapshotKey = "host"

// DefaultViewport is the host viewport size used when none is configured.
var DefaultViewport = domain.Vec2{X: 800, Y: 600}

// Backend is a GUI the host can drive frame by frame.
type Backend interface {
	ports.GUI
	NewFrame(in gui.Input)
	EndFrame() *gui.Frame
}

// Host runs a script against a GUI backend and a scene, reloading it when
// it changes. Frame, Start and Close belong to a single goroutine (the frame
// loop); every other exported method is safe to call from anywhere.
type Host struct {
	source     ports.ScriptSource
	scriptPath string
	entryPoint string
	policy     domain.ReloadPolicy
	strict     bool
	scene      *domain.Scene
	backend    Backend
	logger     *slog.Logger
	hooks      domain.LifecycleHooks
	store      ports.StateStore
	storeKey   string
	clock      func() time.Time
	viewport   domain.Vec2

	sup      *runtime.Supervisor
	fallback *runtime.Fallback
	table    *runtime.Table
	drag     drag
	started  bool
	frames   uint64

	mu           sync.Mutex
	jobs         []func(ctx context.Context)
	interactions []gui.Interaction
	closed       bool
	// done is closed by Close and releases callers waiting in Do
	done chan struct{}

	status    atomic.Pointer[domain.HostStatus]
	lastFrame atomic.Pointer[gui.Frame]
}

// Option defines a functional option for configuring the Host.
type Option func(*Host)

// WithScriptSource sets where the script is read from.
func WithScriptSource(src ports.ScriptSource) Option {
	return func(h *Host) {
		h.source = src
	}
}

// WithScriptPath reads the script from a file.
func WithScriptPath(path string) Option {
	return func(h *Host) {
		h.scriptPath = path
	}
}

// WithEntryPoint sets the per-frame function name (default: "draw_gui").
func WithEntryPoint(name string) Option {
	return func(h *Host) {
		h.entryPoint = name
	}
}

// WithPollInterval sets how often the script is checked for changes.
func WithPollInterval(d time.Duration) Option {
	return func(h *Host) {
		h.policy.PollInterval = d
	}
}

// WithAutoReload enables or disables reloading on change (default: enabled).
func WithAutoReload(enabled bool) Option {
	return func(h *Host) {
		h.policy.AutoReload = enabled
	}
}

// WithStrictArguments makes malformed capability calls raise a script error
// instead of returning a neutral value.
func WithStrictArguments(strict bool) Option {
	return func(h *Host) {
		h.strict = strict
	}
}

// WithScene sets the host state exposed to scripts.
func WithScene(scene *domain.Scene) Option {
	return func(h *Host) {
		h.scene = scene
	}
}

// WithGUI sets the GUI backend (default: a gui.Recorder).
func WithGUI(b Backend) Option {
	return func(h *Host) {
		h.backend = b
	}
}

// WithLogger sets a custom structured logger for the host.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) {
		h.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(h *Host) {
		h.hooks = hooks
	}
}

// WithStore persists the scene under key. The snapshot is restored on Start
// and written on Close and SaveSnapshot.
func WithStore(store ports.StateStore, key string) Option {
	return func(h *Host) {
		h.store = store
		h.storeKey = key
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(clock func() time.Time) Option {
	return func(h *Host) {
		h.clock = clock
	}
}

// WithViewport sets the size scripts see through App.GetWindowSize.
func WithViewport(width, height float64) Option {
	return func(h *Host) {
		h.viewport = domain.Vec2{X: width, Y: height}
	}
}

// DefaultScene returns a red square of size 50 at (150, 150).
func DefaultScene() *domain.Scene {
	shape, _ := domain.NewShape(domain.ShapeSquare)
	shape.SetPosition(150, 150)
	shape.SetSize(50)
	shape.SetColor(domain.RGB(1, 0, 0))
	return domain.NewScene(shape, domain.DefaultBackground)
}

// New creates a host. The script is not loaded until Start or the first Frame.
func New(opts ...Option) (*Host, error) {
	h := &Host{
		entryPoint: runtime.DefaultEntryPoint,
		policy:     domain.ReloadPolicy{AutoReload: true, PollInterval: domain.DefaultPollInterval},
		storeKey:   DefaultSnapshotKey,
		clock:      time.Now,
		viewport:   DefaultViewport,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}

	if h.source == nil {
		if h.scriptPath == "" {
			return nil, fmt.Errorf("a script source or path is required")
		}
		h.source = file.NewSource(h.scriptPath)
	}
	if h.entryPoint == "" {
		return nil, fmt.Errorf("entry point cannot be empty")
	}
	if h.policy.PollInterval <= 0 {
		h.policy.PollInterval = domain.DefaultPollInterval
	}
	if h.storeKey == "" {
		h.storeKey = DefaultSnapshotKey
	}
	if h.scene == nil {
		h.scene = DefaultScene()
	}
	if h.backend == nil {
		h.backend = gui.NewRecorder()
	}
	if h.logger == nil {
		h.logger = logging.NewNop()
	}
	h.logger = h.logger.With("script", filepath.Base(h.source.Name()))

	h.table = runtime.DefaultTable()
	h.fallback = runtime.NewFallback(h.scene, h.viewport)
	h.sup = runtime.NewSupervisor(h.source, h.newSession,
		runtime.WithPolicy(h.policy),
		runtime.WithClock(h.clock),
		runtime.WithSupervisorLogger(h.logger),
		runtime.WithSupervisorHooks(h.hooks),
	)
	h.publish(false)
	return h, nil
}

func (h *Host) newSession(ctx context.Context, generation uint64) *runtime.Session {
	return runtime.Construct(ctx, runtime.SessionConfig{
		Source:     h.source,
		GUI:        h.backend,
		State:      h.scene,
		Table:      h.table,
		Generation: generation,
		Viewport:   h.viewport,
		Strict:     h.strict,
		Logger:     h.logger,
		OnError:    h.scriptError,
	})
}

func (h *Host) scriptError(err error) {
	if h.hooks.OnScriptError == nil {
		return
	}
	evt := &domain.ScriptErrorEvent{
		EventBase: domain.EventBase{Timestamp: h.clock(), Type: domain.EventScriptError},
		Kind:      domain.ErrorKind(err),
		Err:       err,
	}
	var rtErr *domain.ScriptRuntimeError
	if errors.As(err, &rtErr) {
		evt.Function = rtErr.Function
	}
	h.hooks.OnScriptError(context.Background(), evt)
}

// Start restores the stored snapshot, if any, and loads the script.
// A missing or broken script is not an error: the host shows its fallback GUI.
func (h *Host) Start(ctx context.Context) error {
	if h.started {
		return nil
	}
	if h.isClosed() {
		return ErrHostClosed
	}
	h.started = true

	if h.store != nil {
		snap, err := h.store.Load(ctx, h.storeKey)
		switch {
		case errors.Is(err, domain.ErrSnapshotNotFound):
		case err != nil:
			h.logger.Warn("failed to load snapshot", "key", h.storeKey, "err", err)
		default:
			if err := h.scene.Restore(*snap); err != nil {
				h.logger.Warn("failed to restore snapshot", "key", h.storeKey, "err", err)
			} else {
				h.sup.SetAutoReload(snap.AutoReload)
				h.logger.Info("snapshot restored", "key", h.storeKey, "saved_at", snap.SavedAt)
			}
		}
	}

	h.sup.Start(ctx)
	h.publish(h.sup.Active() == nil)
	return nil
}

// Frame runs one frame: queued calls, key commands, the reload poll, drag
// and finally the script's entry point or the fallback GUI.
func (h *Host) Frame(ctx context.Context, in Input) *gui.Frame {
	if !h.started {
		_ = h.Start(ctx)
	}
	began := h.clock()

	h.runJobs(ctx)
	h.handleKeys(ctx, in.Keys)
	// Candidates load between frames so their top-level GUI calls never
	// reach the live frame.
	h.sup.Tick(ctx)

	interactions := append(h.takeInteractions(), in.Interactions...)
	h.backend.NewFrame(gui.Input{Mouse: in.Mouse, Interactions: interactions})
	h.applyDrag(ctx, in.Mouse)

	fallback := true
	if s := h.sup.Active(); s != nil && s.HasFunction(h.entryPoint) {
		fallback = false
		// Errors are logged by the session and reported through the hooks
		_, _ = s.InvokeEntryPoint(ctx, h.entryPoint)
	}
	if fallback {
		h.fallback.Draw(h.backend, h.sup, h.entryPoint)
	}
	frame := h.backend.EndFrame()

	h.frames++
	if frame != nil {
		h.lastFrame.Store(frame)
		for _, w := range frame.Warnings {
			h.logger.Debug("gui warning", "frame", frame.Number, "warning", w)
		}
		for _, r := range frame.Recovered {
			h.logger.Warn("gui state recovered", "frame", frame.Number, "detail", r)
		}
	}
	h.publish(fallback)

	if h.hooks.OnFrame != nil {
		h.hooks.OnFrame(ctx, &domain.FrameEvent{
			EventBase: domain.EventBase{Timestamp: h.clock(), Type: domain.EventFrame},
			Number:    h.frames,
			Fallback:  fallback,
			Duration:  h.clock().Sub(began),
		})
	}
	return frame
}

func (h *Host) handleKeys(ctx context.Context, keys []Key) {
	for _, k := range keys {
		switch k {
		case KeyF5, KeyCtrlR:
			h.logger.Info("reload requested", "key", string(k))
			h.sup.ForceReload(ctx)
		case KeyF6:
			h.sup.ToggleAutoReload()
		default:
			h.logger.Debug("ignoring unknown key", "key", string(k))
		}
	}
}

func (h *Host) publish(fallback bool) {
	st := h.sup.Status()
	h.mu.Lock()
	pending := len(h.jobs)
	h.mu.Unlock()

	status := &domain.HostStatus{
		Script:       h.source.Name(),
		EntryPoint:   h.entryPoint,
		Loaded:       st.Loaded,
		HasEntry:     h.sup.Active() != nil && h.sup.Active().HasFunction(h.entryPoint),
		Generation:   st.Generation,
		Stamp:        st.Stamp,
		State:        string(st.State),
		AutoReload:   st.AutoReload,
		LastOutcome:  string(st.LastOutcome),
		LastErrorAt:  st.LastErrorAt,
		Frames:       h.frames,
		Fallback:     fallback,
		PendingCalls: pending,
	}
	if st.LastError != nil {
		status.LastError = st.LastError.Error()
	}
	h.status.Store(status)
}

// Supervisor exposes the reload supervisor to the frame loop goroutine.
func (h *Host) Supervisor() *runtime.Supervisor { return h.sup }

// LiveScene returns the live scene. Only the frame loop goroutine may use it.
func (h *Host) LiveScene() *domain.Scene { return h.scene }

// Close saves a snapshot when a store is configured and disposes the
// active session. It must be called from the frame loop goroutine, or
// after the loop stopped.
func (h *Host) Close(ctx context.Context) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.jobs = nil
	close(h.done)
	h.mu.Unlock()

	var errs []error
	if h.store != nil && h.started {
		if err := h.store.Save(ctx, h.storeKey, h.snapshot()); err != nil {
			errs = append(errs, fmt.Errorf("failed to save snapshot: %w", err))
		}
	}
	if err := h.sup.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (h *Host) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func (h *Host) snapshot() *domain.Snapshot {
	snap := h.scene.Snapshot()
	snap.Script = h.source.Name()
	snap.AutoReload = h.sup.Policy().AutoReload
	snap.SavedAt = h.clock()
	return &snap
}
