package runtime_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/vine/internal/runtime"
	"github.com/aretw0/vine/pkg/adapters/memory"
	"github.com/aretw0/vine/pkg/domain"
	"github.com/aretw0/vine/pkg/gui"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// logBuffer captures log output for assertions.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *logBuffer) Count(msg string) int {
	return strings.Count(b.String(), "msg=\""+msg+"\"")
}

func newTestLogger() (*slog.Logger, *logBuffer) {
	buf := &logBuffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

func newScene(t *testing.T) *domain.Scene {
	t.Helper()
	shape, err := domain.NewShape(domain.ShapeSquare)
	require.NoError(t, err)
	shape.SetPosition(100, 100)
	shape.SetSize(50)
	shape.SetColor(domain.RGB(1, 0, 0))
	return domain.NewScene(shape, domain.DefaultBackground)
}

// harness wires a supervisor to an in-memory script, a recorder and a scene.
type harness struct {
	src    *memory.Source
	rec    *gui.Recorder
	scene  *domain.Scene
	clock  *fakeClock
	logs   *logBuffer
	logger *slog.Logger
	sup    *runtime.Supervisor
	hooks  *hookLog
}

type hookLog struct {
	committed  []*domain.ReloadEvent
	rolledBack []*domain.ReloadEvent
	errors     []*domain.ScriptErrorEvent
}

func (h *hookLog) hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnReloadCommitted:  func(_ context.Context, e *domain.ReloadEvent) { h.committed = append(h.committed, e) },
		OnReloadRolledBack: func(_ context.Context, e *domain.ReloadEvent) { h.rolledBack = append(h.rolledBack, e) },
		OnScriptError:      func(_ context.Context, e *domain.ScriptErrorEvent) { h.errors = append(h.errors, e) },
	}
}

func newHarness(t *testing.T, script string, opts ...runtime.SupervisorOption) *harness {
	t.Helper()
	h := &harness{
		src:   memory.NewSource("gui.lua"),
		rec:   gui.NewRecorder(),
		scene: newScene(t),
		clock: newFakeClock(),
		hooks: &hookLog{},
	}
	if script != "" {
		h.src.Write(script)
	}
	h.logger, h.logs = newTestLogger()

	factory := func(ctx context.Context, generation uint64) *runtime.Session {
		return runtime.Construct(ctx, runtime.SessionConfig{
			Source:     h.src,
			GUI:        h.rec,
			State:      h.scene,
			Generation: generation,
			Viewport:   domain.Vec2{X: 800, Y: 600},
			Logger:     h.logger,
		})
	}
	base := []runtime.SupervisorOption{
		runtime.WithClock(h.clock.Now),
		runtime.WithSupervisorLogger(h.logger),
		runtime.WithSupervisorHooks(h.hooks.hooks()),
	}
	h.sup = runtime.NewSupervisor(h.src, factory, append(base, opts...)...)
	t.Cleanup(func() { _ = h.sup.Close() })
	return h
}

// frame runs one host frame: tick, then the entry point or nothing.
func (h *harness) frame(t *testing.T, interactions ...gui.Interaction) (*gui.Frame, runtime.Outcome) {
	t.Helper()
	ctx := context.Background()
	h.rec.NewFrame(gui.Input{Interactions: interactions})
	outcome := h.sup.Tick(ctx)
	if s := h.sup.Active(); s != nil {
		_, _ = s.InvokeEntryPoint(ctx, runtime.DefaultEntryPoint)
	}
	return h.rec.EndFrame(), outcome
}

// draw runs fn inside a recorder frame.
func draw(rec *gui.Recorder, in gui.Input, fn func()) *gui.Frame {
	rec.NewFrame(in)
	fn()
	return rec.EndFrame()
}

func click(label string) gui.Interaction {
	return gui.Interaction{Action: gui.ActionClick, Label: label}
}

func set(label string, value any) gui.Interaction {
	return gui.Interaction{Action: gui.ActionSet, Label: label, Value: value}
}
