package vine_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/vine"
	"github.com/aretw0/vine/internal/runtime"
	"github.com/aretw0/vine/pkg/adapters/memory"
	"github.com/aretw0/vine/pkg/domain"
	"github.com/aretw0/vine/pkg/gui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newHost(t *testing.T, src *memory.Source, opts ...vine.Option) (*vine.Host, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	opts = append([]vine.Option{
		vine.WithScriptSource(src),
		vine.WithClock(clock.Now),
	}, opts...)
	h, err := vine.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close(context.Background()) })
	return h, clock
}

// drive runs frames until fn, called from another goroutine, returns.
func drive[T any](t *testing.T, h *vine.Host, fn func() T) T {
	t.Helper()
	done := make(chan T, 1)
	go func() { done <- fn() }()
	for i := 0; i < 2000; i++ {
		h.Frame(context.Background(), vine.Input{})
		select {
		case v := <-done:
			return v
		default:
			time.Sleep(time.Millisecond)
		}
	}
	t.Fatal("controller call never completed")
	var zero T
	return zero
}

type snapshotResult struct {
	snap domain.Snapshot
	err  error
}

const helloScript = `
function draw_gui()
	Gui.Begin("Hello")
	Gui.Text("generation one")
	Gui.End()
end
`

func TestNew_RequiresSource(t *testing.T) {
	_, err := vine.New()
	require.Error(t, err)

	_, err = vine.New(vine.WithScriptSource(memory.NewSource("gui.lua")), vine.WithEntryPoint(""))
	require.Error(t, err)
}

func TestHost_FallbackWithoutScript(t *testing.T) {
	h, _ := newHost(t, memory.NewSource("gui.lua"))

	frame := h.Frame(context.Background(), vine.Input{})
	require.NotNil(t, frame)
	assert.True(t, frame.HasWindow(runtime.FallbackWindow))
	assert.Contains(t, frame.Texts(), "No script is loaded.")

	st := h.Status()
	assert.False(t, st.Loaded)
	assert.True(t, st.Fallback)
	assert.Equal(t, uint64(1), st.Frames)
	assert.Same(t, frame, h.LastFrame())
}

func TestHost_FallbackWithoutEntryPoint(t *testing.T) {
	h, _ := newHost(t, memory.NewSourceWith("gui.lua", `x = 1`))

	frame := h.Frame(context.Background(), vine.Input{})
	assert.True(t, frame.HasWindow(runtime.FallbackWindow))
	assert.Contains(t, frame.Texts(), "The script does not define draw_gui().")

	st := h.Status()
	assert.True(t, st.Loaded)
	assert.False(t, st.HasEntry)
	assert.True(t, st.Fallback)
}

func TestHost_RunsEntryPoint(t *testing.T) {
	h, _ := newHost(t, memory.NewSourceWith("gui.lua", helloScript))

	frame := h.Frame(context.Background(), vine.Input{})
	assert.True(t, frame.HasWindow("Hello"))
	assert.False(t, frame.HasWindow(runtime.FallbackWindow))
	assert.Equal(t, []string{"generation one"}, frame.Texts())

	st := h.Status()
	assert.True(t, st.Loaded)
	assert.True(t, st.HasEntry)
	assert.False(t, st.Fallback)
	assert.Equal(t, uint64(1), st.Generation)
	assert.Equal(t, "draw_gui", st.EntryPoint)
}

func TestHost_CustomEntryPoint(t *testing.T) {
	src := memory.NewSourceWith("gui.lua", `function render() Gui.Text("custom") end`)
	h, _ := newHost(t, src, vine.WithEntryPoint("render"))

	frame := h.Frame(context.Background(), vine.Input{})
	assert.Equal(t, []string{"custom"}, frame.Texts())
}

func TestHost_ReloadsOnChange(t *testing.T) {
	src := memory.NewSourceWith("gui.lua", helloScript)
	h, clock := newHost(t, src)
	ctx := context.Background()

	h.Frame(ctx, vine.Input{})
	src.Write(strings.ReplaceAll(helloScript, "generation one", "generation two"))

	// Not due yet
	frame := h.Frame(ctx, vine.Input{})
	assert.Equal(t, []string{"generation one"}, frame.Texts())

	clock.Advance(600 * time.Millisecond)
	frame = h.Frame(ctx, vine.Input{})
	assert.Equal(t, []string{"generation two"}, frame.Texts())
	assert.Equal(t, uint64(2), h.Status().Generation)
}

func TestHost_BrokenEditKeepsRunning(t *testing.T) {
	src := memory.NewSourceWith("gui.lua", helloScript)
	h, clock := newHost(t, src)
	ctx := context.Background()

	h.Frame(ctx, vine.Input{})
	src.Write(`function draw_gui( Gui.Text("oops") end`)
	clock.Advance(600 * time.Millisecond)

	frame := h.Frame(ctx, vine.Input{})
	assert.Equal(t, []string{"generation one"}, frame.Texts())

	st := h.Status()
	assert.Equal(t, uint64(1), st.Generation)
	assert.Equal(t, string(runtime.OutcomeRolledBack), st.LastOutcome)
	assert.NotEmpty(t, st.LastError)
}

func TestHost_RolledBackCandidateLeavesFrameAlone(t *testing.T) {
	src := memory.NewSourceWith("gui.lua", `
local clicks = 0
function draw_gui()
	Gui.Begin("Counter")
	if Gui.Button("Go") then clicks = clicks + 1 end
	Gui.Text("clicks " .. clicks)
	Gui.End()
end
`)
	h, clock := newHost(t, src)
	ctx := context.Background()
	h.Frame(ctx, vine.Input{})

	// The broken edit draws and consumes input at load time before failing
	src.Write(`
Gui.Begin("Broken")
Gui.Text("leak")
Gui.Button("Go")
error("boom")
`)
	clock.Advance(600 * time.Millisecond)

	frame := h.Frame(ctx, vine.Input{
		Interactions: []gui.Interaction{{Action: gui.ActionClick, Label: "Go"}},
	})
	assert.Equal(t, []string{"clicks 1"}, frame.Texts())
	assert.False(t, frame.HasWindow("Broken"))
	assert.Empty(t, frame.Recovered)
	assert.Empty(t, frame.Unmatched)

	st := h.Status()
	assert.Equal(t, string(runtime.OutcomeRolledBack), st.LastOutcome)
	assert.Equal(t, uint64(1), st.Generation)
}

func TestHost_CommittedCandidateDrawsFromTheSameFrame(t *testing.T) {
	src := memory.NewSourceWith("gui.lua", helloScript)
	h, clock := newHost(t, src)
	ctx := context.Background()
	h.Frame(ctx, vine.Input{})

	src.Write(`
Gui.Text("load time")
function draw_gui() Gui.Text("generation two") end
`)
	clock.Advance(600 * time.Millisecond)

	frame := h.Frame(ctx, vine.Input{})
	assert.Equal(t, []string{"generation two"}, frame.Texts())
	assert.Equal(t, uint64(2), h.Status().Generation)
}

func TestHost_Keys(t *testing.T) {
	src := memory.NewSourceWith("gui.lua", helloScript)
	h, _ := newHost(t, src, vine.WithAutoReload(false))
	ctx := context.Background()

	h.Frame(ctx, vine.Input{})
	src.Write(strings.ReplaceAll(helloScript, "generation one", "generation two"))

	t.Run("F5 forces a reload", func(t *testing.T) {
		frame := h.Frame(ctx, vine.Input{Keys: []vine.Key{vine.KeyF5}})
		assert.Equal(t, []string{"generation two"}, frame.Texts())
	})

	t.Run("Ctrl+R forces a reload", func(t *testing.T) {
		src.Write(strings.ReplaceAll(helloScript, "generation one", "generation three"))
		frame := h.Frame(ctx, vine.Input{Keys: []vine.Key{vine.KeyCtrlR}})
		assert.Equal(t, []string{"generation three"}, frame.Texts())
	})

	t.Run("F6 toggles auto-reload", func(t *testing.T) {
		assert.False(t, h.Status().AutoReload)
		h.Frame(ctx, vine.Input{Keys: []vine.Key{vine.KeyF6}})
		assert.True(t, h.Status().AutoReload)
		h.Frame(ctx, vine.Input{Keys: []vine.Key{vine.KeyF6}})
		assert.False(t, h.Status().AutoReload)
	})
}

func TestParseKey(t *testing.T) {
	for in, want := range map[string]vine.Key{
		"f5":     vine.KeyF5,
		" F6 ":   vine.KeyF6,
		"ctrl+r": vine.KeyCtrlR,
		"Ctrl-R": vine.KeyCtrlR,
	} {
		got, err := vine.ParseKey(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := vine.ParseKey("f1")
	assert.Error(t, err)
}

const dragScript = `
moves = 0
last_x = -1
function OnHostShapePositionUpdated(x, y)
	moves = moves + 1
	last_x = x
end
function draw_gui()
	Gui.SetNextWindowPos(600, 500)
	Gui.SetNextWindowSize(100, 50)
	Gui.Begin("Moves")
	Gui.Text(string.format("moves=%d x=%d", moves, last_x))
	Gui.End()
end
`

func TestHost_DragNotifiesScript(t *testing.T) {
	scene := vine.DefaultScene()
	h, _ := newHost(t, memory.NewSourceWith("gui.lua", dragScript), vine.WithScene(scene))
	ctx := context.Background()

	frame := func(x, y float64, down bool) []string {
		return h.Frame(ctx, vine.Input{Mouse: gui.Mouse{Pos: domain.Vec2{X: x, Y: y}, Down: down}}).Texts()
	}

	assert.Equal(t, []string{"moves=0 x=-1"}, frame(160, 160, false))

	// Press on the shape starts the drag without moving it
	assert.Equal(t, []string{"moves=0 x=-1"}, frame(160, 160, true))
	assert.True(t, h.Dragging())

	assert.Equal(t, []string{"moves=1 x=160"}, frame(170, 165, true))
	assert.Equal(t, domain.Vec2{X: 160, Y: 155}, scene.Shape().Position())

	// Holding still does not notify again
	assert.Equal(t, []string{"moves=1 x=160"}, frame(170, 165, true))

	assert.Equal(t, []string{"moves=2 x=170"}, frame(180, 180, true))
	assert.Equal(t, domain.Vec2{X: 170, Y: 170}, scene.Shape().Position())

	frame(180, 180, false)
	assert.False(t, h.Dragging())

	// Moving without the button does nothing
	assert.Equal(t, []string{"moves=2 x=170"}, frame(300, 300, false))
	assert.Equal(t, domain.Vec2{X: 170, Y: 170}, scene.Shape().Position())
}

func TestHost_DragRequiresPressOnShape(t *testing.T) {
	scene := vine.DefaultScene()
	h, _ := newHost(t, memory.NewSourceWith("gui.lua", dragScript), vine.WithScene(scene))
	ctx := context.Background()

	h.Frame(ctx, vine.Input{Mouse: gui.Mouse{Pos: domain.Vec2{X: 10, Y: 10}, Down: true}})
	// Sliding onto the shape with the button held is not a press
	h.Frame(ctx, vine.Input{Mouse: gui.Mouse{Pos: domain.Vec2{X: 160, Y: 160}, Down: true}})
	h.Frame(ctx, vine.Input{Mouse: gui.Mouse{Pos: domain.Vec2{X: 200, Y: 200}, Down: true}})

	assert.False(t, h.Dragging())
	assert.Equal(t, domain.Vec2{X: 150, Y: 150}, scene.Shape().Position())
}

func TestHost_DragIgnoresCapturedMouse(t *testing.T) {
	script := `
function draw_gui()
	Gui.SetNextWindowPos(140, 140)
	Gui.SetNextWindowSize(100, 100)
	Gui.Begin("Over the shape")
	Gui.Text("covering")
	Gui.End()
end
`
	scene := vine.DefaultScene()
	h, _ := newHost(t, memory.NewSourceWith("gui.lua", script), vine.WithScene(scene))
	ctx := context.Background()

	h.Frame(ctx, vine.Input{Mouse: gui.Mouse{Pos: domain.Vec2{X: 160, Y: 160}}})
	h.Frame(ctx, vine.Input{Mouse: gui.Mouse{Pos: domain.Vec2{X: 160, Y: 160}, Down: true}})
	h.Frame(ctx, vine.Input{Mouse: gui.Mouse{Pos: domain.Vec2{X: 190, Y: 190}, Down: true}})

	assert.False(t, h.Dragging())
	assert.Equal(t, domain.Vec2{X: 150, Y: 150}, scene.Shape().Position())
}

func TestHost_DragWithoutScript(t *testing.T) {
	scene := vine.DefaultScene()
	// The fallback window sits over the default shape, so move the shape clear of it
	scene.Shape().SetPosition(500, 450)
	h, _ := newHost(t, memory.NewSource("gui.lua"), vine.WithScene(scene))
	ctx := context.Background()

	h.Frame(ctx, vine.Input{Mouse: gui.Mouse{Pos: domain.Vec2{X: 510, Y: 460}, Down: true}})
	h.Frame(ctx, vine.Input{Mouse: gui.Mouse{Pos: domain.Vec2{X: 530, Y: 470}, Down: true}})

	assert.Equal(t, domain.Vec2{X: 520, Y: 460}, scene.Shape().Position())
}

func TestHost_Controller(t *testing.T) {
	src := memory.NewSourceWith("gui.lua", helloScript)
	h, _ := newHost(t, src, vine.WithAutoReload(false))
	ctx := context.Background()
	h.Frame(ctx, vine.Input{})

	t.Run("SetAutoReload", func(t *testing.T) {
		on := true
		got := drive(t, h, func() error {
			v, err := h.SetAutoReload(ctx, &on)
			if err == nil && !v {
				return fmt.Errorf("expected true")
			}
			return err
		})
		require.NoError(t, got)
		h.Frame(ctx, vine.Input{})
		assert.True(t, h.Status().AutoReload)

		toggled := drive(t, h, func() bool {
			v, _ := h.SetAutoReload(ctx, nil)
			return v
		})
		assert.False(t, toggled)
	})

	t.Run("RequestReload", func(t *testing.T) {
		src.Write(strings.ReplaceAll(helloScript, "generation one", "generation two"))
		require.NoError(t, h.RequestReload(ctx))
		frame := h.Frame(ctx, vine.Input{})
		assert.Equal(t, []string{"generation two"}, frame.Texts())
	})

	t.Run("Scene and PatchScene", func(t *testing.T) {
		got := drive(t, h, func() snapshotResult {
			s, err := h.Scene(ctx)
			return snapshotResult{s, err}
		})
		require.NoError(t, got.err)
		snap := got.snap
		require.NotNil(t, snap.Shape)
		assert.Equal(t, domain.Vec2{X: 150, Y: 150}, snap.Shape.Position)
		assert.Equal(t, "gui.lua", snap.Script)

		size := 80.0
		got = drive(t, h, func() snapshotResult {
			s, err := h.PatchScene(ctx, domain.ShapePatch{
				Position: &domain.Vec2{X: 10, Y: 20},
				Size:     &size,
			})
			return snapshotResult{s, err}
		})
		require.NoError(t, got.err)
		patched := got.snap
		assert.Equal(t, domain.Vec2{X: 10, Y: 20}, patched.Shape.Position)
		assert.Equal(t, 80.0, patched.Shape.Size)
	})

	t.Run("Do respects context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := h.Do(cctx, func(context.Context) {})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("SaveSnapshot without store", func(t *testing.T) {
		assert.Error(t, h.SaveSnapshot(ctx))
	})
}

func TestHost_Interact(t *testing.T) {
	h, _ := newHost(t, memory.NewSource("gui.lua"))
	ctx := context.Background()
	h.Frame(ctx, vine.Input{})

	require.NoError(t, h.Interact(ctx, gui.Interaction{Action: gui.ActionClick, Label: runtime.FallbackClick}))
	frame := h.Frame(ctx, vine.Input{})
	assert.Contains(t, frame.Texts(), "clicked 1 times")

	assert.Error(t, h.Interact(ctx, gui.Interaction{Action: "poke", Label: "x"}))
}

func TestHost_SnapshotRoundTrip(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	first, _ := newHost(t, memory.NewSource("gui.lua"),
		vine.WithStore(store, "demo"),
		vine.WithAutoReload(false),
	)
	require.NoError(t, first.Start(ctx))
	first.LiveScene().Shape().SetPosition(42, 24)
	first.LiveScene().SetBackgroundColor(domain.RGB(0, 0, 1))
	require.NoError(t, first.Close(ctx))

	snap, err := store.Load(ctx, "demo")
	require.NoError(t, err)
	assert.False(t, snap.AutoReload)

	second, _ := newHost(t, memory.NewSource("gui.lua"), vine.WithStore(store, "demo"))
	require.NoError(t, second.Start(ctx))
	assert.Equal(t, domain.Vec2{X: 42, Y: 24}, second.LiveScene().Shape().Position())
	assert.Equal(t, domain.RGB(0, 0, 1), second.LiveScene().BackgroundColor())
	assert.False(t, second.Status().AutoReload)
}

func TestHost_SaveSnapshot(t *testing.T) {
	store := memory.NewStore()
	h, _ := newHost(t, memory.NewSource("gui.lua"), vine.WithStore(store, ""))
	ctx := context.Background()
	h.Frame(ctx, vine.Input{})

	err := drive(t, h, func() error { return h.SaveSnapshot(ctx) })
	require.NoError(t, err)

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{vine.DefaultSnapshotKey}, keys)
}

func TestHost_Hooks(t *testing.T) {
	script := `
function draw_gui()
	error("boom")
end
`
	var frames int
	var fallbacks int
	var scriptErrs []*domain.ScriptErrorEvent
	hooks := domain.LifecycleHooks{
		OnFrame: func(_ context.Context, e *domain.FrameEvent) {
			frames++
			if e.Fallback {
				fallbacks++
			}
		},
		OnScriptError: func(_ context.Context, e *domain.ScriptErrorEvent) {
			scriptErrs = append(scriptErrs, e)
		},
	}
	h, _ := newHost(t, memory.NewSourceWith("gui.lua", script), vine.WithLifecycleHooks(hooks))
	ctx := context.Background()

	h.Frame(ctx, vine.Input{})
	h.Frame(ctx, vine.Input{})

	assert.Equal(t, 2, frames)
	assert.Equal(t, 0, fallbacks)
	require.Len(t, scriptErrs, 2)
	assert.Equal(t, domain.KindScriptRuntime, scriptErrs[0].Kind)
	assert.Equal(t, "draw_gui", scriptErrs[0].Function)
}

func TestHost_Closed(t *testing.T) {
	h, _ := newHost(t, memory.NewSource("gui.lua"))
	ctx := context.Background()
	h.Frame(ctx, vine.Input{})
	require.NoError(t, h.Close(ctx))
	require.NoError(t, h.Close(ctx))

	assert.ErrorIs(t, h.RequestReload(ctx), vine.ErrHostClosed)
	assert.ErrorIs(t, h.Interact(ctx, gui.Interaction{Action: gui.ActionClick, Label: "x"}), vine.ErrHostClosed)
	_, err := h.Scene(ctx)
	assert.ErrorIs(t, err, vine.ErrHostClosed)
}

func TestHost_CloseReleasesWaitingCalls(t *testing.T) {
	h, _ := newHost(t, memory.NewSource("gui.lua"))
	ctx := context.Background()
	h.Frame(ctx, vine.Input{})

	results := make(chan error, 2)
	go func() {
		_, err := h.Scene(ctx)
		results <- err
	}()
	go func() {
		_, err := h.SetAutoReload(ctx, nil)
		results <- err
	}()
	// Let both calls queue before the host closes
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, h.Close(ctx))

	for i := 0; i < 2; i++ {
		select {
		case err := <-results:
			assert.ErrorIs(t, err, vine.ErrHostClosed)
		case <-time.After(2 * time.Second):
			t.Fatal("call still blocked after Close")
		}
	}
}

func TestHost_Run(t *testing.T) {
	store := memory.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var frames int
	h, err := vine.New(
		vine.WithScriptSource(memory.NewSourceWith("gui.lua", helloScript)),
		vine.WithStore(store, "run"),
		vine.WithLifecycleHooks(domain.LifecycleHooks{
			OnFrame: func(context.Context, *domain.FrameEvent) {
				frames++
				if frames == 3 {
					cancel()
				}
			},
		}),
	)
	require.NoError(t, err)

	require.NoError(t, h.Run(ctx, 200, nil))
	assert.GreaterOrEqual(t, frames, 3)

	_, err = store.Load(context.Background(), "run")
	assert.NoError(t, err, "Run should save a snapshot on the way out")
}
