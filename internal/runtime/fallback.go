package runtime

import (
	"fmt"

	"github.com/aretw0/vine/pkg/domain"
	"github.com/aretw0/vine/pkg/gui"
	"github.com/aretw0/vine/pkg/ports"
)

// FallbackWindow is the title of the built-in window.
const FallbackWindow = "Default GUI"

// Labels of the fallback widgets.
const (
	FallbackAutoReload = "Auto-reload"
	FallbackReload     = "Reload script"
	FallbackClick      = "Click me!"
	FallbackValue      = "Value"
	FallbackShape      = "Shape"
)

var errorColor = domain.RGB(1, 0.4, 0.4)

// Fallback draws the host's own GUI when no script entry point can run.
// It works directly on the live host state and never touches a session.
type Fallback struct {
	bridge   *Bridge
	viewport domain.Vec2
	clicks   int
	value    float64
}

// NewFallback creates a presenter for the given host state, which may be nil.
func NewFallback(state ports.HostState, viewport domain.Vec2) *Fallback {
	return &Fallback{bridge: NewBridge(state), viewport: viewport, value: 0.5}
}

// Clicks returns how often the demo button was pressed.
func (f *Fallback) Clicks() int { return f.clicks }

// Value returns the demo slider value.
func (f *Fallback) Value() float64 { return f.value }

// Draw renders the fallback window for one frame. entryPoint is the name the
// host looked for, used to explain why the fallback is showing.
func (f *Fallback) Draw(g ports.GUI, sup *Supervisor, entryPoint string) {
	g.SetNextWindowPos(domain.Vec2{X: 20, Y: 20}, gui.CondFirstUseEver)
	g.SetNextWindowSize(domain.Vec2{X: 360, Y: 320}, gui.CondFirstUseEver)
	visible := g.Begin(FallbackWindow, gui.WindowFlagsNoCollapse)
	defer g.End()
	if !visible {
		return
	}

	st := sup.Status()
	active := sup.Active()
	switch {
	case active == nil:
		g.Text("No script is loaded.")
	default:
		g.Text(fmt.Sprintf("The script does not define %s().", entryPoint))
	}
	g.Text("Edit the script and save it, or press F5 to reload.")
	g.Separator()

	g.Text("Script: " + sup.Source().Name())
	g.Text(fmt.Sprintf("Loaded: %t (generation %d)", st.Loaded, st.Generation))
	if st.LastError != nil {
		g.TextColored(errorColor, "Last error: "+st.LastError.Error())
	}

	if changed, enabled := g.Checkbox(FallbackAutoReload, st.AutoReload); changed {
		sup.SetAutoReload(enabled)
	}
	if g.Button(FallbackReload, domain.Vec2{}) {
		sup.RequestReload()
	}
	if sup.ReloadPending() {
		g.SameLine(0, -1)
		g.Text("(pending)")
	}
	g.Separator()

	if g.Button(FallbackClick, domain.Vec2{}) {
		f.clicks++
	}
	g.SameLine(0, -1)
	g.Text(fmt.Sprintf("clicked %d times", f.clicks))
	if changed, v := g.SliderFloat(FallbackValue, f.value, 0, 1); changed {
		f.value = v
	}

	if f.bridge.Reachable() && g.CollapsingHeader(FallbackShape, gui.TreeNodeFlagsDefaultOpen) {
		f.drawShape(g)
	}
}

func (f *Fallback) drawShape(g ports.GUI) {
	pos, _ := f.bridge.Position()
	maxX, maxY := f.viewport.X, f.viewport.Y
	if maxX <= 0 {
		maxX = 1000
	}
	if maxY <= 0 {
		maxY = 1000
	}
	if changed, x := g.SliderFloat("X", pos.X, 0, maxX); changed {
		f.bridge.SetPosition(x, pos.Y)
		pos.X = x
	}
	if changed, y := g.SliderFloat("Y", pos.Y, 0, maxY); changed {
		f.bridge.SetPosition(pos.X, y)
	}
	size, _ := f.bridge.Size()
	if changed, v := g.SliderFloat("Size", size, 1, 500); changed {
		f.bridge.SetSize(v)
	}
	col, _ := f.bridge.Color()
	if changed, c := g.ColorEdit4("Color", col, 0); changed {
		f.bridge.SetColor(c)
	}
	bg, _ := f.bridge.BackgroundColor()
	if changed, c := g.ColorEdit4("Background", bg, 0); changed {
		f.bridge.SetBackgroundColor(c)
	}
}
