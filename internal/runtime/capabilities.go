package runtime

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/aretw0/vine/pkg/domain"
	"github.com/aretw0/vine/pkg/gui"
	"github.com/aretw0/vine/pkg/ports"
	lua "github.com/yuin/gopher-lua"
)

// APIVersion is bumped whenever the capability surface changes incompatibly.
// Scripts can read it as App.API_VERSION.
const APIVersion = 1

// Namespaces of the capability surface.
const (
	NamespaceGui = "Gui"
	NamespaceApp = "App"

	// guiAlias is the second global name of the Gui table.
	guiAlias = "ImGui"
)

// Capability is one native function callable from scripts.
type Capability struct {
	Namespace string
	Name      string
	Signature string
	Summary   string
	fn        func(c *call) int
}

// Qualified returns the name scripts use, e.g. "Gui.Button".
func (c Capability) Qualified() string {
	return c.Namespace + "." + c.Name
}

// Env is what capabilities of one session reach when they run.
type Env struct {
	GUI      ports.GUI
	Bridge   *Bridge
	Viewport domain.Vec2
	Strict   bool
	Logger   *slog.Logger
	Script   string

	// OnArgumentError is told about every malformed call before it returns.
	OnArgumentError func(err *domain.CapabilityArgumentError)

	lastArgErr *domain.CapabilityArgumentError
}

// LastArgumentError returns the most recent malformed call of the session.
func (e *Env) LastArgumentError() *domain.CapabilityArgumentError {
	return e.lastArgErr
}

func (e *Env) argumentError(err *domain.CapabilityArgumentError) {
	e.lastArgErr = err
	if e.Logger != nil {
		e.Logger.Warn("capability argument error", "capability", err.Capability, "script", e.Script, "err", err)
	}
	if e.OnArgumentError != nil {
		e.OnArgumentError(err)
	}
}

// call is the per-invocation view a capability works with.
type call struct {
	*args
	env *Env
}

// neutral finishes a call whose arguments were malformed: the error is
// reported and the neutral results are returned, or in strict mode the
// error is raised into the script.
func (c *call) neutral(results ...lua.LValue) int {
	c.env.argumentError(c.err)
	if c.env.Strict {
		c.L.RaiseError("%s", c.err.Error())
		return 0
	}
	for _, v := range results {
		c.L.Push(v)
	}
	return len(results)
}

// ret pushes results and returns their count.
func (c *call) ret(results ...lua.LValue) int {
	for _, v := range results {
		c.L.Push(v)
	}
	return len(results)
}

// Table is the fixed set of capabilities and constants installed into every
// session.
type Table struct {
	caps   []Capability
	consts map[string]int
}

// DefaultTable returns the Gui and App capability surface.
func DefaultTable() *Table {
	t := &Table{consts: gui.Constants}
	t.caps = append(t.caps, guiCapabilities()...)
	t.caps = append(t.caps, appCapabilities()...)
	return t
}

// Capabilities returns every capability in installation order.
func (t *Table) Capabilities() []Capability {
	return append([]Capability(nil), t.caps...)
}

// Lookup finds a capability by its qualified name.
func (t *Table) Lookup(qualified string) (Capability, bool) {
	for _, c := range t.caps {
		if c.Qualified() == qualified {
			return c, true
		}
	}
	return Capability{}, false
}

// Constants returns the Gui constants sorted by name.
func (t *Table) Constants() []string {
	names := make([]string, 0, len(t.consts))
	for name := range t.consts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Install registers the namespaces as globals of L, binding every function to env.
func (t *Table) Install(L *lua.LState, env *Env) {
	namespaces := map[string]*lua.LTable{
		NamespaceGui: L.NewTable(),
		NamespaceApp: L.NewTable(),
	}
	for _, capability := range t.caps {
		capability := capability
		name := capability.Qualified()
		L.SetField(namespaces[capability.Namespace], capability.Name, L.NewFunction(func(L *lua.LState) int {
			return capability.fn(&call{args: newArgs(L, name), env: env})
		}))
	}

	guiTable := namespaces[NamespaceGui]
	for _, name := range t.Constants() {
		L.SetField(guiTable, name, lua.LNumber(t.consts[name]))
	}
	L.SetField(namespaces[NamespaceApp], "API_VERSION", lua.LNumber(APIVersion))

	L.SetGlobal(NamespaceGui, guiTable)
	L.SetGlobal(guiAlias, guiTable)
	L.SetGlobal(NamespaceApp, namespaces[NamespaceApp])
}

// Reference renders the capability surface as Markdown.
func (t *Table) Reference() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Capability reference (API %d)\n\n", APIVersion)
	sb.WriteString("Scripts define `draw_gui()` (called every frame) and optionally ")
	sb.WriteString("`OnHostShapePositionUpdated(x, y)` (called when the host moves the shape).\n")
	sb.WriteString("Colours are `{r, g, b[, a]}` tables or positional numbers; alpha defaults to 1.\n")

	for _, ns := range []string{NamespaceGui, NamespaceApp} {
		fmt.Fprintf(&sb, "\n## %s\n\n", ns)
		if ns == NamespaceGui {
			fmt.Fprintf(&sb, "Also available as `%s`.\n\n", guiAlias)
		}
		sb.WriteString("| Function | Description |\n|---|---|\n")
		for _, c := range t.caps {
			if c.Namespace != ns {
				continue
			}
			fmt.Fprintf(&sb, "| `%s` | %s |\n", c.Signature, c.Summary)
		}
	}

	sb.WriteString("\n## Constants\n\n")
	for _, name := range t.Constants() {
		fmt.Fprintf(&sb, "- `Gui.%s` = %d\n", name, t.consts[name])
	}
	return sb.String()
}
