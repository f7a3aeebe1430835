package runtime

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
)

func appCap(name, signature, summary string, fn func(c *call) int) Capability {
	return Capability{Namespace: NamespaceApp, Name: name, Signature: "App." + signature, Summary: summary, fn: fn}
}

func appCapabilities() []Capability {
	return []Capability{
		appCap("SetPosition", "SetPosition(x, y)", "Moves the managed shape.",
			func(c *call) int {
				x, y := c.num(1), c.num(2)
				if c.failed() {
					return c.neutral()
				}
				c.env.Bridge.SetPosition(x, y)
				return 0
			}),
		appCap("SetSize", "SetSize(size)", "Resizes the managed shape; sizes <= 0 become 1.",
			func(c *call) int {
				size := c.num(1)
				if c.failed() {
					return c.neutral()
				}
				c.env.Bridge.SetSize(size)
				return 0
			}),
		appCap("SetColor", "SetColor(r, g, b [, a] | color)", "Recolours the managed shape. Components are not clamped.",
			func(c *call) int {
				col := c.colorLast(1)
				if c.failed() {
					return c.neutral()
				}
				c.env.Bridge.SetColor(col)
				return 0
			}),
		appCap("GetPosition", "GetPosition() -> x, y", "Position of the managed shape, or nil.",
			func(c *call) int {
				pos, ok := c.env.Bridge.Position()
				if !ok {
					return c.ret(lua.LNil)
				}
				return c.ret(lua.LNumber(pos.X), lua.LNumber(pos.Y))
			}),
		appCap("GetSize", "GetSize() -> size", "Size of the managed shape, or nil.",
			func(c *call) int {
				size, ok := c.env.Bridge.Size()
				if !ok {
					return c.ret(lua.LNil)
				}
				return c.ret(lua.LNumber(size))
			}),
		appCap("GetColor", "GetColor() -> {r, g, b, a}", "Colour of the managed shape, or nil.",
			func(c *call) int {
				col, ok := c.env.Bridge.Color()
				if !ok {
					return c.ret(lua.LNil)
				}
				pushColor(c.L, col)
				return 1
			}),
		appCap("SetBackgroundColor", "SetBackgroundColor(r, g, b [, a] | color)", "Sets the clear colour of the viewport.",
			func(c *call) int {
				col := c.colorLast(1)
				if c.failed() {
					return c.neutral()
				}
				c.env.Bridge.SetBackgroundColor(col)
				return 0
			}),
		appCap("GetBackgroundColor", "GetBackgroundColor() -> {r, g, b, a}", "Clear colour of the viewport, or nil.",
			func(c *call) int {
				col, ok := c.env.Bridge.BackgroundColor()
				if !ok {
					return c.ret(lua.LNil)
				}
				pushColor(c.L, col)
				return 1
			}),
		appCap("GetWindowSize", "GetWindowSize() -> width, height", "Size of the host viewport.",
			func(c *call) int {
				return c.ret(lua.LNumber(c.env.Viewport.X), lua.LNumber(c.env.Viewport.Y))
			}),
		appCap("Log", "Log(...)", "Writes its arguments to the host log.",
			func(c *call) int {
				parts := make([]string, 0, c.count())
				for i := 1; i <= c.count(); i++ {
					parts = append(parts, c.L.ToStringMeta(c.L.Get(i)).String())
				}
				if c.env.Logger != nil {
					c.env.Logger.Info("script log", "script", c.env.Script, "msg", strings.Join(parts, " "))
				}
				return 0
			}),
		appCap("LastError", "LastError() -> message", "Message of the last malformed capability call, or nil.",
			func(c *call) int {
				if err := c.env.LastArgumentError(); err != nil {
					return c.ret(lua.LString(err.Error()))
				}
				return c.ret(lua.LNil)
			}),
	}
}
