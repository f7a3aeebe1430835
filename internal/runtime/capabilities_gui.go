package runtime

import (
	"github.com/aretw0/vine/pkg/domain"
	lua "github.com/yuin/gopher-lua"
)

func guiCap(name, signature, summary string, fn func(c *call) int) Capability {
	return Capability{Namespace: NamespaceGui, Name: name, Signature: "Gui." + signature, Summary: summary, fn: fn}
}

func guiCapabilities() []Capability {
	return []Capability{
		// Windows
		guiCap("Begin", "Begin(name [, open [, flags]]) -> visible",
			"Opens a window. Always pair with End, even when it returns false.",
			func(c *call) int {
				name := c.str(1)
				flags := c.optInt(3, 0)
				if c.failed() {
					return c.neutral(lua.LFalse)
				}
				return c.ret(lua.LBool(c.env.GUI.Begin(name, flags)))
			}),
		guiCap("End", "End()", "Closes the current window.",
			func(c *call) int {
				c.env.GUI.End()
				return 0
			}),

		// Text
		guiCap("Text", "Text(text)", "Draws a line of text.",
			func(c *call) int {
				text := c.str(1)
				if c.failed() {
					return c.neutral()
				}
				c.env.GUI.Text(text)
				return 0
			}),
		guiCap("TextColored", "TextColored(color, text)", "Draws coloured text.",
			func(c *call) int {
				col, next := c.color(1)
				text := c.str(next)
				if c.failed() {
					return c.neutral()
				}
				c.env.GUI.TextColored(col, text)
				return 0
			}),
		guiCap("BulletText", "BulletText(text)", "Draws text preceded by a bullet.",
			func(c *call) int {
				text := c.str(1)
				if c.failed() {
					return c.neutral()
				}
				c.env.GUI.BulletText(text)
				return 0
			}),

		// Buttons
		guiCap("Button", "Button(label [, width, height]) -> pressed", "Draws a button; true on the frame it is clicked.",
			func(c *call) int {
				label := c.str(1)
				var size domain.Vec2
				if c.count() > 1 {
					size = c.vec2(2)
				}
				if c.failed() {
					return c.neutral(lua.LFalse)
				}
				return c.ret(lua.LBool(c.env.GUI.Button(label, size)))
			}),
		guiCap("SmallButton", "SmallButton(label) -> pressed", "Draws a button without frame padding.",
			func(c *call) int {
				label := c.str(1)
				if c.failed() {
					return c.neutral(lua.LFalse)
				}
				return c.ret(lua.LBool(c.env.GUI.SmallButton(label)))
			}),
		guiCap("Checkbox", "Checkbox(label, value) -> changed, value", "Draws a checkbox.",
			func(c *call) int {
				label := c.str(1)
				value := c.boolean(2)
				if c.failed() {
					return c.neutral(lua.LFalse, lua.LBool(value))
				}
				changed, next := c.env.GUI.Checkbox(label, value)
				return c.ret(lua.LBool(changed), lua.LBool(next))
			}),
		guiCap("RadioButton", "RadioButton(label, active) -> pressed", "Draws a radio button.",
			func(c *call) int {
				label := c.str(1)
				active := c.boolean(2)
				if c.failed() {
					return c.neutral(lua.LFalse)
				}
				return c.ret(lua.LBool(c.env.GUI.RadioButton(label, active)))
			}),

		// Sliders
		guiCap("SliderFloat", "SliderFloat(label, value, min, max) -> changed, value", "Draws a float slider.",
			func(c *call) int {
				label := c.str(1)
				value := c.num(2)
				lo, hi := c.num(3), c.num(4)
				if c.failed() {
					return c.neutral(lua.LFalse, c.L.Get(2))
				}
				changed, next := c.env.GUI.SliderFloat(label, value, lo, hi)
				return c.ret(lua.LBool(changed), lua.LNumber(next))
			}),
		guiCap("SliderInt", "SliderInt(label, value, min, max) -> changed, value", "Draws an integer slider.",
			func(c *call) int {
				label := c.str(1)
				value := c.integer(2)
				lo, hi := c.integer(3), c.integer(4)
				if c.failed() {
					return c.neutral(lua.LFalse, c.L.Get(2))
				}
				changed, next := c.env.GUI.SliderInt(label, value, lo, hi)
				return c.ret(lua.LBool(changed), lua.LNumber(next))
			}),

		// Inputs
		guiCap("InputText", "InputText(label, text) -> changed, text", "Draws a single-line text field.",
			func(c *call) int {
				label := c.str(1)
				text := c.str(2)
				if c.failed() {
					return c.neutral(lua.LFalse, c.L.Get(2))
				}
				changed, next := c.env.GUI.InputText(label, text)
				return c.ret(lua.LBool(changed), lua.LString(next))
			}),
		guiCap("InputFloat", "InputFloat(label, value) -> changed, value", "Draws a float field.",
			func(c *call) int {
				label := c.str(1)
				value := c.num(2)
				if c.failed() {
					return c.neutral(lua.LFalse, c.L.Get(2))
				}
				changed, next := c.env.GUI.InputFloat(label, value)
				return c.ret(lua.LBool(changed), lua.LNumber(next))
			}),
		guiCap("InputInt", "InputInt(label, value) -> changed, value", "Draws an integer field.",
			func(c *call) int {
				label := c.str(1)
				value := c.integer(2)
				if c.failed() {
					return c.neutral(lua.LFalse, c.L.Get(2))
				}
				changed, next := c.env.GUI.InputInt(label, value)
				return c.ret(lua.LBool(changed), lua.LNumber(next))
			}),

		// Layout
		guiCap("Separator", "Separator()", "Draws a horizontal line.",
			func(c *call) int {
				c.env.GUI.Separator()
				return 0
			}),
		guiCap("SameLine", "SameLine([offset [, spacing]])", "Places the next item on the current line.",
			func(c *call) int {
				offset := c.optNum(1, 0)
				spacing := c.optNum(2, -1)
				if c.failed() {
					return c.neutral()
				}
				c.env.GUI.SameLine(offset, spacing)
				return 0
			}),
		guiCap("Spacing", "Spacing()", "Adds vertical space.",
			func(c *call) int {
				c.env.GUI.Spacing()
				return 0
			}),
		guiCap("Indent", "Indent([width])", "Indents following items.",
			func(c *call) int {
				width := c.optNum(1, 0)
				if c.failed() {
					return c.neutral()
				}
				c.env.GUI.Indent(width)
				return 0
			}),
		guiCap("Unindent", "Unindent([width])", "Reverts an Indent.",
			func(c *call) int {
				width := c.optNum(1, 0)
				if c.failed() {
					return c.neutral()
				}
				c.env.GUI.Unindent(width)
				return 0
			}),

		// Trees
		guiCap("TreeNode", "TreeNode(label [, flags]) -> open", "Draws a tree node; call TreePop when it returns true.",
			func(c *call) int {
				label := c.str(1)
				flags := c.optInt(2, 0)
				if c.failed() {
					return c.neutral(lua.LFalse)
				}
				return c.ret(lua.LBool(c.env.GUI.TreeNode(label, flags)))
			}),
		guiCap("TreePop", "TreePop()", "Closes the current tree node.",
			func(c *call) int {
				c.env.GUI.TreePop()
				return 0
			}),
		guiCap("CollapsingHeader", "CollapsingHeader(label [, flags]) -> open", "Draws a collapsible section header.",
			func(c *call) int {
				label := c.str(1)
				flags := c.optInt(2, 0)
				if c.failed() {
					return c.neutral(lua.LFalse)
				}
				return c.ret(lua.LBool(c.env.GUI.CollapsingHeader(label, flags)))
			}),

		// Colours
		guiCap("ColorEdit3", "ColorEdit3(label, color [, flags]) -> changed, {r, g, b}", "Draws an RGB editor.",
			func(c *call) int {
				label := c.str(1)
				col, next := c.color(2)
				flags := c.optInt(next, 0)
				if c.failed() {
					return c.neutral(lua.LFalse, c.L.Get(2))
				}
				changed, out := c.env.GUI.ColorEdit3(label, col, flags)
				c.L.Push(lua.LBool(changed))
				pushColor3(c.L, out)
				return 2
			}),
		guiCap("ColorEdit4", "ColorEdit4(label, color [, flags]) -> changed, {r, g, b, a}", "Draws an RGBA editor.",
			func(c *call) int {
				label := c.str(1)
				col, next := c.color(2)
				flags := c.optInt(next, 0)
				if c.failed() {
					return c.neutral(lua.LFalse, c.L.Get(2))
				}
				changed, out := c.env.GUI.ColorEdit4(label, col, flags)
				c.L.Push(lua.LBool(changed))
				pushColor(c.L, out)
				return 2
			}),

		// Combos
		guiCap("BeginCombo", "BeginCombo(label, preview) -> open", "Opens a combo box; call EndCombo when it returns true.",
			func(c *call) int {
				label := c.str(1)
				preview := c.str(2)
				if c.failed() {
					return c.neutral(lua.LFalse)
				}
				return c.ret(lua.LBool(c.env.GUI.BeginCombo(label, preview)))
			}),
		guiCap("EndCombo", "EndCombo()", "Closes the current combo box.",
			func(c *call) int {
				c.env.GUI.EndCombo()
				return 0
			}),
		guiCap("Selectable", "Selectable(label [, selected]) -> pressed", "Draws a selectable item.",
			func(c *call) int {
				label := c.str(1)
				selected := c.optBool(2, false)
				if c.failed() {
					return c.neutral(lua.LFalse)
				}
				return c.ret(lua.LBool(c.env.GUI.Selectable(label, selected)))
			}),

		// Menus
		guiCap("BeginMenuBar", "BeginMenuBar() -> open", "Opens the menu bar of the current window.",
			func(c *call) int {
				return c.ret(lua.LBool(c.env.GUI.BeginMenuBar()))
			}),
		guiCap("EndMenuBar", "EndMenuBar()", "Closes the menu bar.",
			func(c *call) int {
				c.env.GUI.EndMenuBar()
				return 0
			}),
		guiCap("BeginMenu", "BeginMenu(label [, enabled]) -> open", "Opens a menu; call EndMenu when it returns true.",
			func(c *call) int {
				label := c.str(1)
				enabled := c.optBool(2, true)
				if c.failed() {
					return c.neutral(lua.LFalse)
				}
				return c.ret(lua.LBool(c.env.GUI.BeginMenu(label, enabled)))
			}),
		guiCap("EndMenu", "EndMenu()", "Closes the current menu.",
			func(c *call) int {
				c.env.GUI.EndMenu()
				return 0
			}),
		guiCap("MenuItem", "MenuItem(label [, shortcut [, selected [, enabled]]]) -> pressed", "Draws a menu item.",
			func(c *call) int {
				label := c.str(1)
				shortcut := c.optStr(2, "")
				selected := c.optBool(3, false)
				enabled := c.optBool(4, true)
				if c.failed() {
					return c.neutral(lua.LFalse)
				}
				return c.ret(lua.LBool(c.env.GUI.MenuItem(label, shortcut, selected, enabled)))
			}),

		// Window geometry
		guiCap("GetWindowSize", "GetWindowSize() -> width, height", "Size of the current window.",
			func(c *call) int {
				size := c.env.GUI.WindowSize()
				return c.ret(lua.LNumber(size.X), lua.LNumber(size.Y))
			}),
		guiCap("SetWindowSize", "SetWindowSize(width, height)", "Resizes the current window.",
			func(c *call) int {
				size := c.vec2(1)
				if c.failed() {
					return c.neutral()
				}
				c.env.GUI.SetWindowSize(size)
				return 0
			}),
		guiCap("GetWindowPos", "GetWindowPos() -> x, y", "Position of the current window.",
			func(c *call) int {
				pos := c.env.GUI.WindowPos()
				return c.ret(lua.LNumber(pos.X), lua.LNumber(pos.Y))
			}),
		guiCap("SetWindowPos", "SetWindowPos(x, y)", "Moves the current window.",
			func(c *call) int {
				pos := c.vec2(1)
				if c.failed() {
					return c.neutral()
				}
				c.env.GUI.SetWindowPos(pos)
				return 0
			}),

		// Style stacks
		guiCap("PushStyleColor", "PushStyleColor(idx, r, g, b, a | idx, color_u32 | idx, color)", "Overrides a style colour until PopStyleColor.",
			func(c *call) int {
				idx := c.integer(1)
				var col domain.Color
				switch {
				case c.count() == 2:
					if _, isTable := c.L.Get(2).(*lua.LTable); isTable {
						col = c.colorTable(2)
					} else {
						col = domain.ColorFromU32(uint32(c.integer(2)))
					}
				case c.count() >= 4:
					col = c.colorLast(2)
				default:
					c.fail(0, "PushStyleColor expects either (idx, r, g, b, a) or (idx, color_u32)")
				}
				if c.failed() {
					return c.neutral()
				}
				c.env.GUI.PushStyleColor(idx, col)
				return 0
			}),
		guiCap("PopStyleColor", "PopStyleColor([count])", "Reverts style colour overrides.",
			func(c *call) int {
				count := c.optInt(1, 1)
				if c.failed() {
					return c.neutral()
				}
				c.env.GUI.PopStyleColor(count)
				return 0
			}),
		guiCap("PushStyleVar", "PushStyleVar(idx, value | idx, x, y)", "Overrides a style variable until PopStyleVar.",
			func(c *call) int {
				idx := c.integer(1)
				switch c.count() {
				case 2:
					value := c.num(2)
					if c.failed() {
						return c.neutral()
					}
					c.env.GUI.PushStyleVar(idx, value)
				case 3:
					value := c.vec2(2)
					if c.failed() {
						return c.neutral()
					}
					c.env.GUI.PushStyleVarVec2(idx, value)
				default:
					c.fail(0, "PushStyleVar expects either (idx, value) or (idx, x, y)")
					return c.neutral()
				}
				return 0
			}),
		guiCap("PopStyleVar", "PopStyleVar([count])", "Reverts style variable overrides.",
			func(c *call) int {
				count := c.optInt(1, 1)
				if c.failed() {
					return c.neutral()
				}
				c.env.GUI.PopStyleVar(count)
				return 0
			}),

		// Next window and cursor
		guiCap("SetNextWindowSize", "SetNextWindowSize(width, height [, cond])", "Sizes the next window opened with Begin.",
			func(c *call) int {
				size := c.vec2(1)
				cond := c.optInt(3, 0)
				if c.failed() {
					return c.neutral()
				}
				c.env.GUI.SetNextWindowSize(size, cond)
				return 0
			}),
		guiCap("SetNextWindowPos", "SetNextWindowPos(x, y [, cond])", "Positions the next window opened with Begin.",
			func(c *call) int {
				pos := c.vec2(1)
				cond := c.optInt(3, 0)
				if c.failed() {
					return c.neutral()
				}
				c.env.GUI.SetNextWindowPos(pos, cond)
				return 0
			}),
		guiCap("CalcTextSize", "CalcTextSize(text) -> width, height", "Measures text.",
			func(c *call) int {
				text := c.str(1)
				if c.failed() {
					return c.neutral(lua.LNumber(0), lua.LNumber(0))
				}
				size := c.env.GUI.CalcTextSize(text)
				return c.ret(lua.LNumber(size.X), lua.LNumber(size.Y))
			}),
		guiCap("GetWindowWidth", "GetWindowWidth() -> width", "Width of the current window.",
			func(c *call) int {
				return c.ret(lua.LNumber(c.env.GUI.WindowSize().X))
			}),
		guiCap("SetCursorPosX", "SetCursorPosX(x)", "Moves the layout cursor horizontally.",
			func(c *call) int {
				x := c.num(1)
				if c.failed() {
					return c.neutral()
				}
				c.env.GUI.SetCursorPosX(x)
				return 0
			}),
		guiCap("IsItemHovered", "IsItemHovered() -> hovered", "Whether the mouse is over the last item.",
			func(c *call) int {
				return c.ret(lua.LBool(c.env.GUI.IsItemHovered()))
			}),
		guiCap("SetTooltip", "SetTooltip(text)", "Shows a tooltip this frame.",
			func(c *call) int {
				text := c.str(1)
				if c.failed() {
					return c.neutral()
				}
				c.env.GUI.SetTooltip(text)
				return 0
			}),
	}
}
