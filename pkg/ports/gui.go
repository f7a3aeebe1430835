package ports

import "github.com/aretw0/vine/pkg/domain"

// GUI is the immediate-mode drawing API exposed to scripts as Gui.*.
// Calls are only meaningful between a backend's frame begin and end; the
// backend decides what they do outside a frame.
//
// Widgets that edit a value take the current value and return whether it
// changed together with the (possibly new) value.
type GUI interface {
	// Windows
	Begin(name string, flags int) bool
	End()
	SetNextWindowSize(size domain.Vec2, cond int)
	SetNextWindowPos(pos domain.Vec2, cond int)
	WindowSize() domain.Vec2
	SetWindowSize(size domain.Vec2)
	WindowPos() domain.Vec2
	SetWindowPos(pos domain.Vec2)

	// Text
	Text(text string)
	TextColored(c domain.Color, text string)
	BulletText(text string)
	CalcTextSize(text string) domain.Vec2

	// Widgets
	Button(label string, size domain.Vec2) bool
	SmallButton(label string) bool
	Checkbox(label string, value bool) (bool, bool)
	RadioButton(label string, active bool) bool
	SliderFloat(label string, value, min, max float64) (bool, float64)
	SliderInt(label string, value, min, max int) (bool, int)
	InputText(label, value string) (bool, string)
	InputFloat(label string, value float64) (bool, float64)
	InputInt(label string, value int) (bool, int)
	ColorEdit3(label string, c domain.Color, flags int) (bool, domain.Color)
	ColorEdit4(label string, c domain.Color, flags int) (bool, domain.Color)
	IsItemHovered() bool
	SetTooltip(text string)

	// Layout
	Separator()
	SameLine(offset, spacing float64)
	Spacing()
	Indent(width float64)
	Unindent(width float64)
	SetCursorPosX(x float64)

	// Trees, combos and menus
	TreeNode(label string, flags int) bool
	TreePop()
	CollapsingHeader(label string, flags int) bool
	BeginCombo(label, preview string) bool
	EndCombo()
	Selectable(label string, selected bool) bool
	BeginMenuBar() bool
	EndMenuBar()
	BeginMenu(label string, enabled bool) bool
	EndMenu()
	MenuItem(label, shortcut string, selected, enabled bool) bool

	// Style stacks
	PushStyleColor(idx int, c domain.Color)
	PopStyleColor(count int)
	PushStyleVar(idx int, value float64)
	PushStyleVarVec2(idx int, value domain.Vec2)
	PopStyleVar(count int)

	// WantCaptureMouse reports whether the mouse is over GUI content, in
	// which case the host must not act on it.
	WantCaptureMouse() bool
}
