package gui

import (
	"fmt"

	"github.com/aretw0/vine/pkg/domain"
)

type scopeKind string

const (
	scopeWindow  scopeKind = "window"
	scopeTree    scopeKind = "tree node"
	scopeCombo   scopeKind = "combo"
	scopeMenuBar scopeKind = "menu bar"
	scopeMenu    scopeKind = "menu"
)

var endKinds = map[scopeKind]Kind{
	scopeWindow:  KindEnd,
	scopeTree:    KindTreePop,
	scopeCombo:   KindEndCombo,
	scopeMenuBar: KindEndMenuBar,
	scopeMenu:    KindEndMenu,
}

type scope struct {
	kind  scopeKind
	label string
}

type windowState struct {
	pos       domain.Vec2
	size      domain.Vec2
	collapsed bool
	seen      bool
}

type nextValue struct {
	set   bool
	value domain.Vec2
	cond  int
}

// Recorder is a headless ports.GUI that records every call of a frame.
type Recorder struct {
	active    bool
	number    uint64
	frame     *Frame
	pending   []Interaction
	scopes    []scope
	colors    int
	vars      int
	lastItem  string
	nextPos   nextValue
	nextSize  nextValue
	windows   map[string]*windowState
	treeOpen  map[string]bool
	drawn     []string
	drawnSet  map[string]bool
	prevDrawn map[string]bool
	previous  []Window
	discarded uint64
}

// NewRecorder creates an inactive recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		windows:   make(map[string]*windowState),
		treeOpen:  make(map[string]bool),
		prevDrawn: make(map[string]bool),
	}
}

// Active reports whether a frame is open.
func (r *Recorder) Active() bool { return r.active }

// Discarded returns how many calls arrived while no frame was open.
func (r *Recorder) Discarded() uint64 { return r.discarded }

// NewFrame opens a frame. A frame left open by the previous caller is ended first.
func (r *Recorder) NewFrame(in Input) {
	if r.active {
		r.EndFrame()
	}
	r.number++
	r.frame = &Frame{Number: r.number, Mouse: in.Mouse}
	r.pending = r.pending[:0]
	for _, it := range in.Interactions {
		if err := it.Validate(); err != nil {
			r.warn("%v", err)
			continue
		}
		r.pending = append(r.pending, it)
	}
	r.drawn = nil
	r.drawnSet = make(map[string]bool)
	r.lastItem = ""
	r.nextPos = nextValue{}
	r.nextSize = nextValue{}
	r.active = true
}

// EndFrame closes the frame, recovering any scope or style push the script
// left open, and returns what was recorded. It returns nil if no frame is open.
func (r *Recorder) EndFrame() *Frame {
	if !r.active {
		return nil
	}
	for i := len(r.scopes) - 1; i >= 0; i-- {
		s := r.scopes[i]
		r.frame.Recovered = append(r.frame.Recovered, fmt.Sprintf("%s %q left open", s.kind, DisplayLabel(s.label)))
		r.scopes = r.scopes[:i]
		r.record(Command{Kind: endKinds[s.kind], Label: s.label})
	}
	if r.colors > 0 {
		r.frame.Recovered = append(r.frame.Recovered, fmt.Sprintf("%d style colour(s) left pushed", r.colors))
		r.colors = 0
	}
	if r.vars > 0 {
		r.frame.Recovered = append(r.frame.Recovered, fmt.Sprintf("%d style var(s) left pushed", r.vars))
		r.vars = 0
	}

	windows := make([]Window, 0, len(r.drawn))
	for _, name := range r.drawn {
		ws := r.windows[name]
		windows = append(windows, Window{Name: name, Pos: ws.pos, Size: ws.size})
	}
	r.frame.Windows = windows
	if len(r.pending) > 0 {
		r.frame.Unmatched = append([]Interaction(nil), r.pending...)
	}

	r.previous = windows
	r.prevDrawn = r.drawnSet
	r.active = false
	f := r.frame
	r.frame = nil
	return f
}

func (r *Recorder) inactive() bool {
	if !r.active {
		r.discarded++
		return true
	}
	return false
}

func (r *Recorder) warn(format string, args ...any) {
	r.frame.Warnings = append(r.frame.Warnings, fmt.Sprintf(format, args...))
}

func (r *Recorder) currentWindow() string {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if r.scopes[i].kind == scopeWindow {
			return r.scopes[i].label
		}
	}
	return implicitWindowName
}

func (r *Recorder) record(c Command) {
	if len(r.frame.Commands) >= MaxCommands {
		r.frame.Truncated = true
		return
	}
	if c.Window == "" {
		c.Window = DisplayLabel(r.currentWindow())
	}
	c.Depth = len(r.scopes)
	r.frame.Commands = append(r.frame.Commands, c)
}

// take consumes the first pending interaction targeting label with one of
// the given actions.
func (r *Recorder) take(label string, actions ...Action) (Interaction, bool) {
	window := r.currentWindow()
	for i, in := range r.pending {
		if !labelMatches(label, in.Label) {
			continue
		}
		if in.Window != "" && !labelMatches(window, in.Window) {
			continue
		}
		for _, a := range actions {
			if in.Action == a {
				r.pending = append(r.pending[:i], r.pending[i+1:]...)
				return in, true
			}
		}
	}
	return Interaction{}, false
}

func (r *Recorder) item(label string) {
	r.lastItem = label
}

// closeScope pops the innermost scope of the given kind, auto-closing
// anything opened inside it. It reports false if no such scope is open.
func (r *Recorder) closeScope(kind scopeKind, call string) (scope, bool) {
	idx := -1
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if r.scopes[i].kind == kind {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.warn("%s called without an open %s", call, kind)
		return scope{}, false
	}
	for i := len(r.scopes) - 1; i > idx; i-- {
		s := r.scopes[i]
		r.frame.Recovered = append(r.frame.Recovered, fmt.Sprintf("%s %q closed by %s", s.kind, DisplayLabel(s.label), call))
		r.scopes = r.scopes[:i]
		r.record(Command{Kind: endKinds[s.kind], Label: s.label})
	}
	closed := r.scopes[idx]
	r.scopes = r.scopes[:idx]
	return closed, true
}

func (r *Recorder) window(name string) *windowState {
	ws, ok := r.windows[name]
	if !ok {
		ws = &windowState{pos: defaultWindowPos, size: defaultWindowSize}
		r.windows[name] = ws
	}
	return ws
}

func (r *Recorder) applyNext(v nextValue, ws *windowState, dst *domain.Vec2, name string) {
	if !v.set {
		return
	}
	switch {
	case v.cond == 0 || v.cond&CondAlways != 0:
		*dst = v.value
	case v.cond&(CondOnce|CondFirstUseEver) != 0 && !ws.seen:
		*dst = v.value
	case v.cond&CondAppearing != 0 && !r.prevDrawn[name]:
		*dst = v.value
	}
}

// Windows

func (r *Recorder) Begin(name string, flags int) bool {
	if r.inactive() {
		return false
	}
	ws := r.window(name)
	r.applyNext(r.nextPos, ws, &ws.pos, name)
	r.applyNext(r.nextSize, ws, &ws.size, name)
	r.nextPos, r.nextSize = nextValue{}, nextValue{}
	ws.seen = true

	if in, ok := r.take(name, ActionOpen, ActionClick); ok && flags&WindowFlagsNoCollapse == 0 {
		if in.Action == ActionClick {
			ws.collapsed = !ws.collapsed
		} else {
			open, isBool := in.Value.(bool)
			ws.collapsed = isBool && !open
		}
	}

	if !r.drawnSet[name] {
		r.drawnSet[name] = true
		r.drawn = append(r.drawn, name)
	}
	r.record(Command{Kind: KindBegin, Window: DisplayLabel(name), Label: name, Flags: flags, Open: !ws.collapsed})
	r.scopes = append(r.scopes, scope{kind: scopeWindow, label: name})
	r.item(name)
	return !ws.collapsed
}

func (r *Recorder) End() {
	if r.inactive() {
		return
	}
	if closed, ok := r.closeScope(scopeWindow, "End"); ok {
		r.record(Command{Kind: KindEnd, Window: DisplayLabel(closed.label), Label: closed.label})
	}
}

func (r *Recorder) SetNextWindowSize(size domain.Vec2, cond int) {
	if r.inactive() {
		return
	}
	r.nextSize = nextValue{set: true, value: size, cond: cond}
}

func (r *Recorder) SetNextWindowPos(pos domain.Vec2, cond int) {
	if r.inactive() {
		return
	}
	r.nextPos = nextValue{set: true, value: pos, cond: cond}
}

func (r *Recorder) WindowSize() domain.Vec2 {
	if r.inactive() {
		return domain.Vec2{}
	}
	return r.window(r.currentWindow()).size
}

func (r *Recorder) SetWindowSize(size domain.Vec2) {
	if r.inactive() {
		return
	}
	r.window(r.currentWindow()).size = size
}

func (r *Recorder) WindowPos() domain.Vec2 {
	if r.inactive() {
		return domain.Vec2{}
	}
	return r.window(r.currentWindow()).pos
}

func (r *Recorder) SetWindowPos(pos domain.Vec2) {
	if r.inactive() {
		return
	}
	r.window(r.currentWindow()).pos = pos
}

// Text

func (r *Recorder) Text(text string) {
	if r.inactive() {
		return
	}
	r.record(Command{Kind: KindText, Text: text})
	r.item(text)
}

func (r *Recorder) TextColored(c domain.Color, text string) {
	if r.inactive() {
		return
	}
	r.record(Command{Kind: KindText, Text: text, Color: &c})
	r.item(text)
}

func (r *Recorder) BulletText(text string) {
	if r.inactive() {
		return
	}
	r.record(Command{Kind: KindBulletText, Text: text})
	r.item(text)
}

func (r *Recorder) CalcTextSize(text string) domain.Vec2 {
	return CalcTextSize(text)
}

// Widgets

func (r *Recorder) Button(label string, size domain.Vec2) bool {
	if r.inactive() {
		return false
	}
	_, pressed := r.take(label, ActionClick)
	c := Command{Kind: KindButton, Label: label, Changed: pressed}
	if size != (domain.Vec2{}) {
		c.Value = size
	}
	r.record(c)
	r.item(label)
	return pressed
}

func (r *Recorder) SmallButton(label string) bool {
	if r.inactive() {
		return false
	}
	_, pressed := r.take(label, ActionClick)
	r.record(Command{Kind: KindButton, Label: label, Text: "small", Changed: pressed})
	r.item(label)
	return pressed
}

func (r *Recorder) Checkbox(label string, value bool) (bool, bool) {
	if r.inactive() {
		return false, value
	}
	next := value
	if in, ok := r.take(label, ActionClick, ActionSet); ok {
		if in.Action == ActionClick {
			next = !value
		} else if b, isBool := in.Value.(bool); isBool {
			next = b
		} else {
			r.warn("checkbox %q: set needs a bool, got %T", DisplayLabel(label), in.Value)
		}
	}
	changed := next != value
	r.record(Command{Kind: KindCheckbox, Label: label, Value: next, Changed: changed})
	r.item(label)
	return changed, next
}

func (r *Recorder) RadioButton(label string, active bool) bool {
	if r.inactive() {
		return false
	}
	_, pressed := r.take(label, ActionClick)
	r.record(Command{Kind: KindRadioButton, Label: label, Value: active, Changed: pressed})
	r.item(label)
	return pressed
}

func (r *Recorder) SliderFloat(label string, value, min, max float64) (bool, float64) {
	if r.inactive() {
		return false, value
	}
	next := value
	if in, ok := r.take(label, ActionSet); ok {
		if f, isNum := asFloat(in.Value); isNum {
			next = clamp(f, min, max)
		} else {
			r.warn("slider %q: set needs a number, got %T", DisplayLabel(label), in.Value)
		}
	}
	changed := next != value
	r.record(Command{Kind: KindSlider, Label: label, Value: next, Changed: changed})
	r.item(label)
	return changed, next
}

func (r *Recorder) SliderInt(label string, value, min, max int) (bool, int) {
	if r.inactive() {
		return false, value
	}
	next := value
	if in, ok := r.take(label, ActionSet); ok {
		if n, isNum := asInt(in.Value); isNum {
			next = int(clamp(float64(n), float64(min), float64(max)))
		} else {
			r.warn("slider %q: set needs a number, got %T", DisplayLabel(label), in.Value)
		}
	}
	changed := next != value
	r.record(Command{Kind: KindSlider, Label: label, Value: next, Changed: changed})
	r.item(label)
	return changed, next
}

func (r *Recorder) InputText(label, value string) (bool, string) {
	if r.inactive() {
		return false, value
	}
	next := value
	if in, ok := r.take(label, ActionSet); ok {
		if s, isString := in.Value.(string); isString {
			next = s
		} else {
			next = fmt.Sprint(in.Value)
		}
	}
	changed := next != value
	r.record(Command{Kind: KindInput, Label: label, Value: next, Changed: changed})
	r.item(label)
	return changed, next
}

func (r *Recorder) InputFloat(label string, value float64) (bool, float64) {
	if r.inactive() {
		return false, value
	}
	next := value
	if in, ok := r.take(label, ActionSet); ok {
		if f, isNum := asFloat(in.Value); isNum {
			next = f
		} else {
			r.warn("input %q: set needs a number, got %T", DisplayLabel(label), in.Value)
		}
	}
	changed := next != value
	r.record(Command{Kind: KindInput, Label: label, Value: next, Changed: changed})
	r.item(label)
	return changed, next
}

func (r *Recorder) InputInt(label string, value int) (bool, int) {
	if r.inactive() {
		return false, value
	}
	next := value
	if in, ok := r.take(label, ActionSet); ok {
		if n, isNum := asInt(in.Value); isNum {
			next = n
		} else {
			r.warn("input %q: set needs a number, got %T", DisplayLabel(label), in.Value)
		}
	}
	changed := next != value
	r.record(Command{Kind: KindInput, Label: label, Value: next, Changed: changed})
	r.item(label)
	return changed, next
}

func (r *Recorder) colorEdit(label string, c domain.Color, flags int, keepAlpha bool) (bool, domain.Color) {
	if r.inactive() {
		return false, c
	}
	next := c
	if in, ok := r.take(label, ActionSet); ok {
		if col, valid := asColor(in.Value, c); valid {
			next = col
			if keepAlpha {
				next.A = c.A
			}
		} else {
			r.warn("colour edit %q: cannot use %v as a colour", DisplayLabel(label), in.Value)
		}
	}
	changed := next != c
	r.record(Command{Kind: KindColorEdit, Label: label, Color: &next, Flags: flags, Changed: changed})
	r.item(label)
	return changed, next
}

func (r *Recorder) ColorEdit3(label string, c domain.Color, flags int) (bool, domain.Color) {
	return r.colorEdit(label, c, flags, true)
}

func (r *Recorder) ColorEdit4(label string, c domain.Color, flags int) (bool, domain.Color) {
	return r.colorEdit(label, c, flags, false)
}

func (r *Recorder) IsItemHovered() bool {
	if r.inactive() || r.lastItem == "" {
		return false
	}
	_, hovered := r.take(r.lastItem, ActionHover)
	return hovered
}

func (r *Recorder) SetTooltip(text string) {
	if r.inactive() {
		return
	}
	r.record(Command{Kind: KindTooltip, Text: text})
}

// Layout

func (r *Recorder) Separator() {
	if r.inactive() {
		return
	}
	r.record(Command{Kind: KindSeparator})
}

func (r *Recorder) SameLine(offset, spacing float64) {
	if r.inactive() {
		return
	}
	c := Command{Kind: KindSameLine}
	if offset != 0 || spacing >= 0 {
		c.Value = []float64{offset, spacing}
	}
	r.record(c)
}

func (r *Recorder) Spacing() {
	if r.inactive() {
		return
	}
	r.record(Command{Kind: KindSpacing})
}

func (r *Recorder) Indent(width float64) {
	if r.inactive() {
		return
	}
	r.record(Command{Kind: KindIndent, Value: width})
}

func (r *Recorder) Unindent(width float64) {
	if r.inactive() {
		return
	}
	r.record(Command{Kind: KindUnindent, Value: width})
}

func (r *Recorder) SetCursorPosX(x float64) {
	if r.inactive() {
		return
	}
	r.record(Command{Kind: KindCursor, Value: x})
}

// Trees, combos and menus

func (r *Recorder) openState(label string, flags int) bool {
	key := r.currentWindow() + "/" + label
	open, known := r.treeOpen[key]
	if !known {
		open = flags&TreeNodeFlagsDefaultOpen != 0
	}
	if in, ok := r.take(label, ActionClick, ActionOpen); ok {
		if in.Action == ActionClick {
			open = !open
		} else {
			b, isBool := in.Value.(bool)
			open = !isBool || b
		}
	}
	r.treeOpen[key] = open
	return open
}

func (r *Recorder) TreeNode(label string, flags int) bool {
	if r.inactive() {
		return false
	}
	open := r.openState(label, flags)
	r.record(Command{Kind: KindTreeNode, Label: label, Flags: flags, Open: open})
	r.item(label)
	if open {
		r.scopes = append(r.scopes, scope{kind: scopeTree, label: label})
	}
	return open
}

func (r *Recorder) TreePop() {
	if r.inactive() {
		return
	}
	if closed, ok := r.closeScope(scopeTree, "TreePop"); ok {
		r.record(Command{Kind: KindTreePop, Label: closed.label})
	}
}

func (r *Recorder) CollapsingHeader(label string, flags int) bool {
	if r.inactive() {
		return false
	}
	open := r.openState(label, flags)
	r.record(Command{Kind: KindHeader, Label: label, Flags: flags, Open: open})
	r.item(label)
	return open
}

func (r *Recorder) popupOpen(label string) bool {
	in, ok := r.take(label, ActionClick, ActionOpen)
	if !ok {
		return false
	}
	b, isBool := in.Value.(bool)
	return !isBool || b
}

func (r *Recorder) BeginCombo(label, preview string) bool {
	if r.inactive() {
		return false
	}
	open := r.popupOpen(label)
	r.record(Command{Kind: KindCombo, Label: label, Text: preview, Open: open})
	r.item(label)
	if open {
		r.scopes = append(r.scopes, scope{kind: scopeCombo, label: label})
	}
	return open
}

func (r *Recorder) EndCombo() {
	if r.inactive() {
		return
	}
	if closed, ok := r.closeScope(scopeCombo, "EndCombo"); ok {
		r.record(Command{Kind: KindEndCombo, Label: closed.label})
	}
}

func (r *Recorder) Selectable(label string, selected bool) bool {
	if r.inactive() {
		return false
	}
	_, pressed := r.take(label, ActionClick)
	r.record(Command{Kind: KindSelectable, Label: label, Value: selected, Changed: pressed})
	r.item(label)
	return pressed
}

func (r *Recorder) BeginMenuBar() bool {
	if r.inactive() {
		return false
	}
	if len(r.scopes) == 0 || r.scopes[len(r.scopes)-1].kind != scopeWindow {
		r.warn("BeginMenuBar called outside a window")
		return false
	}
	r.record(Command{Kind: KindMenuBar})
	r.scopes = append(r.scopes, scope{kind: scopeMenuBar, label: r.currentWindow()})
	return true
}

func (r *Recorder) EndMenuBar() {
	if r.inactive() {
		return
	}
	if _, ok := r.closeScope(scopeMenuBar, "EndMenuBar"); ok {
		r.record(Command{Kind: KindEndMenuBar})
	}
}

func (r *Recorder) BeginMenu(label string, enabled bool) bool {
	if r.inactive() {
		return false
	}
	open := enabled && r.popupOpen(label)
	r.record(Command{Kind: KindMenu, Label: label, Open: open})
	r.item(label)
	if open {
		r.scopes = append(r.scopes, scope{kind: scopeMenu, label: label})
	}
	return open
}

func (r *Recorder) EndMenu() {
	if r.inactive() {
		return
	}
	if closed, ok := r.closeScope(scopeMenu, "EndMenu"); ok {
		r.record(Command{Kind: KindEndMenu, Label: closed.label})
	}
}

func (r *Recorder) MenuItem(label, shortcut string, selected, enabled bool) bool {
	if r.inactive() {
		return false
	}
	pressed := false
	if enabled {
		_, pressed = r.take(label, ActionClick)
	}
	r.record(Command{Kind: KindMenuItem, Label: label, Text: shortcut, Value: selected, Changed: pressed})
	r.item(label)
	return pressed
}

// Style stacks

func (r *Recorder) PushStyleColor(idx int, c domain.Color) {
	if r.inactive() {
		return
	}
	r.colors++
	r.record(Command{Kind: KindPushStyleColor, Index: idx, Color: &c})
}

func (r *Recorder) PopStyleColor(count int) {
	if r.inactive() {
		return
	}
	if count > r.colors {
		r.warn("PopStyleColor(%d) with only %d pushed", count, r.colors)
		count = r.colors
	}
	if count <= 0 {
		return
	}
	r.colors -= count
	r.record(Command{Kind: KindPopStyleColor, Value: count})
}

func (r *Recorder) PushStyleVar(idx int, value float64) {
	if r.inactive() {
		return
	}
	r.vars++
	r.record(Command{Kind: KindPushStyleVar, Index: idx, Value: value})
}

func (r *Recorder) PushStyleVarVec2(idx int, value domain.Vec2) {
	if r.inactive() {
		return
	}
	r.vars++
	r.record(Command{Kind: KindPushStyleVar, Index: idx, Value: value})
}

func (r *Recorder) PopStyleVar(count int) {
	if r.inactive() {
		return
	}
	if count > r.vars {
		r.warn("PopStyleVar(%d) with only %d pushed", count, r.vars)
		count = r.vars
	}
	if count <= 0 {
		return
	}
	r.vars -= count
	r.record(Command{Kind: KindPopStyleVar, Value: count})
}

// WantCaptureMouse reports whether the mouse of the current frame is over a
// window drawn in the previous frame.
func (r *Recorder) WantCaptureMouse() bool {
	if r.frame == nil {
		return false
	}
	for _, w := range r.previous {
		if w.Contains(r.frame.Mouse.Pos) {
			return true
		}
	}
	return false
}

func clamp(v, min, max float64) float64 {
	if min >= max {
		return v
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
