package gui

import (
	"fmt"
	"math"
	"strings"

	"github.com/aretw0/vine/pkg/domain"
)

// Kind identifies a recorded command.
type Kind string

const (
	KindBegin          Kind = "begin"
	KindEnd            Kind = "end"
	KindText           Kind = "text"
	KindBulletText     Kind = "bullet_text"
	KindButton         Kind = "button"
	KindCheckbox       Kind = "checkbox"
	KindRadioButton    Kind = "radio_button"
	KindSlider         Kind = "slider"
	KindInput          Kind = "input"
	KindColorEdit      Kind = "color_edit"
	KindSeparator      Kind = "separator"
	KindSameLine       Kind = "same_line"
	KindSpacing        Kind = "spacing"
	KindIndent         Kind = "indent"
	KindUnindent       Kind = "unindent"
	KindCursor         Kind = "cursor"
	KindTreeNode       Kind = "tree_node"
	KindTreePop        Kind = "tree_pop"
	KindHeader         Kind = "collapsing_header"
	KindCombo          Kind = "combo"
	KindEndCombo       Kind = "end_combo"
	KindSelectable     Kind = "selectable"
	KindMenuBar        Kind = "menu_bar"
	KindEndMenuBar     Kind = "end_menu_bar"
	KindMenu           Kind = "menu"
	KindEndMenu        Kind = "end_menu"
	KindMenuItem       Kind = "menu_item"
	KindTooltip        Kind = "tooltip"
	KindPushStyleColor Kind = "push_style_color"
	KindPopStyleColor  Kind = "pop_style_color"
	KindPushStyleVar   Kind = "push_style_var"
	KindPopStyleVar    Kind = "pop_style_var"
)

// Command is one recorded GUI call.
type Command struct {
	Kind    Kind          `json:"kind"`
	Window  string        `json:"window,omitempty"`
	Depth   int           `json:"depth"`
	Label   string        `json:"label,omitempty"`
	Text    string        `json:"text,omitempty"`
	Value   any           `json:"value,omitempty"`
	Color   *domain.Color `json:"color,omitempty"`
	Flags   int           `json:"flags,omitempty"`
	Index   int           `json:"index,omitempty"`
	Open    bool          `json:"open,omitempty"`
	Changed bool          `json:"changed,omitempty"`
}

// Window is the geometry of a window drawn during a frame.
type Window struct {
	Name string      `json:"name"`
	Pos  domain.Vec2 `json:"pos"`
	Size domain.Vec2 `json:"size"`
}

// Contains reports whether p lies inside the window rectangle.
func (w Window) Contains(p domain.Vec2) bool {
	return p.X >= w.Pos.X && p.X <= w.Pos.X+w.Size.X &&
		p.Y >= w.Pos.Y && p.Y <= w.Pos.Y+w.Size.Y
}

// Frame is everything recorded between NewFrame and EndFrame.
type Frame struct {
	Number    uint64        `json:"number"`
	Mouse     Mouse         `json:"mouse"`
	Commands  []Command     `json:"commands"`
	Windows   []Window      `json:"windows"`
	Recovered []string      `json:"recovered,omitempty"`
	Warnings  []string      `json:"warnings,omitempty"`
	Unmatched []Interaction `json:"unmatched,omitempty"`
	Truncated bool          `json:"truncated,omitempty"`
}

// Find returns the first command of the given kind whose label (or text,
// for text commands) equals label, ignoring any "##id" suffix.
func (f *Frame) Find(kind Kind, label string) (Command, bool) {
	for _, c := range f.Commands {
		if c.Kind != kind {
			continue
		}
		if labelMatches(c.Label, label) || c.Text == label {
			return c, true
		}
	}
	return Command{}, false
}

// Texts returns the text of every text-like command in order.
func (f *Frame) Texts() []string {
	var out []string
	for _, c := range f.Commands {
		switch c.Kind {
		case KindText, KindBulletText:
			out = append(out, c.Text)
		}
	}
	return out
}

// HasWindow reports whether a window with the given name was drawn.
func (f *Frame) HasWindow(name string) bool {
	for _, w := range f.Windows {
		if labelMatches(w.Name, name) {
			return true
		}
	}
	return false
}

// Outline renders the frame as an indented plain-text tree, one command per line.
func (f *Frame) Outline() string {
	var sb strings.Builder
	for _, c := range f.Commands {
		sb.WriteString(strings.Repeat("  ", c.Depth))
		sb.WriteString(string(c.Kind))
		if c.Label != "" {
			fmt.Fprintf(&sb, " %q", DisplayLabel(c.Label))
		}
		if c.Text != "" {
			fmt.Fprintf(&sb, " %s", c.Text)
		}
		if c.Value != nil {
			fmt.Fprintf(&sb, " = %v", c.Value)
		}
		if c.Changed {
			sb.WriteString(" (changed)")
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Mouse is the pointer state for a frame, in viewport coordinates.
type Mouse struct {
	Pos  domain.Vec2 `json:"pos"`
	Down bool        `json:"down"`
}

// Action names what an Interaction does to a widget.
type Action string

const (
	// ActionClick presses a button, toggles a checkbox or tree node, selects
	// a selectable or menu item, and opens a combo or menu.
	ActionClick Action = "click"
	// ActionSet gives an editable widget a new value.
	ActionSet Action = "set"
	// ActionHover makes IsItemHovered true for the widget.
	ActionHover Action = "hover"
	// ActionOpen sets the open state of a tree node, header or window
	// (Value false collapses).
	ActionOpen Action = "open"
)

// Interaction is a simulated user action targeting a widget by label.
// Window, when set, restricts the match to widgets inside that window.
type Interaction struct {
	Action Action `json:"action" mapstructure:"action"`
	Label  string `json:"label" mapstructure:"label"`
	Window string `json:"window,omitempty" mapstructure:"window"`
	Value  any    `json:"value,omitempty" mapstructure:"value"`
}

// Validate checks that the interaction can ever match.
func (in Interaction) Validate() error {
	switch in.Action {
	case ActionClick, ActionSet, ActionHover, ActionOpen:
	default:
		return fmt.Errorf("unknown interaction action %q", in.Action)
	}
	if in.Label == "" {
		return fmt.Errorf("interaction %s needs a label", in.Action)
	}
	return nil
}

// Input is what the host feeds the recorder at the start of a frame.
type Input struct {
	Mouse        Mouse
	Interactions []Interaction
}

// DisplayLabel strips the "##id" suffix from a label.
func DisplayLabel(label string) string {
	if i := strings.Index(label, labelIDSeparator); i >= 0 {
		return label[:i]
	}
	return label
}

func labelMatches(label, want string) bool {
	return label == want || DisplayLabel(label) == want
}

// CalcTextSize measures text with the recorder's fixed-width font metrics.
func CalcTextSize(text string) domain.Vec2 {
	text = DisplayLabel(text)
	lines := strings.Split(text, "\n")
	widest := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > widest {
			widest = n
		}
	}
	return domain.Vec2{X: float64(widest) * charWidth, Y: float64(len(lines)) * lineHeight}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}

func asInt(v any) (int, bool) {
	f, ok := asFloat(v)
	if !ok {
		return 0, false
	}
	return int(math.Round(f)), true
}

func asColor(v any, base domain.Color) (domain.Color, bool) {
	switch c := v.(type) {
	case domain.Color:
		return c, true
	case []float64:
		col, err := domain.ColorFromSlice(c)
		return col, err == nil
	case []any:
		nums := make([]float64, 0, len(c))
		for _, x := range c {
			f, ok := asFloat(x)
			if !ok {
				return base, false
			}
			nums = append(nums, f)
		}
		col, err := domain.ColorFromSlice(nums)
		return col, err == nil
	case map[string]any:
		out := base
		for key, dst := range map[string]*float64{"r": &out.R, "g": &out.G, "b": &out.B, "a": &out.A} {
			if x, ok := c[key]; ok {
				f, ok := asFloat(x)
				if !ok {
					return base, false
				}
				*dst = f
			}
		}
		return out, true
	default:
		return base, false
	}
}
