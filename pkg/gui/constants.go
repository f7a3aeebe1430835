package gui

import "github.com/aretw0/vine/pkg/domain"

// Style colour indices exposed to scripts as Gui.Col_*.
const (
	ColText             = 0
	ColWindowBg         = 2
	ColFrameBg          = 7
	ColFrameBgHovered   = 8
	ColFrameBgActive    = 9
	ColTitleBg          = 10
	ColTitleBgActive    = 11
	ColSliderGrab       = 19
	ColSliderGrabActive = 20
	ColButton           = 21
	ColButtonHovered    = 22
	ColButtonActive     = 23
	ColHeader           = 24
	ColHeaderHovered    = 25
	ColHeaderActive     = 26
)

// Style variable indices exposed as Gui.StyleVar_*.
const (
	StyleVarWindowPadding  = 2
	StyleVarWindowRounding = 3
	StyleVarFramePadding   = 11
	StyleVarFrameRounding  = 12
	StyleVarItemSpacing    = 14
	StyleVarGrabRounding   = 21
)

// Flags.
const (
	WindowFlagsNoCollapse    = 1 << 5
	WindowFlagsMenuBar       = 1 << 10
	TreeNodeFlagsDefaultOpen = 1 << 5
	ColorEditFlagsNoLabel    = 1 << 3
)

// Conditions for SetNextWindowPos and SetNextWindowSize.
const (
	CondAlways       = 1 << 0
	CondOnce         = 1 << 1
	CondFirstUseEver = 1 << 2
	CondAppearing    = 1 << 3
)

const (
	charWidth          = 7.0
	lineHeight         = 13.0
	implicitWindowName = "Debug##Default"
	labelIDSeparator   = "##"

	// MaxCommands bounds the commands recorded per frame; further calls
	// still return values but are not recorded.
	MaxCommands = 10000
)

var (
	defaultWindowPos  = domain.Vec2{X: 60, Y: 60}
	defaultWindowSize = domain.Vec2{X: 400, Y: 300}
)

// Constants lists the named constants published to scripts, keyed by the
// name they have in the Gui table.
var Constants = map[string]int{
	"Col_Text":                  ColText,
	"Col_WindowBg":              ColWindowBg,
	"Col_FrameBg":               ColFrameBg,
	"Col_FrameBgHovered":        ColFrameBgHovered,
	"Col_FrameBgActive":         ColFrameBgActive,
	"Col_TitleBg":               ColTitleBg,
	"Col_TitleBgActive":         ColTitleBgActive,
	"Col_SliderGrab":            ColSliderGrab,
	"Col_SliderGrabActive":      ColSliderGrabActive,
	"Col_Button":                ColButton,
	"Col_ButtonHovered":         ColButtonHovered,
	"Col_ButtonActive":          ColButtonActive,
	"Col_Header":                ColHeader,
	"Col_HeaderHovered":         ColHeaderHovered,
	"Col_HeaderActive":          ColHeaderActive,
	"StyleVar_WindowRounding":   StyleVarWindowRounding,
	"StyleVar_FrameRounding":    StyleVarFrameRounding,
	"StyleVar_GrabRounding":     StyleVarGrabRounding,
	"StyleVar_ItemSpacing":      StyleVarItemSpacing,
	"StyleVar_WindowPadding":    StyleVarWindowPadding,
	"StyleVar_FramePadding":     StyleVarFramePadding,
	"WindowFlags_NoCollapse":    WindowFlagsNoCollapse,
	"WindowFlags_MenuBar":       WindowFlagsMenuBar,
	"Cond_Always":               CondAlways,
	"Cond_FirstUseEver":         CondFirstUseEver,
	"TreeNodeFlags_DefaultOpen": TreeNodeFlagsDefaultOpen,
	"ColorEditFlags_NoLabel":    ColorEditFlagsNoLabel,
}
