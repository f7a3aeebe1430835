package vine

import (
	"fmt"
	"strings"

	"github.com/aretw0/vine/pkg/gui"
)

// Key is a host key command. Keys never reach the script.
type Key string

const (
	// KeyF5 forces a reload.
	KeyF5 Key = "F5"
	// KeyCtrlR forces a reload.
	KeyCtrlR Key = "Ctrl+R"
	// KeyF6 toggles auto-reload.
	KeyF6 Key = "F6"
)

// ParseKey accepts the key names used on the console ("f5", "ctrl+r", ...).
func ParseKey(s string) (Key, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "f5":
		return KeyF5, nil
	case "f6":
		return KeyF6, nil
	case "ctrl+r", "ctrl-r", "^r":
		return KeyCtrlR, nil
	default:
		return "", fmt.Errorf("unknown key %q", s)
	}
}

// Input is everything the host receives for one frame.
type Input struct {
	Mouse        gui.Mouse
	Keys         []Key
	Interactions []gui.Interaction
}
