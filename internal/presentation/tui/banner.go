package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the vine banner, coloured when w is a colour terminal.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text, color string
	}{
		{`        _            `, "#86efac"},
		{` __   _(_)_ __   ___ `, "#4ade80"},
		{` \ \ / / | '_ \ / _ \`, "#22c55e"},
		{`  \ V /| | | | |  __/`, "#16a34a"},
		{`   \_/ |_|_| |_|\___|`, "#15803d"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("   live-reloading Lua GUI host "+version).Faint())
	fmt.Fprintln(w)
}
