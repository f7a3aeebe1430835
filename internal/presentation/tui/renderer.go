package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/vine/pkg/domain"
	"github.com/aretw0/vine/pkg/gui"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// NewRenderer returns a function that renders markdown using glamour.
// width <= 0 keeps glamour's default word wrap.
func NewRenderer(width int) (func(string) (string, error), error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}

// PlainRenderer returns markdown unchanged, for pipes and files.
func PlainRenderer(markdown string) (string, error) {
	return markdown, nil
}

// FrameMarkdown describes a recorded frame as markdown.
func FrameMarkdown(frame *gui.Frame) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Frame %d\n\n", frame.Number)
	if len(frame.Windows) > 0 {
		sb.WriteString("| Window | Position | Size |\n|---|---|---|\n")
		for _, w := range frame.Windows {
			fmt.Fprintf(&sb, "| %s | %g, %g | %g x %g |\n", w.Name, w.Pos.X, w.Pos.Y, w.Size.X, w.Size.Y)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("```\n")
	sb.WriteString(frame.Outline())
	if !strings.HasSuffix(frame.Outline(), "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("```\n")
	for _, r := range frame.Recovered {
		fmt.Fprintf(&sb, "\n> recovered: %s\n", r)
	}
	for _, w := range frame.Warnings {
		fmt.Fprintf(&sb, "\n> warning: %s\n", w)
	}
	return sb.String()
}

// StatusLine summarises a host status in one coloured line.
func StatusLine(w io.Writer, st domain.HostStatus) string {
	out := termenv.NewOutput(w)

	var state termenv.Style
	switch {
	case !st.Loaded:
		state = out.String("no script").Foreground(out.Color("#f87171"))
	case st.Fallback:
		state = out.String("fallback").Foreground(out.Color("#facc15"))
	default:
		state = out.String("running").Foreground(out.Color("#4ade80"))
	}

	auto := "off"
	if st.AutoReload {
		auto = "on"
	}
	line := fmt.Sprintf("%s %s | generation %d | auto-reload %s | frames %d",
		st.Script, state, st.Generation, auto, st.Frames)
	if st.LastError != "" {
		line += " | " + out.String("error: "+st.LastError).Foreground(out.Color("#f87171")).String()
	}
	return line
}
