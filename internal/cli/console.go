package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aretw0/vine"
	"github.com/aretw0/vine/internal/presentation/tui"
	"github.com/aretw0/vine/pkg/gui"
)

// CommandKind names a console command.
type CommandKind string

const (
	CmdKey      CommandKind = "key"
	CmdStatus   CommandKind = "status"
	CmdFrame    CommandKind = "frame"
	CmdInteract CommandKind = "interact"
	CmdSave     CommandKind = "save"
	CmdHelp     CommandKind = "help"
	CmdQuit     CommandKind = "quit"
)

// Command is one parsed console line.
type Command struct {
	Kind        CommandKind
	Key         vine.Key
	Interaction gui.Interaction
}

const consoleHelp = `Commands:
  r, reload, f5, ctrl+r   force a reload
  a, auto, f6             toggle auto-reload
  s, status               print the host status
  f, frame                print the last frame
  click <label>           press a button or toggle a checkbox
  set <label> <json>      give a widget a new value
  save                    save a snapshot
  q, quit                 stop the host`

// ParseCommand parses a console line. Blank lines parse to a nil command.
func ParseCommand(line string) (*Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}
	word, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(word) {
	case "r", "reload":
		return &Command{Kind: CmdKey, Key: vine.KeyF5}, nil
	case "a", "auto":
		return &Command{Kind: CmdKey, Key: vine.KeyF6}, nil
	case "s", "status":
		return &Command{Kind: CmdStatus}, nil
	case "f", "frame":
		return &Command{Kind: CmdFrame}, nil
	case "save":
		return &Command{Kind: CmdSave}, nil
	case "h", "help", "?":
		return &Command{Kind: CmdHelp}, nil
	case "q", "quit", "exit":
		return &Command{Kind: CmdQuit}, nil
	case "click":
		if rest == "" {
			return nil, fmt.Errorf("click needs a widget label")
		}
		return &Command{Kind: CmdInteract, Interaction: gui.Interaction{Action: gui.ActionClick, Label: rest}}, nil
	case "set":
		label, raw, ok := cutLast(rest)
		if !ok {
			return nil, fmt.Errorf("set needs a widget label and a value")
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		return &Command{Kind: CmdInteract, Interaction: gui.Interaction{Action: gui.ActionSet, Label: label, Value: value}}, nil
	}

	if key, err := vine.ParseKey(word); err == nil {
		return &Command{Kind: CmdKey, Key: key}, nil
	}
	return nil, fmt.Errorf("unknown command %q (type 'help')", word)
}

// cutLast splits "some label value" into "some label" and "value".
func cutLast(s string) (string, string, bool) {
	i := strings.LastIndex(s, " ")
	if i <= 0 {
		return "", "", false
	}
	return strings.TrimSpace(s[:i]), s[i+1:], true
}

// Console turns stdin lines into host input and prints host state.
type Console struct {
	host   *vine.Host
	out    io.Writer
	render func(string) (string, error)
	quit   func()

	mu   sync.Mutex
	keys []vine.Key
}

// NewConsole creates a console writing to out. quit is called on "quit".
func NewConsole(host *vine.Host, out io.Writer, render func(string) (string, error), quit func()) *Console {
	if render == nil {
		render = tui.PlainRenderer
	}
	return &Console{host: host, out: out, render: render, quit: quit}
}

// Input drains the keys typed since the last frame. It is the host's InputFunc.
func (c *Console) Input() vine.Input {
	c.mu.Lock()
	defer c.mu.Unlock()
	in := vine.Input{Keys: c.keys}
	c.keys = nil
	return in
}

// Serve reads commands from r until EOF, ctx ends or a quit command.
func (c *Console) Serve(ctx context.Context, r io.Reader) error {
	lines := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errCh <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			if err == nil {
				return io.EOF
			}
			return err
		case line := <-lines:
			if stop := c.Exec(ctx, line); stop {
				return nil
			}
		}
	}
}

// Exec runs one console line and reports whether the console should stop.
func (c *Console) Exec(ctx context.Context, line string) bool {
	cmd, err := ParseCommand(line)
	if err != nil {
		fmt.Fprintln(c.out, err)
		return false
	}
	if cmd == nil {
		return false
	}

	switch cmd.Kind {
	case CmdKey:
		c.mu.Lock()
		c.keys = append(c.keys, cmd.Key)
		c.mu.Unlock()
	case CmdStatus:
		fmt.Fprintln(c.out, tui.StatusLine(c.out, c.host.Status()))
	case CmdFrame:
		frame := c.host.LastFrame()
		if frame == nil {
			fmt.Fprintln(c.out, "no frame drawn yet")
			return false
		}
		out, err := c.render(tui.FrameMarkdown(frame))
		if err != nil {
			fmt.Fprintln(c.out, err)
			return false
		}
		fmt.Fprint(c.out, out)
	case CmdInteract:
		if err := c.host.Interact(ctx, cmd.Interaction); err != nil {
			fmt.Fprintln(c.out, err)
		}
	case CmdSave:
		if err := c.host.SaveSnapshot(ctx); err != nil {
			fmt.Fprintln(c.out, err)
			return false
		}
		printSystemMessage(c.out, "Snapshot saved.")
	case CmdHelp:
		fmt.Fprintln(c.out, consoleHelp)
	case CmdQuit:
		if c.quit != nil {
			c.quit()
		}
		return true
	}
	return false
}
