/*
Package vine hosts a Lua script that draws an immediate-mode GUI and drives a
small piece of host state (one shape and a background colour), and reloads
that script while the host keeps running.

# Concept

The host owns the frame loop. Every frame it asks the active interpreter
session to run the script's entry point (draw_gui by default), which calls
back into the host through a fixed table of capabilities: Gui.* for widgets
and App.* for host state. When the script file changes, a fresh session is
built and validated beside the running one; only a session that loads and
executes cleanly replaces it. A broken edit leaves the previous script
running and is reported, and when no usable script exists at all the host
draws its own fallback window.

# Key Features

  - Transactional reload: Load-time writes to host state are staged and only
    applied when the new session is committed.
  - Error isolation: Script errors are caught per call; GUI state left open by
    a failing call is closed so the next frame starts clean.
  - Host-owned input: Dragging the shape and the reload keys (F5, Ctrl+R, F6)
    are handled by the host, never by the script.
  - Remote control: HTTP and MCP adapters talk to the host through a
    queue serviced by the frame loop, so no other goroutine touches Lua.

# Usage

	host, err := vine.New(
		vine.WithScriptPath("gui.lua"),
		vine.WithLogger(logging.New(slog.LevelInfo)),
	)
	if err != nil {
		log.Fatal(err)
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := host.Run(ctx, 60, nil); err != nil {
		log.Fatal(err)
	}

Frames can also be driven by hand, which is how tests and headless tools use
the host:

	frame := host.Frame(ctx, vine.Input{Keys: []vine.Key{vine.KeyF5}})
	fmt.Println(frame.Texts())
*/
package vine
