/*
Package gui provides a recording immediate-mode GUI backend.

Recorder implements ports.GUI without any graphics: every call made between
NewFrame and EndFrame is recorded as a Command, and widget return values are
driven by Interactions supplied with the frame Input. This makes script
behaviour (button clicks, slider drags, tree expansion) reproducible headlessly
and lets out-of-process tooling inspect what a script drew.

The recorder tracks the window, tree, combo, menu and style stacks. Anything a
script leaves open (typically because it raised an error mid-window) is closed
at EndFrame and reported in Frame.Recovered, so one failed frame never corrupts
the next.

A Recorder is not safe for concurrent use; it belongs to the frame loop.
*/
package gui
