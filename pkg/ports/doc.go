/*
Package ports defines the driven ports (interfaces) of the vine host.

These interfaces decouple the interpreter runtime from concrete backends, allowing
the host to run against different script sources, GUI backends and snapshot stores.

# Key Interfaces

  - ScriptSource: Where the script text and its change stamp come from (file, memory).
  - GUI: The opaque immediate-mode drawing API exposed to scripts as Gui.*.
  - HostState: The host-owned scene the App.* capabilities read and write.
  - StateStore: Persists host snapshots between runs (memory, file, redis).
  - HostController: What out-of-loop adapters (HTTP, MCP, console) may ask of a running host.
*/
package ports
