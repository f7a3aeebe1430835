/*
Package domain contains the core models shared by the Vine scripting host.

It is kept free of I/O and of the embedded interpreter so that adapters
(stores, HTTP, MCP) and the runtime can agree on the same vocabulary.

# Key Entities

  - Shape: the capability set of a host-managed renderable (Square, Circle).
  - Scene: the live, host-owned state scripts may read and mutate.
  - Color / Vec2: value types crossing the script boundary.
  - Stamp: the opaque modification token of a script source.
  - ReloadPolicy: auto-reload flag and poll interval read by the supervisor.
  - Snapshot: a serialisable copy of the scene used for persistence.
*/
package domain
