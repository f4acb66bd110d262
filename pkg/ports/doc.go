/*
Package ports defines the driven ports (interfaces) of the fernspiel engine.

These interfaces decouple the transition engine from concrete hardware, output
channels and remote surfaces.

# Key Interfaces

  - Sensors: Non-blocking source of input symbols, polled at most once per tick.
  - Responder: Reacts to state entry and reports whether it is still busy.
  - EventServer: Receives a StateEvent for every entered state (SSE, Redis, journal, metrics).
  - Control: Commands a running session from the outside (switch, reset, dial).
*/
package ports
