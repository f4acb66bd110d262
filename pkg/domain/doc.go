/*
Package domain contains the core domain models of the fernspiel engine.

It defines the states of a story graph, the input symbols a telephone can produce,
and the events emitted whenever a state is entered. This package is kept pure and
free of external dependencies like I/O or hardware access.

# Key Entities

  - State: A node of the story graph with its entry outputs and outgoing transitions.
  - Input: A discrete symbol sensed from the phone (dialed digit, hook change).
  - StateEvent: The notification published to observers on state entry.
*/
package domain
