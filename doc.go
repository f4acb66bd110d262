/*
Package fernspiel is the runtime engine of an interactive telephone installation.

A story ("book") is a graph of states. Entering a state rings the phone and
plays sounds; a state is left when its timeout expires, when all its outputs
have finished, or when the caller dials a digit or lifts or hangs up the
receiver. The engine ticks at a fixed rate and performs at most one transition
per tick, resolving competing signals in strict priority order: timeout first,
then output completion, then telephone input.

# Concept

A Run binds a book to the phone and to a set of event servers. Each tick the
machine senses, transitions, and refreshes the outputs through a composite
responder: the actuators (sounds and bell) plus one publisher per event server.

Books can be replaced while a session is running. Switch builds every output
for the new book before touching the running session; if any part fails the
session keeps running the previous book unchanged.

# Usage

	b, err := book.Load("story.yaml")
	if err != nil {
		log.Fatal(err)
	}

	run, err := fernspiel.New(ctx, b,
		fernspiel.WithPhone(phone.New(phone.NewSimLine())),
		fernspiel.WithServer(journal),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer run.Close()

	for {
		running, err := run.Tick(ctx)
		if err != nil {
			log.Fatal(err)
		}
		if !running {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

Long running installations use pkg/runner, which owns the Run, ticks it at a
fixed interval and applies remote commands between ticks.
*/
package fernspiel
