/*
Package runner drives a fernspiel session at a fixed tick rate.

The Runner is the only goroutine that touches the session. Remote commands
(switch, reset, dial, status) are queued and applied between two ticks, so a
book switch never interleaves with a transition.

# Usage

	dial := sensors.NewQueue(sensors.DefaultQueueSize)
	run, err := fernspiel.New(ctx, b, fernspiel.WithInputSource(dial))
	if err != nil {
		log.Fatal(err)
	}

	r := runner.New(run,
		runner.WithInterval(10*time.Millisecond),
		runner.WithDialQueue(dial),
	)

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}

The Runner implements ports.Control, which is what the HTTP and MCP adapters consume.
*/
package runner
