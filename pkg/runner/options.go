package runner

import (
	"log/slog"
	"time"

	"github.com/aretw0/fernspiel/pkg/sensors"
)

// DefaultInterval is the tick period used when none is configured.
const DefaultInterval = 10 * time.Millisecond

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithInterval sets the tick period.
func WithInterval(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithDialQueue sets the input source remote dial commands are pushed to.
// The same queue must be registered with the session as an input source.
func WithDialQueue(q *sensors.Queue) Option {
	return func(r *Runner) {
		r.dial = q
	}
}

// WithExitOnTerminal makes Run return once the book reaches a terminal state.
func WithExitOnTerminal(exit bool) Option {
	return func(r *Runner) {
		r.exitOnTerminal = exit
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}
