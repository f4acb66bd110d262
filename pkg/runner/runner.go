package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/fernspiel/internal/logging"
	"github.com/aretw0/fernspiel/pkg/book"
	"github.com/aretw0/fernspiel/pkg/domain"
	"github.com/aretw0/fernspiel/pkg/ports"
	"github.com/aretw0/fernspiel/pkg/sensors"
)

// ErrNoDialQueue is returned by Dial when the runner has no input queue.
var ErrNoDialQueue = errors.New("remote dialing is not enabled")

// Session is the part of fernspiel.Run the runner drives.
type Session interface {
	Tick(ctx context.Context) (bool, error)
	Reset(ctx context.Context) error
	Switch(ctx context.Context, b *book.Book) error
	Status() ports.Status
}

// Runner ticks a session and serializes remote commands between ticks.
type Runner struct {
	session        Session
	interval       time.Duration
	dial           *sensors.Queue
	exitOnTerminal bool
	logger         *slog.Logger

	commands chan command
	done     chan struct{}
}

type command struct {
	name  string
	apply func(ctx context.Context) error
	reply chan error
}

var _ ports.Control = (*Runner)(nil)

// New creates a runner for session.
func New(session Session, opts ...Option) *Runner {
	r := &Runner{
		session:  session,
		interval: DefaultInterval,
		logger:   logging.NewNop(),
		commands: make(chan command),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run ticks the session until ctx is cancelled, a tick fails, a command fails
// with domain.ErrActuation, or (with WithExitOnTerminal) the book reaches a
// terminal state. It must be called once.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	wasRunning := true
	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("Runner stopped", "reason", ctx.Err())
			return nil

		case cmd := <-r.commands:
			err := cmd.apply(ctx)
			cmd.reply <- err
			if errors.Is(err, domain.ErrActuation) {
				return fmt.Errorf("command %s: %w", cmd.name, err)
			}
			if err != nil {
				r.logger.Warn("Command failed", "command", cmd.name, "err", err)
			}
			wasRunning = true

		case <-ticker.C:
			running, err := r.session.Tick(ctx)
			if err != nil {
				return fmt.Errorf("tick failed: %w", err)
			}
			if running {
				wasRunning = true
				continue
			}
			if wasRunning {
				st := r.session.Status()
				r.logger.Info("Book finished", "book", st.Book, "state_id", st.StateID)
				wasRunning = false
			}
			if r.exitOnTerminal {
				return nil
			}
		}
	}
}

// Done is closed once Run has returned.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Switch replaces the running book between two ticks.
// The runner owns b: it is closed if the command cannot be delivered.
func (r *Runner) Switch(ctx context.Context, b *book.Book) error {
	return r.send(ctx, "switch", func(ctx context.Context) error {
		return r.session.Switch(ctx, b)
	}, func() {
		if b != nil {
			_ = b.Close()
		}
	})
}

// Reset restarts the current book between two ticks.
func (r *Runner) Reset(ctx context.Context) error {
	return r.send(ctx, "reset", r.session.Reset, nil)
}

// Dial queues an input for the next ticks, as if sensed from the phone.
func (r *Runner) Dial(ctx context.Context, in domain.Input) error {
	if r.dial == nil {
		return ErrNoDialQueue
	}
	select {
	case <-r.done:
		return domain.ErrRunnerStopped
	default:
	}
	if !r.dial.Push(in) {
		return fmt.Errorf("input queue full, dropped %q", in)
	}
	return nil
}

// Status reports the position of the session, read between two ticks.
func (r *Runner) Status(ctx context.Context) (ports.Status, error) {
	var st ports.Status
	err := r.send(ctx, "status", func(context.Context) error {
		st = r.session.Status()
		return nil
	}, nil)
	return st, err
}

// send hands a command to the loop and waits for its result.
// dropped runs if the command was never delivered.
func (r *Runner) send(ctx context.Context, name string, fn func(context.Context) error, dropped func()) error {
	cmd := command{name: name, apply: fn, reply: make(chan error, 1)}

	select {
	case r.commands <- cmd:
	case <-r.done:
		if dropped != nil {
			dropped()
		}
		return domain.ErrRunnerStopped
	case <-ctx.Done():
		if dropped != nil {
			dropped()
		}
		return ctx.Err()
	}

	select {
	case err := <-cmd.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
