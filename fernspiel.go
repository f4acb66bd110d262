package fernspiel

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/fernspiel/internal/logging"
	"github.com/aretw0/fernspiel/internal/runtime"
	"github.com/aretw0/fernspiel/pkg/acts"
	"github.com/aretw0/fernspiel/pkg/book"
	"github.com/aretw0/fernspiel/pkg/domain"
	"github.com/aretw0/fernspiel/pkg/phone"
	"github.com/aretw0/fernspiel/pkg/ports"
	"github.com/aretw0/fernspiel/pkg/respond"
	"github.com/aretw0/fernspiel/pkg/sensors"
	"github.com/aretw0/fernspiel/pkg/sound"
	"github.com/google/uuid"
)

// Run is a session of a book on a phone.
// A Run is not safe for concurrent use; pkg/runner serializes access to it.
type Run struct {
	id      string
	book    *book.Book
	machine *runtime.Machine
	acts    *acts.Actuators

	phone   *phone.Phone
	servers []ports.EventServer
	sources []ports.Sensors
	player  sound.Player
	now     func() time.Time
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
}

// Option configures a Run.
type Option func(*Run)

// WithPhone attaches the phone. Without a phone the session neither rings nor senses the line.
func WithPhone(p *phone.Phone) Option {
	return func(r *Run) {
		r.phone = p
	}
}

// WithServer adds event servers notified on every state entry.
func WithServer(servers ...ports.EventServer) Option {
	return func(r *Run) {
		r.servers = append(r.servers, servers...)
	}
}

// WithInputSource adds an input source polled after the phone.
func WithInputSource(s ports.Sensors) Option {
	return func(r *Run) {
		r.sources = append(r.sources, s)
	}
}

// WithPlayer sets the audio backend.
func WithPlayer(p sound.Player) Option {
	return func(r *Run) {
		r.player = p
	}
}

// WithClock sets the time source for timeouts, playback and events.
func WithClock(now func() time.Time) Option {
	return func(r *Run) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Run) {
		r.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Run) {
		r.hooks = hooks
	}
}

// WithRunID sets the session identifier. A random UUID is used by default.
func WithRunID(id string) Option {
	return func(r *Run) {
		r.id = id
	}
}

// New starts a session of b and enters its initial state.
// A nil book starts the passive book. The Run owns b; it is closed if New fails.
func New(ctx context.Context, b *book.Book, opts ...Option) (*Run, error) {
	if b == nil {
		b = book.Passive()
	}

	r := &Run{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	if r.id == "" {
		r.id = uuid.NewString()
	}
	if r.logger == nil {
		r.logger = logging.NewNop()
	}
	r.logger = r.logger.With("run_id", r.id)
	if r.player == nil {
		r.player = sound.NewTimedPlayer(r.now)
	}

	responder, a, err := r.responders(b)
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("failed to prepare book %q: %w", b.Name(), err)
	}

	m, err := runtime.NewMachine(ctx, r.sensors(), responder, b.States(),
		runtime.WithClock(r.now),
		runtime.WithLogger(r.logger),
		runtime.WithLifecycleHooks(r.hooks),
	)
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("failed to start book %q: %w", b.Name(), err)
	}

	r.machine = m
	r.book = b
	r.acts = a
	r.logger.Info("Session started", "book", b.Name())
	return r, nil
}

// Reset restarts the current book from its initial state.
func (r *Run) Reset(ctx context.Context) error {
	r.logger.Info("Resetting session", "book", r.book.Name())
	return r.machine.Reset(ctx)
}

// Tick advances the session by one cycle. It returns false once a terminal state is reached.
func (r *Run) Tick(ctx context.Context) (bool, error) {
	return r.machine.Update(ctx)
}

// Switch replaces the running book with b.
//
// Every output of b is prepared before the session is touched. If that fails, b is
// closed and the session continues with the previous book exactly as before.
// On success the machine restarts at the initial state of b and the previous
// book is closed. A nil b switches to the passive book.
//
// If the machine adopted b but entering its initial state failed, the session
// stays on b and the error wraps domain.ErrActuation.
func (r *Run) Switch(ctx context.Context, b *book.Book) error {
	if b == nil {
		b = book.Passive()
	}

	responder, a, err := r.responders(b)
	if err != nil {
		_ = b.Close()
		r.logger.Warn("Rejected book", "book", b.Name(), "err", err)
		r.notifySwitch(ctx, b.Name(), err)
		return fmt.Errorf("rejected book %q: %w", b.Name(), err)
	}

	states := b.States()
	if err := r.machine.Load(ctx, responder, states); err != nil {
		if !r.adopted(states) {
			_ = b.Close()
			r.notifySwitch(ctx, b.Name(), err)
			return err
		}
		r.commit(b, a)
		r.logger.Error("Switched book but failed to enter it", "book", b.Name(), "err", err)
		r.notifySwitch(ctx, b.Name(), err)
		return err
	}

	old := r.commit(b, a)
	r.logger.Info("Switched book", "from", old, "to", b.Name())
	r.notifySwitch(ctx, b.Name(), nil)
	return nil
}

// adopted reports whether the machine runs states.
func (r *Run) adopted(states []domain.State) bool {
	current := r.machine.States()
	return len(current) > 0 && len(states) > 0 && &current[0] == &states[0]
}

// commit makes b the running book and releases the previous one, returning its name.
func (r *Run) commit(b *book.Book, a *acts.Actuators) string {
	old := r.book
	r.book = b
	r.acts = a
	if err := old.Close(); err != nil {
		r.logger.Warn("Failed to release previous book", "book", old.Name(), "err", err)
	}
	return old.Name()
}

// Book returns the running book.
func (r *Run) Book() *book.Book {
	return r.book
}

// Current returns the index and definition of the current state.
func (r *Run) Current() (int, domain.State) {
	return r.machine.Current()
}

// RunID returns the session identifier.
func (r *Run) RunID() string {
	return r.id
}

// Status returns a snapshot of the session.
func (r *Run) Status() ports.Status {
	idx, st := r.machine.Current()
	return ports.Status{
		RunID:    r.id,
		Book:     r.book.Name(),
		Index:    idx,
		StateID:  st.ID,
		Name:     st.Label(),
		Terminal: st.IsTerminal(),
		Playing:  r.book.SoundNames(r.acts.Active()),
	}
}

// Close releases the resources owned by the running book.
func (r *Run) Close() error {
	return r.book.Close()
}

// responders builds the outputs for b: actuators first, then one publisher per server.
func (r *Run) responders(b *book.Book) (*respond.Composite, *acts.Actuators, error) {
	a, err := acts.New(r.phone, b.Sounds(),
		acts.WithPlayer(r.player),
		acts.WithClock(r.now),
		acts.WithLogger(r.logger),
	)
	if err != nil {
		return nil, nil, err
	}

	binding := ports.Binding{
		RunID:  r.id,
		Book:   b.Name(),
		Sounds: soundNames(b.Sounds()),
	}
	members := []ports.Responder{a}
	for _, s := range r.servers {
		members = append(members, respond.Through(s, binding, respond.WithClock(r.now)))
	}
	return respond.New(members...), a, nil
}

func (r *Run) sensors() ports.Sensors {
	phoneSensors := sensors.Init(r.phone)
	if len(r.sources) == 0 {
		return phoneSensors
	}
	return append(sensors.Chain{phoneSensors}, r.sources...)
}

func (r *Run) notifySwitch(ctx context.Context, name string, err error) {
	if r.hooks.OnSwitch != nil {
		r.hooks.OnSwitch(ctx, name, err)
	}
}

func soundNames(defs []sound.Definition) []string {
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	return names
}
