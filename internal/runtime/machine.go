package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/fernspiel/internal/logging"
	"github.com/aretw0/fernspiel/pkg/domain"
	"github.com/aretw0/fernspiel/pkg/ports"
)

// Machine is a state machine modelled after a Mealy machine: outputs are set on
// state entry, transitions are driven by timeouts, output completion and input.
type Machine struct {
	sensors   ports.Sensors
	responder ports.Responder
	states    []domain.State
	current   int
	lastEnter time.Time

	now    func() time.Time
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// Option configures the Machine.
type Option func(*Machine)

// WithClock sets the time source used for timeouts.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Machine) {
		m.hooks = hooks
	}
}

// NewMachine creates a machine over states and enters the initial state (index 0).
func NewMachine(ctx context.Context, sensors ports.Sensors, responder ports.Responder, states []domain.State, opts ...Option) (*Machine, error) {
	if len(states) == 0 {
		return nil, domain.ErrNoStates
	}

	m := &Machine{
		sensors:   sensors,
		responder: responder,
		states:    states,
		now:       time.Now,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := m.enter(ctx, 0, domain.CauseLoad); err != nil {
		return nil, err
	}
	return m, nil
}

// Update starts the next cycle of the machine: it senses and performs at most
// one transition, then refreshes the outputs.
//
// It returns false only if a terminal state is current. Once terminal, Update
// neither senses nor actuates.
func (m *Machine) Update(ctx context.Context) (bool, error) {
	if m.isTerminal() {
		return false, nil
	}

	if err := m.sense(ctx); err != nil {
		return false, err
	}
	if err := m.actuate(ctx); err != nil {
		return false, err
	}

	return !m.isTerminal(), nil
}

// Load replaces the states and the responder, silencing the previous responder
// and entering the initial state of the new states.
//
// The machine keeps its previous states only if silencing them fails. Once the
// new states are installed they stay, even when entering the initial state fails.
func (m *Machine) Load(ctx context.Context, responder ports.Responder, states []domain.State) error {
	if len(states) == 0 {
		return domain.ErrNoStates
	}
	if err := m.responder.Exit(ctx); err != nil {
		return fmt.Errorf("%w: exiting state %q before load: %w", domain.ErrActuation, m.currentState().ID, err)
	}

	from := m.current
	m.responder = responder
	m.states = states
	m.current = 0
	return m.enter(ctx, from, domain.CauseLoad)
}

// Reset clears all outputs and starts over with the initial state.
func (m *Machine) Reset(ctx context.Context) error {
	return m.transitionTo(ctx, 0, domain.CauseReset)
}

// Current returns the index and definition of the current state.
func (m *Machine) Current() (int, domain.State) {
	return m.current, m.states[m.current]
}

// States returns the state sequence the machine is running.
func (m *Machine) States() []domain.State {
	return m.states
}

func (m *Machine) currentState() *domain.State {
	return &m.states[m.current]
}

func (m *Machine) isTerminal() bool {
	return m.currentState().IsTerminal()
}

// sense resolves the next state in strict priority order and performs the transition, if any.
func (m *Machine) sense(ctx context.Context) error {
	next, cause, ok := m.resolve()
	if !ok {
		return nil
	}
	return m.transitionTo(ctx, next, cause)
}

func (m *Machine) resolve() (int, domain.Cause, bool) {
	st := m.currentState()

	// Highest priority: timeout
	if to, ok := st.TransitionForTimeout(m.lastEnter, m.now()); ok {
		return to, domain.CauseTimeout, true
	}

	// Then transitions on output completion
	if m.responder.Done() {
		if to, ok := st.TransitionEnd(); ok {
			return to, domain.CauseEnd, true
		}
	}

	// Then input transitions
	if in, ok := m.sensors.Poll(); ok {
		if to, ok := st.TransitionForInput(in); ok {
			return to, domain.CauseInput, true
		}
		m.logger.Debug("Ignoring input", "state_id", st.ID, "input", in)
	}

	return 0, "", false
}

func (m *Machine) actuate(ctx context.Context) error {
	if err := m.responder.Update(ctx); err != nil {
		return fmt.Errorf("%w: updating state %q: %w", domain.ErrActuation, m.currentState().ID, err)
	}
	return nil
}

func (m *Machine) transitionTo(ctx context.Context, idx int, cause domain.Cause) error {
	if idx < 0 || idx >= len(m.states) {
		return fmt.Errorf("transition from %q to unknown state index %d", m.currentState().ID, idx)
	}
	from := m.current
	if err := m.exit(ctx); err != nil {
		return err
	}
	m.current = idx
	return m.enter(ctx, from, cause)
}

func (m *Machine) enter(ctx context.Context, from int, cause domain.Cause) error {
	st := m.currentState()
	if err := m.responder.Enter(ctx, st); err != nil {
		return fmt.Errorf("%w: entering state %q: %w", domain.ErrActuation, st.ID, err)
	}

	m.lastEnter = m.now()
	m.logger.Debug("Transition", "state_id", st.ID, "name", st.Label(), "cause", cause)

	if m.hooks.OnTransition != nil {
		m.hooks.OnTransition(ctx, &domain.TransitionEvent{
			From:      from,
			To:        m.current,
			Cause:     cause,
			Timestamp: m.lastEnter,
		})
	}
	return nil
}

func (m *Machine) exit(ctx context.Context) error {
	if err := m.responder.Exit(ctx); err != nil {
		return fmt.Errorf("%w: exiting state %q: %w", domain.ErrActuation, m.currentState().ID, err)
	}
	return nil
}
