package respond

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/fernspiel/pkg/domain"
	"github.com/aretw0/fernspiel/pkg/ports"
)

// Publisher publishes an event for every entered state. It is always done.
type Publisher struct {
	server  ports.EventServer
	binding ports.Binding
	now     func() time.Time
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithClock sets the time source for event timestamps.
func WithClock(now func() time.Time) PublisherOption {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

// Through creates a responder publishing to server with the given session metadata.
func Through(server ports.EventServer, binding ports.Binding, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		server:  server,
		binding: binding,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Enter(ctx context.Context, state *domain.State) error {
	event := domain.StateEvent{
		RunID:     p.binding.RunID,
		Book:      p.binding.Book,
		StateID:   state.ID,
		Name:      state.Label(),
		Sounds:    p.soundNames(state.Sounds),
		Terminal:  state.IsTerminal(),
		Timestamp: p.now(),
	}
	if err := p.server.Publish(ctx, event); err != nil {
		return fmt.Errorf("failed to publish state %q: %w", state.ID, err)
	}
	return nil
}

func (p *Publisher) Exit(ctx context.Context) error   { return nil }
func (p *Publisher) Update(ctx context.Context) error { return nil }
func (p *Publisher) Done() bool                       { return true }

func (p *Publisher) soundNames(indices []int) []string {
	if len(indices) == 0 {
		return nil
	}
	names := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(p.binding.Sounds) {
			names = append(names, p.binding.Sounds[idx])
		}
	}
	return names
}
