package respond

import (
	"context"
	"fmt"

	"github.com/aretw0/fernspiel/pkg/domain"
	"github.com/aretw0/fernspiel/pkg/ports"
)

// Composite dispatches to an ordered list of responders.
type Composite struct {
	members []ports.Responder
}

// New creates a composite over responders, in dispatch order.
func New(responders ...ports.Responder) *Composite {
	return &Composite{members: responders}
}

// Len returns the number of members.
func (c *Composite) Len() int {
	return len(c.members)
}

func (c *Composite) Enter(ctx context.Context, state *domain.State) error {
	return c.each(func(r ports.Responder) error { return r.Enter(ctx, state) })
}

func (c *Composite) Exit(ctx context.Context) error {
	return c.each(func(r ports.Responder) error { return r.Exit(ctx) })
}

func (c *Composite) Update(ctx context.Context) error {
	return c.each(func(r ports.Responder) error { return r.Update(ctx) })
}

// Done reports true iff every member is done. An empty composite is done.
func (c *Composite) Done() bool {
	for _, r := range c.members {
		if !r.Done() {
			return false
		}
	}
	return true
}

func (c *Composite) each(fn func(ports.Responder) error) error {
	for i, r := range c.members {
		if err := fn(r); err != nil {
			return fmt.Errorf("responder %d: %w", i, err)
		}
	}
	return nil
}
