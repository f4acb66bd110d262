package ports

import (
	"context"

	"github.com/aretw0/fernspiel/pkg/domain"
)

// Responder is notified whenever the machine enters a state.
type Responder interface {
	// Enter switches the outputs to the configuration of state.
	Enter(ctx context.Context, state *domain.State) error

	// Exit clears all outputs of the current state.
	Exit(ctx context.Context) error

	// Update refreshes outputs once per tick.
	Update(ctx context.Context) error

	// Done reports whether all outputs of the current state have finished.
	// It must not block.
	Done() bool
}
