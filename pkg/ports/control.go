package ports

import (
	"context"

	"github.com/aretw0/fernspiel/pkg/book"
	"github.com/aretw0/fernspiel/pkg/domain"
)

// Control commands a running session from outside the tick loop.
// Implementations apply every command between two ticks.
type Control interface {
	// Switch replaces the running book. A rejected book leaves the session untouched.
	Switch(ctx context.Context, b *book.Book) error

	// Reset restarts the current book from its initial state.
	Reset(ctx context.Context) error

	// Dial injects an input symbol as if it was sensed from the phone.
	Dial(ctx context.Context, in domain.Input) error

	// Status reports the current position of the session.
	Status(ctx context.Context) (Status, error)
}

// Status is a snapshot of a running session.
type Status struct {
	RunID    string `json:"run_id"`
	Book     string `json:"book"`
	Index    int    `json:"index"`
	StateID  string `json:"state_id"`
	Name     string `json:"name"`
	Terminal bool   `json:"terminal"`
	// Playing names the sounds still playing in the current state.
	Playing []string `json:"playing,omitempty"`
}
