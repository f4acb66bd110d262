package ports

import (
	"context"

	"github.com/aretw0/fernspiel/pkg/domain"
)

// EventServer receives a notification for every entered state.
type EventServer interface {
	Publish(ctx context.Context, event domain.StateEvent) error
}

// Binding carries the session metadata bound into per-book publishers.
type Binding struct {
	RunID string
	Book  string

	// Sounds maps sound indices of the book to their names.
	Sounds []string
}
