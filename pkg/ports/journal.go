package ports

import (
	"context"

	"github.com/aretw0/fernspiel/pkg/domain"
)

// Journal is an EventServer that keeps every published event.
type Journal interface {
	EventServer

	// Events returns the events of a run in publish order. Unknown runs have no events.
	Events(ctx context.Context, runID string) ([]domain.StateEvent, error)

	// Runs lists the runs with at least one event, in order of their first event.
	Runs(ctx context.Context) ([]string, error)
}
