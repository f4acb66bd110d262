// Package memory provides an in-memory journal of state events.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/fernspiel/pkg/domain"
	"github.com/aretw0/fernspiel/pkg/ports"
)

// Journal implements ports.Journal in memory.
// Safe for concurrent use.
type Journal struct {
	mu     sync.RWMutex
	events map[string][]domain.StateEvent
	runs   []string
	limit  int
}

var _ ports.Journal = (*Journal)(nil)

// NewJournal creates a journal keeping at most limit events per run. Zero keeps everything.
func NewJournal(limit int) *Journal {
	return &Journal{
		events: make(map[string][]domain.StateEvent),
		limit:  limit,
	}
}

// Publish appends the event to its run.
func (j *Journal) Publish(ctx context.Context, event domain.StateEvent) error {
	event.Sounds = slices.Clone(event.Sounds)

	j.mu.Lock()
	defer j.mu.Unlock()

	events, ok := j.events[event.RunID]
	if !ok {
		j.runs = append(j.runs, event.RunID)
	}
	events = append(events, event)
	if j.limit > 0 && len(events) > j.limit {
		events = slices.Clone(events[len(events)-j.limit:])
	}
	j.events[event.RunID] = events
	return nil
}

// Events returns a copy of the events of a run.
func (j *Journal) Events(ctx context.Context, runID string) ([]domain.StateEvent, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	src := j.events[runID]
	out := make([]domain.StateEvent, len(src))
	for i, e := range src {
		e.Sounds = slices.Clone(e.Sounds)
		out[i] = e
	}
	return out, nil
}

// Runs lists the runs in order of their first event.
func (j *Journal) Runs(ctx context.Context) ([]string, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return slices.Clone(j.runs), nil
}
