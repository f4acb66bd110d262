package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/fernspiel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunJournalContract verifies that a Journal implementation behaves as expected.
func RunJournalContract(t *testing.T, j Journal) {
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)

	t.Run("Unknown run has no events", func(t *testing.T) {
		events, err := j.Events(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("Events keep publish order", func(t *testing.T) {
		published := []domain.StateEvent{
			{RunID: "run-a", Book: "demo", StateID: "ring", Name: "Ringing", Timestamp: at},
			{RunID: "run-a", Book: "demo", StateID: "greet", Name: "Greeting", Sounds: []string{"intro", "waves"}, Timestamp: at.Add(time.Second)},
			{RunID: "run-a", Book: "demo", StateID: "idle", Name: "Idle", Terminal: true, Timestamp: at.Add(2 * time.Second)},
		}
		for _, e := range published {
			require.NoError(t, j.Publish(ctx, e))
		}

		events, err := j.Events(ctx, "run-a")
		require.NoError(t, err)
		require.Len(t, events, len(published))
		for i := range published {
			assert.Equal(t, published[i].StateID, events[i].StateID)
			assert.Equal(t, published[i].Name, events[i].Name)
			assert.Equal(t, published[i].Sounds, events[i].Sounds)
			assert.Equal(t, published[i].Terminal, events[i].Terminal)
			assert.True(t, published[i].Timestamp.Equal(events[i].Timestamp))
		}
	})

	t.Run("Runs are isolated", func(t *testing.T) {
		require.NoError(t, j.Publish(ctx, domain.StateEvent{RunID: "run-b", Book: "other", StateID: "x", Timestamp: at}))

		events, err := j.Events(ctx, "run-b")
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "other", events[0].Book)

		runs, err := j.Runs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"run-a", "run-b"}, runs)
	})

	t.Run("Returned events are copies", func(t *testing.T) {
		events, err := j.Events(ctx, "run-a")
		require.NoError(t, err)
		require.NotEmpty(t, events)
		events[0].StateID = "mutated"

		again, err := j.Events(ctx, "run-a")
		require.NoError(t, err)
		assert.Equal(t, "ring", again[0].StateID)
	})
}
