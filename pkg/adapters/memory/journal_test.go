package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/fernspiel/pkg/adapters/memory"
	"github.com/aretw0/fernspiel/pkg/domain"
	"github.com/aretw0/fernspiel/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryJournal_Contract(t *testing.T) {
	ports.RunJournalContract(t, memory.NewJournal(0))
}

func TestMemoryJournal_Limit(t *testing.T) {
	j := memory.NewJournal(2)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, j.Publish(ctx, domain.StateEvent{RunID: "r", StateID: id}))
	}

	events, err := j.Events(ctx, "r")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "b", events[0].StateID)
	assert.Equal(t, "c", events[1].StateID)
}
