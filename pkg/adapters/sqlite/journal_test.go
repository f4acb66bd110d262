package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/fernspiel/pkg/adapters/sqlite"
	"github.com/aretw0/fernspiel/pkg/domain"
	"github.com/aretw0/fernspiel/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openJournal(t *testing.T, path string) *sqlite.Journal {
	t.Helper()
	j, err := sqlite.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestSQLiteJournal_Contract(t *testing.T) {
	j := openJournal(t, filepath.Join(t.TempDir(), "journal.db"))
	ports.RunJournalContract(t, j)
}

func TestSQLiteJournal_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	j, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, j.Publish(ctx, domain.StateEvent{RunID: "r", StateID: "menu", Timestamp: time.UnixMilli(1500).UTC()}))
	require.NoError(t, j.Close())

	// migrations must not run twice
	reopened := openJournal(t, path)
	events, err := reopened.Events(ctx, "r")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "menu", events[0].StateID)
	assert.Equal(t, time.UnixMilli(1500).UTC(), events[0].Timestamp)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := sqlite.Open(context.Background(), " ")
	assert.Error(t, err)
}
