package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/aretw0/fernspiel/internal/config"
	"github.com/aretw0/fernspiel/internal/logging"
	"github.com/aretw0/fernspiel/pkg/adapters/sqlite"
	"github.com/aretw0/fernspiel/pkg/book"
	"github.com/aretw0/fernspiel/pkg/domain"
	"github.com/aretw0/fernspiel/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shortBook = `name: short
sounds:
  hi:
    speech: hi
states:
  - id: hello
    sounds: [hi]
    end: done
  - id: done
    terminal: true
`

func writeBook(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type fakeControl struct {
	switched chan string
}

func (f *fakeControl) Switch(ctx context.Context, b *book.Book) error {
	f.switched <- b.Name()
	return b.Close()
}

func (f *fakeControl) Reset(ctx context.Context) error                 { return nil }
func (f *fakeControl) Dial(ctx context.Context, in domain.Input) error { return nil }
func (f *fakeControl) Status(ctx context.Context) (ports.Status, error) {
	return ports.Status{}, nil
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, Validate(writeBook(t, dir, "ok.yaml", shortBook), &out))
		assert.Contains(t, out.String(), "Book 'short' is valid: 2 states, 1 sounds.")
	})

	t.Run("unreachable state", func(t *testing.T) {
		var out bytes.Buffer
		path := writeBook(t, dir, "orphan.yaml", "name: orphan\nstates:\n  - id: a\n    terminal: true\n  - id: b\n    terminal: true\n")
		require.NoError(t, Validate(path, &out))
		assert.Contains(t, out.String(), `warning: state "b" is unreachable`)
	})

	t.Run("unknown state", func(t *testing.T) {
		var out bytes.Buffer
		path := writeBook(t, dir, "bad.yaml", "name: bad\nstates:\n  - id: a\n    end: nowhere\n")
		err := Validate(path, &out)
		require.Error(t, err)
		assert.Contains(t, out.String(), "unknown state nowhere")
	})

	t.Run("missing sound file", func(t *testing.T) {
		var out bytes.Buffer
		path := writeBook(t, dir, "missing.yaml", "name: missing\nsounds:\n  s:\n    file: gone.ogg\nstates:\n  - id: a\n    sounds: [s]\n    terminal: true\n")
		err := Validate(path, &out)
		assert.ErrorIs(t, err, domain.ErrMissingSound)
	})
}

func TestGraphWithJournal(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := writeBook(t, dir, "short.yaml", shortBook)
	journalPath := filepath.Join(dir, "journal.db")

	j, err := sqlite.Open(ctx, journalPath)
	require.NoError(t, err)
	require.NoError(t, j.Publish(ctx, domain.StateEvent{RunID: "old", Book: "short", StateID: "hello", Name: "hello", Timestamp: time.Now()}))
	require.NoError(t, j.Publish(ctx, domain.StateEvent{RunID: "new", Book: "short", StateID: "hello", Name: "hello", Timestamp: time.Now()}))
	require.NoError(t, j.Publish(ctx, domain.StateEvent{RunID: "new", Book: "short", StateID: "done", Name: "done", Timestamp: time.Now()}))
	require.NoError(t, j.Close())

	var out bytes.Buffer
	require.NoError(t, Graph(ctx, path, GraphOptions{Journal: journalPath}, &out))
	assert.Contains(t, out.String(), "class hello visited;")
	assert.Contains(t, out.String(), "class done current;")

	out.Reset()
	require.NoError(t, Graph(ctx, path, GraphOptions{Journal: journalPath, RunID: "old"}, &out))
	assert.Contains(t, out.String(), "class hello current;")
	assert.NotContains(t, out.String(), "class done")
}

func TestDescribeRaw(t *testing.T) {
	path := writeBook(t, t.TempDir(), "short.yaml", shortBook)

	var out bytes.Buffer
	require.NoError(t, Describe(path, true, 0, &out))
	assert.Contains(t, out.String(), "# short")
	assert.Contains(t, out.String(), "| done (terminal) |")
}

func TestWatchBookSwitchesOnChange(t *testing.T) {
	settleDelay = 0
	dir := t.TempDir()
	path := writeBook(t, dir, "book.yaml", shortBook)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl := &fakeControl{switched: make(chan string, 8)}
	done := make(chan error, 1)
	go func() { done <- watchBook(ctx, path, ctrl, logging.NewNop(), nil) }()

	changed := "name: changed\nstates:\n  - id: only\n    terminal: true\n"
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(changed), 0o644)
		select {
		case name := <-ctrl.switched:
			return name == "changed"
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestExecuteRunsBookToTheEnd(t *testing.T) {
	dir := t.TempDir()
	path := writeBook(t, dir, "short.yaml", shortBook)
	journalPath := filepath.Join(dir, "journal.db")

	cfg, err := config.LoadFrom(map[string]string{
		"FERNSPIEL_TICK_INTERVAL":    "5ms",
		"FERNSPIEL_JOURNAL":          journalPath,
		"FERNSPIEL_EXIT_ON_TERMINAL": "true",
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var out bytes.Buffer
	require.NoError(t, Execute(ctx, RunOptions{BookPath: path, Config: cfg, Out: &out}))
	assert.Contains(t, out.String(), "Session '")
	assert.Contains(t, out.String(), "Stopped 'short' at 'done' (finished).")

	j, err := sqlite.Open(context.Background(), journalPath)
	require.NoError(t, err)
	defer j.Close()

	runs, err := j.Runs(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)

	events, err := j.Events(context.Background(), runs[0])
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "hello", events[0].StateID)
	assert.Equal(t, []string{"hi"}, events[0].Sounds)
	assert.Equal(t, "done", events[1].StateID)
	assert.True(t, events[1].Terminal)
}

func TestExecuteStopsOnCancel(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	require.NoError(t, Execute(ctx, RunOptions{Config: cfg, Quiet: true}))
}

func TestExecuteRejectsKeyboardWithMCP(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{"FERNSPIEL_KEYBOARD": "true"})
	require.NoError(t, err)

	err = Execute(context.Background(), RunOptions{Config: cfg, MCP: true, Quiet: true})
	assert.Error(t, err)
}

func TestBuildStack(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{
		"FERNSPIEL_ADDR":      "127.0.0.1:0",
		"FERNSPIEL_SIM_PHONE": "false",
	})
	require.NoError(t, err)

	st, err := buildStack(context.Background(), cfg, ".", logging.NewNop())
	require.NoError(t, err)
	defer st.Close()

	assert.Nil(t, st.phone)
	assert.NotNil(t, st.http)
	// metrics, journal and the http server
	assert.Len(t, st.servers, 3)
}

func TestBuildStackWithLineDriver(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("driver uses sh")
	}
	dir := t.TempDir()
	driver := writeBook(t, dir, "line.yaml", "command: sh\nargs: [-c, \"echo pick_up; cat >/dev/null\"]\n")

	cfg, err := config.LoadFrom(map[string]string{"FERNSPIEL_LINE_DRIVER": driver})
	require.NoError(t, err)

	st, err := buildStack(context.Background(), cfg, dir, logging.NewNop())
	require.NoError(t, err)
	defer st.Close()

	require.NotNil(t, st.phone)
	assert.Nil(t, st.line)
	assert.Eventually(t, func() bool { return st.phone.Status().OffHook }, 5*time.Second, 10*time.Millisecond)
}

func TestBuildStackFailsForBadDriver(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{"FERNSPIEL_LINE_DRIVER": filepath.Join(t.TempDir(), "missing.yaml")})
	require.NoError(t, err)

	_, err = buildStack(context.Background(), cfg, ".", logging.NewNop())
	assert.Error(t, err)
}
