package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/fernspiel/internal/logging"
	"github.com/aretw0/fernspiel/pkg/book"
	"github.com/aretw0/fernspiel/pkg/ports"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the application logger.
// Logs always go to stderr so stdout stays free for protocol traffic.
func createLogger(debug bool) *slog.Logger {
	return logging.New(logging.Level(debug))
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	if w == nil {
		return
	}
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// loadBook loads the book at path. An empty path yields a nil book, which runs the passive book.
func loadBook(path string) (*book.Book, error) {
	if path == "" {
		return nil, nil
	}
	b, err := book.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load book %s: %w", path, err)
	}
	return b, nil
}

// controlRef forwards to a Control that is attached after the adapters using it are built.
type controlRef struct {
	ports.Control
}

func describeStatus(st ports.Status) string {
	if st.Terminal {
		return fmt.Sprintf("'%s' at '%s' (finished)", st.Book, st.StateID)
	}
	return fmt.Sprintf("'%s' at '%s'", st.Book, st.StateID)
}
