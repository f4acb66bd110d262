package cli

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/fernspiel/pkg/book"
	"github.com/aretw0/fernspiel/pkg/ports"
)

// settleDelay lets editors finish writing before the book is reloaded.
var settleDelay = 100 * time.Millisecond

// watchBook switches ctrl to the book at path every time the file changes,
// until ctx is cancelled. Invalid books are reported and the session keeps running.
func watchBook(ctx context.Context, path string, ctrl ports.Control, logger *slog.Logger, out io.Writer) error {
	changes, err := book.Watch(ctx, path)
	if err != nil {
		return err
	}
	logger.Info("Watching book", "path", path)
	printSystemMessage(out, "Watching '%s' for changes.", path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case name, ok := <-changes:
			if !ok {
				return nil
			}
			logger.Info("Change detected, reloading", "file", name)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(settleDelay):
			}

			b, err := book.Load(path)
			if err != nil {
				logger.Warn("Reload failed", "file", name, "err", err)
				printSystemMessage(out, "Change in '%s' ignored: %v", name, err)
				continue
			}
			if err := ctrl.Switch(ctx, b); err != nil {
				logger.Warn("Switch failed", "book", b.Name(), "err", err)
				continue
			}
			logger.Info("Book reloaded", "book", b.Name())
		}
	}
}
