package runner

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/fernspiel/pkg/ports"
)

// ResetOnHangup resets the session whenever the process receives SIGHUP,
// until ctx is cancelled.
func (r *Runner) ResetOnHangup(ctx context.Context) {
	resetOnSignal(ctx, r, r.logger, syscall.SIGHUP)
}

func resetOnSignal(ctx context.Context, ctrl ports.Control, logger *slog.Logger, sig ...os.Signal) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sig...)
	defer signal.Stop(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case s := <-ch:
			logger.Info("Resetting on signal", "signal", s.String())
			if err := ctrl.Reset(ctx); err != nil {
				logger.Warn("Reset on signal failed", "err", err)
			}
		}
	}
}
