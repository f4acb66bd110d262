package sensors

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/fernspiel/internal/logging"
	"github.com/aretw0/fernspiel/pkg/domain"
	"golang.org/x/term"
)

// KeyInput maps a key press to an input symbol.
// Digits dial, 'p' picks up and 'h' hangs up.
func KeyInput(r rune) (domain.Input, bool) {
	switch {
	case r >= '0' && r <= '9':
		return domain.Input(string(r)), true
	case r == 'p' || r == 'P':
		return domain.InputPickUp, true
	case r == 'h' || r == 'H':
		return domain.InputHangUp, true
	}
	return "", false
}

// Keyboard turns key presses into inputs for development without phone hardware.
// Keys are read by a background goroutine and delivered through a Queue.
type Keyboard struct {
	*Queue
	logger *slog.Logger
}

// NewKeyboard creates a keyboard sensor. Call Listen to start reading.
func NewKeyboard(logger *slog.Logger) *Keyboard {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Keyboard{Queue: NewQueue(DefaultQueueSize), logger: logger}
}

// Listen reads keys from r until ctx ends or r is exhausted.
// If r is a terminal it is switched to raw mode so keys arrive without Enter;
// the returned function restores the terminal.
func (k *Keyboard) Listen(ctx context.Context, r io.Reader) (func(), error) {
	restore := func() {}
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		state, err := term.MakeRaw(fd)
		if err != nil {
			return restore, fmt.Errorf("failed to enter raw mode: %w", err)
		}
		restore = func() { _ = term.Restore(fd, state) }
	}

	go k.pump(ctx, bufio.NewReader(r))
	return restore, nil
}

func (k *Keyboard) pump(ctx context.Context, r *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		ch, _, err := r.ReadRune()
		if err != nil {
			if err != io.EOF {
				k.logger.Debug("Keyboard read failed", "err", err)
			}
			return
		}
		in, ok := KeyInput(ch)
		if !ok {
			continue
		}
		if !k.Push(in) {
			k.logger.Warn("Keyboard queue full, dropping input", "input", in)
		}
	}
}
