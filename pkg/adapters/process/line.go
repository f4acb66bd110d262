// Package process connects the phone to hardware through an external driver program.
//
// The driver writes one symbol per line to its stdout: "pick_up", "hang_up" or a digit.
// The line writes "ring on" and "ring off" to the driver's stdin.
package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/fernspiel/internal/logging"
	"github.com/aretw0/fernspiel/pkg/domain"
	"github.com/aretw0/fernspiel/pkg/phone"
)

// ErrDriverExited is returned by Ring once the driver program has stopped.
var ErrDriverExited = errors.New("line driver exited")

// StopTimeout is how long Close waits for the driver to exit before killing it.
var StopTimeout = 2 * time.Second

// Line is a phone.Line backed by a driver process.
type Line struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	logger *slog.Logger
	done   chan struct{}

	mu      sync.Mutex
	pending []domain.Input
	offHook bool
	ringing bool
	exitErr error

	closeOnce sync.Once
}

var _ phone.Line = (*Line)(nil)

// Option configures the Line.
type Option func(*Line)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Line) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Start launches the driver. The driver is killed when ctx is cancelled.
func Start(ctx context.Context, cfg DriverConfig, opts ...Option) (*Line, error) {
	l := &Line{
		logger: logging.NewNop(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}

	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	cmd.Dir = cfg.Dir
	env := cmd.Environ()
	for k, v := range cfg.Environment {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.Env = env

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open driver stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open driver stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start driver %s: %w", cfg.Command, err)
	}
	l.cmd = cmd
	l.stdin = stdin

	go l.read(stdout)
	return l, nil
}

func (l *Line) read(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		in, err := domain.ParseInput(text)
		if err != nil {
			l.logger.Debug("Ignoring driver output", "line", text, "err", err)
			continue
		}
		l.mu.Lock()
		switch in {
		case domain.InputPickUp:
			l.offHook = true
		case domain.InputHangUp:
			l.offHook = false
		}
		l.pending = append(l.pending, in)
		l.mu.Unlock()
	}

	err := l.cmd.Wait()
	l.mu.Lock()
	l.exitErr = err
	l.mu.Unlock()
	if err != nil {
		l.logger.Warn("Line driver exited", "err", err)
	} else {
		l.logger.Info("Line driver exited")
	}
	close(l.done)
}

// Ring switches the bell through the driver.
func (l *Line) Ring(on bool) error {
	select {
	case <-l.done:
		return fmt.Errorf("%w: %v", ErrDriverExited, l.Err())
	default:
	}

	cmd := "ring off\n"
	if on {
		cmd = "ring on\n"
	}
	if _, err := io.WriteString(l.stdin, cmd); err != nil {
		return fmt.Errorf("failed to write to driver: %w", err)
	}

	l.mu.Lock()
	l.ringing = on
	l.mu.Unlock()
	return nil
}

func (l *Line) Poll() (domain.Input, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.pending) == 0 {
		return "", false
	}
	in := l.pending[0]
	l.pending = l.pending[1:]
	return in, true
}

func (l *Line) OffHook() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.offHook
}

// Ringing reports whether the bell was last switched on.
func (l *Line) Ringing() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ringing
}

// Done is closed when the driver exits.
func (l *Line) Done() <-chan struct{} {
	return l.done
}

// Err returns the exit error of the driver, if it has exited.
func (l *Line) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.exitErr
}

// Close closes the driver's stdin and waits for it to exit, killing it after StopTimeout.
func (l *Line) Close() error {
	l.closeOnce.Do(func() {
		_ = l.stdin.Close()
		select {
		case <-l.done:
		case <-time.After(StopTimeout):
			_ = l.cmd.Process.Kill()
			<-l.done
		}
	})
	return nil
}
