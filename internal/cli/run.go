package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/fernspiel"
	"github.com/aretw0/fernspiel/internal/config"
	"github.com/aretw0/fernspiel/internal/presentation/tui"
	mcpAdapter "github.com/aretw0/fernspiel/pkg/adapters/mcp"
	"github.com/aretw0/fernspiel/pkg/domain"
	"github.com/aretw0/fernspiel/pkg/runner"
	"github.com/aretw0/fernspiel/pkg/sensors"
)

const shutdownTimeout = 5 * time.Second

// RunOptions contains all the configuration for the run and mcp commands.
type RunOptions struct {
	BookPath string
	Config   config.Config

	// MCP serves the control tools, over Stdin/Stdout unless MCPAddr is set.
	// Stdio excludes the keyboard sensor.
	MCP bool
	// MCPAddr serves MCP over SSE on this address instead of Stdio.
	MCPAddr string

	// Quiet suppresses the banner and system messages.
	Quiet bool

	Stdin io.Reader
	// Out receives the banner and system messages. Defaults to os.Stderr.
	Out io.Writer
}

func (o RunOptions) out() io.Writer {
	if o.Quiet {
		return nil
	}
	if o.Out != nil {
		return o.Out
	}
	return os.Stderr
}

func (o RunOptions) bookDir() string {
	if o.BookPath == "" {
		return "."
	}
	return filepath.Dir(o.BookPath)
}

// Execute runs a book until ctx is cancelled, the session fails, or the book
// finishes with ExitOnTerminal set.
func Execute(ctx context.Context, opts RunOptions) error {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return err
	}
	if opts.MCP && opts.MCPAddr == "" && cfg.Keyboard {
		return errors.New("the keyboard sensor cannot be used with MCP over stdio")
	}

	logger := createLogger(cfg.Debug)
	out := opts.out()
	if out != nil {
		tui.PrintBanner(out, fernspiel.Version)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	b, err := loadBook(opts.BookPath)
	if err != nil {
		return err
	}

	st, err := buildStack(ctx, cfg, opts.bookDir(), logger)
	if err != nil {
		if b != nil {
			_ = b.Close()
		}
		return err
	}
	defer st.Close()

	runOpts := []fernspiel.Option{
		fernspiel.WithServer(st.servers...),
		fernspiel.WithInputSource(st.queue),
		fernspiel.WithLogger(logger),
		fernspiel.WithLifecycleHooks(st.metrics.Hooks(domain.LifecycleHooks{
			OnSwitch: func(ctx context.Context, name string, err error) {
				if err != nil {
					printSystemMessage(out, "Book '%s' rejected: %v", name, err)
					return
				}
				printSystemMessage(out, "Now playing '%s'.", name)
			},
		})),
	}
	if st.phone != nil {
		runOpts = append(runOpts, fernspiel.WithPhone(st.phone))
	}
	if cfg.Keyboard {
		kb := sensors.NewKeyboard(logger)
		stdin := opts.Stdin
		if stdin == nil {
			stdin = os.Stdin
		}
		restore, err := kb.Listen(ctx, stdin)
		if err != nil {
			if b != nil {
				_ = b.Close()
			}
			return err
		}
		defer restore()
		runOpts = append(runOpts, fernspiel.WithInputSource(kb))
		printSystemMessage(out, "Keyboard dialing: 0-9 dial, p picks up, h hangs up.")
	}

	run, err := fernspiel.New(ctx, b, runOpts...)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer run.Close()

	r := runner.New(run,
		runner.WithInterval(cfg.TickInterval),
		runner.WithDialQueue(st.queue),
		runner.WithExitOnTerminal(cfg.ExitOnTerminal),
		runner.WithLogger(logger),
	)
	st.control.Control = r

	go r.ResetOnHangup(ctx)

	errCh := make(chan error, 2)
	var httpSrv *http.Server
	if st.http != nil {
		httpSrv = &http.Server{Addr: cfg.Addr, Handler: st.http.Handler()}
		go func() {
			logger.Info("HTTP server listening", "addr", cfg.Addr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("http server failed: %w", err)
				cancel()
			}
		}()
	}

	if cfg.Watch && opts.BookPath != "" {
		go func() {
			if err := watchBook(ctx, opts.BookPath, r, logger, out); err != nil {
				logger.Error("Watcher stopped", "err", err)
			}
		}()
	}

	if opts.MCP {
		srv := mcpAdapter.NewServer(r, logger)
		go func() {
			var err error
			if opts.MCPAddr != "" {
				err = srv.ServeSSE(ctx, opts.MCPAddr)
			} else {
				err = srv.ServeStdio()
			}
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("MCP server failed", "err", err)
			}
			cancel()
		}()
	}

	printSystemMessage(out, "Session '%s' started with '%s'.", run.RunID(), run.Book().Name())
	runErr := r.Run(ctx)

	if httpSrv != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown incomplete", "err", err)
		}
		stop()
	}

	select {
	case err := <-errCh:
		return errors.Join(runErr, err)
	default:
	}
	if runErr != nil {
		return runErr
	}
	printSystemMessage(out, "Stopped %s.", describeStatus(run.Status()))
	return nil
}
