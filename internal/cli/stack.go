package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/fernspiel/internal/config"
	httpAdapter "github.com/aretw0/fernspiel/pkg/adapters/http"
	"github.com/aretw0/fernspiel/pkg/adapters/memory"
	"github.com/aretw0/fernspiel/pkg/adapters/process"
	redisAdapter "github.com/aretw0/fernspiel/pkg/adapters/redis"
	"github.com/aretw0/fernspiel/pkg/adapters/sqlite"
	"github.com/aretw0/fernspiel/pkg/observability"
	"github.com/aretw0/fernspiel/pkg/phone"
	"github.com/aretw0/fernspiel/pkg/ports"
	"github.com/aretw0/fernspiel/pkg/sensors"
	"github.com/prometheus/client_golang/prometheus"
)

// memoryJournalLimit bounds the per-run history kept when no journal file is configured.
const memoryJournalLimit = 1000

// stack holds the adapters a run is wired to.
type stack struct {
	phone    *phone.Phone
	line     *phone.SimLine
	queue    *sensors.Queue
	registry *prometheus.Registry
	metrics  *observability.Metrics
	journal  ports.Journal
	http     *httpAdapter.Server
	servers  []ports.EventServer
	control  *controlRef
	closers  []func() error
}

// buildStack creates the phone, dial queue and event servers selected by cfg.
// A line driver takes precedence over the simulated line.
// Relative sound files of books uploaded over HTTP resolve against bookDir.
func buildStack(ctx context.Context, cfg config.Config, bookDir string, logger *slog.Logger) (_ *stack, err error) {
	st := &stack{
		queue:    sensors.NewQueue(sensors.DefaultQueueSize),
		registry: prometheus.NewRegistry(),
		control:  &controlRef{},
	}
	defer func() {
		if err != nil {
			_ = st.Close()
		}
	}()

	switch {
	case cfg.LineDriver != "":
		drv, err := process.LoadDriver(cfg.LineDriver)
		if err != nil {
			return nil, err
		}
		line, err := process.Start(ctx, drv, process.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		st.phone = phone.New(line)
		st.closers = append(st.closers, line.Close)
		logger.Info("Line driver started", "command", drv.Command)
	case cfg.SimPhone:
		st.line = phone.NewSimLine()
		st.phone = phone.New(st.line)
	default:
		logger.Warn("No phone line attached, ringing and line sensing are disabled")
	}

	metrics, err := observability.NewMetrics(st.registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	st.metrics = metrics
	st.servers = append(st.servers, metrics)

	if cfg.Journal != "" {
		j, err := sqlite.Open(ctx, cfg.Journal)
		if err != nil {
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		st.journal = j
		st.closers = append(st.closers, j.Close)
		logger.Info("Journal opened", "path", cfg.Journal)
	} else {
		st.journal = memory.NewJournal(memoryJournalLimit)
	}
	st.servers = append(st.servers, st.journal)

	if cfg.RedisAddr != "" {
		pub := redisAdapter.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redisAdapter.WithChannel(cfg.RedisChannel))
		st.servers = append(st.servers, pub)
		st.closers = append(st.closers, pub.Close)
		logger.Info("Publishing to Redis", "addr", cfg.RedisAddr, "channel", cfg.RedisChannel)
	}

	if cfg.Addr != "" {
		srv, err := httpAdapter.NewServer(ctx,
			httpAdapter.WithControl(st.control),
			httpAdapter.WithPhone(st.phone),
			httpAdapter.WithGatherer(st.registry),
			httpAdapter.WithJournal(st.journal),
			httpAdapter.WithBookDir(bookDir),
			httpAdapter.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create http server: %w", err)
		}
		st.http = srv
		st.servers = append(st.servers, srv)
	}

	return st, nil
}

// Close releases the adapters in reverse order of creation.
func (st *stack) Close() error {
	var errs []error
	for i := len(st.closers) - 1; i >= 0; i-- {
		if err := st.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	st.closers = nil
	return errors.Join(errs...)
}
