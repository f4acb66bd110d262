package observability

import (
	"context"

	"github.com/aretw0/fernspiel/pkg/domain"
	"github.com/aretw0/fernspiel/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fernspiel"

// Metrics collects engine metrics.
type Metrics struct {
	states      *prometheus.CounterVec
	transitions *prometheus.CounterVec
	switches    *prometheus.CounterVec
	terminal    prometheus.Gauge
}

var _ ports.EventServer = (*Metrics)(nil)

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		states: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_entries_total",
			Help:      "Number of entered states.",
		}, []string{"book", "state"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Number of transitions by cause.",
		}, []string{"cause"}),
		switches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "book_switches_total",
			Help:      "Number of book switches by outcome.",
		}, []string{"outcome"}),
		terminal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "terminal",
			Help:      "1 while the session rests in a terminal state.",
		}),
	}

	for _, c := range []prometheus.Collector{m.states, m.transitions, m.switches, m.terminal} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Publish counts an entered state.
func (m *Metrics) Publish(ctx context.Context, event domain.StateEvent) error {
	m.states.WithLabelValues(event.Book, event.StateID).Inc()
	if event.Terminal {
		m.terminal.Set(1)
	} else {
		m.terminal.Set(0)
	}
	return nil
}

// Hooks returns lifecycle hooks feeding the transition and switch counters.
// next, if set, is called after the metrics are updated.
func (m *Metrics) Hooks(next domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			m.transitions.WithLabelValues(string(e.Cause)).Inc()
			if next.OnTransition != nil {
				next.OnTransition(ctx, e)
			}
		},
		OnSwitch: func(ctx context.Context, book string, err error) {
			outcome := "accepted"
			if err != nil {
				outcome = "rejected"
			}
			m.switches.WithLabelValues(outcome).Inc()
			if next.OnSwitch != nil {
				next.OnSwitch(ctx, book, err)
			}
		},
	}
}
