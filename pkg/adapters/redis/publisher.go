// Package redis fans state events out to remote observers through Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/fernspiel/pkg/domain"
	"github.com/aretw0/fernspiel/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// ErrNoEvent is returned by Last when nothing was published for a run.
var ErrNoEvent = errors.New("no state event published")

// DefaultChannel is the pub/sub channel events are published to.
const DefaultChannel = "fernspiel:events"

// Publisher implements ports.EventServer using Redis pub/sub.
// The last event of each run is also stored so late subscribers can catch up.
type Publisher struct {
	client  *backend.Client
	channel string
	prefix  string
	ttl     time.Duration
}

var _ ports.EventServer = (*Publisher)(nil)

type Option func(*Publisher)

// WithChannel sets the pub/sub channel.
func WithChannel(channel string) Option {
	return func(p *Publisher) {
		if channel != "" {
			p.channel = channel
		}
	}
}

// WithPrefix sets the key prefix for stored events.
func WithPrefix(prefix string) Option {
	return func(p *Publisher) {
		p.prefix = prefix
	}
}

// WithTTL sets the expiration of stored events.
func WithTTL(ttl time.Duration) Option {
	return func(p *Publisher) {
		p.ttl = ttl
	}
}

// New creates a publisher connected to address.
func New(address, password string, db int, opts ...Option) *Publisher {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a publisher from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Publisher {
	p := &Publisher{
		client:  client,
		channel: DefaultChannel,
		prefix:  "fernspiel:run:",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) key(runID string) string {
	return p.prefix + runID
}

func (p *Publisher) indexKey() string {
	return p.prefix + "index"
}

// Publish stores event as the last state of its run and broadcasts it.
func (p *Publisher) Publish(ctx context.Context, event domain.StateEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pipe := p.client.TxPipeline()
	pipe.Set(ctx, p.key(event.RunID), data, p.ttl)
	pipe.ZAdd(ctx, p.indexKey(), backend.Z{
		Score:  float64(event.Timestamp.Unix()),
		Member: event.RunID,
	})
	pipe.Publish(ctx, p.channel, data)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}
	return nil
}

// Last returns the last event published for a run.
func (p *Publisher) Last(ctx context.Context, runID string) (*domain.StateEvent, error) {
	val, err := p.client.Get(ctx, p.key(runID)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, ErrNoEvent
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var event domain.StateEvent
	if err := json.Unmarshal([]byte(val), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return &event, nil
}

// Runs lists the runs that published events, most recently active last.
func (p *Publisher) Runs(ctx context.Context) ([]string, error) {
	runs, err := p.client.ZRange(ctx, p.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Subscribe streams events published on the channel until ctx is cancelled.
func (p *Publisher) Subscribe(ctx context.Context) (<-chan domain.StateEvent, error) {
	sub := p.client.Subscribe(ctx, p.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan domain.StateEvent)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var event domain.StateEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close closes the redis client.
func (p *Publisher) Close() error {
	return p.client.Close()
}
