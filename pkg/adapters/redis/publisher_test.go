package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/fernspiel/pkg/adapters/redis"
	"github.com/aretw0/fernspiel/pkg/domain"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPublisher(t *testing.T, opts ...redis.Option) (*redis.Publisher, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	p := redis.NewFromClient(client, opts...)
	t.Cleanup(func() { _ = p.Close() })
	return p, mr
}

func TestPublisher_StoresLastEvent(t *testing.T) {
	p, _ := newPublisher(t)
	ctx := context.Background()

	_, err := p.Last(ctx, "run-1")
	assert.ErrorIs(t, err, redis.ErrNoEvent)

	first := domain.StateEvent{RunID: "run-1", Book: "demo", StateID: "ring", Timestamp: time.Unix(100, 0).UTC()}
	second := domain.StateEvent{RunID: "run-1", Book: "demo", StateID: "greet", Sounds: []string{"intro"}, Timestamp: time.Unix(101, 0).UTC()}
	require.NoError(t, p.Publish(ctx, first))
	require.NoError(t, p.Publish(ctx, second))

	last, err := p.Last(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, second, *last)

	runs, err := p.Runs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-1"}, runs)
}

func TestPublisher_TTL(t *testing.T) {
	p, mr := newPublisher(t, redis.WithTTL(time.Minute), redis.WithPrefix("test:"))
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, domain.StateEvent{RunID: "r", StateID: "s"}))
	assert.True(t, mr.Exists("test:r"))

	mr.FastForward(2 * time.Minute)
	_, err := p.Last(ctx, "r")
	assert.ErrorIs(t, err, redis.ErrNoEvent)
}

func TestPublisher_Subscribe(t *testing.T) {
	p, _ := newPublisher(t, redis.WithChannel("calls"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := p.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, p.Publish(ctx, domain.StateEvent{RunID: "r", StateID: "menu"}))

	select {
	case e := <-events:
		assert.Equal(t, "menu", e.StateID)
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}
