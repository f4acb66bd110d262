package acts_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/fernspiel/pkg/acts"
	"github.com/aretw0/fernspiel/pkg/domain"
	"github.com/aretw0/fernspiel/pkg/phone"
	"github.com/aretw0/fernspiel/pkg/sound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time          { return c.now }
func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestNew_MissingSoundFile(t *testing.T) {
	_, err := acts.New(nil, []sound.Definition{
		{Name: "ghost", File: filepath.Join(t.TempDir(), "ghost.ogg")},
	})
	assert.ErrorIs(t, err, domain.ErrMissingSound)
}

func TestNew_SpeechNeedsNoFile(t *testing.T) {
	_, err := acts.New(nil, []sound.Definition{{Name: "hello", Speech: "hello there"}})
	assert.NoError(t, err)
}

func TestActuators_SoundCompletion(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "tone.ogg")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	c := &clock{now: time.Unix(0, 0)}
	a, err := acts.New(nil, []sound.Definition{
		{Name: "tone", File: file, Duration: 2 * time.Second},
		{Name: "bed", File: file, Duration: time.Second, Loop: true},
	}, acts.WithClock(c.Now))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.Enter(ctx, &domain.State{ID: "s", Sounds: []int{0, 1}}))
	assert.False(t, a.Done())
	assert.ElementsMatch(t, []int{0, 1}, a.Active())

	c.Advance(2 * time.Second)
	require.NoError(t, a.Update(ctx))
	assert.True(t, a.Done(), "looping sounds must not keep the state busy")
	assert.Equal(t, []int{1}, a.Active())

	require.NoError(t, a.Exit(ctx))
	assert.Empty(t, a.Active())
}

func TestActuators_Ring(t *testing.T) {
	line := phone.NewSimLine()
	c := &clock{now: time.Unix(0, 0)}
	a, err := acts.New(phone.New(line), nil, acts.WithClock(c.Now))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.Enter(ctx, &domain.State{ID: "ring", Ring: 3 * time.Second}))
	assert.True(t, line.Ringing())
	assert.False(t, a.Done())

	c.Advance(time.Second)
	require.NoError(t, a.Update(ctx))
	assert.True(t, line.Ringing())

	c.Advance(2 * time.Second)
	require.NoError(t, a.Update(ctx))
	assert.False(t, line.Ringing())
	assert.True(t, a.Done())
}

func TestActuators_RingStopsWhenPickedUp(t *testing.T) {
	line := phone.NewSimLine()
	c := &clock{now: time.Unix(0, 0)}
	a, err := acts.New(phone.New(line), nil, acts.WithClock(c.Now))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.Enter(ctx, &domain.State{ID: "ring", Ring: time.Minute}))
	line.Press(domain.InputPickUp)

	require.NoError(t, a.Update(ctx))
	assert.False(t, line.Ringing())
	assert.True(t, a.Done())
}

func TestActuators_ExitSilencesBell(t *testing.T) {
	line := phone.NewSimLine()
	a, err := acts.New(phone.New(line), nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.Enter(ctx, &domain.State{ID: "ring", Ring: time.Minute}))
	require.NoError(t, a.Exit(ctx))
	assert.False(t, line.Ringing())
	assert.Equal(t, 1, line.Rings())
}

func TestActuators_UnknownSoundIndex(t *testing.T) {
	a, err := acts.New(nil, nil)
	require.NoError(t, err)
	assert.Error(t, a.Enter(context.Background(), &domain.State{ID: "s", Sounds: []int{3}}))
}
