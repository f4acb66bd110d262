package phone

import (
	"errors"
	"sync"
	"testing"

	"github.com/aretw0/fernspiel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhone_WithPropagatesError(t *testing.T) {
	p := New(NewSimLine())
	boom := errors.New("boom")

	err := p.With(func(Line) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestPhone_Status(t *testing.T) {
	line := NewSimLine()
	p := New(line)

	line.Press(domain.InputPickUp)
	require.NoError(t, p.With(func(l Line) error { return l.Ring(true) }))

	st := p.Status()
	assert.True(t, st.OffHook)
	assert.True(t, st.Ringing)
}

func TestPhone_ConcurrentAccess(t *testing.T) {
	line := NewSimLine()
	p := New(line)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = p.With(func(l Line) error { return l.Ring(true) })
			_ = p.With(func(l Line) error { return l.Ring(false) })
		}()
		go func() {
			defer wg.Done()
			_ = p.Status()
		}()
	}
	wg.Wait()

	assert.Positive(t, line.Rings())
	assert.False(t, line.Ringing())
}

func TestSimLine_PollOrder(t *testing.T) {
	line := NewSimLine()
	line.Press(domain.InputPickUp)
	line.Press(domain.Dial(4))

	in, ok := line.Poll()
	require.True(t, ok)
	assert.Equal(t, domain.InputPickUp, in)

	in, ok = line.Poll()
	require.True(t, ok)
	assert.Equal(t, domain.Input("4"), in)

	_, ok = line.Poll()
	assert.False(t, ok)
}
