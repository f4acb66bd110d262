package sound

import (
	"sync"
	"time"
)

// TimedPlayer simulates playback by tracking the expected length of each sound
// against a clock. It is used when no audio backend is attached and in tests.
type TimedPlayer struct {
	now func() time.Time
}

// NewTimedPlayer creates a player reading time from now. A nil now uses time.Now.
func NewTimedPlayer(now func() time.Time) *TimedPlayer {
	if now == nil {
		now = time.Now
	}
	return &TimedPlayer{now: now}
}

// Play starts a simulated playback.
func (p *TimedPlayer) Play(def Definition) (Playback, error) {
	return &timedPlayback{
		now:  p.now,
		end:  p.now().Add(def.Length()),
		loop: def.Loop,
	}, nil
}

type timedPlayback struct {
	mu      sync.Mutex
	now     func() time.Time
	end     time.Time
	loop    bool
	stopped bool
}

func (t *timedPlayback) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return true
	}
	if t.loop {
		return false
	}
	return !t.now().Before(t.end)
}

func (t *timedPlayback) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	return nil
}
