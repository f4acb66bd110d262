// Package acts drives the physical outputs of a state: sounds and the phone bell.
package acts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/fernspiel/internal/logging"
	"github.com/aretw0/fernspiel/pkg/domain"
	"github.com/aretw0/fernspiel/pkg/phone"
	"github.com/aretw0/fernspiel/pkg/sound"
)

// Actuators plays the sounds of a book and rings the phone.
// It implements ports.Responder.
type Actuators struct {
	phone  *phone.Phone
	sounds []sound.Definition
	player sound.Player
	now    func() time.Time
	logger *slog.Logger

	playing   []playing
	ringing   bool
	ringUntil time.Time
}

type playing struct {
	index    int
	loop     bool
	playback sound.Playback
}

// Option configures Actuators.
type Option func(*Actuators)

// WithPlayer sets the audio backend. Defaults to a TimedPlayer on the configured clock.
func WithPlayer(p sound.Player) Option {
	return func(a *Actuators) {
		a.player = p
	}
}

// WithClock sets the time source for ring durations.
func WithClock(now func() time.Time) Option {
	return func(a *Actuators) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Actuators) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New prepares actuators for the sounds of a book.
// It fails with domain.ErrMissingSound if a file based sound does not exist.
// A nil phone disables ringing.
func New(p *phone.Phone, sounds []sound.Definition, opts ...Option) (*Actuators, error) {
	a := &Actuators{
		phone:  p,
		sounds: sounds,
		now:    time.Now,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.player == nil {
		a.player = sound.NewTimedPlayer(a.now)
	}

	for _, def := range sounds {
		if def.IsSpeech() {
			continue
		}
		if _, err := os.Stat(def.File); err != nil {
			return nil, fmt.Errorf("%w: sound %q at %s: %w", domain.ErrMissingSound, def.Name, def.File, err)
		}
	}
	return a, nil
}

// Enter starts the sounds of state and rings the phone if requested.
func (a *Actuators) Enter(ctx context.Context, state *domain.State) error {
	for _, idx := range state.Sounds {
		if idx < 0 || idx >= len(a.sounds) {
			return fmt.Errorf("state %q references unknown sound %d", state.ID, idx)
		}
		def := a.sounds[idx]
		pb, err := a.player.Play(def)
		if err != nil {
			return fmt.Errorf("failed to play sound %q: %w", def.Name, err)
		}
		a.playing = append(a.playing, playing{index: idx, loop: def.Loop, playback: pb})
		a.logger.Debug("Playing sound", "sound", def.Name, "loop", def.Loop)
	}

	if state.Ring > 0 && a.phone != nil {
		if err := a.phone.With(func(l phone.Line) error { return l.Ring(true) }); err != nil {
			return fmt.Errorf("failed to ring phone: %w", err)
		}
		a.ringing = true
		a.ringUntil = a.now().Add(state.Ring)
	}
	return nil
}

// Exit stops every playback and the bell.
func (a *Actuators) Exit(ctx context.Context) error {
	var errs []error
	for _, p := range a.playing {
		if err := p.playback.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop sound %q: %w", a.sounds[p.index].Name, err))
		}
	}
	a.playing = nil

	if err := a.stopRing(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Update silences the bell once its duration elapsed or the receiver was lifted.
func (a *Actuators) Update(ctx context.Context) error {
	if !a.ringing {
		return nil
	}
	if !a.now().Before(a.ringUntil) {
		return a.stopRing()
	}
	return a.phone.With(func(l phone.Line) error {
		if !l.OffHook() {
			return nil
		}
		a.ringing = false
		return l.Ring(false)
	})
}

// Done reports whether the bell is silent and all non-looping sounds have finished.
// Looping sounds never keep a state busy.
func (a *Actuators) Done() bool {
	if a.ringing {
		return false
	}
	for _, p := range a.playing {
		if !p.loop && !p.playback.Done() {
			return false
		}
	}
	return true
}

// Active returns the indices of the sounds still playing.
func (a *Actuators) Active() []int {
	var out []int
	for _, p := range a.playing {
		if !p.playback.Done() {
			out = append(out, p.index)
		}
	}
	return out
}

func (a *Actuators) stopRing() error {
	if !a.ringing {
		return nil
	}
	a.ringing = false
	if err := a.phone.With(func(l phone.Line) error { return l.Ring(false) }); err != nil {
		return fmt.Errorf("failed to stop ringing: %w", err)
	}
	return nil
}
