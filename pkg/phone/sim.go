package phone

import (
	"sync"

	"github.com/aretw0/fernspiel/pkg/domain"
)

// SimLine is an in-memory Line used when no hardware is attached.
// Inputs pushed with Press are returned by Poll in order.
type SimLine struct {
	mu      sync.Mutex
	pending []domain.Input
	offHook bool
	ringing bool
	rings   int
}

// NewSimLine creates a line that starts on hook and silent.
func NewSimLine() *SimLine {
	return &SimLine{}
}

// Press queues an input. Hook inputs also update the hook state.
func (s *SimLine) Press(in domain.Input) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch in {
	case domain.InputPickUp:
		s.offHook = true
	case domain.InputHangUp:
		s.offHook = false
	}
	s.pending = append(s.pending, in)
}

func (s *SimLine) Ring(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on && !s.ringing {
		s.rings++
	}
	s.ringing = on
	return nil
}

func (s *SimLine) Poll() (domain.Input, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return "", false
	}
	in := s.pending[0]
	s.pending = s.pending[1:]
	return in, true
}

func (s *SimLine) OffHook() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offHook
}

// Ringing reports whether the bell is currently on.
func (s *SimLine) Ringing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ringing
}

// Rings returns how many times the bell was switched on.
func (s *SimLine) Rings() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rings
}
