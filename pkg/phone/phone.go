// Package phone provides the shared handle to the telephone hardware.
//
// The same *Phone is held by the actuators, the phone sensors and the network
// server. Every access goes through With, which holds the lock only for the
// duration of a single driver call.
package phone

import (
	"sync"

	"github.com/aretw0/fernspiel/pkg/domain"
)

// Line is the hardware driver boundary of a telephone.
type Line interface {
	// Ring starts or stops the bell.
	Ring(on bool) error

	// Poll returns the next pending input (dialed digit or hook change), if any.
	// It must not block.
	Poll() (domain.Input, bool)

	// OffHook reports whether the receiver is currently lifted.
	OffHook() bool
}

// Phone serializes access to a Line.
type Phone struct {
	mu   sync.Mutex
	line Line
}

// New wraps a line in a shared handle.
func New(line Line) *Phone {
	return &Phone{line: line}
}

// With runs fn while holding the line lock.
func (p *Phone) With(fn func(Line) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fn(p.line)
}

// Status is a snapshot of the line.
type Status struct {
	OffHook bool `json:"off_hook"`
	Ringing bool `json:"ringing"`
}

// Status reads the current line state.
func (p *Phone) Status() Status {
	var st Status
	_ = p.With(func(l Line) error {
		st.OffHook = l.OffHook()
		if r, ok := l.(interface{ Ringing() bool }); ok {
			st.Ringing = r.Ringing()
		}
		return nil
	})
	return st
}
