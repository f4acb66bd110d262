// Package sensors provides the input sources polled by the machine once per tick.
package sensors

import (
	"github.com/aretw0/fernspiel/pkg/domain"
	"github.com/aretw0/fernspiel/pkg/phone"
	"github.com/aretw0/fernspiel/pkg/ports"
)

// Init builds the sensors for a phone. A nil phone yields sensors that never fire.
func Init(p *phone.Phone) ports.Sensors {
	if p == nil {
		return Nop{}
	}
	return &Phone{phone: p}
}

// Nop never reports input.
type Nop struct{}

func (Nop) Poll() (domain.Input, bool) { return "", false }

// Phone polls the hardware line, holding the line lock only during the poll.
type Phone struct {
	phone *phone.Phone
}

func (s *Phone) Poll() (domain.Input, bool) {
	var (
		in domain.Input
		ok bool
	)
	_ = s.phone.With(func(l phone.Line) error {
		in, ok = l.Poll()
		return nil
	})
	return in, ok
}

// Chain polls sources in order and returns the first input found.
// Sources after the first hit are not polled during that call.
type Chain []ports.Sensors

func (c Chain) Poll() (domain.Input, bool) {
	for _, s := range c {
		if in, ok := s.Poll(); ok {
			return in, true
		}
	}
	return "", false
}
