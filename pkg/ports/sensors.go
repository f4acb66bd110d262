package ports

import "github.com/aretw0/fernspiel/pkg/domain"

// Sensors is a polled source of input symbols.
// Poll must not block and never fails; hardware faults are reported as no input.
type Sensors interface {
	Poll() (domain.Input, bool)
}
