package domain

import (
	"context"
	"time"
)

// StateEvent is published to observers whenever a state is entered.
type StateEvent struct {
	RunID     string    `json:"run_id"`
	Book      string    `json:"book"`
	StateID   string    `json:"state_id"`
	Name      string    `json:"name"`
	Sounds    []string  `json:"sounds,omitempty"`
	Terminal  bool      `json:"terminal,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TransitionEvent describes a single state change inside the machine.
type TransitionEvent struct {
	From      int       `json:"from"`
	To        int       `json:"to"`
	Cause     Cause     `json:"cause"`
	Timestamp time.Time `json:"timestamp"`
}

// Cause names the signal class that triggered a transition.
type Cause string

const (
	CauseTimeout Cause = "timeout"
	CauseEnd     Cause = "end"
	CauseInput   Cause = "input"
	CauseReset   Cause = "reset"
	CauseLoad    Cause = "load"
)

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnTransition func(context.Context, *TransitionEvent)
	OnSwitch     func(ctx context.Context, book string, err error)
}
