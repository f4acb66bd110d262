package domain

import "time"

// State is a node of the story graph.
// States are built once when a book is loaded and never mutated afterwards.
type State struct {
	// ID is unique within a book.
	ID string `json:"id" yaml:"id"`

	// Name is the display name used in logs and events.
	Name string `json:"name" yaml:"name"`

	// Sounds holds the indices of the book sounds played on entry.
	Sounds []int `json:"sounds,omitempty" yaml:"sounds,omitempty"`

	// Ring rings the phone on entry for the given duration. Zero means no ring.
	Ring time.Duration `json:"ring,omitempty" yaml:"ring,omitempty"`

	// Timeout forces a transition once the state has been active for Timeout.After.
	Timeout *Timeout `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// End is taken once all outputs of the state have finished.
	End *int `json:"end,omitempty" yaml:"end,omitempty"`

	// Inputs maps sensed symbols to target state indices.
	Inputs map[Input]int `json:"inputs,omitempty" yaml:"inputs,omitempty"`

	// Terminal states have no outgoing transitions and are never exited.
	Terminal bool `json:"terminal,omitempty" yaml:"terminal,omitempty"`
}

// Timeout is a forced transition after a fixed time in a state.
type Timeout struct {
	After time.Duration `json:"after" yaml:"after"`
	To    int           `json:"to" yaml:"to"`
}

// IsTerminal reports whether the state ends the story.
func (s *State) IsTerminal() bool {
	return s.Terminal
}

// Label returns the name, falling back to the ID.
func (s *State) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}

// TransitionForTimeout returns the timeout target if the state was entered
// at least Timeout.After before now.
func (s *State) TransitionForTimeout(entered, now time.Time) (int, bool) {
	if s.Timeout == nil {
		return 0, false
	}
	if now.Sub(entered) < s.Timeout.After {
		return 0, false
	}
	return s.Timeout.To, true
}

// TransitionEnd returns the target taken when all outputs are done.
func (s *State) TransitionEnd() (int, bool) {
	if s.End == nil {
		return 0, false
	}
	return *s.End, true
}

// TransitionForInput returns the target mapped to the given input.
func (s *State) TransitionForInput(in Input) (int, bool) {
	to, ok := s.Inputs[in]
	return to, ok
}

// HasTransitions reports whether any outgoing transition is defined.
func (s *State) HasTransitions() bool {
	return s.Timeout != nil || s.End != nil || len(s.Inputs) > 0
}
