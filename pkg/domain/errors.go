package domain

import "errors"

// ErrNoStates is returned when a machine or book is built without any state.
var ErrNoStates = errors.New("expected at least one state")

// ErrActuation wraps failures of output drivers while entering, exiting or updating a state.
// Such errors abort the current tick and are not retried.
var ErrActuation = errors.New("actuation failed")

// ErrMissingSound is returned when a book references a sound file that does not exist.
var ErrMissingSound = errors.New("sound file not found")

// ErrUnknownInput is returned when text cannot be converted into an Input.
var ErrUnknownInput = errors.New("unknown input symbol")

// ErrRunnerStopped is returned for commands sent to a runner that is no longer ticking.
var ErrRunnerStopped = errors.New("runner stopped")
