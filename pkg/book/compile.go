package book

import (
	"path/filepath"
	"sort"

	"github.com/aretw0/fernspiel/pkg/domain"
	"github.com/aretw0/fernspiel/pkg/sound"
)

// Compile validates a definition and resolves it into a Book.
// Relative sound files are resolved against baseDir.
// All problems are reported at once as an *AggregateError.
func Compile(def Definition, baseDir string) (*Book, error) {
	var errs []error
	report := func(state, field, reason string) {
		errs = append(errs, &ValidationError{State: state, Field: field, Reason: reason})
	}

	if len(def.States) == 0 {
		return nil, &AggregateError{Errors: []error{
			&ValidationError{Field: "states", Reason: domain.ErrNoStates.Error()},
		}}
	}

	specs := orderStates(def.States, def.Initial)
	if def.Initial != "" && specs[0].ID != def.Initial {
		report("", "initial", "unknown state "+def.Initial)
	}

	stateIdx := make(map[string]int, len(specs))
	for i, s := range specs {
		if s.ID == "" {
			report("", "states", "state without id")
			continue
		}
		if _, dup := stateIdx[s.ID]; dup {
			report(s.ID, "id", "duplicate state id")
			continue
		}
		stateIdx[s.ID] = i
	}

	soundNames := make([]string, 0, len(def.Sounds))
	for name := range def.Sounds {
		soundNames = append(soundNames, name)
	}
	sort.Strings(soundNames)

	soundIdx := make(map[string]int, len(soundNames))
	sounds := make([]sound.Definition, 0, len(soundNames))
	for _, name := range soundNames {
		spec := def.Sounds[name]
		if spec.File == "" && spec.Speech == "" {
			report("", "sounds."+name, "either file or speech is required")
		}
		if spec.Duration < 0 || spec.StartOffset < 0 {
			report("", "sounds."+name, "durations must not be negative")
		}
		soundIdx[name] = len(sounds)
		sounds = append(sounds, resolveSound(name, spec, baseDir))
	}

	target := func(state, field, id string) int {
		idx, ok := stateIdx[id]
		if !ok {
			report(state, field, "unknown state "+id)
		}
		return idx
	}

	states := make([]domain.State, 0, len(specs))
	for _, s := range specs {
		st := domain.State{
			ID:       s.ID,
			Name:     s.Name,
			Ring:     s.Ring,
			Terminal: s.Terminal,
		}
		if s.Ring < 0 {
			report(s.ID, "ring", "duration must not be negative")
		}

		for _, name := range s.Sounds {
			idx, ok := soundIdx[name]
			if !ok {
				report(s.ID, "sounds", "unknown sound "+name)
				continue
			}
			st.Sounds = append(st.Sounds, idx)
		}

		if s.Timeout != nil {
			if s.Timeout.After < 0 {
				report(s.ID, "timeout.after", "duration must not be negative")
			}
			st.Timeout = &domain.Timeout{
				After: s.Timeout.After,
				To:    target(s.ID, "timeout.to", s.Timeout.To),
			}
		}

		if s.End != "" {
			end := target(s.ID, "end", s.End)
			st.End = &end
		}

		inputs := make(map[domain.Input]int)
		for key, to := range s.Dial {
			in := domain.Input(key)
			if !in.IsDigit() {
				report(s.ID, "dial", "not a digit: "+key)
				continue
			}
			inputs[in] = target(s.ID, "dial."+key, to)
		}
		if s.PickUp != "" {
			inputs[domain.InputPickUp] = target(s.ID, "pick_up", s.PickUp)
		}
		if s.HangUp != "" {
			inputs[domain.InputHangUp] = target(s.ID, "hang_up", s.HangUp)
		}
		if len(inputs) > 0 {
			st.Inputs = inputs
		}

		if st.Terminal && st.HasTransitions() {
			report(s.ID, "terminal", "terminal state must not have transitions")
		}

		states = append(states, st)
	}

	if len(errs) > 0 {
		return nil, &AggregateError{Errors: errs}
	}

	name := def.Name
	if name == "" {
		name = states[0].ID
	}
	return &Book{name: name, states: states, sounds: sounds}, nil
}

// orderStates moves the initial state to the front, keeping the others in order.
func orderStates(specs []StateSpec, initial string) []StateSpec {
	first := -1
	for i, s := range specs {
		if initial != "" && s.ID == initial {
			first = i
			break
		}
	}
	if first <= 0 {
		return specs
	}
	out := make([]StateSpec, 0, len(specs))
	out = append(out, specs[first])
	out = append(out, specs[:first]...)
	return append(out, specs[first+1:]...)
}

func resolveSound(name string, spec SoundSpec, baseDir string) sound.Definition {
	def := sound.Definition{
		Name:        name,
		File:        spec.File,
		Speech:      spec.Speech,
		Volume:      1.0,
		Loop:        spec.Loop,
		StartOffset: spec.StartOffset,
		Duration:    spec.Duration,
	}
	if spec.Volume != nil {
		def.Volume = *spec.Volume
	}
	if def.File != "" && baseDir != "" && !filepath.IsAbs(def.File) {
		def.File = filepath.Join(baseDir, def.File)
	}
	return def
}
