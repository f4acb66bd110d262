package book

import (
	"fmt"
	"time"

	"github.com/aretw0/fernspiel/pkg/domain"
	"github.com/aretw0/fernspiel/pkg/sound"
)

// Builder manages the construction of a book in code.
type Builder struct {
	def     Definition
	states  map[string]*StateBuilder
	baseDir string
}

// New creates a new book builder.
func New(name string) *Builder {
	return &Builder{
		def: Definition{
			Name:   name,
			Sounds: make(map[string]SoundSpec),
		},
		states: make(map[string]*StateBuilder),
	}
}

// BaseDir sets the directory relative sound files are resolved against.
func (b *Builder) BaseDir(dir string) *Builder {
	b.baseDir = dir
	return b
}

// Initial selects the initial state. By default the first added state is initial.
func (b *Builder) Initial(id string) *Builder {
	b.def.Initial = id
	return b
}

// Sound registers a named sound.
func (b *Builder) Sound(name string, def sound.Definition) *Builder {
	volume := def.Volume
	if volume == 0 {
		volume = 1.0
	}
	b.def.Sounds[name] = SoundSpec{
		File:        def.File,
		Speech:      def.Speech,
		Volume:      &volume,
		Loop:        def.Loop,
		StartOffset: def.StartOffset,
		Duration:    def.Duration,
	}
	return b
}

// State adds a state in order. If the state already exists, it returns the existing builder.
func (b *Builder) State(id string) *StateBuilder {
	if sb, ok := b.states[id]; ok {
		return sb
	}
	b.def.States = append(b.def.States, StateSpec{ID: id})
	sb := &StateBuilder{builder: b, idx: len(b.def.States) - 1}
	b.states[id] = sb
	return sb
}

// Build compiles the book.
func (b *Builder) Build() (*Book, error) {
	bk, err := Compile(b.def, b.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to build book %q: %w", b.def.Name, err)
	}
	return bk, nil
}

// MustBuild is like Build but panics on error. Intended for tests and fixtures.
func (b *Builder) MustBuild() *Book {
	bk, err := b.Build()
	if err != nil {
		panic(err)
	}
	return bk
}

// StateBuilder provides a fluent API for configuring a state.
type StateBuilder struct {
	builder *Builder
	idx     int
}

func (s *StateBuilder) spec() *StateSpec {
	return &s.builder.def.States[s.idx]
}

// Name sets the display name.
func (s *StateBuilder) Name(name string) *StateBuilder {
	s.spec().Name = name
	return s
}

// Sounds appends sounds played on entry.
func (s *StateBuilder) Sounds(names ...string) *StateBuilder {
	s.spec().Sounds = append(s.spec().Sounds, names...)
	return s
}

// Ring rings the phone on entry for d.
func (s *StateBuilder) Ring(d time.Duration) *StateBuilder {
	s.spec().Ring = d
	return s
}

// Timeout adds a forced transition after d.
func (s *StateBuilder) Timeout(d time.Duration, target string) *StateBuilder {
	s.spec().Timeout = &TimeoutSpec{After: d, To: target}
	return s
}

// End adds a transition taken once all outputs have finished.
func (s *StateBuilder) End(target string) *StateBuilder {
	s.spec().End = target
	return s
}

// Dial adds a transition for a dialed digit.
func (s *StateBuilder) Dial(digit int, target string) *StateBuilder {
	spec := s.spec()
	if spec.Dial == nil {
		spec.Dial = make(map[string]string)
	}
	spec.Dial[string(domain.Dial(digit))] = target
	return s
}

// On adds a transition for any input symbol.
func (s *StateBuilder) On(in domain.Input, target string) *StateBuilder {
	switch in {
	case domain.InputPickUp:
		s.spec().PickUp = target
	case domain.InputHangUp:
		s.spec().HangUp = target
	default:
		spec := s.spec()
		if spec.Dial == nil {
			spec.Dial = make(map[string]string)
		}
		spec.Dial[string(in)] = target
	}
	return s
}

// Terminal marks the state as the end of the story.
func (s *StateBuilder) Terminal() *StateBuilder {
	s.spec().Terminal = true
	return s
}

// State adds or returns another state on the same builder, for chaining.
func (s *StateBuilder) State(id string) *StateBuilder {
	return s.builder.State(id)
}

// Build compiles the book this state belongs to.
func (s *StateBuilder) Build() (*Book, error) {
	return s.builder.Build()
}

// MustBuild is like Build but panics on error.
func (s *StateBuilder) MustBuild() *Book {
	return s.builder.MustBuild()
}
