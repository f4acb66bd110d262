package book

import (
	"sync"

	"github.com/aretw0/fernspiel/pkg/domain"
	"github.com/aretw0/fernspiel/pkg/sound"
)

// PassiveName is the name of the book used when none is supplied.
const PassiveName = "passive"

// Book is a loaded story definition.
type Book struct {
	name   string
	states []domain.State
	sounds []sound.Definition

	cleanup   func() error
	closeOnce sync.Once
	closeErr  error
}

// Passive returns a book with a single inert state: no outputs, no transitions
// and not terminal. It keeps a session idle until another book is loaded.
func Passive() *Book {
	return &Book{
		name: PassiveName,
		states: []domain.State{
			{ID: PassiveName, Name: "Passive"},
		},
	}
}

// Name returns the book name.
func (b *Book) Name() string {
	return b.name
}

// States returns the states in index order. Index 0 is the initial state.
func (b *Book) States() []domain.State {
	return b.states
}

// Sounds returns the sound definitions with file paths resolved.
func (b *Book) Sounds() []sound.Definition {
	return b.sounds
}

// SoundNames returns the names of the sounds at the given indices.
func (b *Book) SoundNames(indices []int) []string {
	names := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(b.sounds) {
			names = append(names, b.sounds[idx].Name)
		}
	}
	return names
}

// IndexOf returns the index of the state with the given ID.
func (b *Book) IndexOf(id string) (int, bool) {
	for i := range b.states {
		if b.states[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

// Close releases on-disk resources owned by the book. It is safe to call more than once.
func (b *Book) Close() error {
	b.closeOnce.Do(func() {
		if b.cleanup != nil {
			b.closeErr = b.cleanup()
		}
	})
	return b.closeErr
}
