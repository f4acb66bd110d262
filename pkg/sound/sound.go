// Package sound describes the sounds a book plays and the players that produce them.
package sound

import (
	"strings"
	"time"
)

// DefaultWordsPerMinute is the speaking rate used to estimate speech durations.
const DefaultWordsPerMinute = 150

// Definition describes one sound of a book.
type Definition struct {
	Name        string        `json:"name" mapstructure:"name"`
	File        string        `json:"file,omitempty" mapstructure:"file"`
	Speech      string        `json:"speech,omitempty" mapstructure:"speech"`
	Volume      float64       `json:"volume" mapstructure:"volume"`
	Loop        bool          `json:"loop,omitempty" mapstructure:"loop"`
	StartOffset time.Duration `json:"start_offset,omitempty" mapstructure:"start_offset"`

	// Duration is the playback length of File. Speech durations are estimated when zero.
	Duration time.Duration `json:"duration,omitempty" mapstructure:"duration"`
}

// IsSpeech reports whether the sound is synthesized from text rather than read from a file.
func (d Definition) IsSpeech() bool {
	return d.Speech != ""
}

// Length returns the expected playback length, excluding the start offset.
func (d Definition) Length() time.Duration {
	total := d.Duration
	if total == 0 && d.IsSpeech() {
		total = SpeechDuration(d.Speech, DefaultWordsPerMinute)
	}
	total -= d.StartOffset
	if total < 0 {
		return 0
	}
	return total
}

// SpeechDuration estimates how long it takes to speak text at the given rate.
func SpeechDuration(text string, wordsPerMinute int) time.Duration {
	words := len(strings.Fields(text))
	if words == 0 || wordsPerMinute <= 0 {
		return 0
	}
	return time.Duration(words) * time.Minute / time.Duration(wordsPerMinute)
}

// Player starts playback of sounds.
type Player interface {
	Play(def Definition) (Playback, error)
}

// Playback is a sound that has been started.
// Done must not block.
type Playback interface {
	Done() bool
	Stop() error
}
