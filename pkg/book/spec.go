package book

import "time"

// Definition is the serialized form of a book, as found in YAML or JSON documents.
// States and transitions reference each other by ID; Compile resolves them to indices.
type Definition struct {
	Name    string               `mapstructure:"name"`
	Initial string               `mapstructure:"initial"`
	Sounds  map[string]SoundSpec `mapstructure:"sounds"`
	States  []StateSpec          `mapstructure:"states"`
}

// SoundSpec is the serialized form of a sound.
type SoundSpec struct {
	File        string        `mapstructure:"file"`
	Speech      string        `mapstructure:"speech"`
	Volume      *float64      `mapstructure:"volume"`
	Loop        bool          `mapstructure:"loop"`
	StartOffset time.Duration `mapstructure:"start_offset"`
	Duration    time.Duration `mapstructure:"duration"`
}

// StateSpec is the serialized form of a state.
type StateSpec struct {
	ID       string            `mapstructure:"id"`
	Name     string            `mapstructure:"name"`
	Sounds   []string          `mapstructure:"sounds"`
	Ring     time.Duration     `mapstructure:"ring"`
	Timeout  *TimeoutSpec      `mapstructure:"timeout"`
	End      string            `mapstructure:"end"`
	Dial     map[string]string `mapstructure:"dial"`
	PickUp   string            `mapstructure:"pick_up"`
	HangUp   string            `mapstructure:"hang_up"`
	Terminal bool              `mapstructure:"terminal"`
}

// TimeoutSpec is the serialized form of a timeout transition.
type TimeoutSpec struct {
	After time.Duration `mapstructure:"after"`
	To    string        `mapstructure:"to"`
}
