package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/fernspiel/pkg/book"
	"github.com/aretw0/fernspiel/pkg/domain"
)

// DescribeBook returns a markdown overview of a book: its sounds and a transition table.
func DescribeBook(b *book.Book) string {
	var sb strings.Builder
	states := b.States()

	fmt.Fprintf(&sb, "# %s\n\n", b.Name())
	fmt.Fprintf(&sb, "%d states, %d sounds. Starts at `%s`.\n\n", len(states), len(b.Sounds()), initialID(states))

	if sounds := b.Sounds(); len(sounds) > 0 {
		sb.WriteString("## Sounds\n\n")
		sb.WriteString("| Sound | Source | Length | Loop |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, s := range sounds {
			source := s.File
			if s.IsSpeech() {
				source = fmt.Sprintf("speech: %q", s.Speech)
			}
			loop := ""
			if s.Loop {
				loop = "yes"
			}
			fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", s.Name, escapeCell(source), s.Length(), loop)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## States\n\n")
	sb.WriteString("| State | Plays | Ring | Timeout | End | Inputs |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for i := range states {
		st := &states[i]
		name := st.Label()
		if st.IsTerminal() {
			name += " (terminal)"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s |\n",
			escapeCell(name),
			strings.Join(b.SoundNames(st.Sounds), ", "),
			ringCell(st),
			timeoutCell(states, st),
			endCell(states, st),
			inputsCell(states, st),
		)
	}

	return sb.String()
}

func initialID(states []domain.State) string {
	if len(states) == 0 {
		return ""
	}
	return states[0].ID
}

func stateID(states []domain.State, idx int) string {
	if idx < 0 || idx >= len(states) {
		return "?"
	}
	return states[idx].ID
}

func ringCell(st *domain.State) string {
	if st.Ring <= 0 {
		return ""
	}
	return st.Ring.String()
}

func timeoutCell(states []domain.State, st *domain.State) string {
	if st.Timeout == nil {
		return ""
	}
	return fmt.Sprintf("%s → %s", st.Timeout.After, stateID(states, st.Timeout.To))
}

func endCell(states []domain.State, st *domain.State) string {
	to, ok := st.TransitionEnd()
	if !ok {
		return ""
	}
	return stateID(states, to)
}

func inputsCell(states []domain.State, st *domain.State) string {
	keys := make([]string, 0, len(st.Inputs))
	for in := range st.Inputs {
		keys = append(keys, string(in))
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s → %s", k, stateID(states, st.Inputs[domain.Input(k)])))
	}
	return strings.Join(parts, ", ")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
