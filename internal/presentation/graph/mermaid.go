package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/fernspiel/pkg/book"
	"github.com/aretw0/fernspiel/pkg/domain"
)

// GraphOverlay contains session data to visualize on the graph.
type GraphOverlay struct {
	VisitedStates []string
	CurrentState  string
}

// GenerateMermaid produces a Mermaid flowchart of a book.
// Shapes: the initial state is a circle, terminal states are stadiums, others rectangles.
// Timeouts are dotted edges, completion and input transitions are labelled solid edges.
func GenerateMermaid(b *book.Book, overlay *GraphOverlay) string {
	states := b.States()

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for i, st := range states {
		safeID := sanitizeMermaidID(st.ID)

		opener, closer := "[", "]"
		switch {
		case i == 0:
			opener, closer = "((", "))"
		case st.IsTerminal():
			opener, closer = "([", "])"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, nodeLabel(b, &st), closer))

		target := func(idx int) string {
			if idx < 0 || idx >= len(states) {
				return "unknown"
			}
			return sanitizeMermaidID(states[idx].ID)
		}

		if st.Timeout != nil {
			sb.WriteString(fmt.Sprintf("    %s -. \"⏱️ %s\" .-> %s\n", safeID, st.Timeout.After, target(st.Timeout.To)))
		}
		if to, ok := st.TransitionEnd(); ok {
			sb.WriteString(fmt.Sprintf("    %s -- \"end\" --> %s\n", safeID, target(to)))
		}
		for _, in := range sortedInputs(st.Inputs) {
			sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", safeID, in, target(st.Inputs[in])))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedStates {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.CurrentState != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentState)))
		}
	}

	return sb.String()
}

func nodeLabel(b *book.Book, st *domain.State) string {
	label := st.Label()
	if len(st.Sounds) > 0 {
		label += " <br/> ♪ " + strings.Join(b.SoundNames(st.Sounds), ", ")
	}
	if st.Ring > 0 {
		label += " <br/> 🔔 " + st.Ring.String()
	}
	return strings.ReplaceAll(label, "\"", "'")
}

func sortedInputs(inputs map[domain.Input]int) []domain.Input {
	keys := make([]domain.Input, 0, len(inputs))
	for in := range inputs {
		keys = append(keys, in)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
