package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/fernspiel/internal/presentation/graph"
	"github.com/aretw0/fernspiel/internal/presentation/tui"
	"github.com/aretw0/fernspiel/pkg/acts"
	"github.com/aretw0/fernspiel/pkg/adapters/sqlite"
	"github.com/aretw0/fernspiel/pkg/book"
)

// Validate checks that the book at path parses, compiles and only references existing sound files.
func Validate(path string, w io.Writer) error {
	b, err := book.Load(path)
	if err != nil {
		if errs := book.ValidationErrors(err); len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintf(w, "  - %v\n", e)
			}
		}
		return err
	}
	defer b.Close()

	if _, err := acts.New(nil, b.Sounds()); err != nil {
		return err
	}

	for _, id := range b.Unreachable() {
		fmt.Fprintf(w, "  warning: state %q is unreachable\n", id)
	}
	fmt.Fprintf(w, "Book '%s' is valid: %d states, %d sounds. ✅\n", b.Name(), len(b.States()), len(b.Sounds()))
	return nil
}

// GraphOptions selects an optional run overlay for Graph.
type GraphOptions struct {
	// Journal is the path of a SQLite journal to read the run from.
	Journal string
	// RunID selects the run to highlight. Empty means the latest run of the journal.
	RunID string
}

// Graph writes the Mermaid flowchart of the book at path.
// With a journal, the states visited by the run are highlighted and its last state marked current.
func Graph(ctx context.Context, path string, opts GraphOptions, w io.Writer) error {
	b, err := book.Load(path)
	if err != nil {
		return err
	}
	defer b.Close()

	var overlay *graph.GraphOverlay
	if opts.Journal != "" {
		overlay, err = journalOverlay(ctx, opts.Journal, opts.RunID, b.Name())
		if err != nil {
			return err
		}
	}

	_, err = io.WriteString(w, graph.GenerateMermaid(b, overlay))
	return err
}

func journalOverlay(ctx context.Context, path, runID, bookName string) (*graph.GraphOverlay, error) {
	j, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer j.Close()

	if runID == "" {
		runs, err := j.Runs(ctx)
		if err != nil {
			return nil, err
		}
		if len(runs) == 0 {
			return nil, fmt.Errorf("journal %s has no runs", path)
		}
		runID = runs[len(runs)-1]
	}

	events, err := j.Events(ctx, runID)
	if err != nil {
		return nil, err
	}

	overlay := &graph.GraphOverlay{}
	for _, e := range events {
		if e.Book != bookName {
			continue
		}
		overlay.VisitedStates = append(overlay.VisitedStates, e.StateID)
		overlay.CurrentState = e.StateID
	}
	return overlay, nil
}

// Describe writes a markdown overview of the book at path.
// With raw unset the markdown is rendered for the terminal.
func Describe(path string, raw bool, width int, w io.Writer) error {
	b, err := book.Load(path)
	if err != nil {
		return err
	}
	defer b.Close()

	md := tui.DescribeBook(b)
	if raw {
		_, err = io.WriteString(w, md)
		return err
	}

	render, err := tui.NewRenderer(width)
	if err != nil {
		return err
	}
	out, err := render(md)
	if err != nil {
		return fmt.Errorf("failed to render: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
