package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	redisAdapter "github.com/aretw0/fernspiel/pkg/adapters/redis"
	"github.com/aretw0/fernspiel/pkg/domain"
)

// Monitor prints the last known state of every run published to Redis, then
// follows new state events until ctx is cancelled.
func Monitor(ctx context.Context, pub *redisAdapter.Publisher, w io.Writer) error {
	events, err := pub.Subscribe(ctx)
	if err != nil {
		return err
	}

	runs, err := pub.Runs(ctx)
	if err != nil {
		return err
	}
	for _, id := range runs {
		last, err := pub.Last(ctx, id)
		if err != nil {
			// Expired runs stay in the index until the next publish.
			continue
		}
		fmt.Fprintln(w, formatEvent(*last))
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-events:
			if !ok {
				return nil
			}
			fmt.Fprintln(w, formatEvent(e))
		}
	}
}

func formatEvent(e domain.StateEvent) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  %s  %s/%s", e.Timestamp.Format(time.TimeOnly), e.RunID, e.Book, e.StateID)
	if len(e.Sounds) > 0 {
		fmt.Fprintf(&sb, "  ♪ %s", strings.Join(e.Sounds, ", "))
	}
	if e.Terminal {
		sb.WriteString("  (end)")
	}
	return sb.String()
}
