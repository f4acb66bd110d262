// Package sqlite provides a SQLite-backed journal of state events.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/fernspiel/pkg/adapters/sqlite/migrations"
	"github.com/aretw0/fernspiel/pkg/domain"
	"github.com/aretw0/fernspiel/pkg/ports"
	_ "modernc.org/sqlite"
)

// Journal persists state events in SQLite.
type Journal struct {
	db *sql.DB
}

var _ ports.Journal = (*Journal)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the journal at path and applies embedded migrations.
func Open(ctx context.Context, path string) (*Journal, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the SQLite handle.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Publish appends one event.
func (j *Journal) Publish(ctx context.Context, event domain.StateEvent) error {
	sounds := event.Sounds
	if sounds == nil {
		sounds = []string{}
	}
	encoded, err := json.Marshal(sounds)
	if err != nil {
		return fmt.Errorf("encode sounds: %w", err)
	}

	_, err = j.db.ExecContext(ctx,
		`INSERT INTO state_events (run_id, book, state_id, name, sounds, terminal, entered_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.RunID,
		event.Book,
		event.StateID,
		event.Name,
		string(encoded),
		event.Terminal,
		toMillis(event.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("insert state event: %w", err)
	}
	return nil
}

// Events returns the events of a run in publish order.
func (j *Journal) Events(ctx context.Context, runID string) ([]domain.StateEvent, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT run_id, book, state_id, name, sounds, terminal, entered_at
		 FROM state_events WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query state events: %w", err)
	}
	defer rows.Close()

	var events []domain.StateEvent
	for rows.Next() {
		var (
			e         domain.StateEvent
			sounds    string
			enteredAt int64
		)
		if err := rows.Scan(&e.RunID, &e.Book, &e.StateID, &e.Name, &sounds, &e.Terminal, &enteredAt); err != nil {
			return nil, fmt.Errorf("scan state event: %w", err)
		}
		if err := json.Unmarshal([]byte(sounds), &e.Sounds); err != nil {
			return nil, fmt.Errorf("decode sounds: %w", err)
		}
		if len(e.Sounds) == 0 {
			e.Sounds = nil
		}
		e.Timestamp = fromMillis(enteredAt)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate state events: %w", err)
	}
	return events, nil
}

// Runs lists the journaled runs in order of their first event.
func (j *Journal) Runs(ctx context.Context) ([]string, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT run_id FROM state_events GROUP BY run_id ORDER BY MIN(id)`,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, id)
	}
	return runs, rows.Err()
}
