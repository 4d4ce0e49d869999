// Package storage keeps the generation ledger: which pipeline runs happened
// and which decks each of them wrote.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Registers the sqlite driver

	"github.com/conorfennell/quizdeck/internal/domain"
	"github.com/conorfennell/quizdeck/internal/knol"
)

// timeLayout is fixed width so stored stamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DB represents a wrapper around the SQL database connection.
type DB struct {
	conn *sql.DB
	now  func() time.Time
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db, now: time.Now}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// RunRecord is a row of the runs table.
type RunRecord struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   *time.Time
	DecksWritten int
	CardsWritten int
	CardsMerged  int
}

// DeckWrite is a row of the deck_writes table.
type DeckWrite struct {
	RunID  string
	DeckID string
	Source string
	Cards  int
	Hash   string
	Kind   string
}

// Run records one pipeline run as it happens.
type Run struct {
	db *DB
	ID string
}

// StartRun inserts a new run and returns its recorder.
func (db *DB) StartRun() (*Run, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec(`
		INSERT INTO runs (id, started_at)
		VALUES (?, ?)
	`, id, db.now().UTC().Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}
	return &Run{db: db, ID: id}, nil
}

// DeckWritten stores the write of one deck together with a hash of its
// normalized content.
func (r *Run) DeckWritten(deckID, source, kind string, cards []domain.Card) error {
	_, err := r.db.conn.Exec(`
		INSERT INTO deck_writes (run_id, deck_id, source, cards, hash, kind)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.ID, deckID, source, len(cards), knol.Hash(cards), kind)
	if err != nil {
		return fmt.Errorf("failed to record deck %s: %w", deckID, err)
	}
	return nil
}

// Finished closes the run with its totals.
func (r *Run) Finished(summary domain.RunSummary) error {
	_, err := r.db.conn.Exec(`
		UPDATE runs
		SET finished_at = ?, decks_written = ?, cards_written = ?, cards_merged = ?
		WHERE id = ?
	`,
		r.db.now().UTC().Format(timeLayout),
		summary.DecksWritten,
		summary.CardsWritten,
		summary.CardsMerged,
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", r.ID, err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (db *DB) RecentRuns(limit int) ([]RunRecord, error) {
	rows, err := db.conn.Query(`
		SELECT id, started_at, finished_at, decks_written, cards_written, cards_merged
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var (
			rec      RunRecord
			started  string
			finished sql.NullString
		)
		if err := rows.Scan(&rec.ID, &started, &finished, &rec.DecksWritten, &rec.CardsWritten, &rec.CardsMerged); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		if rec.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("run %s has a bad start time: %w", rec.ID, err)
		}
		if finished.Valid {
			t, err := time.Parse(timeLayout, finished.String)
			if err != nil {
				return nil, fmt.Errorf("run %s has a bad finish time: %w", rec.ID, err)
			}
			rec.FinishedAt = &t
		}
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

// DeckWrites returns the decks written by a run in the order they were
// written.
func (db *DB) DeckWrites(runID string) ([]DeckWrite, error) {
	rows, err := db.conn.Query(`
		SELECT run_id, deck_id, source, cards, hash, kind
		FROM deck_writes
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get deck writes for run %s: %w", runID, err)
	}
	defer rows.Close()

	var writes []DeckWrite
	for rows.Next() {
		var w DeckWrite
		if err := rows.Scan(&w.RunID, &w.DeckID, &w.Source, &w.Cards, &w.Hash, &w.Kind); err != nil {
			return nil, fmt.Errorf("failed to scan deck write row for run %s: %w", runID, err)
		}
		writes = append(writes, w)
	}
	return writes, rows.Err()
}
