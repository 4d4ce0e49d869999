package storage

const schema = `
-- One row per pipeline run. finished_at stays NULL when a run failed.
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    started_at TEXT NOT NULL,
    finished_at TEXT,
    decks_written INTEGER NOT NULL DEFAULT 0,
    cards_written INTEGER NOT NULL DEFAULT 0,
    cards_merged INTEGER NOT NULL DEFAULT 0
);

-- Every deck a run wrote, either generated from a note or merged from a question bank.
CREATE TABLE IF NOT EXISTS deck_writes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    deck_id TEXT NOT NULL,
    source TEXT NOT NULL,
    cards INTEGER NOT NULL,
    hash TEXT NOT NULL,
    kind TEXT NOT NULL CHECK (kind IN ('generated', 'merged')),

    FOREIGN KEY(run_id) REFERENCES runs(id)
);

CREATE INDEX IF NOT EXISTS deck_writes_run ON deck_writes(run_id);
`
