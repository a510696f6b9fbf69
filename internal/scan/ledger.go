package scan

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ledgerSchema holds per-generation file hashes and work item ids. It is
// what lets a later generation mark earlier work items stale once the
// underlying file's content hash changes.
const ledgerSchema = `
CREATE TABLE IF NOT EXISTS generations (
	id         TEXT PRIMARY KEY,
	root       TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS file_hashes (
	generation TEXT NOT NULL REFERENCES generations(id),
	path       TEXT NOT NULL,
	hash       TEXT NOT NULL,
	PRIMARY KEY (generation, path)
);
CREATE TABLE IF NOT EXISTS work_items (
	id         TEXT NOT NULL,
	generation TEXT NOT NULL REFERENCES generations(id),
	path       TEXT NOT NULL,
	pattern    TEXT NOT NULL,
	line       INTEGER NOT NULL,
	stale      INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (id, generation)
);
CREATE INDEX IF NOT EXISTS idx_work_items_path ON work_items(path);
`

// Ledger is the SQLite-backed generation history.
type Ledger struct {
	db *sql.DB
}

// OpenLedger opens (and if needed initializes) the ledger database.
func OpenLedger(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if _, err := db.Exec(ledgerSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize ledger schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// RecordGeneration stores a generation's hashes and items, then marks work
// items from earlier generations stale where the file's content hash has
// changed since.
func (l *Ledger) RecordGeneration(res *Result) error {
	tx, err := l.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO generations (id, root, created_at) VALUES (?, ?, ?)`,
		res.Generation, res.Root, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("record generation: %w", err)
	}

	for path, hash := range res.Hashes {
		if _, err := tx.Exec(
			`INSERT INTO file_hashes (generation, path, hash) VALUES (?, ?, ?)`,
			res.Generation, path, hash,
		); err != nil {
			return fmt.Errorf("record hash for %s: %w", path, err)
		}
	}

	for _, item := range res.Items {
		if _, err := tx.Exec(
			`INSERT INTO work_items (id, generation, path, pattern, line) VALUES (?, ?, ?, ?, ?)`,
			item.ID, res.Generation, item.File, item.Pattern, item.StartLine,
		); err != nil {
			return fmt.Errorf("record work item %s: %w", item.ID, err)
		}
	}

	// Items from prior generations go stale when the current hash differs
	// (or the file is gone entirely).
	rows, err := tx.Query(
		`SELECT DISTINCT path FROM work_items WHERE generation != ? AND stale = 0`,
		res.Generation,
	)
	if err != nil {
		return err
	}
	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			rows.Close()
			return err
		}
		paths = append(paths, path)
	}
	rows.Close()

	var stalePaths []string
	for _, path := range paths {
		// The item's own generation hash is what it was derived from.
		prev := prevHashFor(tx, path, res.Generation)
		if hash, ok := res.Hashes[path]; !ok || hash != prev {
			stalePaths = append(stalePaths, path)
		}
	}
	for _, path := range stalePaths {
		if _, err := tx.Exec(
			`UPDATE work_items SET stale = 1 WHERE path = ? AND generation != ?`,
			path, res.Generation,
		); err != nil {
			return fmt.Errorf("mark stale items for %s: %w", path, err)
		}
	}

	return tx.Commit()
}

// prevHashFor looks up the most recent recorded hash for a path outside the
// given generation. Missing history reads as empty, which always compares
// unequal.
func prevHashFor(tx *sql.Tx, path, excludeGen string) string {
	var hash string
	row := tx.QueryRow(
		`SELECT h.hash FROM file_hashes h
		 JOIN generations g ON g.id = h.generation
		 WHERE h.path = ? AND h.generation != ?
		 ORDER BY g.created_at DESC LIMIT 1`,
		path, excludeGen,
	)
	if err := row.Scan(&hash); err != nil {
		return ""
	}
	return hash
}

// StaleItems returns ids of work items marked stale.
func (l *Ledger) StaleItems() ([]string, error) {
	rows, err := l.db.Query(`SELECT DISTINCT id FROM work_items WHERE stale = 1 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
