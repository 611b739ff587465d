// Package store keeps the catalog tables and game records in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/felwinter/trails/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS players (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	session_id TEXT NOT NULL DEFAULT '',
	progress TEXT NOT NULL,
	inventory TEXT NOT NULL,
	health INTEGER NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS players_name ON players (name);

CREATE TABLE IF NOT EXISTS story (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	scene TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL,
	choice1 TEXT NOT NULL,
	choice2 TEXT NOT NULL,
	result1 TEXT NOT NULL,
	result2 TEXT NOT NULL,
	enemy TEXT NOT NULL DEFAULT '',
	grants TEXT NOT NULL DEFAULT '',
	ending TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS enemies (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	health INTEGER NOT NULL,
	attack_power INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL,
	effect TEXT NOT NULL,
	attack_bonus INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Store is a SQLite-backed record store. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases coherent and avoids
	// SQLITE_BUSY between writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts one game-over record.
func (s *Store) Save(ctx context.Context, rec models.Record) error {
	items := rec.Inventory
	if items == nil {
		items = []string{}
	}
	inv, err := json.Marshal(items)
	if err != nil {
		return err
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO players (name, session_id, progress, inventory, health, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Player, rec.SessionID, rec.Outcome, string(inv), rec.Health, created.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}
	return nil
}

// Load returns the most recent record for name. If there is none it
// returns models.DefaultRecord and false.
func (s *Store) Load(ctx context.Context, name string) (models.Record, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, session_id, progress, inventory, health, created_at
		 FROM players WHERE name = ? ORDER BY id DESC LIMIT 1`, name)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultRecord(name), false, nil
	}
	if err != nil {
		return models.Record{}, false, err
	}
	return rec, true, nil
}

// History returns every record for name, newest first.
func (s *Store) History(ctx context.Context, name string) ([]models.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, session_id, progress, inventory, health, created_at
		 FROM players WHERE name = ? ORDER BY id DESC`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (models.Record, error) {
	var (
		rec     models.Record
		inv     string
		created string
	)
	if err := row.Scan(&rec.ID, &rec.Player, &rec.SessionID, &rec.Outcome, &inv, &rec.Health, &created); err != nil {
		return models.Record{}, err
	}
	if err := json.Unmarshal([]byte(inv), &rec.Inventory); err != nil {
		return models.Record{}, fmt.Errorf("record %d: decoding inventory: %w", rec.ID, err)
	}
	if rec.Inventory == nil {
		rec.Inventory = []string{}
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return models.Record{}, fmt.Errorf("record %d: decoding timestamp: %w", rec.ID, err)
	}
	rec.CreatedAt = t
	return rec, nil
}
