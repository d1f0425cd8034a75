package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"virusscope/internal/scorer"
)

const schema = `
CREATE TABLE IF NOT EXISTS predictions (
	id                TEXT PRIMARY KEY,
	created_at        TIMESTAMP NOT NULL,
	verdict           TEXT NOT NULL,
	threshold_percent REAL NOT NULL,
	threshold_mode    TEXT NOT NULL,
	top_label         TEXT NOT NULL,
	status            TEXT NOT NULL,
	payload           TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);
`

// Entry is one audited prediction.
type Entry struct {
	ID               string        `json:"id"`
	CreatedAt        time.Time     `json:"created_at"`
	Verdict          string        `json:"verdict"`
	ThresholdPercent float64       `json:"threshold_percent"`
	ThresholdMode    string        `json:"threshold_mode"`
	TopLabel         string        `json:"top_label"`
	Status           string        `json:"status"`
	Result           scorer.Result `json:"result"`
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite audit database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return &Store{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	for _, p := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Save(ctx context.Context, id string, at time.Time, res scorer.Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	top := ""
	if len(res.Presentation.Entries) > 0 {
		top = res.Presentation.Entries[0].Label
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO predictions (id, created_at, verdict, threshold_percent, threshold_mode, top_label, status, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, at.UTC(), res.Verdict.String(), res.ThresholdPercent, string(res.ThresholdMode), top, string(res.Status), string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert prediction %s: %w", id, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, verdict, threshold_percent, threshold_mode, top_label, status, payload
		 FROM predictions ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()
	out := []Entry{}
	for rows.Next() {
		var e Entry
		var payload string
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.Verdict, &e.ThresholdPercent, &e.ThresholdMode, &e.TopLabel, &e.Status, &payload); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payload), &e.Result); err != nil {
			return nil, fmt.Errorf("decode prediction %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
