// Package store persists report sessions in SQLite so results can be
// re-served and gated on payment without re-running the pipeline.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"tweetlens/internal/model"
)

// ErrNotFound is returned when a session id has no row.
var ErrNotFound = errors.New("session not found")

// DB wraps the SQLite session store.
type DB struct{ sql *sql.DB }

func Open(path string) (*DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		return nil, err
	}
	db := &DB{sql: d}
	if err := db.migrate(); err != nil {
		_ = d.Close()
		return nil, err
	}
	return db, nil
}

func (d *DB) Close() error { return d.sql.Close() }

func (d *DB) migrate() error {
	_, err := d.sql.Exec(`
	CREATE TABLE IF NOT EXISTS sessions (
	  id TEXT PRIMARY KEY,
	  created_at INTEGER NOT NULL,
	  source TEXT NOT NULL,
	  timeframe TEXT NOT NULL,
	  paid INTEGER NOT NULL DEFAULT 0,
	  email TEXT,
	  result TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at);
	`)
	return err
}

// Session is one stored report session.
type Session struct {
	ID        string
	CreatedAt time.Time
	Source    string // "archive" or "scrape"
	Timeframe string
	Paid      bool
	Email     string
	Result    *model.ProcessingResult
}

// CreateSession stores a fresh result under a new uuid and returns the id.
func (d *DB) CreateSession(ctx context.Context, source, timeframe string, result *model.ProcessingResult) (string, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = d.sql.ExecContext(ctx,
		`INSERT INTO sessions(id, created_at, source, timeframe, paid, result) VALUES(?,?,?,?,0,?)`,
		id, time.Now().Unix(), source, timeframe, string(payload))
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetSession loads a session by id.
func (d *DB) GetSession(ctx context.Context, id string) (*Session, error) {
	row := d.sql.QueryRowContext(ctx,
		`SELECT id, created_at, source, timeframe, paid, COALESCE(email,''), result FROM sessions WHERE id=?`, id)
	var s Session
	var created int64
	var paid int
	var payload string
	if err := row.Scan(&s.ID, &created, &s.Source, &s.Timeframe, &paid, &s.Email, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.CreatedAt = time.Unix(created, 0).UTC()
	s.Paid = paid != 0
	var result model.ProcessingResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, err
	}
	s.Result = &result
	return &s, nil
}

// MarkPaid flips the paid flag and records the buyer email when provided.
func (d *DB) MarkPaid(ctx context.Context, id, email string) error {
	res, err := d.sql.ExecContext(ctx,
		`UPDATE sessions SET paid=1, email=COALESCE(NULLIF(?,''), email) WHERE id=?`, email, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// PurgeOlderThan deletes sessions created before the ttl horizon and
// returns how many rows went away.
func (d *DB) PurgeOlderThan(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl).Unix()
	res, err := d.sql.ExecContext(ctx, `DELETE FROM sessions WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
