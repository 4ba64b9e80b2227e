package eventservices

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jiaming2012/spx-fair-value/src/eventmodels"
	"github.com/jiaming2012/spx-fair-value/src/utils"
)

// SQLiteSessionStore keeps estimates in a single SQLite database, one row per estimate, keyed by
// estimate ID and grouped by trading day.
type SQLiteSessionStore struct {
	db  *sql.DB
	now func() time.Time
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func OpenSQLiteSessionStore(path string) (*SQLiteSessionStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("OpenSQLiteSessionStore: create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("OpenSQLiteSessionStore: open sqlite: %w", err)
	}

	// a single connection serializes writers
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL;", "PRAGMA busy_timeout=3000;"} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("OpenSQLiteSessionStore: %s: %w", pragma, err)
		}
	}

	store := &SQLiteSessionStore{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteSessionStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

func (s *SQLiteSessionStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			date TEXT PRIMARY KEY,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS estimates (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			date TEXT NOT NULL,
			underlying TEXT NOT NULL,
			ts INTEGER NOT NULL,
			payload TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_estimates_date ON estimates(date);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("SQLiteSessionStore: migrate: %w", err)
		}
	}

	return nil
}

func (s *SQLiteSessionStore) Load(ctx context.Context, date string) (*eventmodels.Session, error) {
	if _, err := utils.ParseDate(date); err != nil {
		return nil, fmt.Errorf("SQLiteSessionStore.Load: %w", err)
	}

	session, err := loadSQLiteSession(ctx, s.db, date)
	if err != nil {
		return nil, fmt.Errorf("SQLiteSessionStore.Load: %w", err)
	}

	return session, nil
}

func loadSQLiteSession(ctx context.Context, q queryer, date string) (*eventmodels.Session, error) {
	session := eventmodels.NewSession(date)

	var updatedAt string
	err := q.QueryRowContext(ctx, `SELECT updated_at FROM sessions WHERE date = ?`, date).Scan(&updatedAt)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return nil, fmt.Errorf("failed to read session %s: %w", date, err)
	default:
		if session.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
			return nil, fmt.Errorf("invalid updated_at %q: %w", updatedAt, err)
		}
	}

	rows, err := q.QueryContext(ctx, `SELECT payload FROM estimates WHERE date = ? ORDER BY seq`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query estimates for %s: %w", date, err)
	}

	defer rows.Close()

	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan estimate: %w", err)
		}

		var estimate eventmodels.FairPriceEstimate
		if err := json.Unmarshal([]byte(payload), &estimate); err != nil {
			return nil, fmt.Errorf("failed to decode estimate: %w", err)
		}

		session.Estimates = append(session.Estimates, &estimate)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read estimates for %s: %w", date, err)
	}

	return session, nil
}

// Save replaces every stored estimate of the session's date.
func (s *SQLiteSessionStore) Save(ctx context.Context, session *eventmodels.Session) error {
	if session == nil {
		return fmt.Errorf("SQLiteSessionStore.Save: missing session")
	}

	if _, err := utils.ParseDate(session.Date); err != nil {
		return fmt.Errorf("SQLiteSessionStore.Save: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("SQLiteSessionStore.Save: begin: %w", err)
	}

	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM estimates WHERE date = ?`, session.Date); err != nil {
		return fmt.Errorf("SQLiteSessionStore.Save: failed to clear %s: %w", session.Date, err)
	}

	for _, estimate := range session.Estimates {
		if err := upsertEstimate(ctx, tx, session.Date, estimate); err != nil {
			return fmt.Errorf("SQLiteSessionStore.Save: %w", err)
		}
	}

	updatedAt := s.now()
	if err := touchSession(ctx, tx, session.Date, updatedAt); err != nil {
		return fmt.Errorf("SQLiteSessionStore.Save: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("SQLiteSessionStore.Save: commit: %w", err)
	}

	session.UpdatedAt = updatedAt

	return nil
}

// Append adds estimate to the session of its trading day. An estimate with the same ID replaces
// the stored one in place.
func (s *SQLiteSessionStore) Append(ctx context.Context, estimate *eventmodels.FairPriceEstimate) (*eventmodels.Session, error) {
	date, err := tradingDate(estimate)
	if err != nil {
		return nil, fmt.Errorf("SQLiteSessionStore.Append: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("SQLiteSessionStore.Append: begin: %w", err)
	}

	defer tx.Rollback()

	if err := upsertEstimate(ctx, tx, date, estimate); err != nil {
		return nil, fmt.Errorf("SQLiteSessionStore.Append: %w", err)
	}

	if err := touchSession(ctx, tx, date, s.now()); err != nil {
		return nil, fmt.Errorf("SQLiteSessionStore.Append: %w", err)
	}

	session, err := loadSQLiteSession(ctx, tx, date)
	if err != nil {
		return nil, fmt.Errorf("SQLiteSessionStore.Append: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("SQLiteSessionStore.Append: commit: %w", err)
	}

	return session, nil
}

func upsertEstimate(ctx context.Context, tx *sql.Tx, date string, estimate *eventmodels.FairPriceEstimate) error {
	payload, err := json.Marshal(estimate)
	if err != nil {
		return fmt.Errorf("failed to encode estimate %s: %w", estimate.ID, err)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO estimates (id, date, underlying, ts, payload) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET date = excluded.date, underlying = excluded.underlying, ts = excluded.ts, payload = excluded.payload`,
		estimate.ID.String(), date, estimate.Underlying.String(), estimate.Timestamp.UnixNano(), string(payload))
	if err != nil {
		return fmt.Errorf("failed to write estimate %s: %w", estimate.ID, err)
	}

	return nil
}

func touchSession(ctx context.Context, tx *sql.Tx, date string, updatedAt time.Time) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO sessions (date, updated_at) VALUES (?, ?)
		ON CONFLICT(date) DO UPDATE SET updated_at = excluded.updated_at`,
		date, updatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to update session %s: %w", date, err)
	}

	return nil
}
