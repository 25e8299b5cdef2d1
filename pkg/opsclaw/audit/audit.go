// Package audit – audit.go records every routed message in a local SQLite
// database. One opsclaw.db file holds the routing log; the JSON collections
// under the data directory remain the source of truth for domain records.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver.
)

// schema is the DDL executed on every startup (idempotent via IF NOT EXISTS).
const schema = `
-- Routed messages (append-only, one row per routed input).
CREATE TABLE IF NOT EXISTS routing_log (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id     TEXT DEFAULT '',
    input       TEXT NOT NULL,
    pattern     TEXT NOT NULL,
    agents      TEXT DEFAULT '',
    total_tasks INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_routing_log_created ON routing_log(created_at);
CREATE INDEX IF NOT EXISTS idx_routing_log_user ON routing_log(user_id);
`

// Entry is one routed-message record.
type Entry struct {
	UserID     string
	Input      string
	Pattern    string
	Agents     []string
	TotalTasks int
	Duration   time.Duration
	CreatedAt  time.Time
}

// Log is the SQLite-backed routing audit log.
type Log struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) opsclaw.db at the given path and applies the schema.
func Open(path string, logger *slog.Logger) (*Log, error) {
	if path == "" {
		path = "./data/opsclaw.db"
	}
	if logger == nil {
		logger = slog.Default()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create database directory %q: %w", dir, err)
	}

	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Log{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (l *Log) Close() error { return l.db.Close() }

// Record appends one routed-message entry.
func (l *Log) Record(ctx context.Context, e Entry) error {
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO routing_log (user_id, input, pattern, agents, total_tasks, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Input, e.Pattern, strings.Join(e.Agents, ","),
		e.TotalTasks, e.Duration.Milliseconds(), created.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record routing entry: %w", err)
	}
	return nil
}

// Recent returns the newest n entries, newest first.
func (l *Log) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT user_id, input, pattern, agents, total_tasks, duration_ms, created_at
		 FROM routing_log ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query routing log: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var agents, created string
		var durMs int64
		if err := rows.Scan(&e.UserID, &e.Input, &e.Pattern, &agents, &e.TotalTasks, &durMs, &created); err != nil {
			return nil, fmt.Errorf("scan routing entry: %w", err)
		}
		if agents != "" {
			e.Agents = strings.Split(agents, ",")
		}
		e.Duration = time.Duration(durMs) * time.Millisecond
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			e.CreatedAt = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
