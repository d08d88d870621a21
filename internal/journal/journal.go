// Package journal keeps an append-only record of transaction submissions
// for operator reporting. The scheduler never reads it back; no decision
// state survives a restart.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/atelis/pisweep/internal/config"
	"github.com/atelis/pisweep/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS submissions (
	id           TEXT PRIMARY KEY,
	kind         TEXT NOT NULL,
	tx_hash      TEXT NOT NULL DEFAULT '',
	amount       TEXT NOT NULL DEFAULT '',
	balance_id   TEXT NOT NULL DEFAULT '',
	successful   INTEGER NOT NULL DEFAULT 0,
	dry_run      INTEGER NOT NULL DEFAULT 0,
	result_codes TEXT NOT NULL DEFAULT '',
	submitted_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_submissions_submitted_at ON submissions(submitted_at);
`

// DB wraps the sql.DB connection for the submission journal.
type DB struct {
	conn *sql.DB
	path string
}

// New opens a SQLite database at the given path with WAL mode and busy timeout.
func New(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory %q: %w", dir, err)
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL", path, config.DBBusyTimeout)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %q: %w", path, err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Enable WAL mode.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set busy timeout.
	if _, err := conn.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d", config.DBBusyTimeout)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
	}

	// SQLite single writer.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to apply journal schema: %w", err)
	}

	slog.Info("journal database opened", "path", path)

	return &DB{conn: conn, path: path}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	slog.Info("closing journal database", "path", d.path)
	return d.conn.Close()
}

// RecordSubmission appends one submission entry. The ID is assigned here.
func (d *DB) RecordSubmission(ctx context.Context, sub models.Submission) error {
	sub.ID = uuid.New().String()

	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO submissions (id, kind, tx_hash, amount, balance_id, successful, dry_run, result_codes, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.Kind, sub.TxHash, sub.Amount, sub.BalanceID,
		boolToInt(sub.Successful), boolToInt(sub.DryRun), sub.ResultCodes, sub.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}

	slog.Debug("submission recorded",
		"id", sub.ID,
		"kind", sub.Kind,
		"successful", sub.Successful,
		"dryRun", sub.DryRun,
	)

	return nil
}

// RecentSubmissions returns up to limit entries, newest first.
func (d *DB) RecentSubmissions(ctx context.Context, limit int) ([]models.Submission, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT id, kind, tx_hash, amount, balance_id, successful, dry_run, result_codes, submitted_at
		FROM submissions
		ORDER BY submitted_at DESC, id
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		var sub models.Submission
		var successful, dryRun int
		if err := rows.Scan(&sub.ID, &sub.Kind, &sub.TxHash, &sub.Amount, &sub.BalanceID,
			&successful, &dryRun, &sub.ResultCodes, &sub.SubmittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		sub.Successful = successful != 0
		sub.DryRun = dryRun != 0
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}

	return subs, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
