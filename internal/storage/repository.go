// Package storage persists the latest fetched snapshot in SQLite so the
// panel keeps serving data across restarts and the export worker can read
// the dataset without re-fetching upstream.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"amplo/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReplaceSnapshot atomically swaps the stored dataset for the new one.
// Every refresh rebuilds from scratch; nothing is merged or deduplicated.
func (r *SQLiteRepository) ReplaceSnapshot(ctx context.Context, txs []core.Transaction, fetchedAt time.Time) error {
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer dbtx.Rollback()

	if _, err := dbtx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	stmt, err := dbtx.PrepareContext(ctx, `
		INSERT INTO transactions
			(tx_id, manager_id, manager_name, client_name, amount_cents, created_at, status, utm_source, product_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range txs {
		var created any
		if !t.CreatedAt.IsZero() {
			created = t.CreatedAt.Format(time.RFC3339)
		}
		if _, err := stmt.ExecContext(ctx,
			t.ID, t.ManagerID, t.ManagerName, t.ClientName,
			t.Amount.Cents, created, t.Status, t.Source, t.Product); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}

	if _, err := dbtx.ExecContext(ctx, `
		INSERT INTO refreshes (id, refreshed_at, tx_count) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET refreshed_at = excluded.refreshed_at, tx_count = excluded.tx_count`,
		fetchedAt.UTC().Format(time.RFC3339), len(txs)); err != nil {
		return fmt.Errorf("record refresh: %w", err)
	}

	if err := dbtx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot replaced", "transactions", len(txs), "fetched_at", fetchedAt.UTC().Format(time.RFC3339))
	return nil
}

// ListSnapshot returns the stored dataset in insertion order together with
// the time it was fetched. An empty store yields an empty slice and a zero
// time, not an error.
func (r *SQLiteRepository) ListSnapshot(ctx context.Context) ([]core.Transaction, time.Time, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT tx_id, manager_id, manager_name, client_name, amount_cents, created_at, status, utm_source, product_name
		FROM transactions ORDER BY rowid_seq`)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var created sql.NullString
		if err := rows.Scan(&t.ID, &t.ManagerID, &t.ManagerName, &t.ClientName,
			&t.Amount.Cents, &created, &t.Status, &t.Source, &t.Product); err != nil {
			return nil, time.Time{}, fmt.Errorf("scan transaction: %w", err)
		}
		if created.Valid {
			t.CreatedAt = core.ParseCreatedAt(created.String)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("iterate snapshot: %w", err)
	}

	var refreshedAt time.Time
	var stamp sql.NullString
	err = r.db.QueryRowContext(ctx, `SELECT refreshed_at FROM refreshes WHERE id = 1`).Scan(&stamp)
	switch {
	case err == sql.ErrNoRows:
		// never refreshed
	case err != nil:
		return nil, time.Time{}, fmt.Errorf("query refresh time: %w", err)
	case stamp.Valid:
		if ts, perr := time.Parse(time.RFC3339, stamp.String); perr == nil {
			refreshedAt = ts
		}
	}

	return out, refreshedAt, nil
}
