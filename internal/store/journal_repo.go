package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/seamonger/procurement/internal/domain"
)

// JournalRepo handles persistence for the message journal.
type JournalRepo struct{}

// Record inserts a journal entry. Missing IDs and timestamps are filled in.
func (r *JournalRepo) Record(ctx context.Context, db *sql.DB, e domain.JournalEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().UnixMilli()
	}

	const q = `INSERT INTO message_log (id, supplier_id, kind, order_id, body, signal_json, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, q,
		e.ID,
		e.SupplierID,
		string(e.Kind),
		e.OrderID,
		e.Body,
		e.SignalJSON,
		e.CreatedAt,
	)
	if err != nil {
		return domain.Wrap(domain.ErrStoreWrite, "record journal entry", err)
	}
	return nil
}

// ListBySupplier returns the journal for one supplier, oldest first.
func (r *JournalRepo) ListBySupplier(ctx context.Context, db *sql.DB, supplierID string) ([]domain.JournalEntry, error) {
	const q = `SELECT id, supplier_id, kind, order_id, body, signal_json, created_at
FROM message_log
WHERE supplier_id = ?
ORDER BY created_at ASC, rowid ASC`
	return r.query(ctx, db, q, supplierID)
}

// ListRecent returns up to limit entries across all suppliers, newest first.
func (r *JournalRepo) ListRecent(ctx context.Context, db *sql.DB, limit int) ([]domain.JournalEntry, error) {
	const q = `SELECT id, supplier_id, kind, order_id, body, signal_json, created_at
FROM message_log
ORDER BY created_at DESC, rowid DESC
LIMIT ?`
	return r.query(ctx, db, q, limit)
}

func (r *JournalRepo) query(ctx context.Context, db *sql.DB, q string, args ...any) ([]domain.JournalEntry, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, domain.Wrap(domain.ErrStoreQuery, "list journal entries", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		var e domain.JournalEntry
		var kind string
		if err := rows.Scan(&e.ID, &e.SupplierID, &kind, &e.OrderID, &e.Body, &e.SignalJSON, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.Kind = domain.JournalKind(kind)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SQLiteJournal binds a JournalRepo to a database so it satisfies domain.Journal.
type SQLiteJournal struct {
	DB   *sql.DB
	Repo *JournalRepo
}

// NewSQLiteJournal creates a journal over an open database.
func NewSQLiteJournal(db *sql.DB) *SQLiteJournal {
	return &SQLiteJournal{DB: db, Repo: &JournalRepo{}}
}

// Append implements domain.Journal.
func (j *SQLiteJournal) Append(ctx context.Context, e domain.JournalEntry) error {
	return j.Repo.Record(ctx, j.DB, e)
}
