package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/seamonger/procurement/internal/domain"
)

// SupplierRepo handles persistence for Supplier records.
type SupplierRepo struct{}

// Upsert inserts a supplier or replaces the specialty and trust score of an existing one.
// The trust score is clamped to [0, 1] before it is written.
func (r *SupplierRepo) Upsert(ctx context.Context, db *sql.DB, s domain.Supplier) error {
	if strings.TrimSpace(s.ID) == "" {
		return domain.ErrInvalidSupplier
	}
	s = s.Normalized()

	const q = `INSERT INTO suppliers (supplier_id, specialty, trust_score)
VALUES (?, ?, ?)
ON CONFLICT(supplier_id) DO UPDATE SET
	specialty = excluded.specialty,
	trust_score = excluded.trust_score`
	if _, err := db.ExecContext(ctx, q, s.ID, s.Specialty, s.TrustScore); err != nil {
		return domain.Wrap(domain.ErrStoreWrite, "upsert supplier", err)
	}
	return nil
}

// GetByID retrieves a supplier by its identifier.
func (r *SupplierRepo) GetByID(ctx context.Context, db *sql.DB, id string) (*domain.Supplier, error) {
	const q = `SELECT supplier_id, specialty, trust_score FROM suppliers WHERE supplier_id = ?`

	var s domain.Supplier
	err := db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.Specialty, &s.TrustScore)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSupplierNotFound
		}
		return nil, domain.Wrap(domain.ErrStoreQuery, "get supplier", err)
	}
	return &s, nil
}

// List returns all suppliers ordered by trust score, highest first.
// Equal scores are ordered by identifier so the listing is stable.
func (r *SupplierRepo) List(ctx context.Context, db *sql.DB) ([]domain.Supplier, error) {
	const q = `SELECT supplier_id, specialty, trust_score
FROM suppliers
ORDER BY trust_score DESC, supplier_id ASC`

	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, domain.Wrap(domain.ErrStoreQuery, "list suppliers", err)
	}
	defer rows.Close()

	var suppliers []domain.Supplier
	for rows.Next() {
		var s domain.Supplier
		if err := rows.Scan(&s.ID, &s.Specialty, &s.TrustScore); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

// SQLiteDirectory binds a SupplierRepo to a database so it satisfies domain.Directory.
type SQLiteDirectory struct {
	DB   *sql.DB
	Repo *SupplierRepo
}

// NewSQLiteDirectory creates a directory over an open database.
func NewSQLiteDirectory(db *sql.DB) *SQLiteDirectory {
	return &SQLiteDirectory{DB: db, Repo: &SupplierRepo{}}
}

// Get implements domain.Directory.
func (d *SQLiteDirectory) Get(ctx context.Context, id string) (*domain.Supplier, error) {
	return d.Repo.GetByID(ctx, d.DB, id)
}

// Upsert implements domain.Directory.
func (d *SQLiteDirectory) Upsert(ctx context.Context, s domain.Supplier) error {
	return d.Repo.Upsert(ctx, d.DB, s)
}

// List implements domain.Directory.
func (d *SQLiteDirectory) List(ctx context.Context) ([]domain.Supplier, error) {
	return d.Repo.List(ctx, d.DB)
}
