package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/seamonger/procurement/internal/domain"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSupplierRepo_UpsertAndGetByID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := &SupplierRepo{}

	s := domain.Supplier{ID: "+6511111111", Specialty: "snapper", TrustScore: 0.9}
	if err := repo.Upsert(ctx, db, s); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := repo.GetByID(ctx, db, "+6511111111")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if *got != s {
		t.Errorf("GetByID = %+v, want %+v", *got, s)
	}
}

func TestSupplierRepo_UpsertReplacesFields(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := &SupplierRepo{}

	if err := repo.Upsert(ctx, db, domain.Supplier{ID: "s-1", Specialty: "bawal", TrustScore: 0.5}); err != nil {
		t.Fatalf("first Upsert: %v", err)
	}
	if err := repo.Upsert(ctx, db, domain.Supplier{ID: "s-1", Specialty: "selar", TrustScore: 0.7}); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	got, err := repo.GetByID(ctx, db, "s-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Specialty != "selar" {
		t.Errorf("Specialty = %q, want %q", got.Specialty, "selar")
	}
	if got.TrustScore != 0.7 {
		t.Errorf("TrustScore = %v, want 0.7", got.TrustScore)
	}
}

func TestSupplierRepo_UpsertIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := &SupplierRepo{}

	s := domain.Supplier{ID: "s-1", Specialty: "kembung", TrustScore: 0.6}
	for i := 0; i < 2; i++ {
		if err := repo.Upsert(ctx, db, s); err != nil {
			t.Fatalf("Upsert #%d: %v", i+1, err)
		}
	}

	all, err := repo.List(ctx, db)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 supplier, got %d", len(all))
	}
	if all[0] != s {
		t.Errorf("List[0] = %+v, want %+v", all[0], s)
	}
}

func TestSupplierRepo_UpsertClampsTrust(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := &SupplierRepo{}

	if err := repo.Upsert(ctx, db, domain.Supplier{ID: "hi", Specialty: "ikan", TrustScore: 1.7}); err != nil {
		t.Fatalf("Upsert hi: %v", err)
	}
	if err := repo.Upsert(ctx, db, domain.Supplier{ID: "lo", Specialty: "ikan", TrustScore: -3}); err != nil {
		t.Fatalf("Upsert lo: %v", err)
	}

	hi, _ := repo.GetByID(ctx, db, "hi")
	lo, _ := repo.GetByID(ctx, db, "lo")
	if hi.TrustScore != 1.0 {
		t.Errorf("hi TrustScore = %v, want 1.0", hi.TrustScore)
	}
	if lo.TrustScore != 0.0 {
		t.Errorf("lo TrustScore = %v, want 0.0", lo.TrustScore)
	}
}

func TestSupplierRepo_UpsertRejectsEmptyID(t *testing.T) {
	db := newTestDB(t)
	repo := &SupplierRepo{}

	err := repo.Upsert(context.Background(), db, domain.Supplier{ID: "  ", Specialty: "ikan"})
	if !errors.Is(err, domain.ErrInvalidSupplier) {
		t.Errorf("expected ErrInvalidSupplier, got %v", err)
	}
}

func TestSupplierRepo_GetByID_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := &SupplierRepo{}

	_, err := repo.GetByID(context.Background(), db, "nonexistent")
	if err != domain.ErrSupplierNotFound {
		t.Errorf("expected ErrSupplierNotFound, got %v", err)
	}
}

func TestSupplierRepo_ListOrderedByTrust(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := &SupplierRepo{}

	suppliers := []domain.Supplier{
		{ID: "c", Specialty: "selar", TrustScore: 0.3},
		{ID: "b", Specialty: "bawal", TrustScore: 0.8},
		{ID: "a", Specialty: "siakap", TrustScore: 0.8},
		{ID: "d", Specialty: "snapper", TrustScore: 0.95},
	}
	for _, s := range suppliers {
		if err := repo.Upsert(ctx, db, s); err != nil {
			t.Fatalf("Upsert %s: %v", s.ID, err)
		}
	}

	got, err := repo.List(ctx, db)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"d", "a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %d suppliers, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("List[%d].ID = %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestSQLiteDirectory_ImplementsDirectory(t *testing.T) {
	var dir domain.Directory = NewSQLiteDirectory(newTestDB(t))
	ctx := context.Background()

	if err := dir.Upsert(ctx, domain.Supplier{ID: "s-1", Specialty: "bawal", TrustScore: 0.5}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got, err := dir.Get(ctx, "s-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Specialty != "bawal" {
		t.Errorf("Specialty = %q, want %q", got.Specialty, "bawal")
	}
}
