package commands

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seamonger/procurement/internal/domain"
	"github.com/seamonger/procurement/internal/store"
)

// isolateConfig points the CLI at a fresh SQLite file with no other overrides.
func isolateConfig(t *testing.T) string {
	t.Helper()
	for _, name := range []string{
		"SHOPIFY_STORE_DOMAIN", "SHOPIFY_ACCESS_TOKEN", "DIRECTORY_BACKEND", "REDIS_URL",
		"LOGGING_FORMAT", "POLL_INTERVAL_SECONDS", configEnv,
	} {
		t.Setenv(name, "")
	}
	dbPath := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("SQLITE_PATH", dbPath)
	configPath = ""
	chdirTemp(t)
	return dbPath
}

func TestSuppliersAdd_ThenList(t *testing.T) {
	dbPath := isolateConfig(t)

	addTrust = 1.7
	t.Cleanup(func() { addTrust = 0.5 })
	require.NoError(t, runSuppliersAdd(suppliersAddCmd, []string{"+6511111111", "snapper"}))

	db, err := store.NewDB(dbPath)
	require.NoError(t, err)
	defer db.Close()

	s, err := store.NewSQLiteDirectory(db).Get(context.Background(), "+6511111111")
	require.NoError(t, err)
	assert.Equal(t, "snapper", s.Specialty)
	assert.Equal(t, 1.0, s.TrustScore)

	require.NoError(t, runSuppliersList(suppliersListCmd, nil))
}

func TestNewApp_RebuildsRoutesFromDirectory(t *testing.T) {
	dbPath := isolateConfig(t)

	db, err := store.NewDB(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.NewSQLiteDirectory(db).Upsert(context.Background(),
		domain.Supplier{ID: "+6522222222", Specialty: "Kembung", TrustScore: 0.5}))
	db.Close()

	cfg, err := loadConfig()
	require.NoError(t, err)

	a, err := newApp(context.Background(), cfg, newLogger(cfg))
	require.NoError(t, err)
	defer a.Close()

	routes := a.orchestrator.Snapshot().Routes
	assert.Equal(t, []string{"+6522222222"}, routes["kembung"])
}
