package procurement

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seamonger/procurement/internal/domain"
	"github.com/seamonger/procurement/internal/store"
)

func TestOrchestrator_SQLiteBackedRoundTrip(t *testing.T) {
	db, err := store.NewDB(filepath.Join(t.TempDir(), "seamonger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	dir := store.NewSQLiteDirectory(db)
	journal := store.NewSQLiteJournal(db)
	require.NoError(t, dir.Upsert(ctx, domain.Supplier{ID: supplierPhone, Specialty: "snapper", TrustScore: 0.9}))

	messenger := &fakeMessenger{}
	orch := New(Config{
		Orders: &fakeOrders{orders: []domain.Order{{
			ID:        "1001",
			LineItems: []domain.LineItem{{Name: "Fresh Snapper Fillet", Quantity: 1}},
		}}},
		Messenger:    messenger,
		Directory:    dir,
		Journal:      journal,
		FounderPhone: founderPhone,
	})
	orch.Register("snapper", supplierPhone)

	res, err := orch.ProcessUnfulfilledOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.PollResult{Orders: 1, MessagesSent: 1}, res)

	_, err = orch.HandleSupplierMessage(ctx, domain.IncomingMessage{From: supplierPhone, Text: "ada 20kg snapper"})
	require.NoError(t, err)

	s, err := dir.Get(ctx, supplierPhone)
	require.NoError(t, err)
	assert.InDelta(t, 0.95, s.TrustScore, 1e-9)

	entries, err := journal.Repo.ListBySupplier(ctx, db, supplierPhone)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.JournalRequest, entries[0].Kind)
	assert.Equal(t, "1001", entries[0].OrderID)
	assert.Equal(t, domain.JournalReply, entries[1].Kind)
	assert.Contains(t, entries[1].SignalJSON, `"product":"snapper"`)
}
