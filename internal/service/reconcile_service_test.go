package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
	"github.com/andresuchdata/cleanops/backend-go/internal/repository/memory"
)

func TestRecountFoldsLedger(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.ledger.ApplyManualIn(ctx, tenant, property, f.domestos, 10, domain.SourcePurchase)
	require.NoError(t, err)
	f.clock.Advance(time.Hour)
	f.ledger.ApplyFromEvent(ctx, domain.OperationalEvent{ID: "evt-a", TenantID: tenant, PropertyID: property, Note: "3x domestos"})
	f.clock.Advance(time.Hour)
	_, err = f.ledger.ApplyManualAdjust(ctx, tenant, property, f.domestos, 5, "shelf count")
	require.NoError(t, err)
	f.clock.Advance(time.Hour)
	_, err = f.ledger.ApplyManualIn(ctx, tenant, property, f.domestos, 2, domain.SourceManual)
	require.NoError(t, err)

	assert.Equal(t, 7.0, f.record(t, f.domestos).CurrentQty)

	// simulate drift in the cached quantity
	rec := f.record(t, f.domestos)
	require.NoError(t, f.store.ApplyRecount(ctx, []domain.QuantityUpdate{{
		TenantID: tenant, PropertyID: property, SupplyID: f.domestos, Quantity: 42, ExpectedVersion: rec.Version,
	}}))

	result := f.reconciler.Recount(ctx, tenant, property)
	require.True(t, result.Success, result.Error)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, 42.0, result.Entries[0].Previous)
	assert.Equal(t, 7.0, result.Entries[0].Current)
	assert.True(t, result.Entries[0].Changed)
	assert.Equal(t, 7.0, f.record(t, f.domestos).CurrentQty)
}

func TestRecountIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.ledger.SeedRecord(ctx, tenant, property, f.papir, 12, 4, 24)
	require.NoError(t, err)
	f.ledger.ApplyFromEvent(ctx, domain.OperationalEvent{ID: "evt-b", TenantID: tenant, PropertyID: property, Note: "2x toaletak"})

	first := f.reconciler.Recount(ctx, tenant, property)
	require.True(t, first.Success)
	before := f.record(t, f.papir)

	second := f.reconciler.Recount(ctx, tenant, property)
	require.True(t, second.Success)
	after := f.record(t, f.papir)

	assert.Equal(t, first.Entries, second.Entries)
	assert.Equal(t, 10.0, after.CurrentQty)
	assert.Equal(t, before.Version, after.Version)
	assert.False(t, second.Entries[0].Changed)
}

func TestRecountRequiresProperty(t *testing.T) {
	f := newFixture(t)
	result := f.reconciler.Recount(context.Background(), tenant, "")
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

// conflictingStore reports a version conflict for the first n recount writes.
type conflictingStore struct {
	*memory.Store
	conflicts int
	calls     int
}

func (s *conflictingStore) ApplyRecount(ctx context.Context, updates []domain.QuantityUpdate) error {
	s.calls++
	if s.calls <= s.conflicts {
		return domain.ErrVersionConflict
	}
	return s.Store.ApplyRecount(ctx, updates)
}

func TestRecountSupplyRetriesVersionConflicts(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	require.NoError(t, mem.EnsureRecord(ctx, tenant, property, "s1"))
	require.NoError(t, mem.AppendMovement(ctx, &domain.InventoryMovement{
		TenantID: tenant, PropertyID: property, SupplyID: "s1", Type: domain.MovementIn, Quantity: 3,
	}))

	store := &conflictingStore{Store: mem, conflicts: 2}
	entry, err := NewReconcileService(store, store, nil).RecountSupply(ctx, tenant, property, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3.0, entry.Current)
	assert.Equal(t, 3, store.calls)

	rec, err := mem.GetRecord(ctx, tenant, property, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3.0, rec.CurrentQty)
}

func TestRecountSupplyGivesUpAfterThreeConflicts(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	require.NoError(t, mem.EnsureRecord(ctx, tenant, property, "s1"))
	require.NoError(t, mem.AppendMovement(ctx, &domain.InventoryMovement{
		TenantID: tenant, PropertyID: property, SupplyID: "s1", Type: domain.MovementIn, Quantity: 3,
	}))

	store := &conflictingStore{Store: mem, conflicts: 10}
	svc := NewReconcileService(store, store, nil)

	_, err := svc.RecountSupply(ctx, tenant, property, "s1")
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
	assert.Equal(t, maxRecountAttempts, store.calls)

	result := svc.Recount(ctx, tenant, property)
	assert.False(t, result.Success)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "s1", result.Entries[0].SupplyID)
	assert.NotEmpty(t, result.Entries[0].Error)
}
