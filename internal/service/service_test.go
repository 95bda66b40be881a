package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/cleanops/backend-go/internal/cache"
	"github.com/andresuchdata/cleanops/backend-go/internal/config"
	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
	"github.com/andresuchdata/cleanops/backend-go/internal/normalize"
	"github.com/andresuchdata/cleanops/backend-go/internal/repository"
	"github.com/andresuchdata/cleanops/backend-go/internal/repository/memory"
)

const (
	tenant   = "tenant-1"
	property = "villa-7"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	clock       *testClock
	store       *memory.Store
	catalog     *CatalogService
	ledger      *LedgerService
	reconciler  *ReconcileService
	consumption *ConsumptionService
	recs        *RecommendationService

	domestos string
	papir    string
	kapsle   string
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithCache(t, nil)
}

func newFixtureWithCache(t *testing.T, shoppingCache cache.ShoppingListCache) *fixture {
	t.Helper()
	clock := &testClock{now: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)}
	store := memory.New(memory.WithClock(clock.Now))
	return newFixtureOn(t, store, store, clock, shoppingCache)
}

// newFixtureOn builds the services on an arbitrary store while seeding the
// catalog through the memory store.
func newFixtureOn(t *testing.T, mem *memory.Store, store repository.Store, clock *testClock, shoppingCache cache.ShoppingListCache) *fixture {
	t.Helper()
	dict, err := normalize.DefaultDictionary()
	require.NoError(t, err)
	normalizer := normalize.NewNormalizer(store, dict)

	reconciler := NewReconcileService(store, store, shoppingCache)
	consumption := NewConsumptionService(store)
	f := &fixture{
		clock:       clock,
		store:       mem,
		catalog:     NewCatalogService(store, normalizer),
		ledger:      NewLedgerService(store, normalizer, reconciler, cache.NewLocalLocker(), shoppingCache).WithClock(clock.Now),
		reconciler:  reconciler,
		consumption: consumption,
		recs: NewRecommendationService(store, consumption, shoppingCache,
			config.InventoryConfig{HorizonDays: 21, LookbackDays: 30}).WithClock(clock.Now),
	}

	ctx := context.Background()
	for name, target := range map[string]*string{
		"Domestos":       &f.domestos,
		"Toaletní papír": &f.papir,
		"Kávové kapsle":  &f.kapsle,
	} {
		s, err := f.catalog.CreateSupply(ctx, tenant, domain.SupplyInput{Name: name})
		require.NoError(t, err)
		*target = s.ID
	}
	return f
}

func (f *fixture) record(t *testing.T, supplyID string) *domain.InventoryRecord {
	t.Helper()
	rec, err := f.store.GetRecord(context.Background(), tenant, property, supplyID)
	require.NoError(t, err)
	return rec
}

func (f *fixture) movements(t *testing.T, supplyID string) []domain.InventoryMovement {
	t.Helper()
	ms, err := f.store.ListMovements(context.Background(), tenant, property, supplyID)
	require.NoError(t, err)
	return ms
}
