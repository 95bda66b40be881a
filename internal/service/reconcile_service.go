package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/cleanops/backend-go/internal/cache"
	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
	"github.com/andresuchdata/cleanops/backend-go/internal/inventory"
	"github.com/andresuchdata/cleanops/backend-go/internal/repository"
)

const maxRecountAttempts = 3

// ReconcileService rebuilds cached quantities from the movement ledger.
type ReconcileService struct {
	inventory repository.InventoryRepository
	movements repository.MovementRepository
	cache     cache.ShoppingListCache
}

func NewReconcileService(inv repository.InventoryRepository, movements repository.MovementRepository, cacheImpl cache.ShoppingListCache) *ReconcileService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopShoppingListCache()
	}
	return &ReconcileService{inventory: inv, movements: movements, cache: cacheImpl}
}

// Recount folds the history of every record of the property. Running it
// twice without new movements changes nothing.
func (s *ReconcileService) Recount(ctx context.Context, tenantID, propertyID string) domain.RecountResult {
	result := domain.RecountResult{
		TenantID:   tenantID,
		PropertyID: propertyID,
		Entries:    []domain.RecountEntry{},
	}
	if tenantID == "" || propertyID == "" {
		result.Error = "tenant and property are required"
		return result
	}

	records, err := s.inventory.ListRecords(ctx, tenantID, propertyID)
	if err != nil {
		result.Error = fmt.Sprintf("failed to list inventory records: %v", err)
		return result
	}

	failed := 0
	for _, rec := range records {
		entry, err := s.RecountSupply(ctx, tenantID, propertyID, rec.SupplyID)
		if err != nil {
			failed++
			entry.SupplyID = rec.SupplyID
			entry.Error = err.Error()
		}
		result.Entries = append(result.Entries, entry)
	}

	result.Success = failed == 0
	if failed > 0 {
		result.Error = fmt.Sprintf("%d of %d supplies failed to recount", failed, len(records))
	}

	log.Info().
		Str("tenant_id", tenantID).
		Str("property_id", propertyID).
		Int("records", len(records)).
		Int("failed", failed).
		Msg("recount finished")

	return result
}

// RecountSupply reconciles one triple, retrying on concurrent writes.
func (s *ReconcileService) RecountSupply(ctx context.Context, tenantID, propertyID, supplyID string) (domain.RecountEntry, error) {
	entry := domain.RecountEntry{SupplyID: supplyID}

	for attempt := 1; attempt <= maxRecountAttempts; attempt++ {
		rec, err := s.inventory.GetRecord(ctx, tenantID, propertyID, supplyID)
		if err != nil {
			return entry, fmt.Errorf("failed to load inventory record: %w", err)
		}

		history, err := s.movements.ListMovements(ctx, tenantID, propertyID, supplyID)
		if err != nil {
			return entry, fmt.Errorf("failed to load movements: %w", err)
		}

		qty, err := inventory.Fold(history)
		if err != nil {
			return entry, err
		}

		entry.Previous = rec.CurrentQty
		entry.Current = qty
		entry.Changed = qty != rec.CurrentQty
		if !entry.Changed {
			return entry, nil
		}

		err = s.inventory.ApplyRecount(ctx, []domain.QuantityUpdate{{
			TenantID:        tenantID,
			PropertyID:      propertyID,
			SupplyID:        supplyID,
			Quantity:        qty,
			ExpectedVersion: rec.Version,
		}})
		if err == nil {
			log.Debug().
				Str("supply_id", supplyID).
				Float64("previous", rec.CurrentQty).
				Float64("current", qty).
				Msg("inventory quantity reconciled")
			if err := s.cache.Invalidate(ctx, tenantID, propertyID); err != nil {
				log.Warn().Err(err).Msg("recount: cache invalidate failed")
			}
			return entry, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return entry, fmt.Errorf("failed to write reconciled quantity: %w", err)
		}
		log.Debug().Str("supply_id", supplyID).Int("attempt", attempt).Msg("recount version conflict, retrying")
	}

	return entry, fmt.Errorf("supply %s: %w after %d attempts", supplyID, domain.ErrVersionConflict, maxRecountAttempts)
}
