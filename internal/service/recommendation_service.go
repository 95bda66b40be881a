package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/cleanops/backend-go/internal/cache"
	"github.com/andresuchdata/cleanops/backend-go/internal/config"
	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
	"github.com/andresuchdata/cleanops/backend-go/internal/inventory"
	"github.com/andresuchdata/cleanops/backend-go/internal/repository"
)

const defaultLookbackDays = 30

type RecommendationService struct {
	inventory    repository.InventoryRepository
	calculator   repository.RecommendationCalculator
	consumption  *ConsumptionService
	cache        cache.ShoppingListCache
	horizonDays  int
	lookbackDays int
	now          func() time.Time
}

func NewRecommendationService(
	store repository.Store,
	consumption *ConsumptionService,
	cacheImpl cache.ShoppingListCache,
	cfg config.InventoryConfig,
) *RecommendationService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopShoppingListCache()
	}
	horizon := cfg.HorizonDays
	if horizon <= 0 {
		horizon = inventory.DefaultHorizonDays
	}
	lookback := cfg.LookbackDays
	if lookback <= 0 {
		lookback = defaultLookbackDays
	}
	return &RecommendationService{
		inventory:    store,
		calculator:   store,
		consumption:  consumption,
		cache:        cacheImpl,
		horizonDays:  horizon,
		lookbackDays: lookback,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source that anchors the lookback window.
func (s *RecommendationService) WithClock(now func() time.Time) *RecommendationService {
	s.now = now
	return s
}

func (s *RecommendationService) HorizonDays() int { return s.horizonDays }

// GetInventorySnapshot lists every record of the property with its supply.
func (s *RecommendationService) GetInventorySnapshot(ctx context.Context, tenantID, propertyID string) ([]domain.InventorySnapshotItem, error) {
	if err := requireProperty(tenantID, propertyID); err != nil {
		return nil, err
	}
	return s.inventory.Snapshot(ctx, tenantID, propertyID)
}

// dailyAverages returns the per-supply out rate over the lookback window.
func (s *RecommendationService) dailyAverages(ctx context.Context, tenantID, propertyID string) (map[string]float64, error) {
	to := s.now()
	from := to.AddDate(0, 0, -s.lookbackDays)

	report, err := s.consumption.Calculate(ctx, tenantID, propertyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate consumption: %w", err)
	}

	rates := make(map[string]float64, len(report.Rows))
	for _, row := range report.Rows {
		rates[row.SupplyID] = row.DailyAverage
	}
	return rates, nil
}

// GetRecommendations sizes a purchase for every supply tracked at the
// property.
func (s *RecommendationService) GetRecommendations(ctx context.Context, tenantID, propertyID string, horizonDays int) ([]domain.Recommendation, error) {
	if err := requireProperty(tenantID, propertyID); err != nil {
		return nil, err
	}
	if horizonDays <= 0 {
		horizonDays = s.horizonDays
	}

	snapshot, err := s.inventory.Snapshot(ctx, tenantID, propertyID)
	if err != nil {
		return nil, err
	}
	rates, err := s.dailyAverages(ctx, tenantID, propertyID)
	if err != nil {
		return nil, err
	}

	recommendations := make([]domain.Recommendation, 0, len(snapshot))
	for _, item := range snapshot {
		rec, err := s.recommend(ctx, item, rates[item.SupplyID], horizonDays)
		if err != nil {
			return nil, err
		}
		recommendations = append(recommendations, rec)
	}
	return recommendations, nil
}

// GetRecommendation is GetRecommendations narrowed to one supply.
func (s *RecommendationService) GetRecommendation(ctx context.Context, tenantID, propertyID, supplyID string, horizonDays int) (*domain.Recommendation, error) {
	recommendations, err := s.GetRecommendations(ctx, tenantID, propertyID, horizonDays)
	if err != nil {
		return nil, err
	}
	for i := range recommendations {
		if recommendations[i].SupplyID == supplyID {
			return &recommendations[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *RecommendationService) recommend(ctx context.Context, item domain.InventorySnapshotItem, daily float64, horizonDays int) (domain.Recommendation, error) {
	plan, err := s.calculator.RecommendBuy(ctx, domain.BuyInput{
		CurrentQty:   item.CurrentQty,
		MinQty:       item.MinQty,
		MaxQty:       item.MaxQty,
		DailyAverage: daily,
		HorizonDays:  horizonDays,
	})
	if err != nil {
		return domain.Recommendation{}, fmt.Errorf("supply %s: %w", item.SupplyID, err)
	}

	return domain.Recommendation{
		SupplyID:       item.SupplyID,
		SupplyName:     item.SupplyName,
		Unit:           item.Unit,
		CurrentQty:     item.CurrentQty,
		MinQty:         item.MinQty,
		MaxQty:         item.MaxQty,
		DailyAverage:   daily,
		HorizonDays:    horizonDays,
		RecommendedBuy: plan.RecommendedBuy,
		Rationale:      plan.Rationale,
		Priority:       inventory.ClassifyPriority(item.CurrentQty, item.MinQty, plan.RecommendedBuy),
	}, nil
}

// GetShoppingList wraps the recommendations of a property with counts. Lists
// are cached until the next ledger write for the property.
func (s *RecommendationService) GetShoppingList(ctx context.Context, tenantID, propertyID string, horizonDays int) (*domain.ShoppingList, error) {
	if horizonDays <= 0 {
		horizonDays = s.horizonDays
	}

	if list, ok, err := s.cache.Get(ctx, tenantID, propertyID, horizonDays); err == nil && ok {
		return list, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("recommendation: cache get shopping list failed")
	}

	items, err := s.GetRecommendations(ctx, tenantID, propertyID, horizonDays)
	if err != nil {
		return nil, err
	}

	list := &domain.ShoppingList{
		TenantID:    tenantID,
		PropertyID:  propertyID,
		HorizonDays: horizonDays,
		GeneratedAt: s.now(),
		Items:       items,
		TotalItems:  len(items),
	}
	for _, item := range items {
		if item.Priority == domain.PriorityHigh {
			list.HighPriorityItems++
		}
	}

	if err := s.cache.Set(ctx, list); err != nil {
		log.Warn().Err(err).Msg("recommendation: cache set shopping list failed")
	}

	return list, nil
}

// GetLowStockAlerts lists records at or below their minimum, for one property
// or for every property of the tenant when propertyID is empty.
func (s *RecommendationService) GetLowStockAlerts(ctx context.Context, tenantID, propertyID string) ([]domain.LowStockAlert, error) {
	if tenantID == "" {
		return nil, domain.NewValidationError("tenant_id", "is required")
	}

	snapshot, err := s.inventory.Snapshot(ctx, tenantID, propertyID)
	if err != nil {
		return nil, err
	}

	rates := make(map[string]map[string]float64)
	alerts := make([]domain.LowStockAlert, 0)
	for _, item := range snapshot {
		if !inventory.IsLowStock(item.CurrentQty, item.MinQty) {
			continue
		}

		propertyRates, ok := rates[item.PropertyID]
		if !ok {
			propertyRates, err = s.dailyAverages(ctx, tenantID, item.PropertyID)
			if err != nil {
				return nil, err
			}
			rates[item.PropertyID] = propertyRates
		}

		daily := propertyRates[item.SupplyID]
		alerts = append(alerts, domain.LowStockAlert{
			TenantID:      tenantID,
			PropertyID:    item.PropertyID,
			SupplyID:      item.SupplyID,
			SupplyName:    item.SupplyName,
			Unit:          item.Unit,
			CurrentQty:    item.CurrentQty,
			MinQty:        item.MinQty,
			DailyAverage:  daily,
			DaysRemaining: inventory.DaysRemaining(item.CurrentQty, daily),
		})
	}
	return alerts, nil
}

func requireProperty(tenantID, propertyID string) error {
	if tenantID == "" {
		return domain.NewValidationError("tenant_id", "is required")
	}
	if propertyID == "" {
		return domain.NewValidationError("property_id", "is required")
	}
	return nil
}
