package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/cleanops/backend-go/internal/cache"
	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
	"github.com/andresuchdata/cleanops/backend-go/internal/normalize"
	"github.com/andresuchdata/cleanops/backend-go/internal/repository"
)

const (
	defaultMovementPageSize = 50
	maxMovementPageSize     = 500
)

// LedgerService is the only writer of inventory movements. Movement rows are
// never updated or deleted; the cached quantity follows through a recount of
// the written triple.
type LedgerService struct {
	movements  repository.MovementRepository
	inventory  repository.InventoryRepository
	supplies   repository.SupplyRepository
	normalizer *normalize.Normalizer
	reconciler *ReconcileService
	locker     cache.Locker
	cache      cache.ShoppingListCache
	now        func() time.Time
}

func NewLedgerService(
	store repository.Store,
	normalizer *normalize.Normalizer,
	reconciler *ReconcileService,
	locker cache.Locker,
	cacheImpl cache.ShoppingListCache,
) *LedgerService {
	if locker == nil {
		locker = cache.NewLocalLocker()
	}
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopShoppingListCache()
	}
	return &LedgerService{
		movements:  store,
		inventory:  store,
		supplies:   store,
		normalizer: normalizer,
		reconciler: reconciler,
		locker:     locker,
		cache:      cacheImpl,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source used to stamp movements.
func (s *LedgerService) WithClock(now func() time.Time) *LedgerService {
	s.now = now
	return s
}

// ApplyFromEvent writes one out movement per resolved supply of the event.
// Unresolved items are reported and skipped; items already recorded for this
// event are reported as duplicates.
func (s *LedgerService) ApplyFromEvent(ctx context.Context, ev domain.OperationalEvent) domain.EventResult {
	result := domain.EventResult{
		EventID:   ev.ID,
		Movements: []domain.InventoryMovement{},
		Items:     []domain.NormalizedItem{},
	}
	if ev.ID == "" || ev.TenantID == "" || ev.PropertyID == "" {
		result.Errors = append(result.Errors, "event id, tenant and property are required")
		return result
	}

	items := s.normalizer.Normalize(ctx, ev.TenantID, eventMentions(ev))
	result.Items = items

	// Items naming the same supply are merged so the event writes one row per
	// supply.
	var (
		order  []string
		totals = make(map[string]float64)
	)
	for _, item := range items {
		if item.NeedsMapping {
			result.Errors = append(result.Errors, fmt.Sprintf("item %q needs mapping", item.OriginalText))
			continue
		}
		if item.Quantity <= 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("item %q has no positive quantity", item.OriginalText))
			continue
		}
		id := *item.SupplyID
		if _, seen := totals[id]; !seen {
			order = append(order, id)
		}
		totals[id] += item.Quantity
	}

	for _, supplyID := range order {
		ref := ev.ID
		m := &domain.InventoryMovement{
			ID:         uuid.NewString(),
			TenantID:   ev.TenantID,
			PropertyID: ev.PropertyID,
			SupplyID:   supplyID,
			Type:       domain.MovementOut,
			Quantity:   totals[supplyID],
			Source:     domain.EventSource(ev.ID),
			EventRef:   &ref,
			CreatedAt:  s.now(),
		}

		err := s.write(ctx, m)
		switch {
		case errors.Is(err, domain.ErrDuplicateMovement):
			result.Duplicates = append(result.Duplicates, supplyID)
		case err != nil:
			result.Errors = append(result.Errors, fmt.Sprintf("supply %s: %v", supplyID, err))
		default:
			result.Movements = append(result.Movements, *m)
		}
	}

	result.Success = len(result.Errors) == 0

	log.Info().
		Str("event_id", ev.ID).
		Str("tenant_id", ev.TenantID).
		Str("property_id", ev.PropertyID).
		Int("movements", len(result.Movements)).
		Int("duplicates", len(result.Duplicates)).
		Int("errors", len(result.Errors)).
		Msg("event applied to ledger")

	return result
}

func eventMentions(ev domain.OperationalEvent) []domain.ItemMention {
	if len(ev.Items) == 0 {
		return normalize.MentionsFromNote(ev.Note)
	}
	mentions := make([]domain.ItemMention, 0, len(ev.Items))
	for _, item := range ev.Items {
		mention := domain.ItemMention{Text: strings.TrimSpace(item.Name), Quantity: item.Quantity}
		if item.Quantity == 0 {
			qty, name := normalize.ExtractQuantity(item.Name)
			mention = domain.ItemMention{Text: name, Quantity: float64(qty)}
		}
		mentions = append(mentions, mention)
	}
	return mentions
}

// ApplyManualIn records a restock. Source is "manual" or "purchase".
func (s *LedgerService) ApplyManualIn(ctx context.Context, tenantID, propertyID, supplyID string, qty float64, source string) (domain.MovementResult, error) {
	if source == "" {
		source = domain.SourceManual
	}
	if err := validateTriple(tenantID, propertyID, supplyID); err != nil {
		return failed(err), err
	}
	if qty <= 0 || math.IsNaN(qty) || math.IsInf(qty, 0) {
		err := domain.NewValidationError("quantity", "must be positive, got %v", qty)
		return failed(err), err
	}
	if source != domain.SourceManual && source != domain.SourcePurchase {
		err := domain.NewValidationError("source", "must be %q or %q, got %q", domain.SourceManual, domain.SourcePurchase, source)
		return failed(err), err
	}
	if _, err := s.supplies.GetSupply(ctx, tenantID, supplyID); err != nil {
		return failed(err), err
	}

	m := &domain.InventoryMovement{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		PropertyID: propertyID,
		SupplyID:   supplyID,
		Type:       domain.MovementIn,
		Quantity:   qty,
		Source:     source,
		CreatedAt:  s.now(),
	}
	if err := s.write(ctx, m); err != nil {
		return failed(err), err
	}
	return domain.MovementResult{Success: true, Movement: m}, nil
}

// ApplyManualAdjust records a physical count. The quantity becomes the new
// absolute level; the reason is stored as the movement source.
func (s *LedgerService) ApplyManualAdjust(ctx context.Context, tenantID, propertyID, supplyID string, qty float64, reason string) (domain.MovementResult, error) {
	reason = strings.TrimSpace(reason)
	if err := validateTriple(tenantID, propertyID, supplyID); err != nil {
		return failed(err), err
	}
	if reason == "" {
		err := domain.NewValidationError("reason", "is required")
		return failed(err), err
	}
	if math.IsNaN(qty) || math.IsInf(qty, 0) {
		err := domain.NewValidationError("quantity", "must be a finite number")
		return failed(err), err
	}
	if _, err := s.supplies.GetSupply(ctx, tenantID, supplyID); err != nil {
		return failed(err), err
	}

	m := &domain.InventoryMovement{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		PropertyID: propertyID,
		SupplyID:   supplyID,
		Type:       domain.MovementAdjust,
		Quantity:   qty,
		Source:     reason,
		CreatedAt:  s.now(),
	}
	if err := s.write(ctx, m); err != nil {
		return failed(err), err
	}
	return domain.MovementResult{Success: true, Movement: m}, nil
}

// SeedRecord starts tracking a supply at a property with a known quantity.
// The quantity is written both to the record and as an initial adjust row.
func (s *LedgerService) SeedRecord(ctx context.Context, tenantID, propertyID, supplyID string, initialQty, minQty, maxQty float64) (*domain.InventoryRecord, error) {
	if err := validateTriple(tenantID, propertyID, supplyID); err != nil {
		return nil, err
	}
	if err := validateThresholds(minQty, maxQty); err != nil {
		return nil, err
	}
	if initialQty < 0 {
		return nil, domain.NewValidationError("initial_qty", "must not be negative")
	}
	if _, err := s.supplies.GetSupply(ctx, tenantID, supplyID); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, cache.InventoryLockKey(tenantID, propertyID, supplyID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock inventory record: %w", err)
	}
	defer unlock()

	now := s.now()
	rec := &domain.InventoryRecord{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		PropertyID: propertyID,
		SupplyID:   supplyID,
		CurrentQty: initialQty,
		MinQty:     minQty,
		MaxQty:     maxQty,
	}
	initial := &domain.InventoryMovement{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		PropertyID: propertyID,
		SupplyID:   supplyID,
		Type:       domain.MovementAdjust,
		Quantity:   initialQty,
		Source:     domain.SourceInitial,
		CreatedAt:  now,
	}
	if err := s.inventory.SeedRecord(ctx, rec, initial); err != nil {
		return nil, err
	}

	s.invalidate(ctx, tenantID, propertyID)
	return rec, nil
}

// SetThresholds changes min/max of a tracked supply. A max of 0 means no cap.
func (s *LedgerService) SetThresholds(ctx context.Context, tenantID, propertyID, supplyID string, minQty, maxQty float64) error {
	if err := validateTriple(tenantID, propertyID, supplyID); err != nil {
		return err
	}
	if err := validateThresholds(minQty, maxQty); err != nil {
		return err
	}
	if err := s.inventory.SetThresholds(ctx, tenantID, propertyID, supplyID, minQty, maxQty); err != nil {
		return err
	}
	s.invalidate(ctx, tenantID, propertyID)
	return nil
}

// ListMovements pages a triple's history, newest first.
func (s *LedgerService) ListMovements(ctx context.Context, filter domain.MovementFilter) (*domain.MovementPage, error) {
	if err := validateTriple(filter.TenantID, filter.PropertyID, filter.SupplyID); err != nil {
		return nil, err
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultMovementPageSize
	}
	if filter.PageSize > maxMovementPageSize {
		filter.PageSize = maxMovementPageSize
	}

	items, total, err := s.movements.ListMovementsPage(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.InventoryMovement{}
	}

	return &domain.MovementPage{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: (total + filter.PageSize - 1) / filter.PageSize,
	}, nil
}

// write appends under the triple lock and then reconciles the triple.
func (s *LedgerService) write(ctx context.Context, m *domain.InventoryMovement) error {
	unlock, err := s.locker.Lock(ctx, cache.InventoryLockKey(m.TenantID, m.PropertyID, m.SupplyID))
	if err != nil {
		return fmt.Errorf("failed to lock inventory record: %w", err)
	}
	defer unlock()

	if err := s.inventory.EnsureRecord(ctx, m.TenantID, m.PropertyID, m.SupplyID); err != nil {
		return &domain.PersistenceError{Op: "ensure inventory record", Err: err}
	}

	if err := s.movements.AppendMovement(ctx, m); err != nil {
		if errors.Is(err, domain.ErrDuplicateMovement) {
			return err
		}
		return &domain.PersistenceError{Op: "append movement", Err: err}
	}

	if _, err := s.reconciler.RecountSupply(ctx, m.TenantID, m.PropertyID, m.SupplyID); err != nil {
		log.Warn().Err(err).
			Str("movement_id", m.ID).
			Str("supply_id", m.SupplyID).
			Msg("movement written but recount failed")
	}

	s.invalidate(ctx, m.TenantID, m.PropertyID)
	return nil
}

func (s *LedgerService) invalidate(ctx context.Context, tenantID, propertyID string) {
	if err := s.cache.Invalidate(ctx, tenantID, propertyID); err != nil {
		log.Warn().Err(err).Msg("ledger: cache invalidate failed")
	}
}

func failed(err error) domain.MovementResult {
	return domain.MovementResult{Success: false, Error: err.Error()}
}

func validateTriple(tenantID, propertyID, supplyID string) error {
	switch {
	case strings.TrimSpace(tenantID) == "":
		return domain.NewValidationError("tenant_id", "is required")
	case strings.TrimSpace(propertyID) == "":
		return domain.NewValidationError("property_id", "is required")
	case strings.TrimSpace(supplyID) == "":
		return domain.NewValidationError("supply_id", "is required")
	}
	return nil
}

func validateThresholds(minQty, maxQty float64) error {
	if minQty < 0 || maxQty < 0 {
		return domain.NewValidationError("thresholds", "must not be negative")
	}
	if maxQty > 0 && minQty > maxQty {
		return domain.NewValidationError("thresholds", "min %v exceeds max %v", minQty, maxQty)
	}
	return nil
}
