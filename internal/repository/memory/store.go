// Package memory is an in-process implementation of the repository
// interfaces, used by tests and by the CLI when no database is configured.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
	"github.com/andresuchdata/cleanops/backend-go/internal/inventory"
	"github.com/andresuchdata/cleanops/backend-go/internal/repository"
)

var _ repository.Store = (*Store)(nil)

type Option func(*Store)

// WithClock overrides the time source used for timestamps the store fills in.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

type Store struct {
	mu        sync.RWMutex
	now       func() time.Time
	supplies  map[string]domain.Supply
	aliases   map[string]domain.SupplyAlias
	records   map[string]domain.InventoryRecord
	movements []domain.InventoryMovement
	seq       int64
}

func New(opts ...Option) *Store {
	s := &Store{
		now:      time.Now,
		supplies: make(map[string]domain.Supply),
		aliases:  make(map[string]domain.SupplyAlias),
		records:  make(map[string]domain.InventoryRecord),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func recordKey(tenantID, propertyID, supplyID string) string {
	return tenantID + "|" + propertyID + "|" + supplyID
}

func aliasKey(tenantID, alias string) string {
	return tenantID + "|" + alias
}

// Supplies

func (s *Store) CreateSupply(_ context.Context, sup *domain.Supply) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sup.ID == "" {
		sup.ID = uuid.NewString()
	}
	if _, exists := s.supplies[sup.ID]; exists {
		return domain.ErrAlreadyExists
	}
	now := s.now()
	sup.CreatedAt, sup.UpdatedAt = now, now
	s.supplies[sup.ID] = *sup
	return nil
}

func (s *Store) UpdateSupply(_ context.Context, sup *domain.Supply) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.supplies[sup.ID]
	if !ok || existing.TenantID != sup.TenantID {
		return domain.ErrNotFound
	}
	sup.CreatedAt = existing.CreatedAt
	sup.UpdatedAt = s.now()
	s.supplies[sup.ID] = *sup
	return nil
}

func (s *Store) DeactivateSupply(_ context.Context, tenantID, supplyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.supplies[supplyID]
	if !ok || existing.TenantID != tenantID {
		return domain.ErrNotFound
	}
	existing.Active = false
	existing.UpdatedAt = s.now()
	s.supplies[supplyID] = existing
	return nil
}

func (s *Store) GetSupply(_ context.Context, tenantID, supplyID string) (*domain.Supply, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	existing, ok := s.supplies[supplyID]
	if !ok || existing.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	return &existing, nil
}

func (s *Store) ListSupplies(_ context.Context, tenantID string, activeOnly bool) ([]domain.Supply, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Supply, 0)
	for _, sup := range s.supplies {
		if sup.TenantID != tenantID || (activeOnly && !sup.Active) {
			continue
		}
		out = append(out, sup)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Aliases

func (s *Store) CreateAlias(_ context.Context, a *domain.SupplyAlias) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.Alias = strings.ToLower(strings.TrimSpace(a.Alias))
	key := aliasKey(a.TenantID, a.Alias)
	if _, exists := s.aliases[key]; exists {
		return domain.ErrAlreadyExists
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = s.now()
	s.aliases[key] = *a
	return nil
}

func (s *Store) ListAliases(_ context.Context, tenantID string) ([]domain.SupplyAlias, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.SupplyAlias, 0)
	for _, a := range s.aliases {
		if a.TenantID == tenantID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Alias < out[j].Alias })
	return out, nil
}

// Inventory records

func (s *Store) SeedRecord(_ context.Context, rec *domain.InventoryRecord, initial *domain.InventoryMovement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := recordKey(rec.TenantID, rec.PropertyID, rec.SupplyID)
	if _, exists := s.records[key]; exists {
		return domain.ErrAlreadyExists
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.Version = 1
	rec.UpdatedAt = s.now()
	s.records[key] = *rec
	s.appendLocked(initial)
	return nil
}

func (s *Store) EnsureRecord(_ context.Context, tenantID, propertyID, supplyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := recordKey(tenantID, propertyID, supplyID)
	if _, exists := s.records[key]; exists {
		return nil
	}
	s.records[key] = domain.InventoryRecord{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		PropertyID: propertyID,
		SupplyID:   supplyID,
		Version:    1,
		UpdatedAt:  s.now(),
	}
	return nil
}

func (s *Store) GetRecord(_ context.Context, tenantID, propertyID, supplyID string) (*domain.InventoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[recordKey(tenantID, propertyID, supplyID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

func (s *Store) ListRecords(_ context.Context, tenantID, propertyID string) ([]domain.InventoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.InventoryRecord, 0)
	for _, rec := range s.records {
		if rec.TenantID != tenantID || (propertyID != "" && rec.PropertyID != propertyID) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PropertyID != out[j].PropertyID {
			return out[i].PropertyID < out[j].PropertyID
		}
		return out[i].SupplyID < out[j].SupplyID
	})
	return out, nil
}

func (s *Store) Snapshot(ctx context.Context, tenantID, propertyID string) ([]domain.InventorySnapshotItem, error) {
	records, err := s.ListRecords(ctx, tenantID, propertyID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.InventorySnapshotItem, 0, len(records))
	for _, rec := range records {
		item := domain.InventorySnapshotItem{InventoryRecord: rec}
		if sup, ok := s.supplies[rec.SupplyID]; ok {
			item.SupplyName = sup.Name
			item.Unit = sup.Unit
			item.SKU = sup.SKU
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PropertyID != out[j].PropertyID {
			return out[i].PropertyID < out[j].PropertyID
		}
		return out[i].SupplyName < out[j].SupplyName
	})
	return out, nil
}

func (s *Store) SetThresholds(_ context.Context, tenantID, propertyID, supplyID string, minQty, maxQty float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := recordKey(tenantID, propertyID, supplyID)
	rec, ok := s.records[key]
	if !ok {
		return domain.ErrNotFound
	}
	rec.MinQty, rec.MaxQty = minQty, maxQty
	rec.UpdatedAt = s.now()
	s.records[key] = rec
	return nil
}

func (s *Store) ApplyRecount(_ context.Context, updates []domain.QuantityUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range updates {
		rec, ok := s.records[recordKey(u.TenantID, u.PropertyID, u.SupplyID)]
		if !ok {
			return domain.ErrNotFound
		}
		if rec.Version != u.ExpectedVersion {
			return domain.ErrVersionConflict
		}
	}
	now := s.now()
	for _, u := range updates {
		key := recordKey(u.TenantID, u.PropertyID, u.SupplyID)
		rec := s.records[key]
		rec.CurrentQty = u.Quantity
		rec.Version++
		rec.UpdatedAt = now
		s.records[key] = rec
	}
	return nil
}

// Movements

func (s *Store) AppendMovement(_ context.Context, m *domain.InventoryMovement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.Type == domain.MovementOut && m.EventRef != nil {
		for _, existing := range s.movements {
			if existing.Type == domain.MovementOut && existing.EventRef != nil &&
				existing.TenantID == m.TenantID && existing.SupplyID == m.SupplyID &&
				*existing.EventRef == *m.EventRef {
				return domain.ErrDuplicateMovement
			}
		}
	}
	s.appendLocked(m)
	return nil
}

func (s *Store) appendLocked(m *domain.InventoryMovement) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}
	s.seq++
	m.Seq = s.seq
	s.movements = append(s.movements, *m)
}

func (s *Store) ListMovements(_ context.Context, tenantID, propertyID, supplyID string) ([]domain.InventoryMovement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.InventoryMovement, 0)
	for _, m := range s.movements {
		if m.TenantID == tenantID && m.PropertyID == propertyID && m.SupplyID == supplyID {
			out = append(out, m)
		}
	}
	inventory.SortChronological(out)
	return out, nil
}

func (s *Store) ListMovementsPage(ctx context.Context, filter domain.MovementFilter) ([]domain.InventoryMovement, int, error) {
	all, err := s.ListMovements(ctx, filter.TenantID, filter.PropertyID, filter.SupplyID)
	if err != nil {
		return nil, 0, err
	}

	// newest first, like the SQL implementation
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}

	total := len(all)
	start := (filter.Page - 1) * filter.PageSize
	if start >= total || start < 0 {
		return []domain.InventoryMovement{}, total, nil
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (s *Store) SumOutBySupply(_ context.Context, tenantID, propertyID string, from, to time.Time) ([]domain.SupplyUsage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[string]float64)
	for _, m := range s.movements {
		if m.Type != domain.MovementOut || m.TenantID != tenantID || m.PropertyID != propertyID {
			continue
		}
		if m.CreatedAt.Before(from) || m.CreatedAt.After(to) {
			continue
		}
		totals[m.SupplyID] += m.Quantity
	}

	out := make([]domain.SupplyUsage, 0, len(totals))
	for supplyID, total := range totals {
		usage := domain.SupplyUsage{SupplyID: supplyID, TotalUsed: total}
		if sup, ok := s.supplies[supplyID]; ok {
			usage.SupplyName = sup.Name
			usage.Unit = sup.Unit
		}
		out = append(out, usage)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SupplyName != out[j].SupplyName {
			return out[i].SupplyName < out[j].SupplyName
		}
		return out[i].SupplyID < out[j].SupplyID
	})
	return out, nil
}

// RecommendBuy runs the same arithmetic as the inventory_recommend_buy SQL
// function.
func (s *Store) RecommendBuy(_ context.Context, in domain.BuyInput) (domain.BuyPlan, error) {
	return inventory.RecommendBuy(in), nil
}
