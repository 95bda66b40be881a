package repository

import (
	"context"
	"time"

	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
)

type SupplyRepository interface {
	CreateSupply(ctx context.Context, s *domain.Supply) error
	UpdateSupply(ctx context.Context, s *domain.Supply) error
	DeactivateSupply(ctx context.Context, tenantID, supplyID string) error
	GetSupply(ctx context.Context, tenantID, supplyID string) (*domain.Supply, error)
	ListSupplies(ctx context.Context, tenantID string, activeOnly bool) ([]domain.Supply, error)
}

type AliasRepository interface {
	CreateAlias(ctx context.Context, a *domain.SupplyAlias) error
	ListAliases(ctx context.Context, tenantID string) ([]domain.SupplyAlias, error)
}

type InventoryRepository interface {
	// SeedRecord creates the record with its initial quantity together with the
	// initial adjust movement. Returns domain.ErrAlreadyExists if the triple is
	// already tracked.
	SeedRecord(ctx context.Context, rec *domain.InventoryRecord, initial *domain.InventoryMovement) error
	// EnsureRecord creates an empty record for the triple if there is none.
	EnsureRecord(ctx context.Context, tenantID, propertyID, supplyID string) error
	GetRecord(ctx context.Context, tenantID, propertyID, supplyID string) (*domain.InventoryRecord, error)
	// ListRecords returns every record of a property, or of the whole tenant
	// when propertyID is empty.
	ListRecords(ctx context.Context, tenantID, propertyID string) ([]domain.InventoryRecord, error)
	Snapshot(ctx context.Context, tenantID, propertyID string) ([]domain.InventorySnapshotItem, error)
	SetThresholds(ctx context.Context, tenantID, propertyID, supplyID string, minQty, maxQty float64) error
	// ApplyRecount writes all updates atomically. Any stale ExpectedVersion
	// aborts the whole batch with domain.ErrVersionConflict.
	ApplyRecount(ctx context.Context, updates []domain.QuantityUpdate) error
}

type MovementRepository interface {
	// AppendMovement inserts a ledger row. An out movement whose
	// (event_ref, supply) pair already exists yields domain.ErrDuplicateMovement.
	AppendMovement(ctx context.Context, m *domain.InventoryMovement) error
	// ListMovements returns the triple's full history in chronological order.
	ListMovements(ctx context.Context, tenantID, propertyID, supplyID string) ([]domain.InventoryMovement, error)
	ListMovementsPage(ctx context.Context, filter domain.MovementFilter) ([]domain.InventoryMovement, int, error)
	// SumOutBySupply aggregates out movements created within [from, to].
	SumOutBySupply(ctx context.Context, tenantID, propertyID string, from, to time.Time) ([]domain.SupplyUsage, error)
}

// RecommendationCalculator runs the purchase arithmetic next to the data.
type RecommendationCalculator interface {
	RecommendBuy(ctx context.Context, in domain.BuyInput) (domain.BuyPlan, error)
}

// Store is everything the inventory engine needs from persistence.
type Store interface {
	SupplyRepository
	AliasRepository
	InventoryRepository
	MovementRepository
	RecommendationCalculator
}
