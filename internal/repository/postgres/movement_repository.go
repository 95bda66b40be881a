package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
)

type movementRepository struct {
	db *DB
}

func NewMovementRepository(db *DB) *movementRepository {
	return &movementRepository{db: db}
}

const movementColumns = `id, seq, tenant_id, property_id, supply_id, type, quantity, source, event_ref, created_at`

func (r *movementRepository) AppendMovement(ctx context.Context, m *domain.InventoryMovement) error {
	return insertMovement(ctx, r.db, m)
}

// insertMovement is shared with SeedRecord, which runs it inside its own
// transaction.
func insertMovement(ctx context.Context, q sqlx.QueryerContext, m *domain.InventoryMovement) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO inventory_movements (id, tenant_id, property_id, supply_id, type, quantity, source, event_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING seq
	`
	row := q.QueryRowxContext(ctx, query, m.ID, m.TenantID, m.PropertyID, m.SupplyID,
		m.Type, m.Quantity, m.Source, m.EventRef, m.CreatedAt)
	if err := row.Scan(&m.Seq); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateMovement
		}
		return fmt.Errorf("failed to insert movement: %w", err)
	}
	return nil
}

func (r *movementRepository) ListMovements(ctx context.Context, tenantID, propertyID, supplyID string) ([]domain.InventoryMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM inventory_movements
		WHERE tenant_id = $1 AND property_id = $2 AND supply_id = $3
		ORDER BY created_at, seq, id`
	movements := []domain.InventoryMovement{}
	if err := r.db.SelectContext(ctx, &movements, query, tenantID, propertyID, supplyID); err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	return movements, nil
}

func (r *movementRepository) ListMovementsPage(ctx context.Context, filter domain.MovementFilter) ([]domain.InventoryMovement, int, error) {
	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM inventory_movements
		WHERE tenant_id = $1 AND property_id = $2 AND supply_id = $3
	`
	if err := r.db.GetContext(ctx, &total, countQuery, filter.TenantID, filter.PropertyID, filter.SupplyID); err != nil {
		return nil, 0, fmt.Errorf("failed to count movements: %w", err)
	}

	query := `SELECT ` + movementColumns + `
		FROM inventory_movements
		WHERE tenant_id = $1 AND property_id = $2 AND supply_id = $3
		ORDER BY created_at DESC, seq DESC
		LIMIT $4 OFFSET $5`
	movements := []domain.InventoryMovement{}
	offset := (filter.Page - 1) * filter.PageSize
	if err := r.db.SelectContext(ctx, &movements, query,
		filter.TenantID, filter.PropertyID, filter.SupplyID, filter.PageSize, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list movements page: %w", err)
	}
	return movements, total, nil
}

func (r *movementRepository) SumOutBySupply(ctx context.Context, tenantID, propertyID string, from, to time.Time) ([]domain.SupplyUsage, error) {
	query := `
		SELECT
			m.supply_id,
			s.name AS supply_name,
			s.unit,
			COALESCE(SUM(m.quantity), 0) AS total_used
		FROM inventory_movements m
		JOIN supplies s ON s.id = m.supply_id
		WHERE m.tenant_id = $1
			AND m.property_id = $2
			AND m.type = 'out'
			AND m.created_at BETWEEN $3 AND $4
		GROUP BY m.supply_id, s.name, s.unit
		ORDER BY s.name, m.supply_id
	`
	usage := []domain.SupplyUsage{}
	if err := r.db.SelectContext(ctx, &usage, query, tenantID, propertyID, from, to); err != nil {
		return nil, fmt.Errorf("failed to sum consumption: %w", err)
	}
	return usage, nil
}
