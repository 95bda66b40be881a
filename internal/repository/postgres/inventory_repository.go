package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
)

type inventoryRepository struct {
	db *DB
}

func NewInventoryRepository(db *DB) *inventoryRepository {
	return &inventoryRepository{db: db}
}

const recordColumns = `id, tenant_id, property_id, supply_id, current_qty, min_qty, max_qty, version, updated_at`

func (r *inventoryRepository) SeedRecord(ctx context.Context, rec *domain.InventoryRecord, initial *domain.InventoryMovement) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		// 1. Record with the initial quantity
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		query := `
			INSERT INTO inventory_records (id, tenant_id, property_id, supply_id, current_qty, min_qty, max_qty, version)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 1)
			ON CONFLICT (tenant_id, property_id, supply_id) DO NOTHING
			RETURNING version, updated_at
		`
		row := tx.QueryRowxContext(ctx, query, rec.ID, rec.TenantID, rec.PropertyID, rec.SupplyID,
			rec.CurrentQty, rec.MinQty, rec.MaxQty)
		if err := row.Scan(&rec.Version, &rec.UpdatedAt); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrAlreadyExists
			}
			return fmt.Errorf("failed to insert inventory record: %w", err)
		}

		// 2. Matching adjust movement so the ledger reproduces the seed
		return insertMovement(ctx, tx, initial)
	})
}

func (r *inventoryRepository) EnsureRecord(ctx context.Context, tenantID, propertyID, supplyID string) error {
	query := `
		INSERT INTO inventory_records (id, tenant_id, property_id, supply_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id, property_id, supply_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), tenantID, propertyID, supplyID); err != nil {
		return fmt.Errorf("failed to ensure inventory record: %w", err)
	}
	return nil
}

func (r *inventoryRepository) GetRecord(ctx context.Context, tenantID, propertyID, supplyID string) (*domain.InventoryRecord, error) {
	var rec domain.InventoryRecord
	query := `SELECT ` + recordColumns + `
		FROM inventory_records
		WHERE tenant_id = $1 AND property_id = $2 AND supply_id = $3`
	if err := r.db.GetContext(ctx, &rec, query, tenantID, propertyID, supplyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get inventory record: %w", err)
	}
	return &rec, nil
}

func (r *inventoryRepository) ListRecords(ctx context.Context, tenantID, propertyID string) ([]domain.InventoryRecord, error) {
	query := `SELECT ` + recordColumns + `
		FROM inventory_records
		WHERE tenant_id = $1 AND ($2 = '' OR property_id = $2)
		ORDER BY property_id, supply_id`
	records := []domain.InventoryRecord{}
	if err := r.db.SelectContext(ctx, &records, query, tenantID, propertyID); err != nil {
		return nil, fmt.Errorf("failed to list inventory records: %w", err)
	}
	return records, nil
}

func (r *inventoryRepository) Snapshot(ctx context.Context, tenantID, propertyID string) ([]domain.InventorySnapshotItem, error) {
	query := `
		SELECT
			r.id, r.tenant_id, r.property_id, r.supply_id, r.current_qty, r.min_qty, r.max_qty,
			r.version, r.updated_at,
			s.name AS supply_name, s.unit, s.sku
		FROM inventory_records r
		JOIN supplies s ON s.id = r.supply_id
		WHERE r.tenant_id = $1 AND ($2 = '' OR r.property_id = $2)
		ORDER BY r.property_id, s.name
	`
	items := []domain.InventorySnapshotItem{}
	if err := r.db.SelectContext(ctx, &items, query, tenantID, propertyID); err != nil {
		return nil, fmt.Errorf("failed to load inventory snapshot: %w", err)
	}
	return items, nil
}

func (r *inventoryRepository) SetThresholds(ctx context.Context, tenantID, propertyID, supplyID string, minQty, maxQty float64) error {
	query := `
		UPDATE inventory_records
		SET min_qty = $4, max_qty = $5, updated_at = NOW()
		WHERE tenant_id = $1 AND property_id = $2 AND supply_id = $3
	`
	res, err := r.db.ExecContext(ctx, query, tenantID, propertyID, supplyID, minQty, maxQty)
	if err != nil {
		return fmt.Errorf("failed to set thresholds: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *inventoryRepository) ApplyRecount(ctx context.Context, updates []domain.QuantityUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE inventory_records
			SET current_qty = $4, version = version + 1, updated_at = NOW()
			WHERE tenant_id = $1 AND property_id = $2 AND supply_id = $3 AND version = $5
		`
		stmt, err := tx.PreparexContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, u := range updates {
			res, err := stmt.ExecContext(ctx, u.TenantID, u.PropertyID, u.SupplyID, u.Quantity, u.ExpectedVersion)
			if err != nil {
				return fmt.Errorf("failed to update current quantity: %w", err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return domain.ErrVersionConflict
			}
		}
		return nil
	})
}
