package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
)

type supplyRepository struct {
	db *DB
}

func NewSupplyRepository(db *DB) *supplyRepository {
	return &supplyRepository{db: db}
}

func (r *supplyRepository) CreateSupply(ctx context.Context, s *domain.Supply) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	query := `
		INSERT INTO supplies (id, tenant_id, name, unit, sku, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	row := r.db.QueryRowxContext(ctx, query, s.ID, s.TenantID, s.Name, s.Unit, s.SKU, s.Active)
	if err := row.Scan(&s.CreatedAt, &s.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert supply: %w", err)
	}
	return nil
}

func (r *supplyRepository) UpdateSupply(ctx context.Context, s *domain.Supply) error {
	query := `
		UPDATE supplies
		SET name = $3, unit = $4, sku = $5, active = $6, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
		RETURNING created_at, updated_at
	`
	row := r.db.QueryRowxContext(ctx, query, s.TenantID, s.ID, s.Name, s.Unit, s.SKU, s.Active)
	if err := row.Scan(&s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to update supply: %w", err)
	}
	return nil
}

func (r *supplyRepository) DeactivateSupply(ctx context.Context, tenantID, supplyID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE supplies SET active = FALSE, updated_at = NOW() WHERE tenant_id = $1 AND id = $2`,
		tenantID, supplyID)
	if err != nil {
		return fmt.Errorf("failed to deactivate supply: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *supplyRepository) GetSupply(ctx context.Context, tenantID, supplyID string) (*domain.Supply, error) {
	var s domain.Supply
	query := `
		SELECT id, tenant_id, name, unit, sku, active, created_at, updated_at
		FROM supplies
		WHERE tenant_id = $1 AND id = $2
	`
	if err := r.db.GetContext(ctx, &s, query, tenantID, supplyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get supply: %w", err)
	}
	return &s, nil
}

func (r *supplyRepository) ListSupplies(ctx context.Context, tenantID string, activeOnly bool) ([]domain.Supply, error) {
	query := `
		SELECT id, tenant_id, name, unit, sku, active, created_at, updated_at
		FROM supplies
		WHERE tenant_id = $1 AND ($2 = FALSE OR active)
		ORDER BY name, id
	`
	supplies := []domain.Supply{}
	if err := r.db.SelectContext(ctx, &supplies, query, tenantID, activeOnly); err != nil {
		return nil, fmt.Errorf("failed to list supplies: %w", err)
	}
	return supplies, nil
}

func (r *supplyRepository) CreateAlias(ctx context.Context, a *domain.SupplyAlias) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.Alias = strings.ToLower(strings.TrimSpace(a.Alias))
	query := `
		INSERT INTO supply_aliases (id, tenant_id, alias, supply_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	row := r.db.QueryRowxContext(ctx, query, a.ID, a.TenantID, a.Alias, a.SupplyID)
	if err := row.Scan(&a.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert alias: %w", err)
	}
	return nil
}

func (r *supplyRepository) ListAliases(ctx context.Context, tenantID string) ([]domain.SupplyAlias, error) {
	query := `
		SELECT id, tenant_id, alias, supply_id, created_at
		FROM supply_aliases
		WHERE tenant_id = $1
		ORDER BY alias
	`
	aliases := []domain.SupplyAlias{}
	if err := r.db.SelectContext(ctx, &aliases, query, tenantID); err != nil {
		return nil, fmt.Errorf("failed to list aliases: %w", err)
	}
	return aliases, nil
}
