package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
	"github.com/andresuchdata/cleanops/backend-go/internal/normalize"
	"github.com/andresuchdata/cleanops/backend-go/internal/repository"
)

const defaultUnit = "ks"

// CatalogService administers supplies and their learned aliases.
type CatalogService struct {
	supplies   repository.SupplyRepository
	aliases    repository.AliasRepository
	normalizer *normalize.Normalizer
}

func NewCatalogService(store repository.Store, normalizer *normalize.Normalizer) *CatalogService {
	return &CatalogService{supplies: store, aliases: store, normalizer: normalizer}
}

func (s *CatalogService) CreateSupply(ctx context.Context, tenantID string, in domain.SupplyInput) (*domain.Supply, error) {
	if tenantID == "" {
		return nil, domain.NewValidationError("tenant_id", "is required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = defaultUnit
	}

	supply := &domain.Supply{
		ID:       uuid.NewString(),
		TenantID: tenantID,
		Name:     name,
		Unit:     unit,
		SKU:      trimmedOrNil(in.SKU),
		Active:   in.Active == nil || *in.Active,
	}
	if err := s.supplies.CreateSupply(ctx, supply); err != nil {
		return nil, err
	}
	return supply, nil
}

func (s *CatalogService) UpdateSupply(ctx context.Context, tenantID, supplyID string, in domain.SupplyInput) (*domain.Supply, error) {
	supply, err := s.supplies.GetSupply(ctx, tenantID, supplyID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		supply.Name = name
	}
	if unit := strings.TrimSpace(in.Unit); unit != "" {
		supply.Unit = unit
	}
	if in.SKU != nil {
		supply.SKU = trimmedOrNil(in.SKU)
	}
	if in.Active != nil {
		supply.Active = *in.Active
	}

	if err := s.supplies.UpdateSupply(ctx, supply); err != nil {
		return nil, err
	}
	return supply, nil
}

// DeactivateSupply hides a supply from matching. Its history is kept.
func (s *CatalogService) DeactivateSupply(ctx context.Context, tenantID, supplyID string) error {
	return s.supplies.DeactivateSupply(ctx, tenantID, supplyID)
}

func (s *CatalogService) GetSupply(ctx context.Context, tenantID, supplyID string) (*domain.Supply, error) {
	return s.supplies.GetSupply(ctx, tenantID, supplyID)
}

func (s *CatalogService) ListSupplies(ctx context.Context, tenantID string, includeInactive bool) ([]domain.Supply, error) {
	return s.supplies.ListSupplies(ctx, tenantID, !includeInactive)
}

// CreateAlias teaches the normalizer a new spelling for an active supply.
func (s *CatalogService) CreateAlias(ctx context.Context, tenantID, alias, supplyID string) (*domain.SupplyAlias, error) {
	alias = strings.ToLower(strings.TrimSpace(alias))
	if alias == "" {
		return nil, domain.NewValidationError("alias", "is required")
	}

	supply, err := s.supplies.GetSupply(ctx, tenantID, supplyID)
	if err != nil {
		return nil, err
	}
	if !supply.Active {
		return nil, domain.NewValidationError("supply_id", "supply %s is inactive", supplyID)
	}

	a := &domain.SupplyAlias{
		ID:       uuid.NewString(),
		TenantID: tenantID,
		Alias:    alias,
		SupplyID: supplyID,
	}
	if err := s.aliases.CreateAlias(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *CatalogService) ListAliases(ctx context.Context, tenantID string) ([]domain.SupplyAlias, error) {
	return s.aliases.ListAliases(ctx, tenantID)
}

// PreviewNormalization resolves mentions without writing anything. A note is
// split and quantity-extracted; explicit mentions are used as given.
func (s *CatalogService) PreviewNormalization(ctx context.Context, tenantID string, mentions []domain.ItemMention, note string) []domain.NormalizedItem {
	if len(mentions) == 0 {
		return s.normalizer.NormalizeNote(ctx, tenantID, note)
	}
	for i := range mentions {
		if mentions[i].Quantity == 0 {
			mentions[i].Quantity = 1
		}
	}
	return s.normalizer.Normalize(ctx, tenantID, mentions)
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
