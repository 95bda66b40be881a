package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
	"github.com/andresuchdata/cleanops/backend-go/internal/repository"
)

var _ repository.Store = (*Store)(nil)

// Store bundles the Postgres repositories behind repository.Store.
type Store struct {
	*supplyRepository
	*inventoryRepository
	*movementRepository
	db *DB
}

func NewStore(db *DB) *Store {
	return &Store{
		supplyRepository:    NewSupplyRepository(db),
		inventoryRepository: NewInventoryRepository(db),
		movementRepository:  NewMovementRepository(db),
		db:                  db,
	}
}

// RecommendBuy evaluates inventory_recommend_buy in the database.
func (s *Store) RecommendBuy(ctx context.Context, in domain.BuyInput) (domain.BuyPlan, error) {
	var plan domain.BuyPlan
	query := `SELECT recommended_buy, rationale FROM inventory_recommend_buy($1, $2, $3, $4, $5)`
	if err := s.db.GetContext(ctx, &plan, query,
		in.CurrentQty, in.MinQty, in.MaxQty, in.DailyAverage, in.HorizonDays); err != nil {
		return domain.BuyPlan{}, fmt.Errorf("failed to evaluate recommendation: %w", err)
	}
	return plan, nil
}
