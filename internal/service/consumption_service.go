package service

import (
	"context"
	"math"
	"time"

	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
	"github.com/andresuchdata/cleanops/backend-go/internal/repository"
)

type ConsumptionService struct {
	movements repository.MovementRepository
}

func NewConsumptionService(movements repository.MovementRepository) *ConsumptionService {
	return &ConsumptionService{movements: movements}
}

// Calculate sums out movements per supply in [from, to] and spreads them over
// the number of days the range touches.
func (s *ConsumptionService) Calculate(ctx context.Context, tenantID, propertyID string, from, to time.Time) (*domain.ConsumptionReport, error) {
	if tenantID == "" || propertyID == "" {
		return nil, domain.NewValidationError("property_id", "tenant and property are required")
	}
	if to.Before(from) {
		return nil, domain.NewValidationError("to", "must not be before from")
	}

	usage, err := s.movements.SumOutBySupply(ctx, tenantID, propertyID, from, to)
	if err != nil {
		return nil, err
	}

	days := ConsumptionDays(from, to)
	rows := make([]domain.ConsumptionRow, 0, len(usage))
	for _, u := range usage {
		row := domain.ConsumptionRow{SupplyUsage: u}
		if days > 0 {
			row.DailyAverage = u.TotalUsed / float64(days)
		}
		rows = append(rows, row)
	}

	return &domain.ConsumptionReport{
		TenantID:   tenantID,
		PropertyID: propertyID,
		From:       from,
		To:         to,
		Days:       days,
		Rows:       rows,
	}, nil
}

// ConsumptionDays is the range length in days, rounded up.
func ConsumptionDays(from, to time.Time) int {
	return int(math.Ceil(to.Sub(from).Hours() / 24))
}
