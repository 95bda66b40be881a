package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
)

func TestRecommendBuy(t *testing.T) {
	tests := []struct {
		name string
		in   domain.BuyInput
		want float64
	}{
		{
			name: "no consumption, above minimum",
			in:   domain.BuyInput{CurrentQty: 5, MinQty: 2, MaxQty: 10},
			want: 0,
		},
		{
			name: "no consumption, below minimum refills to max",
			in:   domain.BuyInput{CurrentQty: 1, MinQty: 2, MaxQty: 10},
			want: 9,
		},
		{
			name: "no consumption, below minimum without max refills to min",
			in:   domain.BuyInput{CurrentQty: 1, MinQty: 4},
			want: 3,
		},
		{
			name: "horizon usage capped at max",
			in:   domain.BuyInput{CurrentQty: 2, MinQty: 2, MaxQty: 10, DailyAverage: 1, HorizonDays: 21},
			want: 8,
		},
		{
			name: "horizon usage without max",
			in:   domain.BuyInput{CurrentQty: 3, MinQty: 2, DailyAverage: 0.5, HorizonDays: 10},
			want: 4,
		},
		{
			name: "fractional target rounds up",
			in:   domain.BuyInput{CurrentQty: 0, MinQty: 0, DailyAverage: 0.1, HorizonDays: 21},
			want: 3,
		},
		{
			name: "overstocked never goes negative",
			in:   domain.BuyInput{CurrentQty: 50, MinQty: 2, MaxQty: 10, DailyAverage: 1, HorizonDays: 7},
			want: 0,
		},
		{
			name: "default horizon",
			in:   domain.BuyInput{CurrentQty: 0, MinQty: 0, DailyAverage: 1},
			want: 21,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := RecommendBuy(tt.in)
			assert.Equal(t, tt.want, plan.RecommendedBuy)
			assert.NotEmpty(t, plan.Rationale)
		})
	}
}

func TestDaysRemaining(t *testing.T) {
	assert.Equal(t, 20, DaysRemaining(2, 3.0/30))
	assert.Equal(t, domain.NoConsumptionDays, DaysRemaining(2, 0))
	assert.Equal(t, 0, DaysRemaining(-1, 1))
	assert.Equal(t, 2, DaysRemaining(5, 2))
}

func TestDaysRemainingCapsTinyRates(t *testing.T) {
	assert.Equal(t, domain.NoConsumptionDays, DaysRemaining(1e6, 1e-14))
	assert.Equal(t, domain.NoConsumptionDays, DaysRemaining(1, 1e-12))
	assert.Equal(t, 9998, DaysRemaining(9998, 1))
}
