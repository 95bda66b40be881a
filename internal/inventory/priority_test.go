package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
)

func TestClassifyPriority(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		min     float64
		buy     float64
		want    domain.Priority
	}{
		{"nothing to buy", 1, 10, 0, domain.PriorityLow},
		{"below minimum", 5, 10, 50, domain.PriorityHigh},
		{"below minimum small buy", 5, 10, 1, domain.PriorityHigh},
		{"buy over half of stock", 10, 2, 6, domain.PriorityHigh},
		{"buy over a fifth of stock", 10, 2, 3, domain.PriorityMedium},
		{"small top-up", 10, 2, 2, domain.PriorityLow},
		{"empty shelf without minimum", 0, 0, 4, domain.PriorityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyPriority(tt.current, tt.min, tt.buy))
		})
	}
}

func TestIsLowStock(t *testing.T) {
	assert.True(t, IsLowStock(2, 2))
	assert.True(t, IsLowStock(1, 2))
	assert.False(t, IsLowStock(3, 2))
	assert.False(t, IsLowStock(0, 0))
	assert.True(t, IsLowStock(-3, 0))
}
