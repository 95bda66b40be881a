package inventory

import "github.com/andresuchdata/cleanops/backend-go/internal/domain"

// ClassifyPriority ranks a recommendation. The first matching rule wins.
func ClassifyPriority(current, min, buy float64) domain.Priority {
	switch {
	case buy <= 0:
		return domain.PriorityLow
	case current < min:
		return domain.PriorityHigh
	case buy > 0.5*current:
		return domain.PriorityHigh
	case buy > 0.2*current:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

// IsLowStock reports whether a record is below its minimum, or at it when a
// minimum is configured. A record without a minimum alerts only once negative.
func IsLowStock(current, min float64) bool {
	return current < min || (min > 0 && current <= min)
}
