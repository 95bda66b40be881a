package inventory

import (
	"sort"

	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
)

// SortChronological orders movements by creation time, then by insertion
// sequence, then by id. The input slice is sorted in place.
func SortChronological(movements []domain.InventoryMovement) {
	sort.SliceStable(movements, func(i, j int) bool {
		a, b := movements[i], movements[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if a.Seq != b.Seq {
			return a.Seq < b.Seq
		}
		return a.ID < b.ID
	})
}

// Fold replays a triple's history starting from zero. In and out rows move
// the running total, an adjust row replaces it.
func Fold(movements []domain.InventoryMovement) (float64, error) {
	ordered := make([]domain.InventoryMovement, len(movements))
	copy(ordered, movements)
	SortChronological(ordered)

	var total float64
	for _, m := range ordered {
		q, err := m.Amount()
		if err != nil {
			return 0, err
		}
		total = q.Apply(total)
	}
	return total, nil
}
