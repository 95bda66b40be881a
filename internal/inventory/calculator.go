package inventory

import (
	"fmt"
	"math"

	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
)

// DefaultHorizonDays is used when a caller passes a non-positive horizon.
const DefaultHorizonDays = 21

// RecommendBuy sizes a purchase from stock level, thresholds and consumption.
// It mirrors the inventory_recommend_buy SQL function so the in-memory store
// and Postgres agree.
func RecommendBuy(in domain.BuyInput) domain.BuyPlan {
	horizon := in.HorizonDays
	if horizon <= 0 {
		horizon = DefaultHorizonDays
	}

	// 1. No measurable consumption: only refill when below the minimum
	if in.DailyAverage <= 0 {
		if in.CurrentQty >= in.MinQty {
			return domain.BuyPlan{
				RecommendedBuy: 0,
				Rationale:      fmt.Sprintf("no consumption recorded; stock %s is at or above minimum %s", formatQty(in.CurrentQty), formatQty(in.MinQty)),
			}
		}
		refillTo := in.MinQty
		if in.MaxQty > in.MinQty {
			refillTo = in.MaxQty
		}
		return domain.BuyPlan{
			RecommendedBuy: math.Max(0, math.Ceil(refillTo-in.CurrentQty)),
			Rationale:      fmt.Sprintf("no consumption recorded; stock %s below minimum %s, refill to %s", formatQty(in.CurrentQty), formatQty(in.MinQty), formatQty(refillTo)),
		}
	}

	// 2. Expected usage over the horizon on top of the minimum reserve
	expected := in.DailyAverage * float64(horizon)
	target := expected + in.MinQty

	// 3. Cap at max when one is configured, never below min
	if in.MaxQty > 0 {
		target = math.Min(target, in.MaxQty)
	}
	target = math.Max(target, in.MinQty)

	// 4. Purchase quantity
	buy := math.Max(0, math.Ceil(target-in.CurrentQty))

	return domain.BuyPlan{
		RecommendedBuy: buy,
		Rationale: fmt.Sprintf("%.2f/day over %d days needs %s plus minimum %s; target %s, on hand %s",
			in.DailyAverage, horizon, formatQty(expected), formatQty(in.MinQty), formatQty(target), formatQty(in.CurrentQty)),
	}
}

// DaysRemaining is how many whole days the current stock lasts at the given
// daily rate, capped at NoConsumptionDays.
func DaysRemaining(current, dailyAverage float64) int {
	if dailyAverage <= 0 {
		return domain.NoConsumptionDays
	}
	if current <= 0 {
		return 0
	}
	days := math.Floor(current / dailyAverage)
	if days >= domain.NoConsumptionDays {
		return domain.NoConsumptionDays
	}
	return int(days)
}

func formatQty(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
