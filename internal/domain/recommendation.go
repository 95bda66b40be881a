package domain

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// NoConsumptionDays is reported as days_remaining when nothing was consumed
// in the lookback window.
const NoConsumptionDays = 9999

// SupplyUsage is the store-side sum of out movements for one supply.
type SupplyUsage struct {
	SupplyID   string  `json:"supply_id" db:"supply_id"`
	SupplyName string  `json:"supply_name" db:"supply_name"`
	Unit       string  `json:"unit" db:"unit"`
	TotalUsed  float64 `json:"total_used" db:"total_used"`
}

type ConsumptionRow struct {
	SupplyUsage
	DailyAverage float64 `json:"daily_average"`
}

type ConsumptionReport struct {
	TenantID   string           `json:"tenant_id"`
	PropertyID string           `json:"property_id"`
	From       time.Time        `json:"from"`
	To         time.Time        `json:"to"`
	Days       int              `json:"days"`
	Rows       []ConsumptionRow `json:"rows"`
}

// BuyInput is the argument set of the purchase arithmetic.
type BuyInput struct {
	CurrentQty   float64
	MinQty       float64
	MaxQty       float64
	DailyAverage float64
	HorizonDays  int
}

type BuyPlan struct {
	RecommendedBuy float64 `db:"recommended_buy"`
	Rationale      string  `db:"rationale"`
}

type Recommendation struct {
	SupplyID       string   `json:"supply_id"`
	SupplyName     string   `json:"supply_name"`
	Unit           string   `json:"unit"`
	CurrentQty     float64  `json:"current_qty"`
	MinQty         float64  `json:"min_qty"`
	MaxQty         float64  `json:"max_qty"`
	DailyAverage   float64  `json:"daily_average"`
	HorizonDays    int      `json:"horizon_days"`
	RecommendedBuy float64  `json:"recommended_buy"`
	Rationale      string   `json:"rationale"`
	Priority       Priority `json:"priority"`
}

type ShoppingList struct {
	TenantID          string           `json:"tenant_id"`
	PropertyID        string           `json:"property_id"`
	HorizonDays       int              `json:"horizon_days"`
	GeneratedAt       time.Time        `json:"generated_at"`
	Items             []Recommendation `json:"items"`
	TotalItems        int              `json:"total_items"`
	HighPriorityItems int              `json:"high_priority_items"`
}

type LowStockAlert struct {
	TenantID      string  `json:"tenant_id"`
	PropertyID    string  `json:"property_id"`
	SupplyID      string  `json:"supply_id"`
	SupplyName    string  `json:"supply_name"`
	Unit          string  `json:"unit"`
	CurrentQty    float64 `json:"current_qty"`
	MinQty        float64 `json:"min_qty"`
	DailyAverage  float64 `json:"daily_average"`
	DaysRemaining int     `json:"days_remaining"`
}
