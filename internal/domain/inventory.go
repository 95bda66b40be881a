package domain

import "time"

// Supply is a tenant-scoped catalog entry. Supplies are never hard-deleted so
// ledger rows keep a valid reference; Active=false hides them from matching.
type Supply struct {
	ID        string    `json:"id" db:"id"`
	TenantID  string    `json:"tenant_id" db:"tenant_id"`
	Name      string    `json:"name" db:"name"`
	Unit      string    `json:"unit" db:"unit"`
	SKU       *string   `json:"sku,omitempty" db:"sku"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SupplyAlias maps a learned free-text alias to a supply. Alias is stored
// trimmed and lowercased.
type SupplyAlias struct {
	ID        string    `json:"id" db:"id"`
	TenantID  string    `json:"tenant_id" db:"tenant_id"`
	Alias     string    `json:"alias" db:"alias"`
	SupplyID  string    `json:"supply_id" db:"supply_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// InventoryRecord holds the cached quantity of one supply at one property.
// CurrentQty must always equal the fold of the triple's movement history.
type InventoryRecord struct {
	ID         string    `json:"id" db:"id"`
	TenantID   string    `json:"tenant_id" db:"tenant_id"`
	PropertyID string    `json:"property_id" db:"property_id"`
	SupplyID   string    `json:"supply_id" db:"supply_id"`
	CurrentQty float64   `json:"current_qty" db:"current_qty"`
	MinQty     float64   `json:"min_qty" db:"min_qty"`
	MaxQty     float64   `json:"max_qty" db:"max_qty"`
	Version    int64     `json:"version" db:"version"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// InventorySnapshotItem is an inventory record joined with its catalog entry.
type InventorySnapshotItem struct {
	InventoryRecord
	SupplyName string  `json:"supply_name" db:"supply_name"`
	Unit       string  `json:"unit" db:"unit"`
	SKU        *string `json:"sku,omitempty" db:"sku"`
}

// QuantityUpdate is a reconciled quantity to be written back, guarded by the
// version the record had when its movements were read.
type QuantityUpdate struct {
	TenantID        string
	PropertyID      string
	SupplyID        string
	Quantity        float64
	ExpectedVersion int64
}

// RecountEntry reports the reconciliation outcome of one supply.
type RecountEntry struct {
	SupplyID string  `json:"supply_id"`
	Previous float64 `json:"previous_qty"`
	Current  float64 `json:"current_qty"`
	Changed  bool    `json:"changed"`
	Error    string  `json:"error,omitempty"`
}

// RecountResult reports a property recount. Success is false when any entry
// failed.
type RecountResult struct {
	TenantID   string         `json:"tenant_id"`
	PropertyID string         `json:"property_id"`
	Success    bool           `json:"success"`
	Entries    []RecountEntry `json:"entries"`
	Error      string         `json:"error,omitempty"`
}

// SupplyInput carries the editable fields of a supply.
type SupplyInput struct {
	Name   string  `json:"name"`
	Unit   string  `json:"unit"`
	SKU    *string `json:"sku,omitempty"`
	Active *bool   `json:"active,omitempty"`
}
