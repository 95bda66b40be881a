package domain

import (
	"fmt"
	"time"
)

type MovementType string

const (
	MovementIn     MovementType = "in"
	MovementOut    MovementType = "out"
	MovementAdjust MovementType = "adjust"
)

// Movement sources that are not free-form adjust reasons.
const (
	SourceManual   = "manual"
	SourcePurchase = "purchase"
	SourceInitial  = "initial"
	sourceEvent    = "event:"
)

// EventSource returns the source label recorded on movements written for an
// operational event.
func EventSource(eventID string) string {
	return sourceEvent + eventID
}

// InventoryMovement is one immutable ledger row. Quantity is the magnitude for
// in/out rows and the absolute target for adjust rows; use Amount to get the
// typed value.
type InventoryMovement struct {
	ID         string       `json:"id" db:"id"`
	Seq        int64        `json:"-" db:"seq"`
	TenantID   string       `json:"tenant_id" db:"tenant_id"`
	PropertyID string       `json:"property_id" db:"property_id"`
	SupplyID   string       `json:"supply_id" db:"supply_id"`
	Type       MovementType `json:"type" db:"type"`
	Quantity   float64      `json:"quantity" db:"quantity"`
	Source     string       `json:"source" db:"source"`
	EventRef   *string      `json:"event_ref,omitempty" db:"event_ref"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
}

// Amount converts the stored row into its tagged quantity.
func (m InventoryMovement) Amount() (Quantity, error) {
	switch m.Type {
	case MovementIn:
		return Delta(m.Quantity), nil
	case MovementOut:
		return Delta(-m.Quantity), nil
	case MovementAdjust:
		return AbsoluteSet(m.Quantity), nil
	default:
		return Quantity{}, fmt.Errorf("movement %s: unknown type %q", m.ID, m.Type)
	}
}

type quantityKind uint8

const (
	kindDelta quantityKind = iota + 1
	kindAbsolute
)

// Quantity is either a signed delta or an absolute set-point.
type Quantity struct {
	kind  quantityKind
	value float64
}

func Delta(v float64) Quantity { return Quantity{kind: kindDelta, value: v} }
func AbsoluteSet(v float64) Quantity { return Quantity{kind: kindAbsolute, value: v} }

func (q Quantity) Value() float64 { return q.value }
func (q Quantity) IsAbsolute() bool { return q.kind == kindAbsolute }

// Apply returns the running total after this quantity.
func (q Quantity) Apply(running float64) float64 {
	if q.kind == kindAbsolute {
		return q.value
	}
	return running + q.value
}

// MovementFilter selects a page of one triple's history.
type MovementFilter struct {
	TenantID   string
	PropertyID string
	SupplyID   string
	Page       int
	PageSize   int
}

// MovementPage is the paged movement history response.
type MovementPage struct {
	Items      []InventoryMovement `json:"items"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	TotalPages int                 `json:"total_pages"`
}

// MovementResult is the uniform result of a single ledger write.
type MovementResult struct {
	Success  bool               `json:"success"`
	Movement *InventoryMovement `json:"movement,omitempty"`
	Error    string             `json:"error,omitempty"`
}
