package domain

import "time"

type MatchSource string

const (
	MatchDictionary MatchSource = "dictionary"
	MatchAlias      MatchSource = "alias"
	MatchFuzzy      MatchSource = "fuzzy"
	MatchNone       MatchSource = "none"
)

// ItemMention is a raw piece of text naming a supply, with the quantity the
// caller already knows.
type ItemMention struct {
	Text     string  `json:"text"`
	Quantity float64 `json:"quantity"`
}

// NormalizedItem is the resolution result for one mention. Items with
// NeedsMapping set carry no supply and must never reach the ledger.
type NormalizedItem struct {
	SupplyID     *string     `json:"supply_id,omitempty"`
	SupplyName   string      `json:"supply_name,omitempty"`
	Quantity     float64     `json:"quantity"`
	OriginalText string      `json:"original_text"`
	Confidence   float64     `json:"confidence"`
	NeedsMapping bool        `json:"needs_mapping"`
	MatchSource  MatchSource `json:"match_source"`
}

// OperationalEvent is a completed operational report (for example a finished
// cleaning) that may have consumed supplies. Items wins over Note when both
// are present.
type OperationalEvent struct {
	ID         string      `json:"id"`
	TenantID   string      `json:"tenant_id"`
	PropertyID string      `json:"property_id"`
	Type       string      `json:"type"`
	Items      []EventItem `json:"items,omitempty"`
	Note       string      `json:"note,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

type EventItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
}

// EventResult is the per-item outcome of applying an event. A resolved item
// ends up in exactly one of Movements, Duplicates or Errors.
type EventResult struct {
	EventID    string              `json:"event_id"`
	Success    bool                `json:"success"`
	Movements  []InventoryMovement `json:"movements"`
	Duplicates []string            `json:"duplicates,omitempty"`
	Errors     []string            `json:"errors,omitempty"`
	Items      []NormalizedItem    `json:"items"`
}
