// Package domain defines the core types for the procurement service.
package domain

import "strings"

// DefaultTrustScore is assigned to suppliers registered without an explicit score.
const DefaultTrustScore = 0.5

// Supplier is a fisherman reachable by message, keyed by a phone-like identifier.
type Supplier struct {
	ID         string  `json:"supplier_id"`
	Specialty  string  `json:"specialty"`
	TrustScore float64 `json:"trust_score"`
}

// ClampTrust bounds a trust score to [0.0, 1.0].
func ClampTrust(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Normalized returns a copy with the trust score clamped.
func (s Supplier) Normalized() Supplier {
	s.TrustScore = ClampTrust(s.TrustScore)
	return s
}

// NormalizeKey trims and lowercases a product name or routing keyword.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// StockSignal is the structured reading of a supplier's free-text reply.
// Product and QuantityKg are nil when nothing was recognised.
type StockSignal struct {
	Product    *string  `json:"product"`
	QuantityKg *float64 `json:"quantity_kg"`
	Confidence float64  `json:"confidence"`
	RawText    string   `json:"-"`
}

// IncomingMessage is a single inbound chat message.
type IncomingMessage struct {
	From     string         `json:"from_phone"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// LineItem is one product line of an order.
type LineItem struct {
	Name     string
	Quantity int
}

// Order is an open, unfulfilled order from the shop.
type Order struct {
	ID        string
	LineItems []LineItem
}

// Direction tags a message mirrored to the founder.
type Direction string

const (
	DirectionInbound  Direction = "INBOUND"
	DirectionOutbound Direction = "OUTBOUND"
)

// Outcome statuses reported by the message handlers.
const (
	StatusCancelled = "cancelled"
	StatusIgnored   = "ignored"
	StatusProcessed = "processed"
)

// FounderOutcome is the result of handling a message from the founder.
// Count is only set for an emergency stop and holds the size of the whole cancelled set.
type FounderOutcome struct {
	Status string `json:"status"`
	Count  *int   `json:"count,omitempty"`
}

// SupplierOutcome is the result of handling a supplier reply.
type SupplierOutcome struct {
	Status string      `json:"status"`
	Signal StockSignal `json:"signal"`
}

// PollResult summarises one pass over the unfulfilled orders.
type PollResult struct {
	Orders       int `json:"orders"`
	MessagesSent int `json:"messages_sent"`
}

// JournalKind classifies a message journal entry.
type JournalKind string

const (
	JournalRequest       JournalKind = "request"
	JournalReply         JournalKind = "reply"
	JournalEmergencyStop JournalKind = "emergency_stop"
)

// JournalEntry records one procurement exchange for later inspection.
type JournalEntry struct {
	ID         string      `json:"id"`
	SupplierID string      `json:"supplier_id"`
	Kind       JournalKind `json:"kind"`
	OrderID    string      `json:"order_id,omitempty"`
	Body       string      `json:"body"`
	SignalJSON string      `json:"signal_json,omitempty"`
	CreatedAt  int64       `json:"created_at"`
}

// Snapshot is a read-only view of the orchestrator's runtime state.
type Snapshot struct {
	Routes      map[string][]string `json:"routes"`
	Assignments map[string]string   `json:"assignments"`
	Cancelled   []string            `json:"cancelled"`
}
