package domain

import "context"

// OrderSource supplies open, unfulfilled orders.
// An empty slice, not an error, signals that nothing is pending.
type OrderSource interface {
	FetchOrders(ctx context.Context) ([]Order, error)
}

// Messenger delivers a text message to a phone-like identifier.
type Messenger interface {
	Send(ctx context.Context, to, text string) error
}

// Directory is the durable supplier store.
type Directory interface {
	// Get returns ErrSupplierNotFound when no record exists.
	Get(ctx context.Context, id string) (*Supplier, error)
	Upsert(ctx context.Context, s Supplier) error
	// List returns every supplier ordered by trust score, highest first.
	List(ctx context.Context) ([]Supplier, error)
}

// Journal appends procurement exchanges to a durable log.
type Journal interface {
	Append(ctx context.Context, e JournalEntry) error
}
