package domain

import (
	"context"

	"github.com/google/uuid"
)

// Decision is the seller verdict on a single bid
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// DecisionResult carries the updated target bid plus, on accept, every other
// pending bid of the product that was rejected as part of the cascade
type DecisionResult struct {
	Target   *Bid
	Cascaded []*Bid
}

// BidRepository is the persistence port for the bid store. Bids are append
// only, the only mutation ever applied is the status transition performed by
// ApplyDecision.
type BidRepository interface {
	Insert(ctx context.Context, bid *Bid) error
	GetByID(ctx context.Context, productID string, bidID uuid.UUID) (*Bid, error)
	// ListByProduct returns the product's bids in insertion order
	// (submitted_at ascending), ranking is applied separately by the caller
	ListByProduct(ctx context.Context, productID string) ([]*Bid, error)
	ListByBidder(ctx context.Context, bidderID string) ([]*Bid, error)
	CountByProduct(ctx context.Context, productID string) (int, error)
	// ProductIDs lists every product that has at least one bid, used by the
	// counter reconciliation sweep
	ProductIDs(ctx context.Context) ([]string, error)
	// ApplyDecision transitions the target bid out of pending as one
	// conditional transaction scoped to the product. On accept it also
	// rejects every other pending bid of the product and returns the losers
	// in Cascaded. At most one bid per product can ever end up accepted:
	// a concurrent decide loser gets ErrAlreadyDecided or
	// ErrProductAlreadyResolved, never a partial cascade.
	ApplyDecision(ctx context.Context, productID string, bidID uuid.UUID, decision Decision) (*DecisionResult, error)
}

// ListingDirectory is the boundary to the external listing collaborator that
// owns the ad records. The engine only reads the product and writes the
// derived bidder count back.
type ListingDirectory interface {
	GetProduct(ctx context.Context, productID string) (*Product, error)
	SetBidderCount(ctx context.Context, productID string, count int) error
}
