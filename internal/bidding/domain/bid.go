package domain

import (
	"time"

	"github.com/google/uuid"
)

// BidStatus represents the lifecycle state of a single bid
type BidStatus string

const (
	BidStatusPending  BidStatus = "pending"
	BidStatusAccepted BidStatus = "accepted"
	BidStatusRejected BidStatus = "rejected"
)

// Bid represents an individual offer made by a bidder against a listed product.
// Once a bid leaves pending its status is terminal, the record is never deleted
// so the bidder keeps the full history in their "your bids" view.
type Bid struct {
	ID          uuid.UUID
	ProductID   string
	BidderID    string
	BidderEmail string
	Amount      float64
	SubmittedAt time.Time
	Status      BidStatus
}

// NewBid creates a new Bid in pending state, the timestamp must come from the
// server clock, never from the client device
func NewBid(id uuid.UUID, productID, bidderID, bidderEmail string, amount float64, submittedAt time.Time) *Bid {
	return &Bid{
		ID:          id,
		ProductID:   productID,
		BidderID:    bidderID,
		BidderEmail: bidderEmail,
		Amount:      amount,
		SubmittedAt: submittedAt,
		Status:      BidStatusPending,
	}
}

// Decided reports whether the bid already left the pending state
func (b *Bid) Decided() bool {
	return b.Status != BidStatusPending
}
