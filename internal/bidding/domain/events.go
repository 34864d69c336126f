package domain

import "context"

// EventKind identifies a notification event produced by the engine
type EventKind string

const (
	EventBidPlaced   EventKind = "bid_placed"
	EventBidAccepted EventKind = "bid_accepted"
	EventBidRejected EventKind = "bid_rejected"
)

// Event is a notification for the external delivery channel. RecipientID is
// the user the notifier should reach: the seller for a placed bid, the bidder
// for a decision on their bid.
type Event struct {
	Kind        EventKind
	RecipientID string
	ProductID   string
	ProductName string
	Bid         *Bid
}

// EventPublisher delivers events to the external notification collaborator.
// Delivery is fire and forget: implementations never fail the state
// transition that produced the event, a lost notification is the notifier's
// problem to retry.
type EventPublisher interface {
	Publish(ctx context.Context, event Event)
}
