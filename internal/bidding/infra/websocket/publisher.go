package websocket

import (
	"context"
	"encoding/json"

	"github.com/lunani254/present/internal/bidding/domain"
	"github.com/lunani254/present/internal/shared/logger"
	"github.com/lunani254/present/internal/shared/websocket"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// HubEventPublisher implements domain.EventPublisher by pushing JSON frames
// through the shared notification hub. Delivery is fire and forget: the state
// transition that produced the event is already committed, a frame that
// cannot be delivered is only logged.
type HubEventPublisher struct {
	hub *websocket.Hub
}

// NewHubEventPublisher creates a new instance of HubEventPublisher
func NewHubEventPublisher(hub *websocket.Hub) *HubEventPublisher {
	return &HubEventPublisher{hub: hub}
}

// Publish implements domain.EventPublisher.
func (p *HubEventPublisher) Publish(_ context.Context, event domain.Event) {
	msg := BidEventMessage{
		BaseMessage: BaseMessage{Type: messageType(event.Kind)},
	}
	msg.Payload.ProductID = event.ProductID
	msg.Payload.ProductName = event.ProductName
	msg.Payload.BidID = event.Bid.ID
	msg.Payload.Amount = event.Bid.Amount
	msg.Payload.Status = string(event.Bid.Status)
	msg.Payload.SubmittedAt = event.Bid.SubmittedAt
	if event.Kind == domain.EventBidPlaced {
		// the seller sees who is bidding, decision frames go to the bidder
		// who already knows their own email
		msg.Payload.BidderEmail = event.Bid.BidderEmail
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("failed to marshal bid event message",
			zap.String("kind", string(event.Kind)),
			zap.String("bidID", event.Bid.ID.String()),
			zap.Error(err),
		)
		return
	}

	p.hub.SendToUser(event.RecipientID, data)
	log.Debug("Bid event published",
		zap.String("kind", string(event.Kind)),
		zap.String("recipientID", event.RecipientID),
		zap.String("bidID", event.Bid.ID.String()),
	)
}

func messageType(kind domain.EventKind) MessageType {
	switch kind {
	case domain.EventBidAccepted:
		return MessageTypeBidAccepted
	case domain.EventBidRejected:
		return MessageTypeBidRejected
	default:
		return MessageTypeBidPlaced
	}
}
