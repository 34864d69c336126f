package websocket

import (
	"time"

	"github.com/google/uuid"
)

// MessageType identifies the ws frame type
type MessageType string

const (
	MessageTypeBidPlaced   MessageType = "server_bid_placed"   // seller notification, a new bid arrived on their ad
	MessageTypeBidAccepted MessageType = "server_bid_accepted" // bidder notification, their bid won
	MessageTypeBidRejected MessageType = "server_bid_rejected" // bidder notification, their bid lost
)

// BaseMessage is the base struct for all ws messages, includes a Type field
// to identify the message type
type BaseMessage struct {
	Type MessageType `json:"type"`
}

// BidEventMessage is the DTO for a bid notification frame pushed to a client
type BidEventMessage struct {
	BaseMessage
	Payload struct {
		ProductID   string    `json:"product_id"`
		ProductName string    `json:"product_name"`
		BidID       uuid.UUID `json:"bid_id"`
		BidderEmail string    `json:"bidder_email,omitempty"`
		Amount      float64   `json:"amount"`
		Status      string    `json:"status"`
		SubmittedAt time.Time `json:"submitted_at"`
	} `json:"payload"`
}
