package httpapi

import (
	"time"

	"github.com/google/uuid"
	"github.com/lunani254/present/internal/bidding/domain"
)

type bidResponse struct {
	ID          uuid.UUID `json:"id"`
	ProductID   string    `json:"product_id"`
	BidderID    string    `json:"bidder_id"`
	BidderEmail string    `json:"bidder_email,omitempty"`
	Amount      float64   `json:"amount"`
	SubmittedAt time.Time `json:"submitted_at"`
	Status      string    `json:"status"`
}

type bidderBidResponse struct {
	bidResponse
	ProductName     string  `json:"product_name"`
	MinimumBidPrice float64 `json:"minimum_bid_price"`
}

func toBidResponse(bid *domain.Bid) bidResponse {
	return bidResponse{
		ID:          bid.ID,
		ProductID:   bid.ProductID,
		BidderID:    bid.BidderID,
		BidderEmail: bid.BidderEmail,
		Amount:      bid.Amount,
		SubmittedAt: bid.SubmittedAt,
		Status:      string(bid.Status),
	}
}

func toBidResponses(bids []*domain.Bid) []bidResponse {
	out := make([]bidResponse, 0, len(bids))
	for _, bid := range bids {
		out = append(out, toBidResponse(bid))
	}
	return out
}
