package application

import (
	"context"

	"github.com/lunani254/present/internal/bidding/domain"
)

// BiddingService defines the application interface of the bidding module,
// this is the surface the infra layer (HTTP API, websocket) consumes
type BiddingService interface {
	// SubmitBid appends a new pending bid and refreshes the bidder count
	SubmitBid(ctx context.Context, cmd SubmitBidDTO) (*domain.Bid, error)
	// ListBids returns a product's bids in insertion order
	ListBids(ctx context.Context, productID string) ([]*domain.Bid, error)
	// Rank returns a product's bids ordered by amount desc, first come tie break
	Rank(ctx context.Context, productID string) ([]*domain.Bid, error)
	// ListBidderBids returns the caller's bids joined with listing display data
	ListBidderBids(ctx context.Context, bidderID string) ([]BidderBidView, error)
	// Decide applies a seller accept/reject on one bid, accept cascades
	Decide(ctx context.Context, cmd DecideBidDTO) (*domain.DecisionResult, error)
	// SyncBidderCount recomputes and writes the derived counter
	SyncBidderCount(ctx context.Context, productID string) (int, error)
}

type biddingService struct {
	submitBidUC *SubmitBidUseCase
	listBidsUC  *ListBidsUseCase
	decideBidUC *DecideBidUseCase
	counterUC   *SyncBidderCountUseCase
}

func NewBiddingService(submitBidUC *SubmitBidUseCase,
	listBidsUC *ListBidsUseCase,
	decideBidUC *DecideBidUseCase,
	counterUC *SyncBidderCountUseCase) BiddingService {

	return &biddingService{
		submitBidUC: submitBidUC,
		listBidsUC:  listBidsUC,
		decideBidUC: decideBidUC,
		counterUC:   counterUC,
	}
}

// SubmitBid implements BiddingService.
func (bs *biddingService) SubmitBid(ctx context.Context, cmd SubmitBidDTO) (*domain.Bid, error) {
	return bs.submitBidUC.Execute(ctx, cmd)
}

// ListBids implements BiddingService.
func (bs *biddingService) ListBids(ctx context.Context, productID string) ([]*domain.Bid, error) {
	return bs.listBidsUC.ByProduct(ctx, productID)
}

// Rank implements BiddingService.
func (bs *biddingService) Rank(ctx context.Context, productID string) ([]*domain.Bid, error) {
	return bs.listBidsUC.Rank(ctx, productID)
}

// ListBidderBids implements BiddingService.
func (bs *biddingService) ListBidderBids(ctx context.Context, bidderID string) ([]BidderBidView, error) {
	return bs.listBidsUC.ByBidder(ctx, bidderID)
}

// Decide implements BiddingService.
func (bs *biddingService) Decide(ctx context.Context, cmd DecideBidDTO) (*domain.DecisionResult, error) {
	return bs.decideBidUC.Execute(ctx, cmd)
}

// SyncBidderCount implements BiddingService.
func (bs *biddingService) SyncBidderCount(ctx context.Context, productID string) (int, error) {
	return bs.counterUC.Execute(ctx, productID)
}
