package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/lunani254/present/internal/bidding/domain"
	"go.uber.org/zap"
)

// BidderBidView is the output DTO for the "your bids" screen, it joins the
// bid with display data of the listing it was placed against
type BidderBidView struct {
	Bid             *domain.Bid
	ProductName     string
	MinimumBidPrice float64
}

// ListBidsUseCase exposes the read side of the bid store: the per product
// snapshot in insertion order, the derived ranking and the per bidder view
type ListBidsUseCase struct {
	bids     domain.BidRepository
	listings domain.ListingDirectory
}

func NewListBidsUseCase(bids domain.BidRepository, listings domain.ListingDirectory) *ListBidsUseCase {
	return &ListBidsUseCase{
		bids:     bids,
		listings: listings,
	}
}

// ByProduct returns the product's bids ordered by insertion
func (uc *ListBidsUseCase) ByProduct(ctx context.Context, productID string) ([]*domain.Bid, error) {
	bids, err := uc.bids.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list bids use case: product %s: %w", productID, err)
	}
	return bids, nil
}

// Rank returns the product's bids ordered by amount descending, first come
// tie break. The ranking is derived fresh on every call, see domain.RankBids.
func (uc *ListBidsUseCase) Rank(ctx context.Context, productID string) ([]*domain.Bid, error) {
	bids, err := uc.bids.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("rank bids use case: product %s: %w", productID, err)
	}
	return domain.RankBids(bids), nil
}

// ByBidder returns every bid the user has placed, newest listing data joined
// in for display. Bids whose ad has been taken down are skipped, the bid
// record itself is kept for audit.
func (uc *ListBidsUseCase) ByBidder(ctx context.Context, bidderID string) ([]BidderBidView, error) {
	bids, err := uc.bids.ListByBidder(ctx, bidderID)
	if err != nil {
		return nil, fmt.Errorf("list bidder bids use case: bidder %s: %w", bidderID, err)
	}

	products := make(map[string]*domain.Product)
	views := make([]BidderBidView, 0, len(bids))
	for _, bid := range bids {
		product, ok := products[bid.ProductID]
		if !ok {
			product, err = uc.listings.GetProduct(ctx, bid.ProductID)
			if err != nil {
				if errors.Is(err, domain.ErrProductNotFound) {
					log.Debug("ListBidsUseCase: skipping bid on removed listing",
						zap.String("bidID", bid.ID.String()),
						zap.String("productID", bid.ProductID),
					)
					continue
				}
				return nil, fmt.Errorf("list bidder bids use case: product %s: %w", bid.ProductID, err)
			}
			products[bid.ProductID] = product
		}
		views = append(views, BidderBidView{
			Bid:             bid,
			ProductName:     product.Name,
			MinimumBidPrice: product.MinimumBidPrice,
		})
	}

	return views, nil
}
