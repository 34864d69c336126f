package application

import (
	"context"
	"fmt"

	"github.com/lunani254/present/internal/bidding/domain"
)

// SyncBidderCountUseCase recomputes a product's bidder count from the
// authoritative bid store and writes it to the listing record.
//
// The count is always recomputed from source, never incremented in place: a
// read-count, add-one, write-count sequence loses updates when two
// submissions race, recompute makes the sync idempotent and self-healing, any
// interleaving of concurrent syncs converges to the same correct value.
type SyncBidderCountUseCase struct {
	bids     domain.BidRepository
	listings domain.ListingDirectory
}

func NewSyncBidderCountUseCase(bids domain.BidRepository, listings domain.ListingDirectory) *SyncBidderCountUseCase {
	return &SyncBidderCountUseCase{
		bids:     bids,
		listings: listings,
	}
}

// Execute returns the recomputed count. A failed write leaves the cached
// value stale, the caller decides whether that is fatal (it is not for bid
// submission, the bid store stays authoritative).
func (uc *SyncBidderCountUseCase) Execute(ctx context.Context, productID string) (int, error) {
	count, err := uc.bids.CountByProduct(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("sync bidder count: failed to count bids for product %s: %w", productID, err)
	}

	if err := uc.listings.SetBidderCount(ctx, productID, count); err != nil {
		return count, fmt.Errorf("sync bidder count: failed to write count for product %s: %w", productID, err)
	}

	return count, nil
}
