package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lunani254/present/internal/bidding/domain"
	"github.com/lunani254/present/internal/shared/logger"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// SubmitBidDTO is the input for SubmitBidUseCase, bidder identity comes as an
// opaque token resolved by the external identity collaborator
type SubmitBidDTO struct {
	ProductID   string
	BidderID    string
	BidderEmail string
	Amount      float64
}

// SubmitBidUseCase appends a new bid against a product. The bid insert is the
// authoritative write; the bidder count refresh and the seller notification
// that follow are best effort and never roll the bid back.
type SubmitBidUseCase struct {
	bids      domain.BidRepository
	listings  domain.ListingDirectory
	counter   *SyncBidderCountUseCase
	publisher domain.EventPublisher
	now       func() time.Time
}

// NewSubmitBidUseCase creates a new instance of SubmitBidUseCase, it receives
// dependencies through injection
func NewSubmitBidUseCase(bids domain.BidRepository,
	listings domain.ListingDirectory,
	counter *SyncBidderCountUseCase,
	publisher domain.EventPublisher) *SubmitBidUseCase {

	return &SubmitBidUseCase{
		bids:      bids,
		listings:  listings,
		counter:   counter,
		publisher: publisher,
		now:       time.Now,
	}
}

func (uc *SubmitBidUseCase) Execute(ctx context.Context, cmd SubmitBidDTO) (*domain.Bid, error) {
	if cmd.Amount <= 0 {
		log.Warn("SubmitBidUseCase: invalid bid amount",
			zap.String("productID", cmd.ProductID),
			zap.String("bidderID", cmd.BidderID),
			zap.Float64("amount", cmd.Amount),
		)
		return nil, domain.ErrInvalidAmount
	}

	// 1. resolve the product through the listing collaborator, submission is
	// refused when the ad does not exist or the collaborator is down
	product, err := uc.listings.GetProduct(ctx, cmd.ProductID)
	if err != nil {
		if !errors.Is(err, domain.ErrProductNotFound) {
			log.Error("SubmitBidUseCase: failed to get product",
				zap.String("productID", cmd.ProductID),
				zap.String("bidderID", cmd.BidderID),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("submit bid use case: product %s: %w", cmd.ProductID, err)
	}

	// 2. floor check holds at submission time only, later bids never raise it
	if cmd.Amount < product.MinimumBidPrice {
		log.Warn("SubmitBidUseCase: bid below minimum price",
			zap.String("productID", cmd.ProductID),
			zap.String("bidderID", cmd.BidderID),
			zap.Float64("amount", cmd.Amount),
			zap.Float64("minimumBidPrice", product.MinimumBidPrice),
		)
		return nil, fmt.Errorf("submit bid use case: amount %.2f below minimum %.2f: %w",
			cmd.Amount, product.MinimumBidPrice, domain.ErrBidTooLow)
	}

	// 3. append the bid, submittedAt is assigned from the server clock so
	// skewed device clocks cannot reorder the first come tie break
	newBid := domain.NewBid(uuid.New(), cmd.ProductID, cmd.BidderID, cmd.BidderEmail, cmd.Amount, uc.now())
	if err := uc.bids.Insert(ctx, newBid); err != nil {
		log.Error("SubmitBidUseCase: failed to insert bid",
			zap.String("productID", cmd.ProductID),
			zap.String("bidderID", cmd.BidderID),
			zap.String("bidID", newBid.ID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("submit bid use case: failed to insert bid for product %s: %w", cmd.ProductID, err)
	}

	// 4. refresh the derived bidder count. The count is a cache recomputed
	// from the bid store, a failed write here leaves it stale until the next
	// submission or the reconciliation sweep, it never invalidates the bid.
	if _, err := uc.counter.Execute(ctx, cmd.ProductID); err != nil {
		log.Warn("SubmitBidUseCase: bidder count sync failed, will self-heal on next sync",
			zap.String("productID", cmd.ProductID),
			zap.String("bidID", newBid.ID.String()),
			zap.Error(err),
		)
	}

	// 5. notify the seller, fire and forget
	uc.publisher.Publish(ctx, domain.Event{
		Kind:        domain.EventBidPlaced,
		RecipientID: product.SellerID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Bid:         newBid,
	})

	log.Info("Bid submitted",
		zap.String("productID", cmd.ProductID),
		zap.String("bidID", newBid.ID.String()),
		zap.String("bidderID", cmd.BidderID),
		zap.Float64("amount", cmd.Amount),
	)

	return newBid, nil
}
