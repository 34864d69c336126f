package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lunani254/present/internal/bidding/domain"
	"go.uber.org/zap"
)

// DecideBidDTO is the input for DecideBidUseCase, ActorID is the opaque
// identity of the caller as resolved by the identity collaborator
type DecideBidDTO struct {
	ProductID string
	BidID     uuid.UUID
	Decision  domain.Decision
	ActorID   string
}

// DecideBidUseCase applies a seller verdict on one bid. Accept transitions
// the target to accepted and cascades rejection to every other pending bid of
// the product in the same conditional transaction, so at most one bid per
// product can ever be accepted, no matter how many seller sessions race.
type DecideBidUseCase struct {
	bids      domain.BidRepository
	listings  domain.ListingDirectory
	publisher domain.EventPublisher
}

func NewDecideBidUseCase(bids domain.BidRepository,
	listings domain.ListingDirectory,
	publisher domain.EventPublisher) *DecideBidUseCase {

	return &DecideBidUseCase{
		bids:      bids,
		listings:  listings,
		publisher: publisher,
	}
}

func (uc *DecideBidUseCase) Execute(ctx context.Context, cmd DecideBidDTO) (*domain.DecisionResult, error) {
	if cmd.Decision != domain.DecisionAccept && cmd.Decision != domain.DecisionReject {
		return nil, fmt.Errorf("decide bid use case: %q: %w", cmd.Decision, domain.ErrInvalidDecision)
	}

	// 1. only the listing owner may decide
	product, err := uc.listings.GetProduct(ctx, cmd.ProductID)
	if err != nil {
		if !errors.Is(err, domain.ErrProductNotFound) {
			log.Error("DecideBidUseCase: failed to get product",
				zap.String("productID", cmd.ProductID),
				zap.String("actorID", cmd.ActorID),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("decide bid use case: product %s: %w", cmd.ProductID, err)
	}
	if product.SellerID != cmd.ActorID {
		log.Warn("DecideBidUseCase: actor is not the seller",
			zap.String("productID", cmd.ProductID),
			zap.String("actorID", cmd.ActorID),
			zap.String("sellerID", product.SellerID),
		)
		return nil, fmt.Errorf("decide bid use case: actor %s on product %s: %w",
			cmd.ActorID, cmd.ProductID, domain.ErrUnauthorized)
	}

	// 2. conditional transition plus cascade, all or nothing. A concurrent
	// decide on another bid of the same product observes ErrAlreadyDecided or
	// ErrProductAlreadyResolved here, never a second accepted bid.
	result, err := uc.bids.ApplyDecision(ctx, cmd.ProductID, cmd.BidID, cmd.Decision)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyDecided) || errors.Is(err, domain.ErrProductAlreadyResolved) {
			log.Warn("DecideBidUseCase: decision conflict",
				zap.String("productID", cmd.ProductID),
				zap.String("bidID", cmd.BidID.String()),
				zap.String("decision", string(cmd.Decision)),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("decide bid use case: bid %s on product %s: %w", cmd.BidID, cmd.ProductID, err)
	}

	// 3. notify the affected bidders, fire and forget
	targetKind := domain.EventBidAccepted
	if result.Target.Status == domain.BidStatusRejected {
		targetKind = domain.EventBidRejected
	}
	uc.publisher.Publish(ctx, domain.Event{
		Kind:        targetKind,
		RecipientID: result.Target.BidderID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Bid:         result.Target,
	})
	for _, loser := range result.Cascaded {
		uc.publisher.Publish(ctx, domain.Event{
			Kind:        domain.EventBidRejected,
			RecipientID: loser.BidderID,
			ProductID:   product.ID,
			ProductName: product.Name,
			Bid:         loser,
		})
	}

	log.Info("Bid decision applied",
		zap.String("productID", cmd.ProductID),
		zap.String("bidID", cmd.BidID.String()),
		zap.String("decision", string(cmd.Decision)),
		zap.Int("cascadedRejections", len(result.Cascaded)),
	)

	return result, nil
}
