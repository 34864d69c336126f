package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lunani254/present/internal/bidding/domain"
)

func newSubmitFixture(products ...*domain.Product) (*SubmitBidUseCase, *fakeBidRepo, *fakeListingDirectory, *capturePublisher) {
	repo := newFakeBidRepo()
	listings := newFakeListingDirectory(products...)
	counter := NewSyncBidderCountUseCase(repo, listings)
	publisher := &capturePublisher{}
	uc := NewSubmitBidUseCase(repo, listings, counter, publisher)
	return uc, repo, listings, publisher
}

func testProduct() *domain.Product {
	return &domain.Product{
		ID:              "ad-1",
		SellerID:        "seller-1",
		Name:            "Phone",
		MinimumBidPrice: 100,
	}
}

func TestSubmitBid_Success(t *testing.T) {
	uc, repo, listings, publisher := newSubmitFixture(testProduct())

	bid, err := uc.Execute(context.Background(), SubmitBidDTO{
		ProductID:   "ad-1",
		BidderID:    "bidder-a",
		BidderEmail: "a@example.com",
		Amount:      120,
	})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if bid.Status != domain.BidStatusPending {
		t.Errorf("expected pending status, got %s", bid.Status)
	}
	if bid.SubmittedAt.IsZero() {
		t.Error("expected server-assigned timestamp")
	}
	if got := repo.statusOf(bid.ID); got != domain.BidStatusPending {
		t.Errorf("expected persisted pending bid, got %s", got)
	}
	if got := listings.bidderCount("ad-1"); got != 1 {
		t.Errorf("expected bidder count 1, got %d", got)
	}

	placed := publisher.ofKind(domain.EventBidPlaced)
	if len(placed) != 1 {
		t.Fatalf("expected 1 bid_placed event, got %d", len(placed))
	}
	if placed[0].RecipientID != "seller-1" {
		t.Errorf("expected seller notification, got recipient %s", placed[0].RecipientID)
	}
}

func TestSubmitBid_BelowMinimumPrice(t *testing.T) {
	uc, repo, listings, publisher := newSubmitFixture(testProduct())

	_, err := uc.Execute(context.Background(), SubmitBidDTO{
		ProductID: "ad-1",
		BidderID:  "bidder-a",
		Amount:    99.99,
	})
	if !errors.Is(err, domain.ErrBidTooLow) {
		t.Fatalf("expected ErrBidTooLow, got: %v", err)
	}

	if bids, _ := repo.ListByProduct(context.Background(), "ad-1"); len(bids) != 0 {
		t.Errorf("expected no bid persisted, got %d", len(bids))
	}
	if got := listings.bidderCount("ad-1"); got != 0 {
		t.Errorf("expected bidder count unchanged, got %d", got)
	}
	if len(publisher.events) != 0 {
		t.Errorf("expected no events, got %d", len(publisher.events))
	}
}

func TestSubmitBid_AmountAtMinimumIsAccepted(t *testing.T) {
	uc, _, _, _ := newSubmitFixture(testProduct())

	if _, err := uc.Execute(context.Background(), SubmitBidDTO{
		ProductID: "ad-1",
		BidderID:  "bidder-a",
		Amount:    100,
	}); err != nil {
		t.Fatalf("amount equal to minimum must be valid, got: %v", err)
	}
}

func TestSubmitBid_InvalidAmount(t *testing.T) {
	uc, _, _, _ := newSubmitFixture(testProduct())

	_, err := uc.Execute(context.Background(), SubmitBidDTO{
		ProductID: "ad-1",
		BidderID:  "bidder-a",
		Amount:    0,
	})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got: %v", err)
	}
}

func TestSubmitBid_UnknownProduct(t *testing.T) {
	uc, repo, _, _ := newSubmitFixture(testProduct())

	_, err := uc.Execute(context.Background(), SubmitBidDTO{
		ProductID: "ad-missing",
		BidderID:  "bidder-a",
		Amount:    150,
	})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got: %v", err)
	}
	if len(repo.bids) != 0 {
		t.Errorf("expected no bid persisted, got %d", len(repo.bids))
	}
}

func TestSubmitBid_CollaboratorUnavailable(t *testing.T) {
	uc, _, listings, _ := newSubmitFixture(testProduct())
	listings.getErr = domain.ErrCollaboratorUnavailable

	_, err := uc.Execute(context.Background(), SubmitBidDTO{
		ProductID: "ad-1",
		BidderID:  "bidder-a",
		Amount:    150,
	})
	if !errors.Is(err, domain.ErrCollaboratorUnavailable) {
		t.Fatalf("expected ErrCollaboratorUnavailable, got: %v", err)
	}
}

func TestSubmitBid_CounterWriteFailureKeepsBid(t *testing.T) {
	uc, repo, listings, publisher := newSubmitFixture(testProduct())
	listings.setErr = domain.ErrCollaboratorUnavailable

	bid, err := uc.Execute(context.Background(), SubmitBidDTO{
		ProductID: "ad-1",
		BidderID:  "bidder-a",
		Amount:    150,
	})
	if err != nil {
		t.Fatalf("counter failure must not fail the submission, got: %v", err)
	}
	if got := repo.statusOf(bid.ID); got != domain.BidStatusPending {
		t.Errorf("expected bid persisted despite counter failure, got %s", got)
	}
	if len(publisher.ofKind(domain.EventBidPlaced)) != 1 {
		t.Error("expected bid_placed event despite counter failure")
	}
}

func TestSubmitBid_ConcurrentSubmissionsKeepCountConsistent(t *testing.T) {
	const bidders = 50

	uc, repo, listings, _ := newSubmitFixture(testProduct())

	var wg sync.WaitGroup
	for i := 0; i < bidders; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := uc.Execute(context.Background(), SubmitBidDTO{
				ProductID: "ad-1",
				BidderID:  fmt.Sprintf("bidder-%d", n),
				Amount:    100 + float64(n),
			})
			if err != nil {
				t.Errorf("concurrent submission failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	// one extra sync to settle interleavings where a later submission's
	// recompute landed before an earlier insert
	counter := NewSyncBidderCountUseCase(repo, listings)
	count, err := counter.Execute(context.Background(), "ad-1")
	if err != nil {
		t.Fatalf("final sync failed: %v", err)
	}
	if count != bidders {
		t.Errorf("expected %d bids, got %d", bidders, count)
	}
	if got := listings.bidderCount("ad-1"); got != bidders {
		t.Errorf("expected bidder count %d, got %d", bidders, got)
	}
}

func TestSubmitBid_ServerAssignedTimestampsAreUsed(t *testing.T) {
	uc, _, _, _ := newSubmitFixture(testProduct())
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return fixed }

	bid, err := uc.Execute(context.Background(), SubmitBidDTO{
		ProductID: "ad-1",
		BidderID:  "bidder-a",
		Amount:    150,
	})
	if err != nil {
		t.Fatalf("expected success, got: %v", err)
	}
	if !bid.SubmittedAt.Equal(fixed) {
		t.Errorf("expected server clock timestamp %v, got %v", fixed, bid.SubmittedAt)
	}
}
