package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lunani254/present/internal/bidding/domain"
)

func TestSyncBidderCount_RecomputesFromStore(t *testing.T) {
	repo := newFakeBidRepo()
	listings := newFakeListingDirectory(testProduct())
	uc := NewSyncBidderCountUseCase(repo, listings)

	// simulate a drifted cache: three bids exist, the ad still says seven
	listings.products["ad-1"].BidderCount = 7
	for i := 0; i < 3; i++ {
		seedBid(t, repo, "ad-1", "bidder", 100+float64(i), time.Now())
	}

	count, err := uc.Execute(context.Background(), "ad-1")
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected recomputed count 3, got %d", count)
	}
	if got := listings.bidderCount("ad-1"); got != 3 {
		t.Errorf("expected drift healed to 3, got %d", got)
	}
}

func TestSyncBidderCount_IsIdempotentUnderConcurrency(t *testing.T) {
	repo := newFakeBidRepo()
	listings := newFakeListingDirectory(testProduct())
	uc := NewSyncBidderCountUseCase(repo, listings)

	for i := 0; i < 5; i++ {
		seedBid(t, repo, "ad-1", "bidder", 100+float64(i), time.Now())
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := uc.Execute(context.Background(), "ad-1"); err != nil {
				t.Errorf("concurrent sync failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := listings.bidderCount("ad-1"); got != 5 {
		t.Errorf("expected every interleaving to converge on 5, got %d", got)
	}
}

func TestSyncBidderCount_WriteFailureIsReported(t *testing.T) {
	repo := newFakeBidRepo()
	listings := newFakeListingDirectory(testProduct())
	listings.setErr = domain.ErrCollaboratorUnavailable
	uc := NewSyncBidderCountUseCase(repo, listings)

	_, err := uc.Execute(context.Background(), "ad-1")
	if !errors.Is(err, domain.ErrCollaboratorUnavailable) {
		t.Fatalf("expected ErrCollaboratorUnavailable, got: %v", err)
	}
}

func TestReconciler_SweepHealsDrift(t *testing.T) {
	repo := newFakeBidRepo()
	productA := testProduct()
	productB := &domain.Product{ID: "ad-2", SellerID: "seller-2", Name: "Bike", MinimumBidPrice: 50}
	listings := newFakeListingDirectory(productA, productB)
	uc := NewSyncBidderCountUseCase(repo, listings)

	seedBid(t, repo, "ad-1", "bidder-a", 120, time.Now())
	seedBid(t, repo, "ad-1", "bidder-b", 130, time.Now())
	seedBid(t, repo, "ad-2", "bidder-c", 60, time.Now())
	listings.products["ad-1"].BidderCount = 0 // counter writes were lost
	listings.products["ad-2"].BidderCount = 9

	NewReconciler(uc, time.Minute).Sweep(context.Background())

	if got := listings.bidderCount("ad-1"); got != 2 {
		t.Errorf("expected ad-1 healed to 2, got %d", got)
	}
	if got := listings.bidderCount("ad-2"); got != 1 {
		t.Errorf("expected ad-2 healed to 1, got %d", got)
	}
}
