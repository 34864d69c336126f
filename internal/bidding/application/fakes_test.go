package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/lunani254/present/internal/bidding/domain"
)

// fakeBidRepo is an in-memory BidRepository. ApplyDecision mirrors the
// conditional-transaction semantics of the postgres implementation under a
// mutex, so the concurrency properties can be exercised without a database.
type fakeBidRepo struct {
	mu   sync.Mutex
	bids []domain.Bid

	insertErr error
	countErr  error
}

func newFakeBidRepo() *fakeBidRepo {
	return &fakeBidRepo{}
}

func cloneBid(b domain.Bid) *domain.Bid {
	c := b
	return &c
}

func (f *fakeBidRepo) Insert(_ context.Context, bid *domain.Bid) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.bids = append(f.bids, *bid)
	return nil
}

func (f *fakeBidRepo) GetByID(_ context.Context, productID string, bidID uuid.UUID) (*domain.Bid, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.bids {
		if f.bids[i].ProductID == productID && f.bids[i].ID == bidID {
			return cloneBid(f.bids[i]), nil
		}
	}
	return nil, domain.ErrBidNotFound
}

func (f *fakeBidRepo) ListByProduct(_ context.Context, productID string) ([]*domain.Bid, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Bid
	for i := range f.bids {
		if f.bids[i].ProductID == productID {
			out = append(out, cloneBid(f.bids[i]))
		}
	}
	return out, nil
}

func (f *fakeBidRepo) ListByBidder(_ context.Context, bidderID string) ([]*domain.Bid, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Bid
	for i := range f.bids {
		if f.bids[i].BidderID == bidderID {
			out = append(out, cloneBid(f.bids[i]))
		}
	}
	return out, nil
}

func (f *fakeBidRepo) CountByProduct(_ context.Context, productID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return 0, f.countErr
	}
	count := 0
	for i := range f.bids {
		if f.bids[i].ProductID == productID {
			count++
		}
	}
	return count, nil
}

func (f *fakeBidRepo) ProductIDs(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]bool)
	var ids []string
	for i := range f.bids {
		if !seen[f.bids[i].ProductID] {
			seen[f.bids[i].ProductID] = true
			ids = append(ids, f.bids[i].ProductID)
		}
	}
	return ids, nil
}

func (f *fakeBidRepo) ApplyDecision(_ context.Context, productID string, bidID uuid.UUID, decision domain.Decision) (*domain.DecisionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var target *domain.Bid
	resolved := false
	for i := range f.bids {
		b := &f.bids[i]
		if b.ProductID != productID {
			continue
		}
		if b.ID == bidID {
			target = b
		} else if b.Status == domain.BidStatusAccepted {
			resolved = true
		}
	}
	if target == nil {
		return nil, domain.ErrBidNotFound
	}
	if resolved {
		return nil, fmt.Errorf("bid status is %s: %w", target.Status, domain.ErrProductAlreadyResolved)
	}
	if target.Status != domain.BidStatusPending {
		return nil, fmt.Errorf("bid status is %s: %w", target.Status, domain.ErrAlreadyDecided)
	}

	result := &domain.DecisionResult{}
	if decision == domain.DecisionAccept {
		target.Status = domain.BidStatusAccepted
		for i := range f.bids {
			b := &f.bids[i]
			if b.ProductID == productID && b.ID != bidID && b.Status == domain.BidStatusPending {
				b.Status = domain.BidStatusRejected
				result.Cascaded = append(result.Cascaded, cloneBid(*b))
			}
		}
	} else {
		target.Status = domain.BidStatusRejected
	}
	result.Target = cloneBid(*target)
	return result, nil
}

// statusOf is a test helper, panics on unknown bid
func (f *fakeBidRepo) statusOf(bidID uuid.UUID) domain.BidStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.bids {
		if f.bids[i].ID == bidID {
			return f.bids[i].Status
		}
	}
	panic("unknown bid " + bidID.String())
}

// fakeListingDirectory is an in-memory ListingDirectory with failure
// injection for the collaborator-unavailable paths
type fakeListingDirectory struct {
	mu       sync.Mutex
	products map[string]*domain.Product

	getErr error
	setErr error
}

func newFakeListingDirectory(products ...*domain.Product) *fakeListingDirectory {
	d := &fakeListingDirectory{products: make(map[string]*domain.Product)}
	for _, p := range products {
		d.products[p.ID] = p
	}
	return d
}

func (d *fakeListingDirectory) GetProduct(_ context.Context, productID string) (*domain.Product, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.getErr != nil {
		return nil, d.getErr
	}
	p, ok := d.products[productID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	c := *p
	return &c, nil
}

func (d *fakeListingDirectory) SetBidderCount(_ context.Context, productID string, count int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.setErr != nil {
		return d.setErr
	}
	p, ok := d.products[productID]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.BidderCount = count
	return nil
}

func (d *fakeListingDirectory) bidderCount(productID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.products[productID].BidderCount
}

// capturePublisher records published events for assertions
type capturePublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *capturePublisher) Publish(_ context.Context, event domain.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *capturePublisher) ofKind(kind domain.EventKind) []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []domain.Event
	for _, e := range p.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
