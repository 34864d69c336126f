package application

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Reconciler periodically re-syncs the bidder count of every product that has
// bids. It exists to heal drift left behind by counter writes that failed
// during submission, the sync itself is idempotent so sweeping a product that
// is already correct is harmless.
type Reconciler struct {
	counter  *SyncBidderCountUseCase
	interval time.Duration
}

func NewReconciler(counter *SyncBidderCountUseCase, interval time.Duration) *Reconciler {
	return &Reconciler{
		counter:  counter,
		interval: interval,
	}
}

// Run blocks until the context is cancelled, sweeping on every tick. Meant to
// be started as a goroutine from main.
func (r *Reconciler) Run(ctx context.Context) {
	log.Info("Bidder count reconciler started", zap.Duration("interval", r.interval))
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Bidder count reconciler stopped")
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep runs one reconciliation pass. Failures are logged per product and do
// not stop the pass, the next sweep retries.
func (r *Reconciler) Sweep(ctx context.Context) {
	productIDs, err := r.counter.bids.ProductIDs(ctx)
	if err != nil {
		log.Error("Reconciler: failed to list products with bids", zap.Error(err))
		return
	}

	for _, productID := range productIDs {
		if _, err := r.counter.Execute(ctx, productID); err != nil {
			log.Warn("Reconciler: bidder count sync failed",
				zap.String("productID", productID),
				zap.Error(err),
			)
		}
	}

	log.Debug("Reconciler sweep completed", zap.Int("products", len(productIDs)))
}
