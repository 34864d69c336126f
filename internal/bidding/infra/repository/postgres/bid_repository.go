package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lunani254/present/internal/bidding/domain"
	"github.com/lunani254/present/internal/shared/logger"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

const bidColumns = "id, product_id, bidder_id, bidder_email, amount, submitted_at, status"

// BidRepository implements domain.BidRepository on PostgreSQL
type BidRepository struct {
	pool *pgxpool.Pool
}

// NewBidRepository creates a new instance of BidRepository
func NewBidRepository(pool *pgxpool.Pool) *BidRepository {
	return &BidRepository{pool: pool}
}

func (r *BidRepository) Insert(ctx context.Context, bid *domain.Bid) error {
	query := `
        INSERT INTO bids (id, product_id, bidder_id, bidder_email, amount, submitted_at, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := r.pool.Exec(ctx, query,
		bid.ID,
		bid.ProductID,
		bid.BidderID,
		bid.BidderEmail,
		bid.Amount,
		bid.SubmittedAt,
		bid.Status,
	)
	return err
}

func (r *BidRepository) GetByID(ctx context.Context, productID string, bidID uuid.UUID) (*domain.Bid, error) {
	query := `
        SELECT ` + bidColumns + `
        FROM bids
        WHERE product_id = $1 AND id = $2
    `
	bid, err := scanBid(r.pool.QueryRow(ctx, query, productID, bidID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBidNotFound
		}
		return nil, err
	}
	return bid, nil
}

// ListByProduct returns the bids in insertion order, the id tie break keeps
// the snapshot restartable when two bids share the same timestamp
func (r *BidRepository) ListByProduct(ctx context.Context, productID string) ([]*domain.Bid, error) {
	query := `
        SELECT ` + bidColumns + `
        FROM bids
        WHERE product_id = $1
        ORDER BY submitted_at ASC, id ASC
    `
	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBids(rows)
}

func (r *BidRepository) ListByBidder(ctx context.Context, bidderID string) ([]*domain.Bid, error) {
	query := `
        SELECT ` + bidColumns + `
        FROM bids
        WHERE bidder_id = $1
        ORDER BY submitted_at DESC, id ASC
    `
	rows, err := r.pool.Query(ctx, query, bidderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBids(rows)
}

func (r *BidRepository) CountByProduct(ctx context.Context, productID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bids WHERE product_id = $1`, productID).Scan(&count)
	return count, err
}

func (r *BidRepository) ProductIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT product_id FROM bids`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ApplyDecision runs the whole decide-and-cascade sequence as one transaction
// serialized per product. The advisory lock is the serialization point: two
// concurrent accepts on different bids of the same product would otherwise
// both pass the "no accepted sibling" check under read committed, the lock
// makes the loser wait and then observe the winner's committed status.
func (r *BidRepository) ApplyDecision(ctx context.Context, productID string, bidID uuid.UUID, decision domain.Decision) (result *domain.DecisionResult, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("bid repository: failed to begin decision transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			log.Error("BidRepository: failed to commit decision transaction",
				zap.String("productID", productID),
				zap.String("bidID", bidID.String()),
				zap.Error(commitErr),
			)
			result = nil
			err = fmt.Errorf("bid repository: failed to commit decision transaction: %w", commitErr)
		}
	}()

	if _, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, productID); err != nil {
		return nil, fmt.Errorf("bid repository: failed to take product lock: %w", err)
	}

	target, err := r.lockedTransition(ctx, tx, productID, bidID, decision)
	if err != nil {
		return nil, err
	}

	result = &domain.DecisionResult{Target: target}
	if decision == domain.DecisionAccept {
		result.Cascaded, err = r.cascadeReject(ctx, tx, productID, bidID)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// lockedTransition applies the conditional pending -> accepted/rejected update
// and maps a zero row count to the precise conflict error. Must run under the
// per product advisory lock.
func (r *BidRepository) lockedTransition(ctx context.Context, tx pgx.Tx, productID string, bidID uuid.UUID, decision domain.Decision) (*domain.Bid, error) {
	newStatus := domain.BidStatusRejected
	if decision == domain.DecisionAccept {
		newStatus = domain.BidStatusAccepted
	}

	query := `
        UPDATE bids
        SET status = $1
        WHERE product_id = $2 AND id = $3 AND status = 'pending'
          AND NOT EXISTS (
              SELECT 1 FROM bids WHERE product_id = $2 AND status = 'accepted'
          )
        RETURNING ` + bidColumns + `
    `
	target, err := scanBid(tx.QueryRow(ctx, query, newStatus, productID, bidID))
	if err == nil {
		return target, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// the conditional update matched nothing, figure out why
	var currentStatus domain.BidStatus
	err = tx.QueryRow(ctx, `SELECT status FROM bids WHERE product_id = $1 AND id = $2`, productID, bidID).Scan(&currentStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBidNotFound
		}
		return nil, err
	}

	var resolved bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM bids WHERE product_id = $1 AND status = 'accepted' AND id <> $2)`,
		productID, bidID).Scan(&resolved)
	if err != nil {
		return nil, err
	}
	if resolved {
		return nil, fmt.Errorf("bid status is %s: %w", currentStatus, domain.ErrProductAlreadyResolved)
	}
	return nil, fmt.Errorf("bid status is %s: %w", currentStatus, domain.ErrAlreadyDecided)
}

// cascadeReject turns every other pending bid of the product into rejected,
// returning the losers so the caller can emit their notifications
func (r *BidRepository) cascadeReject(ctx context.Context, tx pgx.Tx, productID string, winnerID uuid.UUID) ([]*domain.Bid, error) {
	query := `
        UPDATE bids
        SET status = 'rejected'
        WHERE product_id = $1 AND id <> $2 AND status = 'pending'
        RETURNING ` + bidColumns + `
    `
	rows, err := tx.Query(ctx, query, productID, winnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBids(rows)
}

func scanBid(row pgx.Row) (*domain.Bid, error) {
	bid := &domain.Bid{}
	err := row.Scan(
		&bid.ID,
		&bid.ProductID,
		&bid.BidderID,
		&bid.BidderEmail,
		&bid.Amount,
		&bid.SubmittedAt,
		&bid.Status,
	)
	if err != nil {
		return nil, err
	}
	return bid, nil
}

func collectBids(rows pgx.Rows) ([]*domain.Bid, error) {
	var bids []*domain.Bid
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, bid)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bids, nil
}
