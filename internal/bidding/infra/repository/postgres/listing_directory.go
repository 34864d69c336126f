package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lunani254/present/internal/bidding/domain"
)

// ListingDirectory implements domain.ListingDirectory against the ads table
// owned by the listing service. The engine only ever reads the product row
// and writes the derived number_of_bidders back, listing CRUD lives elsewhere.
type ListingDirectory struct {
	pool *pgxpool.Pool
}

// NewListingDirectory creates a new instance of ListingDirectory
func NewListingDirectory(pool *pgxpool.Pool) *ListingDirectory {
	return &ListingDirectory{pool: pool}
}

func (d *ListingDirectory) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	query := `
        SELECT id, seller_id, product_name, minimum_bid_price, number_of_bidders
        FROM ads
        WHERE id = $1
    `
	product := &domain.Product{}
	err := d.pool.QueryRow(ctx, query, productID).Scan(
		&product.ID,
		&product.SellerID,
		&product.Name,
		&product.MinimumBidPrice,
		&product.BidderCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrCollaboratorUnavailable, err)
	}

	return product, nil
}

func (d *ListingDirectory) SetBidderCount(ctx context.Context, productID string, count int) error {
	tag, err := d.pool.Exec(ctx,
		`UPDATE ads SET number_of_bidders = $2, updated_at = NOW() WHERE id = $1`,
		productID, count)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCollaboratorUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
