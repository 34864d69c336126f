package domain

// Product is the slice of the ad listing the engine needs, the listing itself
// (images, description, CRUD) is owned by the external listing collaborator.
// BidderCount is a derived cache, the bids table is the source of truth for it.
type Product struct {
	ID              string
	SellerID        string
	Name            string
	MinimumBidPrice float64
	BidderCount     int
}
