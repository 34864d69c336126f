package domain

import "sort"

// RankBids orders bids by amount descending, ties broken by earliest
// SubmittedAt (first come priority) and finally by ID so the order is total.
// The ranking is recomputed from the bid set on every call, nothing about it
// is persisted, so it can never drift from the store.
func RankBids(bids []*Bid) []*Bid {
	ranked := make([]*Bid, len(bids))
	copy(ranked, bids)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Amount != ranked[j].Amount {
			return ranked[i].Amount > ranked[j].Amount
		}
		if !ranked[i].SubmittedAt.Equal(ranked[j].SubmittedAt) {
			return ranked[i].SubmittedAt.Before(ranked[j].SubmittedAt)
		}
		return ranked[i].ID.String() < ranked[j].ID.String()
	})
	return ranked
}

// Leading returns the top ranked bid that is still pending, or nil if there is
// none. Leading is informational only, the seller may accept any pending bid
// regardless of rank.
func Leading(bids []*Bid) *Bid {
	for _, b := range RankBids(bids) {
		if !b.Decided() {
			return b
		}
	}
	return nil
}
