package bid

import "github.com/dirtsid3r/sellikoweb-sub001/src/utils/model"

// Smallest regular bid the listing accepts
func MinimumBid(listing *model.Listing, increment int64) int64 {
	base := listing.HighestBidAmount
	if listing.AskingPrice > base {
		base = listing.AskingPrice
	}
	return base + increment
}

// Instant-win bids need to meet the asking price and beat the current leader
func QualifiesForInstantWin(listing *model.Listing, amount int64) bool {
	return amount >= listing.AskingPrice && amount > listing.HighestBidAmount
}
