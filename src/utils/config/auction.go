package config

import (
	"time"

	"github.com/spf13/viper"
)

type Auction struct {
	// How long an approved listing accepts bids, counted from the approval
	Window time.Duration

	// Regular bids need to beat max(highest bid, asking price) by at least this much (minor units)
	MinBidIncrement int64
}

func setAuctionDefaults() {
	viper.SetDefault("Auction.Window", "24h")
	viper.SetDefault("Auction.MinBidIncrement", "100")
}
