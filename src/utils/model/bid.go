package model

import "time"

// Bids are append only, only the status changes
type Bid struct {
	ID           string    `gorm:"primaryKey"`
	ListingID    string    `gorm:"not null; index:idx_bids_listing_status"`
	VendorID     string    `gorm:"not null; index"`
	Amount       int64     `gorm:"not null"`
	IsInstantWin bool      `gorm:"not null; default:false"`
	Status       BidStatus `gorm:"not null; type:text; index:idx_bids_listing_status"`
	PlacedAt     time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

func (Bid) TableName() string {
	return TableBid
}
