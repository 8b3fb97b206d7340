package model

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
)

// CREATE TABLE listings, see sql_migrations/001_init.sql
type Listing struct {
	ID      string         `gorm:"primaryKey; comment:Listing uuid"`
	OwnerID string         `gorm:"not null; index; comment:Seller"`
	Device  datatypes.JSON `gorm:"comment:Device attributes, opaque to the engine"`

	// Minor currency units
	AskingPrice int64 `gorm:"not null"`

	Status ListingStatus `gorm:"not null; index; type:text"`

	// Incremented on every update, used for compare-and-set
	Version int64 `gorm:"not null; default:1"`

	// Set exactly once, upon approval. Auction window starts here
	ApprovedAt sql.NullTime

	HighestBidAmount int64 `gorm:"not null; default:0"`
	BidCount         int64 `gorm:"not null; default:0"`
	LeadingBidID     sql.NullString

	WinningBidID    sql.NullString
	WinningVendorID sql.NullString
	AgentID         sql.NullString `gorm:"index"`

	PickupPincode string `gorm:"not null"`
	PickupCity    string `gorm:"not null"`

	DecidedBy       sql.NullString
	RejectionReason sql.NullString
	CancelReason    sql.NullString

	AcceptedAt  sql.NullTime
	AssignedAt  sql.NullTime
	CompletedAt sql.NullTime
	CancelledAt sql.NullTime

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Listing) TableName() string {
	return TableListing
}
