package store

import (
	"database/sql"
	"testing"

	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/dbtest"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/model"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUpdateListingClearsColumns(t *testing.T) {
	db := dbtest.Open(t)
	listing := dbtest.Listing(t, db, func(l *model.Listing) {
		l.Status = model.ListingStatusAgentAssigned
		l.AgentID = sql.NullString{String: "agent-1", Valid: true}
		l.LeadingBidID = sql.NullString{String: "bid-1", Valid: true}
	})

	err := db.Transaction(func(tx *gorm.DB) error {
		return UpdateListing(tx, listing, map[string]interface{}{
			"status":         model.ListingStatusCancelled,
			"agent_id":       sql.NullString{},
			"leading_bid_id": sql.NullString{},
		})
	})
	require.NoError(t, err)

	// Returned struct matches the row
	require.Equal(t, model.ListingStatusCancelled, listing.Status)
	require.False(t, listing.AgentID.Valid)
	require.False(t, listing.LeadingBidID.Valid)
	require.Equal(t, int64(2), listing.Version)

	stored := dbtest.Reload[model.Listing](t, db, listing.ID)
	require.False(t, stored.AgentID.Valid)
	require.Equal(t, listing.Version, stored.Version)
}

func TestUpdateListingStaleVersion(t *testing.T) {
	db := dbtest.Open(t)
	listing := dbtest.Listing(t, db)

	stale := *listing
	err := db.Transaction(func(tx *gorm.DB) error {
		return UpdateListing(tx, listing, map[string]interface{}{"bid_count": 1})
	})
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		return UpdateListing(tx, &stale, map[string]interface{}{"bid_count": 7})
	})
	require.ErrorIs(t, err, ErrConflict)
	require.Equal(t, int64(1), dbtest.Reload[model.Listing](t, db, listing.ID).BidCount)
}
