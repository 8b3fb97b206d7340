package dbtest

import (
	"database/sql"
	"testing"
	"time"

	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Inserts a listing open for bids since an hour ago, asking 50000 in pincode 682001
func Listing(t testing.TB, db *gorm.DB, opts ...func(*model.Listing)) *model.Listing {
	t.Helper()

	now := time.Now().UTC()
	listing := &model.Listing{
		ID:            uuid.NewString(),
		OwnerID:       "seller-1",
		Device:        datatypes.JSON(`{"model":"Pixel 7"}`),
		AskingPrice:   50000,
		Status:        model.ListingStatusReceivingBids,
		Version:       1,
		ApprovedAt:    sql.NullTime{Time: now.Add(-time.Hour), Valid: true},
		PickupPincode: "682001",
		PickupCity:    "Kochi",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, opt := range opts {
		opt(listing)
	}

	require.NoError(t, db.Create(listing).Error)
	return listing
}

func Agent(t testing.TB, db *gorm.DB, code string, openTasks int, pincodes ...string) *model.Agent {
	t.Helper()

	agent := &model.Agent{
		ID:                  uuid.NewString(),
		AgentCode:           code,
		Name:                "Agent " + code,
		ServiceablePincodes: model.Pincodes(pincodes),
		HomeCity:            "Kochi",
		OpenTaskCount:       openTasks,
	}
	require.NoError(t, db.Create(agent).Error)
	return agent
}

func Reload[T any](t testing.TB, db *gorm.DB, id string) *T {
	t.Helper()

	out := new(T)
	require.NoError(t, db.Where("id = ?", id).First(out).Error)
	return out
}
