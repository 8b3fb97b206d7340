package listing

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/dirtsid3r/sellikoweb-sub001/src/events"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/dbtest"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/errs"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/model"
	monitor_market "github.com/dirtsid3r/sellikoweb-sub001/src/utils/monitoring/market"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/store"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type ListingTestSuite struct {
	suite.Suite
	ctx     context.Context
	db      *gorm.DB
	monitor *monitor_market.Monitor
	service *Service
}

func TestListingTestSuite(t *testing.T) {
	suite.Run(t, new(ListingTestSuite))
}

func (s *ListingTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = dbtest.Open(s.T())
	s.monitor = monitor_market.NewMonitor()
	s.service = NewService(store.NewTransactor(s.db)).WithMonitor(s.monitor)
}

func (s *ListingTestSuite) TestCanTransition() {
	s.True(CanTransition(model.ListingStatusPendingApproval, model.ListingStatusReceivingBids))
	s.True(CanTransition(model.ListingStatusPendingApproval, model.ListingStatusRejected))
	s.True(CanTransition(model.ListingStatusReadyForPickup, model.ListingStatusCompleted))
	s.True(CanTransition(model.ListingStatusVerification, model.ListingStatusCancelled))

	s.False(CanTransition(model.ListingStatusPendingApproval, model.ListingStatusBidAccepted))
	s.False(CanTransition(model.ListingStatusReadyForPickup, model.ListingStatusVerification))
	s.False(CanTransition(model.ListingStatusCompleted, model.ListingStatusCancelled))
	s.False(CanTransition(model.ListingStatusRejected, model.ListingStatusReceivingBids))
}

func (s *ListingTestSuite) TestSubmit() {
	out, err := s.service.Submit(s.ctx, Submission{
		OwnerID:       "seller-1",
		Device:        json.RawMessage(`{"brand":"Apple","model":"iPhone 13"}`),
		AskingPrice:   50000,
		PickupPincode: "682001",
		PickupCity:    " Kochi ",
	})
	s.Require().NoError(err)
	s.Equal(model.ListingStatusPendingApproval, out.Status)
	s.Equal(int64(1), out.Version)
	s.Equal("Kochi", out.PickupCity)
	s.False(out.ApprovedAt.Valid)

	details, err := s.service.Get(s.ctx, out.ID)
	s.Require().NoError(err)
	s.Equal(out.ID, details.Listing.ID)
	s.False(details.Auction.IsOpen)
	s.Nil(details.Auction.ClosesAt)

	recorded, err := events.ForListing(s.db, out.ID)
	s.Require().NoError(err)
	s.Require().Len(recorded, 1)
	s.Equal(model.EventListingSubmitted, recorded[0].Type)
	s.Equal(uint64(1), s.monitor.Report.Market.State.ListingsSubmitted.Load())
}

func (s *ListingTestSuite) TestSubmitValidation() {
	valid := Submission{OwnerID: "seller-1", AskingPrice: 100, PickupPincode: "682001", PickupCity: "Kochi"}

	cases := map[string]func(*Submission){
		"no owner":       func(in *Submission) { in.OwnerID = "" },
		"zero price":     func(in *Submission) { in.AskingPrice = 0 },
		"short pincode":  func(in *Submission) { in.PickupPincode = "6820" },
		"letters":        func(in *Submission) { in.PickupPincode = "68200a" },
		"no city":        func(in *Submission) { in.PickupCity = "  " },
		"device array":   func(in *Submission) { in.Device = json.RawMessage(`[1,2]`) },
		"device garbage": func(in *Submission) { in.Device = json.RawMessage(`{`) },
	}
	for name, mutate := range cases {
		in := valid
		mutate(&in)
		_, err := s.service.Submit(s.ctx, in)
		s.ErrorIs(err, errs.ErrInvalidArgument, name)
	}

	var count int64
	s.Require().NoError(s.db.Model(&model.Listing{}).Count(&count).Error)
	s.Equal(int64(0), count)
}

func (s *ListingTestSuite) TestGetNotFound() {
	_, err := s.service.Get(s.ctx, "missing")
	s.ErrorIs(err, errs.ErrNotFound)
}

func (s *ListingTestSuite) TestList() {
	dbtest.Listing(s.T(), s.db)
	dbtest.Listing(s.T(), s.db, func(l *model.Listing) { l.OwnerID = "seller-2" })
	dbtest.Listing(s.T(), s.db, func(l *model.Listing) {
		l.Status = model.ListingStatusPendingApproval
		l.ApprovedAt.Valid = false
	})

	all, err := s.service.List(s.ctx, Filter{})
	s.Require().NoError(err)
	s.Len(all, 3)

	open, err := s.service.List(s.ctx, Filter{Status: model.ListingStatusReceivingBids})
	s.Require().NoError(err)
	s.Len(open, 2)
	for _, d := range open {
		s.True(d.Auction.IsOpen)
	}

	owned, err := s.service.List(s.ctx, Filter{OwnerID: "seller-2"})
	s.Require().NoError(err)
	s.Len(owned, 1)

	page, err := s.service.List(s.ctx, Filter{Limit: 2, Offset: 2})
	s.Require().NoError(err)
	s.Len(page, 1)

	_, err = s.service.List(s.ctx, Filter{Status: "sold"})
	s.ErrorIs(err, errs.ErrInvalidArgument)
}

func (s *ListingTestSuite) TestCancelByOwner() {
	listing := dbtest.Listing(s.T(), s.db)
	bid := &model.Bid{ID: "bid-1", ListingID: listing.ID, VendorID: "vendor-1", Amount: 50100, Status: model.BidStatusActive, PlacedAt: listing.CreatedAt}
	s.Require().NoError(s.db.Create(bid).Error)

	_, err := s.service.Cancel(s.ctx, listing.ID, "someone-else", false, "")
	s.ErrorIs(err, errs.PreconditionFailed(errs.GuardOwner, ""))

	out, err := s.service.Cancel(s.ctx, listing.ID, listing.OwnerID, false, "sold elsewhere")
	s.Require().NoError(err)
	s.Equal(model.ListingStatusCancelled, out.Status)
	s.Equal("sold elsewhere", out.CancelReason.String)
	s.True(out.CancelledAt.Valid)
	s.Equal(listing.Version+1, out.Version)

	reloaded := dbtest.Reload[model.Bid](s.T(), s.db, bid.ID)
	s.Equal(model.BidStatusRejected, reloaded.Status)

	_, err = s.service.Cancel(s.ctx, listing.ID, listing.OwnerID, false, "")
	s.ErrorIs(err, errs.PreconditionFailed(errs.GuardTerminal, ""))
}

func (s *ListingTestSuite) TestCancelReleasesAgent() {
	agent := dbtest.Agent(s.T(), s.db, "AG-1", 2, "682001")
	listing := dbtest.Listing(s.T(), s.db, func(l *model.Listing) {
		l.Status = model.ListingStatusReadyForPickup
		l.AgentID.String, l.AgentID.Valid = agent.ID, true
	})
	s.Require().NoError(s.db.Create(&model.DeliveryCode{ListingID: listing.ID, CodeHash: "x", IssuedAt: listing.CreatedAt}).Error)

	out, err := s.service.Cancel(s.ctx, listing.ID, "admin-1", true, "")
	s.Require().NoError(err)
	s.False(out.AgentID.Valid)
	s.False(out.CancelReason.Valid)

	s.Equal(1, dbtest.Reload[model.Agent](s.T(), s.db, agent.ID).OpenTaskCount)

	var codes int64
	s.Require().NoError(s.db.Model(&model.DeliveryCode{}).Count(&codes).Error)
	s.Equal(int64(0), codes)
}

func (s *ListingTestSuite) TestTransitionGuards() {
	listing := dbtest.Listing(s.T(), s.db, func(l *model.Listing) { l.Status = model.ListingStatusCompleted })

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return Transition(tx, listing, model.ListingStatusCancelled, nil)
	})
	s.ErrorIs(err, errs.PreconditionFailed(errs.GuardTerminal, ""))

	listing = dbtest.Listing(s.T(), s.db)
	stale := *listing
	s.Require().NoError(s.db.Transaction(func(tx *gorm.DB) error {
		return Transition(tx, listing, model.ListingStatusBidAccepted, nil)
	}))

	// A writer that read the listing before the transition loses
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return Transition(tx, &stale, model.ListingStatusCancelled, nil)
	})
	s.ErrorIs(err, store.ErrConflict)
}
