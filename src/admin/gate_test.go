package admin

import (
	"context"
	"testing"
	"time"

	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/dbtest"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/errs"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/model"
	monitor_market "github.com/dirtsid3r/sellikoweb-sub001/src/utils/monitoring/market"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/store"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type GateTestSuite struct {
	suite.Suite
	ctx  context.Context
	db   *gorm.DB
	now  time.Time
	gate *Gate
}

func TestGateTestSuite(t *testing.T) {
	suite.Run(t, new(GateTestSuite))
}

func (s *GateTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = dbtest.Open(s.T())
	s.now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.gate = NewGate(store.NewTransactor(s.db)).
		WithMonitor(monitor_market.NewMonitor()).
		WithNow(func() time.Time { return s.now })
}

func (s *GateTestSuite) pending() *model.Listing {
	return dbtest.Listing(s.T(), s.db, func(l *model.Listing) {
		l.Status = model.ListingStatusPendingApproval
		l.ApprovedAt.Valid = false
	})
}

func (s *GateTestSuite) TestApprove() {
	listing := s.pending()

	out, err := s.gate.Approve(s.ctx, listing.ID, "admin-1")
	s.Require().NoError(err)
	s.Equal(model.ListingStatusReceivingBids, out.Status)
	s.True(out.ApprovedAt.Valid)
	s.True(out.ApprovedAt.Time.Equal(s.now))
	s.Equal("admin-1", out.DecidedBy.String)

	// Second decision of any kind
	_, err = s.gate.Approve(s.ctx, listing.ID, "admin-1")
	s.ErrorIs(err, errs.ErrAlreadyDecided)
	_, err = s.gate.Reject(s.ctx, listing.ID, "admin-2", "blurry photos")
	s.ErrorIs(err, errs.ErrAlreadyDecided)

	reloaded := dbtest.Reload[model.Listing](s.T(), s.db, listing.ID)
	s.True(reloaded.ApprovedAt.Time.Equal(s.now))
	s.Equal(out.Version, reloaded.Version)
}

func (s *GateTestSuite) TestReject() {
	listing := s.pending()

	_, err := s.gate.Reject(s.ctx, listing.ID, "admin-1", "   ")
	s.ErrorIs(err, errs.PreconditionFailed(errs.GuardRejectReason, ""))

	out, err := s.gate.Decide(s.ctx, listing.ID, "admin-1", false, "IMEI blacklisted")
	s.Require().NoError(err)
	s.Equal(model.ListingStatusRejected, out.Status)
	s.Equal("IMEI blacklisted", out.RejectionReason.String)
	s.False(out.ApprovedAt.Valid)

	_, err = s.gate.Decide(s.ctx, listing.ID, "admin-1", true, "")
	s.ErrorIs(err, errs.ErrAlreadyDecided)
}

func (s *GateTestSuite) TestWrongStatus() {
	listing := dbtest.Listing(s.T(), s.db, func(l *model.Listing) {
		l.Status = model.ListingStatusCancelled
		l.ApprovedAt.Valid = false
	})

	_, err := s.gate.Approve(s.ctx, listing.ID, "admin-1")
	s.ErrorIs(err, errs.PreconditionFailed(errs.GuardStatus, ""))

	_, err = s.gate.Approve(s.ctx, "missing", "admin-1")
	s.ErrorIs(err, errs.ErrNotFound)
}
