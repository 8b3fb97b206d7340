package fulfillment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/config"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/dbtest"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/errs"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/model"
	monitor_market "github.com/dirtsid3r/sellikoweb-sub001/src/utils/monitoring/market"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/store"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type CoordinatorTestSuite struct {
	suite.Suite
	ctx         context.Context
	db          *gorm.DB
	monitor     *monitor_market.Monitor
	coordinator *Coordinator
	agent       *model.Agent
}

func TestCoordinatorTestSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorTestSuite))
}

func (s *CoordinatorTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = dbtest.Open(s.T())
	s.monitor = monitor_market.NewMonitor()
	s.coordinator = NewCoordinator(store.NewTransactor(s.db)).
		WithHashCost(bcrypt.MinCost).
		WithMonitor(s.monitor)
	s.agent = dbtest.Agent(s.T(), s.db, "AG-1", 1, "682001")
}

func (s *CoordinatorTestSuite) listing(status model.ListingStatus) *model.Listing {
	return dbtest.Listing(s.T(), s.db, func(l *model.Listing) {
		l.Status = status
		l.AgentID.String, l.AgentID.Valid = s.agent.ID, true
		l.WinningVendorID.String, l.WinningVendorID.Valid = "vendor-1", true
	})
}

func (s *CoordinatorTestSuite) TestCodeFormat() {
	for i := 0; i < 50; i++ {
		code, err := NewCode()
		s.Require().NoError(err)
		s.True(IsWellFormed(code), code)
	}
	s.False(IsWellFormed("123"))
	s.False(IsWellFormed("12345"))
	s.False(IsWellFormed("12a4"))
}

func (s *CoordinatorTestSuite) TestMilestonesForwardOnly() {
	listing := s.listing(model.ListingStatusAgentAssigned)

	_, err := s.coordinator.ReportMilestone(s.ctx, listing.ID, s.agent.ID, model.MilestoneReadyForPickup)
	s.ErrorIs(err, errs.PreconditionFailed(errs.GuardMilestoneOrder, ""))

	_, err = s.coordinator.ReportMilestone(s.ctx, listing.ID, "other-agent", model.MilestoneVerification)
	s.ErrorIs(err, errs.PreconditionFailed(errs.GuardAgent, ""))

	_, err = s.coordinator.ReportMilestone(s.ctx, listing.ID, s.agent.ID, "delivered")
	s.ErrorIs(err, errs.ErrInvalidArgument)

	out, err := s.coordinator.ReportMilestone(s.ctx, listing.ID, s.agent.ID, model.MilestoneVerification)
	s.Require().NoError(err)
	s.Equal(model.ListingStatusVerification, out.Status)

	_, err = s.coordinator.ReportMilestone(s.ctx, listing.ID, s.agent.ID, model.MilestoneVerification)
	s.ErrorIs(err, errs.PreconditionFailed(errs.GuardMilestoneOrder, ""))

	out, err = s.coordinator.ReportMilestone(s.ctx, listing.ID, s.agent.ID, model.MilestoneReadyForPickup)
	s.Require().NoError(err)
	s.Equal(model.ListingStatusReadyForPickup, out.Status)

	_, err = s.coordinator.ReportMilestone(s.ctx, listing.ID, s.agent.ID, model.MilestoneVerification)
	s.ErrorIs(err, errs.PreconditionFailed(errs.GuardMilestoneOrder, ""))
}

func (s *CoordinatorTestSuite) TestMilestoneWithoutAgent() {
	listing := dbtest.Listing(s.T(), s.db, func(l *model.Listing) { l.Status = model.ListingStatusBidAccepted })

	_, err := s.coordinator.ReportMilestone(s.ctx, listing.ID, s.agent.ID, model.MilestoneVerification)
	s.ErrorIs(err, errs.PreconditionFailed(errs.GuardStatus, ""))
}

func (s *CoordinatorTestSuite) TestIssueCode() {
	early := s.listing(model.ListingStatusVerification)
	_, err := s.coordinator.IssueCode(s.ctx, early.ID)
	s.ErrorIs(err, errs.PreconditionFailed(errs.GuardStatus, ""))

	listing := s.listing(model.ListingStatusReadyForPickup)
	first, err := s.coordinator.IssueCode(s.ctx, listing.ID)
	s.Require().NoError(err)
	s.True(IsWellFormed(first.Code))

	stored := new(model.DeliveryCode)
	s.Require().NoError(s.db.Where("listing_id = ?", listing.ID).First(stored).Error)
	s.NotEqual(first.Code, stored.CodeHash)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(stored.CodeHash), []byte(first.Code)))

	// Re-issuing replaces the code
	second, err := s.coordinator.IssueCode(s.ctx, listing.ID)
	s.Require().NoError(err)
	var count int64
	s.Require().NoError(s.db.Model(&model.DeliveryCode{}).Where("listing_id = ?", listing.ID).Count(&count).Error)
	s.Equal(int64(1), count)

	_, err = s.coordinator.ConfirmDelivery(s.ctx, listing.ID, second.Code)
	s.Require().NoError(err)
}

func (s *CoordinatorTestSuite) TestCodeIsSingleUse() {
	listing := s.listing(model.ListingStatusReadyForPickup)

	_, err := s.coordinator.ConfirmDelivery(s.ctx, listing.ID, "1234")
	s.ErrorIs(err, errs.PreconditionFailed(errs.GuardCodeNotIssued, ""))

	issued, err := s.coordinator.IssueCode(s.ctx, listing.ID)
	s.Require().NoError(err)

	wrong := "0000"
	if issued.Code == wrong {
		wrong = "9999"
	}
	_, err = s.coordinator.ConfirmDelivery(s.ctx, listing.ID, wrong)
	s.ErrorIs(err, errs.ErrInvalidCode)
	_, err = s.coordinator.ConfirmDelivery(s.ctx, listing.ID, "12")
	s.ErrorIs(err, errs.ErrInvalidCode)

	// Wrong attempts change nothing
	reloaded := dbtest.Reload[model.Listing](s.T(), s.db, listing.ID)
	s.Equal(model.ListingStatusReadyForPickup, reloaded.Status)
	s.Equal(listing.Version, reloaded.Version)
	s.Equal(uint64(2), s.monitor.Report.Market.Errors.InvalidCode.Load())

	out, err := s.coordinator.ConfirmDelivery(s.ctx, listing.ID, issued.Code)
	s.Require().NoError(err)
	s.Equal(model.ListingStatusCompleted, out.Status)
	s.True(out.CompletedAt.Valid)
	s.Equal(0, dbtest.Reload[model.Agent](s.T(), s.db, s.agent.ID).OpenTaskCount)

	for _, code := range []string{issued.Code, wrong, "abc"} {
		_, err = s.coordinator.ConfirmDelivery(s.ctx, listing.ID, code)
		s.ErrorIs(err, errs.ErrCodeAlreadyConsumed)
	}
	s.Equal(0, dbtest.Reload[model.Agent](s.T(), s.db, s.agent.ID).OpenTaskCount)
}

func (s *CoordinatorTestSuite) TestConcurrentConfirmations() {
	listing := s.listing(model.ListingStatusReadyForPickup)
	issued, err := s.coordinator.IssueCode(s.ctx, listing.ID)
	s.Require().NoError(err)

	const attempts = 8
	var (
		wg     sync.WaitGroup
		mtx    sync.Mutex
		okays  int
		replay int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.coordinator.ConfirmDelivery(s.ctx, listing.ID, issued.Code)
			mtx.Lock()
			defer mtx.Unlock()
			if err == nil {
				okays++
			} else if s.ErrorIs(err, errs.ErrCodeAlreadyConsumed) {
				replay++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, okays)
	s.Equal(attempts-1, replay)
	s.Equal(0, dbtest.Reload[model.Agent](s.T(), s.db, s.agent.ID).OpenTaskCount)
}

func (s *CoordinatorTestSuite) TestDispatch() {
	received := make(chan CodeMessage, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Equal("Bearer secret", r.Header.Get("Authorization"))
		var msg CodeMessage
		s.NoError(json.NewDecoder(r.Body).Decode(&msg))
		received <- msg
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Dispatcher.Url = server.URL
	cfg.Dispatcher.Token = "secret"
	dispatcher := NewDispatcher(cfg).WithMonitor(s.monitor)
	s.Require().NoError(dispatcher.Start())
	defer dispatcher.StopWait()

	s.coordinator.WithDispatcher(dispatcher)

	listing := s.listing(model.ListingStatusReadyForPickup)
	issued, err := s.coordinator.IssueCode(s.ctx, listing.ID)
	s.Require().NoError(err)

	select {
	case msg := <-received:
		s.Equal(issued.Code, msg.Code)
		s.Equal(listing.ID, msg.ListingID)
		s.Equal("vendor-1", msg.BuyerID)
	case <-time.After(5 * time.Second):
		s.FailNow("code wasn't dispatched")
	}
}
