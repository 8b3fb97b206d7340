package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dirtsid3r/sellikoweb-sub001/src/admin"
	"github.com/dirtsid3r/sellikoweb-sub001/src/agent"
	"github.com/dirtsid3r/sellikoweb-sub001/src/api/response"
	"github.com/dirtsid3r/sellikoweb-sub001/src/bid"
	"github.com/dirtsid3r/sellikoweb-sub001/src/fulfillment"
	"github.com/dirtsid3r/sellikoweb-sub001/src/listing"
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

type ServerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	monitor *monitor_market.Monitor
	server  *Server
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) SetupTest() {
	s.db = dbtest.Open(s.T())
	s.monitor = monitor_market.NewMonitor()

	cfg := config.Default()
	cfg.Api.ConfirmBurst = 3
	cfg.Api.ConfirmInterval = time.Hour

	tx := store.NewTransactor(s.db)
	s.server = NewServer(cfg).
		WithMonitor(s.monitor).
		WithListings(listing.NewService(tx).WithMonitor(s.monitor)).
		WithGate(admin.NewGate(tx).WithMonitor(s.monitor)).
		WithLedger(bid.NewLedger(tx).WithMonitor(s.monitor)).
		WithMatcher(agent.NewMatcher(tx).WithMonitor(s.monitor)).
		WithCoordinator(fulfillment.NewCoordinator(tx).WithHashCost(bcrypt.MinCost).WithMonitor(s.monitor))
}

func (s *ServerTestSuite) do(method, path string, body interface{}, out interface{}) int {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.server.Router.ServeHTTP(rec, req)

	if out != nil && rec.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func (s *ServerTestSuite) TestHappyPath() {
	agentRow := dbtest.Agent(s.T(), s.db, "AG-7", 0, "682001")

	var created response.Listing
	s.Equal(http.StatusCreated, s.do(http.MethodPost, "/v1/listings", map[string]interface{}{
		"owner_id":       "seller-1",
		"device":         map[string]interface{}{"model": "iPhone 13", "storage_gb": 128},
		"asking_price":   50000,
		"pickup_pincode": "682001",
		"pickup_city":    "Kochi",
	}, &created))
	s.Equal(model.ListingStatusPendingApproval, created.Status)
	id := created.ID

	var decided response.Listing
	s.Equal(http.StatusOK, s.do(http.MethodPost, "/v1/listings/"+id+"/decision", map[string]interface{}{
		"admin_id": "admin-1",
		"approved": true,
	}, &decided))
	s.Equal(model.ListingStatusReceivingBids, decided.Status)

	var details response.Listing
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/v1/listings/"+id, nil, &details))
	s.Require().NotNil(details.Auction)
	s.True(details.Auction.IsOpen)

	var first response.BidResult
	s.Equal(http.StatusCreated, s.do(http.MethodPost, "/v1/listings/"+id+"/bids", map[string]interface{}{
		"vendor_id": "vendor-1",
		"amount":    50100,
	}, &first))
	s.True(first.Accepted)
	s.True(first.IsLeader)

	var refused response.ErrorBody
	s.Equal(http.StatusUnprocessableEntity, s.do(http.MethodPost, "/v1/listings/"+id+"/bids", map[string]interface{}{
		"vendor_id": "vendor-2",
		"amount":    50100,
	}, &refused))
	s.Equal(string(errs.KindBidTooLow), refused.Error.Kind)

	var bids response.Bids
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/v1/listings/"+id+"/bids", nil, &bids))
	s.Len(bids.Bids, 1)

	var accepted response.Listing
	s.Equal(http.StatusOK, s.do(http.MethodPost, "/v1/listings/"+id+"/bids/"+first.Bid.ID+"/accept", map[string]interface{}{
		"owner_id": "seller-1",
	}, &accepted))
	s.Equal(model.ListingStatusBidAccepted, accepted.Status)

	var eligible response.EligibleAgents
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/v1/listings/"+id+"/eligible-agents", nil, &eligible))
	s.Require().Len(eligible.Agents, 1)
	s.Equal("AG-7", eligible.Agents[0].AgentCode)

	var assigned response.Assignment
	s.Equal(http.StatusOK, s.do(http.MethodPost, "/v1/listings/"+id+"/assignment", map[string]interface{}{
		"agent_id":    agentRow.ID,
		"assigned_by": "admin-1",
	}, &assigned))
	s.True(assigned.Assigned)

	var conflict response.ErrorBody
	s.Equal(http.StatusConflict, s.do(http.MethodPost, "/v1/listings/"+id+"/assignment/auto", nil, &conflict))

	for _, milestone := range []string{"verification", "ready_for_pickup"} {
		s.Equal(http.StatusOK, s.do(http.MethodPost, "/v1/listings/"+id+"/milestones", map[string]interface{}{
			"agent_id":  agentRow.ID,
			"milestone": milestone,
		}, nil), milestone)
	}

	var issued fulfillment.IssuedCode
	s.Equal(http.StatusCreated, s.do(http.MethodPost, "/v1/listings/"+id+"/delivery-code", nil, &issued))
	s.Len(issued.Code, 4)

	wrong := "0000"
	if issued.Code == wrong {
		wrong = "1111"
	}
	var invalid response.ErrorBody
	s.Equal(http.StatusUnprocessableEntity, s.do(http.MethodPost, "/v1/listings/"+id+"/delivery", map[string]interface{}{"code": wrong}, &invalid))
	s.Equal(string(errs.KindInvalidCode), invalid.Error.Kind)

	var delivered response.Delivery
	s.Equal(http.StatusOK, s.do(http.MethodPost, "/v1/listings/"+id+"/delivery", map[string]interface{}{"code": issued.Code}, &delivered))
	s.True(delivered.Completed)
	s.Equal(model.ListingStatusCompleted, delivered.Listing.Status)

	s.Equal(http.StatusGone, s.do(http.MethodPost, "/v1/listings/"+id+"/delivery", map[string]interface{}{"code": issued.Code}, nil))

	var listings response.Listings
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/v1/listings?status=completed", nil, &listings))
	s.Len(listings.Listings, 1)
}

func (s *ServerTestSuite) TestErrors() {
	var body response.ErrorBody
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/v1/listings/missing", nil, &body))
	s.Equal(string(errs.KindNotFound), body.Error.Kind)

	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/v1/listings", map[string]interface{}{"owner_id": "seller-1"}, &body))
	s.Equal(string(errs.KindInvalidArgument), body.Error.Kind)

	listingRow := dbtest.Listing(s.T(), s.db)
	s.Equal(http.StatusConflict, s.do(http.MethodPost, "/v1/listings/"+listingRow.ID+"/bids/whatever/accept", map[string]interface{}{
		"owner_id": "someone-else",
	}, &body))
	s.Equal(string(errs.KindPreconditionFailed), body.Error.Kind)
	s.Equal(errs.GuardOwner, body.Error.Guard)
}

func (s *ServerTestSuite) TestDeliveryIsThrottled() {
	listingRow := dbtest.Listing(s.T(), s.db)
	path := "/v1/listings/" + listingRow.ID + "/delivery"

	for i := 0; i < 3; i++ {
		s.Equal(http.StatusConflict, s.do(http.MethodPost, path, map[string]interface{}{"code": "1234"}, nil))
	}
	s.Equal(http.StatusTooManyRequests, s.do(http.MethodPost, path, map[string]interface{}{"code": "1234"}, nil))
	s.Equal(uint64(1), s.monitor.Report.Market.Errors.ConfirmThrottled.Load())

	// Other listings aren't affected
	other := dbtest.Listing(s.T(), s.db)
	s.Equal(http.StatusConflict, s.do(http.MethodPost, "/v1/listings/"+other.ID+"/delivery", map[string]interface{}{"code": "1234"}, nil))
}
