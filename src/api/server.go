package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/dirtsid3r/sellikoweb-sub001/src/admin"
	"github.com/dirtsid3r/sellikoweb-sub001/src/agent"
	"github.com/dirtsid3r/sellikoweb-sub001/src/bid"
	"github.com/dirtsid3r/sellikoweb-sub001/src/fulfillment"
	"github.com/dirtsid3r/sellikoweb-sub001/src/listing"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/config"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/logger"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/monitoring"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/task"

	"github.com/gin-gonic/gin"
)

// Public REST API of the marketplace
type Server struct {
	*task.Task

	httpServer *http.Server
	Router     *gin.Engine

	monitor     monitoring.Monitor
	listings    *listing.Service
	gate        *admin.Gate
	ledger      *bid.Ledger
	matcher     *agent.Matcher
	coordinator *fulfillment.Coordinator
	limiter     *confirmLimiter
}

func NewServer(config *config.Config) (self *Server) {
	self = new(Server)
	self.monitor = monitoring.NewNoop()

	self.Task = task.NewTask(config, "api").
		WithSubtaskFunc(self.run).
		WithOnStop(self.stop)

	if !config.IsDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}

	self.limiter = newConfirmLimiter(config.Api.ConfirmBurst, config.Api.ConfirmInterval, config.Api.ConfirmLimiterTTL)

	self.Router = gin.New()
	self.Router.Use(gin.Recovery(), logger.RequestLogger("api"), self.withTimeout())
	self.routes()

	self.httpServer = &http.Server{
		Addr:    config.Api.ListenAddress,
		Handler: self.Router,
	}

	return
}

func (self *Server) WithMonitor(monitor monitoring.Monitor) *Server {
	self.monitor = monitor
	return self
}

func (self *Server) WithListings(v *listing.Service) *Server {
	self.listings = v
	return self
}

func (self *Server) WithGate(v *admin.Gate) *Server {
	self.gate = v
	return self
}

func (self *Server) WithLedger(v *bid.Ledger) *Server {
	self.ledger = v
	return self
}

func (self *Server) WithMatcher(v *agent.Matcher) *Server {
	self.matcher = v
	return self
}

func (self *Server) WithCoordinator(v *fulfillment.Coordinator) *Server {
	self.coordinator = v
	return self
}

func (self *Server) routes() {
	v1 := self.Router.Group("v1")
	{
		v1.POST("listings", self.onSubmitListing)
		v1.GET("listings", self.onListListings)
		v1.GET("listings/:id", self.onGetListing)
		v1.POST("listings/:id/decision", self.onDecision)
		v1.POST("listings/:id/cancel", self.onCancel)

		v1.POST("listings/:id/bids", self.onPlaceBid)
		v1.GET("listings/:id/bids", self.onListBids)
		v1.POST("listings/:id/bids/:bid_id/accept", self.onAcceptBid)

		v1.GET("listings/:id/eligible-agents", self.onEligibleAgents)
		v1.POST("listings/:id/assignment", self.onAssign)
		v1.POST("listings/:id/assignment/auto", self.onAutoAssign)

		v1.POST("listings/:id/milestones", self.onMilestone)
		v1.POST("listings/:id/delivery-code", self.onIssueCode)
		v1.POST("listings/:id/delivery", self.onConfirmDelivery)
	}
}

func (self *Server) run() (err error) {
	self.Log.WithField("address", self.httpServer.Addr).Info("Starting API server")
	err = self.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		self.Log.WithError(err).Error("Failed to start API server")
		return
	}
	return nil
}

func (self *Server) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), self.Config.StopTimeout)
	defer cancel()

	err := self.httpServer.Shutdown(ctx)
	if err != nil {
		self.Log.WithError(err).Error("Failed to gracefully shutdown API server")
	}
}
