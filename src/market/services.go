package market

import (
	"github.com/dirtsid3r/sellikoweb-sub001/src/admin"
	"github.com/dirtsid3r/sellikoweb-sub001/src/agent"
	"github.com/dirtsid3r/sellikoweb-sub001/src/auction"
	"github.com/dirtsid3r/sellikoweb-sub001/src/bid"
	"github.com/dirtsid3r/sellikoweb-sub001/src/fulfillment"
	"github.com/dirtsid3r/sellikoweb-sub001/src/listing"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/config"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/monitoring"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/store"

	"gorm.io/gorm"
)

// Every component of the listing lifecycle, sharing one transactor and one clock
type Services struct {
	Tx          *store.Transactor
	Clock       *auction.Clock
	Listings    *listing.Service
	Gate        *admin.Gate
	Ledger      *bid.Ledger
	Directory   *agent.Directory
	Matcher     *agent.Matcher
	Coordinator *fulfillment.Coordinator
}

func NewServices(config *config.Config, db *gorm.DB, monitor monitoring.Monitor) (self *Services) {
	self = new(Services)

	self.Tx = store.NewTransactor(db).
		WithConfig(&config.Database).
		WithOnConflict(func(err error) {
			monitor.GetReport().Market.Errors.TxConflict.Inc()
		})

	self.Clock = auction.NewClock(config.Auction.Window)

	self.Listings = listing.NewService(self.Tx).
		WithClock(self.Clock).
		WithMonitor(monitor)

	self.Gate = admin.NewGate(self.Tx).
		WithMonitor(monitor)

	self.Ledger = bid.NewLedger(self.Tx).
		WithClock(self.Clock).
		WithMinIncrement(config.Auction.MinBidIncrement).
		WithMonitor(monitor)

	self.Directory = agent.NewDirectory(self.Tx)

	self.Matcher = agent.NewMatcher(self.Tx).
		WithCapacity(config.Assignment.AgentCapacity).
		WithMonitor(monitor)

	self.Coordinator = fulfillment.NewCoordinator(self.Tx).
		WithHashCost(config.Delivery.CodeHashCost).
		WithMonitor(monitor)

	return
}
