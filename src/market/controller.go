package market

import (
	"github.com/dirtsid3r/sellikoweb-sub001/src/api"
	"github.com/dirtsid3r/sellikoweb-sub001/src/events"
	"github.com/dirtsid3r/sellikoweb-sub001/src/fulfillment"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/config"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/model"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/monitoring"
	monitor_market "github.com/dirtsid3r/sellikoweb-sub001/src/utils/monitoring/market"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/task"
)

type Controller struct {
	*task.Task
}

// Main class that orchestrates the marketplace
// Serves the API, relays outbox events and dispatches delivery codes
func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)

	self.Task = task.NewTask(config, "controller")

	db, err := model.NewConnection(self.Ctx, config, "market")
	if err != nil {
		return
	}

	monitor := monitor_market.NewMonitor()

	monitoringServer := monitoring.NewServer(config).
		WithMonitor(monitor)

	services := NewServices(config, db, monitor)

	if config.Dispatcher.Url != "" {
		dispatcher := fulfillment.NewDispatcher(config).
			WithMonitor(monitor)
		services.Coordinator.WithDispatcher(dispatcher)
		self.Task = self.Task.WithSubtask(dispatcher.Task)
	} else {
		self.Log.Info("Delivery code dispatcher disabled")
	}

	if config.Publisher.Enabled {
		relay := events.NewRelay(config).
			WithDB(db).
			WithMonitor(monitor)
		self.Task = self.Task.WithSubtask(relay.Task)
	}

	server := api.NewServer(config).
		WithMonitor(monitor).
		WithListings(services.Listings).
		WithGate(services.Gate).
		WithLedger(services.Ledger).
		WithMatcher(services.Matcher).
		WithCoordinator(services.Coordinator)

	self.Task = self.Task.
		WithSubtask(monitor.Task).
		WithSubtask(monitoringServer.Task).
		WithSubtask(server.Task)

	return
}

// Runs only the outbox relay
func NewPublisherController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)

	self.Task = task.NewTask(config, "publisher-controller")

	db, err := model.NewConnection(self.Ctx, config, "publisher")
	if err != nil {
		return
	}

	monitor := monitor_market.NewMonitor()

	monitoringServer := monitoring.NewServer(config).
		WithMonitor(monitor)

	relay := events.NewRelay(config).
		WithDB(db).
		WithMonitor(monitor)

	self.Task = self.Task.
		WithSubtask(monitor.Task).
		WithSubtask(monitoringServer.Task).
		WithSubtask(relay.Task)

	return
}
