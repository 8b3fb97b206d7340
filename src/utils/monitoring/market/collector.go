package monitor_market

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	// Run
	UpForSeconds *prometheus.Desc

	// Market
	ListingsSubmitted    *prometheus.Desc
	ListingsApproved     *prometheus.Desc
	ListingsRejected     *prometheus.Desc
	ListingsCancelled    *prometheus.Desc
	BidsPlaced           *prometheus.Desc
	BidsRefused          *prometheus.Desc
	BidsAccepted         *prometheus.Desc
	InstantWins          *prometheus.Desc
	AgentsAssigned       *prometheus.Desc
	MilestonesReported   *prometheus.Desc
	CodesIssued          *prometheus.Desc
	CodesDispatched      *prometheus.Desc
	DeliveriesCompleted  *prometheus.Desc
	AverageBidsPerMinute *prometheus.Desc

	DbError          *prometheus.Desc
	TxConflict       *prometheus.Desc
	InvalidCode      *prometheus.Desc
	DispatchFailure  *prometheus.Desc
	ConfirmThrottled *prometheus.Desc

	// Publisher
	MessagesPublished          *prometheus.Desc
	PendingEvents              *prometheus.Desc
	PublishError               *prometheus.Desc
	PublishPersistentFailure   *prometheus.Desc
	PublisherDbError           *prometheus.Desc
	LastPublishedMessageUnixTs *prometheus.Desc
}

func NewCollector() *Collector {
	labels := prometheus.Labels{
		"app": "selliko",
	}

	return &Collector{
		UpForSeconds: prometheus.NewDesc("up_for_seconds", "", nil, labels),

		ListingsSubmitted:    prometheus.NewDesc("listings_submitted", "", nil, labels),
		ListingsApproved:     prometheus.NewDesc("listings_approved", "", nil, labels),
		ListingsRejected:     prometheus.NewDesc("listings_rejected", "", nil, labels),
		ListingsCancelled:    prometheus.NewDesc("listings_cancelled", "", nil, labels),
		BidsPlaced:           prometheus.NewDesc("bids_placed", "", nil, labels),
		BidsRefused:          prometheus.NewDesc("bids_refused", "", nil, labels),
		BidsAccepted:         prometheus.NewDesc("bids_accepted", "", nil, labels),
		InstantWins:          prometheus.NewDesc("instant_wins", "", nil, labels),
		AgentsAssigned:       prometheus.NewDesc("agents_assigned", "", nil, labels),
		MilestonesReported:   prometheus.NewDesc("milestones_reported", "", nil, labels),
		CodesIssued:          prometheus.NewDesc("delivery_codes_issued", "", nil, labels),
		CodesDispatched:      prometheus.NewDesc("delivery_codes_dispatched", "", nil, labels),
		DeliveriesCompleted:  prometheus.NewDesc("deliveries_completed", "", nil, labels),
		AverageBidsPerMinute: prometheus.NewDesc("average_bids_per_minute", "", nil, labels),

		// Errors
		DbError:          prometheus.NewDesc("error_db", "", nil, labels),
		TxConflict:       prometheus.NewDesc("error_tx_conflict", "", nil, labels),
		InvalidCode:      prometheus.NewDesc("error_invalid_delivery_code", "", nil, labels),
		DispatchFailure:  prometheus.NewDesc("error_code_dispatch", "", nil, labels),
		ConfirmThrottled: prometheus.NewDesc("error_confirm_throttled", "", nil, labels),

		MessagesPublished:          prometheus.NewDesc("publisher_messages_published", "", nil, labels),
		PendingEvents:              prometheus.NewDesc("publisher_pending_events", "", nil, labels),
		PublishError:               prometheus.NewDesc("error_publisher_publish", "", nil, labels),
		PublishPersistentFailure:   prometheus.NewDesc("error_publisher_persistent", "", nil, labels),
		PublisherDbError:           prometheus.NewDesc("error_publisher_db", "", nil, labels),
		LastPublishedMessageUnixTs: prometheus.NewDesc("publisher_last_successful_message_timestamp", "", nil, labels),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- self.UpForSeconds

	ch <- self.ListingsSubmitted
	ch <- self.ListingsApproved
	ch <- self.ListingsRejected
	ch <- self.ListingsCancelled
	ch <- self.BidsPlaced
	ch <- self.BidsRefused
	ch <- self.BidsAccepted
	ch <- self.InstantWins
	ch <- self.AgentsAssigned
	ch <- self.MilestonesReported
	ch <- self.CodesIssued
	ch <- self.CodesDispatched
	ch <- self.DeliveriesCompleted
	ch <- self.AverageBidsPerMinute

	ch <- self.DbError
	ch <- self.TxConflict
	ch <- self.InvalidCode
	ch <- self.DispatchFailure
	ch <- self.ConfirmThrottled

	ch <- self.MessagesPublished
	ch <- self.PendingEvents
	ch <- self.PublishError
	ch <- self.PublishPersistentFailure
	ch <- self.PublisherDbError
	ch <- self.LastPublishedMessageUnixTs
}

// Collect implements required collect function for all promehteus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	r := &self.monitor.Report

	ch <- prometheus.MustNewConstMetric(self.UpForSeconds, prometheus.GaugeValue, float64(r.Run.State.UpForSeconds.Load()))

	ch <- prometheus.MustNewConstMetric(self.ListingsSubmitted, prometheus.CounterValue, float64(r.Market.State.ListingsSubmitted.Load()))
	ch <- prometheus.MustNewConstMetric(self.ListingsApproved, prometheus.CounterValue, float64(r.Market.State.ListingsApproved.Load()))
	ch <- prometheus.MustNewConstMetric(self.ListingsRejected, prometheus.CounterValue, float64(r.Market.State.ListingsRejected.Load()))
	ch <- prometheus.MustNewConstMetric(self.ListingsCancelled, prometheus.CounterValue, float64(r.Market.State.ListingsCancelled.Load()))
	ch <- prometheus.MustNewConstMetric(self.BidsPlaced, prometheus.CounterValue, float64(r.Market.State.BidsPlaced.Load()))
	ch <- prometheus.MustNewConstMetric(self.BidsRefused, prometheus.CounterValue, float64(r.Market.State.BidsRefused.Load()))
	ch <- prometheus.MustNewConstMetric(self.BidsAccepted, prometheus.CounterValue, float64(r.Market.State.BidsAccepted.Load()))
	ch <- prometheus.MustNewConstMetric(self.InstantWins, prometheus.CounterValue, float64(r.Market.State.InstantWins.Load()))
	ch <- prometheus.MustNewConstMetric(self.AgentsAssigned, prometheus.CounterValue, float64(r.Market.State.AgentsAssigned.Load()))
	ch <- prometheus.MustNewConstMetric(self.MilestonesReported, prometheus.CounterValue, float64(r.Market.State.MilestonesReported.Load()))
	ch <- prometheus.MustNewConstMetric(self.CodesIssued, prometheus.CounterValue, float64(r.Market.State.CodesIssued.Load()))
	ch <- prometheus.MustNewConstMetric(self.CodesDispatched, prometheus.CounterValue, float64(r.Market.State.CodesDispatched.Load()))
	ch <- prometheus.MustNewConstMetric(self.DeliveriesCompleted, prometheus.CounterValue, float64(r.Market.State.DeliveriesCompleted.Load()))
	ch <- prometheus.MustNewConstMetric(self.AverageBidsPerMinute, prometheus.GaugeValue, r.Market.State.AverageBidsPerMinute.Load())

	ch <- prometheus.MustNewConstMetric(self.DbError, prometheus.CounterValue, float64(r.Market.Errors.DbError.Load()))
	ch <- prometheus.MustNewConstMetric(self.TxConflict, prometheus.CounterValue, float64(r.Market.Errors.TxConflict.Load()))
	ch <- prometheus.MustNewConstMetric(self.InvalidCode, prometheus.CounterValue, float64(r.Market.Errors.InvalidCode.Load()))
	ch <- prometheus.MustNewConstMetric(self.DispatchFailure, prometheus.CounterValue, float64(r.Market.Errors.DispatchFailure.Load()))
	ch <- prometheus.MustNewConstMetric(self.ConfirmThrottled, prometheus.CounterValue, float64(r.Market.Errors.ConfirmThrottled.Load()))

	ch <- prometheus.MustNewConstMetric(self.MessagesPublished, prometheus.CounterValue, float64(r.Publisher.State.MessagesPublished.Load()))
	ch <- prometheus.MustNewConstMetric(self.PendingEvents, prometheus.GaugeValue, float64(r.Publisher.State.PendingEvents.Load()))
	ch <- prometheus.MustNewConstMetric(self.PublishError, prometheus.CounterValue, float64(r.Publisher.Errors.Publish.Load()))
	ch <- prometheus.MustNewConstMetric(self.PublishPersistentFailure, prometheus.CounterValue, float64(r.Publisher.Errors.PersistentFailure.Load()))
	ch <- prometheus.MustNewConstMetric(self.PublisherDbError, prometheus.CounterValue, float64(r.Publisher.Errors.DbError.Load()))
	ch <- prometheus.MustNewConstMetric(self.LastPublishedMessageUnixTs, prometheus.GaugeValue, float64(r.Publisher.State.LastSuccessfulMessageTimestamp.Load()))
}
