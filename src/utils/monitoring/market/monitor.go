package monitor_market

import (
	"math"
	"net/http"
	"time"

	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/monitoring/report"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/task"

	"github.com/gammazero/deque"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Stores and computes monitor counters
type Monitor struct {
	*task.Task

	Report report.Report

	historySize int

	collector *Collector

	// Bids placed, sampled every minute
	BidsPlaced *deque.Deque[uint64]
}

func NewMonitor() (self *Monitor) {
	self = new(Monitor)

	self.Report = report.Report{
		Run:       &report.RunReport{},
		Market:    &report.MarketReport{},
		Publisher: &report.PublisherReport{},
	}

	self.Report.Run.State.StartTimestamp.Store(time.Now().Unix())

	self.collector = NewCollector().WithMonitor(self)

	self.Task = task.NewTask(nil, "monitor").
		WithPeriodicSubtaskFunc(time.Minute, self.monitorBids)

	return self.WithMaxHistorySize(30)
}

func (self *Monitor) WithMaxHistorySize(maxHistorySize int) *Monitor {
	self.historySize = maxHistorySize
	self.BidsPlaced = deque.New[uint64](self.historySize)
	return self
}

func (self *Monitor) GetReport() *report.Report {
	return &self.Report
}

func (self *Monitor) GetPrometheusCollector() (collector prometheus.Collector) {
	return self.collector
}

func round(f float64) float64 {
	return math.Round(f*100) / 100
}

// Measure bidding activity
func (self *Monitor) monitorBids() (err error) {
	loaded := self.Report.Market.State.BidsPlaced.Load()

	self.BidsPlaced.PushBack(loaded)
	if self.BidsPlaced.Len() > self.historySize {
		self.BidsPlaced.PopFront()
	}
	value := float64(self.BidsPlaced.Back()-self.BidsPlaced.Front()) / float64(self.BidsPlaced.Len())

	self.Report.Market.State.AverageBidsPerMinute.Store(round(value))
	return
}

func (self *Monitor) IsOK() bool {
	// Outbox relay stuck for more than 5 minutes
	last := self.Report.Publisher.State.LastSuccessfulMessageTimestamp.Load()
	if self.Report.Publisher.State.PendingEvents.Load() > 0 && last > 0 && time.Now().Unix()-last > 300 {
		return false
	}
	return true
}

func (self *Monitor) OnGetState(c *gin.Context) {
	self.Report.Run.State.UpForSeconds.Store(uint64(time.Now().Unix() - self.Report.Run.State.StartTimestamp.Load()))
	c.JSON(http.StatusOK, &self.Report)
}

func (self *Monitor) OnGetHealth(c *gin.Context) {
	if self.IsOK() {
		c.Status(http.StatusOK)
	} else {
		c.Status(http.StatusServiceUnavailable)
	}
}
