package monitoring

import (
	"net/http"

	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/monitoring/report"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Counts into a private report that nobody reads. Default of components built without WithMonitor
type Noop struct {
	report report.Report
}

func NewNoop() *Noop {
	return &Noop{
		report: report.Report{
			Run:       &report.RunReport{},
			Market:    &report.MarketReport{},
			Publisher: &report.PublisherReport{},
		},
	}
}

func (self *Noop) GetReport() *report.Report {
	return &self.report
}

func (self *Noop) GetPrometheusCollector() prometheus.Collector {
	return noopCollector{}
}

func (self *Noop) IsOK() bool {
	return true
}

func (self *Noop) OnGetState(c *gin.Context) {
	c.JSON(http.StatusOK, &self.report)
}

func (self *Noop) OnGetHealth(c *gin.Context) {
	c.Status(http.StatusOK)
}

// Unchecked collector without metrics
type noopCollector struct{}

func (noopCollector) Describe(chan<- *prometheus.Desc) {}

func (noopCollector) Collect(chan<- prometheus.Metric) {}
