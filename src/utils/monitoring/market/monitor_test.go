package monitor_market

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestAverageBids(t *testing.T) {
	monitor := NewMonitor().WithMaxHistorySize(3)

	for _, v := range []uint64{0, 10, 20, 30} {
		monitor.Report.Market.State.BidsPlaced.Store(v)
		require.NoError(t, monitor.monitorBids())
	}

	require.Equal(t, 3, monitor.BidsPlaced.Len())
	require.Equal(t, 6.67, monitor.Report.Market.State.AverageBidsPerMinute.Load())
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	monitor := NewMonitor()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	monitor.OnGetHealth(c)
	require.Equal(t, http.StatusOK, w.Code)

	monitor.Report.Publisher.State.PendingEvents.Store(4)
	monitor.Report.Publisher.State.LastSuccessfulMessageTimestamp.Store(time.Now().Add(-time.Hour).Unix())
	require.False(t, monitor.IsOK())
}

func TestCollectorRegisters(t *testing.T) {
	monitor := NewMonitor()
	monitor.Report.Market.State.BidsPlaced.Add(2)

	registry := prometheus.NewRegistry()
	require.NoError(t, registry.Register(monitor.GetPrometheusCollector()))

	families, err := registry.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}
