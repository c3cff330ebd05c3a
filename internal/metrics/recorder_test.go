package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bistsignal/backend/internal/contracts"
)

var _ contracts.MetricsRecorder = (*Recorder)(nil)

func TestRecorder_Counters(t *testing.T) {
	r := NewWithRegistry(prometheus.NewRegistry())

	r.RecordAnalysis("ok")
	r.RecordAnalysis("ok")
	r.RecordAnalysis("input_error")
	r.RecordIndicatorFailure("MACD")
	r.RecordMacroDegraded("oil")
	r.RecordJob("macro_refresh", "success")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.analyses.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.analyses.WithLabelValues("input_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.indicatorFailures.WithLabelValues("MACD")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.macroDegraded.WithLabelValues("oil")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.jobRuns.WithLabelValues("macro_refresh", "success")))
}

func TestRecorder_Gauges(t *testing.T) {
	r := NewWithRegistry(prometheus.NewRegistry())

	r.RecordHybridScore("THYAO", 61.5)
	r.RecordHybridScore("THYAO", 58.2)

	assert.Equal(t, 58.2, testutil.ToFloat64(r.hybridScore.WithLabelValues("THYAO")))
}

func TestRecorder_Histograms(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegistry(reg)

	r.RecordLatency("fetch_series", 0.3)
	r.RecordLatency("analyze", 1.2)
	r.RecordHTTP("/api/analyze/{symbol}", http.MethodGet, 200, 0.05)
	r.RecordHTTP("/api/analyze/{symbol}", http.MethodGet, 503, 0.01)

	assert.Equal(t, 2, testutil.CollectAndCount(r.latency))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.httpRequests.WithLabelValues("/api/analyze/{symbol}", "GET", "503")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.httpDuration))
}

func TestRecorder_Handler(t *testing.T) {
	r := NewWithRegistry(prometheus.NewRegistry())
	r.RecordAnalysis("ok")

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `bist_analyses_total{outcome="ok"} 1`)
}

func TestStatusClass(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, "2xx"},
		{304, "3xx"},
		{404, "4xx"},
		{503, "5xx"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusClass(tt.code))
	}
}
