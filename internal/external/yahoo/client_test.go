package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bistsignal/backend/pkg/config"
	"github.com/bistsignal/backend/pkg/httputil"
	"github.com/bistsignal/backend/pkg/logger"
)

// 2024-01-15/16/17 07:00 UTC, 10:00 in Istanbul
const chartPayload = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "THYAO.IS", "currency": "TRY", "gmtoffset": 10800},
      "timestamp": [1705302000, 1705388400, 1705474800, 1705474900],
      "indicators": {"quote": [{
        "open":   [280.0, null, 284.0, 285.0],
        "high":   [286.5, null, 288.0, 289.0],
        "low":    [279.0, null, 282.5, 283.0],
        "close":  [285.25, null, 287.0, 288.5],
        "volume": [12000000, null, 9500000, 9600000]
      }]}
    }],
    "error": null
  }
}`

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func TestParseChart(t *testing.T) {
	chart, err := parseChart([]byte(chartPayload))
	require.NoError(t, err)

	assert.Equal(t, "THYAO.IS", chart.Ticker)
	assert.Equal(t, "TRY", chart.Currency)
	require.Len(t, chart.Bars, 2)

	assert.Equal(t, day(15), chart.Bars[0].Date)
	assert.Equal(t, 285.25, chart.Bars[0].Close)
	assert.Equal(t, int64(12000000), chart.Bars[0].Volume)

	// the repeated session keeps the latest row
	assert.Equal(t, day(17), chart.Bars[1].Date)
	assert.Equal(t, 288.5, chart.Bars[1].Close)
	assert.Equal(t, []float64{285.25, 288.5}, chart.Closes())
}

func TestParseChart_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"chart":`},
		{"api error", `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`},
		{"empty result", `{"chart":{"result":[],"error":null}}`},
		{"all nulls", `{"chart":{"result":[{"meta":{},"timestamp":[1705302000],"indicators":{"quote":[{"close":[null]}]}}],"error":null}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseChart([]byte(tt.body))
			assert.Error(t, err)
		})
	}
}

func TestParseChart_FillsMissingOHLC(t *testing.T) {
	body := `{"chart":{"result":[{"meta":{"gmtoffset":10800},"timestamp":[1705302000],
		"indicators":{"quote":[{"open":[null],"high":[null],"low":[null],"close":[100.0],"volume":[null]}]}}],"error":null}}`

	chart, err := parseChart([]byte(body))
	require.NoError(t, err)
	require.Len(t, chart.Bars, 1)

	b := chart.Bars[0]
	assert.Equal(t, []float64{100, 100, 100, 100}, []float64{b.Open, b.High, b.Low, b.Close})
	assert.Equal(t, int64(0), b.Volume)
}

func TestFetchChart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/THYAO.IS", r.URL.Path)
		assert.Equal(t, "6mo", r.URL.Query().Get("range"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chartPayload))
	}))
	defer server.Close()

	cfg := &config.Config{Fetch: config.FetchConfig{RetryCount: 1}}
	client := NewClient(httputil.New(cfg, logger.NewNop()), server.URL+"/", logger.NewNop())

	chart, err := client.FetchChart(context.Background(), EquityTicker("thyao"), Range6mo)
	require.NoError(t, err)
	assert.Len(t, chart.Bars, 2)
}

func TestFetchChart_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"delisted"}}}`))
	}))
	defer server.Close()

	cfg := &config.Config{Fetch: config.FetchConfig{RetryCount: 1}}
	client := NewClient(httputil.New(cfg, logger.NewNop()), server.URL, logger.NewNop())

	_, err := client.FetchChart(context.Background(), "XXXXX.IS", Range1y)
	assert.Error(t, err)
}

func TestEquityTicker(t *testing.T) {
	assert.Equal(t, "THYAO.IS", EquityTicker(" thyao "))
	assert.Equal(t, "GARAN.IS", EquityTicker("GARAN.IS"))
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange(" 1Y ")
	require.NoError(t, err)
	assert.Equal(t, Range1y, r)

	_, err = ParseRange("7d")
	assert.Error(t, err)
}
