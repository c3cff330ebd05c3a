package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bistsignal/backend/pkg/httputil"
	"github.com/bistsignal/backend/pkg/logger"
)

// ErrNoData is returned when the chart API answers without usable bars
var ErrNoData = errors.New("yahoo: no chart data")

// Range is a chart lookback accepted by the chart API
type Range string

const (
	Range5d  Range = "5d"
	Range1mo Range = "1mo"
	Range3mo Range = "3mo"
	Range6mo Range = "6mo"
	Range1y  Range = "1y"
	Range2y  Range = "2y"
	Range5y  Range = "5y"
	RangeMax Range = "max"
)

var validRanges = map[Range]bool{
	Range5d: true, Range1mo: true, Range3mo: true, Range6mo: true,
	Range1y: true, Range2y: true, Range5y: true, RangeMax: true,
}

// ParseRange validates a user supplied period
func ParseRange(period string) (Range, error) {
	r := Range(strings.ToLower(strings.TrimSpace(period)))
	if !validRanges[r] {
		return "", fmt.Errorf("unsupported period %q (want 5d, 1mo, 3mo, 6mo, 1y, 2y, 5y or max)", period)
	}
	return r, nil
}

// Macro tickers
const (
	TickerUSDTRY  = "TRY=X"
	TickerEURTRY  = "EURTRY=X"
	TickerBIST100 = "XU100.IS"
	TickerOil     = "CL=F"
	TickerGold    = "GC=F"
)

// EquityTicker maps a BIST symbol to its Istanbul exchange ticker
func EquityTicker(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if strings.HasSuffix(s, ".IS") {
		return s
	}
	return s + ".IS"
}

// Client handles communication with the Yahoo Finance chart API
// ⭐ SSOT: chart API calls happen in this client only
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new chart client
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.Module("yahoo"),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// FetchChart fetches daily bars of ticker over rng
func (c *Client) FetchChart(ctx context.Context, ticker string, rng Range) (*Chart, error) {
	params := url.Values{}
	params.Set("range", string(rng))
	params.Set("interval", "1d")
	params.Set("includePrePost", "false")

	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(ticker), params.Encode())

	body, err := c.httpClient.GetBytes(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("chart request for %s failed: %w", ticker, err)
	}

	chart, err := parseChart(body)
	if err != nil {
		return nil, fmt.Errorf("parse chart for %s failed: %w", ticker, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"range":  rng,
		"count":  len(chart.Bars),
	}).Debug("Fetched chart")
	return chart, nil
}
