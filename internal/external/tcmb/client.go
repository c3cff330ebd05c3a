package tcmb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/bistsignal/backend/pkg/httputil"
	"github.com/bistsignal/backend/pkg/logger"
)

// ErrRateNotFound is returned when the page holds no rate table
var ErrRateNotFound = errors.New("tcmb: policy rate table not found")

// RateEntry is one decision row of the one-week repo table
type RateEntry struct {
	EffectiveDate time.Time
	Rate          float64 // percent
}

// PolicyRate is the current rate and the one before it
type PolicyRate struct {
	Current  RateEntry
	Previous *RateEntry
}

// Client scrapes the central bank policy rate page
// ⭐ SSOT: the policy rate page is parsed here only
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	url        string
}

// NewClient creates a new scraper for the page at pageURL
func NewClient(httpClient *httputil.Client, pageURL string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.Module("tcmb"),
		url:        pageURL,
	}
}

// FetchPolicyRate downloads the page and returns the latest decision
func (c *Client) FetchPolicyRate(ctx context.Context) (*PolicyRate, error) {
	body, err := c.httpClient.GetBytes(ctx, c.url)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	entries, err := parseRateTable(string(body))
	if err != nil {
		return nil, err
	}

	rate := &PolicyRate{Current: entries[0]}
	if len(entries) > 1 {
		prev := entries[1]
		rate.Previous = &prev
	}

	c.logger.WithFields(map[string]interface{}{
		"rate":           rate.Current.Rate,
		"effective_date": rate.Current.EffectiveDate.Format("2006-01-02"),
		"rows":           len(entries),
	}).Debug("Fetched policy rate")
	return rate, nil
}

var dateRe = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)

// parseRateTable reads every "date | rate" row and returns them newest first
func parseRateTable(html string) ([]RateEntry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse HTML failed: %w", err)
	}

	var entries []RateEntry
	doc.Find("table tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		dateText := strings.TrimSpace(cells.Eq(0).Text())
		if !dateRe.MatchString(dateText) {
			return
		}
		date, err := time.Parse("02.01.2006", dateText)
		if err != nil {
			return
		}

		// last numeric cell holds the lending rate
		rate, ok := 0.0, false
		cells.Slice(1, cells.Length()).Each(func(_ int, cell *goquery.Selection) {
			if v, parsed := parsePercent(cell.Text()); parsed {
				rate, ok = v, true
			}
		})
		if !ok {
			return
		}

		entries = append(entries, RateEntry{EffectiveDate: date, Rate: rate})
	})

	if len(entries) == 0 {
		return nil, ErrRateNotFound
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].EffectiveDate.After(entries[j].EffectiveDate)
	})
	return entries, nil
}

// parsePercent accepts Turkish formatted numbers such as "45,00" or "%47.50"
func parsePercent(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "%")
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if s == "" || s == "-" {
		return 0, false
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || v > 1000 {
		return 0, false
	}
	return v, true
}
