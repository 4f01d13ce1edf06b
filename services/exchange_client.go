package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cosalpha/ipo-tracker/models"
	"github.com/cosalpha/ipo-tracker/shared"
)

// ExchangeClient fetches issue lists from the exchange's public JSON API
// (Source C). The API refuses direct calls: a warm-up request to the site
// root establishes the session cookies the JSON endpoints require.
type ExchangeClient struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *shared.HTTPRequestRateLimiter
	metrics     *shared.ServiceMetrics
	logger      *logrus.Logger

	sessionMutex sync.Mutex
	warmedUp     bool
}

// NewExchangeClient creates a client for the exchange API
func NewExchangeClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *ExchangeClient {
	if logger == nil {
		logger = logrus.New()
	}
	return &ExchangeClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  shared.NewSessionHTTPClient(timeout),
		rateLimiter: shared.NewHTTPRequestRateLimiter(time.Second),
		metrics:     shared.NewServiceMetrics("exchange_client"),
		logger:      logger,
	}
}

// Metrics exposes fetch counters for diagnostics
func (c *ExchangeClient) Metrics() *shared.ServiceMetrics { return c.metrics }

// exchangeDateLayouts covers the date spellings the API returns
var exchangeDateLayouts = []string{"02-Jan-2006", "2-Jan-2006", "02/01/2006", "2006-01-02"}

func parseExchangeDate(text string) *time.Time {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return nil
	}
	for _, layout := range exchangeDateLayouts {
		if parsed, err := time.Parse(layout, cleaned); err == nil {
			return &parsed
		}
	}
	return nil
}

// FetchCurrentIssues fetches issues whose subscription window is open
func (c *ExchangeClient) FetchCurrentIssues(today time.Time, pastWindowDays int) ([]models.IPORecord, shared.FetchStatus) {
	return c.fetchIssues("/api/ipo-current-issue", nil, today, pastWindowDays)
}

// FetchUpcomingIssues fetches issues announced but not yet open
func (c *ExchangeClient) FetchUpcomingIssues(today time.Time, pastWindowDays int) ([]models.IPORecord, shared.FetchStatus) {
	return c.fetchIssues("/api/all-upcoming-issues?category=ipo", nil, today, pastWindowDays)
}

// FetchPastIssues fetches issues listed inside a date range. The API has
// shipped both snake_case and camelCase range parameters over time, so
// both spellings are tried until one returns data.
func (c *ExchangeClient) FetchPastIssues(from, to time.Time, today time.Time, pastWindowDays int) ([]models.IPORecord, shared.FetchStatus) {
	spellings := []map[string]string{
		{"from_date": from.Format("02-01-2006"), "to_date": to.Format("02-01-2006")},
		{"fromDate": from.Format("02-01-2006"), "toDate": to.Format("02-01-2006")},
	}
	lastStatus := shared.FetchNoData
	for _, params := range spellings {
		records, status := c.fetchIssues("/api/public-past-issues", params, today, pastWindowDays)
		if len(records) > 0 {
			return records, status
		}
		lastStatus = status
	}
	return nil, lastStatus
}

func (c *ExchangeClient) fetchIssues(path string, params map[string]string, today time.Time, pastWindowDays int) ([]models.IPORecord, shared.FetchStatus) {
	started := time.Now()
	records, status := c.doFetchIssues(path, params)
	c.metrics.RecordFetch(status, time.Since(started))

	for i := range records {
		records[i].Classification = Classify(records[i], today, pastWindowDays)
	}
	return records, status
}

func (c *ExchangeClient) doFetchIssues(path string, params map[string]string) ([]models.IPORecord, shared.FetchStatus) {
	c.rateLimiter.EnforceRateLimit()

	if err := c.ensureSession(); err != nil {
		c.logger.WithFields(logrus.Fields{
			"component": "exchange_client",
			"error":     err.Error(),
		}).Warn("Session warm-up failed")
		return nil, shared.FetchNoData
	}

	endpoint := c.baseURL + path
	if len(params) > 0 {
		values := url.Values{}
		for key, value := range params {
			values.Set(key, value)
		}
		separator := "?"
		if strings.Contains(endpoint, "?") {
			separator = "&"
		}
		endpoint = endpoint + separator + values.Encode()
	}

	request, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil, shared.FetchNoData
	}
	shared.SetBrowserLikeHeaders(request, "application/json, text/plain, */*")
	request.Header.Set("Referer", c.baseURL+"/market-data/all-upcoming-issues-ipo")

	response, err := shared.DoRequest(c.httpClient, request)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"component": "exchange_client",
			"endpoint":  endpoint,
			"error":     err.Error(),
		}).Warn("Exchange fetch failed")
		c.invalidateSession()
		return nil, shared.FetchNoData
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, shared.FetchNoData
	}

	items, status := decodeIssueList(body)
	if status.Degraded() {
		c.logger.WithFields(logrus.Fields{
			"component": "exchange_client",
			"endpoint":  endpoint,
			"status":    string(status),
		}).Warn("Exchange response shape not usable")
		return nil, status
	}

	records := make([]models.IPORecord, 0, len(items))
	for _, item := range items {
		record, ok := issueToRecord(item)
		if !ok {
			continue
		}
		records = append(records, record)
	}

	c.logger.WithFields(logrus.Fields{
		"component": "exchange_client",
		"endpoint":  endpoint,
		"records":   len(records),
	}).Info("Fetched exchange issues")
	return records, shared.FetchOK
}

// decodeIssueList accepts both response shapes the API has used: a bare
// JSON array and an object wrapping the array under "data". Any other
// shape is unrecognized.
func decodeIssueList(body []byte) ([]map[string]interface{}, shared.FetchStatus) {
	var bareList []map[string]interface{}
	if err := json.Unmarshal(body, &bareList); err == nil {
		return bareList, shared.FetchOK
	}

	var wrapped struct {
		Data []map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Data != nil {
		return wrapped.Data, shared.FetchOK
	}
	return nil, shared.FetchUnrecognized
}

// issueFieldKeys lists the JSON keys tried per semantic field, in order
var issueFieldKeys = map[string][]string{
	"name":               {"companyName", "company", "symbol"},
	"subscription_start": {"issueStartDate", "open_date", "openDate"},
	"subscription_end":   {"issueEndDate", "close_date", "closeDate"},
	"listing_date":       {"listingDate", "listing_date"},
	"price_band":         {"priceBand", "issuePrice", "price_band"},
}

func issueField(item map[string]interface{}, field string) string {
	for _, key := range issueFieldKeys[field] {
		if raw, ok := item[key]; ok {
			if text, ok := raw.(string); ok && strings.TrimSpace(text) != "" {
				return text
			}
			if number, ok := raw.(float64); ok {
				return fmt.Sprintf("%v", number)
			}
		}
	}
	return ""
}

func issueToRecord(item map[string]interface{}) (models.IPORecord, bool) {
	name := strings.TrimSpace(issueField(item, "name"))
	if name == "" {
		return models.IPORecord{}, false
	}

	record := models.IPORecord{
		CompanyName:       name,
		SubscriptionStart: parseExchangeDate(issueField(item, "subscription_start")),
		SubscriptionEnd:   parseExchangeDate(issueField(item, "subscription_end")),
		ListingDate:       parseExchangeDate(issueField(item, "listing_date")),
		PriceBand:         optionalText(issueField(item, "price_band")),
	}
	return record, true
}

// ensureSession performs the warm-up once. A failed API call invalidates
// the session so the next call warms up again.
func (c *ExchangeClient) ensureSession() error {
	c.sessionMutex.Lock()
	defer c.sessionMutex.Unlock()

	if c.warmedUp {
		return nil
	}
	if err := c.warmUp(); err != nil {
		return err
	}
	c.warmedUp = true
	return nil
}

func (c *ExchangeClient) invalidateSession() {
	c.sessionMutex.Lock()
	c.warmedUp = false
	c.sessionMutex.Unlock()
}

// warmUp hits the site root so the cookie jar picks up the session
// cookies the JSON endpoints check
func (c *ExchangeClient) warmUp() error {
	request, err := http.NewRequest("GET", c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	shared.SetBrowserLikeHeaders(request, "text/html,application/xhtml+xml")

	response, err := shared.DoRequest(c.httpClient, request)
	if err != nil {
		return err
	}
	defer response.Body.Close()
	io.Copy(io.Discard, response.Body)

	c.logger.WithFields(logrus.Fields{
		"component": "exchange_client",
		"method":    "warmUp",
	}).Debug("Exchange session established")
	return nil
}
