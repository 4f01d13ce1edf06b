package services

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/cosalpha/ipo-tracker/shared"
)

// ScreenerScraper fetches IPO tables from the aggregator site (Source A)
type ScreenerScraper struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *shared.HTTPRequestRateLimiter
	metrics     *shared.ServiceMetrics
	logger      *logrus.Logger
}

// NewScreenerScraper creates a scraper for the aggregator site
func NewScreenerScraper(baseURL string, timeout time.Duration, logger *logrus.Logger) *ScreenerScraper {
	if logger == nil {
		logger = logrus.New()
	}
	return &ScreenerScraper{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  shared.NewScrapingHTTPClient(timeout),
		rateLimiter: shared.NewHTTPRequestRateLimiter(2 * time.Second),
		metrics:     shared.NewServiceMetrics("screener_scraper"),
		logger:      logger,
	}
}

// upcomingColumns maps semantic fields for the upcoming-issues table
var upcomingColumns = SourceColumns{
	"name":                {Substring: []string{"name", "company"}},
	"listing_date":        {Substring: []string{"listing date"}},
	"subscription_period": {Substring: []string{"subscription", "issue period", "open"}},
	"market_cap":          {Substring: []string{"m.cap", "mcap", "market cap"}},
	"price_band":          {Substring: []string{"price band", "issue price"}},
}

// recentColumns maps semantic fields for the recently-listed table
var recentColumns = SourceColumns{
	"name":           {Substring: []string{"name", "company"}},
	"listing_date":   {Substring: []string{"listing date"}},
	"market_cap":     {Substring: []string{"m.cap", "mcap", "market cap"}},
	"ipo_price":      {Substring: []string{"ipo price", "issue price"}},
	"current_price":  {Substring: []string{"current price", "cmp", "ltp"}},
	"change_percent": {Substring: []string{"change", "gain"}},
}

// upcomingRequiredColumns are the semantic fields the upcoming table
// must resolve; a table missing any of them is an unrecognized shape
var upcomingRequiredColumns = []string{"name", "listing_date", "subscription_period"}

// recentRequiredColumns guard the recently-listed table the same way
var recentRequiredColumns = []string{"name", "listing_date", "market_cap"}

// upcomingHeaderKeywords identifies the upcoming-issues table among
// candidates on the page
var upcomingHeaderKeywords = []string{"name", "date"}

// FetchUpcomingTable fetches and parses the upcoming-issues page
func (s *ScreenerScraper) FetchUpcomingTable() RawTable {
	return s.fetchTable(s.baseURL+"/ipo/upcoming/", upcomingHeaderKeywords)
}

// FetchRecentTable fetches and parses the recently-listed page
func (s *ScreenerScraper) FetchRecentTable() RawTable {
	return s.fetchTable(s.baseURL+"/ipo/recent/", upcomingHeaderKeywords)
}

// UpcomingColumns exposes the column mapping for the upcoming table
func (s *ScreenerScraper) UpcomingColumns() SourceColumns { return upcomingColumns }

// RecentColumns exposes the column mapping for the recent table
func (s *ScreenerScraper) RecentColumns() SourceColumns { return recentColumns }

// UpcomingRequired lists the fields the upcoming table must carry
func (s *ScreenerScraper) UpcomingRequired() []string { return upcomingRequiredColumns }

// RecentRequired lists the fields the recent table must carry
func (s *ScreenerScraper) RecentRequired() []string { return recentRequiredColumns }

// Metrics exposes fetch counters for diagnostics
func (s *ScreenerScraper) Metrics() *shared.ServiceMetrics { return s.metrics }

func (s *ScreenerScraper) fetchTable(pageURL string, headerKeywords []string) RawTable {
	started := time.Now()
	table := s.doFetchTable(pageURL, headerKeywords)
	s.metrics.RecordFetch(table.Status, time.Since(started))
	return table
}

func (s *ScreenerScraper) doFetchTable(pageURL string, headerKeywords []string) RawTable {
	s.rateLimiter.EnforceRateLimit()

	request, err := http.NewRequest("GET", pageURL, nil)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"component": "screener_scraper",
			"url":       pageURL,
			"error":     err.Error(),
		}).Warn("Failed to build request")
		return EmptyTable(shared.FetchNoData)
	}
	shared.SetBrowserLikeHeaders(request, "text/html,application/xhtml+xml")

	response, err := shared.DoRequest(s.httpClient, request)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"component": "screener_scraper",
			"url":       pageURL,
			"error":     err.Error(),
		}).Warn("Fetch failed, returning empty table")
		return EmptyTable(shared.FetchNoData)
	}
	defer response.Body.Close()

	document, err := goquery.NewDocumentFromReader(response.Body)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"component": "screener_scraper",
			"url":       pageURL,
			"error":     err.Error(),
		}).Warn("Failed to parse HTML")
		return EmptyTable(shared.FetchUnrecognized)
	}

	table := SelectTableByHeader(document, headerKeywords)
	if len(table.Rows) == 0 && table.Status == shared.FetchOK {
		table.Status = shared.FetchNoData
	}
	s.logger.WithFields(logrus.Fields{
		"component": "screener_scraper",
		"url":       pageURL,
		"rows":      len(table.Rows),
		"status":    string(table.Status),
	}).Info("Fetched aggregator table")
	return table
}

// SelectTableByHeader picks the first table on the page whose flattened
// header contains every keyword, falling back to the first table when no
// header matches. A page without tables is unrecognized.
func SelectTableByHeader(document *goquery.Document, headerKeywords []string) RawTable {
	tables := document.Find("table")
	if tables.Length() == 0 {
		return EmptyTable(shared.FetchUnrecognized)
	}

	var fallback *RawTable
	var selected *RawTable
	tables.EachWithBreak(func(_ int, selection *goquery.Selection) bool {
		parsed := parseHTMLTable(selection)
		if fallback == nil {
			copied := parsed
			fallback = &copied
		}
		joined := strings.ToLower(strings.Join(parsed.Columns, " "))
		for _, keyword := range headerKeywords {
			if !strings.Contains(joined, keyword) {
				return true
			}
		}
		selected = &parsed
		return false
	})

	if selected != nil {
		return *selected
	}
	return *fallback
}

// parseHTMLTable reads a table element into columns and rows. Header rows
// may span multiple tr elements; segments per column position are joined
// by the flatten helper.
func parseHTMLTable(table *goquery.Selection) RawTable {
	headerSegments := make(map[int][]string)
	headerRowCount := 0

	headerRows := table.Find("thead tr")
	if headerRows.Length() == 0 {
		// no thead, first row with th cells is the header
		table.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
			if row.Find("th").Length() == 0 {
				return false
			}
			collectHeaderRow(row, headerSegments)
			headerRowCount++
			return true
		})
	} else {
		headerRows.Each(func(_ int, row *goquery.Selection) {
			collectHeaderRow(row, headerSegments)
			headerRowCount++
		})
	}

	columnCount := len(headerSegments)
	columns := make([]string, columnCount)
	for i := 0; i < columnCount; i++ {
		columns[i] = FlattenHeader(headerSegments[i])
	}

	rows := make([][]string, 0)
	bodyRows := table.Find("tbody tr")
	if bodyRows.Length() == 0 {
		bodyRows = table.Find("tr").Slice(headerRowCount, goquery.ToEnd)
	}
	bodyRows.Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}
		values := make([]string, 0, cells.Length())
		cells.Each(func(_ int, cell *goquery.Selection) {
			values = append(values, strings.TrimSpace(cell.Text()))
		})
		rows = append(rows, values)
	})

	return RawTable{Columns: columns, Rows: rows, Status: shared.FetchOK}
}

func collectHeaderRow(row *goquery.Selection, segments map[int][]string) {
	row.Find("th").Each(func(i int, cell *goquery.Selection) {
		segments[i] = append(segments[i], strings.TrimSpace(cell.Text()))
	})
}

// String renders a compact description for logging
func (s *ScreenerScraper) String() string {
	return fmt.Sprintf("ScreenerScraper(%s)", s.baseURL)
}
