package services

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"

	"github.com/cosalpha/ipo-tracker/shared"
)

// ReportsScraper fetches the IPO report table from the report site
// (Source B). The table is sometimes rendered by JavaScript, so a plain
// collector pass falls back to a headless browser when it finds no rows.
type ReportsScraper struct {
	baseURL     string
	timeout     time.Duration
	rateLimiter *shared.HTTPRequestRateLimiter
	metrics     *shared.ServiceMetrics
	logger      *logrus.Logger
}

// NewReportsScraper creates a scraper for the report site
func NewReportsScraper(baseURL string, timeout time.Duration, logger *logrus.Logger) *ReportsScraper {
	if logger == nil {
		logger = logrus.New()
	}
	return &ReportsScraper{
		baseURL:     strings.TrimRight(baseURL, "/"),
		timeout:     timeout,
		rateLimiter: shared.NewHTTPRequestRateLimiter(2 * time.Second),
		metrics:     shared.NewServiceMetrics("reports_scraper"),
		logger:      logger,
	}
}

// reportColumns maps semantic fields for the report table
var reportColumns = SourceColumns{
	"name":                {Substring: []string{"ipo", "company", "name"}},
	"listing_date":        {Substring: []string{"listing"}},
	"subscription_period": {Substring: []string{"open", "close", "date"}},
	"price_band":          {Substring: []string{"price"}},
}

// reportRequiredColumns are the semantic fields the report table must
// resolve before its rows are trusted
var reportRequiredColumns = []string{"name", "listing_date"}

// reportHeaderKeywords identifies the report table among candidates
var reportHeaderKeywords = []string{"ipo", "date"}

// Columns exposes the column mapping for the report table
func (s *ReportsScraper) Columns() SourceColumns { return reportColumns }

// Required lists the fields the report table must carry
func (s *ReportsScraper) Required() []string { return reportRequiredColumns }

// Metrics exposes fetch counters for diagnostics
func (s *ReportsScraper) Metrics() *shared.ServiceMetrics { return s.metrics }

// FetchReportTable fetches the report page. The collector handles the
// server-rendered shape; when no rows come back, the headless fallback
// reads the JavaScript-rendered table.
func (s *ReportsScraper) FetchReportTable() RawTable {
	started := time.Now()
	s.rateLimiter.EnforceRateLimit()

	pageURL := s.baseURL + "/report/live-ipo-gmp/331/"
	table := s.fetchWithCollector(pageURL)
	if len(table.Rows) == 0 {
		s.logger.WithFields(logrus.Fields{
			"component": "reports_scraper",
			"url":       pageURL,
		}).Info("Collector found no rows, trying headless fallback")
		table = s.fetchWithHeadless(pageURL)
	}
	if len(table.Rows) == 0 && table.Status == shared.FetchOK {
		table.Status = shared.FetchNoData
	}

	s.metrics.RecordFetch(table.Status, time.Since(started))
	s.logger.WithFields(logrus.Fields{
		"component": "reports_scraper",
		"url":       pageURL,
		"rows":      len(table.Rows),
		"status":    string(table.Status),
	}).Info("Fetched report table")
	return table
}

func (s *ReportsScraper) fetchWithCollector(pageURL string) RawTable {
	collector := colly.NewCollector()
	collector.SetRequestTimeout(s.timeout)

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		r.Headers.Set("Accept", "text/html,application/xhtml+xml")
	})

	result := EmptyTable(shared.FetchNoData)
	collector.OnHTML("table", func(e *colly.HTMLElement) {
		if len(result.Rows) > 0 {
			return
		}
		parsed := parseCollyTable(e)
		joined := strings.ToLower(strings.Join(parsed.Columns, " "))
		for _, keyword := range reportHeaderKeywords {
			if !strings.Contains(joined, keyword) {
				return
			}
		}
		result = parsed
	})

	var fetchErr error
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	if err := collector.Visit(pageURL); err != nil {
		fetchErr = err
	}
	if fetchErr != nil {
		s.logger.WithFields(logrus.Fields{
			"component": "reports_scraper",
			"url":       pageURL,
			"error":     fetchErr.Error(),
		}).Warn("Collector fetch failed")
		return EmptyTable(shared.FetchNoData)
	}
	return result
}

func parseCollyTable(table *colly.HTMLElement) RawTable {
	columns := make([]string, 0)
	table.ForEach("thead th", func(_ int, cell *colly.HTMLElement) {
		columns = append(columns, FlattenHeader([]string{cell.Text}))
	})
	if len(columns) == 0 {
		table.ForEach("tr:first-child th", func(_ int, cell *colly.HTMLElement) {
			columns = append(columns, FlattenHeader([]string{cell.Text}))
		})
	}

	rows := make([][]string, 0)
	table.ForEach("tbody tr", func(_ int, tr *colly.HTMLElement) {
		values := make([]string, 0)
		tr.ForEach("td", func(_ int, cell *colly.HTMLElement) {
			values = append(values, strings.TrimSpace(cell.Text))
		})
		if len(values) > 0 {
			rows = append(rows, values)
		}
	})

	return RawTable{Columns: columns, Rows: rows, Status: shared.FetchOK}
}

// fetchWithHeadless renders the page in a headless browser and extracts
// the report table cells with an in-page script
func (s *ReportsScraper) fetchWithHeadless(pageURL string) RawTable {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.Flag("mute-audio", true),
		chromedp.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancelAlloc()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	ctx, cancel = context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var headers []string
	var cells [][]string

	err := chromedp.Run(ctx,
		chromedp.EmulateViewport(1920, 1080),
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible("div#reportData table tbody tr", chromedp.ByQuery),
		chromedp.Evaluate(`
			Array.from(document.querySelectorAll('div#reportData table thead th')).map(th => th.innerText.trim())
		`, &headers),
		chromedp.Evaluate(`
			Array.from(document.querySelectorAll('div#reportData table tbody tr')).map(row =>
				Array.from(row.querySelectorAll('td')).map(td => td.innerText.trim())
			).filter(cols => cols.length > 0)
		`, &cells),
	)
	if err != nil {
		wrappedError := shared.NewServiceError(
			shared.ErrorCategoryNetwork,
			"HEADLESS_SCRAPING_FAILED",
			"Failed to scrape report table with headless browser",
			"reports_scraper",
			"FetchReportTable",
			false,
			err,
		)
		wrappedError.LogError()
		return EmptyTable(shared.FetchNoData)
	}

	columns := make([]string, 0, len(headers))
	for _, header := range headers {
		columns = append(columns, FlattenHeader([]string{header}))
	}
	return RawTable{Columns: columns, Rows: cells, Status: shared.FetchOK}
}
