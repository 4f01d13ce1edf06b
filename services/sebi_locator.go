package services

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/cosalpha/ipo-tracker/shared"
)

// DocumentCategory identifies a regulator filing listing
type DocumentCategory struct {
	Label string
	SmID  string
}

// documentCategories is the lookup order: final prospectus filings first,
// then drafts, then the unfiltered listing
var documentCategories = []DocumentCategory{
	{Label: "rhp", SmID: "11"},
	{Label: "drhp", SmID: "10"},
	{Label: "all", SmID: "0"},
}

// SEBILocator resolves a best-effort link to a company's offering
// document on the regulator's public search system
type SEBILocator struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *shared.HTTPRequestRateLimiter
	logger      *logrus.Logger
}

// NewSEBILocator creates a locator for the regulator search system
func NewSEBILocator(baseURL string, timeout time.Duration, logger *logrus.Logger) *SEBILocator {
	if logger == nil {
		logger = logrus.New()
	}
	return &SEBILocator{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  shared.NewScrapingHTTPClient(timeout),
		rateLimiter: shared.NewHTTPRequestRateLimiter(time.Second),
		logger:      logger,
	}
}

// SearchURL builds the deterministic search link for a company without
// verifying the result set is non-empty
func (l *SEBILocator) SearchURL(companyName string) string {
	return l.baseURL + "/sebiweb/home/HomeAction.do?doListing=yes&search=" + url.QueryEscape(companyName)
}

// LocateDocument scrapes the prioritized category listings for a document
// whose title matches the company. Returns the document URL and whether a
// match was found; callers fall back to SearchURL when it was not.
func (l *SEBILocator) LocateDocument(companyName string) (string, bool) {
	firstWord := companyFirstWord(companyName)
	if firstWord == "" {
		return "", false
	}

	for _, category := range documentCategories {
		candidates := l.fetchCategoryLinks(category, companyName)
		if link, ok := pickDocumentLink(candidates, firstWord); ok {
			l.logger.WithFields(logrus.Fields{
				"component": "sebi_locator",
				"company":   companyName,
				"category":  category.Label,
				"url":       link,
			}).Info("Resolved offering document")
			return link, true
		}
	}
	return "", false
}

// documentLink is one anchor from a category result page
type documentLink struct {
	Title string
	URL   string
}

func (l *SEBILocator) fetchCategoryLinks(category DocumentCategory, companyName string) []documentLink {
	l.rateLimiter.EnforceRateLimit()

	endpoint := l.baseURL + "/sebiweb/home/HomeAction.do?doListing=yes&sid=3&ssid=15&smid=" + category.SmID +
		"&search=" + url.QueryEscape(companyName)

	request, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil
	}
	shared.SetBrowserLikeHeaders(request, "text/html,application/xhtml+xml")

	response, err := shared.DoRequest(l.httpClient, request)
	if err != nil {
		l.logger.WithFields(logrus.Fields{
			"component": "sebi_locator",
			"category":  category.Label,
			"error":     err.Error(),
		}).Warn("Category listing fetch failed")
		return nil
	}
	defer response.Body.Close()

	document, err := goquery.NewDocumentFromReader(response.Body)
	if err != nil {
		return nil
	}
	return CollectFilingLinks(document, l.baseURL)
}

// CollectFilingLinks gathers anchors under the public-issues filing path
// from a result page
func CollectFilingLinks(document *goquery.Document, baseURL string) []documentLink {
	links := make([]documentLink, 0)
	document.Find("table a[href]").Each(func(_ int, anchor *goquery.Selection) {
		href, _ := anchor.Attr("href")
		if !strings.Contains(href, "/filings/public-issues/") {
			return
		}
		title := strings.TrimSpace(anchor.Text())
		if title == "" {
			title, _ = anchor.Attr("title")
			title = strings.TrimSpace(title)
		}
		if strings.HasPrefix(href, "/") {
			href = baseURL + href
		}
		links = append(links, documentLink{Title: title, URL: href})
	})
	return links
}

// pickDocumentLink picks the first matching link per preference: a final
// prospectus beats a draft, a draft beats any other title match
func pickDocumentLink(links []documentLink, firstWord string) (string, bool) {
	var draftMatch, otherMatch string
	for _, link := range links {
		title := strings.ToLower(link.Title)
		if !strings.Contains(title, firstWord) {
			continue
		}
		switch {
		case strings.Contains(title, "rhp") && !strings.Contains(title, "drhp"):
			return link.URL, true
		case strings.Contains(title, "drhp") || strings.Contains(title, "draft"):
			if draftMatch == "" {
				draftMatch = link.URL
			}
		default:
			if otherMatch == "" {
				otherMatch = link.URL
			}
		}
	}
	if draftMatch != "" {
		return draftMatch, true
	}
	if otherMatch != "" {
		return otherMatch, true
	}
	return "", false
}

// companyFirstWord returns the lower-cased first word of the company name
func companyFirstWord(companyName string) string {
	fields := strings.Fields(strings.TrimSpace(companyName))
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}
