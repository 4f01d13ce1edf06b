package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const filingsPageHTML = `
<html><body>
<table>
  <tr><td><a href="/filings/public-issues/acme-drhp-2025.html">Acme Industries Limited - DRHP</a></td></tr>
  <tr><td><a href="/filings/public-issues/acme-rhp-2025.html">Acme Industries Limited - RHP</a></td></tr>
  <tr><td><a href="/filings/public-issues/beta-notice.html">Beta Traders - Addendum</a></td></tr>
  <tr><td><a href="/other/path/acme.html">Acme press release</a></td></tr>
</table>
</body></html>`

func TestCollectFilingLinks(t *testing.T) {
	document, err := goquery.NewDocumentFromReader(strings.NewReader(filingsPageHTML))
	if err != nil {
		t.Fatal(err)
	}

	links := CollectFilingLinks(document, "https://regulator.example")
	if len(links) != 3 {
		t.Fatalf("links = %d, want 3 (non-filing anchors excluded)", len(links))
	}
	if links[0].URL != "https://regulator.example/filings/public-issues/acme-drhp-2025.html" {
		t.Errorf("relative href not resolved: %q", links[0].URL)
	}
}

func TestPickDocumentLinkPrefersFinalProspectus(t *testing.T) {
	links := []documentLink{
		{Title: "Acme Industries Limited - DRHP", URL: "https://x/drhp"},
		{Title: "Acme Industries Limited - RHP", URL: "https://x/rhp"},
		{Title: "Acme Industries Limited - Addendum", URL: "https://x/other"},
	}

	url, ok := pickDocumentLink(links, "acme")
	if !ok {
		t.Fatal("expected a match")
	}
	if url != "https://x/rhp" {
		t.Errorf("url = %q, want the RHP link", url)
	}
}

func TestPickDocumentLinkDraftBeatsOther(t *testing.T) {
	links := []documentLink{
		{Title: "Acme Industries Limited - Corrigendum", URL: "https://x/other"},
		{Title: "Acme Industries Limited - Draft Red Herring Prospectus", URL: "https://x/draft"},
	}

	url, ok := pickDocumentLink(links, "acme")
	if !ok {
		t.Fatal("expected a match")
	}
	if url != "https://x/draft" {
		t.Errorf("url = %q, want the draft link", url)
	}
}

func TestPickDocumentLinkRequiresTitleMatch(t *testing.T) {
	links := []documentLink{
		{Title: "Beta Traders - RHP", URL: "https://x/beta"},
	}

	if _, ok := pickDocumentLink(links, "acme"); ok {
		t.Error("expected no match for a different company")
	}
}

func TestSearchURLEncodesCompanyName(t *testing.T) {
	locator := NewSEBILocator("https://regulator.example", testTimeout, nil)
	url := locator.SearchURL("Acme Industries Limited")
	if !strings.Contains(url, "search=Acme+Industries+Limited") {
		t.Errorf("url = %q, want encoded company name", url)
	}
	if !strings.HasPrefix(url, "https://regulator.example/") {
		t.Errorf("url = %q, want base URL prefix", url)
	}
}

func TestLocateDocumentWalksCategories(t *testing.T) {
	var requestedCategories []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		smid := r.URL.Query().Get("smid")
		requestedCategories = append(requestedCategories, smid)
		w.Header().Set("Content-Type", "text/html")
		if smid == "10" {
			w.Write([]byte(filingsPageHTML))
			return
		}
		w.Write([]byte("<html><body><table></table></body></html>"))
	}))
	defer server.Close()

	locator := NewSEBILocator(server.URL, testTimeout, nil)
	url, ok := locator.LocateDocument("Acme Industries Limited")
	if !ok {
		t.Fatal("expected a resolved document")
	}
	if !strings.Contains(url, "acme-rhp-2025.html") {
		t.Errorf("url = %q, want the RHP filing", url)
	}
	if len(requestedCategories) < 2 || requestedCategories[0] != "11" || requestedCategories[1] != "10" {
		t.Errorf("categories tried = %v, want final prospectus first then drafts", requestedCategories)
	}
}

func TestLocateDocumentNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><table></table></body></html>"))
	}))
	defer server.Close()

	locator := NewSEBILocator(server.URL, testTimeout, nil)
	if _, ok := locator.LocateDocument("Acme Industries Limited"); ok {
		t.Error("expected no resolution from empty listings")
	}
}
