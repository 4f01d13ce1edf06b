package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/cosalpha/ipo-tracker/shared"
)

const upcomingPageHTML = `
<html><body>
<table>
  <thead><tr><th>Index</th><th>Value</th></tr></thead>
  <tbody><tr><td>NIFTY</td><td>24000</td></tr></tbody>
</table>
<table>
  <thead><tr><th>Sr. No.</th><th>Company Name</th><th>Listing Date</th><th>Subscription Dates</th><th>M.Cap (Cr)</th></tr></thead>
  <tbody>
    <tr><td>1</td><td>Acme Ltd</td><td>20-Dec-2025</td><td>8 Dec - 15 Dec</td><td>1,200</td></tr>
    <tr><td>2</td><td>Beta Industries</td><td>22-Dec-2025</td><td>10 Dec - 17 Dec</td><td>850</td></tr>
  </tbody>
</table>
</body></html>`

func TestSelectTableByHeaderPicksMatchingTable(t *testing.T) {
	document, err := goquery.NewDocumentFromReader(strings.NewReader(upcomingPageHTML))
	if err != nil {
		t.Fatal(err)
	}

	table := SelectTableByHeader(document, []string{"name", "date"})
	if table.Status != shared.FetchOK {
		t.Fatalf("status = %q, want ok", table.Status)
	}
	if len(table.Columns) != 5 {
		t.Fatalf("columns = %v", table.Columns)
	}
	if table.Columns[1] != "Company Name" {
		t.Errorf("column 1 = %q, want Company Name", table.Columns[1])
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(table.Rows))
	}
	if table.Rows[0][1] != "Acme Ltd" {
		t.Errorf("row 0 name = %q", table.Rows[0][1])
	}
}

func TestSelectTableByHeaderFallsBackToFirstTable(t *testing.T) {
	document, err := goquery.NewDocumentFromReader(strings.NewReader(upcomingPageHTML))
	if err != nil {
		t.Fatal(err)
	}

	table := SelectTableByHeader(document, []string{"no such header token"})
	if table.Columns[0] != "Index" {
		t.Errorf("fallback should be the first table, got columns %v", table.Columns)
	}
}

func TestSelectTableByHeaderNoTables(t *testing.T) {
	document, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body><p>maintenance</p></body></html>"))
	if err != nil {
		t.Fatal(err)
	}

	table := SelectTableByHeader(document, []string{"name"})
	if table.Status != shared.FetchUnrecognized {
		t.Errorf("status = %q, want unrecognized", table.Status)
	}
}

func TestSelectTableByHeaderMultiRowHeader(t *testing.T) {
	html := `
<table>
  <thead>
    <tr><th>Company</th><th>Subscription</th></tr>
    <tr><th>Name</th><th>Dates</th></tr>
  </thead>
  <tbody><tr><td>Acme Ltd</td><td>8 Dec - 15 Dec</td></tr></tbody>
</table>`
	document, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}

	table := SelectTableByHeader(document, []string{"name"})
	if table.Columns[0] != "Company Name" {
		t.Errorf("column 0 = %q, want Company Name", table.Columns[0])
	}
	if table.Columns[1] != "Subscription Dates" {
		t.Errorf("column 1 = %q, want Subscription Dates", table.Columns[1])
	}
}

func TestScreenerScraperFetchUpcoming(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(upcomingPageHTML))
	}))
	defer server.Close()

	scraper := NewScreenerScraper(server.URL, testTimeout, nil)
	table := scraper.FetchUpcomingTable()
	if table.Status != shared.FetchOK {
		t.Fatalf("status = %q, want ok", table.Status)
	}
	if len(table.Rows) != 2 {
		t.Errorf("rows = %d, want 2", len(table.Rows))
	}
}

func TestScreenerScraperServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	scraper := NewScreenerScraper(server.URL, testTimeout, nil)
	table := scraper.FetchUpcomingTable()
	if table.Status != shared.FetchNoData {
		t.Errorf("status = %q, want no_data", table.Status)
	}
	if len(table.Rows) != 0 {
		t.Errorf("rows = %d, want 0", len(table.Rows))
	}
}
