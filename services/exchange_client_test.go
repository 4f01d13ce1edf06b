package services

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cosalpha/ipo-tracker/shared"
)

func TestExchangeClientWarmUpBeforeData(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/" {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc"})
			w.Write([]byte("<html></html>"))
			return
		}
		if cookie, err := r.Cookie("session"); err != nil || cookie.Value != "abc" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"companyName":"Acme Ltd","issueStartDate":"08-Dec-2025","issueEndDate":"15-Dec-2025"}]`))
	}))
	defer server.Close()

	client := NewExchangeClient(server.URL, testTimeout, nil)
	today := date(2025, time.December, 10)

	records, status := client.FetchCurrentIssues(today, 90)
	if status != shared.FetchOK {
		t.Fatalf("status = %q, want ok", status)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if paths[0] != "/" {
		t.Errorf("first request path = %q, want warm-up against the root", paths[0])
	}
	record := records[0]
	if record.CompanyName != "Acme Ltd" {
		t.Errorf("name = %q", record.CompanyName)
	}
	if !equalDatePtr(record.SubscriptionStart, ptrDate(2025, time.December, 8)) {
		t.Errorf("start = %v", record.SubscriptionStart)
	}
	if record.Classification != "ongoing" {
		t.Errorf("classification = %q, want ongoing", record.Classification)
	}
}

func TestExchangeClientWrappedShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.Write([]byte("<html></html>"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"companyName":"Beta Industries","issueStartDate":"20-Dec-2025"}]}`))
	}))
	defer server.Close()

	client := NewExchangeClient(server.URL, testTimeout, nil)
	records, status := client.FetchUpcomingIssues(date(2025, time.December, 10), 90)
	if status != shared.FetchOK {
		t.Fatalf("status = %q, want ok", status)
	}
	if len(records) != 1 || records[0].CompanyName != "Beta Industries" {
		t.Fatalf("records = %+v", records)
	}
	if records[0].Classification != "upcoming" {
		t.Errorf("classification = %q, want upcoming", records[0].Classification)
	}
}

func TestExchangeClientUnrecognizedShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.Write([]byte("<html></html>"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`"maintenance"`))
	}))
	defer server.Close()

	client := NewExchangeClient(server.URL, testTimeout, nil)
	records, status := client.FetchCurrentIssues(date(2025, time.December, 10), 90)
	if status != shared.FetchUnrecognized {
		t.Errorf("status = %q, want unrecognized", status)
	}
	if len(records) != 0 {
		t.Errorf("records = %d, want 0", len(records))
	}
}

func TestExchangeClientPastIssuesParamSpellings(t *testing.T) {
	var seenParams []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.Write([]byte("<html></html>"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("from_date") != "" {
			seenParams = append(seenParams, "from_date")
			w.Write([]byte(`[]`))
			return
		}
		if r.URL.Query().Get("fromDate") != "" {
			seenParams = append(seenParams, "fromDate")
			w.Write([]byte(`[{"companyName":"Gamma Corp","listingDate":"01-Oct-2025"}]`))
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewExchangeClient(server.URL, testTimeout, nil)
	today := date(2025, time.December, 10)
	records, status := client.FetchPastIssues(today.AddDate(0, 0, -90), today, today, 90)
	if status != shared.FetchOK {
		t.Fatalf("status = %q, want ok", status)
	}
	if len(records) != 1 || records[0].CompanyName != "Gamma Corp" {
		t.Fatalf("records = %+v", records)
	}
	if len(seenParams) != 2 || seenParams[0] != "from_date" || seenParams[1] != "fromDate" {
		t.Errorf("param spellings tried = %v, want snake_case first then camelCase", seenParams)
	}
	if records[0].Classification != "past" {
		t.Errorf("classification = %q, want past", records[0].Classification)
	}
}

func TestExchangeClientServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewExchangeClient(server.URL, testTimeout, nil)
	records, status := client.FetchCurrentIssues(date(2025, time.December, 10), 90)
	if status != shared.FetchNoData {
		t.Errorf("status = %q, want no_data", status)
	}
	if len(records) != 0 {
		t.Errorf("records = %d, want 0", len(records))
	}
}
