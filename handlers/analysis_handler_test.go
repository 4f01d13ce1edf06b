package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/cosalpha/ipo-tracker/services"
)

func newAnalysisApp(t *testing.T) *fiber.App {
	t.Helper()

	regulator := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><table></table></body></html>"))
	}))
	t.Cleanup(regulator.Close)

	locator := services.NewSEBILocator(regulator.URL, 5*time.Second, nil)
	cache := services.NewCacheServiceWithConfig(time.Minute, 100)
	cached := services.NewCachedDashboardService(nil, locator, cache, time.Minute, time.Minute)
	handler := NewAnalysisHandler(cached)

	app := fiber.New()
	app.Get("/api/v1/companies/:name/analysis", handler.GetAnalysis)
	app.Get("/api/v1/companies/:name/document", handler.GetDocument)
	return app
}

func TestGetAnalysisResponse(t *testing.T) {
	app := newAnalysisApp(t)

	request := httptest.NewRequest("GET", "/api/v1/companies/Acme%20Industries/analysis", nil)
	response, err := app.Test(request, 15000)
	if err != nil {
		t.Fatal(err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", response.StatusCode)
	}

	body, _ := io.ReadAll(response.Body)
	var payload struct {
		Success bool `json:"success"`
		Data    struct {
			CompanyName string `json:"company_name"`
			DocumentURL string `json:"document_url"`
			Resolved    bool   `json:"resolved"`
			Sections    []struct {
				Title string `json:"title"`
			} `json:"sections"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !payload.Success {
		t.Error("success = false")
	}
	if payload.Data.CompanyName != "Acme Industries" {
		t.Errorf("company name = %q", payload.Data.CompanyName)
	}
	if payload.Data.Resolved {
		t.Error("no filings served, expected unresolved")
	}
	if len(payload.Data.Sections) == 0 {
		t.Error("expected template sections")
	}
}

func TestGetDocumentFallsBackToSearchLink(t *testing.T) {
	app := newAnalysisApp(t)

	request := httptest.NewRequest("GET", "/api/v1/companies/Acme/document", nil)
	response, err := app.Test(request, 15000)
	if err != nil {
		t.Fatal(err)
	}
	defer response.Body.Close()

	body, _ := io.ReadAll(response.Body)
	var payload struct {
		Success bool `json:"success"`
		Data    struct {
			URL      string `json:"url"`
			Resolved bool   `json:"resolved"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if payload.Data.Resolved {
		t.Error("expected unresolved document")
	}
	if !strings.Contains(payload.Data.URL, "search=") {
		t.Errorf("url = %q, want generic search link", payload.Data.URL)
	}
}
