//go:build ignore

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/cosalpha/ipo-tracker/config"
	"github.com/cosalpha/ipo-tracker/services"
)

func main() {
	fmt.Printf("🏥 IPO Tracker Source Check - %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Println(strings.Repeat("=", 50))

	cfg := config.LoadConfig()
	timeout := cfg.GetHTTPTimeout()
	today := time.Now()
	windowDays := cfg.GetPastWindowDays()

	healthScore := 0
	totalTests := 4

	// Test 1: Aggregator site
	fmt.Print("📡 Aggregator upcoming table: ")
	screener := services.NewScreenerScraper(cfg.ScreenerBaseURL, timeout, nil)
	if table := screener.FetchUpcomingTable(); table.Status.Degraded() {
		fmt.Printf("❌ FAILED (%s)\n", table.Status)
	} else {
		fmt.Printf("✅ OK (%d rows)\n", len(table.Rows))
		healthScore++
	}

	// Test 2: Report site
	fmt.Print("📈 Report table: ")
	reports := services.NewReportsScraper(cfg.ReportsBaseURL, timeout, nil)
	if table := reports.FetchReportTable(); table.Status.Degraded() {
		fmt.Printf("❌ FAILED (%s)\n", table.Status)
	} else {
		fmt.Printf("✅ OK (%d rows)\n", len(table.Rows))
		healthScore++
	}

	// Test 3: Exchange API
	fmt.Print("🏦 Exchange current issues: ")
	exchange := services.NewExchangeClient(cfg.ExchangeBaseURL, timeout, nil)
	if records, status := exchange.FetchCurrentIssues(today, windowDays); status.Degraded() {
		fmt.Printf("❌ FAILED (%s)\n", status)
	} else {
		fmt.Printf("✅ OK (%d records)\n", len(records))
		healthScore++
	}

	// Test 4: Regulator search
	fmt.Print("📄 Regulator document search: ")
	locator := services.NewSEBILocator(cfg.SEBIBaseURL, timeout, nil)
	if _, ok := locator.LocateDocument("Tata"); ok {
		fmt.Println("✅ OK (document resolved)")
		healthScore++
	} else {
		fmt.Println("⚠️ no match (generic link will be served)")
	}

	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Health: %d/%d sources reachable\n", healthScore, totalTests)
}
