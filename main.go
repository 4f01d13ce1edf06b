package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"

	"github.com/cosalpha/ipo-tracker/config"
	"github.com/cosalpha/ipo-tracker/handlers"
	"github.com/cosalpha/ipo-tracker/jobs"
	"github.com/cosalpha/ipo-tracker/services"
)

func main() {
	// Load config
	cfg := config.LoadConfig()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	httpTimeout := cfg.GetHTTPTimeout()
	appLogger := logrus.StandardLogger()

	// Initialize source services
	normalizer := services.NewNormalizer(appLogger)
	screenerScraper := services.NewScreenerScraper(cfg.ScreenerBaseURL, httpTimeout, appLogger)
	reportsScraper := services.NewReportsScraper(cfg.ReportsBaseURL, httpTimeout, appLogger)
	exchangeClient := services.NewExchangeClient(cfg.ExchangeBaseURL, httpTimeout, appLogger)
	sebiLocator := services.NewSEBILocator(cfg.SEBIBaseURL, httpTimeout, appLogger)

	dashboardService := services.NewDashboardService(
		screenerScraper,
		reportsScraper,
		exchangeClient,
		normalizer,
		cfg.GetPastWindowDays(),
		appLogger,
	)

	// Initialize caching layer
	cacheConfig := config.DefaultCacheConfig()
	cacheService := services.NewCacheServiceWithConfig(cacheConfig.DefaultTTL, cacheConfig.MaxSize)
	cachedDashboard := services.NewCachedDashboardService(
		dashboardService,
		sebiLocator,
		cacheService,
		cfg.GetTableCacheTTL(),
		cfg.GetDocCacheTTL(),
	)

	log.Println("IPO tracker services initialized:")
	log.Printf("  - Aggregator scraper (%s)", cfg.ScreenerBaseURL)
	log.Printf("  - Report site scraper (%s)", cfg.ReportsBaseURL)
	log.Printf("  - Exchange API client (%s)", cfg.ExchangeBaseURL)
	log.Printf("  - Regulator document locator (%s)", cfg.SEBIBaseURL)
	log.Printf("  - Snapshot cache (TTL: %v), document cache (TTL: %v)",
		cfg.GetTableCacheTTL(), cfg.GetDocCacheTTL())

	// Initialize handlers
	ipoHandler := handlers.NewIPOHandler(cachedDashboard)
	analysisHandler := handlers.NewAnalysisHandler(cachedDashboard)
	adminHandler := handlers.NewAdminHandler(cachedDashboard, dashboardService)

	// Start background snapshot refresh
	refreshJob := jobs.NewSnapshotRefreshJob(cachedDashboard, cfg.GetTableCacheTTL())
	stop := make(chan struct{})
	go refreshJob.Start(stop)

	// Setup Fiber
	app := fiber.New()

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})

	// Routes
	api := app.Group("/api/v1")

	// IPO Routes
	api.Get("/ipos/ongoing", ipoHandler.GetOngoingIPOs)
	api.Get("/ipos/upcoming", ipoHandler.GetUpcomingIPOs)
	api.Get("/ipos/past", ipoHandler.GetPastIPOs)

	// Company Routes
	api.Get("/companies/:name/analysis", analysisHandler.GetAnalysis)
	api.Get("/companies/:name/document", analysisHandler.GetDocument)

	// Admin Routes
	admin := api.Group("/admin")
	admin.Post("/cache/refresh", adminHandler.RefreshCache)
	admin.Get("/cache/stats", adminHandler.GetCacheStats)

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
