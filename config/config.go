package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ServerPort        string
	LogLevel          string
	ScreenerBaseURL   string
	ReportsBaseURL    string
	ExchangeBaseURL   string
	SEBIBaseURL       string
	HTTPTimeoutSecs   string
	PastWindowDays    string
	TableCacheTTLMins string
	DocCacheTTLMins   string
}

// SimplifiedCacheConfig holds configuration for the in-memory TTL cache
type SimplifiedCacheConfig struct {
	DefaultTTL time.Duration `json:"default_ttl"`
	MaxSize    int           `json:"max_size"`
}

// DefaultCacheConfig returns default cache configuration
func DefaultCacheConfig() *SimplifiedCacheConfig {
	return &SimplifiedCacheConfig{
		DefaultTTL: 10 * time.Minute, // Source tables refresh every 10 minutes
		MaxSize:    1000,
	}
}

// GetHTTPTimeout returns the outbound HTTP timeout from environment or default
func (c *Config) GetHTTPTimeout() time.Duration {
	secs, err := strconv.Atoi(c.HTTPTimeoutSecs)
	if err != nil || secs <= 0 {
		return 15 * time.Second
	}
	return time.Duration(secs) * time.Second
}

// GetPastWindowDays returns the trailing listing-date window in calendar days.
// The window is day-based (default 90), not calendar-quarter arithmetic.
func (c *Config) GetPastWindowDays() int {
	days, err := strconv.Atoi(c.PastWindowDays)
	if err != nil || days <= 0 {
		return 90
	}
	return days
}

// GetTableCacheTTL returns how long fetched source tables are memoized
func (c *Config) GetTableCacheTTL() time.Duration {
	mins, err := strconv.Atoi(c.TableCacheTTLMins)
	if err != nil || mins <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(mins) * time.Minute
}

// GetDocCacheTTL returns how long resolved regulator document links are memoized
func (c *Config) GetDocCacheTTL() time.Duration {
	mins, err := strconv.Atoi(c.DocCacheTTLMins)
	if err != nil || mins <= 0 {
		return 60 * time.Minute
	}
	return time.Duration(mins) * time.Minute
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		logrus.Warn("Error loading .env file, using system environment variables")
	}

	return &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		ScreenerBaseURL:   getEnv("SCREENER_BASE_URL", "https://www.screener.in"),
		ReportsBaseURL:    getEnv("REPORTS_BASE_URL", "https://www.investorgain.com"),
		ExchangeBaseURL:   getEnv("EXCHANGE_BASE_URL", "https://www.nseindia.com"),
		SEBIBaseURL:       getEnv("SEBI_BASE_URL", "https://www.sebi.gov.in"),
		HTTPTimeoutSecs:   getEnv("HTTP_TIMEOUT_SECONDS", "15"),
		PastWindowDays:    getEnv("PAST_WINDOW_DAYS", "90"),
		TableCacheTTLMins: getEnv("TABLE_CACHE_TTL_MINUTES", "10"),
		DocCacheTTLMins:   getEnv("DOC_CACHE_TTL_MINUTES", "60"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
