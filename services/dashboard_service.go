package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cosalpha/ipo-tracker/models"
)

// DashboardService assembles classification buckets from the three
// sources. Every call builds records fresh; memoization lives in the
// cached wrapper, not here.
type DashboardService struct {
	screener       *ScreenerScraper
	reports        *ReportsScraper
	exchange       *ExchangeClient
	normalizer     *Normalizer
	pastWindowDays int
	logger         *logrus.Logger

	// nowFunc is swapped in tests to pin classification boundaries
	nowFunc func() time.Time
}

// NewDashboardService wires the source services together
func NewDashboardService(screener *ScreenerScraper, reports *ReportsScraper, exchange *ExchangeClient, normalizer *Normalizer, pastWindowDays int, logger *logrus.Logger) *DashboardService {
	if logger == nil {
		logger = logrus.New()
	}
	return &DashboardService{
		screener:       screener,
		reports:        reports,
		exchange:       exchange,
		normalizer:     normalizer,
		pastWindowDays: pastWindowDays,
		logger:         logger,
		nowFunc:        time.Now,
	}
}

// fetchAll pulls from every source and merges by normalized company name.
// A degraded source contributes nothing but never fails the snapshot.
func (s *DashboardService) fetchAll() (models.Snapshot, bool) {
	today := s.nowFunc()
	degraded := false

	merged := make(map[string]models.IPORecord)
	order := make([]string, 0)

	add := func(records []models.IPORecord) {
		for _, record := range records {
			if IsSMEName(record.CompanyName) {
				continue
			}
			key := NormalizeCompanyName(record.CompanyName)
			if existing, ok := merged[key]; ok {
				merged[key] = mergeRecords(existing, record)
				continue
			}
			merged[key] = record
			order = append(order, key)
		}
	}

	upcoming := s.screener.FetchUpcomingTable()
	if upcoming.Status.Degraded() {
		degraded = true
	} else {
		records, ok := s.normalizer.NormalizeTable(upcoming, s.screener.UpcomingColumns(), s.screener.UpcomingRequired(), today, s.pastWindowDays)
		if !ok {
			degraded = true
		} else {
			add(records)
		}
	}

	recent := s.screener.FetchRecentTable()
	if recent.Status.Degraded() {
		degraded = true
	} else {
		records, ok := s.normalizer.NormalizeTable(recent, s.screener.RecentColumns(), s.screener.RecentRequired(), today, s.pastWindowDays)
		if !ok {
			degraded = true
		} else {
			add(records)
		}
	}

	report := s.reports.FetchReportTable()
	if report.Status.Degraded() {
		degraded = true
	} else {
		records, ok := s.normalizer.NormalizeTable(report, s.reports.Columns(), s.reports.Required(), today, s.pastWindowDays)
		if !ok {
			degraded = true
		} else {
			add(records)
		}
	}

	current, currentStatus := s.exchange.FetchCurrentIssues(today, s.pastWindowDays)
	if currentStatus.Degraded() {
		degraded = true
	}
	add(current)

	announced, announcedStatus := s.exchange.FetchUpcomingIssues(today, s.pastWindowDays)
	if announcedStatus.Degraded() {
		degraded = true
	}
	add(announced)

	past, pastStatus := s.exchange.FetchPastIssues(today.AddDate(0, 0, -s.pastWindowDays), today, today, s.pastWindowDays)
	if pastStatus.Degraded() {
		degraded = true
	}
	add(past)

	records := make([]models.IPORecord, 0, len(order))
	for _, key := range order {
		records = append(records, merged[key])
	}

	snapshot := models.NewSnapshot("dashboard", records)
	s.logger.WithFields(logrus.Fields{
		"component":   "dashboard_service",
		"snapshot_id": snapshot.ID.String(),
		"records":     len(records),
		"degraded":    degraded,
	}).Info("Assembled dashboard snapshot")
	return snapshot, degraded
}

// mergeRecords fills gaps in the earlier record with fields from the
// later source without overwriting what is already known
func mergeRecords(base, extra models.IPORecord) models.IPORecord {
	if base.ListingDate == nil {
		base.ListingDate = extra.ListingDate
	}
	if base.SubscriptionStart == nil {
		base.SubscriptionStart = extra.SubscriptionStart
	}
	if base.SubscriptionEnd == nil {
		base.SubscriptionEnd = extra.SubscriptionEnd
	}
	if base.MarketCap == nil {
		base.MarketCap = extra.MarketCap
	}
	if base.PriceBand == nil {
		base.PriceBand = extra.PriceBand
	}
	if base.IPOPrice == nil {
		base.IPOPrice = extra.IPOPrice
	}
	if base.CurrentPrice == nil {
		base.CurrentPrice = extra.CurrentPrice
	}
	if base.ChangePercent == nil {
		base.ChangePercent = extra.ChangePercent
	}
	return base
}

// BuildBucketView fetches all sources and filters the snapshot down to
// one classification bucket, optionally narrowed by a search term
func (s *DashboardService) BuildBucketView(bucket models.Classification, search string) models.BucketView {
	snapshot, degraded := s.fetchAll()
	return s.viewFromSnapshot(snapshot, degraded, bucket, search)
}

// viewFromSnapshot filters an assembled snapshot into one bucket view.
// The cached wrapper calls this against a memoized snapshot.
func (s *DashboardService) viewFromSnapshot(snapshot models.Snapshot, degraded bool, bucket models.Classification, search string) models.BucketView {
	today := truncateToDay(s.nowFunc())
	needle := NormalizeCompanyName(search)

	records := make([]models.IPORecord, 0)
	for _, record := range snapshot.Records {
		// classification is recomputed per render, never stored
		if Classify(record, today, s.pastWindowDays) != bucket {
			continue
		}
		if needle != "" && !strings.Contains(NormalizeCompanyName(record.CompanyName), needle) {
			continue
		}
		record.Classification = bucket
		records = append(records, record)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return NormalizeCompanyName(records[i].CompanyName) < NormalizeCompanyName(records[j].CompanyName)
	})

	view := models.BucketView{
		Bucket:     bucket,
		SnapshotID: snapshot.ID,
		Records:    records,
	}
	if bucket == models.ClassificationPast {
		windowStart := today.AddDate(0, 0, -s.pastWindowDays)
		view.WindowCaption = fmt.Sprintf("Listed between %s and %s", windowStart.Format("02 Jan 2006"), today.Format("02 Jan 2006"))
	}
	if degraded {
		view.Advisory = "Some data sources were unavailable, results may be incomplete"
	}
	return view
}

// FetchSnapshot exposes the raw merged snapshot for the cached wrapper
func (s *DashboardService) FetchSnapshot() (models.Snapshot, bool) {
	return s.fetchAll()
}

// FindRecord looks up one company in a snapshot by normalized name
func (s *DashboardService) FindRecord(snapshot models.Snapshot, companyName string) (models.IPORecord, bool) {
	key := NormalizeCompanyName(companyName)
	for _, record := range snapshot.Records {
		if NormalizeCompanyName(record.CompanyName) == key {
			return record, true
		}
	}
	return models.IPORecord{}, false
}

// SourceMetrics gathers per-source fetch counters for the admin surface
func (s *DashboardService) SourceMetrics() []map[string]interface{} {
	return []map[string]interface{}{
		s.screener.Metrics().GetSnapshot(),
		s.reports.Metrics().GetSnapshot(),
		s.exchange.Metrics().GetSnapshot(),
	}
}
