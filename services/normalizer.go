package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cosalpha/ipo-tracker/models"
)

// ordinalSuffixRegex matches day ordinals like "1st", "22nd", "3rd", "15th"
var ordinalSuffixRegex = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)

// whitespaceRegex collapses runs of whitespace inside header and cell text
var whitespaceRegex = regexp.MustCompile(`\s+`)

// ColumnMapping maps a semantic field to the raw column-name patterns that
// may carry it in one source's table. Exact patterns match the whole
// normalized name, substring patterns match anywhere in it.
type ColumnMapping struct {
	Exact     []string
	Substring []string
}

// SourceColumns is a per-source table of semantic field to column mapping
type SourceColumns map[string]ColumnMapping

// Normalizer converts raw scraped tables into typed IPO records
type Normalizer struct {
	logger *logrus.Logger
}

// NewNormalizer creates a normalizer with the shared logger
func NewNormalizer(logger *logrus.Logger) *Normalizer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Normalizer{logger: logger}
}

// StripOrdinalSuffix removes day ordinal suffixes so "8th Dec" parses
// like "8 Dec"
func StripOrdinalSuffix(text string) string {
	return ordinalSuffixRegex.ReplaceAllString(text, "$1")
}

// normalizeMonthCase capitalizes month tokens so time.Parse accepts
// lowercase source text like "8 dec"
func normalizeMonthCase(text string) string {
	tokens := strings.Fields(text)
	for i, token := range tokens {
		if len(token) == 0 {
			continue
		}
		if token[0] >= 'a' && token[0] <= 'z' {
			tokens[i] = strings.ToUpper(token[:1]) + strings.ToLower(token[1:])
		}
	}
	return strings.Join(tokens, " ")
}

// ParseDayMonth parses "<day> <month>" or "<day> <month> <year>" text.
// An invalid year token falls back to the current year; any other token
// count or an impossible calendar date yields nil.
func ParseDayMonth(text string, fallbackYear int) *time.Time {
	cleaned := whitespaceRegex.ReplaceAllString(strings.TrimSpace(StripOrdinalSuffix(text)), " ")
	if cleaned == "" {
		return nil
	}
	cleaned = normalizeMonthCase(cleaned)

	tokens := strings.Fields(cleaned)
	year := fallbackYear
	if year == 0 {
		year = time.Now().Year()
	}

	switch len(tokens) {
	case 2:
		// year comes from the fallback
	case 3:
		parsed, err := strconv.Atoi(tokens[2])
		if err != nil {
			parsed = time.Now().Year()
		}
		year = parsed
		tokens = tokens[:2]
	default:
		return nil
	}

	candidate := tokens[0] + " " + tokens[1] + " " + strconv.Itoa(year)
	for _, layout := range []string{"2 Jan 2006", "2 January 2006"} {
		if parsed, err := time.Parse(layout, candidate); err == nil {
			return &parsed
		}
	}
	return nil
}

// listingDateLayouts is tried in order; layouts without a year get the
// current year substituted after parsing
var listingDateLayouts = []struct {
	layout  string
	hasYear bool
}{
	{"2-Jan-2006", true},
	{"2 Jan 2006", true},
	{"2-Jan-06", true},
	{"2-Jan", false},
	{"2 Jan", false},
}

// ParseListingDate parses a listing-date cell. It recognizes the literals
// "today", "tomorrow" and "yesterday", then tries a fixed ordered list of
// layouts. Empty input yields nil, never an error.
func (n *Normalizer) ParseListingDate(text string, today time.Time) *time.Time {
	cleaned := whitespaceRegex.ReplaceAllString(strings.TrimSpace(StripOrdinalSuffix(text)), " ")
	if cleaned == "" {
		return nil
	}

	switch strings.ToLower(cleaned) {
	case "today":
		day := truncateToDay(today)
		return &day
	case "tomorrow":
		day := truncateToDay(today.AddDate(0, 0, 1))
		return &day
	case "yesterday":
		day := truncateToDay(today.AddDate(0, 0, -1))
		return &day
	}

	cleaned = normalizeMonthCase(cleaned)
	for _, candidate := range listingDateLayouts {
		parsed, err := time.Parse(candidate.layout, cleaned)
		if err != nil {
			continue
		}
		if !candidate.hasYear {
			parsed = time.Date(today.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
		}
		return &parsed
	}

	n.logger.WithFields(logrus.Fields{
		"component": "normalizer",
		"value":     text,
	}).Debug("Unparseable listing date")
	return nil
}

// ParseSubscriptionWindow splits a period cell on the first hyphen and
// parses each side as a day/month token. The listing year, when known,
// is the fallback year for both ends. Text without a hyphen yields a
// single-day window. Either side may independently resolve to nil.
func (n *Normalizer) ParseSubscriptionWindow(text string, listingDate *time.Time) (start, end *time.Time) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return nil, nil
	}

	fallbackYear := 0
	if listingDate != nil {
		fallbackYear = listingDate.Year()
	}

	if idx := strings.Index(cleaned, "-"); idx >= 0 {
		start = ParseDayMonth(cleaned[:idx], fallbackYear)
		end = ParseDayMonth(cleaned[idx+1:], fallbackYear)
		return start, end
	}

	single := ParseDayMonth(cleaned, fallbackYear)
	return single, single
}

// FlattenHeader joins the non-empty, non-"nan" segments of a multi-level
// header with a single space
func FlattenHeader(segments []string) string {
	kept := make([]string, 0, len(segments))
	for _, segment := range segments {
		trimmed := strings.TrimSpace(segment)
		if trimmed == "" || strings.EqualFold(trimmed, "nan") {
			continue
		}
		kept = append(kept, whitespaceRegex.ReplaceAllString(trimmed, " "))
	}
	return strings.Join(kept, " ")
}

// isDroppedColumn reports whether a normalized column name is a serial
// number or header-less artifact column
func isDroppedColumn(name string) bool {
	lowered := strings.ToLower(strings.TrimSpace(name))
	if strings.Contains(lowered, "sr") && strings.Contains(lowered, "no") {
		return true
	}
	return strings.HasPrefix(lowered, "unnamed")
}

// DropColumns removes serial-number and unnamed columns from a table.
// Running it on already-cleaned output is a no-op.
func DropColumns(table RawTable) RawTable {
	keep := make([]int, 0, len(table.Columns))
	columns := make([]string, 0, len(table.Columns))
	for i, col := range table.Columns {
		if isDroppedColumn(col) {
			continue
		}
		keep = append(keep, i)
		columns = append(columns, col)
	}
	if len(keep) == len(table.Columns) {
		return table
	}

	rows := make([][]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		cleaned := make([]string, 0, len(keep))
		for _, idx := range keep {
			cleaned = append(cleaned, table.Cell(row, idx))
		}
		rows = append(rows, cleaned)
	}
	return RawTable{Columns: columns, Rows: rows, Status: table.Status}
}

// matchColumn reports whether a normalized column name satisfies a mapping
func matchColumn(name string, mapping ColumnMapping) bool {
	lowered := strings.ToLower(strings.TrimSpace(name))
	for _, exact := range mapping.Exact {
		if lowered == strings.ToLower(exact) {
			return true
		}
	}
	for _, sub := range mapping.Substring {
		if strings.Contains(lowered, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

// ResolveColumns maps each semantic field of a source mapping to a column
// index. A missing required field means the table shape is unrecognized.
func ResolveColumns(table RawTable, mapping SourceColumns, required []string) (map[string]int, bool) {
	resolved := make(map[string]int, len(mapping))
	for field, columnMapping := range mapping {
		idx := table.ColumnIndex(func(name string) bool {
			return matchColumn(name, columnMapping)
		})
		if idx >= 0 {
			resolved[field] = idx
		}
	}
	for _, field := range required {
		if _, ok := resolved[field]; !ok {
			return resolved, false
		}
	}
	return resolved, true
}

// IsSMEName reports whether a company name carries the SME marker and
// should be excluded from equity views
func IsSMEName(name string) bool {
	return strings.Contains(strings.ToLower(name), "sme")
}

// NormalizeCompanyName produces the merge/search key form of a company name
func NormalizeCompanyName(name string) string {
	return strings.ToLower(whitespaceRegex.ReplaceAllString(strings.TrimSpace(name), " "))
}

// optionalText returns nil for empty or placeholder cell text
func optionalText(text string) *string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || strings.EqualFold(trimmed, "nan") || trimmed == "-" || trimmed == "--" {
		return nil
	}
	return &trimmed
}

// Classify assigns the bucket for a record given today's date and the
// trailing past window in calendar days. Records lacking the dates a
// bucket needs fall through to the next rule, ending at unknown.
func Classify(record models.IPORecord, today time.Time, pastWindowDays int) models.Classification {
	day := truncateToDay(today)

	if record.SubscriptionStart != nil && record.SubscriptionEnd != nil {
		start := truncateToDay(*record.SubscriptionStart)
		end := truncateToDay(*record.SubscriptionEnd)
		if !day.Before(start) && !day.After(end) {
			return models.ClassificationOngoing
		}
	}
	if record.SubscriptionStart != nil {
		start := truncateToDay(*record.SubscriptionStart)
		if start.After(day) {
			return models.ClassificationUpcoming
		}
	}
	if record.ListingDate != nil {
		listed := truncateToDay(*record.ListingDate)
		windowStart := day.AddDate(0, 0, -pastWindowDays)
		if !listed.Before(windowStart) && !listed.After(day) {
			return models.ClassificationPast
		}
	}
	return models.ClassificationUnknown
}

// truncateToDay drops the time-of-day component in UTC
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NormalizeTable converts a cleaned raw table into records using a source
// column mapping. Rows without a company name are dropped. Classification
// is computed from the parsed dates and today.
func (n *Normalizer) NormalizeTable(table RawTable, mapping SourceColumns, required []string, today time.Time, pastWindowDays int) ([]models.IPORecord, bool) {
	cleaned := DropColumns(table)
	resolved, ok := ResolveColumns(cleaned, mapping, required)
	if !ok {
		n.logger.WithFields(logrus.Fields{
			"component": "normalizer",
			"columns":   cleaned.Columns,
		}).Warn("Table shape not recognized, required columns missing")
		return nil, false
	}

	records := make([]models.IPORecord, 0, len(cleaned.Rows))
	for _, row := range cleaned.Rows {
		name := strings.TrimSpace(cleaned.Cell(row, resolvedIndex(resolved, "name")))
		if name == "" {
			continue
		}

		record := models.IPORecord{CompanyName: name}

		if idx, ok := resolved["listing_date"]; ok {
			record.ListingDate = n.ParseListingDate(cleaned.Cell(row, idx), today)
		}
		if idx, ok := resolved["subscription_period"]; ok {
			record.SubscriptionStart, record.SubscriptionEnd = n.ParseSubscriptionWindow(cleaned.Cell(row, idx), record.ListingDate)
		}
		if idx, ok := resolved["market_cap"]; ok {
			record.MarketCap = optionalText(cleaned.Cell(row, idx))
		}
		if idx, ok := resolved["price_band"]; ok {
			record.PriceBand = optionalText(cleaned.Cell(row, idx))
		}
		if idx, ok := resolved["ipo_price"]; ok {
			record.IPOPrice = optionalText(cleaned.Cell(row, idx))
		}
		if idx, ok := resolved["current_price"]; ok {
			record.CurrentPrice = optionalText(cleaned.Cell(row, idx))
		}
		if idx, ok := resolved["change_percent"]; ok {
			record.ChangePercent = optionalText(cleaned.Cell(row, idx))
		}

		record.Classification = Classify(record, today, pastWindowDays)
		records = append(records, record)
	}
	return records, true
}

func resolvedIndex(resolved map[string]int, field string) int {
	if idx, ok := resolved[field]; ok {
		return idx
	}
	return -1
}
