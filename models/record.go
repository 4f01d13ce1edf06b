package models

import (
	"time"

	"github.com/google/uuid"
)

// Classification is the render-time bucket assigned to an IPO record.
// It is a pure function of the record's dates and "today"; it is never stored.
type Classification string

const (
	ClassificationOngoing  Classification = "ongoing"
	ClassificationUpcoming Classification = "upcoming"
	ClassificationPast     Classification = "past"
	ClassificationUnknown  Classification = "unknown"
)

// IPORecord is one normalized row of IPO data. Fields are populated
// opportunistically depending on the source; nil means "not known".
type IPORecord struct {
	CompanyName string `json:"company_name"`

	ListingDate       *time.Time `json:"listing_date"`
	SubscriptionStart *time.Time `json:"subscription_start"`
	SubscriptionEnd   *time.Time `json:"subscription_end"`

	// Display text, not numeric: units and currency vary by source
	MarketCap     *string `json:"market_cap"`
	PriceBand     *string `json:"price_band"`
	IPOPrice      *string `json:"ipo_price"`
	CurrentPrice  *string `json:"current_price"`
	ChangePercent *string `json:"change_percent"`

	Classification Classification `json:"classification"`
	DocumentURL    *string        `json:"document_url"`
}

// Snapshot groups the records produced by one fetch of one source.
// Records live for a single render cycle; the snapshot ID ties log lines
// and cache entries from the same cycle together.
type Snapshot struct {
	ID        uuid.UUID   `json:"id"`
	Source    string      `json:"source"`
	FetchedAt time.Time   `json:"fetched_at"`
	Records   []IPORecord `json:"records"`
}

// NewSnapshot creates a snapshot for the given source and records
func NewSnapshot(source string, records []IPORecord) Snapshot {
	return Snapshot{
		ID:        uuid.New(),
		Source:    source,
		FetchedAt: time.Now(),
		Records:   records,
	}
}

// BucketView is one classification tab of the dashboard
type BucketView struct {
	Bucket     Classification `json:"bucket"`
	SnapshotID uuid.UUID      `json:"snapshot_id"`
	Records    []IPORecord    `json:"records"`

	// Caption for windowed buckets, e.g. "Listing dates between X and Y"
	WindowCaption string `json:"window_caption,omitempty"`

	// Advisory message when a source fetch degraded to an empty result
	Advisory string `json:"advisory,omitempty"`
}
