package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/cosalpha/ipo-tracker/models"
)

// CacheEntry represents a cached item with expiration
type CacheEntry struct {
	Data      interface{}
	ExpiresAt time.Time
}

// IsExpired checks if the cache entry has expired
func (ce *CacheEntry) IsExpired() bool {
	return time.Now().After(ce.ExpiresAt)
}

// CacheService provides in-memory caching with TTL and automatic cleanup.
// It memoizes fetch results so repeated renders inside the TTL window
// skip the network call entirely.
type CacheService struct {
	cache      map[string]*CacheEntry
	mutex      sync.RWMutex
	defaultTTL time.Duration
	maxSize    int
}

// NewCacheService creates a new cache service with default TTL
func NewCacheService() *CacheService {
	cs := &CacheService{
		cache:      make(map[string]*CacheEntry),
		defaultTTL: 5 * time.Minute,
		maxSize:    1000,
	}

	// Start cleanup goroutine
	go cs.cleanupExpired()

	return cs
}

// NewCacheServiceWithConfig creates a cache service with custom configuration
func NewCacheServiceWithConfig(defaultTTL time.Duration, maxSize int) *CacheService {
	cs := &CacheService{
		cache:      make(map[string]*CacheEntry),
		defaultTTL: defaultTTL,
		maxSize:    maxSize,
	}

	go cs.cleanupExpired()

	return cs
}

// Get retrieves a value from cache
func (cs *CacheService) Get(key string) (interface{}, bool) {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	entry, exists := cs.cache[key]
	if !exists || entry.IsExpired() {
		return nil, false
	}

	return entry.Data, true
}

// Set stores a value in cache with default TTL
func (cs *CacheService) Set(key string, value interface{}) {
	cs.SetWithTTL(key, value, cs.defaultTTL)
}

// SetWithTTL stores a value in cache with custom TTL
func (cs *CacheService) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	if len(cs.cache) >= cs.maxSize {
		cs.evictOldest()
	}

	cs.cache[key] = &CacheEntry{
		Data:      value,
		ExpiresAt: time.Now().Add(ttl),
	}
}

// evictOldest removes the oldest entry from cache (simple FIFO eviction)
func (cs *CacheService) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range cs.cache {
		if oldestKey == "" || entry.ExpiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.ExpiresAt
		}
	}

	if oldestKey != "" {
		delete(cs.cache, oldestKey)
	}
}

// Delete removes a value from cache
func (cs *CacheService) Delete(key string) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	delete(cs.cache, key)
}

// Clear removes all values from cache
func (cs *CacheService) Clear() {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	cs.cache = make(map[string]*CacheEntry)
}

// Size returns the number of items in cache
func (cs *CacheService) Size() int {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	return len(cs.cache)
}

// cleanupExpired removes expired entries from cache
func (cs *CacheService) cleanupExpired() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cs.mutex.Lock()
		for key, entry := range cs.cache {
			if entry.IsExpired() {
				delete(cs.cache, key)
			}
		}
		cs.mutex.Unlock()
	}
}

// cachedSnapshot pairs a memoized snapshot with its degraded flag so a
// cache hit reproduces the advisory behavior of the original fetch
type cachedSnapshot struct {
	Snapshot models.Snapshot
	Degraded bool
}

// CachedDashboardService wraps DashboardService with caching capabilities
type CachedDashboardService struct {
	dashboard *DashboardService
	locator   *SEBILocator
	cache     *CacheService

	snapshotTTL time.Duration
	documentTTL time.Duration
}

// NewCachedDashboardService creates a new cached dashboard service
func NewCachedDashboardService(dashboard *DashboardService, locator *SEBILocator, cache *CacheService, snapshotTTL, documentTTL time.Duration) *CachedDashboardService {
	return &CachedDashboardService{
		dashboard:   dashboard,
		locator:     locator,
		cache:       cache,
		snapshotTTL: snapshotTTL,
		documentTTL: documentTTL,
	}
}

// getSnapshot returns the memoized merged snapshot, fetching on a miss.
// The key is the operation alone: the snapshot has no arguments.
func (cds *CachedDashboardService) getSnapshot() (models.Snapshot, bool) {
	cacheKey := "dashboard_snapshot"

	if cached, found := cds.cache.Get(cacheKey); found {
		if entry, ok := cached.(cachedSnapshot); ok {
			return entry.Snapshot, entry.Degraded
		}
	}

	snapshot, degraded := cds.dashboard.FetchSnapshot()
	cds.cache.SetWithTTL(cacheKey, cachedSnapshot{Snapshot: snapshot, Degraded: degraded}, cds.snapshotTTL)
	return snapshot, degraded
}

// GetBucketView returns one classification tab, using the cached snapshot
// when possible. Search filtering runs on the cached records, so a new
// search term never triggers a refetch.
func (cds *CachedDashboardService) GetBucketView(bucket models.Classification, search string) models.BucketView {
	snapshot, degraded := cds.getSnapshot()
	view := cds.dashboard.viewFromSnapshot(snapshot, degraded, bucket, search)
	// each row carries its offering-document link; resolution is memoized
	// per company so only the first render pays for the lookup
	for i := range view.Records {
		url, _ := cds.GetDocumentURL(view.Records[i].CompanyName)
		view.Records[i].DocumentURL = &url
	}
	return view
}

// GetDocumentURL resolves a company's offering-document link, memoized
// per company. A failed resolution falls back to the generic search URL
// and is cached too, so repeated misses stay cheap.
func (cds *CachedDashboardService) GetDocumentURL(companyName string) (string, bool) {
	cacheKey := fmt.Sprintf("document_url:%s", NormalizeCompanyName(companyName))

	if cached, found := cds.cache.Get(cacheKey); found {
		if entry, ok := cached.(models.DocumentLookup); ok {
			return entry.URL, entry.Resolved
		}
	}

	url, resolved := cds.locator.LocateDocument(companyName)
	if !resolved {
		url = cds.locator.SearchURL(companyName)
	}
	cds.cache.SetWithTTL(cacheKey, models.DocumentLookup{URL: url, Resolved: resolved}, cds.documentTTL)
	return url, resolved
}

// GetAnalysis builds the analysis panel for a company, attaching the
// resolved or generic document link. When the company is present in the
// memoized snapshot the panel carries its canonical name rather than
// whatever casing arrived in the URL.
func (cds *CachedDashboardService) GetAnalysis(companyName string) models.AnalysisTemplate {
	if cached, found := cds.cache.Get("dashboard_snapshot"); found {
		if entry, ok := cached.(cachedSnapshot); ok {
			if record, known := cds.dashboard.FindRecord(entry.Snapshot, companyName); known {
				companyName = record.CompanyName
			}
		}
	}
	url, resolved := cds.GetDocumentURL(companyName)
	return BuildAnalysisTemplate(companyName, url, resolved)
}

// InvalidateSnapshot drops the memoized snapshot so the next render refetches
func (cds *CachedDashboardService) InvalidateSnapshot() {
	cds.cache.Delete("dashboard_snapshot")
}

// GetCacheStats returns cache statistics
func (cds *CachedDashboardService) GetCacheStats() map[string]interface{} {
	return map[string]interface{}{
		"size": cds.cache.Size(),
		"type": "in-memory",
	}
}

// WarmupCache pre-loads the merged snapshot into cache
func (cds *CachedDashboardService) WarmupCache() {
	cds.getSnapshot()
}
