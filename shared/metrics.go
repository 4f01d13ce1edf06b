package shared

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ServiceMetrics tracks fetch and parse outcomes for a source service
type ServiceMetrics struct {
	ServiceName        string        `json:"service_name"`
	TotalRequests      int64         `json:"total_requests"`
	SuccessfulRequests int64         `json:"successful_requests"`
	DegradedRequests   int64         `json:"degraded_requests"`
	TotalFetchTime     time.Duration `json:"total_fetch_time"`
	LastUpdated        time.Time     `json:"last_updated"`
	mutex              sync.RWMutex
}

// NewServiceMetrics creates a new metrics tracker for a service
func NewServiceMetrics(serviceName string) *ServiceMetrics {
	return &ServiceMetrics{
		ServiceName: serviceName,
		LastUpdated: time.Now(),
	}
}

// RecordFetch records a fetch with its outcome and elapsed time.
// A degraded fetch (NoData or Unrecognized) is counted, not raised.
func (m *ServiceMetrics) RecordFetch(status FetchStatus, elapsed time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.TotalRequests++
	m.TotalFetchTime += elapsed
	if status.Degraded() {
		m.DegradedRequests++
	} else {
		m.SuccessfulRequests++
	}
	m.LastUpdated = time.Now()
}

// GetSuccessRate returns the success rate as a percentage
func (m *ServiceMetrics) GetSuccessRate() float64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.TotalRequests == 0 {
		return 0.0
	}
	return float64(m.SuccessfulRequests) / float64(m.TotalRequests) * 100.0
}

// GetSnapshot returns the current counters for diagnostics endpoints
func (m *ServiceMetrics) GetSnapshot() map[string]interface{} {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return map[string]interface{}{
		"service_name":        m.ServiceName,
		"total_requests":      m.TotalRequests,
		"successful_requests": m.SuccessfulRequests,
		"degraded_requests":   m.DegradedRequests,
		"total_fetch_time":    m.TotalFetchTime.String(),
		"last_updated":        m.LastUpdated,
	}
}

// LogSummary logs a summary of fetch metrics
func (m *ServiceMetrics) LogSummary() {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	logrus.WithFields(logrus.Fields{
		"service_name":        m.ServiceName,
		"total_requests":      m.TotalRequests,
		"successful_requests": m.SuccessfulRequests,
		"degraded_requests":   m.DegradedRequests,
	}).Info("Service fetch metrics summary")
}
