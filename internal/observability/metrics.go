package observability

import (
	"fmt"
	"sync"
	"time"
)

// Metrics keeps in-process counters per route. There is no exporter;
// the counters give the request logger and the error middleware a
// cheap place to record totals.
type Metrics struct {
	mu       sync.Mutex
	requests map[string]*routeStats
	errors   map[string]int64
}

type routeStats struct {
	count   int64
	elapsed time.Duration
}

// NewMetrics returns an empty counter set.
func NewMetrics() *Metrics {
	return &Metrics{
		requests: make(map[string]*routeStats),
		errors:   make(map[string]int64),
	}
}

// RecordRequest counts a completed request and accumulates its latency.
func (m *Metrics) RecordRequest(path, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	key := requestKey(method, path, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := m.requests[key]
	if stats == nil {
		stats = &routeStats{}
		m.requests[key] = stats
	}
	stats.count++
	stats.elapsed += elapsed
}

// RecordError counts a rendered error by route and error code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[method+" "+path+" "+code]++
}

// RequestCount reports how many requests were recorded for a route.
func (m *Metrics) RequestCount(method, path string, status int) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if stats := m.requests[requestKey(method, path, status)]; stats != nil {
		return stats.count
	}
	return 0
}

// ErrorCount reports how many errors were recorded for a route and code.
func (m *Metrics) ErrorCount(method, path, code string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[method+" "+path+" "+code]
}

func requestKey(method, path string, status int) string {
	return fmt.Sprintf("%s %s %d", method, path, status)
}
