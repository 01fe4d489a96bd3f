// Package monitoring collects build and preview statistics served by the
// preview's stats endpoint.
package monitoring

import (
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
)

// smoothing factor of the moving averages
const alpha = 0.1

const (
	maxHealthyMemory     = 500 * 1024 * 1024
	maxHealthyGoroutines = 1000
)

// Metrics is a snapshot of what the monitor has recorded
type Metrics struct {
	StartTime time.Time `json:"start_time"`

	Builds        int64         `json:"builds"`
	FailedBuilds  int64         `json:"failed_builds"`
	LastBuild     time.Duration `json:"last_build_ns"`
	AverageBuild  time.Duration `json:"average_build_ns"`
	LastBuildTime time.Time     `json:"last_build_time"`
	LastError     string        `json:"last_error,omitempty"`

	SlideRenders  int64         `json:"slide_renders"`
	AverageRender time.Duration `json:"average_render_ns"`

	HTTPRequests         int64 `json:"http_requests"`
	WebSocketConnections int64 `json:"websocket_connections"`

	MemoryUsage int64  `json:"memory_bytes"`
	HeapSize    int64  `json:"heap_bytes"`
	Goroutines  int    `json:"goroutines"`
	GCCount     uint32 `json:"gc_cycles"`
}

// CacheReporter is a cache whose statistics are included in the health status
type CacheReporter interface {
	Stats() entities.CacheStats
}

// Monitor records builds, slide renders and preview traffic
type Monitor struct {
	mu      sync.RWMutex
	metrics Metrics
	cache   CacheReporter
	now     func() time.Time
}

// NewMonitor creates a monitor; uptime is measured from now
func NewMonitor() *Monitor {
	return &Monitor{
		metrics: Metrics{StartTime: time.Now()},
		now:     time.Now,
	}
}

// SetCache includes the statistics of cache in the health status
func (m *Monitor) SetCache(cache CacheReporter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = cache
}

// RecordBuild records one deck build and its outcome
func (m *Monitor) RecordBuild(duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.LastBuildTime = m.now()
	if err != nil {
		m.metrics.FailedBuilds++
		m.metrics.LastError = err.Error()
		return
	}
	m.metrics.Builds++
	m.metrics.LastError = ""
	m.metrics.LastBuild = duration
	m.metrics.AverageBuild = average(m.metrics.AverageBuild, duration)
}

// RecordSlideRender records rendering one slide preview
func (m *Monitor) RecordSlideRender(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.SlideRenders++
	m.metrics.AverageRender = average(m.metrics.AverageRender, duration)
}

// RecordHTTPRequest records an HTTP request
func (m *Monitor) RecordHTTPRequest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.HTTPRequests++
}

// RecordWebSocketConnection records a WebSocket connection
func (m *Monitor) RecordWebSocketConnection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.WebSocketConnections++
}

// Snapshot returns the recorded metrics with current memory statistics
func (m *Monitor) Snapshot() Metrics {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	m.mu.RLock()
	snapshot := m.metrics
	m.mu.RUnlock()

	snapshot.MemoryUsage = clampInt64(mem.Alloc)
	snapshot.HeapSize = clampInt64(mem.HeapAlloc)
	snapshot.GCCount = mem.NumGC
	snapshot.Goroutines = runtime.NumGoroutine()
	return snapshot
}

// Uptime returns the time since the monitor was created
func (m *Monitor) Uptime() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now().Sub(m.metrics.StartTime)
}

// IsHealthy reports whether memory use and goroutine count are within bounds
func (m *Monitor) IsHealthy() bool {
	return healthy(m.Snapshot())
}

func healthy(s Metrics) bool {
	return s.MemoryUsage < maxHealthyMemory && s.Goroutines < maxHealthyGoroutines
}

// HealthStatus summarizes the metrics for the stats endpoint
func (m *Monitor) HealthStatus() map[string]interface{} {
	s := m.Snapshot()
	status := map[string]interface{}{
		"healthy":    healthy(s),
		"uptime":     m.Uptime().Round(time.Second).String(),
		"memory_mb":  s.MemoryUsage / (1024 * 1024),
		"heap_mb":    s.HeapSize / (1024 * 1024),
		"goroutines": s.Goroutines,
		"gc_cycles":  s.GCCount,
		"builds": map[string]interface{}{
			"succeeded":  s.Builds,
			"failed":     s.FailedBuilds,
			"last_ms":    s.LastBuild.Milliseconds(),
			"average_ms": s.AverageBuild.Milliseconds(),
			"last_error": s.LastError,
		},
		"preview": map[string]interface{}{
			"slides_rendered":       s.SlideRenders,
			"average_render_ms":     s.AverageRender.Milliseconds(),
			"http_requests":         s.HTTPRequests,
			"websocket_connections": s.WebSocketConnections,
		},
	}

	m.mu.RLock()
	cache := m.cache
	m.mu.RUnlock()
	if cache != nil {
		status["table_cache"] = cache.Stats()
	}
	return status
}

// average is an exponential moving average seeded with the first sample
func average(avg, sample time.Duration) time.Duration {
	if avg == 0 {
		return sample
	}
	return time.Duration(float64(avg)*(1-alpha) + float64(sample)*alpha)
}

func clampInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}
