package service

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	maxRequestSamples  = 1000
	maxAnalyticsEvents = 10000
)

type RequestSample struct {
	Method   string        `json:"method"`
	Path     string        `json:"path"`
	Status   int           `json:"status"`
	Duration time.Duration `json:"duration"`
	At       time.Time     `json:"at"`
}

type AnalyticsEvent struct {
	Name  string         `json:"name"`
	Props map[string]any `json:"props,omitempty"`
	At    time.Time      `json:"at"`
}

type MonitorSummary struct {
	Window        string         `json:"window"`
	RequestCount  int            `json:"request_count"`
	ErrorCount    int            `json:"error_count"`
	AvgDurationMs float64        `json:"avg_duration_ms"`
	StatusCounts  map[int]int    `json:"status_counts"`
	EventCounts   map[string]int `json:"event_counts"`
}

// PerformanceMonitor keeps capped in-memory ring buffers of request samples
// and analytics events. Purely observational and process-local; summaries
// are computed over a trailing time window on read.
type PerformanceMonitor struct {
	mu       sync.Mutex
	requests []RequestSample
	reqHead  int
	events   []AnalyticsEvent
	evtHead  int
	started  time.Time
}

func NewPerformanceMonitor() *PerformanceMonitor {
	return &PerformanceMonitor{
		requests: make([]RequestSample, 0, maxRequestSamples),
		events:   make([]AnalyticsEvent, 0, maxAnalyticsEvents),
		started:  time.Now(),
	}
}

func (m *PerformanceMonitor) Record(sample RequestSample) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sample.At.IsZero() {
		sample.At = time.Now()
	}

	if len(m.requests) < maxRequestSamples {
		m.requests = append(m.requests, sample)
		return
	}
	m.requests[m.reqHead] = sample
	m.reqHead = (m.reqHead + 1) % maxRequestSamples
}

func (m *PerformanceMonitor) Track(name string, props map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	event := AnalyticsEvent{Name: name, Props: props, At: time.Now()}

	if len(m.events) < maxAnalyticsEvents {
		m.events = append(m.events, event)
		return
	}
	m.events[m.evtHead] = event
	m.evtHead = (m.evtHead + 1) % maxAnalyticsEvents
}

func (m *PerformanceMonitor) Uptime() time.Duration {
	return time.Since(m.started)
}

func (m *PerformanceMonitor) Summary(window time.Duration) MonitorSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-window)
	summary := MonitorSummary{
		Window:       window.String(),
		StatusCounts: make(map[int]int),
		EventCounts:  make(map[string]int),
	}

	var totalDuration time.Duration
	for _, sample := range m.requests {
		if sample.At.Before(cutoff) {
			continue
		}
		summary.RequestCount++
		summary.StatusCounts[sample.Status]++
		if sample.Status >= 500 {
			summary.ErrorCount++
		}
		totalDuration += sample.Duration
	}
	if summary.RequestCount > 0 {
		summary.AvgDurationMs = float64(totalDuration.Milliseconds()) / float64(summary.RequestCount)
	}

	for _, event := range m.events {
		if event.At.Before(cutoff) {
			continue
		}
		summary.EventCounts[event.Name]++
	}

	return summary
}

// Middleware records one sample per request.
func (m *PerformanceMonitor) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.Record(RequestSample{
			Method:   c.Request.Method,
			Path:     c.FullPath(),
			Status:   c.Writer.Status(),
			Duration: time.Since(start),
			At:       start,
		})
	}
}
