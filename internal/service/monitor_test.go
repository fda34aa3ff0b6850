package service

import (
	"testing"
	"time"
)

func TestMonitorSummaryWindow(t *testing.T) {
	m := NewPerformanceMonitor()
	now := time.Now()

	m.Record(RequestSample{Method: "GET", Path: "/api/jobs", Status: 200, Duration: 20 * time.Millisecond, At: now})
	m.Record(RequestSample{Method: "POST", Path: "/api/jobs", Status: 500, Duration: 40 * time.Millisecond, At: now})
	// Outside the window, must be ignored.
	m.Record(RequestSample{Method: "GET", Path: "/api/jobs", Status: 200, Duration: 5 * time.Millisecond, At: now.Add(-time.Hour)})

	m.Track("job_search", map[string]any{"query": "golang"})

	summary := m.Summary(15 * time.Minute)

	if summary.RequestCount != 2 {
		t.Errorf("RequestCount = %d, want 2", summary.RequestCount)
	}
	if summary.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", summary.ErrorCount)
	}
	if summary.StatusCounts[200] != 1 || summary.StatusCounts[500] != 1 {
		t.Errorf("StatusCounts = %v, want one 200 and one 500", summary.StatusCounts)
	}
	if summary.AvgDurationMs != 30 {
		t.Errorf("AvgDurationMs = %v, want 30", summary.AvgDurationMs)
	}
	if summary.EventCounts["job_search"] != 1 {
		t.Errorf("EventCounts = %v, want job_search: 1", summary.EventCounts)
	}
}

func TestMonitorRingBufferCap(t *testing.T) {
	m := NewPerformanceMonitor()

	for i := 0; i < maxRequestSamples+50; i++ {
		m.Record(RequestSample{Method: "GET", Path: "/health", Status: 200, At: time.Now()})
	}

	m.mu.Lock()
	n := len(m.requests)
	m.mu.Unlock()

	if n != maxRequestSamples {
		t.Errorf("len(requests) = %d, want cap %d", n, maxRequestSamples)
	}
}

func TestMonitorUptime(t *testing.T) {
	m := NewPerformanceMonitor()
	if m.Uptime() < 0 {
		t.Error("Uptime went backwards")
	}
}
