package server

import (
	"sync"
	"time"
)

// Metrics holds application metrics
type Metrics struct {
	mu sync.RWMutex

	// Upload metrics
	uploadsTotal        int64
	uploadBytesTotal    int64
	uploadErrorsTotal   int64
	uploadDurationTotal time.Duration

	// Static file metrics
	staticServedTotal   int64
	staticBytesTotal    int64
	staticNotFoundTotal int64
	staticErrorsTotal   int64
	staticDurationTotal time.Duration

	// System metrics
	requestsTotal    int64
	requestErrors5xx int64
	requestErrors4xx int64
}

var globalMetrics = &Metrics{}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	return globalMetrics
}

// RecordUpload records a stored upload
func (m *Metrics) RecordUpload(bytes int64, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadsTotal++
	m.uploadBytesTotal += bytes
	m.uploadDurationTotal += duration
}

// RecordUploadError records an upload answered with a non-200 status
func (m *Metrics) RecordUploadError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadErrorsTotal++
}

// RecordStatic records a file served by the static responder
func (m *Metrics) RecordStatic(bytes int64, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staticServedTotal++
	m.staticBytesTotal += bytes
	m.staticDurationTotal += duration
}

func (m *Metrics) RecordStaticNotFound() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staticNotFoundTotal++
}

func (m *Metrics) RecordStaticError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staticErrorsTotal++
}

// RecordRequest records an HTTP request
func (m *Metrics) RecordRequest(statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestsTotal++

	if statusCode >= 500 {
		m.requestErrors5xx++
	} else if statusCode >= 400 {
		m.requestErrors4xx++
	}
}

// Snapshot returns a snapshot of current metrics
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MetricsSnapshot{
		UploadsTotal:        m.uploadsTotal,
		UploadBytesTotal:    m.uploadBytesTotal,
		UploadErrorsTotal:   m.uploadErrorsTotal,
		UploadAvgDurationMs: avgDuration(m.uploadDurationTotal, m.uploadsTotal),
		StaticServedTotal:   m.staticServedTotal,
		StaticBytesTotal:    m.staticBytesTotal,
		StaticNotFoundTotal: m.staticNotFoundTotal,
		StaticErrorsTotal:   m.staticErrorsTotal,
		StaticAvgDurationMs: avgDuration(m.staticDurationTotal, m.staticServedTotal),
		RequestsTotal:       m.requestsTotal,
		RequestErrors5xx:    m.requestErrors5xx,
		RequestErrors4xx:    m.requestErrors4xx,
	}
}

// MetricsSnapshot represents a point-in-time snapshot of metrics
type MetricsSnapshot struct {
	UploadsTotal        int64   `json:"uploads_total"`
	UploadBytesTotal    int64   `json:"upload_bytes_total"`
	UploadErrorsTotal   int64   `json:"upload_errors_total"`
	UploadAvgDurationMs float64 `json:"upload_avg_duration_ms"`

	StaticServedTotal   int64   `json:"static_served_total"`
	StaticBytesTotal    int64   `json:"static_bytes_total"`
	StaticNotFoundTotal int64   `json:"static_not_found_total"`
	StaticErrorsTotal   int64   `json:"static_errors_total"`
	StaticAvgDurationMs float64 `json:"static_avg_duration_ms"`

	RequestsTotal    int64 `json:"requests_total"`
	RequestErrors5xx int64 `json:"request_errors_5xx"`
	RequestErrors4xx int64 `json:"request_errors_4xx"`
}

func avgDuration(total time.Duration, count int64) float64 {
	if count == 0 {
		return 0
	}
	return float64(total.Milliseconds()) / float64(count)
}
