package models

import "time"

// SystemMetrics is a lightweight aggregate snapshot served alongside the
// Prometheus endpoint.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	UploadsTotal             uint64    `json:"uploads_total"`
	UploadFailures           uint64    `json:"upload_failures"`
	AverageAnalysisSeconds   float64   `json:"average_analysis_seconds"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
