package models

import "time"

// SystemMetrics is a lightweight snapshot of runtime counters.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	Recomputes               uint64    `json:"recomputes"`
	AverageRecomputeMs       float64   `json:"average_recompute_ms"`
	ActiveSessions           int64     `json:"active_sessions"`
	JoinRequests             uint64    `json:"join_requests"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
