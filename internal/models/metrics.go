package models

import "time"

// SystemMetrics is the admin-facing summary of runtime counters.
type SystemMetrics struct {
	RequestsTotal       uint64            `json:"requests_total"`
	AverageRequestMs    float64           `json:"average_request_ms"`
	CacheHits           uint64            `json:"cache_hits"`
	CacheMisses         uint64            `json:"cache_misses"`
	CacheHitRatio       float64           `json:"cache_hit_ratio"`
	DashboardBuilds     uint64            `json:"dashboard_builds"`
	AverageDashboardMs  float64           `json:"average_dashboard_ms"`
	AchievementsAwarded uint64            `json:"achievements_awarded"`
	Events              map[string]uint64 `json:"events"`
	Goroutines          int               `json:"goroutines"`
	UptimeSeconds       int64             `json:"uptime_seconds"`
	GeneratedAt         time.Time         `json:"generated_at"`
}
