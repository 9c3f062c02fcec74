package service

import "time"

const (
	// Candidate retrieval
	DefaultLookbackDays      = 365
	DefaultDistanceTolerance = 0.10 // ±10% of target distance
	DefaultCandidateLimit    = 100

	// Ranking
	DefaultMinSimilarity  = 0.5 // candidates must score strictly above this
	DefaultMaxComparables = 20

	// Cache
	DefaultCacheTTL = 7 * 24 * time.Hour

	// Route history
	DefaultRouteHistoryLimit = 10
)

// Narration thresholds, in percent.
const (
	PaceWorseThreshold     = -3.0 // vs baseline; any gain counts as better
	HeartrateThreshold     = 3.0
	RoutePaceThreshold     = 2.0
	RouteTimeThreshold     = 2.0
	RouteTimeMinimumChange = 1.0 // smaller elapsed time changes are not reported
)

// Metric names used in narration.
const (
	MetricPace      = "Pace"
	MetricHeartrate = "Heart Rate"
	MetricTime      = "Time"
)
