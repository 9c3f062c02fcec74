package service

import (
	"time"

	"runbaseline/pkg/logger"
	"runbaseline/pkg/metrics"
)

// Settings tunes candidate retrieval, ranking and caching.
type Settings struct {
	LookbackDays      int
	DistanceTolerance float64
	CandidateLimit    int
	MinSimilarity     float64
	MaxComparables    int
	CacheTTL          time.Duration
	RouteHistoryLimit int
}

// DefaultSettings returns the standard tuning.
func DefaultSettings() Settings {
	return Settings{
		LookbackDays:      DefaultLookbackDays,
		DistanceTolerance: DefaultDistanceTolerance,
		CandidateLimit:    DefaultCandidateLimit,
		MinSimilarity:     DefaultMinSimilarity,
		MaxComparables:    DefaultMaxComparables,
		CacheTTL:          DefaultCacheTTL,
		RouteHistoryLimit: DefaultRouteHistoryLimit,
	}
}

// Option applies a configuration option to the ComparisonService.
type Option func(*ComparisonService)

// WithSettings replaces the default tuning.
func WithSettings(settings Settings) Option {
	return func(s *ComparisonService) {
		s.settings = settings
	}
}

// WithFeatureStore enables drift and pacing stability baselines.
func WithFeatureStore(features FeatureStore) Option {
	return func(s *ComparisonService) {
		s.features = features
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *ComparisonService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records comparison metrics on m.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *ComparisonService) {
		s.metrics = m
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *ComparisonService) {
		if now != nil {
			s.now = now
		}
	}
}
