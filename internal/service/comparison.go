// Package service finds comparable runs, builds baselines from them and
// explains how a run differs from the athlete's usual effort.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"runbaseline/internal/analysis"
	"runbaseline/internal/store"
	"runbaseline/pkg/logger"
	"runbaseline/pkg/metrics"
)

// ActivityStore reads the athlete's runs.
type ActivityStore interface {
	FindRunsByAthlete(ctx context.Context, q store.RunQuery) ([]store.Activity, error)
	GetActivity(ctx context.Context, id int64) (*store.Activity, error)
	GetActivitiesByIDs(ctx context.Context, ids []int64) (map[int64]*store.Activity, error)
}

// RouteStore reads recurring route membership.
type RouteStore interface {
	GetRouteForActivity(ctx context.Context, activityID int64) (string, error)
	FindActivitiesOnRoute(ctx context.Context, routeID string, excludeID int64, limit int) ([]store.Activity, error)
}

// CacheStore persists computed comparisons.
type CacheStore interface {
	GetLiveEntry(ctx context.Context, activityID int64, now time.Time) (*store.ComparisonCacheEntry, error)
	UpsertEntry(ctx context.Context, entry *store.ComparisonCacheEntry) error
}

// FeatureStore reads upstream drift and pacing stability features.
type FeatureStore interface {
	GetMetricsByIDs(ctx context.Context, ids []int64) (map[int64]*store.ActivityMetrics, error)
}

// ComparableRun is a past run with its similarity to the compared run.
type ComparableRun = analysis.ComparableRun

// ComparisonResult is a run compared against its comparable runs.
// Results may be shared between concurrent callers and must not be modified.
type ComparisonResult struct {
	ActivityID     int64
	ComparableRuns []ComparableRun // best match first
	Baseline       analysis.Baseline
	Deltas         analysis.Deltas
	ComputedAt     time.Time
	ExpiresAt      time.Time
	FromCache      bool
}

// ComparisonService computes and caches run comparisons.
type ComparisonService struct {
	activities ActivityStore
	routes     RouteStore
	cache      CacheStore
	features   FeatureStore

	settings Settings
	logger   logger.Logger
	metrics  *metrics.Manager
	now      func() time.Time

	inflight singleflight.Group
}

// NewComparisonService creates a comparison service over the given stores.
func NewComparisonService(activities ActivityStore, routes RouteStore, cache CacheStore, opts ...Option) *ComparisonService {
	s := &ComparisonService{
		activities: activities,
		routes:     routes,
		cache:      cache,
		settings:   DefaultSettings(),
		logger:     logger.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromDB creates a comparison service backed entirely by db.
func NewFromDB(db *store.DB, opts ...Option) *ComparisonService {
	opts = append([]Option{WithFeatureStore(db)}, opts...)
	return NewComparisonService(db, db, db, opts...)
}

// GetOrComputeComparison returns the comparison for an activity, from cache
// when a live entry exists. Returns nil, nil when the activity does not
// exist or belongs to another athlete.
func (s *ComparisonService) GetOrComputeComparison(ctx context.Context, athleteID, activityID int64) (*ComparisonResult, error) {
	target, err := s.loadTarget(ctx, athleteID, activityID)
	if err != nil || target == nil {
		return nil, err
	}
	return s.comparisonFor(ctx, target)
}

// comparisonFor reads the live cache entry for target or computes a new one.
func (s *ComparisonService) comparisonFor(ctx context.Context, target *store.Activity) (*ComparisonResult, error) {
	log := s.logger.With(
		logger.String("request_id", uuid.NewString()),
		logger.Int64("activity_id", target.ID),
	)

	now := s.now()
	entry, err := s.cache.GetLiveEntry(ctx, target.ID, now)
	switch {
	case err == nil:
		s.metrics.RecordCacheLookup(true)
		log.Debug(ctx, "comparison cache hit", logger.Int("candidates", len(entry.Candidates)))
		result, err := s.fromCache(ctx, log, entry)
		if err != nil {
			return nil, err
		}
		s.metrics.RecordComparison(metrics.SourceCache)
		return result, nil
	case errors.Is(err, store.ErrCacheMiss):
		s.metrics.RecordCacheLookup(false)
		log.Debug(ctx, "comparison cache miss")
	default:
		s.metrics.RecordStoreError("cache_read")
		return nil, fmt.Errorf("reading comparison cache for activity %d: %w", target.ID, err)
	}

	// Collapse concurrent computations of the same activity. The shared
	// computation outlives any single caller's cancellation.
	computeCtx := context.WithoutCancel(ctx)
	ch := s.inflight.DoChan(strconv.FormatInt(target.ID, 10), func() (any, error) {
		return s.compute(computeCtx, log, target, now)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			log.Debug(ctx, "shared in-flight comparison")
		}
		s.metrics.RecordComparison(metrics.SourceComputed)
		return res.Val.(*ComparisonResult), nil
	}
}

// loadTarget returns nil, nil when the activity is unknown or not owned by
// athleteID, and counts the request as missing.
func (s *ComparisonService) loadTarget(ctx context.Context, athleteID, activityID int64) (*store.Activity, error) {
	target, err := s.activities.GetActivity(ctx, activityID)
	if err != nil && !errors.Is(err, store.ErrActivityNotFound) {
		s.metrics.RecordStoreError("get_activity")
		return nil, fmt.Errorf("loading activity %d: %w", activityID, err)
	}
	if target == nil || target.AthleteID != athleteID {
		s.logger.Debug(ctx, "activity not found for athlete",
			logger.Int64("activity_id", activityID),
			logger.Int64("athlete_id", athleteID),
		)
		s.metrics.RecordComparison(metrics.SourceMissing)
		return nil, nil
	}
	return target, nil
}

func (s *ComparisonService) compute(ctx context.Context, log logger.Logger, target *store.Activity, now time.Time) (*ComparisonResult, error) {
	start := time.Now()

	candidates, err := s.activities.FindRunsByAthlete(ctx, store.RunQuery{
		AthleteID:   target.AthleteID,
		ExcludeID:   target.ID,
		MinDistance: target.Distance * (1 - s.settings.DistanceTolerance),
		MaxDistance: target.Distance * (1 + s.settings.DistanceTolerance),
		Since:       now.AddDate(0, 0, -s.settings.LookbackDays),
		Limit:       s.settings.CandidateLimit,
	})
	if err != nil {
		s.metrics.RecordStoreError("find_runs")
		return nil, fmt.Errorf("finding candidate runs for activity %d: %w", target.ID, err)
	}

	ranked := analysis.RankComparables(target, candidates, s.settings.MinSimilarity, s.settings.MaxComparables)

	features, err := s.loadFeatures(ctx, target.ID, ranked)
	if err != nil {
		return nil, err
	}

	baseline := analysis.BuildBaseline(ranked, features)
	deltas := analysis.ComputeDeltas(target, features[target.ID], baseline)

	// Millisecond precision matches what the cache stores.
	computedAt := time.UnixMilli(now.UnixMilli())
	result := &ComparisonResult{
		ActivityID:     target.ID,
		ComparableRuns: ranked,
		Baseline:       baseline,
		Deltas:         deltas,
		ComputedAt:     computedAt,
		ExpiresAt:      computedAt.Add(s.settings.CacheTTL),
	}

	if err := s.cache.UpsertEntry(ctx, toCacheEntry(result)); err != nil {
		s.metrics.RecordStoreError("cache_write")
		return nil, fmt.Errorf("caching comparison for activity %d: %w", target.ID, err)
	}

	elapsed := time.Since(start)
	s.metrics.ObserveCandidates(len(candidates), len(ranked))
	s.metrics.ObserveComputeLatency(elapsed)
	log.Info(ctx, "computed comparison",
		logger.Int("candidates", len(candidates)),
		logger.Int("comparables", len(ranked)),
		logger.Float64("pace_vs_baseline", deltas.Pace),
		logger.Duration("elapsed", elapsed),
	)
	return result, nil
}

// loadFeatures fetches upstream features for the target and its comparables.
// Without a feature store the map is empty.
func (s *ComparisonService) loadFeatures(ctx context.Context, targetID int64, runs []ComparableRun) (map[int64]*store.ActivityMetrics, error) {
	if s.features == nil {
		return map[int64]*store.ActivityMetrics{}, nil
	}

	ids := make([]int64, 0, len(runs)+1)
	ids = append(ids, targetID)
	for _, r := range runs {
		ids = append(ids, r.ID)
	}

	features, err := s.features.GetMetricsByIDs(ctx, ids)
	if err != nil {
		s.metrics.RecordStoreError("get_features")
		return nil, fmt.Errorf("loading features for activity %d: %w", targetID, err)
	}
	return features, nil
}
