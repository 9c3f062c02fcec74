package service

import (
	"context"
	"fmt"

	"runbaseline/internal/analysis"
	"runbaseline/internal/store"
	"runbaseline/pkg/logger"
)

// fromCache rebuilds a result from a cache entry. Candidates that no longer
// resolve to an activity are dropped; survivors keep their own scores.
func (s *ComparisonService) fromCache(ctx context.Context, log logger.Logger, entry *store.ComparisonCacheEntry) (*ComparisonResult, error) {
	ids := make([]int64, len(entry.Candidates))
	for i, c := range entry.Candidates {
		ids[i] = c.ActivityID
	}

	activities, err := s.activities.GetActivitiesByIDs(ctx, ids)
	if err != nil {
		s.metrics.RecordStoreError("get_activities")
		return nil, fmt.Errorf("loading cached comparables for activity %d: %w", entry.ActivityID, err)
	}

	runs := make([]ComparableRun, 0, len(entry.Candidates))
	for _, c := range entry.Candidates {
		a, ok := activities[c.ActivityID]
		if !ok {
			log.Debug(ctx, "dropping cached comparable that no longer exists",
				logger.Int64("comparable_id", c.ActivityID))
			continue
		}
		runs = append(runs, ComparableRun{Activity: *a, SimilarityScore: c.Score})
	}

	return &ComparisonResult{
		ActivityID:     entry.ActivityID,
		ComparableRuns: runs,
		Baseline: analysis.Baseline{
			Pace:            entry.BaselinePace,
			HR:              entry.BaselineHR,
			Drift:           entry.BaselineDrift,
			PacingStability: entry.BaselinePacing,
			SampleSize:      entry.SampleSize,
		},
		Deltas: analysis.Deltas{
			Pace:   entry.PaceVsBaseline,
			HR:     entry.HRVsBaseline,
			Drift:  entry.DriftVsBaseline,
			Pacing: entry.PacingVsBaseline,
		},
		ComputedAt: entry.ComputedAt,
		ExpiresAt:  entry.ExpiresAt,
		FromCache:  true,
	}, nil
}

func toCacheEntry(r *ComparisonResult) *store.ComparisonCacheEntry {
	candidates := make([]store.CandidateScore, len(r.ComparableRuns))
	for i, run := range r.ComparableRuns {
		candidates[i] = store.CandidateScore{ActivityID: run.ID, Score: run.SimilarityScore}
	}

	return &store.ComparisonCacheEntry{
		ActivityID:       r.ActivityID,
		Candidates:       candidates,
		SampleSize:       r.Baseline.SampleSize,
		BaselinePace:     r.Baseline.Pace,
		BaselineHR:       r.Baseline.HR,
		BaselineDrift:    r.Baseline.Drift,
		BaselinePacing:   r.Baseline.PacingStability,
		PaceVsBaseline:   r.Deltas.Pace,
		HRVsBaseline:     r.Deltas.HR,
		DriftVsBaseline:  r.Deltas.Drift,
		PacingVsBaseline: r.Deltas.Pacing,
		ComputedAt:       r.ComputedAt,
		ExpiresAt:        r.ExpiresAt,
	}
}
