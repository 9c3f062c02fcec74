package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// GetLiveEntry returns the cached comparison for an activity if it has not
// expired at now. Returns ErrCacheMiss otherwise.
func (db *DB) GetLiveEntry(ctx context.Context, activityID int64, now time.Time) (*ComparisonCacheEntry, error) {
	row := db.QueryRowContext(ctx, `
		SELECT activity_id, candidates, sample_size,
			baseline_pace, baseline_hr, baseline_drift, baseline_pacing,
			pace_vs_baseline, hr_vs_baseline, drift_vs_baseline, pacing_vs_baseline,
			computed_at, expires_at
		FROM comparison_cache
		WHERE activity_id = ? AND expires_at >= ?
	`, activityID, now.UnixMilli())

	var e ComparisonCacheEntry
	var candidates string
	var computedAt, expiresAt int64
	err := row.Scan(
		&e.ActivityID, &candidates, &e.SampleSize,
		&e.BaselinePace, &e.BaselineHR, &e.BaselineDrift, &e.BaselinePacing,
		&e.PaceVsBaseline, &e.HRVsBaseline, &e.DriftVsBaseline, &e.PacingVsBaseline,
		&computedAt, &expiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(candidates), &e.Candidates); err != nil {
		return nil, fmt.Errorf("decoding cached candidates for activity %d: %w", activityID, err)
	}
	e.ComputedAt = time.UnixMilli(computedAt)
	e.ExpiresAt = time.UnixMilli(expiresAt)
	return &e, nil
}

// UpsertEntry writes a comparison, replacing every field of any existing
// entry for the same activity.
func (db *DB) UpsertEntry(ctx context.Context, e *ComparisonCacheEntry) error {
	candidates := e.Candidates
	if candidates == nil {
		candidates = []CandidateScore{}
	}
	encoded, err := json.Marshal(candidates)
	if err != nil {
		return fmt.Errorf("encoding candidates: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO comparison_cache (
			activity_id, candidates, sample_size,
			baseline_pace, baseline_hr, baseline_drift, baseline_pacing,
			pace_vs_baseline, hr_vs_baseline, drift_vs_baseline, pacing_vs_baseline,
			computed_at, expires_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(activity_id) DO UPDATE SET
			candidates = excluded.candidates,
			sample_size = excluded.sample_size,
			baseline_pace = excluded.baseline_pace,
			baseline_hr = excluded.baseline_hr,
			baseline_drift = excluded.baseline_drift,
			baseline_pacing = excluded.baseline_pacing,
			pace_vs_baseline = excluded.pace_vs_baseline,
			hr_vs_baseline = excluded.hr_vs_baseline,
			drift_vs_baseline = excluded.drift_vs_baseline,
			pacing_vs_baseline = excluded.pacing_vs_baseline,
			computed_at = excluded.computed_at,
			expires_at = excluded.expires_at
	`,
		e.ActivityID, string(encoded), e.SampleSize,
		e.BaselinePace, e.BaselineHR, e.BaselineDrift, e.BaselinePacing,
		e.PaceVsBaseline, e.HRVsBaseline, e.DriftVsBaseline, e.PacingVsBaseline,
		e.ComputedAt.UnixMilli(), e.ExpiresAt.UnixMilli(),
	)
	return err
}
