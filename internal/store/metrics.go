package store

import (
	"context"
	"database/sql"
	"errors"
)

// SaveActivityMetrics stores upstream features for an activity
func (db *DB) SaveActivityMetrics(ctx context.Context, m *ActivityMetrics) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO activity_metrics (
			activity_id, aerobic_decoupling, pacing_stability, computed_at
		) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(activity_id) DO UPDATE SET
			aerobic_decoupling = excluded.aerobic_decoupling,
			pacing_stability = excluded.pacing_stability,
			computed_at = CURRENT_TIMESTAMP
	`, m.ActivityID, m.AerobicDecoupling, m.PacingStability)
	return err
}

// GetActivityMetrics retrieves features for an activity.
// Returns nil, nil when none have been computed.
func (db *DB) GetActivityMetrics(ctx context.Context, activityID int64) (*ActivityMetrics, error) {
	row := db.QueryRowContext(ctx, `
		SELECT activity_id, aerobic_decoupling, pacing_stability
		FROM activity_metrics
		WHERE activity_id = ?
	`, activityID)

	var m ActivityMetrics
	err := row.Scan(&m.ActivityID, &m.AerobicDecoupling, &m.PacingStability)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMetricsByIDs retrieves features for multiple activities.
// Activities without features are absent from the map.
func (db *DB) GetMetricsByIDs(ctx context.Context, ids []int64) (map[int64]*ActivityMetrics, error) {
	result := make(map[int64]*ActivityMetrics, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := db.QueryContext(ctx, `
		SELECT activity_id, aerobic_decoupling, pacing_stability
		FROM activity_metrics
		WHERE activity_id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var m ActivityMetrics
		if err := rows.Scan(&m.ActivityID, &m.AerobicDecoupling, &m.PacingStability); err != nil {
			return nil, err
		}
		result[m.ActivityID] = &m
	}
	return result, rows.Err()
}
