package store

import (
	"context"
	"database/sql"
	"errors"
)

// AssignRoute records that an activity was run on a recurring route,
// replacing any previous assignment.
func (db *DB) AssignRoute(ctx context.Context, activityID int64, routeID string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO route_activities (activity_id, route_id, assigned_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(activity_id) DO UPDATE SET
			route_id = excluded.route_id,
			assigned_at = CURRENT_TIMESTAMP
	`, activityID, routeID)
	return err
}

// UnassignRoute removes an activity from its route. Missing rows are not an error.
func (db *DB) UnassignRoute(ctx context.Context, activityID int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM route_activities WHERE activity_id = ?`, activityID)
	return err
}

// GetRouteForActivity returns the route an activity belongs to, or ErrNoRoute.
func (db *DB) GetRouteForActivity(ctx context.Context, activityID int64) (string, error) {
	var routeID string
	err := db.QueryRowContext(ctx, `
		SELECT route_id FROM route_activities WHERE activity_id = ?
	`, activityID).Scan(&routeID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoRoute
	}
	if err != nil {
		return "", err
	}
	return routeID, nil
}

// FindActivitiesOnRoute returns activities on a route, most recent first,
// excluding excludeID.
func (db *DB) FindActivitiesOnRoute(ctx context.Context, routeID string, excludeID int64, limit int) ([]Activity, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT a.id, a.athlete_id, a.name, a.type, a.start_date,
			a.distance, a.moving_time, a.elapsed_time, a.total_elevation_gain,
			a.average_speed, a.average_heartrate
		FROM route_activities r
		JOIN activities a ON a.id = r.activity_id
		WHERE r.route_id = ? AND a.id != ?
		ORDER BY a.start_date DESC
		LIMIT ?
	`, routeID, excludeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}
