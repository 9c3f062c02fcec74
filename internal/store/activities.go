package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// RunTypes are the activity types treated as runs.
var RunTypes = []string{"Run", "TrailRun", "VirtualRun"}

const activityColumns = `id, athlete_id, name, type, start_date,
	distance, moving_time, elapsed_time, total_elevation_gain,
	average_speed, average_heartrate`

// UpsertActivity inserts or updates an activity
func (db *DB) UpsertActivity(ctx context.Context, a *Activity) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO activities (
			id, athlete_id, name, type, start_date,
			distance, moving_time, elapsed_time, total_elevation_gain,
			average_speed, average_heartrate, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			athlete_id = excluded.athlete_id,
			name = excluded.name,
			type = excluded.type,
			start_date = excluded.start_date,
			distance = excluded.distance,
			moving_time = excluded.moving_time,
			elapsed_time = excluded.elapsed_time,
			total_elevation_gain = excluded.total_elevation_gain,
			average_speed = excluded.average_speed,
			average_heartrate = excluded.average_heartrate,
			updated_at = CURRENT_TIMESTAMP
	`,
		a.ID, a.AthleteID, a.Name, a.Type, formatTime(a.StartDate),
		a.Distance, a.MovingTime, a.ElapsedTime, a.TotalElevationGain,
		a.AverageSpeed, a.AverageHeartrate,
	)
	return err
}

// DeleteActivity removes an activity along with its features and route
// membership. Cached comparisons that reference it are left in place.
func (db *DB) DeleteActivity(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrActivityNotFound
	}
	return nil
}

// GetActivity retrieves an activity by ID
func (db *DB) GetActivity(ctx context.Context, id int64) (*Activity, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+activityColumns+`
		FROM activities
		WHERE id = ?
	`, id)

	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// FindRunsByAthlete returns the athlete's runs inside the distance band and
// time window, most recent first, excluding q.ExcludeID.
func (db *DB) FindRunsByAthlete(ctx context.Context, q RunQuery) ([]Activity, error) {
	typeHolders, args := placeholders(len(RunTypes)), make([]any, 0, len(RunTypes)+6)
	for _, t := range RunTypes {
		args = append(args, t)
	}
	args = append(args, q.AthleteID, q.ExcludeID, formatTime(q.Since), q.MinDistance, q.MaxDistance, q.Limit)

	rows, err := db.QueryContext(ctx, `
		SELECT `+activityColumns+`
		FROM activities
		WHERE type IN (`+typeHolders+`)
			AND athlete_id = ?
			AND id != ?
			AND start_date >= ?
			AND distance BETWEEN ? AND ?
		ORDER BY start_date DESC
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

// GetActivitiesByIDs retrieves multiple activities by their IDs.
// Returns a map of activity ID to activity; unknown IDs are simply absent.
func (db *DB) GetActivitiesByIDs(ctx context.Context, ids []int64) (map[int64]*Activity, error) {
	result := make(map[int64]*Activity, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := db.QueryContext(ctx, `
		SELECT `+activityColumns+`
		FROM activities
		WHERE id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities, err := scanActivities(rows)
	if err != nil {
		return nil, err
	}
	for i := range activities {
		result[activities[i].ID] = &activities[i]
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanActivity scans a single activity from a row
func scanActivity(row scanner) (*Activity, error) {
	var a Activity
	var startDate string
	var elevation, speed sql.NullFloat64

	err := row.Scan(
		&a.ID, &a.AthleteID, &a.Name, &a.Type, &startDate,
		&a.Distance, &a.MovingTime, &a.ElapsedTime, &elevation,
		&speed, &a.AverageHeartrate,
	)
	if err != nil {
		return nil, err
	}

	a.StartDate, err = time.Parse(time.RFC3339, startDate)
	if err != nil {
		return nil, fmt.Errorf("parsing start_date %q: %w", startDate, err)
	}
	a.TotalElevationGain = elevation.Float64
	a.AverageSpeed = speed.Float64

	return &a, nil
}

// scanActivities scans multiple activities from rows
func scanActivities(rows *sql.Rows) ([]Activity, error) {
	activities := []Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

// formatTime stores timestamps as UTC RFC3339 so string comparison orders them.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
