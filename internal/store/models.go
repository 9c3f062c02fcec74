package store

import "time"

// Activity is a run summary as synced from the fitness platform.
// The engine treats it as read-only.
type Activity struct {
	ID                 int64     `db:"id"`
	AthleteID          int64     `db:"athlete_id"`
	Name               string    `db:"name"`
	Type               string    `db:"type"`
	StartDate          time.Time `db:"start_date"`
	Distance           float64   `db:"distance"`     // meters
	MovingTime         int       `db:"moving_time"`  // seconds
	ElapsedTime        int       `db:"elapsed_time"` // seconds
	TotalElevationGain float64   `db:"total_elevation_gain"`
	AverageSpeed       float64   `db:"average_speed"`     // m/s
	AverageHeartrate   *float64  `db:"average_heartrate"` // nullable
}

// ActivityMetrics holds features computed upstream from stream data.
// Either may be absent.
type ActivityMetrics struct {
	ActivityID        int64    `db:"activity_id"`
	AerobicDecoupling *float64 `db:"aerobic_decoupling"` // percent, pace:HR drift
	PacingStability   *float64 `db:"pacing_stability"`   // percent of run at steady pace
}

// RunQuery selects candidate runs for one athlete.
type RunQuery struct {
	AthleteID   int64
	ExcludeID   int64
	MinDistance float64
	MaxDistance float64
	Since       time.Time
	Limit       int
}

// CandidateScore pairs a comparable activity with its similarity score.
type CandidateScore struct {
	ActivityID int64   `json:"id"`
	Score      float64 `json:"score"`
}

// ComparisonCacheEntry is one row of the comparison cache, keyed by the
// compared activity. Candidates are ordered by descending score.
type ComparisonCacheEntry struct {
	ActivityID       int64            `db:"activity_id"`
	Candidates       []CandidateScore `db:"candidates"`
	SampleSize       int              `db:"sample_size"`
	BaselinePace     float64          `db:"baseline_pace"` // m/s, 0 when no comparables
	BaselineHR       *float64         `db:"baseline_hr"`
	BaselineDrift    *float64         `db:"baseline_drift"`
	BaselinePacing   *float64         `db:"baseline_pacing"`
	PaceVsBaseline   float64          `db:"pace_vs_baseline"`
	HRVsBaseline     *float64         `db:"hr_vs_baseline"`
	DriftVsBaseline  *float64         `db:"drift_vs_baseline"`
	PacingVsBaseline *float64         `db:"pacing_vs_baseline"`
	ComputedAt       time.Time        `db:"computed_at"`
	ExpiresAt        time.Time        `db:"expires_at"`
}

// IsLive reports whether the entry has not expired at now.
func (e *ComparisonCacheEntry) IsLive(now time.Time) bool {
	return !e.ExpiresAt.Before(now)
}
