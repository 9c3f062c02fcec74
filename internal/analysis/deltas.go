package analysis

import "runbaseline/internal/store"

// Deltas are signed percentage deviations of a run from its baseline.
// Positive pace means faster than usual; positive HR means working harder.
type Deltas struct {
	Pace   float64 // 0 when there was no baseline pace to compare with
	HR     *float64
	Drift  *float64
	Pacing *float64
}

// ComputeDeltas compares the current run against the baseline. features
// holds the run's upstream metrics and may be nil.
func ComputeDeltas(current *store.Activity, features *store.ActivityMetrics, baseline Baseline) Deltas {
	d := Deltas{
		Pace: PercentChange(current.AverageSpeed, baseline.Pace),
	}

	if current.AverageHeartrate != nil {
		d.HR = percentChangePtr(*current.AverageHeartrate, baseline.HR)
	}
	if features != nil {
		if features.AerobicDecoupling != nil {
			d.Drift = percentChangePtr(*features.AerobicDecoupling, baseline.Drift)
		}
		if features.PacingStability != nil {
			d.Pacing = percentChangePtr(*features.PacingStability, baseline.PacingStability)
		}
	}
	return d
}

func percentChangePtr(current float64, base *float64) *float64 {
	if base == nil || *base == 0 {
		return nil
	}
	v := PercentChange(current, *base)
	return &v
}
