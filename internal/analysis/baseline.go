package analysis

import (
	"math"
	"sort"

	"runbaseline/internal/store"
)

// Baseline summarises a set of comparable runs.
type Baseline struct {
	Pace            float64  // median average speed in m/s, 0 when SampleSize is 0
	HR              *float64 // median of known average heart rates
	Drift           *float64 // median aerobic decoupling, when known
	PacingStability *float64 // median pacing stability, when known
	SampleSize      int
}

// Median returns the median of values without modifying them.
// An empty slice yields 0.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// BuildBaseline aggregates the comparable runs with medians. Runs missing a
// field are left out of that field's median. features may be nil.
func BuildBaseline(runs []ComparableRun, features map[int64]*store.ActivityMetrics) Baseline {
	b := Baseline{SampleSize: len(runs)}
	if len(runs) == 0 {
		return b
	}

	speeds := make([]float64, 0, len(runs))
	var hrs, drifts, pacing []float64
	for _, r := range runs {
		speeds = append(speeds, r.AverageSpeed)
		if r.AverageHeartrate != nil {
			hrs = append(hrs, *r.AverageHeartrate)
		}
		if f := features[r.ID]; f != nil {
			if f.AerobicDecoupling != nil {
				drifts = append(drifts, *f.AerobicDecoupling)
			}
			if f.PacingStability != nil {
				pacing = append(pacing, *f.PacingStability)
			}
		}
	}

	b.Pace = Median(speeds)
	b.HR = medianOrNil(hrs)
	b.Drift = medianOrNil(drifts)
	b.PacingStability = medianOrNil(pacing)
	return b
}

func medianOrNil(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	m := Median(values)
	return &m
}

// Round1 rounds to one decimal place.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// PercentChange returns (current-base)/base as a percentage rounded to one
// decimal. A zero base yields 0.
func PercentChange(current, base float64) float64 {
	if base == 0 {
		return 0
	}
	return Round1((current - base) / base * 100)
}
