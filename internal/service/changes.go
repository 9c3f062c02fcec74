package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"runbaseline/internal/analysis"
	"runbaseline/internal/store"
)

// Direction says whether a change is an improvement.
type Direction string

const (
	DirectionBetter  Direction = "better"
	DirectionWorse   Direction = "worse"
	DirectionNeutral Direction = "neutral"
)

// Change is one metric's percentage change and how to read it.
type Change struct {
	Metric    string    `json:"metric"`
	Change    float64   `json:"change"`
	Direction Direction `json:"direction"`
}

// WhatChanged lists changes against the last run on the same route and
// against the comparable-run baseline. Either list may be empty.
type WhatChanged struct {
	VsLastSameRoute    []Change `json:"vsLastSameRoute"`
	VsComparableMedian []Change `json:"vsComparableMedian"`
}

// GetWhatChanged explains how an activity differs from its baseline and
// from the last run on its route. The route is looked up fresh on every
// call, even when result came from cache.
func (s *ComparisonService) GetWhatChanged(ctx context.Context, activityID int64, result *ComparisonResult) (*WhatChanged, error) {
	current, err := s.activities.GetActivity(ctx, activityID)
	if err != nil && !errors.Is(err, store.ErrActivityNotFound) {
		s.metrics.RecordStoreError("get_activity")
		return nil, fmt.Errorf("loading activity %d: %w", activityID, err)
	}

	var route *RouteMatch
	if current != nil {
		route, err = s.MatchRoute(ctx, activityID)
		if err != nil {
			return nil, err
		}
	}

	return describeChanges(current, route, result), nil
}

func describeChanges(current *store.Activity, route *RouteMatch, result *ComparisonResult) *WhatChanged {
	changes := &WhatChanged{
		VsLastSameRoute:    []Change{},
		VsComparableMedian: []Change{},
	}
	if result != nil {
		changes.VsComparableMedian = BaselineChanges(result.Deltas)
	}
	if current != nil && route != nil && route.LastRun != nil {
		changes.VsLastSameRoute = SameRouteChanges(current, route.LastRun)
	}
	return changes
}

// BaselineChanges narrates deltas against the comparable-run baseline.
// A zero pace delta means there was no baseline and is not reported.
func BaselineChanges(d analysis.Deltas) []Change {
	changes := []Change{}

	if d.Pace != 0 {
		changes = append(changes, Change{
			Metric:    MetricPace,
			Change:    d.Pace,
			Direction: classify(d.Pace, 0, PaceWorseThreshold, true),
		})
	}
	if d.HR != nil {
		changes = append(changes, heartrateChange(*d.HR))
	}
	return changes
}

// SameRouteChanges compares a run with the previous run on its route.
func SameRouteChanges(current, last *store.Activity) []Change {
	changes := []Change{}

	if last.AverageSpeed > 0 {
		pace := analysis.PercentChange(current.AverageSpeed, last.AverageSpeed)
		changes = append(changes, Change{
			Metric:    MetricPace,
			Change:    pace,
			Direction: classify(pace, RoutePaceThreshold, -RoutePaceThreshold, true),
		})
	}

	if current.AverageHeartrate != nil && last.AverageHeartrate != nil && *last.AverageHeartrate > 0 {
		changes = append(changes, heartrateChange(
			analysis.PercentChange(*current.AverageHeartrate, *last.AverageHeartrate)))
	}

	if last.ElapsedTime > 0 {
		// The minimum applies to the unrounded change.
		raw := float64(current.ElapsedTime-last.ElapsedTime) / float64(last.ElapsedTime) * 100
		if math.Abs(raw) > RouteTimeMinimumChange {
			elapsed := analysis.Round1(raw)
			changes = append(changes, Change{
				Metric:    MetricTime,
				Change:    elapsed,
				Direction: classify(elapsed, RouteTimeThreshold, -RouteTimeThreshold, false),
			})
		}
	}
	return changes
}

// Lower heart rate for the same effort is better.
func heartrateChange(change float64) Change {
	dir := DirectionNeutral
	switch {
	case change <= -HeartrateThreshold:
		dir = DirectionBetter
	case change >= HeartrateThreshold:
		dir = DirectionWorse
	}
	return Change{Metric: MetricHeartrate, Change: change, Direction: dir}
}

// classify maps a change to a direction. With higherIsBetter, values above
// upper are better and below lower are worse; otherwise the reverse.
func classify(change, upper, lower float64, higherIsBetter bool) Direction {
	switch {
	case change > upper:
		if higherIsBetter {
			return DirectionBetter
		}
		return DirectionWorse
	case change < lower:
		if higherIsBetter {
			return DirectionWorse
		}
		return DirectionBetter
	}
	return DirectionNeutral
}
