package service

import (
	"context"
	"testing"

	"runbaseline/internal/analysis"
	"runbaseline/internal/store"
)

func TestBaselineChanges(t *testing.T) {
	tests := []struct {
		name     string
		deltas   analysis.Deltas
		expected []Change
	}{
		{
			name:     "no baseline",
			deltas:   analysis.Deltas{},
			expected: []Change{},
		},
		{
			name:   "faster",
			deltas: analysis.Deltas{Pace: 10.0},
			expected: []Change{
				{Metric: MetricPace, Change: 10.0, Direction: DirectionBetter},
			},
		},
		{
			name:   "slightly slower is neutral",
			deltas: analysis.Deltas{Pace: -2.9},
			expected: []Change{
				{Metric: MetricPace, Change: -2.9, Direction: DirectionNeutral},
			},
		},
		{
			name:   "much slower",
			deltas: analysis.Deltas{Pace: -3.1},
			expected: []Change{
				{Metric: MetricPace, Change: -3.1, Direction: DirectionWorse},
			},
		},
		{
			name:   "lower HR at threshold",
			deltas: analysis.Deltas{Pace: 0.4, HR: floatPtr(-3.0)},
			expected: []Change{
				{Metric: MetricPace, Change: 0.4, Direction: DirectionBetter},
				{Metric: MetricHeartrate, Change: -3.0, Direction: DirectionBetter},
			},
		},
		{
			name:   "higher HR at threshold",
			deltas: analysis.Deltas{HR: floatPtr(3.0)},
			expected: []Change{
				{Metric: MetricHeartrate, Change: 3.0, Direction: DirectionWorse},
			},
		},
		{
			name:   "zero HR change is still reported",
			deltas: analysis.Deltas{HR: floatPtr(0)},
			expected: []Change{
				{Metric: MetricHeartrate, Change: 0, Direction: DirectionNeutral},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := BaselineChanges(tt.deltas)
			assertChanges(t, result, tt.expected)
		})
	}
}

func TestSameRouteChanges(t *testing.T) {
	tests := []struct {
		name     string
		current  store.Activity
		last     store.Activity
		expected []Change
	}{
		{
			name:    "faster, easier, quicker",
			current: run(1, withSpeed(3.3), withHR(145), withElapsed(3100)),
			last:    run(2, withSpeed(3.0), withHR(150), withElapsed(3400)),
			expected: []Change{
				{Metric: MetricPace, Change: 10.0, Direction: DirectionBetter},
				{Metric: MetricHeartrate, Change: -3.3, Direction: DirectionBetter},
				{Metric: MetricTime, Change: -8.8, Direction: DirectionBetter},
			},
		},
		{
			name:    "slower and longer",
			current: run(1, withSpeed(2.9), withHR(155), withElapsed(3600)),
			last:    run(2, withSpeed(3.0), withHR(150), withElapsed(3400)),
			expected: []Change{
				{Metric: MetricPace, Change: -3.3, Direction: DirectionWorse},
				{Metric: MetricHeartrate, Change: 3.3, Direction: DirectionWorse},
				{Metric: MetricTime, Change: 5.9, Direction: DirectionWorse},
			},
		},
		{
			name:    "small time change is omitted",
			current: run(1, withSpeed(3.0), withElapsed(3420)),
			last:    run(2, withSpeed(3.0), withElapsed(3400)),
			expected: []Change{
				{Metric: MetricPace, Change: 0, Direction: DirectionNeutral},
				{Metric: MetricHeartrate, Change: 0, Direction: DirectionNeutral},
			},
		},
		{
			name:    "neutral time change",
			current: run(1, withSpeed(3.0), withElapsed(3450)),
			last:    run(2, withSpeed(3.0), withElapsed(3400)),
			expected: []Change{
				{Metric: MetricPace, Change: 0, Direction: DirectionNeutral},
				{Metric: MetricHeartrate, Change: 0, Direction: DirectionNeutral},
				{Metric: MetricTime, Change: 1.5, Direction: DirectionNeutral},
			},
		},
		{
			name:    "time change just over the minimum",
			current: run(1, withSpeed(3.0), withElapsed(10104)),
			last:    run(2, withSpeed(3.0), withElapsed(10000)),
			expected: []Change{
				{Metric: MetricPace, Change: 0, Direction: DirectionNeutral},
				{Metric: MetricHeartrate, Change: 0, Direction: DirectionNeutral},
				{Metric: MetricTime, Change: 1.0, Direction: DirectionNeutral},
			},
		},
		{
			name:    "time change of exactly the minimum is omitted",
			current: run(1, withSpeed(3.0), withElapsed(9900)),
			last:    run(2, withSpeed(3.0), withElapsed(10000)),
			expected: []Change{
				{Metric: MetricPace, Change: 0, Direction: DirectionNeutral},
				{Metric: MetricHeartrate, Change: 0, Direction: DirectionNeutral},
			},
		},
		{
			name:    "missing HR on one side",
			current: run(1, withSpeed(3.0), withoutHR()),
			last:    run(2, withSpeed(3.0)),
			expected: []Change{
				{Metric: MetricPace, Change: 0, Direction: DirectionNeutral},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SameRouteChanges(&tt.current, &tt.last)
			assertChanges(t, result, tt.expected)
		})
	}
}

func TestGetWhatChanged(t *testing.T) {
	now := testNow
	f := newFakeStore(scenarioRuns()...)
	f.routes[1] = "river-loop"
	f.routes[4] = "river-loop"
	svc := newTestService(f, &now)
	ctx := context.Background()

	result, err := svc.GetOrComputeComparison(ctx, athleteID, 1)
	if err != nil {
		t.Fatalf("GetOrComputeComparison() error = %v", err)
	}

	changes, err := svc.GetWhatChanged(ctx, 1, result)
	if err != nil {
		t.Fatalf("GetWhatChanged() error = %v", err)
	}

	assertChanges(t, changes.VsComparableMedian, []Change{
		{Metric: MetricPace, Change: 10.0, Direction: DirectionBetter},
		{Metric: MetricHeartrate, Change: 0, Direction: DirectionNeutral},
	})
	assertChanges(t, changes.VsLastSameRoute, []Change{
		{Metric: MetricPace, Change: 10.0, Direction: DirectionBetter},
		{Metric: MetricHeartrate, Change: -0.7, Direction: DirectionNeutral},
		{Metric: MetricTime, Change: -8.8, Direction: DirectionBetter},
	})
}

func TestGetWhatChanged_NoRoute(t *testing.T) {
	now := testNow
	f := newFakeStore(scenarioRuns()...)
	svc := newTestService(f, &now)

	changes, err := svc.GetWhatChanged(context.Background(), 1, nil)
	if err != nil {
		t.Fatalf("GetWhatChanged() error = %v", err)
	}
	if len(changes.VsLastSameRoute) != 0 || len(changes.VsComparableMedian) != 0 {
		t.Errorf("expected no changes, got %+v", changes)
	}
}

func TestGetWhatChanged_OnlyRunOnRoute(t *testing.T) {
	now := testNow
	f := newFakeStore(scenarioRuns()...)
	f.routes[1] = "new-loop"
	svc := newTestService(f, &now)

	route, err := svc.MatchRoute(context.Background(), 1)
	if err != nil {
		t.Fatalf("MatchRoute() error = %v", err)
	}
	if route == nil || route.RouteID != "new-loop" || route.LastRun != nil {
		t.Fatalf("MatchRoute() = %+v, want route without prior runs", route)
	}

	changes, err := svc.GetWhatChanged(context.Background(), 1, nil)
	if err != nil {
		t.Fatalf("GetWhatChanged() error = %v", err)
	}
	if len(changes.VsLastSameRoute) != 0 {
		t.Errorf("VsLastSameRoute = %+v, want empty", changes.VsLastSameRoute)
	}
}

func assertChanges(t *testing.T, got, want []Change) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d changes %+v, want %d %+v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("change[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}
