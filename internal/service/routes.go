package service

import (
	"context"
	"errors"
	"fmt"

	"runbaseline/internal/store"
)

// RouteMatch describes an activity's recurring route and its history.
type RouteMatch struct {
	RouteID   string
	LastRun   *store.Activity // most recent prior run on the route, nil if none
	PriorRuns []store.Activity
}

// MatchRoute looks up the route an activity was run on and the prior runs
// on it, most recent first. Returns nil, nil when the activity has no route.
// Route context is never cached.
func (s *ComparisonService) MatchRoute(ctx context.Context, activityID int64) (*RouteMatch, error) {
	routeID, err := s.routes.GetRouteForActivity(ctx, activityID)
	if errors.Is(err, store.ErrNoRoute) {
		s.metrics.RecordRouteLookup(false)
		return nil, nil
	}
	if err != nil {
		s.metrics.RecordStoreError("get_route")
		return nil, fmt.Errorf("looking up route for activity %d: %w", activityID, err)
	}

	prior, err := s.routes.FindActivitiesOnRoute(ctx, routeID, activityID, s.settings.RouteHistoryLimit)
	if err != nil {
		s.metrics.RecordStoreError("find_route_runs")
		return nil, fmt.Errorf("finding runs on route %s: %w", routeID, err)
	}

	s.metrics.RecordRouteLookup(true)
	match := &RouteMatch{RouteID: routeID, PriorRuns: prior}
	if len(prior) > 0 {
		match.LastRun = &prior[0]
	}
	return match, nil
}
