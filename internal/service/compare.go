package service

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Report bundles a comparison with its route context and narration.
type Report struct {
	Comparison  *ComparisonResult
	Route       *RouteMatch
	WhatChanged *WhatChanged
}

// Compare computes or loads the comparison for an activity while looking up
// its route concurrently. Returns nil, nil when the activity does not exist
// or belongs to another athlete; the route is not looked up in that case.
func (s *ComparisonService) Compare(ctx context.Context, athleteID, activityID int64) (*Report, error) {
	target, err := s.loadTarget(ctx, athleteID, activityID)
	if err != nil || target == nil {
		return nil, err
	}

	var (
		comparison *ComparisonResult
		route      *RouteMatch
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		comparison, err = s.comparisonFor(gctx, target)
		return err
	})
	g.Go(func() error {
		var err error
		route, err = s.MatchRoute(gctx, activityID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Report{
		Comparison:  comparison,
		Route:       route,
		WhatChanged: describeChanges(target, route, comparison),
	}, nil
}
