package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"runbaseline/internal/render"
	"runbaseline/internal/service"
)

func newCompareCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "compare <athlete-id> <activity-id>",
		Short: "Compare a run against your comparable runs",
		Long: `Compare a run against the athlete's most similar runs from the last year
and against the previous run on the same route.

Results are cached per activity; route context is always looked up fresh.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			athleteID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid athlete id %q: %w", args[0], err)
			}
			activityID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid activity id %q: %w", args[1], err)
			}

			ctx := cmd.Context()
			report, err := a.comparisonService().Compare(ctx, athleteID, activityID)
			if err != nil {
				return err
			}
			if report == nil {
				return fmt.Errorf("activity %d not found for athlete %d", activityID, athleteID)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(toJSONReport(report))
			}

			activity, err := a.db.GetActivity(ctx, activityID)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, render.New(render.NewUnits(a.cfg.Display)).Report(activity, report))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

type jsonComparable struct {
	ActivityID int64     `json:"activityId"`
	StartDate  time.Time `json:"startDate"`
	Distance   float64   `json:"distance"`
	Speed      float64   `json:"averageSpeed"`
	Heartrate  *float64  `json:"averageHeartrate,omitempty"`
	Score      float64   `json:"similarityScore"`
}

type jsonBaseline struct {
	Pace            float64  `json:"pace"`
	HR              *float64 `json:"hr"`
	Drift           *float64 `json:"drift"`
	PacingStability *float64 `json:"pacingStability"`
	SampleSize      int      `json:"sampleSize"`
}

type jsonDeltas struct {
	Pace   float64  `json:"paceVsBaseline"`
	HR     *float64 `json:"hrVsBaseline"`
	Drift  *float64 `json:"driftVsBaseline"`
	Pacing *float64 `json:"pacingVsBaseline"`
}

type jsonRoute struct {
	RouteID     string  `json:"routeId"`
	LastRunID   *int64  `json:"lastRunId"`
	PriorRunIDs []int64 `json:"priorRunIds"`
}

type jsonReport struct {
	ActivityID     int64                `json:"activityId"`
	ComparableRuns []jsonComparable     `json:"comparableRuns"`
	Baseline       jsonBaseline         `json:"baseline"`
	Deltas         jsonDeltas           `json:"deltas"`
	Route          *jsonRoute           `json:"route"`
	WhatChanged    *service.WhatChanged `json:"whatChanged"`
	ComputedAt     time.Time            `json:"computedAt"`
	ExpiresAt      time.Time            `json:"expiresAt"`
	Cached         bool                 `json:"cached"`
}

func toJSONReport(r *service.Report) jsonReport {
	cmp := r.Comparison
	out := jsonReport{
		ActivityID:     cmp.ActivityID,
		ComparableRuns: make([]jsonComparable, len(cmp.ComparableRuns)),
		Baseline: jsonBaseline{
			Pace:            cmp.Baseline.Pace,
			HR:              cmp.Baseline.HR,
			Drift:           cmp.Baseline.Drift,
			PacingStability: cmp.Baseline.PacingStability,
			SampleSize:      cmp.Baseline.SampleSize,
		},
		Deltas: jsonDeltas{
			Pace:   cmp.Deltas.Pace,
			HR:     cmp.Deltas.HR,
			Drift:  cmp.Deltas.Drift,
			Pacing: cmp.Deltas.Pacing,
		},
		WhatChanged: r.WhatChanged,
		ComputedAt:  cmp.ComputedAt.UTC(),
		ExpiresAt:   cmp.ExpiresAt.UTC(),
		Cached:      cmp.FromCache,
	}

	for i, run := range cmp.ComparableRuns {
		out.ComparableRuns[i] = jsonComparable{
			ActivityID: run.ID,
			StartDate:  run.StartDate,
			Distance:   run.Distance,
			Speed:      run.AverageSpeed,
			Heartrate:  run.AverageHeartrate,
			Score:      run.SimilarityScore,
		}
	}

	if r.Route != nil {
		route := &jsonRoute{RouteID: r.Route.RouteID, PriorRunIDs: make([]int64, len(r.Route.PriorRuns))}
		for i, p := range r.Route.PriorRuns {
			route.PriorRunIDs[i] = p.ID
		}
		if r.Route.LastRun != nil {
			id := r.Route.LastRun.ID
			route.LastRunID = &id
		}
		out.Route = route
	}
	return out
}
