package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"runbaseline/internal/store"
	"runbaseline/pkg/logger"
)

// importedActivity is one record of an activity export. Feature and route
// fields are optional.
type importedActivity struct {
	ID                 int64     `json:"id"`
	AthleteID          int64     `json:"athleteId"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	StartDate          time.Time `json:"startDate"`
	Distance           float64   `json:"distance"`
	MovingTime         int       `json:"movingTime"`
	ElapsedTime        int       `json:"elapsedTime"`
	TotalElevationGain float64   `json:"totalElevationGain"`
	AverageSpeed       float64   `json:"averageSpeed"`
	AverageHeartrate   *float64  `json:"averageHeartrate"`
	AerobicDecoupling  *float64  `json:"aerobicDecoupling"`
	PacingStability    *float64  `json:"pacingStability"`
	RouteID            string    `json:"routeId"`
}

func (r importedActivity) activity() *store.Activity {
	speed := r.AverageSpeed
	if speed == 0 && r.MovingTime > 0 {
		speed = r.Distance / float64(r.MovingTime)
	}
	return &store.Activity{
		ID:                 r.ID,
		AthleteID:          r.AthleteID,
		Name:               r.Name,
		Type:               r.Type,
		StartDate:          r.StartDate,
		Distance:           r.Distance,
		MovingTime:         r.MovingTime,
		ElapsedTime:        r.ElapsedTime,
		TotalElevationGain: r.TotalElevationGain,
		AverageSpeed:       speed,
		AverageHeartrate:   r.AverageHeartrate,
	}
}

func (r importedActivity) hasFeatures() bool {
	return r.AerobicDecoupling != nil || r.PacingStability != nil
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import activities from a JSON export",
		Long: `Import activities from a JSON array. Existing activities with the same id
are updated. Optional fields:

  averageHeartrate    average heart rate in bpm
  aerobicDecoupling   upstream pace:HR drift, percent
  pacingStability     upstream pacing stability, percent
  routeId             recurring route the activity was run on`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			var records []importedActivity
			if err := json.Unmarshal(data, &records); err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}

			ctx := cmd.Context()
			var features, routes int
			for _, r := range records {
				if err := a.db.UpsertActivity(ctx, r.activity()); err != nil {
					return fmt.Errorf("saving activity %d: %w", r.ID, err)
				}
				if r.hasFeatures() {
					if err := a.db.SaveActivityMetrics(ctx, &store.ActivityMetrics{
						ActivityID:        r.ID,
						AerobicDecoupling: r.AerobicDecoupling,
						PacingStability:   r.PacingStability,
					}); err != nil {
						return fmt.Errorf("saving features for activity %d: %w", r.ID, err)
					}
					features++
				}
				if r.RouteID != "" {
					if err := a.db.AssignRoute(ctx, r.ID, r.RouteID); err != nil {
						return fmt.Errorf("assigning route for activity %d: %w", r.ID, err)
					}
					routes++
				}
			}

			a.log.Info(ctx, "imported activities",
				logger.Int("activities", len(records)),
				logger.Int("with_features", features),
				logger.Int("with_route", routes),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d activities (%d with features, %d on routes)\n",
				len(records), features, routes)
			return nil
		},
	}
}
