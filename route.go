package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"runbaseline/pkg/logger"
)

func newRouteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "route",
		Short: "Manage recurring route membership",
		Long: `Record which activities were run on the same recurring route.

Route detection happens elsewhere; these commands store its output so
comparisons can report changes against the last run on a route.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "assign <route-id> <activity-id>...",
			Short: "Assign activities to a route",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ids, err := parseIDs(args[1:])
				if err != nil {
					return err
				}
				ctx := cmd.Context()
				for _, id := range ids {
					if err := a.db.AssignRoute(ctx, id, args[0]); err != nil {
						return fmt.Errorf("assigning activity %d to route %s: %w", id, args[0], err)
					}
				}
				a.log.Info(ctx, "assigned activities to route",
					logger.String("route_id", args[0]), logger.Int("count", len(ids)))
				fmt.Fprintf(cmd.OutOrStdout(), "Assigned %d activities to %s\n", len(ids), args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "unassign <activity-id>...",
			Short: "Remove activities from their route",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ids, err := parseIDs(args)
				if err != nil {
					return err
				}
				for _, id := range ids {
					if err := a.db.UnassignRoute(cmd.Context(), id); err != nil {
						return fmt.Errorf("unassigning activity %d: %w", id, err)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Unassigned %d activities\n", len(ids))
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <activity-id>",
			Short: "Show an activity's route and its prior runs",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ids, err := parseIDs(args)
				if err != nil {
					return err
				}
				match, err := a.comparisonService().MatchRoute(cmd.Context(), ids[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if match == nil {
					fmt.Fprintf(out, "Activity %d has no route\n", ids[0])
					return nil
				}
				fmt.Fprintf(out, "Route %s, %d prior runs\n", match.RouteID, len(match.PriorRuns))
				for _, r := range match.PriorRuns {
					fmt.Fprintf(out, "  %d  %s  %s\n", r.ID, r.StartDate.Format("2006-01-02"), r.Name)
				}
				return nil
			},
		},
	)
	return cmd
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, len(args))
	for i, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid activity id %q: %w", arg, err)
		}
		ids[i] = id
	}
	return ids, nil
}
