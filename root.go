package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"runbaseline/internal/config"
	"runbaseline/internal/service"
	"runbaseline/internal/store"
	"runbaseline/pkg/logger"
	"runbaseline/pkg/metrics"
)

// app holds the resources shared by every command for one invocation.
type app struct {
	cfgFile string

	cfg     *config.Config
	log     logger.Logger
	metrics *metrics.Manager
	db      *store.DB
}

// run executes the CLI with args, always releasing the database and
// flushing metrics afterwards, even when the command fails.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{}
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if closeErr := a.close(ctx); err == nil {
		err = closeErr
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runner",
		Short: "Compare runs against your own comparable history",
		Long: `Runner finds the runs in your history most like a given run, builds a
baseline from them, and reports how the run differs from your usual effort
and from the last time you ran the same route.

QUICK START:

  $ runner import activities.json     # load synced activities
  $ runner route assign river 101 87  # mark runs on a recurring route
  $ runner compare 7 101              # compare activity 101 for athlete 7

CONFIGURATION:

  Settings layer defaults, ~/.runner/config.yaml (or --config, or
  $RUNNER_CONFIG), RUNNER_* environment variables and flags, in that order.
  Nested keys use a double underscore: RUNNER_COMPARISON__LOOKBACK_DAYS=180.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default ~/.runner/config.yaml)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("database", "", "SQLite database path (default ~/.runner/data.db)")
	flags.String("metrics-file", "", "write Prometheus metrics to this file after the command")
	flags.String("distance-unit", "km", "distance unit: km or mi")
	flags.String("pace-unit", "min/km", "pace unit: min/km or min/mi")

	cmd.AddCommand(
		newCompareCmd(a),
		newRouteCmd(a),
		newImportCmd(a),
		newMigrateCmd(a),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := logger.Init(); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}
	a.log = logger.Named("runner")
	a.metrics = metrics.NewManager()

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.db = db

	a.log.Debug(cmd.Context(), "database ready", logger.String("path", cfg.DatabasePath))
	return nil
}

func (a *app) close(ctx context.Context) error {
	if a.metrics != nil && a.cfg.MetricsFile != "" {
		if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
			a.log.Warn(ctx, "writing metrics file", logger.Error(err))
		}
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func (a *app) comparisonService() *service.ComparisonService {
	cmp := a.cfg.Comparison
	return service.NewFromDB(a.db,
		service.WithSettings(service.Settings{
			LookbackDays:      cmp.LookbackDays,
			DistanceTolerance: cmp.DistanceTolerance,
			CandidateLimit:    cmp.CandidateLimit,
			MinSimilarity:     cmp.MinSimilarity,
			MaxComparables:    cmp.MaxComparables,
			CacheTTL:          cmp.CacheTTL(),
			RouteHistoryLimit: cmp.RouteHistoryLimit,
		}),
		service.WithLogger(logger.Named("comparison")),
		service.WithMetrics(a.metrics),
	)
}
