package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliEnv struct {
	dir string
	db  string
}

func newCLIEnv(t *testing.T) cliEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("RUNNER_CONFIG", "")
	return cliEnv{dir: dir, db: filepath.Join(dir, "runs.db")}
}

func (e cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), append([]string{"--database", e.db}, args...), &out, &out)
	return out.String(), err
}

func (e cliEnv) writeActivities(t *testing.T) string {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	hr := func(v float64) *float64 { return &v }
	records := []importedActivity{
		{ID: 101, AthleteID: 7, Name: "Tempo", Type: "Run", StartDate: now.Add(-2 * time.Hour),
			Distance: 10000, MovingTime: 3030, ElapsedTime: 3100, TotalElevationGain: 50,
			AverageSpeed: 3.3, AverageHeartrate: hr(150), PacingStability: hr(88), RouteID: "river"},
		{ID: 87, AthleteID: 7, Name: "Easy", Type: "Run", StartDate: now.AddDate(0, 0, -7),
			Distance: 10000, MovingTime: 3333, ElapsedTime: 3400, TotalElevationGain: 50,
			AverageSpeed: 3.0, AverageHeartrate: hr(151), PacingStability: hr(80)},
		{ID: 64, AthleteID: 7, Name: "Long-ish", Type: "TrailRun", StartDate: now.AddDate(0, 0, -20),
			Distance: 9900, MovingTime: 3300, ElapsedTime: 3350, TotalElevationGain: 50,
			AverageHeartrate: hr(150)},
		{ID: 12, AthleteID: 7, Name: "Ride", Type: "Ride", StartDate: now.AddDate(0, 0, -3),
			Distance: 10000, MovingTime: 1200, ElapsedTime: 1300},
	}
	data, err := json.Marshal(records)
	require.NoError(t, err)
	path := filepath.Join(e.dir, "activities.json")
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestCLI_ImportRouteCompare(t *testing.T) {
	env := newCLIEnv(t)
	path := env.writeActivities(t)

	out, err := env.run(t, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 4 activities (2 with features, 1 on routes)")

	out, err = env.run(t, "route", "assign", "river", "87")
	require.NoError(t, err)
	assert.Contains(t, out, "Assigned 1 activities to river")

	out, err = env.run(t, "route", "show", "101")
	require.NoError(t, err)
	assert.Contains(t, out, "Route river, 1 prior runs")

	out, err = env.run(t, "compare", "7", "101", "--json")
	require.NoError(t, err)

	var report jsonReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, int64(101), report.ActivityID)
	assert.False(t, report.Cached)
	require.Len(t, report.ComparableRuns, 2)
	assert.Equal(t, int64(87), report.ComparableRuns[0].ActivityID)
	assert.Equal(t, 2, report.Baseline.SampleSize)
	require.NotNil(t, report.Route)
	require.NotNil(t, report.Route.LastRunID)
	assert.Equal(t, int64(87), *report.Route.LastRunID)
	require.NotNil(t, report.Deltas.Pacing)
	assert.Equal(t, 10.0, *report.Deltas.Pacing)
	assert.NotEmpty(t, report.WhatChanged.VsLastSameRoute)

	out, err = env.run(t, "compare", "7", "101", "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.Cached)
}

func TestCLI_CompareText(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run(t, "import", env.writeActivities(t))
	require.NoError(t, err)

	out, err := env.run(t, "compare", "7", "101")
	require.NoError(t, err)
	assert.Contains(t, out, "Tempo")
	assert.Contains(t, out, "51:40")
	assert.Contains(t, out, "What changed")
}

func TestCLI_CompareMissing(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run(t, "import", env.writeActivities(t))
	require.NoError(t, err)

	_, err = env.run(t, "compare", "8", "101")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = env.run(t, "compare", "7", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid activity id")
}

func TestCLI_MigrateAndMetricsFile(t *testing.T) {
	env := newCLIEnv(t)
	metricsPath := filepath.Join(env.dir, "runner.prom")

	out, err := env.run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 3")

	_, err = env.run(t, "import", env.writeActivities(t))
	require.NoError(t, err)

	_, err = env.run(t, "--metrics-file", metricsPath, "compare", "7", "101", "--json")
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `runner_comparison_requests_total{source="computed"} 1`), string(data))
}

func TestCLI_InvalidConfig(t *testing.T) {
	env := newCLIEnv(t)
	t.Setenv("RUNNER_COMPARISON__MAX_COMPARABLES", "0")

	_, err := env.run(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_comparables")
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"1", "42"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 42}, ids)

	_, err = parseIDs([]string{"1", "x"})
	assert.Error(t, err)
}
