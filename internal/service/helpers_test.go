package service

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"runbaseline/internal/store"
)

const athleteID = 7

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func floatPtr(f float64) *float64 {
	return &f
}

type runOpt func(*store.Activity)

func withHR(hr float64) runOpt { return func(a *store.Activity) { a.AverageHeartrate = floatPtr(hr) } }
func withSpeed(speed float64) runOpt { return func(a *store.Activity) { a.AverageSpeed = speed } }
func withElevation(m float64) runOpt { return func(a *store.Activity) { a.TotalElevationGain = m } }
func withElapsed(seconds int) runOpt { return func(a *store.Activity) { a.ElapsedTime = seconds } }
func withAthlete(id int64) runOpt { return func(a *store.Activity) { a.AthleteID = id } }
func withDaysAgo(days int) runOpt { return func(a *store.Activity) { a.StartDate = testNow.AddDate(0, 0, -days) } }
func withoutHR() runOpt { return func(a *store.Activity) { a.AverageHeartrate = nil } }
func withDistance(m float64) runOpt { return func(a *store.Activity) { a.Distance = m } }

func run(id int64, opts ...runOpt) store.Activity {
	a := store.Activity{
		ID:                 id,
		AthleteID:          athleteID,
		Name:               "Run",
		Type:               "Run",
		StartDate:          testNow.Add(-5 * time.Hour),
		Distance:           10000,
		MovingTime:         3300,
		ElapsedTime:        3400,
		TotalElevationGain: 50,
		AverageSpeed:       3.0,
		AverageHeartrate:   floatPtr(150),
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// scenarioRuns returns the target run (id 1) and its history:
// id 2 scores 0.882, id 3 scores 0.975, id 4 scores 0.996 and id 5 is
// outside the distance band.
func scenarioRuns() []store.Activity {
	return []store.Activity{
		run(1, withSpeed(3.3), withElapsed(3100)),
		run(2, withDaysAgo(30), withDistance(10200), withElevation(55), withHR(148)),
		run(3, withDaysAgo(20), withDistance(9900)),
		run(4, withDaysAgo(7), withHR(151)),
		run(5, withDaysAgo(3), withDistance(15000)),
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
