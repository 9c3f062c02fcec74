package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return &DB{sqlDB}, mock
}

func TestStoreErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	errBoom := errors.New("disk I/O error")

	t.Run("find runs", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery("SELECT (.+) FROM activities").WillReturnError(errBoom)

		_, err := db.FindRunsByAthlete(ctx, RunQuery{AthleteID: 1, Limit: 10})
		assert.ErrorIs(t, err, errBoom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("route lookup", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery("SELECT route_id FROM route_activities").WillReturnError(errBoom)

		_, err := db.GetRouteForActivity(ctx, 1)
		assert.ErrorIs(t, err, errBoom)
		assert.NotErrorIs(t, err, ErrNoRoute)
	})

	t.Run("cache write", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("INSERT INTO comparison_cache").WillReturnError(errBoom)

		err := db.UpsertEntry(ctx, &ComparisonCacheEntry{ActivityID: 1, ExpiresAt: time.Now()})
		assert.ErrorIs(t, err, errBoom)
	})
}

func TestGetLiveEntry_CorruptCandidates(t *testing.T) {
	db, mock := newMockDB(t)

	rows := sqlmock.NewRows([]string{
		"activity_id", "candidates", "sample_size",
		"baseline_pace", "baseline_hr", "baseline_drift", "baseline_pacing",
		"pace_vs_baseline", "hr_vs_baseline", "drift_vs_baseline", "pacing_vs_baseline",
		"computed_at", "expires_at",
	}).AddRow(1, "not json", 0, 3.0, nil, nil, nil, 0.0, nil, nil, nil, int64(0), int64(1))
	mock.ExpectQuery("SELECT (.+) FROM comparison_cache").WillReturnRows(rows)

	_, err := db.GetLiveEntry(context.Background(), 1, time.UnixMilli(0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding cached candidates")
}
