package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"runbaseline/internal/store"
)

// fakeStore is an in-memory implementation of every store interface.
type fakeStore struct {
	mu         sync.Mutex
	activities map[int64]store.Activity
	routes     map[int64]string
	features   map[int64]*store.ActivityMetrics
	cache      map[int64]store.ComparisonCacheEntry

	findRunsCalls int
	upserts       int

	findErr   error
	getErr    error
	cacheErr  error
	upsertErr error
	routeErr  error

	// findHook runs before FindRunsByAthlete takes the lock.
	findHook func(ctx context.Context) error
}

func newFakeStore(activities ...store.Activity) *fakeStore {
	f := &fakeStore{
		activities: make(map[int64]store.Activity),
		routes:     make(map[int64]string),
		features:   make(map[int64]*store.ActivityMetrics),
		cache:      make(map[int64]store.ComparisonCacheEntry),
	}
	for _, a := range activities {
		f.activities[a.ID] = a
	}
	return f
}

func (f *fakeStore) FindRunsByAthlete(ctx context.Context, q store.RunQuery) ([]store.Activity, error) {
	if f.findHook != nil {
		if err := f.findHook(ctx); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.findRunsCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}

	var runs []store.Activity
	for _, a := range f.activities {
		if a.AthleteID != q.AthleteID || a.ID == q.ExcludeID {
			continue
		}
		if a.Distance < q.MinDistance || a.Distance > q.MaxDistance || a.StartDate.Before(q.Since) {
			continue
		}
		runs = append(runs, a)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].StartDate.After(runs[j].StartDate) })
	if len(runs) > q.Limit {
		runs = runs[:q.Limit]
	}
	return runs, nil
}

func (f *fakeStore) GetActivity(_ context.Context, id int64) (*store.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.activities[id]
	if !ok {
		return nil, store.ErrActivityNotFound
	}
	return &a, nil
}

func (f *fakeStore) GetActivitiesByIDs(_ context.Context, ids []int64) (map[int64]*store.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make(map[int64]*store.Activity)
	for _, id := range ids {
		if a, ok := f.activities[id]; ok {
			result[id] = &a
		}
	}
	return result, nil
}

func (f *fakeStore) GetRouteForActivity(_ context.Context, activityID int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.routeErr != nil {
		return "", f.routeErr
	}
	route, ok := f.routes[activityID]
	if !ok {
		return "", store.ErrNoRoute
	}
	return route, nil
}

func (f *fakeStore) FindActivitiesOnRoute(_ context.Context, routeID string, excludeID int64, limit int) ([]store.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var runs []store.Activity
	for id, r := range f.routes {
		if r == routeID && id != excludeID {
			if a, ok := f.activities[id]; ok {
				runs = append(runs, a)
			}
		}
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].StartDate.After(runs[j].StartDate) })
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (f *fakeStore) GetLiveEntry(_ context.Context, activityID int64, now time.Time) (*store.ComparisonCacheEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cacheErr != nil {
		return nil, f.cacheErr
	}
	e, ok := f.cache[activityID]
	if !ok || !e.IsLive(now) {
		return nil, store.ErrCacheMiss
	}
	return &e, nil
}

func (f *fakeStore) UpsertEntry(_ context.Context, e *store.ComparisonCacheEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts++
	f.cache[e.ActivityID] = *e
	return nil
}

func (f *fakeStore) GetMetricsByIDs(_ context.Context, ids []int64) (map[int64]*store.ActivityMetrics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make(map[int64]*store.ActivityMetrics)
	for _, id := range ids {
		if m, ok := f.features[id]; ok {
			result[id] = m
		}
	}
	return result, nil
}

func (f *fakeStore) remove(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.activities, id)
}

func (f *fakeStore) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.findRunsCalls
}
