package services

import (
	"context"
	"fmt"
	"time"

	"dublinbikes-api/internal/cache"
	"dublinbikes-api/internal/models"
	"dublinbikes-api/internal/query"
	"dublinbikes-api/internal/storage"

	"go.uber.org/zap"
)

// StationService runs the query pipeline for one backend:
// normalize -> cache -> backend fetch -> execute -> cache.
// Every write invalidates the backend's whole cache namespace.
type StationService struct {
	namespace string
	backend   storage.Backend
	cache     *cache.Cache
	logr      *zap.Logger
	now       func() time.Time
}

func NewStationService(namespace string, backend storage.Backend, c *cache.Cache, logr *zap.Logger) *StationService {
	return &StationService{
		namespace: namespace,
		backend:   backend,
		cache:     c,
		logr:      logr.With(zap.String("backend", namespace)),
		now:       time.Now,
	}
}

// Namespace is the cache namespace, also used as the API version label.
func (s *StationService) Namespace() string {
	return s.namespace
}

// QueryStations returns one page of stations matching raw.
func (s *StationService) QueryStations(ctx context.Context, raw query.Parameters) (query.Page, error) {
	params := query.Normalize(raw)
	key := params.Key()

	page, hit, err := cache.GetOrCompute(s.cache, s.namespace, key, func() (query.Page, error) {
		stations, err := s.backend.List(ctx)
		if err != nil {
			return query.Page{}, fmt.Errorf("list stations: %w", err)
		}
		return query.Execute(stations, params), nil
	})
	if err != nil {
		return query.Page{}, err
	}

	s.logr.Debug("station query",
		zap.String("key", key),
		zap.Bool("cache_hit", hit),
		zap.Int("total", page.Total),
		zap.Int("returned", len(page.Items)))

	return page, nil
}

func (s *StationService) GetStation(ctx context.Context, number int) (models.Station, bool, error) {
	return s.backend.Get(ctx, number)
}

// CreateStation stores station and returns it as stored.
func (s *StationService) CreateStation(ctx context.Context, station models.Station) (models.Station, error) {
	if station.LastUpdateEpochMillis <= 0 {
		station.LastUpdateEpochMillis = s.now().UnixMilli()
	}
	station.Normalize()

	if err := s.backend.Create(ctx, station); err != nil {
		return models.Station{}, err
	}
	s.Invalidate()
	return station, nil
}

func (s *StationService) UpdateStation(ctx context.Context, number int, station models.Station) (bool, error) {
	if station.LastUpdateEpochMillis <= 0 {
		station.LastUpdateEpochMillis = s.now().UnixMilli()
	}

	ok, err := s.backend.Update(ctx, number, station)
	if err != nil {
		return false, err
	}
	if ok {
		s.Invalidate()
	}
	return ok, nil
}

func (s *StationService) DeleteStation(ctx context.Context, number int) (bool, error) {
	ok, err := s.backend.Delete(ctx, number)
	if err != nil {
		return false, err
	}
	if ok {
		s.Invalidate()
	}
	return ok, nil
}

// Summary is recomputed from the full collection on every call.
func (s *StationService) Summary(ctx context.Context) (models.Summary, error) {
	return s.backend.Summary(ctx)
}

// Seed upserts stations into the backend.
func (s *StationService) Seed(ctx context.Context, stations []models.Station) (int, error) {
	n, err := s.backend.Seed(ctx, stations)
	if err != nil {
		return 0, err
	}
	s.Invalidate()
	return n, nil
}

// Mutate applies fn to every station as one atomic pass of the backend,
// then invalidates the cache once for the whole pass.
func (s *StationService) Mutate(ctx context.Context, fn func(*models.Station)) (int, error) {
	n, err := s.backend.Mutate(ctx, fn)
	if err != nil {
		return 0, fmt.Errorf("mutate stations: %w", err)
	}
	if n > 0 {
		s.Invalidate()
	}
	return n, nil
}

// Invalidate drops every cached page of this backend.
func (s *StationService) Invalidate() {
	s.cache.Invalidate(s.namespace)
}
